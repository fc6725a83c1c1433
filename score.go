// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package btune

const bytesPerKB = 1024.0

// score computes BTune's scalar, lower-is-better figure of merit for one
// trial (§4.1). transfer is the time (in seconds) it would take to move
// cbytes across a link of the configured bandwidth.
func score(cfg Config, ctime float64, cbytes int64, dtime float64) float64 {
	transfer := (float64(cbytes) / bytesPerKB) / float64(cfg.Bandwidth)
	switch cfg.PerfMode {
	case PerfComp:
		return ctime + transfer
	case PerfDecomp:
		return transfer + dtime
	case PerfBalanced:
		return ctime + transfer + dtime
	default:
		return ctime + transfer + dtime
	}
}
