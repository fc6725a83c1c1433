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

import "errors"

var (
	// ErrStopped is returned by NextCParams/Update once the tuner has
	// reached the STOP state and a host still tries to drive it.
	ErrStopped = errors.New("btune: tuner has stopped")

	// ErrNilContext reports a nil host context. No function in this
	// module returns it.
	ErrNilContext = errors.New("btune: host context is nil")

	// ErrPredictorUnavailable reports that no metadata or model is
	// configured. predictor.Adapter.Bootstrap does not return it: it
	// reports that condition with ok == false, and callers keep the
	// default candidate sets.
	ErrPredictorUnavailable = errors.New("btune: predictor unavailable")
)
