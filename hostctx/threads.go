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

package hostctx

import (
	"bufio"
	"bytes"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// DetectMaxThreads returns the number of threads a host should offer the
// Tuner as max_threads (§3, §5's "MIN_THREADS ≤ nthreads ≤ max_threads"
// invariant): the cgroup v2 CPU quota if the process is confined to one,
// else runtime.NumCPU(). This is the concrete component behind that
// invariant — without it, a containerized host would let BTune explore
// thread counts far beyond what it can actually schedule.
func DetectMaxThreads() int {
	if n, ok := cgroupCPUQuota(); ok && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// cgroupCPUQuota reads /sys/fs/cgroup/cpu.max the way cgroup.Dir's
// callers read cgroup2 control files: "quota period" on one line, with
// quota == "max" meaning unconfined. It returns ceil(quota/period)
// threads, matching how a container's fractional CPU limit is usually
// rounded up to a worker count.
func cgroupCPUQuota() (int, bool) {
	self, err := selfCPUMax()
	if err != nil {
		return 0, false
	}
	fields := strings.Fields(self)
	if len(fields) != 2 || fields[0] == "max" {
		return 0, false
	}
	quota, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, false
	}
	period, err := strconv.ParseFloat(fields[1], 64)
	if err != nil || period <= 0 {
		return 0, false
	}
	n := int(math.Ceil(quota / period))
	if n < 1 {
		n = 1
	}
	return n, true
}

func selfCPUMax() (string, error) {
	dir, err := selfCGroupDir()
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(dir + "/cpu.max")
	if err != nil {
		return "", err
	}
	return string(bytes.TrimSpace(data)), nil
}

// selfCGroupDir finds the current process's cgroup2 directory by reading
// /proc/mounts for the cgroup2 mountpoint and /proc/self/cgroup for the
// process's subpath, matching cgroup.Root/cgroup.Self.
func selfCGroupDir() (string, error) {
	root, err := cgroupRoot()
	if err != nil {
		return "", err
	}
	text, err := os.ReadFile("/proc/self/cgroup")
	if err != nil {
		return "", err
	}
	line := bytes.TrimSpace(text)
	i := bytes.IndexByte(line, '/')
	if i < 0 {
		return "", os.ErrNotExist
	}
	return root + string(line[i:]), nil
}

func cgroupRoot() (string, error) {
	f, err := os.Open("/proc/mounts")
	if err != nil {
		return "", err
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	for s.Scan() {
		parts := strings.Fields(s.Text())
		if len(parts) >= 3 && parts[2] == "cgroup2" {
			return parts[1], nil
		}
	}
	if err := s.Err(); err != nil {
		return "", err
	}
	return "", os.ErrNotExist
}
