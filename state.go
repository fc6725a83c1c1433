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

// State is one phase of BTune's exploration schedule (§4.6).
type State int

const (
	CodecFilter State = iota
	ShuffleSize
	Threads
	CLevel
	BlockSize
	Memcpy
	Waiting
	Stop
)

func (s State) String() string {
	switch s {
	case CodecFilter:
		return "CODEC_FILTER"
	case ShuffleSize:
		return "SHUFFLE_SIZE"
	case Threads:
		return "THREADS"
	case CLevel:
		return "CLEVEL"
	case BlockSize:
		return "BLOCKSIZE"
	case Memcpy:
		return "MEMCPY"
	case Waiting:
		return "WAITING"
	case Stop:
		return "STOP"
	default:
		return "UNKNOWN"
	}
}

// ReadaptType records whether the tuner's current readapt is hard, soft,
// or a wait.
type ReadaptType int

const (
	ReadaptWait ReadaptType = iota
	ReadaptSoft
	ReadaptHard
)

func (r ReadaptType) String() string {
	switch r {
	case ReadaptHard:
		return "HARD"
	case ReadaptSoft:
		return "SOFT"
	case ReadaptWait:
		return "WAIT"
	default:
		return "UNKNOWN"
	}
}

// minimumHards is the number of initial hard readapts that are "free"
// (not counted against NHardsBeforeStop) because no cparams_hint was
// supplied and BTune had to run one hard readapt just to find a starting
// point (§4.7).
func (t *Tuner) minimumHards() uint32 {
	if t.cfg.CParamsHint {
		return 0
	}
	return 1
}

// initSoft begins a soft readapt: exploration restarts at CLEVEL with a
// step of one, skipping CODEC_FILTER, SHUFFLE_SIZE and THREADS; the
// phases after CLEVEL follow as usual.
func (t *Tuner) initSoft() {
	if hasEndedClevel(t.best, t.stepSize) {
		t.best.IncreasingCLevel = !t.best.IncreasingCLevel
	}
	t.state = CLevel
	t.stepSize = softStepSize
	t.readaptFrom = ReadaptSoft
}

// initHard begins a hard readapt: codec/filter/split are re-enumerated
// from scratch, thread tuning starts on the compression side unless
// PerfMode is PerfDecomp, and the shuffle direction flips if it has
// reached its end.
func (t *Tuner) initHard() {
	t.state = CodecFilter
	t.stepSize = hardStepSize
	t.readaptFrom = ReadaptHard
	t.threadsForComp = t.cfg.PerfMode != PerfDecomp
	if hasEndedShuffle(t.best) {
		t.best.IncreasingShuffle = !t.best.IncreasingShuffle
	}
	t.auxIndex = 0
}

// initWithoutHards runs when Behaviour.NHardsBeforeStop == 0: BTune never
// does a hard readapt and has to decide its very first phase directly
// from the repeat mode (§4.7, "init_without_hards" in the original).
func (t *Tuner) initWithoutHards() {
	b := t.cfg.Behaviour
	minHards := t.minimumHards()
	switch b.RepeatMode {
	case RepeatAll:
		if b.NHardsBeforeStop > minHards {
			t.initHard()
			t.isRepeating = true
			return
		}
		fallthrough
	case RepeatSoft:
		if b.NSoftsBeforeHard > 0 {
			t.initSoft()
			t.isRepeating = true
			return
		}
		fallthrough
	case RepeatStop:
		if minHards == 0 && b.NSoftsBeforeHard > 0 {
			t.initSoft()
		} else {
			t.state = Stop
			t.readaptFrom = ReadaptWait
		}
	}
	t.isRepeating = true
}

// advance runs the state-machine transition after a trial has been
// scored (§4.6); improved reports whether the trial replaced best. It
// mirrors update_aux in the original.
func (t *Tuner) advance(improved bool) {
	best := &t.best
	firstTime := t.auxIndex == 1

	switch t.state {
	case CodecFilter:
		total := len(t.candidates.codecs) * len(t.candidates.filters) * 2
		if t.auxIndex >= total {
			t.auxIndex = 0
			shuffleEnabled := !t.cfg.Behaviour.DisableShuffleSize
			isPow2 := best.ShuffleSize != 0 && best.ShuffleSize&(best.ShuffleSize-1) == 0
			if shuffleEnabled && best.Filter != NoFilter && isPow2 {
				t.state = ShuffleSize
			} else {
				t.state = Threads
			}
			if t.state == Threads && (t.cfg.Behaviour.DisableThreads || t.maxThreads == 1) {
				t.state = CLevel
				if hasEndedClevel(*best, t.stepSize) {
					best.IncreasingCLevel = !best.IncreasingCLevel
				}
			} else if t.state == ShuffleSize {
				if hasEndedShuffle(*best) {
					best.IncreasingShuffle = !best.IncreasingShuffle
				}
			} else if t.state == Threads {
				if hasEndedThreads(*best, t.threadsForComp, t.maxThreads) {
					best.IncreasingNThreads = !best.IncreasingNThreads
				}
			}
		}

	case ShuffleSize:
		if !improved && firstTime {
			best.IncreasingShuffle = !best.IncreasingShuffle
		}
		if hasEndedShuffle(*best) || (!improved && !firstTime) {
			t.auxIndex = 0
			if t.cfg.Behaviour.DisableThreads {
				t.state = CLevel
			} else {
				t.state = Threads
			}
			if t.state == Threads && t.maxThreads == 1 {
				t.state = CLevel
			}
			if t.state == CLevel {
				if hasEndedClevel(*best, t.stepSize) {
					best.IncreasingCLevel = !best.IncreasingCLevel
				}
			} else if hasEndedThreads(*best, t.threadsForComp, t.maxThreads) {
				best.IncreasingNThreads = !best.IncreasingNThreads
			}
		}

	case Threads:
		stage := t.auxIndex % maxStateThreads
		firstTime = stage == 1
		if !improved && firstTime {
			best.IncreasingNThreads = !best.IncreasingNThreads
		}
		if hasEndedThreads(*best, t.threadsForComp, t.maxThreads) || (!improved && !firstTime) {
			if t.cfg.PerfMode == PerfBalanced {
				if t.auxIndex < maxStateThreads {
					t.threadsForComp = !t.threadsForComp
					t.auxIndex = maxStateThreads
					if hasEndedThreads(*best, t.threadsForComp, t.maxThreads) {
						best.IncreasingNThreads = !best.IncreasingNThreads
					}
				} else {
					t.auxIndex = maxStateThreads + 1
				}
			} else {
				t.auxIndex = maxStateThreads + 1
			}
			if t.auxIndex > maxStateThreads {
				t.auxIndex = 0
				t.state = CLevel
				if hasEndedClevel(*best, t.stepSize) {
					best.IncreasingCLevel = !best.IncreasingCLevel
				}
			}
		}

	case CLevel:
		if !improved && firstTime {
			best.IncreasingCLevel = !best.IncreasingCLevel
		}
		if hasEndedClevel(*best, t.stepSize) || (!improved && !firstTime) {
			t.auxIndex = 0
			if t.cfg.Behaviour.DisableBlockSize {
				if t.cfg.Behaviour.DisableMemcpy {
					t.state = Waiting
				} else {
					t.state = Memcpy
				}
			} else {
				t.state = BlockSize
			}
			if t.state == BlockSize && hasEndedBlocksize(*best, t.stepSize, t.sourceSize) {
				best.IncreasingBlock = !best.IncreasingBlock
			}
		}

	case BlockSize:
		if !improved && firstTime {
			best.IncreasingBlock = !best.IncreasingBlock
		}
		if hasEndedBlocksize(*best, t.stepSize, t.sourceSize) || (!improved && !firstTime) {
			t.auxIndex = 0
			if t.cfg.CompMode == CompHSP && !t.cfg.Behaviour.DisableMemcpy {
				t.state = Memcpy
			} else {
				t.state = Waiting
			}
		}

	case Memcpy:
		t.auxIndex = 0
		t.state = Waiting
	}

	if t.state == Waiting {
		t.processWaitingState()
	}
}

// processWaitingState decides what comes after a WAITING transition,
// switching on which readapt type led here (§4.7).
func (t *Tuner) processWaitingState() {
	b := t.cfg.Behaviour
	minHards := t.minimumHards()

	switch t.readaptFrom {
	case ReadaptHard:
		t.nhards++
		if b.NHardsBeforeStop == minHards || t.nhards%b.NHardsBeforeStop == 0 {
			t.isRepeating = true
			switch {
			case b.NSoftsBeforeHard > 0 && b.RepeatMode != RepeatStop:
				t.initSoft()
			case b.RepeatMode != RepeatAll:
				t.state = Stop
			case b.NWaitsBeforeReadapt > 0:
				t.state = Waiting
				t.readaptFrom = ReadaptWait
			case b.NHardsBeforeStop > minHards:
				t.initHard()
			default:
				t.state = Stop
			}
		} else if b.NSoftsBeforeHard > 0 {
			t.initSoft()
		} else if b.NWaitsBeforeReadapt > 0 {
			t.state = Waiting
			t.readaptFrom = ReadaptWait
		} else {
			t.initHard()
		}

	case ReadaptSoft:
		t.nsofts++
		t.readaptFrom = ReadaptWait
		if b.NWaitsBeforeReadapt == 0 {
			lastSoft := b.NSoftsBeforeHard == 0 || t.nsofts%b.NSoftsBeforeHard == 0
			notRepeatingStop := !(t.isRepeating && b.RepeatMode != RepeatAll)
			switch {
			case lastSoft && notRepeatingStop && b.NHardsBeforeStop > minHards:
				t.initHard()
			case minHards == 0 && b.NHardsBeforeStop == 0 &&
				b.NSoftsBeforeHard > 0 && t.nsofts%b.NSoftsBeforeHard == 0 &&
				b.RepeatMode == RepeatStop:
				t.isRepeating = true
				t.state = Stop
			default:
				t.initSoft()
			}
		}

	case ReadaptWait:
		lastWait := b.NWaitsBeforeReadapt == 0 ||
			(t.nwaitings != 0 && t.nwaitings%b.NWaitsBeforeReadapt == 0)
		if lastWait {
			lastSoft := b.NSoftsBeforeHard == 0 ||
				(t.nsofts != 0 && t.nsofts%b.NSoftsBeforeHard == 0)
			notRepeatingStop := !(t.isRepeating && b.RepeatMode != RepeatAll)
			switch {
			case lastSoft && notRepeatingStop && b.NHardsBeforeStop > minHards:
				t.initHard()
			case b.NSoftsBeforeHard > 0 && !(t.isRepeating && b.RepeatMode == RepeatStop):
				t.initSoft()
			}
		}
	}

	// Force soft step size on the last hard of the initial schedule so
	// the final pass explores finely.
	if t.readaptFrom == ReadaptHard && t.nhards == b.NHardsBeforeStop-1 {
		t.stepSize = softStepSize
	}
}
