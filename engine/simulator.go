//----------------------------------------------------------------------
// This file is part of handoffsim.
//
// handoffsim is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License,
// or (at your option) any later version.
//
// handoffsim is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.
//
// SPDX-License-Identifier: AGPL3.0-or-later
//----------------------------------------------------------------------

package engine

import (
	"container/heap"
	"fmt"
)

// Simulator drives a Handler across virtual time using a min-priority
// queue keyed by event time. It is agnostic to event payload: it only
// reads Event.When() to decide dispatch order.
type Simulator struct {
	state Handler
	pq    priorityQueue
	seq   uint64
}

// New creates a simulator over state, seeded with the given initial events.
func New(state Handler, initial []Event) *Simulator {
	s := &Simulator{state: state}
	heap.Init(&s.pq)
	for _, e := range initial {
		s.Push(e)
	}
	return s
}

// Push schedules a single event. Events with equal When() are dispatched
// in the order they were pushed.
func (s *Simulator) Push(e Event) {
	heap.Push(&s.pq, &pqItem{ev: e, seq: s.seq})
	s.seq++
}

// Run dispatches events in nondecreasing time order until the queue is
// empty or the next event's time exceeds end. A handler that returns an
// event due before the time of the event being dispatched is a
// programming error and makes Run panic.
func (s *Simulator) Run(end uint64) {
	for s.pq.Len() > 0 {
		next := s.pq[0]
		now := next.ev.When()
		if now > end {
			return
		}
		heap.Pop(&s.pq)
		for _, ev := range s.state.Handle(next.ev) {
			if ev.When() < now {
				panic(fmt.Sprintf("engine: event due at %d scheduled while dispatching time %d", ev.When(), now))
			}
			s.Push(ev)
		}
	}
}

// Pending reports how many events are currently queued.
func (s *Simulator) Pending() int { return s.pq.Len() }
