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

package netsim

import (
	"fmt"
	"io"
)

// NewStatistics builds the periodic statistics-sink event shared by both
// protocol variants, scheduled for its first tick at time 0. On that
// first tick it writes a header line only; every following tick it walks
// the live registry and emits one tab-separated row: time, |t2|, active
// nodes, mean distinct-client ids per tier-1 node, mean open slots per
// tier-1 node.
func NewStatistics(interval uint64, w io.Writer) Event {
	return Event{
		Time: 0,
		Data: PeriodicData{Period: interval, Fn: statTick(w)},
	}
}

func statTick(w io.Writer) func(*State) []Event {
	return func(s *State) []Event {
		if s.Global.Time == 0 {
			fmt.Fprintln(w, "time\tclients\tactive\tids\tslots")
			return nil
		}

		var idsSum, slotsSum uint64
		for _, id := range s.T1 {
			node := s.Nodes[id]
			if bm := node.Bitmap(); bm != nil {
				idsSum += bm.GetCardinality()
			}
			slotsSum += uint64(len(node.Counter().Slots()))
		}

		var active int
		for _, node := range s.Nodes {
			if node.Active() {
				active++
			}
		}

		t1 := len(s.T1)
		var idsMean uint64
		var slotsMean float64
		if t1 > 0 {
			idsMean = idsSum / uint64(t1)
			slotsMean = float64(slotsSum) / float64(t1)
		}

		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%.3f\n", s.Global.Time, len(s.T2), active, idsMean, slotsMean)
		return nil
	}
}
