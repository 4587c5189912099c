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

import "handoffsim/engine"

// NodeFactory constructs a protocol-variant-specific Node. State calls it
// once per tier-0/1 node at startup and once per tier-2 node admitted by
// the arrivals event.
type NodeFactory func(id Id, tier Tier, peers []Id, activeTime, inactiveTime uint64) Node

// State is the world registry: the live and retired node maps, the
// per-tier Id lists (insertion order, used for deterministic traversal),
// the next-Id counter and the shared environment. It is the engine.Handler
// for every run.
type State struct {
	Nodes   map[Id]Node
	Retired map[Id]Node

	T0, T1, T2 []Id

	nextID Id

	Global *Global

	factory      NodeFactory
	activeTime   uint64
	inactiveTime uint64
}

// NewState builds the initial population: a tier-0 node peers with every
// other tier-0 Id (full mesh); a tier-1 node peers with one uniformly
// chosen tier-0 Id; each of the t2 seed clients peers with one uniformly
// chosen tier-1 Id. Further clients arrive later through NewNode.
func NewState(g *Global, t0, t1, t2 int, activeTime, inactiveTime uint64, factory NodeFactory) *State {
	s := &State{
		Nodes:        make(map[Id]Node),
		Retired:      make(map[Id]Node),
		Global:       g,
		factory:      factory,
		activeTime:   activeTime,
		inactiveTime: inactiveTime,
	}

	for i := 1; i <= t0; i++ {
		id := Id(i)
		s.T0 = append(s.T0, id)
	}
	for _, id := range s.T0 {
		peers := make([]Id, 0, len(s.T0)-1)
		for _, other := range s.T0 {
			if other != id {
				peers = append(peers, other)
			}
		}
		s.Nodes[id] = factory(id, TierCore, peers, 0, 0)
	}

	for i := 0; i < t1; i++ {
		id := Id(t0 + 1 + i)
		s.T1 = append(s.T1, id)
	}
	if t1 > 0 && len(s.T0) == 0 {
		panic(configErrorf("NewState: %d tier-1 nodes configured with an empty tier-0 set", t1))
	}
	for _, id := range s.T1 {
		primary := s.T0[g.Rand().Intn(len(s.T0))]
		s.Nodes[id] = factory(id, TierMid, []Id{primary}, 0, 0)
	}

	if t2 > 0 && len(s.T1) == 0 {
		panic(configErrorf("NewState: %d tier-2 nodes configured with an empty tier-1 set", t2))
	}
	s.nextID = Id(t0 + t1 + 1)
	for i := 0; i < t2; i++ {
		id := s.nextID
		s.nextID++
		primary := s.T1[g.Rand().Intn(len(s.T1))]
		s.T2 = append(s.T2, id)
		s.Nodes[id] = factory(id, TierClient, []Id{primary}, activeTime, inactiveTime)
	}

	return s
}

// Init collects the bootstrap events from every node present at
// construction, in tier-0-then-tier-1-then-tier-2 creation order.
func (s *State) Init() []Event {
	var events []Event
	for _, id := range s.T0 {
		events = append(events, s.Nodes[id].Init(s.Global)...)
	}
	for _, id := range s.T1 {
		events = append(events, s.Nodes[id].Init(s.Global)...)
	}
	for _, id := range s.T2 {
		events = append(events, s.Nodes[id].Init(s.Global)...)
	}
	return events
}

// NewArrivals builds the periodic admission event: every period ticks it
// admits one fresh tier-2 client via NewNode. A zero period means no
// client ever arrives after the seed population, so no event is
// scheduled at all -- unlike NewStatistics, whose zero-interval tick
// must still fire once to print the header, arrivals has nothing
// useful to do on a single phantom tick, and running it once would
// admit a client that §8 scenario S2 (arrival_period=0) requires never
// to appear.
func NewArrivals(period uint64) []Event {
	if period == 0 {
		return nil
	}
	return []Event{{
		Time: period,
		Data: PeriodicData{Period: period, Fn: func(s *State) []Event { return s.NewNode() }},
	}}
}

// NewNode admits a fresh tier-2 client: allocates the next Id, chooses a
// primary tier-1 peer, runs its Init and inserts it live. Used as the
// body of the periodic arrivals event.
func (s *State) NewNode() []Event {
	primary, err := s.Global.ChooseServer()
	if err != nil {
		panic(err)
	}
	id := s.nextID
	s.nextID++
	node := s.factory(id, TierClient, []Id{primary}, s.activeTime, s.inactiveTime)
	s.T2 = append(s.T2, id)
	s.Nodes[id] = node
	return node.Init(s.Global)
}

// Handle is the engine.Handler entry point: it stamps the environment
// clock, dispatches on the event's concrete kind and returns whatever
// follow-up events result.
func (s *State) Handle(ev engine.Event) []engine.Event {
	e := ev.(Event)
	s.Global.Time = e.Time

	var out []Event
	switch d := e.Data.(type) {
	case NodeEventData:
		out = s.handleNodeEvent(e.Time, d)
	case FunctionData:
		out = d.Fn(s)
	case PeriodicData:
		// Always run on this tick; a zero period simply means the series
		// is not rescheduled afterward (§3.4, §7: "do not reschedule").
		out = d.Fn(s)
		if d.Period != 0 {
			out = append(out, Event{Time: e.Time + d.Period, Data: d})
		}
	case NodePeriodicData:
		out = s.handleNodePeriodic(e.Time, d)
	case RetireNodeData:
		s.retire(d.Id)
	default:
		panic(configErrorf("unknown event data %T", e.Data))
	}

	result := make([]engine.Event, len(out))
	for i, ev := range out {
		result[i] = ev
	}
	return result
}

func (s *State) handleNodeEvent(now uint64, d NodeEventData) []Event {
	node, live := s.Nodes[d.Dst]
	if !live {
		return nil
	}
	return node.Handle(s.Global, now, d.Payload)
}

func (s *State) handleNodePeriodic(now uint64, d NodePeriodicData) []Event {
	node, live := s.Nodes[d.Id]
	if !live {
		return nil
	}
	out := d.Fn(node, s.Global)
	if d.Period != 0 {
		out = append(out, Event{Time: now + d.Period, Data: d})
	}
	return out
}

func (s *State) retire(id Id) {
	node, live := s.Nodes[id]
	if !live {
		panic(configErrorf("RetireNode(%d): node is not live (already retired or unknown)", id))
	}
	delete(s.Nodes, id)
	s.Retired[id] = node
	for i, t2id := range s.T2 {
		if t2id == id {
			s.T2 = append(s.T2[:i], s.T2[i+1:]...)
			break
		}
	}
}
