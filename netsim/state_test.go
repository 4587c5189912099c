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
	"testing"

	"handoffsim/engine"
)

// stubNode is a minimal Node used to exercise State without pulling in a
// full protocol variant. Init emits one self Activate at time 0; Handle
// records the payloads it receives and flips Active on an Activate.
type stubNode struct {
	Base
	seen []NodePayload
}

func newStubNode(id Id, tier Tier, peers []Id, activeTime, inactiveTime uint64) Node {
	return &stubNode{Base: NewBase(id, tier, peers, activeTime, inactiveTime)}
}

func (n *stubNode) Init(g *Global) []Event {
	return []Event{n.SelfEvent(0, ActivatePayload{})}
}

func (n *stubNode) Handle(g *Global, now uint64, payload NodePayload) []Event {
	n.seen = append(n.seen, payload)
	switch payload.(type) {
	case ActivatePayload:
		n.SetActive(true)
	case DeactivatePayload:
		n.SetActive(false)
	}
	return nil
}

func TestNewStateWiresCoreMesh(t *testing.T) {
	g := NewGlobal(3, 2, 1)
	s := NewState(g, 3, 2, 0, 0, 0, newStubNode)
	for _, id := range s.T0 {
		peers := s.Nodes[id].Peers()
		if len(peers) != 2 {
			t.Fatalf("core node %d: got %d peers, want 2", id, len(peers))
		}
		for _, p := range peers {
			if p == id {
				t.Fatalf("core node %d lists itself as a peer", id)
			}
		}
	}
}

func TestNewStateWiresMidToOneCorePeer(t *testing.T) {
	g := NewGlobal(3, 2, 1)
	s := NewState(g, 3, 2, 0, 0, 0, newStubNode)
	for _, id := range s.T1 {
		peers := s.Nodes[id].Peers()
		if len(peers) != 1 {
			t.Fatalf("mid node %d: got %d peers, want 1", id, len(peers))
		}
		if g.Tier(peers[0]) != TierCore {
			t.Fatalf("mid node %d peer %d is not tier 0", id, peers[0])
		}
	}
}

func TestNewNodeAppendsToT2AndRunsInit(t *testing.T) {
	g := NewGlobal(2, 2, 5)
	s := NewState(g, 2, 2, 0, 10, 20, newStubNode)
	events := s.NewNode()
	if len(s.T2) != 1 {
		t.Fatalf("expected one tier-2 node, got %d", len(s.T2))
	}
	id := s.T2[0]
	if _, live := s.Nodes[id]; !live {
		t.Fatalf("new node %d is not in the live registry", id)
	}
	if g.Tier(id) != TierClient {
		t.Fatalf("new node %d classified as %s, want client", id, g.Tier(id))
	}
	if len(events) != 1 {
		t.Fatalf("expected Init to return one event, got %d", len(events))
	}
}

func TestHandleDropsStaleDelivery(t *testing.T) {
	g := NewGlobal(1, 1, 1)
	s := NewState(g, 1, 1, 0, 0, 0, newStubNode)
	ev := Event{Time: 5, Data: NodeEventData{Dst: 999, Payload: ActivatePayload{}}}
	out := s.Handle(ev)
	if len(out) != 0 {
		t.Fatalf("expected a stale delivery to be dropped silently, got %v", out)
	}
}

func TestHandleStampsGlobalClock(t *testing.T) {
	g := NewGlobal(1, 1, 1)
	s := NewState(g, 1, 1, 0, 0, 0, newStubNode)
	ev := Event{Time: 42, Data: FunctionData{Fn: func(*State) []Event { return nil }}}
	s.Handle(ev)
	if g.Time != 42 {
		t.Fatalf("Global.Time = %d, want 42", g.Time)
	}
}

func TestPeriodicReschedulesUntilZeroPeriod(t *testing.T) {
	g := NewGlobal(1, 1, 1)
	s := NewState(g, 1, 1, 0, 0, 0, newStubNode)
	ev := Event{Time: 10, Data: PeriodicData{Period: 5, Fn: func(*State) []Event { return nil }}}
	out := s.Handle(ev)
	if len(out) != 1 {
		t.Fatalf("expected one rescheduled event, got %d", len(out))
	}
	next := out[0].(Event)
	if next.Time != 15 {
		t.Fatalf("rescheduled at %d, want 15", next.Time)
	}
}

func TestRetireNodeMovesToRetiredRegistry(t *testing.T) {
	g := NewGlobal(1, 1, 1)
	s := NewState(g, 1, 1, 0, 0, 0, newStubNode)
	s.NewNode()
	id := s.T2[0]

	s.Handle(Event{Time: 1, Data: RetireNodeData{Id: id}})
	if _, live := s.Nodes[id]; live {
		t.Fatal("node still live after RetireNode")
	}
	if _, retired := s.Retired[id]; !retired {
		t.Fatal("node not found in retired registry")
	}
	for _, t2id := range s.T2 {
		if t2id == id {
			t.Fatal("retired node still listed in T2")
		}
	}
}

func TestRetireNodeTwiceIsFatal(t *testing.T) {
	g := NewGlobal(1, 1, 1)
	s := NewState(g, 1, 1, 0, 0, 0, newStubNode)
	s.NewNode()
	id := s.T2[0]
	s.Handle(Event{Time: 1, Data: RetireNodeData{Id: id}})

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected a panic when retiring the same node twice")
		}
	}()
	s.Handle(Event{Time: 2, Data: RetireNodeData{Id: id}})
}

func TestNodePeriodicDoesNotRescheduleAfterRetirement(t *testing.T) {
	g := NewGlobal(1, 1, 1)
	s := NewState(g, 1, 1, 0, 0, 0, newStubNode)
	s.NewNode()
	id := s.T2[0]
	s.Handle(Event{Time: 1, Data: RetireNodeData{Id: id}})

	out := s.Handle(Event{
		Time: 2,
		Data: NodePeriodicData{Id: id, Period: 10, Fn: func(Node, *Global) []Event { return nil }},
	})
	if len(out) != 0 {
		t.Fatalf("expected no reschedule for a retired node, got %v", out)
	}
}

func TestZeroPeriodPeriodicRunsOnceAndNeverReschedules(t *testing.T) {
	g := NewGlobal(1, 1, 1)
	s := NewState(g, 1, 1, 0, 0, 0, newStubNode)
	ran := false
	out := s.Handle(Event{
		Time: 1,
		Data: PeriodicData{Period: 0, Fn: func(*State) []Event { ran = true; return nil }},
	})
	if !ran {
		t.Fatal("a zero-period Periodic must still run its function on the tick it is dispatched")
	}
	if len(out) != 0 {
		t.Fatalf("expected no reschedule from a zero-period Periodic, got %v", out)
	}
}

func TestZeroPeriodNodePeriodicRunsOnceAndNeverReschedules(t *testing.T) {
	g := NewGlobal(1, 1, 1)
	s := NewState(g, 1, 1, 0, 0, 0, newStubNode)
	ran := false
	out := s.Handle(Event{
		Time: 1,
		Data: NodePeriodicData{Id: 1, Period: 0, Fn: func(Node, *Global) []Event { ran = true; return nil }},
	})
	if !ran {
		t.Fatal("a zero-period NodePeriodic must still run its function on the tick it is dispatched")
	}
	if len(out) != 0 {
		t.Fatalf("expected no reschedule from a zero-period NodePeriodic, got %v", out)
	}
}

func TestZeroArrivalPeriodSchedulesNoEvent(t *testing.T) {
	if events := NewArrivals(0); len(events) != 0 {
		t.Fatalf("expected no arrivals event for a zero arrival_period, got %v", events)
	}
}

// TestZeroArrivalPeriodNeverAdmitsAClient mirrors §8 scenario S2
// (T0=1,T1=1,T2=1,arrival_period=0,...): with no arrivals event scheduled,
// the seed population of tier-2 clients must never grow over the run.
func TestZeroArrivalPeriodNeverAdmitsAClient(t *testing.T) {
	g := NewGlobal(1, 1, 1)
	s := NewState(g, 1, 1, 1, 1000, 0, newStubNode)

	initial := s.Init()
	initial = append(initial, NewArrivals(0)...)

	engEvents := make([]engine.Event, len(initial))
	for i, ev := range initial {
		engEvents[i] = ev
	}
	sim := engine.New(s, engEvents)
	sim.Run(10000)

	if len(s.T2) != 1 {
		t.Fatalf("expected the seed client count (1) to stay unchanged, got %d", len(s.T2))
	}
}

func TestNewStateEmptyTier0WithTier1ConfiguredIsConfigError(t *testing.T) {
	g := NewGlobal(0, 1, 0)
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a panic when tier-1 nodes are configured with no tier-0 nodes")
		}
		if _, ok := r.(*ConfigError); !ok {
			t.Fatalf("expected a *ConfigError, got %T (%v)", r, r)
		}
	}()
	NewState(g, 0, 1, 0, 0, 0, newStubNode)
}

func TestNewStateEmptyTier1WithTier2ConfiguredIsConfigError(t *testing.T) {
	g := NewGlobal(1, 0, 1)
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a panic when tier-2 nodes are configured with no tier-1 nodes")
		}
		if _, ok := r.(*ConfigError); !ok {
			t.Fatalf("expected a *ConfigError, got %T (%v)", r, r)
		}
	}()
	NewState(g, 1, 0, 1, 0, 0, newStubNode)
}

func TestNewStateSeedsInitialClients(t *testing.T) {
	g := NewGlobal(2, 2, 3)
	s := NewState(g, 2, 2, 5, 10, 20, newStubNode)
	if len(s.T2) != 5 {
		t.Fatalf("expected 5 seed clients, got %d", len(s.T2))
	}
	for _, id := range s.T2 {
		node := s.Nodes[id]
		if g.Tier(id) != TierClient {
			t.Fatalf("seed node %d classified as %s, want client", id, g.Tier(id))
		}
		if len(node.Peers()) != 1 || g.Tier(node.Peers()[0]) != TierMid {
			t.Fatalf("seed client %d peer %v is not a single tier-1 Id", id, node.Peers())
		}
	}
}
