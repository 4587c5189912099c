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

package main

import (
	"testing"

	"handoffsim/netsim"
)

func TestServerInitBroadcastsToEveryPeer(t *testing.T) {
	g := netsim.NewGlobal(3, 0, 1)
	n := newPushNode(1, netsim.TierCore, []netsim.Id{2, 3}, 0, 0)
	events := n.Init(g)
	if len(events) != 2 {
		t.Fatalf("expected one Msg per peer, got %d", len(events))
	}
}

func TestClientInitSchedulesSelfActivate(t *testing.T) {
	g := netsim.NewGlobal(1, 1, 1)
	n := newPushNode(3, netsim.TierClient, []netsim.Id{2}, 5, 5)
	events := n.Init(g)
	if len(events) != 1 {
		t.Fatalf("expected exactly one event, got %d", len(events))
	}
	data := events[0].Data.(netsim.NodeEventData)
	if data.Dst != 3 {
		t.Fatalf("Activate addressed to %d, want self (3)", data.Dst)
	}
	if _, ok := data.Payload.(netsim.ActivatePayload); !ok {
		t.Fatalf("expected an ActivatePayload, got %T", data.Payload)
	}
}

func TestServerRepliesToEveryMessage(t *testing.T) {
	g := netsim.NewGlobal(1, 1, 1)
	server := newPushNode(2, netsim.TierMid, []netsim.Id{1}, 0, 0).(*pushNode)

	client := netsim.NewBase(3, netsim.TierClient, []netsim.Id{2}, 5, 5)
	client.Incr()
	view := client.Counter().View(2, int(netsim.TierMid))

	events := server.Handle(g, 0, netsim.MsgPayload{View: view})
	if len(events) != 1 {
		t.Fatalf("expected the server to always reply, got %d events", len(events))
	}
}

func TestClientRepliesOnlyWhenHandoffPending(t *testing.T) {
	g := netsim.NewGlobal(1, 1, 1)
	client := newPushNode(3, netsim.TierClient, []netsim.Id{2}, 5, 5).(*pushNode)

	server := netsim.NewBase(2, netsim.TierMid, []netsim.Id{1}, 0, 0)
	cleanView := server.Counter().View(3, int(netsim.TierClient))

	events := client.Handle(g, 0, netsim.MsgPayload{View: cleanView})
	if len(events) != 0 {
		t.Fatalf("expected no reply when the client has nothing outstanding, got %d", len(events))
	}
}

func TestActivateSendsToPrimaryAndSchedulesDeactivate(t *testing.T) {
	g := netsim.NewGlobal(1, 1, 1)
	client := newPushNode(3, netsim.TierClient, []netsim.Id{2}, 5, 7).(*pushNode)

	events := client.handleActivate(g, 10)
	if len(events) != 2 {
		t.Fatalf("expected a Msg and a Deactivate, got %d", len(events))
	}
	if !client.Active() {
		t.Fatal("expected the client to be marked active")
	}
	deactivate := events[1]
	if deactivate.Time != 15 {
		t.Fatalf("Deactivate scheduled at %d, want 15 (now + active_time)", deactivate.Time)
	}
}

func TestDeactivateSchedulesActivate(t *testing.T) {
	client := newPushNode(3, netsim.TierClient, []netsim.Id{2}, 5, 7).(*pushNode)
	client.SetActive(true)

	events := client.handleDeactivate(10)
	if len(events) != 1 {
		t.Fatalf("expected exactly one Activate, got %d", len(events))
	}
	if client.Active() {
		t.Fatal("expected the client to be marked inactive")
	}
	if events[0].Time != 17 {
		t.Fatalf("Activate scheduled at %d, want 17 (now + inactive_time)", events[0].Time)
	}
}

func TestPermanentlyActiveClientNeverSchedulesDeactivate(t *testing.T) {
	g := netsim.NewGlobal(1, 1, 1)
	client := newPushNode(3, netsim.TierClient, []netsim.Id{2}, 5, 0).(*pushNode)

	events := client.handleActivate(g, 0)
	if len(events) != 1 {
		t.Fatalf("expected only the Msg event, got %d", len(events))
	}
}
