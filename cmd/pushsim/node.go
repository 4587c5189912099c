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

// Command pushsim runs the "push on increment" protocol variant: a node
// sends to its peers the instant it has something new, and a reply is
// only ever piggybacked on an incoming message.
package main

import "handoffsim/netsim"

// pushNode is the variant-A node. It carries no state beyond netsim.Base
// -- the entire protocol lives in Init/Handle below.
type pushNode struct {
	netsim.Base
}

func newPushNode(id netsim.Id, tier netsim.Tier, peers []netsim.Id, activeTime, inactiveTime uint64) netsim.Node {
	return &pushNode{Base: netsim.NewBase(id, tier, peers, activeTime, inactiveTime)}
}

// Init increments locally, then either broadcasts to every peer (a
// server) or schedules a self Activate (a client).
func (n *pushNode) Init(g *netsim.Global) []netsim.Event {
	n.Incr()
	if n.Tier() == netsim.TierClient {
		return []netsim.Event{n.SelfEvent(g.Time, netsim.ActivatePayload{})}
	}
	var events []netsim.Event
	for _, peer := range n.Peers() {
		ev, err := n.Send(g, g.Time, peer, g.Tier(peer), false)
		if err != nil {
			panic(err)
		}
		events = append(events, ev)
	}
	return events
}

func (n *pushNode) Handle(g *netsim.Global, now uint64, payload netsim.NodePayload) []netsim.Event {
	switch p := payload.(type) {
	case netsim.MsgPayload:
		return n.handleMsg(g, now, p)
	case netsim.ActivatePayload:
		return n.handleActivate(g, now)
	case netsim.DeactivatePayload:
		return n.handleDeactivate(now)
	default:
		return nil
	}
}

func (n *pushNode) handleMsg(g *netsim.Global, now uint64, p netsim.MsgPayload) []netsim.Event {
	if n.Active() {
		n.Incr()
	}
	n.Counter().Merge(p.View)
	if n.Tier() != netsim.TierClient {
		n.UnionBitmap(p.Bitmap)
	}
	if n.Tier() != netsim.TierClient || n.Counter().NeedsToHandoff() {
		ev, err := n.Send(g, now, p.View.SenderID, netsim.Tier(p.View.SenderTier), false)
		if err != nil {
			panic(err)
		}
		return []netsim.Event{ev}
	}
	return nil
}

func (n *pushNode) handleActivate(g *netsim.Global, now uint64) []netsim.Event {
	n.SetActive(true)
	n.Incr()
	primary := n.Primary()
	ev, err := n.Send(g, now, primary, g.Tier(primary), false)
	if err != nil {
		panic(err)
	}
	events := []netsim.Event{ev}
	if n.InactiveTime() > 0 {
		events = append(events, n.SelfEvent(now+n.ActiveTime(), netsim.DeactivatePayload{}))
	}
	return events
}

func (n *pushNode) handleDeactivate(now uint64) []netsim.Event {
	n.SetActive(false)
	return []netsim.Event{n.SelfEvent(now+n.InactiveTime(), netsim.ActivatePayload{})}
}
