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

// Command periodicsim runs the "periodic handler" protocol variant: every
// node, server or client, nudges its peers on a fixed schedule rather
// than purely in reaction to incoming traffic, and a client is assigned
// a fresh primary server on every activation.
package main

import "handoffsim/netsim"

// periodicNode is the variant-B node. handlerPeriod is the only field
// beyond netsim.Base -- every node of every tier registers its periodic
// handler with the same period, fixed for the whole run.
type periodicNode struct {
	netsim.Base
	handlerPeriod uint64
}

func newPeriodicNodeFactory(handlerPeriod uint64) netsim.NodeFactory {
	return func(id netsim.Id, tier netsim.Tier, peers []netsim.Id, activeTime, inactiveTime uint64) netsim.Node {
		return &periodicNode{
			Base:          netsim.NewBase(id, tier, peers, activeTime, inactiveTime),
			handlerPeriod: handlerPeriod,
		}
	}
}

// Init registers this node's periodic handler and, for a client, also
// schedules its first self Activate.
func (n *periodicNode) Init(g *netsim.Global) []netsim.Event {
	var events []netsim.Event
	if n.Tier() != netsim.TierClient {
		events = append(events, netsim.Event{
			Time: g.Time,
			Data: netsim.NodePeriodicData{Id: n.ID(), Period: n.handlerPeriod, Fn: serverPeriodicHandler},
		})
		return events
	}
	events = append(events, n.SelfEvent(g.Time, netsim.ActivatePayload{}))
	events = append(events, netsim.Event{
		Time: g.Time,
		Data: netsim.NodePeriodicData{Id: n.ID(), Period: n.handlerPeriod, Fn: clientPeriodicHandler},
	})
	return events
}

func (n *periodicNode) Handle(g *netsim.Global, now uint64, payload netsim.NodePayload) []netsim.Event {
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

// send picks view() vs cleaning_view() per §4.4.1: a tier-2 sender uses
// a cleaning view toward any peer other than its *current* primary, read
// fresh at send time so a reselect between schedule and dispatch is
// honored.
func (n *periodicNode) send(g *netsim.Global, now uint64, dst netsim.Id) (netsim.Event, error) {
	useCleaning := n.Tier() == netsim.TierClient && dst != n.Primary()
	return n.Send(g, now, dst, g.Tier(dst), useCleaning)
}

func (n *periodicNode) handleMsg(g *netsim.Global, now uint64, p netsim.MsgPayload) []netsim.Event {
	if n.Tier() == netsim.TierClient && !n.Active() {
		return nil
	}
	if n.Active() {
		n.Incr()
	}
	n.Counter().Merge(p.View)
	if n.Tier() != netsim.TierClient {
		n.UnionBitmap(p.Bitmap)
	}

	shouldReply := false
	switch n.Tier() {
	case netsim.TierClient:
		_, hasSlot := p.View.Slots[n.ID()]
		shouldReply = hasSlot && p.View.SenderID != n.Primary()
	case netsim.TierMid:
		for pair := range p.View.Tokens {
			if pair.Dst == n.ID() {
				shouldReply = true
				break
			}
		}
	}
	if !shouldReply {
		return nil
	}
	ev, err := n.send(g, now, p.View.SenderID)
	if err != nil {
		panic(err)
	}
	return []netsim.Event{ev}
}

func (n *periodicNode) handleActivate(g *netsim.Global, now uint64) []netsim.Event {
	n.SetActive(true)
	n.Incr()
	primary, err := g.ChooseServer()
	if err != nil {
		panic(err)
	}
	n.SetPrimary(primary)
	if n.InactiveTime() > 0 {
		return []netsim.Event{n.SelfEvent(now+n.ActiveTime(), netsim.DeactivatePayload{})}
	}
	return nil
}

func (n *periodicNode) handleDeactivate(now uint64) []netsim.Event {
	n.SetActive(false)
	return []netsim.Event{n.SelfEvent(now+n.InactiveTime(), netsim.ActivatePayload{})}
}

// serverPeriodicHandler nudges every configured peer plus every Id this
// server still carries an open slot for, so those clients get a chance
// to finish their handoff.
func serverPeriodicHandler(node netsim.Node, g *netsim.Global) []netsim.Event {
	n := node.(*periodicNode)
	var events []netsim.Event
	for _, peer := range n.Peers() {
		ev, err := n.send(g, g.Time, peer)
		if err != nil {
			panic(err)
		}
		events = append(events, ev)
	}
	for id := range n.Counter().Slots() {
		ev, err := n.send(g, g.Time, id)
		if err != nil {
			panic(err)
		}
		events = append(events, ev)
	}
	return events
}

// clientPeriodicHandler does nothing while inactive; otherwise it
// increments, sends to its primary, and retransmits to every destination
// still holding an unacknowledged token.
func clientPeriodicHandler(node netsim.Node, g *netsim.Global) []netsim.Event {
	n := node.(*periodicNode)
	if !n.Active() {
		return nil
	}
	n.Incr()
	primary := n.Primary()
	ev, err := n.send(g, g.Time, primary)
	if err != nil {
		panic(err)
	}
	events := []netsim.Event{ev}
	for pair := range n.Counter().Tokens() {
		if pair.Dst == primary {
			continue
		}
		ev, err := n.send(g, g.Time, pair.Dst)
		if err != nil {
			panic(err)
		}
		events = append(events, ev)
	}
	return events
}
