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
	"github.com/RoaringBitmap/roaring"

	"handoffsim/counter"
	"handoffsim/engine"
)

// Event is the single concrete engine.Event carried through this
// simulator. Exactly one of the EventData variants below is set.
type Event struct {
	Time uint64
	Data EventData
}

// When satisfies engine.Event.
func (e Event) When() uint64 { return e.Time }

// EventData is a tagged union over the five event kinds the engine
// understands. Implementations are unexported marker methods so only
// the variants in this file can satisfy the interface.
type EventData interface {
	isEventData()
}

// NodeEventData delivers Payload to the node named Dst, silently dropped
// if that Id is not live.
type NodeEventData struct {
	Dst     Id
	Payload NodePayload
}

func (NodeEventData) isEventData() {}

// FunctionData runs Fn once against the world state.
type FunctionData struct {
	Fn func(*State) []Event
}

func (FunctionData) isEventData() {}

// PeriodicData runs Fn, then reschedules itself Period ticks later
// unless Period is zero.
type PeriodicData struct {
	Period uint64
	Fn     func(*State) []Event
}

func (PeriodicData) isEventData() {}

// NodePeriodicData runs Fn against the *current* registry entry for Id
// -- looked up fresh at dispatch time, never a captured pointer -- then
// reschedules similarly. Silently does not reschedule if Id has since
// been retired.
type NodePeriodicData struct {
	Id     Id
	Period uint64
	Fn     func(Node, *Global) []Event
}

func (NodePeriodicData) isEventData() {}

// RetireNodeData moves Id from the live to the retired registry.
type RetireNodeData struct {
	Id Id
}

func (RetireNodeData) isEventData() {}

// NodePayload is the node-level payload carried by a NodeEventData.
type NodePayload interface {
	isNodePayload()
}

// MsgPayload carries a counter view and an optional bitmap snapshot
// from sender to receiver.
type MsgPayload struct {
	View   *counter.View
	Bitmap *roaring.Bitmap // nil when the receiver is tier 2
}

func (MsgPayload) isNodePayload() {}

// ActivatePayload marks a client's transition from inactive to active.
type ActivatePayload struct{}

func (ActivatePayload) isNodePayload() {}

// DeactivatePayload marks a client's transition from active to inactive.
type DeactivatePayload struct{}

func (DeactivatePayload) isNodePayload() {}

var _ engine.Event = Event{}
