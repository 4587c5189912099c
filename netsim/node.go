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
)

// Node is the capability every tier-0/1/2 node implements, regardless of
// which protocol variant drives it. Init and Handle are the only two
// entry points the engine ever calls; everything else is bookkeeping a
// variant's Handle implementation needs to answer a Msg/Activate/
// Deactivate.
type Node interface {
	ID() Id
	Tier() Tier
	Active() bool
	Counter() *counter.Counter
	Bitmap() *roaring.Bitmap
	Peers() []Id

	// Init returns the events a freshly constructed node schedules (for
	// example a bootstrap Msg broadcast, a self Activate, or a periodic
	// handler registration).
	Init(g *Global) []Event

	// Handle reacts to one payload delivered to this node at time now,
	// returning whatever follow-up events result.
	Handle(g *Global, now uint64, payload NodePayload) []Event
}

// Base holds the fields common to every node regardless of variant: its
// identity, its counter, its peer list (primary first), the diagnostic
// increment count, the distinct-identity bitmap (present on every node,
// grown only on tier 0/1) and the
// active/timing state (tier 2 only). Variant-specific Node
// implementations embed Base and supply Init/Handle.
type Base struct {
	id    Id
	tier  Tier
	ctr   *counter.Counter
	peers []Id

	incrs  uint64
	bitmap *roaring.Bitmap

	active       bool
	activeTime   uint64
	inactiveTime uint64
}

// NewBase constructs the shared fields for a node of the given Id/tier.
// Every node, regardless of tier, starts with a bitmap containing its
// own Id: a tier-0/1 receiver folds incoming bitmaps into its own via
// UnionBitmap, growing into a count of every distinct identity it has
// observed; a tier-2 node's bitmap never grows, it only ever hands its
// single-Id bitmap upward.
func NewBase(id Id, tier Tier, peers []Id, activeTime, inactiveTime uint64) Base {
	bm := roaring.New()
	bm.Add(uint32(id))
	return Base{
		id:           id,
		tier:         tier,
		ctr:          counter.New(id, int(tier)),
		peers:        peers,
		bitmap:       bm,
		activeTime:   activeTime,
		inactiveTime: inactiveTime,
	}
}

func (b *Base) ID() Id                   { return b.id }
func (b *Base) Tier() Tier                { return b.tier }
func (b *Base) Active() bool              { return b.active }
func (b *Base) Counter() *counter.Counter { return b.ctr }
func (b *Base) Bitmap() *roaring.Bitmap   { return b.bitmap }
func (b *Base) Peers() []Id               { return b.peers }
func (b *Base) Incrs() uint64             { return b.incrs }

// Primary returns the first peer, this node's primary upstream. Only
// meaningful for tier-1/tier-2 nodes with a non-empty peer list.
func (b *Base) Primary() Id { return b.peers[0] }

// SetPrimary replaces the first peer, used by variant B's per-activation
// reselect.
func (b *Base) SetPrimary(id Id) {
	if len(b.peers) == 0 {
		b.peers = []Id{id}
		return
	}
	b.peers[0] = id
}

// SetActive flips the active flag, used on Activate/Deactivate.
func (b *Base) SetActive(v bool) { b.active = v }

// ActiveTime and InactiveTime are the derived timing parameters from
// §4.4.4, fixed at construction.
func (b *Base) ActiveTime() uint64   { return b.activeTime }
func (b *Base) InactiveTime() uint64 { return b.inactiveTime }

// Incr logically increments the local counter and bumps the diagnostic
// count.
func (b *Base) Incr() {
	b.ctr.Incr()
	b.incrs++
}

// Send builds the Msg event addressed to dst: view() normally, or
// cleaning_view() when useCleaning is set (variant B, non-primary tier-2
// traffic). The bitmap is cloned onto the wire only when the receiver's
// tier is below tier 2.
func (b *Base) Send(g *Global, now uint64, dst Id, dstTier Tier, useCleaning bool) (Event, error) {
	delay, err := g.Latency(b.tier, dstTier)
	if err != nil {
		return Event{}, err
	}
	var view *counter.View
	if useCleaning {
		view = b.ctr.CleaningView()
	} else {
		view = b.ctr.View(dst, int(dstTier))
	}
	var bm *roaring.Bitmap
	if dstTier < TierClient && b.bitmap != nil {
		bm = b.bitmap.Clone()
	}
	return Event{
		Time: now + delay,
		Data: NodeEventData{Dst: dst, Payload: MsgPayload{View: view, Bitmap: bm}},
	}, nil
}

// SelfEvent schedules payload for delivery to this node at time t.
func (b *Base) SelfEvent(t uint64, payload NodePayload) Event {
	return Event{Time: t, Data: NodeEventData{Dst: b.id, Payload: payload}}
}

// UnionBitmap folds a peer's bitmap snapshot into this node's own, used
// by tier-0/1 receivers to grow their distinct-client view.
func (b *Base) UnionBitmap(other *roaring.Bitmap) {
	if b.bitmap == nil || other == nil {
		return
	}
	b.bitmap.Or(other)
}
