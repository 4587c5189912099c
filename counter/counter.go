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

// Package counter implements the handoff counter: a per-node CRDT counter
// that lets a large, churning population of clients contribute increments
// to a globally consistent total without servers retaining permanent
// per-client state. The simulator treats it as an opaque collaborator --
// only the operations below are ever called on it.
package counter

// Id identifies the owner of a counter (and, by extension, a node).
type Id uint64

// Pair is an outstanding handoff token: src's contribution, in flight
// toward dst, not yet acknowledged.
type Pair struct {
	Src Id
	Dst Id
}

// View is the wire projection of a Counter sent from one node to another.
// Entries is nil on a cleaning view. Slots is only ever populated by a
// tier-1 sender; Tokens only ever by a tier-2 sender.
type View struct {
	SenderID   Id
	SenderTier int
	Entries    map[Id]uint64
	Slots      map[Id]uint64
	Tokens     map[Pair]uint64
}

// Counter is the per-node handoff counter. The growing total is tracked
// as a classic grow-only counter (one entry per contributing Id, merged
// by pairwise max), which alone gives Merge its required idempotence and
// commutativity. Slots and Tokens layer the handoff bookkeeping described
// in §3.2 on top of that core: a tier-1 node opens a slot for a client the
// moment it first observes a new contribution from it, and closes the
// slot once the client's own conveyed state shows nothing outstanding
// still addressed to this node; a tier-2 node opens a token every time it
// sends a view, and closes it once the recipient's reply shows the
// contribution has been absorbed.
type Counter struct {
	id      Id
	tier    int
	entries map[Id]uint64
	slots   map[Id]uint64
	tokens  map[Pair]uint64
}

// New constructs an empty counter owned by id at the given tier.
func New(id Id, tier int) *Counter {
	return &Counter{
		id:      id,
		tier:    tier,
		entries: make(map[Id]uint64),
		slots:   make(map[Id]uint64),
		tokens:  make(map[Pair]uint64),
	}
}

// Id returns the owning node's Id.
func (c *Counter) Id() Id { return c.id }

// Tier returns the owning node's tier.
func (c *Counter) Tier() int { return c.tier }

// Incr logically increments the local count.
func (c *Counter) Incr() {
	c.entries[c.id]++
}

// View returns a projection suitable for sending to (dstID, dstTier). A
// tier-2 sender opens (or refreshes) a token for this destination,
// recording the contribution value it expects to be acknowledged.
func (c *Counter) View(dstID Id, dstTier int) *View {
	v := &View{SenderID: c.id, SenderTier: c.tier, Entries: cloneCounts(c.entries)}
	if c.tier == 1 {
		v.Slots = cloneCounts(c.slots)
	}
	if c.tier == 2 {
		c.tokens[Pair{Src: c.id, Dst: dstID}] = c.entries[c.id]
		v.Tokens = clonePairs(c.tokens)
	}
	return v
}

// CleaningView returns a reduced projection carrying no counter entries,
// only the sender's outstanding tokens -- used by a tier-2 sender toward a
// non-primary peer purely so that peer can notice stale slots/tokens
// involving it and clean them up.
func (c *Counter) CleaningView() *View {
	return &View{SenderID: c.id, SenderTier: c.tier, Tokens: clonePairs(c.tokens)}
}

// Merge absorbs another counter's view idempotently and commutatively.
func (c *Counter) Merge(v *View) {
	for rid, cnt := range v.Entries {
		if cnt > c.entries[rid] {
			c.entries[rid] = cnt
		}
	}
	// A server hearing directly from a client opens (or refreshes) the
	// slot recording that client's latest known contribution.
	if c.tier <= 1 && v.SenderTier == 2 {
		if cnt, ok := v.Entries[v.SenderID]; ok {
			c.slots[v.SenderID] = cnt
		}
	}
	// Release a client's slot once its own conveyed token set shows
	// nothing still outstanding toward this node.
	if c.tier == 1 && v.Tokens != nil {
		owed := false
		for p := range v.Tokens {
			if p.Src == v.SenderID && p.Dst == c.id {
				owed = true
				break
			}
		}
		if !owed {
			delete(c.slots, v.SenderID)
		}
	}
	// Retire our own outstanding tokens once the reporting peer's entries
	// show it has caught up with what we had when the token was opened.
	if c.tier == 2 {
		for p, since := range c.tokens {
			if p.Src != c.id || p.Dst != v.SenderID {
				continue
			}
			if got, ok := v.Entries[c.id]; ok && got >= since {
				delete(c.tokens, p)
			}
		}
	}
}

// NeedsToHandoff reports whether this counter holds tokens that still
// need to be acknowledged by a reply.
func (c *Counter) NeedsToHandoff() bool {
	return len(c.tokens) > 0
}

// Slots returns a snapshot of the per-source slots held by a tier-1
// receiver (empty on every other tier).
func (c *Counter) Slots() map[Id]uint64 {
	return cloneCounts(c.slots)
}

// Tokens returns a snapshot of the outstanding (src,dst) tokens held by a
// tier-2 sender (empty on every other tier).
func (c *Counter) Tokens() map[Pair]uint64 {
	return clonePairs(c.tokens)
}

func cloneCounts(m map[Id]uint64) map[Id]uint64 {
	out := make(map[Id]uint64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func clonePairs(m map[Pair]uint64) map[Pair]uint64 {
	out := make(map[Pair]uint64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
