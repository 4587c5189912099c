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

// Package netsim is the network/topology model: tier assignment, latency,
// peer selection and node lifecycle around the handoff-counter protocol.
package netsim

import "handoffsim/counter"

// Id is a node identifier, assigned at creation from a monotonic sequence
// starting at 1.
type Id = counter.Id

// Tier classifies a node. It is a pure function of Id and is fixed for
// the node's whole lifetime.
type Tier int

const (
	TierCore   Tier = 0 // fully-meshed core servers
	TierMid    Tier = 1 // mid-tier servers
	TierClient Tier = 2 // churning clients
)

func (t Tier) String() string {
	switch t {
	case TierCore:
		return "core"
	case TierMid:
		return "mid"
	case TierClient:
		return "client"
	default:
		return "unknown"
	}
}
