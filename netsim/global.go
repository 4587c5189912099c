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
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// LatencyParams holds the shape/scale of the Weibull tail added to the
// fixed base delay for one direction of traffic. Overridable from a
// -config file; the zero value is never used directly, see DefaultLatency.
type LatencyParams struct {
	Base  float64
	Scale float64
	Shape float64
}

// DefaultLatency returns the fixed constants from the core-to-core and
// core-to-mid/mid-to-mid/mid-to-client latency models.
func DefaultLatency() (coreCore, rest LatencyParams) {
	return LatencyParams{Base: 50, Scale: 50, Shape: 2},
		LatencyParams{Base: 25, Scale: 25, Shape: 2}
}

// Global is the shared simulation environment: the virtual clock, the
// seeded RNG, the tier boundaries and the latency model. Exactly one
// Global exists per run; it is passed to every node's Init and Handle.
type Global struct {
	Time uint64

	rng *rand.Rand

	tier0 int // number of tier-0 (core) nodes, Ids [1, tier0]
	tier1 int // number of tier-1 (mid) nodes, Ids [tier0+1, tier0+tier1]

	coreCore LatencyParams
	rest     LatencyParams
}

// NewGlobal constructs the environment for a run with tier0 core nodes
// and tier1 mid nodes, seeded for reproducibility.
func NewGlobal(tier0, tier1 int, seed int64) *Global {
	cc, rest := DefaultLatency()
	return &Global{
		rng:      rand.New(rand.NewSource(seed)),
		tier0:    tier0,
		tier1:    tier1,
		coreCore: cc,
		rest:     rest,
	}
}

// SetLatencyParams overrides the default Weibull constants, used by the
// optional -config file.
func (g *Global) SetLatencyParams(coreCore, rest LatencyParams) {
	g.coreCore = coreCore
	g.rest = rest
}

// Tier classifies id by the fixed tier boundaries. A client Id is never
// known in advance to Global -- any Id beyond the configured core+mid
// range is treated as tier 2.
func (g *Global) Tier(id Id) Tier {
	switch {
	case uint64(id) <= uint64(g.tier0):
		return TierCore
	case uint64(id) <= uint64(g.tier0+g.tier1):
		return TierMid
	default:
		return TierClient
	}
}

// IsServer reports whether id names a tier-0 or tier-1 node -- a
// permanent member of the mesh, never subject to churn.
func (g *Global) IsServer(id Id) bool {
	return uint64(id) <= uint64(g.tier0+g.tier1)
}

// Latency samples a one-way network delay from a to b. Only core-core,
// core-mid, mid-mid and mid-client pairs (either direction) communicate;
// any other pair, including core-client and client-client, is a
// configuration error.
func (g *Global) Latency(a, b Tier) (uint64, error) {
	var p LatencyParams
	switch {
	case a == TierCore && b == TierCore:
		p = g.coreCore
	case (a == TierCore && b == TierMid) || (a == TierMid && b == TierCore):
		p = g.rest
	case a == TierMid && b == TierMid:
		p = g.rest
	case (a == TierMid && b == TierClient) || (a == TierClient && b == TierMid):
		p = g.rest
	default:
		return 0, configErrorf("no latency model for tier pair (%s,%s)", a, b)
	}
	w := distuv.Weibull{K: p.Shape, Lambda: p.Scale, Src: g.rng}
	return uint64(p.Base + w.Rand()), nil
}

// ChooseServer samples a tier-1 Id uniformly at random, the primary peer
// a newly activated client is assigned. It is a configuration error to
// call this when no tier-1 nodes exist.
func (g *Global) ChooseServer() (Id, error) {
	if g.tier1 <= 0 {
		return 0, configErrorf("choose_server: no tier-1 nodes configured")
	}
	return Id(g.tier0 + 1 + g.rng.Intn(g.tier1)), nil
}

// Rand exposes the shared RNG, used by NewState for the initial peer
// selection, keeping the whole run reproducible from one seed.
func (g *Global) Rand() *rand.Rand { return g.rng }
