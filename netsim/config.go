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
	"encoding/json"
	"os"
)

// LatencyOverride is the optional JSON shape read from -config, mirroring
// the teacher's EnvironCfg/NodeCfg/Option layering: present fields
// override the fixed Weibull constants from §4.2, absent ones keep the
// default.
type LatencyOverride struct {
	CoreCore *LatencyParams `json:"core_core,omitempty"`
	Rest     *LatencyParams `json:"rest,omitempty"`
}

// LoadLatencyOverride reads path as JSON and applies any overrides it
// names to g. A missing or malformed file is a configuration error.
func LoadLatencyOverride(path string, g *Global) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return configErrorf("reading -config %s: %v", path, err)
	}
	var o LatencyOverride
	if err := json.Unmarshal(data, &o); err != nil {
		return configErrorf("parsing -config %s: %v", path, err)
	}
	cc, rest := g.coreCore, g.rest
	if o.CoreCore != nil {
		cc = *o.CoreCore
	}
	if o.Rest != nil {
		rest = *o.Rest
	}
	g.SetLatencyParams(cc, rest)
	return nil
}

// DerivedTiming computes active_time/inactive_time from an activity
// period and an active percentage in [0,100], per §4.4.4.
func DerivedTiming(activityPeriod uint64, activePercentage uint64) (activeTime, inactiveTime uint64) {
	activeTime = activePercentage * activityPeriod / 100
	inactiveTime = (100 - activePercentage) * activityPeriod / 100
	return
}
