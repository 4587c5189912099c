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
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"handoffsim/engine"
	"handoffsim/netsim"
)

func main() {
	seed := flag.Int64("seed", 1, "RNG seed")
	configPath := flag.String("config", "", "optional JSON file overriding the latency model")
	flag.Parse()

	args := flag.Args()
	if len(args) != 9 {
		fmt.Fprintln(os.Stderr, "usage: periodicsim [-seed N] [-config file] T0 T1 T2 arrival_period activity_period active_percentage handler_period end_time stat_interval")
		os.Exit(1)
	}

	defer func() {
		if r := recover(); r != nil {
			log.Fatalf("fatal: %v", r)
		}
	}()

	vals := parseArgs(args)
	t0, t1, t2 := int(vals[0]), int(vals[1]), int(vals[2])
	g := netsim.NewGlobal(t0, t1, *seed)
	if *configPath != "" {
		if err := netsim.LoadLatencyOverride(*configPath, g); err != nil {
			log.Fatalf("fatal: %v", err)
		}
	}

	activeTime, inactiveTime := netsim.DerivedTiming(vals[4], vals[5])
	handlerPeriod := vals[6]
	s := netsim.NewState(g, t0, t1, t2, activeTime, inactiveTime, newPeriodicNodeFactory(handlerPeriod))

	initial := s.Init()
	initial = append(initial, netsim.NewArrivals(vals[3])...)
	initial = append(initial, netsim.NewStatistics(vals[8], os.Stdout))

	engEvents := make([]engine.Event, len(initial))
	for i, ev := range initial {
		engEvents[i] = ev
	}

	sim := engine.New(s, engEvents)
	sim.Run(vals[7])
}

// parseArgs converts the nine positional arguments to uint64, exiting
// nonzero on the first one that fails to parse.
func parseArgs(args []string) [9]uint64 {
	var out [9]uint64
	for i, a := range args {
		v, err := strconv.ParseUint(a, 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "argument %d (%q): %v\n", i+1, a, err)
			os.Exit(1)
		}
		out[i] = v
	}
	return out
}
