package stdlib

import (
	"github.com/dustin/go-humanize"

	"europa/internal/runtime"
	"europa/internal/value"
	"europa/internal/vm"
)

// diagnosticsBuiltins implements (gc-stats), formatting the collector's
// cumulative counters with go-humanize the way the teacher formats sizes
// in its memory/forensics modules (SPEC_FULL.md §B.4) instead of raw
// unpunctuated integers.
func diagnosticsBuiltins(g *runtime.Global) []builtin {
	return []builtin{
		{"gc-stats", func(s *vm.State, rib value.Value) (value.Value, error) {
			stats := g.Heap.Stats
			report := humanize.Comma(int64(stats.Collections)) + " collections, " +
				humanize.Comma(int64(stats.Freed)) + " objects freed, " +
				humanize.Comma(int64(g.Heap.Live())) + " live"
			return internString(s, report), nil
		}},
		{"collect-garbage", func(s *vm.State, rib value.Value) (value.Value, error) {
			g.Heap.Collect(s.RootSet())
			return value.Null, nil
		}},
	}
}
