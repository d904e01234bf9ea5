//go:build pprof

package profile

import (
	"maps"
	"slices"
	"sync"

	"github.com/pkg/profile"

	_ "net/http/pprof" // register the /debug/pprof handlers
)

// Modes returns the profiling modes a tagged build supports. The internal
// "quiet" pseudo-mode is excluded.
var Modes = sync.OnceValue(func() []string {
	m := maps.Clone(mode)
	delete(m, "quiet")

	return slices.Sorted(maps.Keys(m))
})

var mode = map[string]func(*profile.Profile){
	"allocs":    profile.MemProfileAllocs,
	"block":     profile.BlockProfile,
	"clock":     profile.ClockProfile,
	"cpu":       profile.CPUProfile,
	"goroutine": profile.GoroutineProfile,
	"heap":      profile.MemProfileHeap,
	"mem":       profile.MemProfile,
	"mutex":     profile.MutexProfile,
	"quiet":     profile.Quiet,
	"thread":    profile.ThreadcreationProfile,
	"trace":     profile.TraceProfile,
}

// start hands the selected mode to github.com/pkg/profile. Unknown names
// degrade to the inert stopper rather than failing.
func start(name, path string, quiet bool) interface{ Stop() } {
	fn, ok := mode[name]
	if !ok {
		return ignore{}
	}

	opts := []func(*profile.Profile){fn}

	if path != "" {
		opts = append(opts, profile.ProfilePath(path))
	}

	if quiet {
		opts = append(opts, profile.Quiet)
	}

	return profile.Start(opts...)
}
