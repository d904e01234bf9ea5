// Package profile gates runtime profiling for reckon behind the "pprof"
// build tag.
//
// The implementation wraps [github.com/pkg/profile]. In the default build,
// every operation in this package is a no-op and costs nothing at runtime;
// compiling with -tags pprof swaps in the real profiler and also imports
// [net/http/pprof] so its debug handlers are registered.
//
// # Modes
//
// A tagged build understands these modes, enumerable at runtime with
// [Modes]:
//
//	allocs     every allocation since process start
//	block      blocking on synchronization primitives
//	clock      wall-clock time
//	cpu        CPU time
//	goroutine  goroutine snapshots
//	heap       live heap allocations
//	mem        general memory profile
//	mutex      mutex contention
//	thread     OS thread creation
//	trace      full execution trace
//
// # Starting a profiler
//
// A [Config] yields the mode, output directory, and quiet flag. Compose one
// with [WithMode], [WithPath], and [WithQuiet], then call [Config.Start].
// The returned value always has a working Stop method, even in untagged
// builds or when no mode is set:
//
//	var cfg profile.Config = func() (string, string, bool) {
//		return "", "", false
//	}
//	cfg = profile.WithMode("cpu")(cfg)
//	cfg = profile.WithPath("/tmp/profiles")(cfg)
//	defer cfg.Start().Stop()
//
// Output lands in the configured directory under the mode's conventional
// file name, cpu.pprof and so on.
//
// # From the command line
//
// A tagged reckon binary exposes the profiler through flags:
//
//	reckon --pprof-mode cpu '2 + 3'
//	reckon --pprof-mode heap --pprof-dir ./profiles '2 + 3'
//
// Without --pprof-dir the profile is written beneath the user cache
// directory, for example $XDG_CACHE_HOME/reckon/pprof on Linux.
//
// # Inspecting profiles
//
// The standard toolchain reads the output directly:
//
//	go tool pprof ./reckon /tmp/profiles/cpu.pprof
//	go tool pprof -http=: /tmp/profiles/cpu.pprof
//	go tool pprof -base=old.pprof new.pprof
//
// The first form opens the interactive console (top, list, web), the second
// serves the browser UI, and the third diffs two captures.
//
// Because tagged builds register the [net/http/pprof] handlers, a process
// that also runs an HTTP server exposes live endpoints under /debug/pprof/,
// and go tool pprof accepts those URLs in place of files.
//
// # Overhead
//
// CPU profiling costs a few percent. Heap and allocation profiles are
// sampled and close to free. Block and mutex profiling scale with the
// configured rate, and trace capture is expensive enough that it should be
// limited to short runs. The rates are adjustable through
// [runtime.SetBlockProfileRate], [runtime.SetMutexProfileFraction], and
// [runtime.MemProfileRate].
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
