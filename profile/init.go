package profile

// Config yields the profiler parameters: which mode to run, where to write
// output, and whether to suppress the profiler's own logging.
type Config func() (mode, path string, quiet bool)

// params is the concrete state a Config closes over.
type params struct {
	mode  string
	path  string
	quiet bool
}

// set lifts a field mutation into a Config transformer, so each With option
// rewrites one parameter and carries the rest through.
func set(mutate func(*params)) func(Config) Config {
	return func(c Config) Config {
		var p params

		p.mode, p.path, p.quiet = c()
		mutate(&p)

		return func() (string, string, bool) {
			return p.mode, p.path, p.quiet
		}
	}
}

// WithMode selects the profiler to run. See [Modes] for valid names.
func WithMode(mode string) func(Config) Config {
	return set(func(p *params) { p.mode = mode })
}

// WithPath names the directory profiling output is written to.
func WithPath(path string) func(Config) Config {
	return set(func(p *params) { p.path = path })
}

// WithQuiet silences the profiler's start and stop messages.
func WithQuiet(quiet bool) func(Config) Config {
	return set(func(p *params) { p.quiet = quiet })
}

// Start runs the configured profiler and returns its stopper. With no mode
// set, or in a build without the pprof tag, the result is inert. Start and
// Stop are always safe to call.
func (c Config) Start() interface{ Stop() } {
	mode, path, quiet := c()
	if mode == "" {
		return ignore{}
	}

	return start(mode, path, quiet)
}

// ignore satisfies the stopper interface when profiling is disabled.
type ignore struct{}

func (ignore) Stop() {}
