// Package cmd implements the reckon subcommands: eval, fmt, ops, init,
// and repl.
package cmd

var (
	// CacheIdentifier names the kong variable holding the runtime cache
	// directory path.
	CacheIdentifier = "cache"

	// ConfigIdentifier names the kong variable holding the default
	// configuration file path.
	ConfigIdentifier = "config"
)
