// Package cli contains the command line interface for reckon.
//
// # Usage
//
// With no command, reckon evaluates its arguments as an expression chain and
// prints the final value:
//
//	reckon '2 + 3 * 5'
//	reckon 'x = 4; x * x'
//
// Commands select other behaviors:
//
//   - eval: evaluate expressions from arguments, files, or stdin (default)
//   - fmt: reformat expressions without evaluating them
//   - ops: list registered operators and functions
//   - init: write a configuration file from the current flags
//   - repl: start an interactive session
//
// Every command shares two flags that seed the evaluation context:
//
//   - --source (-s): files of statements evaluated before the command runs,
//     or '-' for stdin
//   - --bind (-b): NAME=EXPR pairs bound as variables
//
// # Configuration Loader
//
// The package includes a Kong configuration loader ([resolve]) that reads
// config files written in the expression language itself. A config file is a
// chain of setter statements whose bound names match flag names, with
// underscores in place of hyphens:
//
//	log_level = 'debug';
//	log_pretty = false;
//
// A config.json alongside it is also honored, in Kong's native JSON format.
// Command-line flags override both.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Enable colorized pretty printing
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: Collect a runtime profile (allocs, block, clock, cpu,
//     goroutine, heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/reckon/pprof)
//
// # Examples
//
//	# Evaluate with bound variables
//	reckon -b 'rate=0.0825' 'price = 100; price * (1 + rate)'
//
//	# Evaluate a file of statements, then a final expression
//	reckon -s totals.rk 'grand_total'
//
//	# Render the canonical form of an expression from stdin
//	echo '1+2 * 3' | reckon fmt
//
//	# Debug logging with CPU profiling
//	reckon --log-level=debug --pprof-mode=cpu '1 << 20'
package cli
