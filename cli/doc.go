// Package cli contains the command line interface for argot.
//
// # Commands
//
//	argot parse -o 'v|verbose' -o 'o|output{0,1}' -- -v -o out.txt
//	argot inspect -m argot.yaml -c build
//	argot convert -p '?output' -p '@files' -i result.yaml
//	argot plan -m argot.yaml -- build -v
//	argot validate -m argot.yaml
//	argot repl -o 'v|verbose'
//
// # Configuration
//
// Flag defaults are read from a YAML file (config.yaml) in the user
// configuration directory, and from a JSON file of the same name with a
// ".json" suffix. The init command writes the current flag values there.
// See [resolve] for the file layout.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, etc.)
//   - --log-caller: Include caller information in log output
//   - --[no-]log-pretty: Colorize output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o argot .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default: ~/.cache/argot/pprof)
package cli
