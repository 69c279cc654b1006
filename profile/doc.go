// Package profile wires optional runtime profiling through
// [github.com/pkg/profile].
//
// Profiling is compiled in only with the pprof build tag:
//
//	go build -tags pprof .
//	argot --pprof-mode cpu parse -o 'v|verbose*' -- -vvv
//
// Without the tag [Modes] is empty and [Config.Start] is a no-op.
//
// Profiles are written to the chosen directory (default
// $XDG_CACHE_HOME/argot/pprof) and can be inspected with go tool pprof.
package profile

// Tag is the build tag required to enable profiling.
const Tag = `pprof`
