// Package profile provides optional runtime profiling for hypereval.
//
// Profiling is compiled in only with the "pprof" build tag:
//
//	go build -tags pprof .
//
// Without the tag every [Profiler] is a no-op and [Modes] is empty.
//
// A [Profiler] writes one profile of the selected mode, named after it
// (cpu.pprof, mem.pprof, ...), into its output directory when stopped:
//
//	p := profile.Profiler{Mode: "cpu", Path: dir}
//	defer p.Start().Stop()
//
// The hypereval command exposes the profiler through --pprof-mode and
// --pprof-dir. The default directory is the pprof subdirectory of the user
// cache directory, for example $XDG_CACHE_HOME/hypereval/pprof.
//
// Analyze the result with go tool pprof:
//
//	go tool pprof -http=: ./hypereval ~/.cache/hypereval/pprof/cpu.pprof
//
// Builds with the tag also import [net/http/pprof], so an application that
// serves HTTP exposes the /debug/pprof/ endpoints.
package profile

// Tag is the build tag required to enable profiling.
const Tag = `pprof`
