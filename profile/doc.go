// Package profile adds pprof profiles and an execution trace behind CLI
// flags.
//
// CPU, heap, allocs, and goroutine profiles are written with
// [runtime/pprof]. The --trace flag writes a [runtime/trace] execution trace;
// playback records a task per session and a region per frame write, so
// "go tool trace" shows how frame writes line up with the sleeps between
// them.
//
//	cfg := profile.NewConfig()
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//
//	p := cfg.NewProfiler()
//	err := p.Start()
//	defer p.Stop()
package profile
