// Package profiling mounts the net/http/pprof endpoints and a JSON runtime
// stats endpoint. The endpoints expose goroutine stacks and heap contents,
// so they are off unless server.pprof is set, and belong on a loopback or
// otherwise private listener.
package profiling

import (
	"net/http"
	"net/http/pprof"
	"runtime"

	"github.com/partytracker/partytracker/internal/web/response"
	"github.com/partytracker/partytracker/internal/web/router"
)

// Prefix is where the endpoints are mounted. pprof.Index resolves named
// profiles relative to it, so it is not configurable.
const Prefix = "/debug/pprof"

// Config holds profiling configuration
type Config struct {
	// BlockRate is passed to runtime.SetBlockProfileRate when positive
	BlockRate int
	// MutexFraction is passed to runtime.SetMutexProfileFraction when
	// positive
	MutexFraction int
}

// Mount registers the profiling routes on r:
//
//	GET /debug/pprof/            index
//	GET /debug/pprof/{profile}   named profiles, cmdline, profile, symbol, trace
//	GET /debug/pprof/stats       runtime stats as JSON
func Mount(r *router.Router, config Config) {
	if config.BlockRate > 0 {
		runtime.SetBlockProfileRate(config.BlockRate)
	}
	if config.MutexFraction > 0 {
		runtime.SetMutexProfileFraction(config.MutexFraction)
	}

	r.Group(Prefix, func(r *router.Router) {
		r.Get("/", pprof.Index)
		r.Get("/cmdline", pprof.Cmdline)
		r.Get("/profile", pprof.Profile)
		r.Handle("/symbol", http.HandlerFunc(pprof.Symbol))
		r.Get("/trace", pprof.Trace)
		r.Get("/stats", StatsHandler)
		for _, name := range []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"} {
			r.Handle("/"+name, pprof.Handler(name))
		}
	})
}

// Stats is a snapshot of runtime counters
type Stats struct {
	Goroutines int         `json:"goroutines"`
	Memory     MemoryStats `json:"memory"`
	CPU        CPUStats    `json:"cpu"`
}

// MemoryStats is the subset of runtime.MemStats worth watching
type MemoryStats struct {
	Alloc      uint64 `json:"alloc"`
	TotalAlloc uint64 `json:"total_alloc"`
	Sys        uint64 `json:"sys"`
	NumGC      uint32 `json:"num_gc"`
}

type CPUStats struct {
	NumCPU     int   `json:"num_cpu"`
	NumCgoCall int64 `json:"num_cgo_call"`
}

// RuntimeStats returns current runtime statistics
func RuntimeStats() Stats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return Stats{
		Goroutines: runtime.NumGoroutine(),
		Memory: MemoryStats{
			Alloc:      m.Alloc,
			TotalAlloc: m.TotalAlloc,
			Sys:        m.Sys,
			NumGC:      m.NumGC,
		},
		CPU: CPUStats{
			NumCPU:     runtime.NumCPU(),
			NumCgoCall: runtime.NumCgoCall(),
		},
	}
}

// StatsHandler serves RuntimeStats as JSON
func StatsHandler(w http.ResponseWriter, r *http.Request) {
	response.RenderJSON(w, http.StatusOK, RuntimeStats())
}
