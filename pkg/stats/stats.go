// Client-side request statistics: how many requests went to each route
// group, how long they took, and how many bytes came back. Purely passive;
// the executor feeds it when configured with a recorder.
package stats

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type Route struct {
	Requests uint64
	Errors   uint64
	BytesIn  int64
	Elapsed  time.Duration
}

type Recorder struct {
	clock clockwork.Clock

	mu     sync.Mutex
	routes map[string]*Route
}

// NewRecorder returns a recorder using the given clock for durations. Pass a
// clockwork.FakeClock in tests.
func NewRecorder(clock clockwork.Clock) *Recorder {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Recorder{
		clock:  clock,
		routes: map[string]*Route{},
	}
}

// Observe starts timing a request against the given route label. The
// returned func must be called exactly once when the response (or failure)
// is in, with failed=true for transport errors and non-2xx statuses.
func (r *Recorder) Observe(route string) func(failed bool) {
	start := r.clock.Now()
	return func(failed bool) {
		elapsed := r.clock.Since(start)

		r.mu.Lock()
		defer r.mu.Unlock()
		rt := r.route(route)
		rt.Requests++
		rt.Elapsed += elapsed
		if failed {
			rt.Errors++
		}
	}
}

// AddBytes credits n response-body bytes to the route.
func (r *Recorder) AddBytes(route string, n int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.route(route).BytesIn += n
}

// Snapshot returns a copy of all route counters.
func (r *Recorder) Snapshot() map[string]Route {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]Route, len(r.routes))
	for k, v := range r.routes {
		out[k] = *v
	}
	return out
}

func (r *Recorder) route(name string) *Route {
	rt, ok := r.routes[name]
	if !ok {
		rt = &Route{}
		r.routes[name] = rt
	}
	return rt
}
