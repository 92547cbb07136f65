// Package processor runs pluggable per-raypath computations over the
// stream served by a trace.Server, optionally in parallel.
package processor

import (
	"github.com/CST-Modelling-Tools/tonatiuhXX-angular-distribution-analysis/trace"
)

// Processor is a pure, thread-safe operation from a ray path to an
// optional result.
//
// ok reports whether the path produced a result; a path that is simply
// not relevant (for example one that never touches the reference surface)
// returns ok == false with a nil error. A non-nil error signals an
// invariant violation and aborts the whole run.
//
// Process must not retain state between calls and must not mutate the
// ray path or shared memory; the executor invokes it from several
// goroutines at once.
type Processor[R any] interface {
	Process(path *trace.RayPath) (result R, ok bool, err error)
}

// Func adapts a plain function to the Processor interface.
type Func[R any] func(path *trace.RayPath) (R, bool, error)

func (f Func[R]) Process(path *trace.RayPath) (R, bool, error) {
	return f(path)
}
