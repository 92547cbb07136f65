package processor

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/CST-Modelling-Tools/tonatiuhXX-angular-distribution-analysis/log"
	"github.com/CST-Modelling-Tools/tonatiuhXX-angular-distribution-analysis/trace"
)

var logger = log.New("processor")

// DefaultBatchSize is the number of ray paths per batch when the caller
// does not specify one.
const DefaultBatchSize = 10000

// Options control a parallel run.
type Options struct {
	// Number of worker goroutines. Defaults to runtime.NumCPU().
	NumWorkers int

	// Number of ray paths served per batch. Defaults to
	// DefaultBatchSize.
	BatchSize int
}

// Run drives the server on a producer goroutine and fans the served
// batches out to a pool of workers running proc.
//
// The returned results are ordered by worker completion, not by stream
// order; callers that need stream order must carry their own sequence
// information in the result type. On any server or processing error the
// run is cancelled, in-flight work is discarded and the first observed
// error is returned.
func Run[R any](server *trace.Server, proc Processor[R], opts Options) ([]R, error) {
	numWorkers := opts.NumWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	// The queue is bounded so a slow consumer backpressures the
	// producer instead of buffering the whole trace in memory.
	batches := make(chan []trace.RayPath, 2*numWorkers)

	var (
		stop     atomic.Bool
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() { firstErr = err })
		stop.Store(true)
	}

	go func() {
		defer close(batches)
		for !stop.Load() {
			batch, err := server.ServeRayPaths(batchSize)
			if err != nil {
				fail(err)
				return
			}
			if len(batch) == 0 {
				return
			}
			batches <- batch
		}
	}()

	var (
		wg        sync.WaitGroup
		resultsMu sync.Mutex
		results   []R
	)
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			var local []R
			for batch := range batches {
				// Keep draining after a failure so the
				// producer never blocks on a full queue.
				if stop.Load() {
					continue
				}
				for i := range batch {
					result, ok, err := proc.Process(&batch[i])
					if err != nil {
						fail(err)
						break
					}
					if ok {
						local = append(local, result)
					}
				}
			}

			resultsMu.Lock()
			results = append(results, local...)
			resultsMu.Unlock()
		}()
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	logger.Debugf("run finished with %d results using %d workers", len(results), numWorkers)
	return results, nil
}
