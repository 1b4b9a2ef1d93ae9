package vocal

import (
	"runtime"
	"sync"

	"github.com/RyanBlaney/sonido-vocals/logging"
)

// AnalyzeBatch analyzes independent buffers in parallel and returns the
// results in input order. The worker count comes from Config.Workers, or
// runtime.NumCPU when that is zero.
func (a *Analyzer) AnalyzeBatch(buffers []*AudioBuffer) []*VocalFeatures {
	results := make([]*VocalFeatures, len(buffers))
	if len(buffers) == 0 {
		return results
	}

	numWorkers := a.config.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	numWorkers = min(numWorkers, len(buffers))

	type bufferJob struct {
		index  int
		buffer *AudioBuffer
	}

	jobs := make(chan bufferJob, len(buffers))

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				results[job.index] = a.Analyze(job.buffer)
			}
		}()
	}

	for i, buf := range buffers {
		jobs <- bufferJob{index: i, buffer: buf}
	}
	close(jobs)

	wg.Wait()

	a.logger.Debug("Batch analysis completed", logging.Fields{
		"buffers": len(buffers),
		"workers": numWorkers,
	})

	return results
}
