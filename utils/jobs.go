package utils

import (
	"context"
	"log"
	"sync"
	"time"
)

// DefaultJobTimeout bounds a single background job.
const DefaultJobTimeout = 15 * time.Second

// Jobs runs best-effort work outside the request, such as emails and archive
// writes. Failures are logged. Wait lets shutdown drain whatever is in flight.
type Jobs struct {
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewJobs creates a Jobs runner. A non-positive timeout uses DefaultJobTimeout.
func NewJobs(timeout time.Duration) *Jobs {
	if timeout <= 0 {
		timeout = DefaultJobTimeout
	}
	return &Jobs{timeout: timeout}
}

// Go runs fn on its own goroutine with a context bounded by the job timeout
func (j *Jobs) Go(name string, fn func(ctx context.Context) error) {
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			log.Printf("%s: %v", name, err)
		}
	}()
}

// Wait blocks until every started job has returned
func (j *Jobs) Wait() {
	j.wg.Wait()
}
