package utils

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJobs_WaitDrainsJobs(t *testing.T) {
	jobs := NewJobs(time.Second)

	var done atomic.Int32
	for i := 0; i < 5; i++ {
		jobs.Go("counter", func(ctx context.Context) error {
			time.Sleep(10 * time.Millisecond)
			done.Add(1)
			return nil
		})
	}
	jobs.Go("failing", func(ctx context.Context) error {
		return errors.New("smtp unavailable")
	})

	jobs.Wait()
	assert.Equal(t, int32(5), done.Load())
}

func TestJobs_Timeout(t *testing.T) {
	jobs := NewJobs(20 * time.Millisecond)

	var got error
	jobs.Go("slow", func(ctx context.Context) error {
		<-ctx.Done()
		got = ctx.Err()
		return got
	})

	jobs.Wait()
	assert.ErrorIs(t, got, context.DeadlineExceeded)
}

func TestNewJobs_DefaultTimeout(t *testing.T) {
	assert.Equal(t, DefaultJobTimeout, NewJobs(0).timeout)
}
