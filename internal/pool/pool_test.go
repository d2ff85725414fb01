package pool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolRunsAllTasks(t *testing.T) {
	p := New(context.Background(), 4)
	var count int64
	for i := 0; i < 50; i++ {
		p.Submit(func(ctx context.Context) error {
			atomic.AddInt64(&count, 1)
			return nil
		})
	}
	assert.NoError(t, p.Join())
	assert.Equal(t, int64(50), count)
}

func TestPoolCapturesFirstError(t *testing.T) {
	p := New(context.Background(), 2)
	boom := errors.New("boom")
	p.Submit(func(ctx context.Context) error { return boom })
	p.Submit(func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, p.Join(), boom)
}

func TestPoolErrorDoesNotAbortSiblings(t *testing.T) {
	p := New(context.Background(), 1)
	boom := errors.New("boom")
	var ran int64

	p.Submit(func(ctx context.Context) error { return boom })
	for i := 0; i < 20; i++ {
		p.Submit(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			atomic.AddInt64(&ran, 1)
			return nil
		})
	}

	assert.ErrorIs(t, p.Join(), boom)
	assert.Equal(t, int64(20), ran)
}

func TestSubmitAfterJoinPanics(t *testing.T) {
	p := New(context.Background(), 1)
	assert.NoError(t, p.Join())
	assert.Panics(t, func() {
		p.Submit(func(ctx context.Context) error { return nil })
	})
}

func TestDoubleJoinPanics(t *testing.T) {
	p := New(context.Background(), 1)
	assert.NoError(t, p.Join())
	assert.Panics(t, func() { p.Join() })
}
