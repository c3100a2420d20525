package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWait_DisabledIsNoOp(t *testing.T) {
	l := New(1, false)
	start := time.Now()
	for i := 0; i < 5; i++ {
		assert.NoError(t, l.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestWait_NilLimiterIsNoOp(t *testing.T) {
	var l *Limiter
	assert.NoError(t, l.Wait(context.Background()))
}

func TestWait_RespectsContextCancellation(t *testing.T) {
	l := New(0.001, true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := l.Wait(ctx)
	assert.Error(t, err)
}

func TestNew_NonPositiveRateFallsBackToOne(t *testing.T) {
	l := New(0, true)
	assert.NotNil(t, l.bucket)
}
