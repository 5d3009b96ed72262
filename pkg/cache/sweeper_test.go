package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePurger struct {
	calls   atomic.Int32
	removed int64
	err     error
	lastNow time.Time
}

func (p *fakePurger) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	p.calls.Add(1)
	p.lastNow = now
	return p.removed, p.err
}

func TestSweep(t *testing.T) {
	p := &fakePurger{removed: 3}
	s, err := NewSweeper(p, "", zap.NewNop())
	require.NoError(t, err)

	fixed := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	assert.Equal(t, int64(3), s.Sweep(context.Background()))
	assert.Equal(t, fixed, p.lastNow)

	p.err = errors.New("database is locked")
	assert.Equal(t, int64(0), s.Sweep(context.Background()))
}

func TestNewSweeperRejectsBadSchedule(t *testing.T) {
	_, err := NewSweeper(&fakePurger{}, "every now and then", nil)
	assert.Error(t, err)
}

func TestSweeperRunsOnSchedule(t *testing.T) {
	p := &fakePurger{}
	s, err := NewSweeper(p, "@every 1s", nil)
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool { return p.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}
