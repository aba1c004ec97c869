package workpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapKeepsInputOrder(t *testing.T) {
	p := New(3)
	items := []int{5, 1, 4, 2, 3}
	out, err := Map(context.Background(), p, items, func(_ context.Context, v int) (int, error) {
		time.Sleep(time.Duration(v) * time.Millisecond)
		return v * 10, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{50, 10, 40, 20, 30}, out)
}

func TestMapRespectsLimit(t *testing.T) {
	p := New(2)
	var running, peak atomic.Int32
	_, err := Map(context.Background(), p, make([]int, 10), func(_ context.Context, _ int) (struct{}, error) {
		n := running.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		running.Add(-1)
		return struct{}{}, nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestMapReturnsError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Map(context.Background(), New(4), []int{1, 2, 3}, func(_ context.Context, v int) (int, error) {
		if v == 2 {
			return 0, boom
		}
		return v, nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestNewDefaultsSize(t *testing.T) {
	assert.Positive(t, New(0).Size())
	assert.Equal(t, 7, New(7).Size())
}
