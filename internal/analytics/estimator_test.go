package analytics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColdStartChange(t *testing.T) {
	tests := []struct {
		price float64
		want  float64
	}{
		// The cold-start formula uses 3.14159 rather than math.Pi, so
		// sin(50 * 3.14159) is not zero and 50 maps to 1.7, not 5.0.
		{price: 50, want: 1.7},
		{price: 42, want: 2.3},
		{price: 45, want: -2.3},
		{price: 55.5, want: -3.6},
		{price: 60, want: -0.5},
		// 20 or more points from 50 has zero volatility.
		{price: 30, want: 0},
		{price: 70, want: 0},
		{price: 80, want: 0},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ColdStartChange(tc.price), "price %v", tc.price)
	}
}

func TestEstimator_FirstObservationUsesColdStart(t *testing.T) {
	e := NewEstimator()
	assert.Equal(t, 1.7, e.Estimate("m1", 50))
	assert.Equal(t, 1, e.Len())

	// A fresh table reproduces the same value.
	assert.Equal(t, 1.7, NewEstimator().Estimate("m1", 50))
}

func TestEstimator_SecondObservationUsesBaseline(t *testing.T) {
	e := NewEstimator()
	first := e.Estimate("m1", 42)
	second := e.Estimate("m1", 42)

	assert.Equal(t, 2.3, first)
	assert.Equal(t, 0.0, second)
	assert.NotEqual(t, first, second)

	e.Estimate("m2", 50)
	assert.InDelta(t, 10.0, e.Estimate("m2", 55), 1e-9)
	assert.InDelta(t, -10.0, e.Estimate("m2", 49.5), 1e-9)
}

func TestEstimator_ZeroBaselineTreatedAsUnseen(t *testing.T) {
	e := NewEstimator()
	assert.Equal(t, 0.0, e.Estimate("m1", 0))
	assert.Equal(t, 1.7, e.Estimate("m1", 50))
}

func TestEstimator_EstimateAllKeepsOrder(t *testing.T) {
	e := NewEstimator()
	e.Estimate("b", 50)

	got := e.EstimateAll([]Observation{
		{ID: "a", Price: 50},
		{ID: "b", Price: 55},
		{ID: "c", Price: 80},
	})
	require.Len(t, got, 3)
	assert.Equal(t, 1.7, got[0])
	assert.InDelta(t, 10.0, got[1], 1e-9)
	assert.Equal(t, 0.0, got[2])
	assert.Equal(t, 3, e.Len())
}

func TestEstimator_ConcurrentPasses(t *testing.T) {
	e := NewEstimator()
	obs := []Observation{{ID: "a", Price: 40}, {ID: "b", Price: 60}}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.EstimateAll(obs)
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, e.Len())
	assert.Equal(t, 0.0, e.Estimate("a", 40))
}
