package analytics

import (
	"math"
	"sync"
)

// coldStartPi is the truncated constant the cold-start seed has always used.
// Swapping in math.Pi changes published outputs.
const coldStartPi = 3.14159

// Observation is one (market, current price) pair seen during a refresh.
type Observation struct {
	ID    string
	Price float64
}

// Estimator derives a 24h percentage change from the last price observed for
// each market in this process. The table grows for the process lifetime and
// is never evicted.
type Estimator struct {
	mu   sync.Mutex
	prev map[string]float64
}

// NewEstimator returns an Estimator with an empty previous-price table.
func NewEstimator() *Estimator {
	return &Estimator{prev: make(map[string]float64)}
}

// Estimate returns the change for a single observation and records price as
// the new baseline for id.
func (e *Estimator) Estimate(id string, price float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.estimateLocked(id, price)
}

// EstimateAll applies Estimate to every observation under a single lock
// acquisition so one refresh pass never interleaves with another. Results are
// returned in input order.
func (e *Estimator) EstimateAll(obs []Observation) []float64 {
	out := make([]float64, len(obs))

	e.mu.Lock()
	defer e.mu.Unlock()
	for i, o := range obs {
		out[i] = e.estimateLocked(o.ID, o.Price)
	}
	return out
}

// Len reports how many markets have a recorded baseline.
func (e *Estimator) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.prev)
}

func (e *Estimator) estimateLocked(id string, price float64) float64 {
	prev, ok := e.prev[id]
	e.prev[id] = price

	// A zero baseline is treated as unseen; the ratio is undefined.
	if !ok || prev == 0 {
		return ColdStartChange(price)
	}
	return (price - prev) / prev * 100
}

// ColdStartChange is the deterministic placeholder change used the first time
// a market is observed. Prices near 50 get the widest swing; prices 20 or
// more points away from 50 always yield 0.
func ColdStartChange(price float64) float64 {
	distance := math.Abs(price - 50)
	volatility := math.Max(0, 20-distance) / 20

	pseudoRandom := frac(math.Sin(price*coldStartPi) * 10000)
	return round1((pseudoRandom - 0.5) * 10 * volatility)
}
