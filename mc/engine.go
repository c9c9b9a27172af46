// Package mc evolves a model's state vector across event dates for a number
// of independent Monte Carlo paths. Paths are processed in blocks to bound
// peak memory; normal draws are materialized sequentially in path order
// before a block is evaluated, so results are identical for any block size
// and reproducible for a fixed source.
package mc

import (
	"errors"
	"fmt"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrNumericalDomain reports a transition step that produced a non-finite or
// domain-invalid state. No partial results are returned.
var ErrNumericalDomain = errors.New("mc: state evolution produced a numerically invalid value")

// StateEvolver advances one path's state vector between two event times.
type StateEvolver interface {
	// FactorCount is the number of independent normal draws per step.
	FactorCount() int
	// InitialState is the model-and-market-implied state at the valuation
	// date.
	InitialState() []float64
	// Evolve writes the state at t1 into dst given the state at t0 and one
	// standard normal draw vector z of length FactorCount.
	Evolve(dst, state []float64, t0, t1 float64, z []float64) error
}

const defaultPathBlock = 1000

// Engine runs the path evolution. The zero value is not ready; use NewEngine.
type Engine struct {
	// PathBlock is the number of paths evaluated per block.
	PathBlock int
	// Progress draws a terminal progress bar over blocks for long runs.
	Progress bool
}

func NewEngine() Engine {
	return Engine{PathBlock: defaultPathBlock}
}

// EvolvePaths simulates pathCount paths over the ordered event times and
// hands each path's states to visit in path order. states[k] is the state
// vector at times[k]; the slice is reused across blocks and must be consumed
// before visit returns.
func (e Engine) EvolvePaths(ev StateEvolver, times []float64, src rand.Source, pathCount int, visit func(path int, states [][]float64) error) error {
	if len(times) == 0 {
		return errors.New("mc: no event times")
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return fmt.Errorf("mc: event times must be strictly increasing at index %d", i)
		}
	}
	block := e.PathBlock
	if block <= 0 {
		block = defaultPathBlock
	}

	nSteps := len(times)
	factors := ev.FactorCount()
	initial := ev.InitialState()
	dim := len(initial)
	d := distuv.Normal{Mu: 0.0, Sigma: 1.0, Src: src}

	var bar *progressbar.ProgressBar
	if e.Progress {
		bar = progressBar((pathCount + block - 1) / block)
	}

	states := make([][][]float64, block)
	for p := range states {
		states[p] = make([][]float64, nSteps)
		for k := range states[p] {
			states[p][k] = make([]float64, dim)
		}
	}
	draws := make([][]float64, block)
	for p := range draws {
		draws[p] = make([]float64, nSteps*factors)
	}
	errs := make([]error, block)

	for start := 0; start < pathCount; start += block {
		n := block
		if start+n > pathCount {
			n = pathCount - start
		}
		// Draws are consumed strictly in path order so the result does not
		// depend on the block size or on scheduling.
		for p := 0; p < n; p++ {
			for i := range draws[p] {
				draws[p][i] = d.Rand()
			}
		}

		var wg sync.WaitGroup
		wg.Add(n)
		for p := 0; p < n; p++ {
			go func(p int) {
				defer wg.Done()
				errs[p] = evolvePath(ev, times, initial, draws[p], factors, states[p])
			}(p)
		}
		wg.Wait()
		for p := 0; p < n; p++ {
			if errs[p] != nil {
				return errs[p]
			}
		}

		for p := 0; p < n; p++ {
			if err := visit(start+p, states[p]); err != nil {
				return err
			}
		}
		logrus.WithFields(logrus.Fields{
			"block": start / block,
			"paths": start + n,
		}).Debug("evolution block")
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	return nil
}

func evolvePath(ev StateEvolver, times, initial, draws []float64, factors int, out [][]float64) error {
	state := append([]float64(nil), initial...)
	t0 := 0.0
	for k, t1 := range times {
		z := draws[k*factors : (k+1)*factors]
		if err := ev.Evolve(out[k], state, t0, t1, z); err != nil {
			return err
		}
		copy(state, out[k])
		t0 = t1
	}
	return nil
}
