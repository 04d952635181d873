// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package model

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/tomtom215/lodgerank/internal/recommend"
)

// Adam hyperparameters.
const (
	adamBeta1   = 0.9
	adamBeta2   = 0.999
	adamEpsilon = 1e-8

	// minImprovement is the validation loss decrease that resets patience.
	minImprovement = 1e-6
)

// FitReport summarizes a training run.
type FitReport struct {
	TrainLoss      float64
	ValidationLoss float64
	Epochs         int
	BestEpoch      int
	TrainSamples   int
	HoldoutSamples int
}

// Fit trains a network on (x, y) with mean squared error, Adam and L2
// weight decay. A seeded shuffle splits off cfg.ValidationSplit of the
// samples for validation; training stops early after cfg.Patience epochs
// without improvement and returns the best network seen. Identical inputs
// and seed produce an identical network.
//
//nolint:gocritic // hugeParam: ModelConfig passed by value for immutability
func Fit(ctx context.Context, cfg recommend.ModelConfig, x [][]float64, y []float64) (*Network, FitReport, error) {
	if len(x) != len(y) {
		return nil, FitReport{}, fmt.Errorf("have %d samples and %d labels", len(x), len(y))
	}
	if len(x) < 2 {
		return nil, FitReport{}, errors.New("need at least 2 samples")
	}
	inputs := len(x[0])
	if inputs == 0 {
		return nil, FitReport{}, errors.New("samples have no features")
	}
	for i := range x {
		if len(x[i]) != inputs {
			return nil, FitReport{}, fmt.Errorf("sample %d has %d features, want %d", i, len(x[i]), inputs)
		}
	}

	cfg = withFitDefaults(cfg)
	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // deterministic training, not security

	perm := rng.Perm(len(x))
	holdout := int(float64(len(x)) * cfg.ValidationSplit)
	if holdout < 1 {
		holdout = 1
	}
	valIdx, trainIdx := perm[:holdout], perm[holdout:]

	net := newNetwork(inputs, cfg.Hidden, rng)
	opt := newAdam(net, cfg.LearningRate)
	grads := zeroLike(net)

	report := FitReport{
		ValidationLoss: math.Inf(1),
		TrainSamples:   len(trainIdx),
		HoldoutSamples: len(valIdx),
	}
	best := net.clone()
	stale := 0

	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}

		rng.Shuffle(len(trainIdx), func(i, j int) { trainIdx[i], trainIdx[j] = trainIdx[j], trainIdx[i] })

		var epochLoss float64
		for start := 0; start < len(trainIdx); start += cfg.BatchSize {
			end := start + cfg.BatchSize
			if end > len(trainIdx) {
				end = len(trainIdx)
			}
			grads.reset()
			for _, idx := range trainIdx[start:end] {
				epochLoss += backprop(net, x[idx], y[idx], grads)
			}
			grads.scale(1 / float64(end-start))
			grads.addL2(net, cfg.L2)
			opt.step(net, grads)
		}

		report.Epochs = epoch
		report.TrainLoss = epochLoss / float64(len(trainIdx))

		val := meanSquaredError(net, x, y, valIdx)
		if val < report.ValidationLoss-minImprovement {
			report.ValidationLoss = val
			report.BestEpoch = epoch
			best = net.clone()
			stale = 0
		} else {
			stale++
			if cfg.Patience > 0 && stale >= cfg.Patience {
				break
			}
		}
	}

	if math.IsInf(report.ValidationLoss, 1) || math.IsNaN(report.ValidationLoss) {
		return nil, report, errors.New("training diverged")
	}

	return best, report, nil
}

//nolint:gocritic // hugeParam: ModelConfig passed by value for immutability
func withFitDefaults(cfg recommend.ModelConfig) recommend.ModelConfig {
	defaults := recommend.DefaultConfig().Model
	if len(cfg.Hidden) == 0 {
		cfg.Hidden = defaults.Hidden
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = defaults.LearningRate
	}
	if cfg.Epochs <= 0 {
		cfg.Epochs = defaults.Epochs
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaults.BatchSize
	}
	if cfg.ValidationSplit <= 0 || cfg.ValidationSplit >= 1 {
		cfg.ValidationSplit = defaults.ValidationSplit
	}
	return cfg
}

// backprop accumulates the squared-error gradient of one sample into g and
// returns the sample loss.
func backprop(n *Network, x []float64, y float64, g *gradients) float64 {
	acts := n.forwardTrace(x)
	last := len(n.Weights) - 1
	yhat := acts[last+1][0]
	diff := yhat - y

	delta := []float64{2 * diff * yhat * (1 - yhat)}
	for l := last; l >= 0; l-- {
		in := n.Sizes[l]
		a := acts[l]
		w := n.Weights[l]
		gw, gb := g.w[l], g.b[l]

		for o, d := range delta {
			gb[o] += d
			row := o * in
			for i, v := range a {
				gw[row+i] += d * v
			}
		}

		if l == 0 {
			break
		}
		prev := make([]float64, in)
		for i := range prev {
			if a[i] <= 0 {
				continue
			}
			var s float64
			for o, d := range delta {
				s += w[o*in+i] * d
			}
			prev[i] = s
		}
		delta = prev
	}

	return diff * diff
}

func meanSquaredError(n *Network, x [][]float64, y []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	var sum float64
	for _, i := range idx {
		d := n.Forward(x[i]) - y[i]
		sum += d * d
	}
	return sum / float64(len(idx))
}

// gradients mirrors a network's parameter shapes.
type gradients struct {
	w [][]float64
	b [][]float64
}

func zeroLike(n *Network) *gradients {
	g := &gradients{
		w: make([][]float64, len(n.Weights)),
		b: make([][]float64, len(n.Biases)),
	}
	for l := range n.Weights {
		g.w[l] = make([]float64, len(n.Weights[l]))
		g.b[l] = make([]float64, len(n.Biases[l]))
	}
	return g
}

func (g *gradients) reset() {
	for l := range g.w {
		clear(g.w[l])
		clear(g.b[l])
	}
}

func (g *gradients) scale(f float64) {
	for l := range g.w {
		for i := range g.w[l] {
			g.w[l][i] *= f
		}
		for i := range g.b[l] {
			g.b[l][i] *= f
		}
	}
}

// addL2 adds weight decay to the weight gradients. Biases are not decayed.
func (g *gradients) addL2(n *Network, lambda float64) {
	if lambda <= 0 {
		return
	}
	for l := range g.w {
		for i, w := range n.Weights[l] {
			g.w[l][i] += lambda * w
		}
	}
}

// adam holds first and second moment estimates per parameter.
type adam struct {
	lr     float64
	t      int
	mw, vw [][]float64
	mb, vb [][]float64
}

func newAdam(n *Network, lr float64) *adam {
	m, v := zeroLike(n), zeroLike(n)
	return &adam{lr: lr, mw: m.w, mb: m.b, vw: v.w, vb: v.b}
}

func (a *adam) step(n *Network, g *gradients) {
	a.t++
	c1 := 1 - math.Pow(adamBeta1, float64(a.t))
	c2 := 1 - math.Pow(adamBeta2, float64(a.t))
	for l := range n.Weights {
		update(n.Weights[l], g.w[l], a.mw[l], a.vw[l], a.lr, c1, c2)
		update(n.Biases[l], g.b[l], a.mb[l], a.vb[l], a.lr, c1, c2)
	}
}

func update(params, grads, m, v []float64, lr, c1, c2 float64) {
	for i, gr := range grads {
		m[i] = adamBeta1*m[i] + (1-adamBeta1)*gr
		v[i] = adamBeta2*v[i] + (1-adamBeta2)*gr*gr
		mHat := m[i] / c1
		vHat := v[i] / c2
		params[i] -= lr * mHat / (math.Sqrt(vHat) + adamEpsilon)
	}
}
