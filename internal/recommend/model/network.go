// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package model

import (
	"fmt"
	"math"
	"math/rand"
)

// Network is a fully connected feed-forward regressor with ReLU hidden
// layers and a single sigmoid output.
//
// Sizes lists layer widths from input to output (output width is 1).
// Weights[l] is row-major with Sizes[l+1] rows of Sizes[l] inputs.
type Network struct {
	Sizes   []int
	Weights [][]float64
	Biases  [][]float64
}

// newNetwork creates a network with He-initialized weights drawn from rng.
func newNetwork(inputs int, hidden []int, rng *rand.Rand) *Network {
	sizes := make([]int, 0, len(hidden)+2)
	sizes = append(sizes, inputs)
	sizes = append(sizes, hidden...)
	sizes = append(sizes, 1)

	n := &Network{
		Sizes:   sizes,
		Weights: make([][]float64, len(sizes)-1),
		Biases:  make([][]float64, len(sizes)-1),
	}
	for l := 0; l < len(sizes)-1; l++ {
		in, out := sizes[l], sizes[l+1]
		std := math.Sqrt(2.0 / float64(in))
		w := make([]float64, in*out)
		for i := range w {
			w[i] = rng.NormFloat64() * std
		}
		n.Weights[l] = w
		n.Biases[l] = make([]float64, out)
	}
	return n
}

// Inputs returns the expected input width.
func (n *Network) Inputs() int {
	if len(n.Sizes) == 0 {
		return 0
	}
	return n.Sizes[0]
}

// validate checks that the layer shapes agree.
func (n *Network) validate() error {
	if len(n.Sizes) < 2 {
		return fmt.Errorf("network needs at least 2 layers, got %d", len(n.Sizes))
	}
	if n.Sizes[len(n.Sizes)-1] != 1 {
		return fmt.Errorf("network output width must be 1, got %d", n.Sizes[len(n.Sizes)-1])
	}
	if len(n.Weights) != len(n.Sizes)-1 || len(n.Biases) != len(n.Sizes)-1 {
		return fmt.Errorf("network has %d weight and %d bias layers for %d sizes",
			len(n.Weights), len(n.Biases), len(n.Sizes))
	}
	for l := range n.Weights {
		in, out := n.Sizes[l], n.Sizes[l+1]
		if len(n.Weights[l]) != in*out {
			return fmt.Errorf("layer %d: %d weights, want %d", l, len(n.Weights[l]), in*out)
		}
		if len(n.Biases[l]) != out {
			return fmt.Errorf("layer %d: %d biases, want %d", l, len(n.Biases[l]), out)
		}
	}
	return nil
}

// Forward returns the network output for x. It does not modify the network.
func (n *Network) Forward(x []float64) float64 {
	a := x
	last := len(n.Weights) - 1
	for l := range n.Weights {
		a = n.layer(l, a, l == last)
	}
	return a[0]
}

// forwardTrace returns the activations of every layer, input included.
func (n *Network) forwardTrace(x []float64) [][]float64 {
	acts := make([][]float64, len(n.Sizes))
	acts[0] = x
	last := len(n.Weights) - 1
	for l := range n.Weights {
		acts[l+1] = n.layer(l, acts[l], l == last)
	}
	return acts
}

func (n *Network) layer(l int, in []float64, output bool) []float64 {
	width := n.Sizes[l]
	w, b := n.Weights[l], n.Biases[l]
	out := make([]float64, len(b))
	for o := range out {
		z := b[o]
		row := w[o*width : (o+1)*width]
		for i, v := range in {
			z += row[i] * v
		}
		if output {
			out[o] = sigmoid(z)
		} else if z > 0 {
			out[o] = z
		}
	}
	return out
}

// clone returns a deep copy.
func (n *Network) clone() *Network {
	c := &Network{
		Sizes:   append([]int(nil), n.Sizes...),
		Weights: make([][]float64, len(n.Weights)),
		Biases:  make([][]float64, len(n.Biases)),
	}
	for l := range n.Weights {
		c.Weights[l] = append([]float64(nil), n.Weights[l]...)
		c.Biases[l] = append([]float64(nil), n.Biases[l]...)
	}
	return c
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
