// Package crf implements a linear-chain conditional
// random field on top of per-position emission scores.
//
// Training uses Cost, a differentiable negative
// log-likelihood; inference uses Viterbi.
// Both operate on the same Emissions representation and
// the same transition parameter layout.
package crf

import (
	"fmt"
	"math"

	"github.com/unixpickle/anyvec"
)

// Emissions is a row-major matrix of scores, with one row
// per sequence position and one column per label.
type Emissions struct {
	Scores    []float64
	NumLabels int
}

// Len returns the number of positions.
func (e *Emissions) Len() int {
	return len(e.Scores) / e.NumLabels
}

// At returns the score of label j at position t.
func (e *Emissions) At(t, j int) float64 {
	return e.Scores[t*e.NumLabels+j]
}

// Transitions views a transition parameter vector.
//
// The vector has (n+2)*n entries: the first row holds
// start scores, the second row holds end scores, and the
// remaining n rows hold from->to transition scores.
type Transitions struct {
	Data      []float64
	NumLabels int
}

// NumParams returns the size of the transition vector for
// n labels.
func NumParams(n int) int {
	return (n + 2) * n
}

// Start returns the score of starting with label j.
func (t *Transitions) Start(j int) float64 {
	return t.Data[j]
}

// End returns the score of ending with label j.
func (t *Transitions) End(j int) float64 {
	return t.Data[t.NumLabels+j]
}

// Trans returns the score of moving from label i to j.
func (t *Transitions) Trans(i, j int) float64 {
	return t.Data[(2+i)*t.NumLabels+j]
}

func (t *Transitions) check(e *Emissions) {
	if len(t.Data) != NumParams(t.NumLabels) {
		panic(fmt.Sprintf("transition size %d should be %d", len(t.Data),
			NumParams(t.NumLabels)))
	}
	if e.NumLabels != t.NumLabels {
		panic("label count mismatch")
	}
	if len(e.Scores)%e.NumLabels != 0 {
		panic("emission size is not divisible by label count")
	}
}

// Score computes the unnormalized log-score of a label
// path.
func Score(e *Emissions, t *Transitions, labels []int) float64 {
	t.check(e)
	if len(labels) != e.Len() {
		panic("label count does not match sequence length")
	}
	if len(labels) == 0 {
		return 0
	}
	res := t.Start(labels[0]) + t.End(labels[len(labels)-1])
	for i, l := range labels {
		res += e.At(i, l)
		if i > 0 {
			res += t.Trans(labels[i-1], l)
		}
	}
	return res
}

// LogPartition computes the log of the sum of exp(Score)
// over every label path.
func LogPartition(e *Emissions, t *Transitions) float64 {
	t.check(e)
	alpha := forward(e, t)
	if len(alpha) == 0 {
		return 0
	}
	return logPartition(alpha, t)
}

// Viterbi finds the highest-scoring label path.
// The path always has one label per emission row.
func Viterbi(e *Emissions, t *Transitions) []int {
	t.check(e)
	n := e.NumLabels
	length := e.Len()
	if length == 0 {
		return []int{}
	}

	delta := make([]float64, n)
	for j := range delta {
		delta[j] = t.Start(j) + e.At(0, j)
	}
	back := make([][]int, length)
	for step := 1; step < length; step++ {
		back[step] = make([]int, n)
		next := make([]float64, n)
		for j := 0; j < n; j++ {
			best := math.Inf(-1)
			for i := 0; i < n; i++ {
				score := delta[i] + t.Trans(i, j)
				if score > best {
					best = score
					back[step][j] = i
				}
			}
			next[j] = best + e.At(step, j)
		}
		delta = next
	}

	path := make([]int, length)
	best := math.Inf(-1)
	for j := 0; j < n; j++ {
		if score := delta[j] + t.End(j); score > best {
			best = score
			path[length-1] = j
		}
	}
	for step := length - 1; step > 0; step-- {
		path[step-1] = back[step][path[step]]
	}
	return path
}

// forward computes log-space forward variables.
func forward(e *Emissions, t *Transitions) [][]float64 {
	n := e.NumLabels
	length := e.Len()
	alpha := make([][]float64, length)
	if length == 0 {
		return alpha
	}
	alpha[0] = make([]float64, n)
	for j := range alpha[0] {
		alpha[0][j] = t.Start(j) + e.At(0, j)
	}
	terms := make([]float64, n)
	for step := 1; step < length; step++ {
		alpha[step] = make([]float64, n)
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				terms[i] = alpha[step-1][i] + t.Trans(i, j)
			}
			alpha[step][j] = logSumExp(terms) + e.At(step, j)
		}
	}
	return alpha
}

// backward computes log-space backward variables.
func backward(e *Emissions, t *Transitions) [][]float64 {
	n := e.NumLabels
	length := e.Len()
	beta := make([][]float64, length)
	if length == 0 {
		return beta
	}
	beta[length-1] = make([]float64, n)
	for j := range beta[length-1] {
		beta[length-1][j] = t.End(j)
	}
	terms := make([]float64, n)
	for step := length - 2; step >= 0; step-- {
		beta[step] = make([]float64, n)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				terms[j] = t.Trans(i, j) + e.At(step+1, j) + beta[step+1][j]
			}
			beta[step][i] = logSumExp(terms)
		}
	}
	return beta
}

func logPartition(alpha [][]float64, t *Transitions) float64 {
	last := alpha[len(alpha)-1]
	terms := make([]float64, len(last))
	for j, a := range last {
		terms[j] = a + t.End(j)
	}
	return logSumExp(terms)
}

func logSumExp(x []float64) float64 {
	max := math.Inf(-1)
	for _, v := range x {
		if v > max {
			max = v
		}
	}
	if math.IsInf(max, -1) {
		return max
	}
	var sum float64
	for _, v := range x {
		sum += math.Exp(v - max)
	}
	return max + math.Log(sum)
}

// VectorData extracts float64 values from a vector.
func VectorData(v anyvec.Vector) []float64 {
	switch data := v.Data().(type) {
	case []float64:
		return data
	case []float32:
		res := make([]float64, len(data))
		for i, x := range data {
			res[i] = float64(x)
		}
		return res
	default:
		panic(fmt.Sprintf("unsupported vector data: %T", data))
	}
}

// MakeVector creates a vector from float64 values.
func MakeVector(c anyvec.Creator, data []float64) anyvec.Vector {
	return c.MakeVectorData(c.MakeNumericList(data))
}
