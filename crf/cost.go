package crf

import (
	"math"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
)

type costRes struct {
	In     anydiff.Res
	Trans  *anydiff.Var
	Labels []int

	Emit  *Emissions
	T     *Transitions
	Alpha [][]float64
	LogZ  float64

	OutVec anyvec.Vector
	V      anydiff.VarSet
}

// Cost computes the negative log-likelihood of a label
// sequence.
//
// The emissions are a row-major (len(labels) x n) matrix
// and trans is a transition vector in the layout described
// by Transitions.
// The result is a 1-component vector.
func Cost(emissions anydiff.Res, trans *anydiff.Var, labels []int, n int) anydiff.Res {
	e := &Emissions{Scores: VectorData(emissions.Output()), NumLabels: n}
	t := &Transitions{Data: VectorData(trans.Output()), NumLabels: n}
	t.check(e)
	if e.Len() != len(labels) || len(labels) == 0 {
		panic("label count does not match sequence length")
	}
	for _, l := range labels {
		if l < 0 || l >= n {
			panic("label out of range")
		}
	}
	alpha := forward(e, t)
	logZ := logPartition(alpha, t)
	c := emissions.Output().Creator()
	return &costRes{
		In:     emissions,
		Trans:  trans,
		Labels: labels,
		Emit:   e,
		T:      t,
		Alpha:  alpha,
		LogZ:   logZ,
		OutVec: MakeVector(c, []float64{logZ - Score(e, t, labels)}),
		V:      anydiff.MergeVarSets(emissions.Vars(), anydiff.NewVarSet(trans)),
	}
}

func (c *costRes) Output() anyvec.Vector {
	return c.OutVec
}

func (c *costRes) Vars() anydiff.VarSet {
	return c.V
}

func (c *costRes) Propagate(u anyvec.Vector, g anydiff.Grad) {
	scale := VectorData(u)[0]
	n := c.Emit.NumLabels
	length := c.Emit.Len()
	beta := backward(c.Emit, c.T)

	emitGrad := make([]float64, length*n)
	transGrad := make([]float64, NumParams(n))
	for step := 0; step < length; step++ {
		for j := 0; j < n; j++ {
			p := math.Exp(c.Alpha[step][j] + beta[step][j] - c.LogZ)
			emitGrad[step*n+j] = p
			if step == 0 {
				transGrad[j] += p
			}
			if step == length-1 {
				transGrad[n+j] += p
			}
			if step == 0 {
				continue
			}
			for i := 0; i < n; i++ {
				pair := c.Alpha[step-1][i] + c.T.Trans(i, j) + c.Emit.At(step, j) +
					beta[step][j] - c.LogZ
				transGrad[(2+i)*n+j] += math.Exp(pair)
			}
		}
	}
	for step, l := range c.Labels {
		emitGrad[step*n+l]--
		if step > 0 {
			transGrad[(2+c.Labels[step-1])*n+l]--
		}
	}
	transGrad[c.Labels[0]]--
	transGrad[n+c.Labels[length-1]]--

	for i := range emitGrad {
		emitGrad[i] *= scale
	}
	for i := range transGrad {
		transGrad[i] *= scale
	}

	cr := u.Creator()
	if tg, ok := g[c.Trans]; ok {
		tg.Add(MakeVector(cr, transGrad))
	}
	if g.Intersects(c.In.Vars()) {
		c.In.Propagate(MakeVector(cr, emitGrad), g)
	}
}
