package matchlstm

import (
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet"
)

// Question is the attention target of the matching
// recurrence: the encoded question and its projection,
// which does not change between timesteps.
type Question struct {
	Len   int
	Width int

	// Enc is the (Len x Width) question encoding.
	Enc anydiff.Res

	// Proj is Enc projected by the direction's question
	// weights.
	Proj anydiff.Res
}

// Attention holds the parameters of one direction's
// attention sub-step.
type Attention struct {
	CurWeights  *Param
	PrevWeights *Param
	Bias        *Param

	ScoreWeights *Param
	ScoreBias    *Param
}

// Attend computes the attended question vector for one
// evidence timestep.
//
// The weights are normalized over the question positions
// and are returned alongside the attended vector.
func (a *Attention) Attend(q *Question, cur, prev anydiff.Res) (attended, weights anydiff.Res) {
	inProj := &anynet.FC{
		InCount:  q.Width,
		OutCount: q.Width,
		Weights:  a.CurWeights.Var,
		Biases:   a.Bias.Var,
	}
	proj := anydiff.Add(inProj.Apply(cur, 1), project(prev, 1, a.PrevWeights))

	context := anydiff.Tanh(anydiff.AddRepeated(q.Proj, proj))

	scorer := &anynet.FC{
		InCount:  q.Width,
		OutCount: 1,
		Weights:  a.ScoreWeights.Var,
		Biases:   a.ScoreBias.Var,
	}
	scores := scorer.Apply(context, q.Len)
	weights = anydiff.Exp(anydiff.LogSoftmax(scores, q.Len))

	weightMat := &anydiff.Matrix{Data: weights, Rows: 1, Cols: q.Len}
	encMat := &anydiff.Matrix{Data: q.Enc, Rows: q.Len, Cols: q.Width}
	attended = anydiff.MatMul(false, false, weightMat, encMat).Data
	return
}
