package matchlstm

import (
	"math"
	"math/rand"

	"github.com/unixpickle/anydiff"
)

// Direction selects the order in which a Matcher scans
// the evidence.
type Direction int

const (
	// Left scans the evidence from first to last token.
	Left Direction = iota

	// Right scans the evidence from last to first token.
	Right
)

// String returns the parameter namespace of the
// direction.
func (d Direction) String() string {
	if d == Right {
		return "right"
	}
	return "left"
}

// State is the carried state of the matching recurrence.
type State struct {
	H anydiff.Res
	C anydiff.Res
}

// Features holds the co-occurrence embedding tables shared
// by both directions.
type Features struct {
	QE *Param
	EE *Param
}

func newFeatures(p *Params, dim int, gen *rand.Rand) *Features {
	std := 1 / math.Sqrt(64)
	f := &Features{
		QE: p.Normal("_cw_embedding.w0", 2, dim, std, gen),
		EE: p.Normal("_eecom_embedding.w0", 2, dim, std, gen),
	}
	f.QE.L2 = true
	f.EE.L2 = true
	return f
}

// A Matcher is one direction of the Match-LSTM layer.
type Matcher struct {
	Dir      Direction
	Width    int
	Features *Features

	QuestionProj *Param
	Attention    *Attention

	FusionInput *Param
	QEInput     *Param
	EEInput     *Param

	StateWeights *Param
	Bias         *Param
}

func newMatcher(p *Params, dir Direction, width int, features *Features, std float64,
	gen *rand.Rand) *Matcher {
	d := dir.String()
	comDim := features.QE.Cols
	return &Matcher{
		Dir:          dir,
		Width:        width,
		Features:     features,
		QuestionProj: p.Normal("match_lstm_"+d+"_.wq", width, width, std, gen),
		Attention: &Attention{
			CurWeights:   p.Normal(d+".wp", width, width, std, gen),
			PrevWeights:  p.Normal(d+".wr", width, width, std, gen),
			Bias:         p.Normal(d+".bp", 1, width, 0, gen),
			ScoreWeights: p.Normal(d+".w", 1, width, std, gen),
			ScoreBias:    p.Normal(d+".b", 1, 1, 0, gen),
		},
		FusionInput:  p.Normal("match_input_z_"+d+".w0", 4*width, 4*width, std, gen),
		QEInput:      p.Normal("match_input_qe_"+d+".w0", 4*width, comDim, std, gen),
		EEInput:      p.Normal("match_input_ee_"+d+".w0", 4*width, comDim, std, gen),
		StateWeights: p.Normal("step_lstm_"+d+".w", 4*width, width, std, gen),
		Bias:         p.Normal("step_lstm_"+d+".bias", 1, 4*width, 0, gen),
	}
}

// Question projects a question encoding for attention.
func (m *Matcher) Question(enc anydiff.Res, length int) *Question {
	return &Question{
		Len:   length,
		Width: m.Width,
		Enc:   enc,
		Proj:  project(enc, length, m.QuestionProj),
	}
}

// Start returns the zero boot state.
func (m *Matcher) Start() *State {
	c := m.QuestionProj.Var.Vector.Creator()
	return &State{H: zeros(c, m.Width), C: zeros(c, m.Width)}
}

// Step runs one timestep of the recurrence.
// The new state's H is also the step's output.
func (m *Matcher) Step(q *Question, prev *State, cur anydiff.Res, qe, ee int) *State {
	attended, _ := m.Attention.Attend(q, cur, prev.H)
	fused := Fuse(cur, attended)

	input := anydiff.Tanh(anydiff.Add(
		project(fused, 1, m.FusionInput),
		anydiff.Add(
			project(embed(m.Features.QE, qe), 1, m.QEInput),
			project(embed(m.Features.EE, ee), 1, m.EEInput),
		),
	))

	w := m.Width
	gates := anydiff.Add(anydiff.Add(input, project(prev.H, 1, m.StateWeights)), m.Bias.Var)
	inGate := anydiff.Sigmoid(anydiff.Slice(gates, 0, w))
	forgetGate := anydiff.Sigmoid(anydiff.Slice(gates, w, 2*w))
	outGate := anydiff.Sigmoid(anydiff.Slice(gates, 2*w, 3*w))
	candidate := anydiff.Tanh(anydiff.Slice(gates, 3*w, 4*w))

	cell := anydiff.Add(anydiff.Mul(forgetGate, prev.C), anydiff.Mul(inGate, candidate))
	return &State{
		H: anydiff.Mul(outGate, anydiff.Tanh(cell)),
		C: cell,
	}
}

// Recur runs the recurrence over every evidence position
// in the matcher's direction, starting from the boot
// state.
//
// The outputs are returned in evidence order regardless of
// direction.
func (m *Matcher) Recur(q *Question, evidence []anydiff.Res, qe, ee []int) []anydiff.Res {
	if len(qe) != len(evidence) || len(ee) != len(evidence) {
		panic("feature length does not match evidence length")
	}
	outs := make([]anydiff.Res, len(evidence))
	state := m.Start()
	for i := range evidence {
		t := i
		if m.Dir == Right {
			t = len(evidence) - (i + 1)
		}
		state = m.Step(q, state, evidence[t], qe[t], ee[t])
		outs[t] = state.H
	}
	return outs
}
