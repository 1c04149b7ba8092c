// Package matchlstm implements a Match-LSTM tagger for
// extracting answers from evidence passages.
//
// The network encodes the question and the evidence with
// a shared bidirectional LSTM, then runs a matching
// recurrence over the evidence in both directions.
// At every evidence position, the recurrence attends over
// the question conditioned on its previous state.
// A CRF on top of a linear projection tags each evidence
// token.
package matchlstm

import (
	"fmt"
	"math/rand"

	"github.com/INotWant/QA/config"
	"github.com/INotWant/QA/crf"
	"github.com/INotWant/QA/reader"
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
)

// Network is the full tagging network.
type Network struct {
	Params *Params

	LabelNum int
	DropRate float64

	Encoder  *Encoder
	Features *Features
	Left     *Matcher
	Right    *Matcher

	Output *Param
	CRF    *Param
}

// New creates a network with freshly initialized
// parameters.
//
// The wordVecs table has one row of cfg.WordVecDim values
// per vocabulary id; it is treated as static.
func New(c anyvec.Creator, cfg *config.Config, wordVecs []float64, gen *rand.Rand) *Network {
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	dim := cfg.WordVecDim
	if len(wordVecs)%dim != 0 || len(wordVecs) == 0 {
		panic(fmt.Sprintf("word vector table size %d is not a multiple of %d",
			len(wordVecs), dim))
	}
	p := NewParams(c)
	words := p.Data("wordvecs", len(wordVecs)/dim, dim, wordVecs)
	words.Static = true

	n := &Network{
		Params:   p,
		LabelNum: cfg.LabelNum,
		DropRate: cfg.DropRate,
	}
	n.Encoder = NewEncoder(p, words, "q")
	width := n.Encoder.Width()
	std := cfg.DefaultInitStd
	n.Features = newFeatures(p, cfg.ComVecDim, gen)
	n.Left = newMatcher(p, Left, width, n.Features, std, gen)
	n.Right = newMatcher(p, Right, width, n.Features, std, gen)

	n.Output = p.Normal("_output.w0", cfg.LabelNum, 2*width, std, gen)
	n.Output.L2 = true
	n.CRF = p.Normal("_crf.w0", cfg.LabelNum+2, cfg.LabelNum, std, gen)
	n.CRF.L2 = true
	return n
}

// Match runs the encoders and both matching directions,
// producing a (len(s.Evidence) x 2*width) matrix.
//
// If gen is non-nil, dropout is applied using it.
func (n *Network) Match(s *reader.Sample, gen *rand.Rand) anydiff.Res {
	if err := s.Validate(); err != nil {
		panic(err)
	}
	qSeq := n.Encoder.Encode(s.Question)
	eSeq := n.Encoder.Encode(s.Evidence)
	return poolSeq(qSeq, func(qSteps []anydiff.Res) anydiff.Res {
		return poolSeq(eSeq, func(eSteps []anydiff.Res) anydiff.Res {
			for i, x := range qSteps {
				qSteps[i] = dropout(x, n.DropRate, gen)
			}
			for i, x := range eSteps {
				eSteps[i] = dropout(x, n.DropRate, gen)
			}
			qEnc := anydiff.Concat(qSteps...)
			left := n.Left.Recur(n.Left.Question(qEnc, len(qSteps)), eSteps,
				s.QEComm, s.EEComm)
			right := n.Right.Recur(n.Right.Question(qEnc, len(qSteps)), eSteps,
				s.QEComm, s.EEComm)
			matched := make([]anydiff.Res, len(eSteps))
			for i := range matched {
				matched[i] = dropout(anydiff.Concat(left[i], right[i]), n.DropRate, gen)
			}
			return anydiff.Concat(matched...)
		})
	})
}

// Emissions computes the per-position tag scores as a
// (len(s.Evidence) x LabelNum) matrix.
func (n *Network) Emissions(s *reader.Sample, gen *rand.Rand) anydiff.Res {
	return project(n.Match(s, gen), len(s.Evidence), n.Output)
}

// Cost computes the CRF negative log-likelihood of the
// sample's labels, with dropout driven by gen.
func (n *Network) Cost(s *reader.Sample, gen *rand.Rand) anydiff.Res {
	if s.Labels == nil {
		panic("sample has no labels")
	}
	return crf.Cost(n.Emissions(s, gen), n.CRF.Var, s.Labels, n.LabelNum)
}

// Decode finds the best tag path for the sample, with
// dropout disabled.
func (n *Network) Decode(s *reader.Sample) []int {
	e := &crf.Emissions{
		Scores:    crf.VectorData(n.Emissions(s, nil).Output()),
		NumLabels: n.LabelNum,
	}
	t := &crf.Transitions{
		Data:      crf.VectorData(n.CRF.Var.Vector),
		NumLabels: n.LabelNum,
	}
	return crf.Viterbi(e, t)
}
