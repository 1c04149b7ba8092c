package matchlstm

import (
	"fmt"

	"github.com/unixpickle/anydiff/anyseq"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anynet/anyrnn"
	"github.com/unixpickle/anyvec"
)

// An Encoder is a bidirectional LSTM over a static word
// embedding table.
//
// Its output at each position is the forward state
// followed by the backward state, so the output width is
// twice the embedding width.
type Encoder struct {
	WordVecs *Param
	RNN      *anyrnn.Bidir
}

// NewEncoder creates an encoder whose LSTM parameters are
// registered under the given type tag.
func NewEncoder(p *Params, wordVecs *Param, tag string) *Encoder {
	dim := wordVecs.Cols
	forward := anyrnn.NewLSTM(p.Creator, dim, dim)
	backward := anyrnn.NewLSTM(p.Creator, dim, dim)
	for i, v := range forward.Parameters() {
		p.Var(fmt.Sprintf("f_enc.%s.%d", tag, i), v.Vector.Len(), 1, v)
	}
	for i, v := range backward.Parameters() {
		p.Var(fmt.Sprintf("b_enc.%s.%d", tag, i), v.Vector.Len(), 1, v)
	}
	return &Encoder{
		WordVecs: wordVecs,
		RNN: &anyrnn.Bidir{
			Forward:  forward,
			Backward: backward,
			Mixer:    &anynet.ConcatMixer{},
		},
	}
}

// Width returns the size of each output vector.
func (e *Encoder) Width() int {
	return 2 * e.WordVecs.Cols
}

// Encode runs the encoder on a token sequence.
func (e *Encoder) Encode(ids []int) anyseq.Seq {
	c := e.WordVecs.Var.Vector.Creator()
	dim := e.WordVecs.Cols
	embs := make([]anyvec.Vector, len(ids))
	for i, id := range ids {
		if id < 0 || id >= e.WordVecs.Rows {
			panic(fmt.Sprintf("token id %d out of range", id))
		}
		embs[i] = e.WordVecs.Var.Vector.Slice(id*dim, (id+1)*dim)
	}
	return e.RNN.Apply(anyseq.ConstSeqList(c, [][]anyvec.Vector{embs}))
}
