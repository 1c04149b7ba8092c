package matchlstm

import (
	"fmt"
	"math/rand"

	"github.com/INotWant/QA/crf"
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
)

// project multiplies each of the rows of in by the
// (out x in) weight matrix of w.
func project(in anydiff.Res, rows int, w *Param) anydiff.Res {
	if in.Output().Len() != rows*w.Cols {
		panic(fmt.Sprintf("%s: input size %d should be %d", w.Name, in.Output().Len(),
			rows*w.Cols))
	}
	inMat := &anydiff.Matrix{Data: in, Rows: rows, Cols: w.Cols}
	weights := &anydiff.Matrix{Data: w.Var, Rows: w.Rows, Cols: w.Cols}
	return anydiff.MatMul(false, true, inMat, weights).Data
}

// embed looks up row id of an embedding table.
func embed(table *Param, id int) anydiff.Res {
	if id < 0 || id >= table.Rows {
		panic(fmt.Sprintf("%s: id %d out of range", table.Name, id))
	}
	return anydiff.Slice(table.Var, id*table.Cols, (id+1)*table.Cols)
}

// dropout zeros each component with probability rate and
// scales the survivors by 1/(1-rate).
// It is the identity when gen is nil or rate is 0.
func dropout(in anydiff.Res, rate float64, gen *rand.Rand) anydiff.Res {
	if gen == nil || rate == 0 {
		return in
	}
	keep := 1 - rate
	mask := make([]float64, in.Output().Len())
	for i := range mask {
		if gen.Float64() < keep {
			mask[i] = 1 / keep
		}
	}
	c := in.Output().Creator()
	return anydiff.Mul(in, anydiff.NewConst(crf.MakeVector(c, mask)))
}

func zeros(c anyvec.Creator, n int) anydiff.Res {
	return anydiff.NewConst(c.MakeVector(n))
}
