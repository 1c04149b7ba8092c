package matchlstm

import (
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anydiff/anyseq"
	"github.com/unixpickle/anyvec"
)

type poolSeqRes struct {
	In       anyseq.Seq
	Res      anydiff.Res
	UsedVars anydiff.VarSet

	PoolVars []*anydiff.Var
	Presents [][]bool
}

// poolSeq splits a single-lane sequence into one pooled
// variable per timestep and passes them to f.
//
// The result of f propagates through s exactly once, no
// matter how many times f uses each timestep.
func poolSeq(s anyseq.Seq, f func(steps []anydiff.Res) anydiff.Res) anydiff.Res {
	res := &poolSeqRes{In: s}

	var steps []anydiff.Res
	for _, timestep := range s.Output() {
		if timestep.NumPresent() != 1 {
			panic("pooled sequences must have exactly one lane")
		}
		v := anydiff.NewVar(timestep.Packed)
		res.PoolVars = append(res.PoolVars, v)
		res.Presents = append(res.Presents, timestep.Present)
		steps = append(steps, v)
	}
	res.Res = f(steps)

	// Keep our set of variables correct when f ignores
	// its input entirely.
	indepOfInput := true
	for _, v := range res.PoolVars {
		if res.Res.Vars().Has(v) {
			indepOfInput = false
			break
		}
	}
	if indepOfInput {
		return res.Res
	}

	res.UsedVars = anydiff.MergeVarSets(s.Vars(), res.Res.Vars())
	for _, v := range res.PoolVars {
		res.UsedVars.Del(v)
	}

	return res
}

func (p *poolSeqRes) Vars() anydiff.VarSet {
	return p.UsedVars
}

func (p *poolSeqRes) Output() anyvec.Vector {
	return p.Res.Output()
}

func (p *poolSeqRes) Propagate(u anyvec.Vector, g anydiff.Grad) {
	for _, v := range p.PoolVars {
		g[v] = v.Vector.Creator().MakeVector(v.Vector.Len())
	}

	p.Res.Propagate(u, g)

	upstream := make([]*anyseq.Batch, len(p.PoolVars))
	for i, v := range p.PoolVars {
		upstream[i] = &anyseq.Batch{
			Packed:  g[v],
			Present: p.Presents[i],
		}
		delete(g, v)
	}

	if g.Intersects(p.In.Vars()) {
		p.In.Propagate(upstream, g)
	}
}
