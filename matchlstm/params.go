package matchlstm

import (
	"fmt"
	"math/rand"

	"github.com/INotWant/QA/crf"
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
)

// A Param is a named weight tensor.
//
// Weights are stored row-major with Rows*Cols entries.
// Projection matrices are (out x in).
type Param struct {
	Name string
	Rows int
	Cols int
	Var  *anydiff.Var

	// Static parameters are never updated by training.
	Static bool

	// L2 marks parameters which receive L2 regularization.
	L2 bool
}

// Params is an ordered set of named parameters.
//
// Names are deterministic, so a saved set can be bound to
// a freshly constructed network.
type Params struct {
	Creator anyvec.Creator

	byName map[string]*Param
	order  []*Param
}

// NewParams creates an empty parameter set.
func NewParams(c anyvec.Creator) *Params {
	return &Params{Creator: c, byName: map[string]*Param{}}
}

// Get returns a parameter by name, or nil.
func (p *Params) Get(name string) *Param {
	return p.byName[name]
}

// List returns the parameters in creation order.
func (p *Params) List() []*Param {
	return append([]*Param{}, p.order...)
}

// Trainable returns the variables of the non-static
// parameters.
func (p *Params) Trainable() []*anydiff.Var {
	var res []*anydiff.Var
	for _, param := range p.order {
		if !param.Static {
			res = append(res, param.Var)
		}
	}
	return res
}

// Regularized returns the parameters which receive L2
// regularization.
func (p *Params) Regularized() []*Param {
	var res []*Param
	for _, param := range p.order {
		if param.L2 && !param.Static {
			res = append(res, param)
		}
	}
	return res
}

// Normal adds a parameter drawn from N(0, std).
// A std of 0 yields a zero tensor.
func (p *Params) Normal(name string, rows, cols int, std float64, gen *rand.Rand) *Param {
	data := make([]float64, rows*cols)
	if std != 0 {
		for i := range data {
			data[i] = gen.NormFloat64() * std
		}
	}
	return p.Data(name, rows, cols, data)
}

// Data adds a parameter with the given contents.
func (p *Params) Data(name string, rows, cols int, data []float64) *Param {
	if len(data) != rows*cols {
		panic(fmt.Sprintf("parameter %s: expected %d values but got %d", name,
			rows*cols, len(data)))
	}
	v := anydiff.NewVar(crf.MakeVector(p.Creator, data))
	return p.Var(name, rows, cols, v)
}

// Var adds an existing variable as a parameter.
func (p *Params) Var(name string, rows, cols int, v *anydiff.Var) *Param {
	if _, ok := p.byName[name]; ok {
		panic("duplicate parameter: " + name)
	}
	if v.Vector.Len() != rows*cols {
		panic(fmt.Sprintf("parameter %s: expected %d values but got %d", name,
			rows*cols, v.Vector.Len()))
	}
	param := &Param{Name: name, Rows: rows, Cols: cols, Var: v}
	p.byName[name] = param
	p.order = append(p.order, param)
	return param
}
