// Package archive saves and loads the named parameters of
// a network as a single versioned file.
package archive

import (
	"compress/gzip"
	"encoding/gob"
	"errors"
	"fmt"
	"io"

	"github.com/INotWant/QA/crf"
	"github.com/INotWant/QA/matchlstm"
	"github.com/unixpickle/essentials"
)

// Version is the current archive format version.
const Version = 1

// A Tensor is one saved parameter.
type Tensor struct {
	Name string
	Rows int
	Cols int
	Data []float64
}

type archive struct {
	Version int
	Tensors []Tensor
}

// Save writes every parameter to w.
func Save(w io.Writer, params *matchlstm.Params) error {
	a := archive{Version: Version}
	for _, p := range params.List() {
		data := crf.VectorData(p.Var.Vector)
		a.Tensors = append(a.Tensors, Tensor{
			Name: p.Name,
			Rows: p.Rows,
			Cols: p.Cols,
			Data: append([]float64{}, data...),
		})
	}
	gz := gzip.NewWriter(w)
	if err := gob.NewEncoder(gz).Encode(&a); err != nil {
		gz.Close()
		return essentials.AddCtx("save archive", err)
	}
	if err := gz.Close(); err != nil {
		return essentials.AddCtx("save archive", err)
	}
	return nil
}

// Load reads an archive and binds it to params by name.
//
// The archive must contain exactly the parameters in
// params, with matching shapes.
// If any check fails, params is left untouched.
func Load(r io.Reader, params *matchlstm.Params) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return essentials.AddCtx("load archive", err)
	}
	defer gz.Close()
	var a archive
	if err := gob.NewDecoder(gz).Decode(&a); err != nil {
		return essentials.AddCtx("load archive", err)
	}
	if a.Version != Version {
		return fmt.Errorf("load archive: unsupported version %d", a.Version)
	}

	seen := map[string]bool{}
	for _, t := range a.Tensors {
		if seen[t.Name] {
			return fmt.Errorf("load archive: duplicate parameter %s", t.Name)
		}
		seen[t.Name] = true
		p := params.Get(t.Name)
		if p == nil {
			return fmt.Errorf("load archive: unknown parameter %s", t.Name)
		}
		if p.Rows != t.Rows || p.Cols != t.Cols || len(t.Data) != t.Rows*t.Cols {
			return fmt.Errorf("load archive: parameter %s has shape %dx%d (%d values), expected %dx%d",
				t.Name, t.Rows, t.Cols, len(t.Data), p.Rows, p.Cols)
		}
	}
	for _, p := range params.List() {
		if !seen[p.Name] {
			return errors.New("load archive: missing parameter " + p.Name)
		}
	}

	for _, t := range a.Tensors {
		p := params.Get(t.Name)
		c := p.Var.Vector.Creator()
		p.Var.Vector.SetData(c.MakeNumericList(t.Data))
	}
	return nil
}
