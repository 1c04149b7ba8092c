// Package reader turns question/evidence text into the
// integer sequences consumed by the tagging network.
package reader

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/unixpickle/anynet/anysgd"
)

// A Sample is one (question, evidence) pair.
//
// QEComm and EEComm are binary co-occurrence features with
// one entry per evidence token.
// Labels is nil for raw inference input.
type Sample struct {
	Question []int
	Evidence []int
	QEComm   []int
	EEComm   []int
	Labels   []int
}

// Validate checks the length invariants of the sample.
func (s *Sample) Validate() error {
	if len(s.Question) == 0 {
		return errors.New("empty question")
	}
	if len(s.Evidence) == 0 {
		return errors.New("empty evidence")
	}
	n := len(s.Evidence)
	if len(s.QEComm) != n || len(s.EEComm) != n {
		return fmt.Errorf("feature length mismatch: evidence %d, qe %d, ee %d", n,
			len(s.QEComm), len(s.EEComm))
	}
	if s.Labels != nil && len(s.Labels) != n {
		return fmt.Errorf("label length mismatch: evidence %d, labels %d", n, len(s.Labels))
	}
	for _, seq := range [][]int{s.QEComm, s.EEComm} {
		for _, x := range seq {
			if x != 0 && x != 1 {
				return fmt.Errorf("feature value out of range: %d", x)
			}
		}
	}
	return nil
}

// ValidateLabels checks that the sample is labeled and
// that every label is below numLabels.
func (s *Sample) ValidateLabels(numLabels int) error {
	if s.Labels == nil {
		return errors.New("missing labels")
	}
	for i, l := range s.Labels {
		if l < 0 || l >= numLabels {
			return fmt.Errorf("label %d at position %d out of range [0, %d)", l, i, numLabels)
		}
	}
	return nil
}

// SampleList is an anysgd.SampleList of samples.
type SampleList []*Sample

// Len returns the number of samples.
func (s SampleList) Len() int {
	return len(s)
}

// Swap swaps two samples.
func (s SampleList) Swap(i, j int) {
	s[i], s[j] = s[j], s[i]
}

// Slice copies a sub-slice of the list.
func (s SampleList) Slice(i, j int) anysgd.SampleList {
	return append(SampleList{}, s[i:j]...)
}

// Shuffle shuffles the list in place.
func (s SampleList) Shuffle(gen *rand.Rand) {
	gen.Shuffle(s.Len(), s.Swap)
}

// Batches splits the list into consecutive batches of at
// most size samples.
func (s SampleList) Batches(size int) []SampleList {
	if size <= 0 {
		panic("batch size must be positive")
	}
	var res []SampleList
	for i := 0; i < len(s); i += size {
		end := i + size
		if end > len(s) {
			end = len(s)
		}
		res = append(res, s.Slice(i, end).(SampleList))
	}
	return res
}

// NumEvidenceTokens counts the evidence tokens across all
// of the samples.
func (s SampleList) NumEvidenceTokens() int {
	var n int
	for _, x := range s {
		n += len(x.Evidence)
	}
	return n
}
