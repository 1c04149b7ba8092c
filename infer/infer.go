// Package infer decodes answer tags for batches of
// evidence with a trained network.
package infer

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/INotWant/QA/matchlstm"
	"github.com/INotWant/QA/reader"
	"github.com/unixpickle/essentials"
)

// An Inferer decodes samples with a network.
type Inferer struct {
	Net *matchlstm.Network

	// Workers is the number of batches decoded at once.
	// Values below 1 mean 1.
	Workers int

	// Log may be nil.
	Log *log.Logger
}

// InferBatch decodes every sample in a batch.
//
// The batch fails as a whole if any sample is malformed or
// if the decoded tag count differs from the evidence token
// count.
func (i *Inferer) InferBatch(batch reader.SampleList) ([][]int, error) {
	for idx, s := range batch {
		if err := s.Validate(); err != nil {
			return nil, essentials.AddCtx(fmt.Sprintf("infer: sample %d", idx), err)
		}
	}
	res := make([][]int, len(batch))
	var numTags int
	for idx, s := range batch {
		res[idx] = i.Net.Decode(s)
		numTags += len(res[idx])
	}
	if expected := batch.NumEvidenceTokens(); numTags != expected {
		return nil, fmt.Errorf("infer: decoded %d tags for %d evidence tokens", numTags,
			expected)
	}
	return res, nil
}

// Run decodes the samples in batches and writes one
// record group per batch to w, in input order.
//
// Decoding stops at the first failed batch.
func (i *Inferer) Run(ctx context.Context, samples reader.SampleList, batchSize int,
	w io.Writer) error {
	if len(samples) == 0 {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	batches := samples.Batches(batchSize)
	indices := make(chan int, len(batches))
	for idx := range batches {
		indices <- idx
	}
	close(indices)

	tape := newResultTape()
	var wg sync.WaitGroup
	for n := 0; n < essentials.MaxInt(1, i.Workers); n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indices {
				if err := ctx.Err(); err != nil {
					tape.Write(idx, &result{Err: err})
					continue
				}
				tags, err := i.InferBatch(batches[idx])
				tape.Write(idx, &result{Tags: tags, Err: err})
			}
		}()
	}
	go func() {
		wg.Wait()
		tape.Close()
	}()

	var firstErr error
	var numBatches int
	for res := range tape.Read() {
		if firstErr != nil {
			continue
		}
		if res.Err != nil {
			firstErr = essentials.AddCtx(fmt.Sprintf("batch %d", numBatches), res.Err)
			cancel()
			continue
		}
		if _, err := io.WriteString(w, Render(res.Tags)+"\n"); err != nil {
			firstErr = essentials.AddCtx("write tags", err)
			cancel()
			continue
		}
		numBatches++
		if i.Log != nil {
			i.Log.Printf("decoded batch %d/%d", numBatches, len(batches))
		}
	}
	return firstErr
}

// Render formats decoded tag sequences as
// semicolon-terminated records joined by newlines.
func Render(tags [][]int) string {
	records := make([]string, len(tags))
	for idx, seq := range tags {
		parts := make([]string, len(seq))
		for j, tag := range seq {
			parts[j] = strconv.Itoa(tag)
		}
		records[idx] = "[" + strings.Join(parts, ", ") + "]"
	}
	return strings.Join(records, ";\n") + ";"
}

// Apply decodes a single question with its evidences, read
// in the plain-text format of reader.ReadApplication, and
// writes the rendered tags to w.
func (i *Inferer) Apply(settings *reader.Settings, r io.Reader, maxEvidences int,
	w io.Writer) error {
	samples, err := settings.ReadApplication(r, maxEvidences)
	if err != nil {
		return err
	}
	tags, err := i.InferBatch(samples)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, Render(tags)+"\n")
	return err
}
