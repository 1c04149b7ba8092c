// Package train fits a matchlstm.Network to labeled
// samples.
package train

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"

	"github.com/INotWant/QA/archive"
	"github.com/INotWant/QA/config"
	"github.com/INotWant/QA/crf"
	"github.com/INotWant/QA/matchlstm"
	"github.com/INotWant/QA/reader"
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet/anysgd"
	"github.com/unixpickle/essentials"
)

type transformer interface {
	Transform(g anydiff.Grad) anydiff.Grad
}

// A Trainer runs mini-batch training.
//
// Samples in a batch are evaluated concurrently, but the
// parameters are only updated between batches.
type Trainer struct {
	Net    *matchlstm.Network
	Config *config.Config
	Log    *log.Logger

	gen         *rand.Rand
	transformer transformer
}

// New creates a Trainer.
// If logger is nil, nothing is logged.
func New(net *matchlstm.Network, cfg *config.Config, logger *log.Logger) *Trainer {
	t := &Trainer{
		Net:    net,
		Config: cfg,
		Log:    logger,
		gen:    rand.New(rand.NewSource(cfg.Seed)),
	}
	if cfg.Optimizer == "adam" {
		t.transformer = &anysgd.Adam{}
	}
	return t
}

// Step computes the gradient of the mean cost of a batch
// and applies one update.
// It returns the mean cost before the update.
func (t *Trainer) Step(batch reader.SampleList) (float64, error) {
	if len(batch) == 0 {
		return 0, errors.New("empty batch")
	}
	for i, s := range batch {
		if err := s.Validate(); err != nil {
			return 0, essentials.AddCtx(fmt.Sprintf("sample %d", i), err)
		}
		if err := s.ValidateLabels(t.Net.LabelNum); err != nil {
			return 0, essentials.AddCtx(fmt.Sprintf("sample %d", i), err)
		}
	}

	seeds := make([]int64, len(batch))
	for i := range seeds {
		seeds[i] = t.gen.Int63()
	}

	grad := anydiff.NewGrad(t.Net.Params.Trainable()...)
	var gradLock sync.Mutex
	costs := make([]float64, len(batch))

	indices := make(chan int, len(batch))
	for i := range batch {
		indices <- i
	}
	close(indices)

	var wg sync.WaitGroup
	for w := 0; w < essentials.MinInt(t.Config.Workers, len(batch)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				cost := t.Net.Cost(batch[i], rand.New(rand.NewSource(seeds[i])))
				out := cost.Output()
				costs[i] = crf.VectorData(out)[0]
				upstream := out.Creator().MakeVector(1)
				upstream.AddScalar(out.Creator().MakeNumeric(1 / float64(len(batch))))
				gradLock.Lock()
				cost.Propagate(upstream, grad)
				gradLock.Unlock()
			}
		}()
	}
	wg.Wait()

	t.regularize(grad)
	t.apply(grad)

	var total float64
	for _, c := range costs {
		total += c
	}
	return total / float64(len(batch)), nil
}

// Train runs Config.Passes passes over the samples,
// saving a checkpoint after each pass when Config.SaveDir
// is set.
func (t *Trainer) Train(ctx context.Context, samples reader.SampleList) error {
	if len(samples) == 0 {
		return errors.New("train: no samples")
	}
	samples = samples.Slice(0, len(samples)).(reader.SampleList)
	for pass := 0; pass < t.Config.Passes; pass++ {
		samples.Shuffle(t.gen)
		var passCost float64
		batches := samples.Batches(t.Config.BatchSize)
		for i, batch := range batches {
			if err := ctx.Err(); err != nil {
				return err
			}
			cost, err := t.Step(batch)
			if err != nil {
				return essentials.AddCtx(fmt.Sprintf("train: pass %d batch %d", pass, i), err)
			}
			passCost += cost
			if t.Config.LogPeriod > 0 && (i+1)%t.Config.LogPeriod == 0 {
				t.logf("pass %d, batch %d, cost %f", pass, i+1, cost)
			}
		}
		t.logf("pass %d done, mean cost %f", pass, passCost/float64(len(batches)))

		if t.Config.SaveDir != "" {
			path := checkpointPath(t.Config.SaveDir, pass)
			if err := archive.SaveFile(ctx, path, t.Net.Params); err != nil {
				return essentials.AddCtx("train", err)
			}
			t.logf("saved %s", path)
		}
	}
	return nil
}

func (t *Trainer) regularize(g anydiff.Grad) {
	rate := t.Config.DefaultL2Rate
	if rate == 0 {
		return
	}
	c := t.Net.Params.Creator
	for _, p := range t.Net.Params.Regularized() {
		term := p.Var.Vector.Copy()
		term.Scale(c.MakeNumeric(rate))
		g[p.Var].Add(term)
	}
}

func (t *Trainer) apply(g anydiff.Grad) {
	if t.transformer != nil {
		g = t.transformer.Transform(g)
	}
	scale := t.Net.Params.Creator.MakeNumeric(-t.Config.LearningRate)
	for v, vec := range g {
		vec.Scale(scale)
		v.Vector.Add(vec)
	}
}

func (t *Trainer) logf(format string, args ...interface{}) {
	if t.Log != nil {
		t.Log.Printf(format, args...)
	}
}

func checkpointPath(dir string, pass int) string {
	return strings.TrimSuffix(dir, "/") + "/" + archive.CheckpointName(pass)
}
