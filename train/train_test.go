package train

import (
	"bytes"
	"context"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/INotWant/QA/archive"
	"github.com/INotWant/QA/config"
	"github.com/INotWant/QA/crf"
	"github.com/INotWant/QA/matchlstm"
	"github.com/INotWant/QA/reader"
	"github.com/unixpickle/anyvec/anyvec64"
)

const testVocabSize = 8

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.WordVecDim = 3
	cfg.ComVecDim = 2
	cfg.LabelNum = 3
	cfg.DefaultInitStd = 0.3
	cfg.BatchSize = 3
	cfg.Passes = 2
	cfg.SaveDir = ""
	return cfg
}

func testNetwork(cfg *config.Config, seed int64) *matchlstm.Network {
	gen := rand.New(rand.NewSource(seed))
	wordVecs := make([]float64, testVocabSize*cfg.WordVecDim)
	for i := range wordVecs {
		wordVecs[i] = gen.NormFloat64()
	}
	return matchlstm.New(anyvec64.DefaultCreator{}, cfg, wordVecs, gen)
}

func testSamples(n int) reader.SampleList {
	gen := rand.New(rand.NewSource(42))
	var res reader.SampleList
	for i := 0; i < n; i++ {
		eLen := gen.Intn(4) + 1
		s := &reader.Sample{
			Question: []int{gen.Intn(testVocabSize), gen.Intn(testVocabSize)},
			Evidence: make([]int, eLen),
			QEComm:   make([]int, eLen),
			EEComm:   make([]int, eLen),
			Labels:   make([]int, eLen),
		}
		for j := range s.Evidence {
			s.Evidence[j] = gen.Intn(testVocabSize)
			s.EEComm[j] = gen.Intn(2)
			s.Labels[j] = reader.TagO
			if s.Evidence[j] == s.Question[0] {
				s.QEComm[j] = 1
				s.Labels[j] = reader.TagB
			}
		}
		res = append(res, s)
	}
	return res
}

func meanCost(net *matchlstm.Network, samples reader.SampleList) float64 {
	var total float64
	for _, s := range samples {
		total += net.Cost(s, nil).Output().Data().([]float64)[0]
	}
	return total / float64(len(samples))
}

func TestStepReducesCost(t *testing.T) {
	cfg := testConfig()
	cfg.Optimizer = "sgd"
	cfg.LearningRate = 0.05
	cfg.DropRate = 0
	cfg.DefaultL2Rate = 0
	net := testNetwork(cfg, 1)
	samples := testSamples(4)

	trainer := New(net, cfg, nil)
	initial := meanCost(net, samples)
	for i := 0; i < 20; i++ {
		cost, err := trainer.Step(samples)
		if err != nil {
			t.Fatal(err)
		}
		if math.IsNaN(cost) || cost < 0 {
			t.Fatalf("bad cost: %f", cost)
		}
	}
	if final := meanCost(net, samples); final >= initial {
		t.Errorf("cost did not decrease: %f -> %f", initial, final)
	}
}

func TestStepWorkers(t *testing.T) {
	samples := testSamples(6)
	var results [][]float64
	for _, workers := range []int{1, 4, 6} {
		cfg := testConfig()
		cfg.Optimizer = "sgd"
		cfg.Workers = workers
		net := testNetwork(cfg, 1)
		trainer := New(net, cfg, nil)
		if _, err := trainer.Step(samples); err != nil {
			t.Fatal(err)
		}
		results = append(results, crf.VectorData(net.Params.Get("_crf.w0").Var.Vector))
	}
	for _, other := range results[1:] {
		for i, x := range results[0] {
			if math.Abs(x-other[i]) > 1e-10 {
				t.Fatalf("worker count changed the update: %v vs %v", results[0], other)
			}
		}
	}
}

func TestStepStatic(t *testing.T) {
	cfg := testConfig()
	net := testNetwork(cfg, 1)
	before := net.Params.Get("wordvecs").Var.Vector.Copy().Data()
	trainer := New(net, cfg, nil)
	if _, err := trainer.Step(testSamples(3)); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(before, net.Params.Get("wordvecs").Var.Vector.Data()) {
		t.Error("static word vectors were updated")
	}
}

func TestStepErrors(t *testing.T) {
	cfg := testConfig()
	trainer := New(testNetwork(cfg, 1), cfg, nil)
	if _, err := trainer.Step(nil); err == nil {
		t.Error("expected error for empty batch")
	}
	bad := testSamples(1)
	bad[0].EEComm = bad[0].EEComm[1:]
	if _, err := trainer.Step(bad); err == nil {
		t.Error("expected error for mismatched features")
	}
	unlabeled := testSamples(1)
	unlabeled[0].Labels = nil
	if _, err := trainer.Step(unlabeled); err == nil {
		t.Error("expected error for missing labels")
	}
	outOfRange := testSamples(2)
	outOfRange[1].Labels[0] = cfg.LabelNum
	if _, err := trainer.Step(outOfRange); err == nil {
		t.Error("expected error for out-of-range label")
	}
}

func TestCheckpointDeterminism(t *testing.T) {
	cfg := testConfig()
	cfg.SaveDir = t.TempDir()
	net := testNetwork(cfg, 1)
	samples := testSamples(7)
	trainer := New(net, cfg, nil)
	if err := trainer.Train(context.Background(), samples); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(cfg.SaveDir, archive.CheckpointName(cfg.Passes-1))
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}
	fresh := testNetwork(cfg, 99)
	if err := archive.LoadFile(context.Background(), path, fresh.Params); err != nil {
		t.Fatal(err)
	}

	probe := testSamples(3)
	for _, s := range probe {
		s.Labels = nil
		if !reflect.DeepEqual(net.Decode(s), fresh.Decode(s)) {
			t.Fatal("reloaded network decodes differently")
		}
	}
	expected := crf.VectorData(net.Emissions(probe[0], nil).Output())
	actual := crf.VectorData(fresh.Emissions(probe[0], nil).Output())
	if !reflect.DeepEqual(expected, actual) {
		t.Error("reloaded emissions are not bit-identical")
	}
}

func TestTrainCancel(t *testing.T) {
	cfg := testConfig()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	trainer := New(testNetwork(cfg, 1), cfg, nil)
	if err := trainer.Train(ctx, testSamples(3)); err != context.Canceled {
		t.Errorf("expected cancellation but got %v", err)
	}
}

func TestTrainAdam(t *testing.T) {
	cfg := testConfig()
	cfg.Optimizer = "adam"
	cfg.Passes = 1
	var logBuf bytes.Buffer
	net := testNetwork(cfg, 1)
	trainer := New(net, cfg, log.New(&logBuf, "", 0))
	if err := trainer.Train(context.Background(), testSamples(5)); err != nil {
		t.Fatal(err)
	}
	for _, v := range net.Params.Trainable() {
		for _, x := range crf.VectorData(v.Vector) {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				t.Fatal("parameters diverged")
			}
		}
	}
	if logBuf.Len() == 0 {
		t.Error("expected log output")
	}
}
