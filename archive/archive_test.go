package archive

import (
	"bytes"
	"context"
	"math/rand"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/INotWant/QA/config"
	"github.com/INotWant/QA/matchlstm"
	"github.com/INotWant/QA/reader"
	"github.com/unixpickle/anyvec/anyvec64"
)

func testNetwork(seed int64, comDim int) *matchlstm.Network {
	gen := rand.New(rand.NewSource(seed))
	cfg := config.Default()
	cfg.WordVecDim = 2
	cfg.ComVecDim = comDim
	cfg.LabelNum = 3
	wordVecs := make([]float64, 5*cfg.WordVecDim)
	for i := range wordVecs {
		wordVecs[i] = gen.NormFloat64()
	}
	return matchlstm.New(anyvec64.DefaultCreator{}, cfg, wordVecs, gen)
}

func testSample() *reader.Sample {
	return &reader.Sample{
		Question: []int{1, 2},
		Evidence: []int{0, 3, 4, 1},
		QEComm:   []int{0, 0, 1, 1},
		EEComm:   []int{1, 0, 0, 1},
	}
}

func TestRoundTrip(t *testing.T) {
	src := testNetwork(1, 2)
	dst := testNetwork(2, 2)

	var buf bytes.Buffer
	if err := Save(&buf, src.Params); err != nil {
		t.Fatal(err)
	}
	if err := Load(&buf, dst.Params); err != nil {
		t.Fatal(err)
	}
	for _, p := range src.Params.List() {
		other := dst.Params.Get(p.Name)
		if !reflect.DeepEqual(p.Var.Vector.Data(), other.Var.Vector.Data()) {
			t.Errorf("parameter %s differs after loading", p.Name)
		}
	}
	sample := testSample()
	if !reflect.DeepEqual(src.Decode(sample), dst.Decode(sample)) {
		t.Error("decode output differs after loading")
	}
}

func TestLoadMismatch(t *testing.T) {
	src := testNetwork(1, 2)
	dst := testNetwork(2, 3)
	before := dst.Params.Get("_crf.w0").Var.Vector.Copy().Data()

	var buf bytes.Buffer
	if err := Save(&buf, src.Params); err != nil {
		t.Fatal(err)
	}
	if err := Load(&buf, dst.Params); err == nil {
		t.Fatal("expected shape mismatch")
	}
	after := dst.Params.Get("_crf.w0").Var.Vector.Data()
	if !reflect.DeepEqual(before, after) {
		t.Error("failed load modified parameters")
	}
}

func TestLoadCorrupt(t *testing.T) {
	dst := testNetwork(2, 2)
	if err := Load(bytes.NewReader([]byte("not an archive")), dst.Params); err == nil {
		t.Error("expected error")
	}

	var buf bytes.Buffer
	if err := Save(&buf, dst.Params); err != nil {
		t.Fatal(err)
	}
	truncated := buf.Bytes()[:buf.Len()/2]
	if err := Load(bytes.NewReader(truncated), dst.Params); err == nil {
		t.Error("expected error for truncated archive")
	}
}

func TestFile(t *testing.T) {
	src := testNetwork(1, 2)
	dst := testNetwork(2, 2)
	path := filepath.Join(t.TempDir(), "models", CheckpointName(3))
	if err := SaveFile(context.Background(), path, src.Params); err != nil {
		t.Fatal(err)
	}
	if err := LoadFile(context.Background(), path, dst.Params); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(src.Decode(testSample()), dst.Decode(testSample())) {
		t.Error("decode output differs after loading")
	}
	err := LoadFile(context.Background(), filepath.Join(t.TempDir(), "missing"), dst.Params)
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSplitS3(t *testing.T) {
	bucket, key, err := splitS3("s3://models/qa/params_pass_00001.gz")
	if err != nil {
		t.Fatal(err)
	}
	if bucket != "models" || key != "qa/params_pass_00001.gz" {
		t.Errorf("unexpected location: %s %s", bucket, key)
	}
	for _, bad := range []string{"s3://", "s3://bucket", "s3:///key"} {
		if _, _, err := splitS3(bad); err == nil {
			t.Errorf("expected error for %s", bad)
		}
	}
}
