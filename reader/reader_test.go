package reader

import (
	"reflect"
	"strings"
	"testing"

	"github.com/INotWant/QA/vocab"
)

func TestFeatures(t *testing.T) {
	question := []string{"who", "wrote", "hamlet"}
	evidences := [][]string{
		{"shakespeare", "wrote", "hamlet"},
		{"hamlet", "is", "a", "play"},
		{"a", "play"},
	}
	if qe := QEFeature(question, evidences[0]); !reflect.DeepEqual(qe, []int{0, 1, 1}) {
		t.Errorf("unexpected QE: %v", qe)
	}
	if ee := EEFeature(1, evidences); !reflect.DeepEqual(ee, []int{1, 0, 1, 1}) {
		t.Errorf("unexpected EE: %v", ee)
	}
	if ee := EEFeature(0, evidences); !reflect.DeepEqual(ee, []int{0, 0, 1}) {
		t.Errorf("unexpected EE: %v", ee)
	}
}

func TestLabelEvidence(t *testing.T) {
	ev := []string{"x", "a", "b", "y", "a", "z"}
	answers := [][]string{{"a", "b"}}
	if l := BIO.LabelEvidence(ev, answers); !reflect.DeepEqual(l, []int{2, 0, 1, 2, 2, 2}) {
		t.Errorf("unexpected BIO labels: %v", l)
	}
	if l := BIO2.LabelEvidence(ev, answers); !reflect.DeepEqual(l, []int{2, 0, 1, 3, 3, 3}) {
		t.Errorf("unexpected BIO2 labels: %v", l)
	}
	if l := BIO2.LabelEvidence(ev, nil); !reflect.DeepEqual(l, []int{2, 2, 2, 2, 2, 2}) {
		t.Errorf("unexpected labels: %v", l)
	}
}

func TestParseSchema(t *testing.T) {
	for name, expected := range map[string]int{"bio": 3, "BIO2": 4} {
		s, err := ParseSchema(name)
		if err != nil {
			t.Fatal(err)
		}
		if s.NumLabels() != expected {
			t.Errorf("%s: expected %d labels but got %d", name, expected, s.NumLabels())
		}
	}
	if _, err := ParseSchema("IOBES"); err == nil {
		t.Error("expected error")
	}
}

func TestRead(t *testing.T) {
	settings := &Settings{
		Vocab:    vocab.New([]string{"who", "wrote", "hamlet", "shakespeare"}),
		Schema:   BIO,
		Training: true,
	}
	data := `{"question_tokens": ["who", "wrote", "hamlet"], "evidences": [` +
		`{"evidence_tokens": ["shakespeare", "wrote", "hamlet"], "golden_answers": [["shakespeare"]], "type": "positive"},` +
		`{"evidence_tokens": ["nobody", "wrote", "it"], "golden_answers": [["nobody"]], "type": "negative"}]}` + "\n"
	samples, err := settings.Read(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples but got %d", len(samples))
	}
	first := samples[0]
	if !reflect.DeepEqual(first.Evidence, []int{3, 1, 2}) {
		t.Errorf("unexpected evidence ids: %v", first.Evidence)
	}
	if !reflect.DeepEqual(first.Labels, []int{TagB, TagO, TagO}) {
		t.Errorf("unexpected labels: %v", first.Labels)
	}
	if !reflect.DeepEqual(samples[1].Evidence, []int{4, 1, 4}) {
		t.Errorf("unexpected OOV mapping: %v", samples[1].Evidence)
	}
	if !reflect.DeepEqual(samples[1].Labels, []int{TagO, TagO, TagO}) {
		t.Errorf("negative evidence should be unlabeled: %v", samples[1].Labels)
	}
	for _, s := range samples {
		if err := s.Validate(); err != nil {
			t.Error(err)
		}
	}
}

func TestReadApplication(t *testing.T) {
	settings := &Settings{Vocab: vocab.New([]string{"a", "b"}), Schema: BIO2}
	input := "a b\nb c\na\nc c\nextra line\n"
	samples, err := settings.ReadApplication(strings.NewReader(input), 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 3 {
		t.Fatalf("expected 3 samples but got %d", len(samples))
	}
	if !reflect.DeepEqual(samples[2].EEComm, []int{1, 1}) {
		t.Errorf("unexpected EE: %v", samples[2].EEComm)
	}
	if !reflect.DeepEqual(samples[0].Labels, []int{TagO, TagO}) {
		t.Errorf("unexpected labels: %v", samples[0].Labels)
	}
}

func TestReadApplicationBlankLines(t *testing.T) {
	settings := &Settings{Vocab: vocab.New([]string{"a", "b"}), Schema: BIO}
	input := "a b\n\nb c\n  \na\n\n\n"
	samples, err := settings.ReadApplication(strings.NewReader(input), 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples but got %d", len(samples))
	}
	if len(samples[1].Evidence) != 1 {
		t.Errorf("unexpected second evidence: %v", samples[1].Evidence)
	}
	if _, err := settings.ReadApplication(strings.NewReader("a b\n\n\n"), 3); err == nil {
		t.Error("expected error without evidence lines")
	}
}

func TestValidate(t *testing.T) {
	s := &Sample{
		Question: []int{1},
		Evidence: []int{1, 2},
		QEComm:   []int{0, 1},
		EEComm:   []int{0},
	}
	if s.Validate() == nil {
		t.Error("expected length mismatch")
	}
	s.EEComm = []int{0, 2}
	if s.Validate() == nil {
		t.Error("expected range error")
	}
	s.EEComm = []int{0, 1}
	if err := s.Validate(); err != nil {
		t.Error(err)
	}
}

func TestValidateLabels(t *testing.T) {
	s := &Sample{Evidence: []int{1, 2}}
	if s.ValidateLabels(3) == nil {
		t.Error("expected missing labels error")
	}
	s.Labels = []int{0, 3}
	if s.ValidateLabels(3) == nil {
		t.Error("expected range error")
	}
	s.Labels = []int{-1, 2}
	if s.ValidateLabels(3) == nil {
		t.Error("expected range error for negative label")
	}
	s.Labels = []int{0, 2}
	if err := s.ValidateLabels(3); err != nil {
		t.Error(err)
	}
}

func TestBatches(t *testing.T) {
	list := make(SampleList, 7)
	for i := range list {
		list[i] = &Sample{Evidence: make([]int, i+1)}
	}
	batches := list.Batches(3)
	if len(batches) != 3 || len(batches[2]) != 1 {
		t.Fatalf("unexpected batches: %d", len(batches))
	}
	if batches[1].NumEvidenceTokens() != 4+5+6 {
		t.Errorf("unexpected token count: %d", batches[1].NumEvidenceTokens())
	}
}
