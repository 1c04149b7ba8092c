package reader

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/INotWant/QA/vocab"
	"github.com/unixpickle/essentials"
)

// A Record is one question with its evidences, as stored
// in the JSON-lines data files.
type Record struct {
	QuestionTokens []string          `json:"question_tokens"`
	Evidences      []*EvidenceRecord `json:"evidences"`
}

// An EvidenceRecord is a single evidence passage.
type EvidenceRecord struct {
	EvidenceTokens []string   `json:"evidence_tokens"`
	GoldenAnswers  [][]string `json:"golden_answers"`
	Type           string     `json:"type"`
}

// Settings controls how records become samples.
type Settings struct {
	Vocab  *vocab.Vocab
	Schema Schema

	// Training makes the reader produce labels and drop
	// empty evidences.
	Training bool
}

// Samples converts a record into one sample per evidence.
func (s *Settings) Samples(r *Record) ([]*Sample, error) {
	if len(r.QuestionTokens) == 0 {
		return nil, fmt.Errorf("record has an empty question")
	}
	evTokens := make([][]string, len(r.Evidences))
	for i, ev := range r.Evidences {
		evTokens[i] = ev.EvidenceTokens
	}
	var res []*Sample
	qIDs := s.Vocab.IDs(r.QuestionTokens)
	for i, ev := range r.Evidences {
		if len(ev.EvidenceTokens) == 0 {
			if s.Training {
				continue
			}
			return nil, fmt.Errorf("evidence %d is empty", i)
		}
		sample := &Sample{
			Question: qIDs,
			Evidence: s.Vocab.IDs(ev.EvidenceTokens),
			QEComm:   QEFeature(r.QuestionTokens, ev.EvidenceTokens),
			EEComm:   EEFeature(i, evTokens),
		}
		if s.Training {
			answers := ev.GoldenAnswers
			if ev.Type == "negative" {
				answers = nil
			}
			sample.Labels = s.Schema.LabelEvidence(ev.EvidenceTokens, answers)
		}
		res = append(res, sample)
	}
	return res, nil
}

// Read reads JSON-lines records from r and converts them
// to samples.
func (s *Settings) Read(r io.Reader) (SampleList, error) {
	var res SampleList
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1<<16), 1<<26)
	var lineNum int
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, essentials.AddCtx(fmt.Sprintf("read samples: line %d", lineNum), err)
		}
		samples, err := s.Samples(&rec)
		if err != nil {
			return nil, essentials.AddCtx(fmt.Sprintf("read samples: line %d", lineNum), err)
		}
		res = append(res, samples...)
	}
	if err := scanner.Err(); err != nil {
		return nil, essentials.AddCtx("read samples", err)
	}
	return res, nil
}

// ReadFile is like Read, but for a path.
// Paths ending in ".gz" are decompressed.
func (s *Settings) ReadFile(path string) (SampleList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, essentials.AddCtx("read samples", err)
	}
	defer f.Close()
	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, essentials.AddCtx("read samples", err)
		}
		defer gz.Close()
		r = gz
	}
	return s.Read(r)
}

// ReadApplication reads the plain-text input of the
// single-question mode: a whitespace-tokenized question on
// the first line, followed by up to maxEvidences evidence
// lines.
// The labels of the resulting samples are all outside.
func (s *Settings) ReadApplication(r io.Reader, maxEvidences int) (SampleList, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1<<16), 1<<24)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, essentials.AddCtx("read application input", err)
	}
	if len(lines) < 2 {
		return nil, fmt.Errorf("read application input: need a question and an evidence")
	}
	rec := &Record{QuestionTokens: strings.Fields(lines[0])}
	for _, line := range lines[1:] {
		if maxEvidences > 0 && len(rec.Evidences) == maxEvidences {
			break
		}
		if line == "" {
			continue
		}
		rec.Evidences = append(rec.Evidences, &EvidenceRecord{
			EvidenceTokens: strings.Fields(line),
		})
	}
	if len(rec.Evidences) == 0 {
		return nil, fmt.Errorf("read application input: no evidence lines")
	}
	samples, err := s.Samples(rec)
	if err != nil {
		return nil, essentials.AddCtx("read application input", err)
	}
	for _, sample := range samples {
		sample.Labels = make([]int, len(sample.Evidence))
		for i := range sample.Labels {
			sample.Labels[i] = s.Schema.Outside()
		}
	}
	return samples, nil
}
