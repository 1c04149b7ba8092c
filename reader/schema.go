package reader

import (
	"fmt"
	"strings"
)

// A Schema is a tagging convention for answer spans.
type Schema int

const (
	// BIO uses B, I and O.
	BIO Schema = iota

	// BIO2 splits O into O1 (before the first answer) and
	// O2 (after it).
	BIO2
)

// Tag ids shared by both schemas.
const (
	TagB = 0
	TagI = 1
	TagO = 2

	TagO1 = 2
	TagO2 = 3
)

// ParseSchema parses "BIO" or "BIO2" (case-insensitive).
func ParseSchema(name string) (Schema, error) {
	switch strings.ToUpper(name) {
	case "BIO":
		return BIO, nil
	case "BIO2":
		return BIO2, nil
	}
	return 0, fmt.Errorf("unknown label schema: %s", name)
}

// String returns the schema name.
func (s Schema) String() string {
	if s == BIO2 {
		return "BIO2"
	}
	return "BIO"
}

// NumLabels returns the number of tag classes.
func (s Schema) NumLabels() int {
	if s == BIO2 {
		return 4
	}
	return 3
}

// Outside returns the tag used for evidence with no known
// answer.
func (s Schema) Outside() int {
	return TagO
}

// LabelEvidence tags the golden answer spans found in the
// evidence.
// Spans are matched greedily from left to right and never
// overlap.
func (s Schema) LabelEvidence(evidence []string, answers [][]string) []int {
	labels := make([]int, len(evidence))
	for i := range labels {
		labels[i] = -1
	}
	for i := 0; i < len(evidence); i++ {
		if labels[i] != -1 {
			continue
		}
		for _, ans := range answers {
			if len(ans) == 0 || !spanMatches(evidence, labels, i, ans) {
				continue
			}
			labels[i] = TagB
			for j := 1; j < len(ans); j++ {
				labels[i+j] = TagI
			}
			break
		}
	}

	seenAnswer := false
	for i, l := range labels {
		if l == TagB {
			seenAnswer = true
		}
		if l != -1 {
			continue
		}
		if s == BIO2 && seenAnswer {
			labels[i] = TagO2
		} else {
			labels[i] = TagO
		}
	}
	return labels
}

func spanMatches(evidence []string, labels []int, start int, ans []string) bool {
	if start+len(ans) > len(evidence) {
		return false
	}
	for j, tok := range ans {
		if evidence[start+j] != tok || labels[start+j] != -1 {
			return false
		}
	}
	return true
}
