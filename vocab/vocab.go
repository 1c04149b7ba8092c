// Package vocab maps raw tokens to the integer ids
// consumed by the tagging network.
package vocab

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/unixpickle/essentials"
)

// UnknownToken is the dictionary entry which, if present,
// is used as the out-of-vocabulary id.
const UnknownToken = "<unk>"

// A Vocab is an immutable token dictionary.
type Vocab struct {
	ids    map[string]int
	tokens []string
	oov    int
}

// New creates a Vocab from an ordered token list.
// Duplicate tokens keep their first id.
func New(tokens []string) *Vocab {
	v := &Vocab{ids: map[string]int{}}
	for _, tok := range tokens {
		if _, ok := v.ids[tok]; ok {
			continue
		}
		v.ids[tok] = len(v.tokens)
		v.tokens = append(v.tokens, tok)
	}
	if id, ok := v.ids[UnknownToken]; ok {
		v.oov = id
	} else {
		v.oov = len(v.tokens)
	}
	return v
}

// Read reads a dictionary with one token per line.
// The first whitespace-separated field of each line is
// the token; blank lines are skipped.
func Read(r io.Reader) (*Vocab, error) {
	var tokens []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1<<16), 1<<20)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		tokens = append(tokens, fields[0])
	}
	if err := scanner.Err(); err != nil {
		return nil, essentials.AddCtx("read vocab", err)
	}
	return New(tokens), nil
}

// ReadFile is like Read, but for a file path.
func ReadFile(path string) (*Vocab, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, essentials.AddCtx("read vocab", err)
	}
	defer f.Close()
	return Read(f)
}

// Size returns the number of distinct ids, including the
// out-of-vocabulary id.
func (v *Vocab) Size() int {
	if v.oov == len(v.tokens) {
		return len(v.tokens) + 1
	}
	return len(v.tokens)
}

// OOV returns the id used for unknown tokens.
func (v *Vocab) OOV() int {
	return v.oov
}

// ID returns the id of a token, or the OOV id.
func (v *Vocab) ID(token string) int {
	if id, ok := v.ids[token]; ok {
		return id
	}
	return v.oov
}

// IDs maps every token in a sequence.
func (v *Vocab) IDs(tokens []string) []int {
	res := make([]int, len(tokens))
	for i, tok := range tokens {
		res[i] = v.ID(tok)
	}
	return res
}

// Token returns the token for an id.
// The OOV id maps to UnknownToken.
func (v *Vocab) Token(id int) string {
	if id < 0 || id >= len(v.tokens) {
		return UnknownToken
	}
	return v.tokens[id]
}
