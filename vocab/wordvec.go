package vocab

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/unixpickle/essentials"
)

// RandomWordVectors creates a Size() x dim row-major
// embedding table drawn from N(0, std).
func RandomWordVectors(v *Vocab, dim int, std float64, gen *rand.Rand) []float64 {
	res := make([]float64, v.Size()*dim)
	for i := range res {
		res[i] = gen.NormFloat64() * std
	}
	return res
}

// LoadWordVectors reads pretrained embeddings in the text
// format "token f1 f2 ... fdim", one token per line.
//
// Rows for tokens which do not appear in r keep random
// N(0, std) values.
// Tokens not in the Vocab are ignored.
func LoadWordVectors(r io.Reader, v *Vocab, dim int, std float64,
	gen *rand.Rand) ([]float64, error) {
	res := RandomWordVectors(v, dim, std, gen)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1<<16), 1<<24)
	var lineNum int
	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != dim+1 {
			return nil, fmt.Errorf("load word vectors: line %d: expected %d values but got %d",
				lineNum, dim, len(fields)-1)
		}
		id, ok := v.ids[fields[0]]
		if !ok {
			continue
		}
		row := res[id*dim : (id+1)*dim]
		for i, field := range fields[1:] {
			x, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, essentials.AddCtx(fmt.Sprintf("load word vectors: line %d", lineNum),
					err)
			}
			row[i] = x
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, essentials.AddCtx("load word vectors", err)
	}
	return res, nil
}

// LoadWordVectorsFile is like LoadWordVectors, but for a
// file path.
func LoadWordVectorsFile(path string, v *Vocab, dim int, std float64,
	gen *rand.Rand) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, essentials.AddCtx("load word vectors", err)
	}
	defer f.Close()
	return LoadWordVectors(f, v, dim, std, gen)
}
