package matchlstm

import (
	"fmt"

	"github.com/unixpickle/anydiff"
)

// Fuse combines two equal-width vectors as
// [v1, v2, v1-v2, v1*v2].
func Fuse(v1, v2 anydiff.Res) anydiff.Res {
	if v1.Output().Len() != v2.Output().Len() {
		panic(fmt.Sprintf("fusion width mismatch: %d vs %d", v1.Output().Len(),
			v2.Output().Len()))
	}
	return anydiff.Concat(v1, v2, anydiff.Sub(v1, v2), anydiff.Mul(v1, v2))
}
