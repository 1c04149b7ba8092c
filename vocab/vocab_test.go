package vocab

import (
	"math/rand"
	"reflect"
	"strings"
	"testing"
)

func TestReadOOV(t *testing.T) {
	v, err := Read(strings.NewReader("a\nb 12\n\nc\na\n"))
	if err != nil {
		t.Fatal(err)
	}
	if v.Size() != 4 || v.OOV() != 3 {
		t.Fatalf("bad size/oov: %d %d", v.Size(), v.OOV())
	}
	actual := v.IDs([]string{"c", "zzz", "a", "b"})
	expected := []int{2, 3, 0, 1}
	if !reflect.DeepEqual(actual, expected) {
		t.Errorf("expected %v but got %v", expected, actual)
	}
	if v.Token(3) != UnknownToken {
		t.Errorf("unexpected token: %s", v.Token(3))
	}
}

func TestExplicitUnknown(t *testing.T) {
	v := New([]string{"x", UnknownToken, "y"})
	if v.Size() != 3 || v.OOV() != 1 {
		t.Fatalf("bad size/oov: %d %d", v.Size(), v.OOV())
	}
	if v.ID("nope") != 1 {
		t.Errorf("unexpected id: %d", v.ID("nope"))
	}
}

func TestLoadWordVectors(t *testing.T) {
	v := New([]string{"a", "b"})
	gen := rand.New(rand.NewSource(1))
	vecs, err := LoadWordVectors(strings.NewReader("b 1 2\nq 3 4\n"), v, 2, 0.1, gen)
	if err != nil {
		t.Fatal(err)
	}
	if len(vecs) != 6 {
		t.Fatalf("expected 6 values but got %d", len(vecs))
	}
	if vecs[2] != 1 || vecs[3] != 2 {
		t.Errorf("unexpected row: %v", vecs[2:4])
	}

	_, err = LoadWordVectors(strings.NewReader("a 1 2 3\n"), v, 2, 0.1, gen)
	if err == nil {
		t.Error("expected width error")
	}
}
