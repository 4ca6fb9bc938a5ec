package digest

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"
)

func TestLookup(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			h, err := Lookup(name)
			if err != nil {
				t.Fatalf("Lookup(%q) failed: %v", name, err)
			}
			if h.Name() != name {
				t.Errorf("Name() = %q, want %q", h.Name(), name)
			}

			sum := h.Sum([]byte("nqt"))
			if len(sum) != h.Size() {
				t.Errorf("digest length = %d, want %d", len(sum), h.Size())
			}
			if !bytes.Equal(sum, h.Sum([]byte("nqt"))) {
				t.Error("digest is not deterministic")
			}
			if bytes.Equal(sum, h.Sum([]byte("nqu"))) {
				t.Error("different inputs produced the same digest")
			}
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("md5")
	if !errors.Is(err, ErrUnknownHasher) {
		t.Fatalf("Lookup(md5) error = %v, want ErrUnknownHasher", err)
	}
}

func TestDefaultIsSHA256(t *testing.T) {
	got := hex.EncodeToString(Default().Sum([]byte("abc")))
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Errorf("sha256(abc) = %s, want %s", got, want)
	}
}
