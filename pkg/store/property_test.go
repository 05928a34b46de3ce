package store

import (
	"testing"

	"pgregory.net/rapid"
)

func TestPropertyBroadcastConsistency(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := New()
		defer s.Close()

		base := NewAtom("base", 0)
		offset := rapid.IntRange(-5, 5).Draw(rt, "offset")
		shifted := Derive("shifted", base, func(n int) int { return n + offset })
		label := Derive("label", shifted, func(n int) bool { return n%2 == 0 })

		writes := rapid.SliceOfN(rapid.IntRange(-100, 100), 1, 20).Draw(rt, "writes")
		for _, v := range writes {
			if err := base.Set(s, v); err != nil {
				rt.Fatal(err)
			}

			got, _ := base.Get(s)
			if got != v {
				rt.Fatalf("base: expected %d, got %d", v, got)
			}
			d, _ := shifted.Get(s)
			if d != v+offset {
				rt.Fatalf("derived: expected %d, got %d", v+offset, d)
			}
			even, _ := label.Get(s)
			if even != ((v+offset)%2 == 0) {
				rt.Fatalf("derived chain disagrees for %d", v)
			}
		}
	})
}
