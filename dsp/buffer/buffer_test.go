package buffer

import "testing"

func TestNewZeroFilled(t *testing.T) {
	b := New(8)
	if b.Len() != 8 {
		t.Fatalf("Len() = %d, want 8", b.Len())
	}
	for i, v := range b.Samples() {
		if v != 0 {
			t.Fatalf("Samples()[%d] = %v, want 0", i, v)
		}
	}
}

func TestNewNegativeLength(t *testing.T) {
	b := New(-1)
	if b.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 for negative input", b.Len())
	}
}

func TestFromSliceSharesMemory(t *testing.T) {
	s := []float64{1, 2, 3}
	b := FromSlice(s)
	b.Samples()[0] = 99
	if s[0] != 99 {
		t.Fatal("FromSlice should share underlying memory")
	}
}

func TestCopyFromZeroesTail(t *testing.T) {
	b := FromSlice([]float64{9, 9, 9, 9})
	n := b.CopyFrom([]float64{1, 2})
	if n != 2 {
		t.Fatalf("CopyFrom() = %d, want 2", n)
	}
	want := []float64{1, 2, 0, 0}
	for i, v := range b.Samples() {
		if v != want[i] {
			t.Fatalf("Samples()[%d] = %v, want %v", i, v, want[i])
		}
	}
}

func TestCopyFromTruncatesLongSource(t *testing.T) {
	b := New(2)
	if n := b.CopyFrom([]float64{1, 2, 3}); n != 2 {
		t.Fatalf("CopyFrom() = %d, want 2", n)
	}
}

func TestCopyIsIndependent(t *testing.T) {
	b := FromSlice([]float64{1, 2})
	c := b.Copy()
	c.Samples()[0] = 5
	if b.Samples()[0] != 1 {
		t.Fatal("Copy should not share memory")
	}
}
