package core

import (
	"math/rand"
	"testing"
)

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Total.Cents != 0 || s.Fixed.Cents != 0 || s.Variable.Cents != 0 {
		t.Fatalf("empty summary should be all zeros, got %+v", s)
	}
}

func TestSummarizeScenario(t *testing.T) {
	// November 2025: groceries (variable) plus rent (fixed).
	entries := []ReportEntry{
		{ID: 1, Date: NewDate(2025, 11, 5), Amount: Money{Cents: 5000}, CategoryName: "Comida", Type: Variable},
		{ID: 2, Date: NewDate(2025, 11, 1), Amount: Money{Cents: 100000}, CategoryName: "Renta", Type: Fixed},
	}
	s := Summarize(entries)
	if s.Total.Cents != 105000 {
		t.Errorf("total = %d, want 105000", s.Total.Cents)
	}
	if s.Fixed.Cents != 100000 {
		t.Errorf("fixed = %d, want 100000", s.Fixed.Cents)
	}
	if s.Variable.Cents != 5000 {
		t.Errorf("variable = %d, want 5000", s.Variable.Cents)
	}
}

func TestSummarizeUnknownTypeCountsAsVariable(t *testing.T) {
	entries := []ReportEntry{
		{Amount: Money{Cents: 100}, Type: Fixed},
		{Amount: Money{Cents: 200}, Type: "Otro"},
		{Amount: Money{Cents: 300}, Type: ""},
	}
	s := Summarize(entries)
	if s.Fixed.Cents != 100 {
		t.Errorf("fixed = %d, want 100", s.Fixed.Cents)
	}
	if s.Variable.Cents != 500 {
		t.Errorf("variable = %d, want 500", s.Variable.Cents)
	}
}

func TestSummarizeOrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	entries := make([]ReportEntry, 50)
	for i := range entries {
		typ := Variable
		if i%3 == 0 {
			typ = Fixed
		}
		entries[i] = ReportEntry{Amount: Money{Cents: rng.Int63n(100000)}, Type: typ}
	}
	want := Summarize(entries)

	for i := 0; i < 10; i++ {
		shuffled := make([]ReportEntry, len(entries))
		copy(shuffled, entries)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		if got := Summarize(shuffled); got != want {
			t.Fatalf("summary changed under permutation: %+v != %+v", got, want)
		}
	}
}

func TestSummarizePartition(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	types := []ExpenseType{Fixed, Variable, "Desconocido"}
	for trial := 0; trial < 20; trial++ {
		n := rng.Intn(30)
		entries := make([]ReportEntry, n)
		for i := range entries {
			entries[i] = ReportEntry{
				Amount: Money{Cents: rng.Int63n(500000)},
				Type:   types[rng.Intn(len(types))],
			}
		}
		s := Summarize(entries)
		if s.Fixed.Cents+s.Variable.Cents != s.Total.Cents {
			t.Fatalf("fixed %d + variable %d != total %d",
				s.Fixed.Cents, s.Variable.Cents, s.Total.Cents)
		}
	}
}
