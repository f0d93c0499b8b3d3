package model

import "testing"

func TestRecordClone(t *testing.T) {
	original := Record{"A": "1", "B": 2.0}
	clone := original.Clone()
	clone["A"] = "mutated"

	if original["A"] != "1" {
		t.Fatalf("expected original record untouched, got %v", original["A"])
	}
	if clone["B"] != 2.0 {
		t.Fatalf("expected clone to carry over B, got %v", clone["B"])
	}
}

func TestIsEndOfStream(t *testing.T) {
	if !IsEndOfStream(EndOfStream) {
		t.Fatalf("expected EndOfStream to be recognized")
	}
	if IsEndOfStream(Record{"A": "1"}) {
		t.Fatalf("expected a Record to not be recognized as EndOfStream")
	}
}
