package source

import (
	"context"
	"strings"
	"testing"

	"github.com/senzing-garage/stream-producer/internal/config"
	"github.com/senzing-garage/stream-producer/internal/model"
)

func TestCSVDecoderDropsEmptyFields(t *testing.T) {
	input := "NAME,AGE,CITY\nalice,30,\nbob,,chicago\n"
	var got []model.Record
	err := CSVDecoder{}.Decode(context.Background(), nopCloser{strings.NewReader(input)}, &config.Snapshot{CSVRowsInChunk: 100}, func(r model.Record) error {
		got = append(got, r)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if _, present := got[0]["CITY"]; present {
		t.Fatalf("expected empty CITY field dropped, got %+v", got[0])
	}
	if got[0]["NAME"] != "alice" || got[0]["AGE"] != "30" {
		t.Fatalf("unexpected first record: %+v", got[0])
	}
	if _, present := got[1]["AGE"]; present {
		t.Fatalf("expected empty AGE field dropped, got %+v", got[1])
	}
}

func TestCSVDecoderChunksAcrossRowBoundary(t *testing.T) {
	input := "A\n1\n2\n3\n4\n5\n"
	var got []model.Record
	err := CSVDecoder{}.Decode(context.Background(), nopCloser{strings.NewReader(input)}, &config.Snapshot{CSVRowsInChunk: 2}, func(r model.Record) error {
		got = append(got, r)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 records across chunk boundaries, got %d", len(got))
	}
}

func TestCSVDecoderHandlesEmptyInput(t *testing.T) {
	err := CSVDecoder{}.Decode(context.Background(), nopCloser{strings.NewReader("")}, &config.Snapshot{}, func(r model.Record) error {
		t.Fatalf("did not expect any records from empty input")
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
