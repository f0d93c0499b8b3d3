package source

import (
	"bytes"
	"context"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/senzing-garage/stream-producer/internal/config"
	"github.com/senzing-garage/stream-producer/internal/model"
)

func gzipBytes(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write([]byte(s)); err != nil {
		t.Fatalf("unexpected error writing gzip stream: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("unexpected error closing gzip writer: %v", err)
	}
	return buf.Bytes()
}

func TestGzippedJSONDecoderDecodesCompressedLines(t *testing.T) {
	payload := gzipBytes(t, "{\"A\":\"1\"}\n{\"A\":\"2\"}\n")
	var got []model.Record
	err := GzippedJSONDecoder{}.Decode(context.Background(), nopCloser{bytes.NewReader(payload)}, &config.Snapshot{}, func(r model.Record) error {
		got = append(got, r)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
}

func TestGzippedJSONDecoderRejectsNonGzipInput(t *testing.T) {
	err := GzippedJSONDecoder{}.Decode(context.Background(), nopCloser{bytes.NewReader([]byte("not gzip"))}, &config.Snapshot{}, func(r model.Record) error {
		return nil
	})
	if err == nil {
		t.Fatalf("expected an error for non-gzip input")
	}
}
