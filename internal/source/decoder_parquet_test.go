package source

import (
	"bytes"
	"context"
	"testing"

	"github.com/parquet-go/parquet-go"

	"github.com/senzing-garage/stream-producer/internal/config"
	"github.com/senzing-garage/stream-producer/internal/model"
)

type parquetFixture struct {
	Name string  `parquet:"name"`
	Age  float64 `parquet:"age"`
}

func writeTestParquet(t *testing.T, rows []parquetFixture) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := parquet.NewGenericWriter[parquetFixture](&buf)
	if _, err := w.Write(rows); err != nil {
		t.Fatalf("unexpected error writing parquet rows: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("unexpected error closing parquet writer: %v", err)
	}
	return buf.Bytes()
}

func TestParquetDecoderDecodesRows(t *testing.T) {
	data := writeTestParquet(t, []parquetFixture{
		{Name: "alice", Age: 30},
		{Name: "bob", Age: 41},
	})

	var got []model.Record
	err := ParquetDecoder{}.Decode(context.Background(), nopCloser{bytes.NewReader(data)}, &config.Snapshot{}, func(r model.Record) error {
		got = append(got, r)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0]["name"] != "alice" {
		t.Fatalf("expected first record name alice, got %+v", got[0])
	}
}

func TestParquetDecoderHandlesEmptyInput(t *testing.T) {
	data := writeTestParquet(t, nil)
	err := ParquetDecoder{}.Decode(context.Background(), nopCloser{bytes.NewReader(data)}, &config.Snapshot{}, func(r model.Record) error {
		t.Fatalf("did not expect any records from an empty parquet file")
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
