package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/senzing-garage/stream-producer/internal/config"
	"github.com/senzing-garage/stream-producer/internal/model"
)

// CSVDecoder reads the input in chunks of up to cfg.CSVRowsInChunk rows,
// typing every column as a string with leading whitespace stripped
// (lstrip, matching spec §4.1's cell-value convention, not a full
// trim). Once a chunk's rows are materialized into records, any field
// whose value is the empty string is dropped from that record before
// emission.
type CSVDecoder struct{}

// Decode implements Decoder.
func (CSVDecoder) Decode(ctx context.Context, r io.ReadCloser, cfg *config.Snapshot, emit func(model.Record) error) error {
	reader := csv.NewReader(r)
	delim := ","
	if cfg.CSVDelimiter != "" {
		delim = cfg.CSVDelimiter
	}
	reader.Comma = rune(delim[0])
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read csv header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	chunkSize := cfg.CSVRowsInChunk
	if chunkSize <= 0 {
		chunkSize = 10000
	}

	chunk := make([][]string, 0, chunkSize)
	flush := func() error {
		for _, row := range chunk {
			rec := make(model.Record, len(header))
			for i, col := range header {
				if i >= len(row) {
					continue
				}
				val := strings.TrimLeft(row[i], " \t")
				if val == "" {
					continue
				}
				rec[col] = val
			}
			if err := emit(rec); err != nil {
				return err
			}
		}
		chunk = chunk[:0]
		return nil
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read csv row: %w", err)
		}
		chunk = append(chunk, row)
		if len(chunk) >= chunkSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}
