package source

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/senzing-garage/stream-producer/internal/config"
	"github.com/senzing-garage/stream-producer/internal/model"
)

// JSONDecoder decodes line-delimited JSON: one object per line, blank
// lines skipped, trailing whitespace stripped. A line that fails to
// parse is fatal, per spec §4.1.
type JSONDecoder struct{}

// Decode implements Decoder.
func (JSONDecoder) Decode(ctx context.Context, r io.ReadCloser, cfg *config.Snapshot, emit func(model.Record) error) error {
	return decodeJSONLines(r, emit)
}

func decodeJSONLines(r io.Reader, emit func(model.Record) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), " \t\r\n")
		if line == "" {
			continue
		}
		var rec model.Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return fmt.Errorf("parse json line %d: %w", lineNo, err)
		}
		if err := emit(rec); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read json lines: %w", err)
	}
	return nil
}
