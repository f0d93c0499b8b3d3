package source

import (
	"context"
	"fmt"
	"io"

	"github.com/linkedin/goavro/v2"

	"github.com/senzing-garage/stream-producer/internal/config"
	"github.com/senzing-garage/stream-producer/internal/model"
)

// AvroDecoder streams records out of an Avro object container file,
// emitting the reader's native decoded mapping directly (no
// "make-serializable" transform — Avro's decoded scalars are already
// JSON-safe), per spec §4.1.
type AvroDecoder struct{}

// Decode implements Decoder.
func (AvroDecoder) Decode(ctx context.Context, r io.ReadCloser, cfg *config.Snapshot, emit func(model.Record) error) error {
	ocfReader, err := goavro.NewOCFReader(r)
	if err != nil {
		return fmt.Errorf("open avro container: %w", err)
	}
	for ocfReader.Scan() {
		datum, err := ocfReader.Read()
		if err != nil {
			return fmt.Errorf("read avro record: %w", err)
		}
		native, ok := datum.(map[string]interface{})
		if !ok {
			return fmt.Errorf("avro record is not a mapping: %T", datum)
		}
		if err := emit(model.Record(native)); err != nil {
			return err
		}
	}
	return nil
}
