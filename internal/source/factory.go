package source

import "fmt"

// Format identifies one of the decoders named in the subcommand surface
// (<format>-to-<sink>).
type Format string

const (
	FormatJSON        Format = "json"
	FormatGzippedJSON Format = "gzipped-json"
	FormatCSV         Format = "csv"
	FormatParquet     Format = "parquet"
	FormatAvro        Format = "avro"
	FormatWebsocket   Format = "websocket"
)

// DecoderFor returns the Decoder for a given format. It returns an
// error for FormatWebsocket, which is not decoded through the
// Transport+Decoder pair — it is driven by WebsocketSource instead,
// since it is a server-initiated push channel rather than a bounded
// readable stream.
func DecoderFor(format Format) (Decoder, error) {
	switch format {
	case FormatJSON:
		return JSONDecoder{}, nil
	case FormatGzippedJSON:
		return GzippedJSONDecoder{}, nil
	case FormatCSV:
		return CSVDecoder{}, nil
	case FormatParquet:
		return ParquetDecoder{}, nil
	case FormatAvro:
		return AvroDecoder{}, nil
	default:
		return nil, fmt.Errorf("source: unsupported format %q", format)
	}
}
