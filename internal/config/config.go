// Package config resolves the immutable configuration snapshot used by
// every pipeline stage. Resolution precedence is CLI flag, then
// environment variable, then default — the same precedence order the
// teacher's LoadFromEnv applies to environment-vs-default, extended
// here with a flag.FlagSet layer since this binary is a CLI rather than
// a long-running server.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
)

// Snapshot holds every tunable resolved at start-up. It is built once
// in the prologue and never mutated afterward; every stage receives a
// pointer to the same instance.
type Snapshot struct {
	InputURL string

	CSVRowsInChunk int
	CSVDelimiter   string

	DefaultDataSource string
	DefaultEntityType string

	DelayInSeconds int

	RecordMin int // 0 means unset
	RecordMax int // 0 means unset

	RecordSizeMax  int
	RecordIdentifier string
	RecordMonitor    int
	RecordsPerMessage int

	ReadQueueMaxSize int
	ThreadsPerPrint  int

	MonitoringPeriodInSeconds int

	KafkaBootstrapServer string
	KafkaTopic           string
	KafkaGroup           string
	KafkaPollInterval    int

	RabbitMQHost                 string
	RabbitMQPort                 int
	RabbitMQUsername             string
	RabbitMQPassword             string
	RabbitMQQueue                string
	RabbitMQExchange             string
	RabbitMQRoutingKey           string
	RabbitMQUseExistingEntities  bool

	SQSQueueURL       string
	SQSDelaySeconds   int

	WebsocketHost string
	WebsocketPort int

	GovernorPluginPath string
}

// envString returns the environment variable named key, or def if unset
// or empty.
func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// Load resolves a Snapshot from the given flag.FlagSet (already parsed
// against args by the caller) layered over environment variables and
// defaults. fs may be nil, in which case only environment/defaults are
// consulted.
func Load(fs *flag.FlagSet) (*Snapshot, error) {
	s := &Snapshot{
		CSVRowsInChunk:    envInt("CSV_ROWS_IN_CHUNK", 10000),
		CSVDelimiter:      envString("CSV_DELIMITER", ","),
		DefaultDataSource: envString("DEFAULT_DATA_SOURCE", ""),
		DefaultEntityType: envString("DEFAULT_ENTITY_TYPE", ""),
		DelayInSeconds:    envInt("DELAY_IN_SECONDS", 0),
		RecordMin:         envInt("RECORD_MIN", 0),
		RecordMax:         envInt("RECORD_MAX", 0),
		RecordSizeMax:     envInt("RECORD_SIZE_MAX", 0),
		RecordIdentifier:  envString("RECORD_IDENTIFIER", "RECORD_ID"),
		RecordMonitor:     envInt("RECORD_MONITOR", 10000),
		RecordsPerMessage: envInt("RECORDS_PER_MESSAGE", 1),
		ReadQueueMaxSize:  envInt("READ_QUEUE_MAXSIZE", 50),
		ThreadsPerPrint:   envInt("THREADS_PER_PRINT", 4),

		MonitoringPeriodInSeconds: envInt("MONITORING_PERIOD_IN_SECONDS", 600),

		KafkaBootstrapServer: envString("KAFKA_BOOTSTRAP_SERVER", "localhost:9092"),
		KafkaTopic:           envString("KAFKA_TOPIC", "senzing-kafka-topic"),
		KafkaGroup:           envString("KAFKA_GROUP", "senzing-kafka-group"),
		KafkaPollInterval:    envInt("KAFKA_POLL_INTERVAL", 100),

		RabbitMQHost:                envString("RABBITMQ_HOST", "localhost"),
		RabbitMQPort:                envInt("RABBITMQ_PORT", 5672),
		RabbitMQUsername:            envString("RABBITMQ_USERNAME", "user"),
		RabbitMQPassword:            envString("RABBITMQ_PASSWORD", "bitnami"),
		RabbitMQQueue:               envString("RABBITMQ_QUEUE", "senzing-rabbitmq-queue"),
		RabbitMQExchange:            envString("RABBITMQ_EXCHANGE", "senzing-rabbitmq-exchange"),
		RabbitMQRoutingKey:          envString("RABBITMQ_ROUTING_KEY", "senzing.records"),
		RabbitMQUseExistingEntities: envBool("RABBITMQ_USE_EXISTING_ENTITIES", false),

		SQSQueueURL:     envString("SQS_QUEUE_URL", ""),
		SQSDelaySeconds: envInt("SQS_DELAY_SECONDS", 0),

		WebsocketHost: envString("WEBSOCKET_HOST", "0.0.0.0"),
		WebsocketPort: envInt("WEBSOCKET_PORT", 8255),

		InputURL: envString("INPUT_URL", ""),

		GovernorPluginPath: envString("GOVERNOR_PLUGIN_PATH", ""),
	}

	if fs != nil {
		fs.Visit(func(f *flag.Flag) {
			applyFlag(s, f)
		})
	}

	return s, s.validate()
}

// applyFlag overrides a single resolved field when its flag was
// explicitly set on the command line (flags take precedence over both
// environment and defaults).
func applyFlag(s *Snapshot, f *flag.Flag) {
	switch f.Name {
	case "input-url":
		s.InputURL = f.Value.String()
	case "record-min":
		s.RecordMin = atoiOrZero(f.Value.String())
	case "record-max":
		s.RecordMax = atoiOrZero(f.Value.String())
	case "record-size-max":
		s.RecordSizeMax = atoiOrZero(f.Value.String())
	case "records-per-message":
		s.RecordsPerMessage = atoiOrZero(f.Value.String())
	case "read-queue-maxsize":
		s.ReadQueueMaxSize = atoiOrZero(f.Value.String())
	case "threads-per-print":
		s.ThreadsPerPrint = atoiOrZero(f.Value.String())
	case "kafka-topic":
		s.KafkaTopic = f.Value.String()
	case "kafka-bootstrap-server":
		s.KafkaBootstrapServer = f.Value.String()
	case "sqs-queue-url":
		s.SQSQueueURL = f.Value.String()
	case "delay-in-seconds":
		s.DelayInSeconds = atoiOrZero(f.Value.String())
	}
}

func atoiOrZero(v string) int {
	n, _ := strconv.Atoi(v)
	return n
}

// validate enforces the few invariants the pipeline cannot proceed
// without. Anything else (e.g. a broker unreachable) surfaces later as
// a fatal source or sink error, not a configuration error.
func (s *Snapshot) validate() error {
	if s.InputURL == "" {
		return fmt.Errorf("config: input_url is required")
	}
	if s.ReadQueueMaxSize <= 0 {
		return fmt.Errorf("config: read_queue_maxsize must be positive")
	}
	if s.ThreadsPerPrint <= 0 {
		return fmt.Errorf("config: threads_per_print must be positive")
	}
	if s.RecordsPerMessage <= 0 {
		return fmt.Errorf("config: records_per_message must be positive")
	}
	if s.RecordMin < 0 || s.RecordMax < 0 {
		return fmt.Errorf("config: record_min/record_max must be non-negative")
	}
	if s.RecordMax > 0 && s.RecordMin > 0 && s.RecordMax < s.RecordMin {
		return fmt.Errorf("config: record_max must be >= record_min")
	}
	return nil
}

// RegisterFlags wires the subset of Snapshot fields that make sense as
// CLI flags onto fs. Call before fs.Parse(args); Load then layers the
// parsed values on top of the environment.
func RegisterFlags(fs *flag.FlagSet) {
	fs.String("input-url", "", "source URL or path")
	fs.Int("record-min", 0, "inclusive lower record window bound")
	fs.Int("record-max", 0, "inclusive upper record window bound")
	fs.Int("record-size-max", 0, "drop threshold in bytes, 0 disables")
	fs.Int("records-per-message", 1, "JSON-array batching size")
	fs.Int("read-queue-maxsize", 50, "hand-off queue capacity")
	fs.Int("threads-per-print", 4, "sink worker count")
	fs.String("kafka-topic", "", "Kafka topic")
	fs.String("kafka-bootstrap-server", "", "Kafka bootstrap server")
	fs.String("sqs-queue-url", "", "SQS queue URL")
	fs.Int("delay-in-seconds", 0, "pre-run sleep")
}
