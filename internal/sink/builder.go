package sink

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/senzing-garage/stream-producer/internal/config"
)

// Kind identifies one of the four sinks named in the subcommand surface
// (<format>-to-<sink>).
type Kind string

const (
	KindStdout   Kind = "stdout"
	KindKafka    Kind = "kafka"
	KindRabbitMQ Kind = "rabbitmq"
	KindSQS      Kind = "sqs"
)

// Build constructs one Publisher per call. For the network sinks
// (Kafka, RabbitMQ, SQS) every sink worker gets its own client, since
// clients are never shared across workers (spec §5). Stdout is the
// exception: it is one process-level resource genuinely shared by every
// worker, so callers building a stdout pipeline must call Build once
// and hand the same Publisher to every worker rather than calling Build
// per worker (see StdoutPublisher's internal mutex).
func Build(ctx context.Context, kind Kind, cfg *config.Snapshot) (Publisher, error) {
	switch kind {
	case KindStdout:
		return NewStdoutPublisher(os.Stdout), nil
	case KindKafka:
		if cfg.KafkaTopic == "" {
			return nil, fmt.Errorf("sink: kafka_topic is required")
		}
		return NewKafkaPublisher(cfg.KafkaBootstrapServer, cfg.KafkaTopic), nil
	case KindRabbitMQ:
		return NewRabbitMQPublisher(cfg)
	case KindSQS:
		if cfg.SQSQueueURL == "" {
			return nil, fmt.Errorf("sink: sqs_queue_url is required")
		}
		return NewSQSPublisher(ctx, cfg.SQSQueueURL, cfg.SQSDelaySeconds)
	default:
		return nil, fmt.Errorf("sink: unknown kind %q", kind)
	}
}

// BuildStdoutTo is a test/CLI seam allowing the stdout sink to target an
// arbitrary writer instead of os.Stdout (e.g. a buffer in unit tests).
func BuildStdoutTo(w io.Writer) Publisher {
	return NewStdoutPublisher(w)
}
