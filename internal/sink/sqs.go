package sink

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"
)

// sqsBatchMax is the API-imposed ceiling on entries per SendMessageBatch
// call (spec §4.3: "SQS's API maximum").
const sqsBatchMax = 10

// SQSPublisher accumulates up to sqsBatchMax worker-level messages
// (each of which may itself already be a records_per_message JSON
// array — the two batching knobs compose, per spec §4.3) and flushes
// them with a single SendMessageBatch call, falling back to a plain
// SendMessage when flushed with exactly one entry.
type SQSPublisher struct {
	client       *sqs.Client
	queueURL     string
	delaySeconds int32

	mu      sync.Mutex
	pending []sqstypes.SendMessageBatchRequestEntry
}

// NewSQSPublisher derives the SQS endpoint from the queue URL's
// scheme+host and loads AWS credentials the SDK's own way (environment,
// shared config, or instance metadata).
func NewSQSPublisher(ctx context.Context, queueURL string, delaySeconds int) (*SQSPublisher, error) {
	u, err := url.Parse(queueURL)
	if err != nil {
		return nil, fmt.Errorf("parse sqs queue url %s: %w", queueURL, err)
	}
	cfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(regionFromHost(u.Host)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	var opts []func(*sqs.Options)
	if u.Scheme != "" && u.Host != "" {
		endpoint := u.Scheme + "://" + u.Host
		opts = append(opts, func(o *sqs.Options) { o.BaseEndpoint = aws.String(endpoint) })
	}
	return &SQSPublisher{
		client:       sqs.NewFromConfig(cfg, opts...),
		queueURL:     queueURL,
		delaySeconds: int32(delaySeconds),
		pending:      make([]sqstypes.SendMessageBatchRequestEntry, 0, sqsBatchMax),
	}, nil
}

// regionFromHost extracts the AWS region from a standard SQS queue
// hostname of the form sqs.<region>.amazonaws.com; it returns "" (let
// the SDK's default resolution apply) when the host doesn't match.
func regionFromHost(host string) string {
	parts := strings.Split(host, ".")
	if len(parts) >= 3 && parts[0] == "sqs" {
		return parts[1]
	}
	return ""
}

// Publish buffers payload as one batch entry. When the buffer reaches
// sqsBatchMax entries it is flushed immediately; otherwise Publish
// returns once the entry is queued, and the caller's message is
// guaranteed to be sent no later than the worker's final Close.
func (p *SQSPublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	p.pending = append(p.pending, sqstypes.SendMessageBatchRequestEntry{
		Id:           aws.String(uuid.NewString()),
		MessageBody:  aws.String(string(payload)),
		DelaySeconds: p.delaySeconds,
	})
	shouldFlush := len(p.pending) >= sqsBatchMax
	var batch []sqstypes.SendMessageBatchRequestEntry
	if shouldFlush {
		batch = p.pending
		p.pending = make([]sqstypes.SendMessageBatchRequestEntry, 0, sqsBatchMax)
	}
	p.mu.Unlock()

	if !shouldFlush {
		return nil
	}
	return p.sendBatch(ctx, batch)
}

// sendBatch sends a non-empty batch, using the single-send SendMessage
// call when exactly one entry is present and SendMessageBatch
// otherwise.
func (p *SQSPublisher) sendBatch(ctx context.Context, batch []sqstypes.SendMessageBatchRequestEntry) error {
	if len(batch) == 0 {
		return nil
	}
	if len(batch) == 1 {
		_, err := p.client.SendMessage(ctx, &sqs.SendMessageInput{
			QueueUrl:     aws.String(p.queueURL),
			MessageBody:  batch[0].MessageBody,
			DelaySeconds: p.delaySeconds,
		})
		if err != nil {
			return fmt.Errorf("sqs SendMessage: %w", err)
		}
		return nil
	}

	out, err := p.client.SendMessageBatch(ctx, &sqs.SendMessageBatchInput{
		QueueUrl: aws.String(p.queueURL),
		Entries:  batch,
	})
	if err != nil {
		return fmt.Errorf("sqs SendMessageBatch: %w", err)
	}
	if len(out.Failed) > 0 {
		return fmt.Errorf("sqs SendMessageBatch: %d of %d entries failed", len(out.Failed), len(batch))
	}
	return nil
}

// Close flushes any partial batch still pending.
func (p *SQSPublisher) Close() error {
	p.mu.Lock()
	batch := p.pending
	p.pending = nil
	p.mu.Unlock()
	return p.sendBatch(context.Background(), batch)
}
