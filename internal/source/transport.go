package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// FileTransport opens a local byte stream for a file:// URL or a bare
// filesystem path, matching the teacher's plain os.Open usage
// throughout internal/audit's FileStore.
type FileTransport struct{}

// Open implements Transport.
func (FileTransport) Open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Scheme == "file" {
		path = u.Path
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file %s: %w", path, err)
	}
	return f, nil
}

// HTTPTransport opens an http:// or https:// GET stream. Per spec there
// is no retry; a failed GET aborts the pipeline. Network reads honor a
// 5-second client timeout.
type HTTPTransport struct {
	Client *http.Client
}

// Open implements Transport.
func (t HTTPTransport) Open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	client := t.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", rawURL, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: unexpected status %s", rawURL, resp.Status)
	}
	return resp.Body, nil
}

// S3Transport resolves bucket and key from an s3:// URL and downloads
// the object via the AWS SDK's concurrent-part manager.Downloader,
// mirroring the teacher's internal/audit.S3Archiver upload path
// inverted into a download: the teacher hands manager.NewUploader a
// PutObject shape, this hands manager.NewDownloader a GetObject shape.
//
// The reference implementation this spec is ported from ships several
// visibly broken S3 reader variants (indentation-mangled, referencing
// undefined symbols) — S3 is a first-class source here, not a stub.
type S3Transport struct {
	Downloader *manager.Downloader
}

// NewS3Transport loads the default AWS config (environment, shared
// config/credentials files, or the EC2/ECS metadata service, in the
// SDK's own precedence order) and returns a ready S3Transport.
func NewS3Transport(ctx context.Context) (*S3Transport, error) {
	cfg, err := awsConfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &S3Transport{Downloader: manager.NewDownloader(s3.NewFromConfig(cfg))}, nil
}

// Open implements Transport. rawURL must be of the form
// s3://bucket/key/with/slashes. The object is pulled into memory
// concurrently in parts and handed back as a plain byte reader; Source
// treats every Transport alike as a single sequential stream.
func (t *S3Transport) Open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse s3 url %s: %w", rawURL, err)
	}
	if u.Scheme != "s3" {
		return nil, fmt.Errorf("not an s3 url: %s", rawURL)
	}
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("s3 url %s missing bucket or key", rawURL)
	}

	buf := manager.NewWriteAtBuffer(nil)
	if _, err := t.Downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return nil, fmt.Errorf("s3 download s3://%s/%s: %w", bucket, key, err)
	}
	return io.NopCloser(bytes.NewReader(buf.Bytes())), nil
}

// TransportFor returns the Transport implementation for rawURL's
// scheme. A bare path with no scheme is treated as a local file, per
// spec §4.1.
func TransportFor(ctx context.Context, rawURL string) (Transport, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse input url %s: %w", rawURL, err)
	}
	switch u.Scheme {
	case "", "file":
		return FileTransport{}, nil
	case "http", "https":
		return HTTPTransport{}, nil
	case "s3":
		return NewS3Transport(ctx)
	default:
		return nil, fmt.Errorf("unsupported input url scheme %q", u.Scheme)
	}
}
