package sink

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
)

func TestStdoutPublisherWritesLineAndFlushesOnClose(t *testing.T) {
	var buf bytes.Buffer
	p := NewStdoutPublisher(&buf)

	if err := p.Publish(context.Background(), []byte(`{"A":"1"}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected output buffered until Close, got %q", buf.String())
	}

	if err := p.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.String() != "{\"A\":\"1\"}\n" {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

// TestStdoutPublisherConcurrentWritesNeverInterleave guards against the
// split-line regression a per-worker bufio.Writer would reintroduce: one
// shared StdoutPublisher, many goroutines publishing ~1KB payloads that
// fill the writer's internal buffer many times over, every line must
// still come out whole.
func TestStdoutPublisherConcurrentWritesNeverInterleave(t *testing.T) {
	var buf bytes.Buffer
	p := NewStdoutPublisher(&buf)

	const goroutines = 8
	const perGoroutine = 50
	long := strings.Repeat("x", 1024) // every few lines together exceed bufio's 4KB default buffer

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				payload := fmt.Sprintf(`{"worker":%d,"seq":%d,"data":"%s"}`, g, i, long)
				if err := p.Publish(context.Background(), []byte(payload)); err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		}(g)
	}
	wg.Wait()

	if err := p.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	if len(lines) != goroutines*perGoroutine {
		t.Fatalf("expected %d whole lines, got %d", goroutines*perGoroutine, len(lines))
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, `{"worker":`) || !strings.HasSuffix(line, `"}`) {
			t.Fatalf("found a split/interleaved line: %q", line)
		}
	}
}
