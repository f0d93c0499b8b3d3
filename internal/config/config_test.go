package config

import (
	"flag"
	"testing"
)

func TestLoadAppliesDefaults(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Set("input-url", "file:///tmp/data.json"); err != nil {
		t.Fatalf("unexpected error setting flag: %v", err)
	}

	s, err := Load(fs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ThreadsPerPrint != 4 {
		t.Fatalf("expected default threads_per_print 4, got %d", s.ThreadsPerPrint)
	}
	if s.KafkaTopic != "senzing-kafka-topic" {
		t.Fatalf("expected default kafka topic, got %q", s.KafkaTopic)
	}
	if s.RecordsPerMessage != 1 {
		t.Fatalf("expected default records_per_message 1, got %d", s.RecordsPerMessage)
	}
}

func TestFlagOverridesEnvironment(t *testing.T) {
	t.Setenv("THREADS_PER_PRINT", "7")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Set("input-url", "file:///tmp/data.json"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := fs.Set("threads-per-print", "2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s, err := Load(fs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ThreadsPerPrint != 2 {
		t.Fatalf("expected flag (2) to win over environment (7), got %d", s.ThreadsPerPrint)
	}
}

func TestEnvironmentOverridesDefault(t *testing.T) {
	t.Setenv("KAFKA_TOPIC", "custom-topic")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Set("input-url", "file:///tmp/data.json"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s, err := Load(fs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.KafkaTopic != "custom-topic" {
		t.Fatalf("expected environment to win over default, got %q", s.KafkaTopic)
	}
}

func TestLoadRejectsMissingInputURL(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	RegisterFlags(fs)

	if _, err := Load(fs); err == nil {
		t.Fatalf("expected error for missing input_url")
	}
}

func TestLoadRejectsInvertedRecordWindow(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Set("input-url", "file:///tmp/data.json"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := fs.Set("record-min", "10"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := fs.Set("record-max", "5"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := Load(fs); err == nil {
		t.Fatalf("expected error for record_max < record_min")
	}
}

func TestLoadRejectsNonPositiveRecordsPerMessage(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Set("input-url", "file:///tmp/data.json"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := fs.Set("records-per-message", "0"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := Load(fs); err == nil {
		t.Fatalf("expected error for records_per_message 0")
	}
}

