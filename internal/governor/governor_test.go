package governor

import "testing"

func TestNewNoopNeverBlocksOrFails(t *testing.T) {
	g := NewNoop()
	if err := g.Govern(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadReturnsNoopWhenPathEmpty(t *testing.T) {
	g, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := g.(noop); !ok {
		t.Fatalf("expected the default noop governor, got %T", g)
	}
}

func TestLoadFailsForMissingPluginFile(t *testing.T) {
	if _, err := Load("/nonexistent/governor.so"); err == nil {
		t.Fatalf("expected an error for a missing plugin file")
	}
}
