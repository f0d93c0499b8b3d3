package metrics

import "testing"

func TestIncrementCounters(t *testing.T) {
	m := New()
	m.IncrementInput()
	m.IncrementInput()
	m.IncrementOutput()
	m.IncrementDroppedOversize()

	snap := m.Snapshot()
	if snap.InputCounter != 2 {
		t.Fatalf("expected InputCounter 2, got %d", snap.InputCounter)
	}
	if snap.OutputCounter != 1 {
		t.Fatalf("expected OutputCounter 1, got %d", snap.OutputCounter)
	}
	if snap.DroppedOversize != 1 {
		t.Fatalf("expected DroppedOversize 1, got %d", snap.DroppedOversize)
	}
}

func TestWorkersStartedAndExited(t *testing.T) {
	m := New()
	m.SetWorkersStarted(3)

	snap := m.Snapshot()
	if snap.WorkersStarted != 3 || snap.WorkersLive != 3 {
		t.Fatalf("expected 3 started and live, got %+v", snap)
	}

	if left := m.WorkerExited(); left != 2 {
		t.Fatalf("expected 2 remaining live, got %d", left)
	}
	m.WorkerExited()
	if left := m.WorkerExited(); left != 0 {
		t.Fatalf("expected 0 remaining live, got %d", left)
	}

	snap = m.Snapshot()
	if snap.WorkersStarted != 3 {
		t.Fatalf("expected WorkersStarted to remain 3, got %d", snap.WorkersStarted)
	}
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	m := New()
	m.IncrementInput()
	first := m.Snapshot()
	m.IncrementInput()
	second := m.Snapshot()

	if first.InputCounter != 1 {
		t.Fatalf("expected first snapshot frozen at 1, got %d", first.InputCounter)
	}
	if second.InputCounter != 2 {
		t.Fatalf("expected second snapshot at 2, got %d", second.InputCounter)
	}
}
