package gcheap

import (
	"testing"

	"europa/internal/value"
)

func TestUnreachableObjectIsFreed(t *testing.T) {
	h := New()
	p := value.NewPair(value.Fixnum(1), value.Null)
	h.Track(p)

	if h.Live() != 1 {
		t.Fatalf("live = %d, want 1", h.Live())
	}
	h.Collect(nil) // no roots reference p
	if h.Live() != 0 {
		t.Fatalf("live = %d, want 0 after collecting an unreachable pair", h.Live())
	}
	if h.Stats.Freed != 1 {
		t.Fatalf("freed = %d, want 1", h.Stats.Freed)
	}
}

func TestReachableObjectSurvives(t *testing.T) {
	h := New()
	p := value.NewPair(value.Fixnum(1), value.Null)
	h.Track(p)

	root := value.FromObject(p)
	h.Collect([]value.Value{root})
	if h.Live() != 1 {
		t.Fatalf("live = %d, want 1 (pair reachable from root)", h.Live())
	}
}

func TestMarkFollowsChildren(t *testing.T) {
	h := New()
	tail := value.NewPair(value.Fixnum(2), value.Null)
	h.Track(tail)
	head := value.NewPair(value.Fixnum(1), value.FromObject(tail))
	h.Track(head)

	root := value.FromObject(head)
	h.Collect([]value.Value{root})
	if h.Live() != 2 {
		t.Fatalf("live = %d, want 2 (head and its tail both reachable)", h.Live())
	}
}

func TestAddRootPinsDuringConstruction(t *testing.T) {
	h := New()
	partial := value.NewPair(value.Fixnum(1), value.Null)
	h.Track(partial)
	h.AddRoot(partial)

	// No extra roots passed: partial would be unreachable except that it
	// is pinned on the root list, simulating an in-progress reader/
	// compiler allocation.
	h.Collect(nil)
	if h.Live() != 1 {
		t.Fatalf("rooted object was collected; live = %d", h.Live())
	}

	h.RemoveRoot(partial)
	h.Collect(nil)
	if h.Live() != 0 {
		t.Fatalf("object survived after RemoveRoot with no other root referencing it")
	}
}

type fakeFile struct {
	value.Object
	closed bool
}

func (f *fakeFile) Finalize() { f.closed = true }

func TestSweepFinalizesWhiteObjects(t *testing.T) {
	h := New()
	f := &fakeFile{}
	f.Init(f, value.KindPort)
	h.Track(f)

	h.Collect(nil)
	if !f.closed {
		t.Fatalf("expected Finalize to run when the object was swept")
	}
}
