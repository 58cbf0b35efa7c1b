package table

import (
	"testing"

	"europa/internal/gcheap"
	"europa/internal/value"
)

func TestCreateKeyThenGet(t *testing.T) {
	h := gcheap.New()
	tbl := New(h, 0)

	key := value.Fixnum(42)
	slot := tbl.CreateKey(key)
	*slot = value.Fixnum(100)

	got, ok := tbl.Get(key)
	if !ok {
		t.Fatalf("expected key to be found after CreateKey")
	}
	if got.AsFixnum() != 100 {
		t.Fatalf("got %v, want 100", got.AsFixnum())
	}
	if tbl.Count() != 1 {
		t.Fatalf("count = %d, want 1", tbl.Count())
	}
}

func TestCreateKeyExistingDoesNotBumpCount(t *testing.T) {
	h := gcheap.New()
	tbl := New(h, 0)

	for i := 0; i < 40; i++ {
		tbl.Set(value.Fixnum(int64(i)), value.Fixnum(int64(i*i)))
	}
	if tbl.Count() != 40 {
		t.Fatalf("count = %d, want 40", tbl.Count())
	}

	*tbl.CreateKey(value.Fixnum(5)) = value.Fixnum(999)
	if tbl.Count() != 40 {
		t.Fatalf("overwriting an existing key changed count to %d", tbl.Count())
	}
	got, _ := tbl.Get(value.Fixnum(5))
	if got.AsFixnum() != 999 {
		t.Fatalf("overwrite did not take effect, got %v", got.AsFixnum())
	}
}

func TestCollisionChaining(t *testing.T) {
	h := gcheap.New()
	tbl := New(h, 0)
	for i := 0; i < 200; i++ {
		tbl.Set(value.Fixnum(int64(i)), value.Fixnum(int64(i)))
	}
	for i := 0; i < 200; i++ {
		got, ok := tbl.Get(value.Fixnum(int64(i)))
		if !ok || got.AsFixnum() != int64(i) {
			t.Fatalf("key %d: got %v ok=%v", i, got, ok)
		}
	}
	if tbl.Size()&(tbl.Size()-1) != 0 {
		t.Fatalf("table size %d is not a power of two", tbl.Size())
	}
}

func TestRGetWalksParentChain(t *testing.T) {
	h := gcheap.New()
	parent := New(h, 0)
	parent.Set(value.Fixnum(1), value.Fixnum(111))

	child := New(h, 0)
	child.Index = parent
	child.Set(value.Fixnum(2), value.Fixnum(222))

	if _, ok := child.Get(value.Fixnum(1)); ok {
		t.Fatalf("plain Get should not see the parent's keys")
	}
	v, ok := child.RGet(value.Fixnum(1))
	if !ok || v.AsFixnum() != 111 {
		t.Fatalf("RGet did not inherit from parent: v=%v ok=%v", v, ok)
	}
}

func TestGetStringAndSymbolFastPaths(t *testing.T) {
	h := gcheap.New()
	tbl := New(h, 0)

	str := value.FromObject(value.NewString("hello", value.FNV1a("hello")))
	sym := value.FromObject(value.NewSymbol("hello", value.FNV1a("hello")))

	tbl.Set(str, value.Fixnum(1))
	tbl.Set(sym, value.Fixnum(2))

	sv, ok := tbl.GetString("hello")
	if !ok || sv.AsFixnum() != 1 {
		t.Fatalf("GetString: v=%v ok=%v", sv, ok)
	}
	yv, ok := tbl.GetSymbol("hello")
	if !ok || yv.AsFixnum() != 2 {
		t.Fatalf("GetSymbol: v=%v ok=%v", yv, ok)
	}
}

func TestResizeRejectsShrinkBelowCount(t *testing.T) {
	h := gcheap.New()
	tbl := New(h, 0)
	for i := 0; i < 10; i++ {
		tbl.Set(value.Fixnum(int64(i)), value.Null)
	}
	if tbl.Resize(2) {
		t.Fatalf("Resize should refuse to shrink below the current count")
	}
}

func TestMarkChildrenVisitsAllLiveEntries(t *testing.T) {
	h := gcheap.New()
	tbl := New(h, 0)
	tbl.Set(value.Fixnum(1), value.Fixnum(2))
	tbl.Set(value.Fixnum(3), value.Fixnum(4))

	seen := map[int64]bool{}
	tbl.MarkChildren(func(v value.Value) {
		if v.IsFixnum() {
			seen[v.AsFixnum()] = true
		}
	})
	for _, want := range []int64{1, 2, 3, 4} {
		if !seen[want] {
			t.Fatalf("MarkChildren missed value %d", want)
		}
	}
}
