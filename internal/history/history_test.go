package history

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type doc struct {
	Name  string
	Color string
	Tags  []string
}

func TestManager_PushUndoRedo(t *testing.T) {
	m := New(doc{Name: "A"})

	st := m.Push(doc{Name: "B"})
	if st.Present.Name != "B" || !st.CanUndo || st.CanRedo {
		t.Fatalf("after push: got %+v", st)
	}

	st = m.Undo()
	if st.Present.Name != "A" || st.CanUndo || !st.CanRedo {
		t.Fatalf("after undo: got %+v", st)
	}

	st = m.Redo()
	if st.Present.Name != "B" || !st.CanUndo || st.CanRedo {
		t.Fatalf("after redo: got %+v", st)
	}
}

func TestManager_PushEqualIsNoOp(t *testing.T) {
	m := New(doc{Name: "A", Tags: []string{"x"}})
	m.Push(doc{Name: "B", Tags: []string{"x"}})
	m.Undo()

	before := m.State()
	// Structurally equal, different slice backing array.
	st := m.Push(doc{Name: "A", Tags: []string{"x"}})

	if diff := cmp.Diff(before, st); diff != "" {
		t.Errorf("no-op push changed state (-before +after):\n%s", diff)
	}
	if len(m.Future()) != 1 {
		t.Errorf("no-op push cleared the future: %d entries", len(m.Future()))
	}
}

func TestManager_EvictsOldest(t *testing.T) {
	m := New(0)
	for i := 1; i <= 60; i++ {
		m.Push(i)
	}

	past := m.Past()
	if len(past) != DefaultLimit {
		t.Fatalf("past length: got %d, want %d", len(past), DefaultLimit)
	}
	if m.Present() != 60 {
		t.Errorf("present: got %d, want 60", m.Present())
	}
	if past[0] != 10 || past[len(past)-1] != 59 {
		t.Errorf("past range: got %d..%d, want 10..59", past[0], past[len(past)-1])
	}
}

func TestManager_PushClearsFuture(t *testing.T) {
	m := New("a")
	m.Push("b")
	m.Push("c")
	m.Undo()
	m.Undo()

	if got := m.Future(); !cmp.Equal(got, []string{"b", "c"}) {
		t.Fatalf("future: got %v, want [b c]", got)
	}

	st := m.Push("d")
	if st.CanRedo {
		t.Error("push after undo should clear redo")
	}
	if got := m.Past(); !cmp.Equal(got, []string{"a"}) {
		t.Errorf("past: got %v, want [a]", got)
	}

	// Redo with nothing ahead keeps the branch.
	m.Redo()
	if m.Present() != "d" {
		t.Errorf("present after empty redo: got %q, want d", m.Present())
	}
}

func TestManager_EmptyStacksAreNoOps(t *testing.T) {
	m := New("only")

	for _, op := range []struct {
		name string
		fn   func() State[string]
	}{
		{"undo", m.Undo},
		{"redo", m.Redo},
	} {
		st := op.fn()
		if st.Present != "only" || st.CanUndo || st.CanRedo {
			t.Errorf("%s on empty history: got %+v", op.name, st)
		}
	}
}

func TestManager_UndoRedoOrder(t *testing.T) {
	m := New(1)
	for i := 2; i <= 5; i++ {
		m.Push(i)
	}

	var undone []int
	for m.State().CanUndo {
		undone = append(undone, m.Undo().Present)
	}
	if !cmp.Equal(undone, []int{4, 3, 2, 1}) {
		t.Errorf("undo sequence: got %v", undone)
	}

	var redone []int
	for m.State().CanRedo {
		redone = append(redone, m.Redo().Present)
	}
	if !cmp.Equal(redone, []int{2, 3, 4, 5}) {
		t.Errorf("redo sequence: got %v", redone)
	}
}

func TestManager_Update(t *testing.T) {
	m := New(doc{Name: "Jane", Color: "#ffffff"})

	st := m.Update(func(d doc) doc {
		d.Color = "#000000"
		return d
	})
	if st.Present.Color != "#000000" || st.Present.Name != "Jane" {
		t.Errorf("Update: got %+v", st.Present)
	}
	if !st.CanUndo {
		t.Error("Update should be undoable")
	}

	st = m.Update(func(d doc) doc { return d })
	if len(m.Past()) != 1 {
		t.Errorf("identity update grew history to %d", len(m.Past()))
	}
}

func TestWithLimit(t *testing.T) {
	tests := []struct {
		limit int
		want  int
	}{
		{3, 3},
		{1, 1},
		{0, DefaultLimit},
		{-2, DefaultLimit},
	}
	for _, tt := range tests {
		m := New(0, WithLimit[int](tt.limit))
		if m.Limit() != tt.want {
			t.Errorf("WithLimit(%d): got %d, want %d", tt.limit, m.Limit(), tt.want)
		}
		for i := 1; i <= 100; i++ {
			m.Push(i)
		}
		if len(m.Past()) != tt.want {
			t.Errorf("WithLimit(%d): past length %d, want %d", tt.limit, len(m.Past()), tt.want)
		}
	}
}

func TestWithEqual(t *testing.T) {
	byName := func(a, b doc) bool { return a.Name == b.Name }
	m := New(doc{Name: "A", Color: "red"}, WithEqual(byName))

	st := m.Push(doc{Name: "A", Color: "blue"})
	if st.CanUndo || st.Present.Color != "red" {
		t.Errorf("custom equality ignored: got %+v", st)
	}
}

func TestManager_Reset(t *testing.T) {
	m := New(1)
	m.Push(2)
	m.Push(3)
	m.Undo()

	st := m.Reset(9)
	if st.Present != 9 || st.CanUndo || st.CanRedo {
		t.Errorf("Reset: got %+v", st)
	}
}

func TestManager_PastIsCopy(t *testing.T) {
	m := New(1)
	m.Push(2)

	past := m.Past()
	past[0] = 99
	if m.Undo().Present != 1 {
		t.Error("mutating Past() result leaked into the manager")
	}
}
