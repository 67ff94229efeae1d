package memory

import "testing"

func TestMemory(t *testing.T) {
	m := NewMemory[int](3)
	if _, ok := m.Latest(); ok {
		t.Fatal("empty memory returned a latest entry")
	}

	for i := 1; i <= 5; i++ {
		m.Store(i)
	}

	if got := m.Len(); got != 3 {
		t.Errorf("m.Len() = %d, want 3", got)
	}
	all := m.All()
	if len(all) != 3 || all[0] != 3 || all[2] != 5 {
		t.Errorf("m.All() = %v, want [3 4 5]", all)
	}
	last := m.Last(2)
	if len(last) != 2 || last[0] != 4 || last[1] != 5 {
		t.Errorf("m.Last(2) = %v, want [4 5]", last)
	}
	if got := m.Last(10); len(got) != 3 {
		t.Errorf("m.Last(10) returned %d entries, want 3", len(got))
	}
	if v, ok := m.Latest(); !ok || v != 5 {
		t.Errorf("m.Latest() = %v, %v, want 5, true", v, ok)
	}

	// copies must not alias the backing slice
	all[0] = 100
	if m.All()[0] != 3 {
		t.Error("All() returned a slice aliasing memory")
	}
}
