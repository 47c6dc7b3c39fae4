package timegrid

import "testing"

func TestDiff_IdenticalSetsYieldEmptyDelta(t *testing.T) {
	sets := []KeySet{
		{},
		{{2025, 6, 2, 9}: {}},
		{{2025, 6, 2, 9}: {}, {2025, 6, 3, 14}: {}, {2025, 6, 4, 18}: {}},
	}
	for _, s := range sets {
		d := Diff(s, s)
		if !d.Empty() {
			t.Errorf("Diff(S, S) with %d keys: added=%d removed=%d, want empty",
				len(s), len(d.Added), len(d.Removed))
		}
	}
}

func TestDiff_AddedAndRemoved(t *testing.T) {
	prev := KeySet{
		{2025, 6, 2, 9}:  {},
		{2025, 6, 3, 14}: {},
	}
	next := KeySet{
		{2025, 6, 3, 14}: {},
		{2025, 6, 4, 18}: {},
	}

	d := Diff(prev, next)
	if len(d.Added) != 1 || !d.Added.Has(Key{2025, 6, 4, 18}) {
		t.Errorf("added = %v, want exactly the 18:00 cell", d.Added)
	}
	if len(d.Removed) != 1 || !d.Removed.Has(Key{2025, 6, 2, 9}) {
		t.Errorf("removed = %v, want exactly the 09:00 cell", d.Removed)
	}
	if d.Empty() {
		t.Error("non-trivial delta reported as empty")
	}
}

func TestDiff_FromOrToEmpty(t *testing.T) {
	s := KeySet{{2025, 6, 2, 9}: {}, {2025, 6, 3, 14}: {}}

	d := Diff(KeySet{}, s)
	if len(d.Added) != 2 || len(d.Removed) != 0 {
		t.Errorf("diff from empty: added=%d removed=%d, want 2/0", len(d.Added), len(d.Removed))
	}

	d = Diff(s, KeySet{})
	if len(d.Added) != 0 || len(d.Removed) != 2 {
		t.Errorf("diff to empty: added=%d removed=%d, want 0/2", len(d.Added), len(d.Removed))
	}
}
