package timegrid

// Delta is the difference between a previously stored key set and a newly
// submitted one.
type Delta struct {
	Added   KeySet
	Removed KeySet
}

// Empty reports whether the submission changes nothing. Callers use this to
// skip the persistence write (and the success notification) entirely.
func (d Delta) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// Diff computes the set difference both ways between prev and next. The store
// itself is updated by full replacement, so the delta only decides whether a
// write happens at all.
func Diff(prev, next KeySet) Delta {
	d := Delta{Added: make(KeySet), Removed: make(KeySet)}
	for k := range next {
		if !prev.Has(k) {
			d.Added.Add(k)
		}
	}
	for k := range prev {
		if !next.Has(k) {
			d.Removed.Add(k)
		}
	}
	return d
}
