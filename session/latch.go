package session

// appliedLatch aggregates the independent per-table "subscription applied"
// acknowledgements. Counting is keyed by table, not a raw increment, so a
// table's callback firing twice cannot complete the latch early.
type appliedLatch struct {
	want map[string]bool
	got  map[string]bool
}

func newAppliedLatch(tables []string) *appliedLatch {
	l := &appliedLatch{
		want: make(map[string]bool, len(tables)),
		got:  make(map[string]bool, len(tables)),
	}
	for _, t := range tables {
		l.want[t] = true
	}
	return l
}

// MarkApplied records one table's acknowledgement. Returns true only the
// first time a wanted table acknowledges; unknown tables and repeats are
// ignored, so a callback firing twice neither completes the latch early
// nor re-triggers first-acknowledgement work like the bulk snapshot load.
func (l *appliedLatch) MarkApplied(table string) bool {
	if !l.want[table] || l.got[table] {
		return false
	}
	l.got[table] = true
	return true
}

func (l *appliedLatch) Done() bool {
	return len(l.got) == len(l.want)
}

// Reset forgets all acknowledgements; a reconnect re-runs every
// subscription from scratch.
func (l *appliedLatch) Reset() {
	l.got = make(map[string]bool, len(l.want))
}
