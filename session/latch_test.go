package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppliedLatch_RequiresEveryTable(t *testing.T) {
	l := newAppliedLatch([]string{"a", "b", "c"})

	assert.True(t, l.MarkApplied("a"))
	assert.True(t, l.MarkApplied("b"))
	assert.False(t, l.Done())
	assert.True(t, l.MarkApplied("c"))
	assert.True(t, l.Done())
}

func TestAppliedLatch_IdempotentPerTable(t *testing.T) {
	l := newAppliedLatch([]string{"a", "b"})

	assert.True(t, l.MarkApplied("a"), "first acknowledgement counts")
	assert.False(t, l.MarkApplied("a"), "a repeated callback must not double count")
	assert.False(t, l.MarkApplied("a"))
	assert.False(t, l.Done())

	assert.True(t, l.MarkApplied("b"))
	assert.True(t, l.Done())
	assert.False(t, l.MarkApplied("b"), "repeats stay ignored after completion")
}

func TestAppliedLatch_IgnoresUnknownTable(t *testing.T) {
	l := newAppliedLatch([]string{"a"})
	assert.False(t, l.MarkApplied("zzz"))
	assert.False(t, l.Done())
}

func TestAppliedLatch_Reset(t *testing.T) {
	l := newAppliedLatch([]string{"a"})
	l.MarkApplied("a")
	assert.True(t, l.Done())

	l.Reset()
	assert.False(t, l.Done())
	assert.True(t, l.MarkApplied("a"))
}
