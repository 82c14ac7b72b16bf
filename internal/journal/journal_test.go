package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendStampsRecord(t *testing.T) {
	j := New()
	j.SetDay("3042-014")

	rec := j.Append(Record{Kind: KindCycle, EventID: 7, Message: "started"})
	assert.NotEmpty(t, rec.ID)
	assert.NotEmpty(t, rec.At)
	assert.Equal(t, "3042-014", rec.Day)

	other := j.Append(Record{Kind: KindCycle, Message: "again"})
	assert.NotEqual(t, rec.ID, other.ID)
}

func TestObserversReceiveEveryRecord(t *testing.T) {
	j := New()
	var seen []Record
	j.Subscribe(func(rec Record) { seen = append(seen, rec) })

	j.Cycle(1, "a")
	j.Warning(1, "HR", "empty pick")
	j.UnknownToken(1, "QUARTERMASTER", "unknown role")

	require.Len(t, seen, 3)
	assert.Equal(t, KindCycle, seen[0].Kind)
	assert.Equal(t, KindWarning, seen[1].Kind)
	assert.Equal(t, KindUnknownToken, seen[2].Kind)
	assert.Equal(t, "QUARTERMASTER", seen[2].Token)
}

func TestTail(t *testing.T) {
	j := New()
	for i := 0; i < 5; i++ {
		j.Cycle(i, "tick")
	}

	tail := j.Tail(2)
	require.Len(t, tail, 2)
	assert.Equal(t, 3, tail[0].EventID)
	assert.Equal(t, 4, tail[1].EventID)

	assert.Len(t, j.Tail(0), 5, "non-positive n returns everything")
	assert.Len(t, j.Tail(99), 5)
	assert.Equal(t, 5, j.Len())
}
