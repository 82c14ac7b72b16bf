package persistence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxhall/muster/internal/axis"
	"github.com/voxhall/muster/internal/campaign"
	"github.com/voxhall/muster/internal/engine"
	"github.com/voxhall/muster/internal/journal"
	"github.com/voxhall/muster/internal/relationship"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "campaign.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testState(day int) engine.State {
	return engine.State{
		Date: campaign.Date{Year: 3042, Day: day},
		Axes: axis.Snapshot{Values: map[axis.SubjectKey]map[string]int{
			"w1":    {"xp": 12, "fatigue": 3},
			"w1|w2": {"friendship": 40},
		}},
		Relationships: relationship.Snapshot{Pairs: map[string]*relationship.State{
			"w1|w2": {
				Sentiments: map[string]int{"camaraderie": 2},
				Flags:      map[string]int{"awkward": 1},
				Roles:      map[string]campaign.CharacterID{"MENTOR": "w2"},
			},
		}},
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	db := openTestDB(t)
	assert.False(t, db.HasSnapshot())

	_, err := db.LoadSnapshot()
	require.ErrorIs(t, err, ErrNoSnapshot)

	want := testState(7)
	require.NoError(t, db.SaveSnapshot(want))
	assert.True(t, db.HasSnapshot())

	got, err := db.LoadSnapshot()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSaveSnapshotReplacesPrevious(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.SaveSnapshot(testState(7)))
	later := testState(42)
	later.Axes.Values["w1"]["xp"] = 99
	require.NoError(t, db.SaveSnapshot(later))

	got, err := db.LoadSnapshot()
	require.NoError(t, err)
	assert.Equal(t, campaign.Date{Year: 3042, Day: 42}, got.Date)
	assert.Equal(t, 99, got.Axes.Values["w1"]["xp"])
}

func TestJournalObserverPersists(t *testing.T) {
	db := openTestDB(t)
	j := journal.New()
	j.Subscribe(func(rec journal.Record) {
		if err := db.AppendJournal(rec); err != nil {
			t.Errorf("append journal: %v", err)
		}
	})
	j.SetDay("3042-001")
	j.Cycle(1001, "cycle started")
	j.UnknownToken(1001, "QUARTERMASTER", "unknown role")

	rows, err := db.RecentJournal(10)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byKind := map[string]JournalRow{}
	for _, row := range rows {
		byKind[row.Kind] = row
	}
	assert.Equal(t, "cycle started", byKind["cycle"].Message)
	assert.Equal(t, "QUARTERMASTER", byKind["unknown_token"].Token)
	assert.Equal(t, "3042-001", byKind["cycle"].Day)
	assert.Equal(t, 1001, byKind["cycle"].EventID)
}

func TestRecentJournalLimit(t *testing.T) {
	db := openTestDB(t)
	j := journal.New()
	j.Subscribe(func(rec journal.Record) { db.AppendJournal(rec) })
	for i := 0; i < 5; i++ {
		j.Cycle(1, "tick")
	}

	rows, err := db.RecentJournal(3)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
