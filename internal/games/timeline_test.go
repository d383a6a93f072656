package games

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letsssgooo/historyGames/internal/domain/models"
)

func placeAll(t *testing.T, tl *Timeline, order []models.HistoricalEvent) {
	t.Helper()
	for i, e := range order {
		require.NoError(t, tl.Place(e.ID, i))
	}
}

func TestTimeline_SubsetByDifficulty(t *testing.T) {
	for difficulty, want := range map[models.Difficulty]int{
		models.DifficultyEasy:   5,
		models.DifficultyMedium: 7,
		models.DifficultyHard:   10,
	} {
		opts, _, _ := testOptions(t, difficulty)

		tl, err := NewTimeline(makeEvents(15), opts)
		require.NoError(t, err)

		snap := tl.Snapshot().(TimelineSnapshot)
		assert.Len(t, snap.Pool, want)
		assert.Len(t, snap.Slots, want)
		assert.Equal(t, want*10, tl.MaxScore())
	}
}

func TestTimeline_AnswerKeySortedByYear(t *testing.T) {
	opts, _, _ := testOptions(t, models.DifficultyHard)
	events := []models.HistoricalEvent{
		{ID: "evt-c", Name: "C", Year: 1917},
		{ID: "evt-a", Name: "A", Year: 862},
		{ID: "evt-b", Name: "B", Year: 1812},
	}

	tl, err := NewTimeline(events, opts)
	require.NoError(t, err)

	key := tl.AnswerKey()
	require.Len(t, key, 3)
	assert.Equal(t, []int{862, 1812, 1917}, []int{key[0].Year, key[1].Year, key[2].Year})

	snap := tl.Snapshot().(TimelineSnapshot)
	assert.Equal(t, 862, snap.Slots[0].Year)
	assert.False(t, snap.CanCheck)
}

func TestTimeline_PlaceAndRemove(t *testing.T) {
	opts, _, _ := testOptions(t, models.DifficultyEasy)

	tl, err := NewTimeline(makeEvents(3), opts)
	require.NoError(t, err)

	require.NoError(t, tl.Place("evt-0", 1))
	assert.ErrorIs(t, tl.Place("evt-1", 1), ErrSlotOccupied)
	assert.ErrorIs(t, tl.Place("evt-0", 0), ErrUnknownItem)
	assert.ErrorIs(t, tl.Place("evt-1", 3), ErrInvalidSlot)
	assert.ErrorIs(t, tl.Remove(0), ErrSlotEmpty)

	snap := tl.Snapshot().(TimelineSnapshot)
	assert.Len(t, snap.Pool, 2)
	assert.Equal(t, "evt-0", snap.Slots[1].EventID)

	require.NoError(t, tl.Remove(1))
	snap = tl.Snapshot().(TimelineSnapshot)
	assert.Len(t, snap.Pool, 3)
	assert.Empty(t, snap.Slots[1].EventID)
}

func TestTimeline_CheckRequiresFullBoard(t *testing.T) {
	opts, _, _ := testOptions(t, models.DifficultyEasy)

	tl, err := NewTimeline(makeEvents(3), opts)
	require.NoError(t, err)

	require.NoError(t, tl.Place("evt-0", 0))
	_, err = tl.Check()
	assert.ErrorIs(t, err, ErrPoolNotEmpty)
}

func TestTimeline_PerfectOrder(t *testing.T) {
	opts, sched, rec := testOptions(t, models.DifficultyEasy)

	tl, err := NewTimeline(makeEvents(3), opts)
	require.NoError(t, err)

	placeAll(t, tl, tl.AnswerKey())
	assert.True(t, tl.Snapshot().(TimelineSnapshot).CanCheck)

	score, err := tl.Check()
	require.NoError(t, err)
	assert.Equal(t, 30, score)

	snap := tl.Snapshot().(TimelineSnapshot)
	assert.True(t, snap.Checked)
	assert.Equal(t, SoundCorrect, snap.Sound)
	for _, s := range snap.Slots {
		require.NotNil(t, s.Correct)
		assert.True(t, *s.Correct)
	}

	assert.Empty(t, rec.scores)
	sched.Advance(2 * time.Second)
	requireFinishedOnce(t, rec, models.GameTimeline, 30, 30)
}

func TestTimeline_CheckIsIdempotent(t *testing.T) {
	opts, sched, rec := testOptions(t, models.DifficultyEasy)

	tl, err := NewTimeline(makeEvents(3), opts)
	require.NoError(t, err)

	key := tl.AnswerKey()
	placeAll(t, tl, []models.HistoricalEvent{key[1], key[0], key[2]})

	score, err := tl.Check()
	require.NoError(t, err)
	assert.Equal(t, 10, score)

	again, err := tl.Check()
	assert.ErrorIs(t, err, ErrAlreadyChecked)
	assert.Equal(t, 10, again)

	assert.ErrorIs(t, tl.Remove(0), ErrAlreadyChecked)

	sched.Advance(5 * time.Second)
	requireFinishedOnce(t, rec, models.GameTimeline, 10, 30)
	assert.Equal(t, SoundWrong, tl.Snapshot().(TimelineSnapshot).Sound)
}

func TestTimeline_NoEvents(t *testing.T) {
	opts, _, _ := testOptions(t, models.DifficultyEasy)

	_, err := NewTimeline(nil, opts)
	assert.ErrorIs(t, err, ErrNoContent)
}
