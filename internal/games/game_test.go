package games

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letsssgooo/historyGames/internal/domain/models"
)

func TestNew_Dispatch(t *testing.T) {
	data := models.ParsedData{
		Title:          "Test",
		Events:         makeEvents(6),
		Questions:      makeQuestions(3),
		Characters:     makeCharacters(),
		PuzzleImageURL: "img",
	}

	for _, gt := range []models.GameType{
		models.GameMatching,
		models.GameTimeline,
		models.GameQuiz,
		models.GamePuzzle,
		models.GameCharacter,
	} {
		opts, _, _ := testOptions(t, models.DifficultyMedium)

		g, err := New(gt, data, opts)
		require.NoError(t, err, gt)
		assert.Equal(t, gt, g.Type())
		assert.False(t, g.Finished())
		assert.NotNil(t, g.Snapshot())
		g.Close()
	}
}

func TestNew_MissingContent(t *testing.T) {
	opts, _, _ := testOptions(t, models.DifficultyMedium)

	_, err := New(models.GameQuiz, models.ParsedData{Events: makeEvents(3)}, opts)
	assert.ErrorIs(t, err, ErrNoContent)

	_, err = New(models.GamePuzzle, models.ParsedData{Events: makeEvents(3)}, opts)
	assert.ErrorIs(t, err, ErrNoPuzzleImage)

	_, err = New("CHESS", models.ParsedData{}, opts)
	assert.Error(t, err)
}

// Сценарий из трёх событий на лёгкой сложности: максимум 30 очков.
func TestMatching_ThreeEventScenario(t *testing.T) {
	opts, _, rec := testOptions(t, models.DifficultyEasy)

	g, err := New(models.GameMatching, models.ParsedData{Events: makeEvents(3)}, opts)
	require.NoError(t, err)

	for _, e := range makeEvents(3) {
		require.NoError(t, g.Apply(Action{Kind: ActionSelectLeft, ID: e.ID}))
		require.NoError(t, g.Apply(Action{Kind: ActionSelectRight, ID: e.ID}))
	}

	requireFinishedOnce(t, rec, models.GameMatching, 30, 30)
	assert.True(t, g.Finished())
}
