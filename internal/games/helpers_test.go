package games

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/letsssgooo/historyGames/internal/domain/models"
	"github.com/letsssgooo/historyGames/internal/scheduler"
)

// recorder собирает итоги, переданные в FinishFunc.
type recorder struct {
	scores []models.PlayerScore
}

func (r *recorder) onFinish(s models.PlayerScore) {
	r.scores = append(r.scores, s)
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func testOptions(t *testing.T, difficulty models.Difficulty) (Options, *scheduler.Manual, *recorder) {
	t.Helper()

	cfg := models.DefaultGameConfig()
	cfg.Difficulty = difficulty

	sched := scheduler.NewManual()
	rec := &recorder{}

	return Options{
		Config:    cfg,
		Scheduler: sched,
		Rand:      rand.New(rand.NewSource(42)),
		OnFinish:  rec.onFinish,
		Now:       func() time.Time { return fixedNow },
	}, sched, rec
}

func makeEvents(n int) []models.HistoricalEvent {
	events := make([]models.HistoricalEvent, n)
	for i := range events {
		events[i] = models.HistoricalEvent{
			ID:          fmt.Sprintf("evt-%d", i),
			Name:        fmt.Sprintf("Event %d", i),
			Year:        1000 + i*10,
			Description: fmt.Sprintf("Description of event number %d with some text", i),
		}
	}
	return events
}

func makeQuestions(n int) []models.QuizQuestion {
	questions := make([]models.QuizQuestion, n)
	for i := range questions {
		questions[i] = models.QuizQuestion{
			ID:                 fmt.Sprintf("quiz-%d", i),
			Question:           fmt.Sprintf("Question %d?", i),
			Options:            []string{"A", "B", "C", "D"},
			CorrectAnswerIndex: i % 4,
		}
	}
	return questions
}

func requireFinishedOnce(t *testing.T, rec *recorder, gameType models.GameType, score, maxScore int) {
	t.Helper()

	require.Len(t, rec.scores, 1)
	require.Equal(t, gameType, rec.scores[0].GameType)
	require.Equal(t, score, rec.scores[0].Score)
	require.Equal(t, maxScore, rec.scores[0].MaxScore)
	require.Equal(t, fixedNow, rec.scores[0].Timestamp)
}
