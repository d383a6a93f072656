package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letsssgooo/historyGames/internal/domain/models"
	"github.com/letsssgooo/historyGames/internal/extract"
	"github.com/letsssgooo/historyGames/internal/games"
	"github.com/letsssgooo/historyGames/internal/history"
	"github.com/letsssgooo/historyGames/internal/scheduler"
	"github.com/letsssgooo/historyGames/internal/storage"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeExtractor struct {
	mu     sync.Mutex
	data   models.ParsedData
	err    error
	texts  []string
	mimes  []string
	creds  []extract.Credentials
	block  chan struct{}
	called chan struct{}
}

func (f *fakeExtractor) record(creds extract.Credentials, text, mime string) (models.ParsedData, error) {
	f.mu.Lock()
	f.creds = append(f.creds, creds)
	if text != "" {
		f.texts = append(f.texts, text)
	}
	if mime != "" {
		f.mimes = append(f.mimes, mime)
	}
	block, called := f.block, f.called
	f.mu.Unlock()

	if called != nil {
		called <- struct{}{}
	}
	if block != nil {
		<-block
	}
	return f.data, f.err
}

func (f *fakeExtractor) FromText(_ context.Context, creds extract.Credentials, text string) (models.ParsedData, error) {
	return f.record(creds, text, "")
}

func (f *fakeExtractor) FromImage(_ context.Context, creds extract.Credentials, _, mimeType string) (models.ParsedData, error) {
	return f.record(creds, "", mimeType)
}

type env struct {
	manager *Manager
	session *Session
	fake    *fakeExtractor
	history *history.Store
	sched   *scheduler.Manual
	now     *time.Time
}

func newEnv(t *testing.T) *env {
	t.Helper()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	e := &env{
		fake:  &fakeExtractor{data: sampleData()},
		sched: scheduler.NewManual(),
		now:   &now,
	}
	e.history = history.New(storage.NewMemoryStorage(), discard)
	e.manager = NewManager(Deps{
		Extractor: e.fake,
		History:   e.history,
		Log:       discard,
		NewScheduler: func(sync.Locker) scheduler.Scheduler {
			return e.sched
		},
		NewRand: func() *rand.Rand { return rand.New(rand.NewSource(7)) },
		Now:     func() time.Time { return *e.now },
	}, time.Hour)
	e.session = e.manager.Create()
	t.Cleanup(e.manager.Close)

	return e
}

func sampleData() models.ParsedData {
	return models.ParsedData{
		Title: "Наполеоновские войны",
		Events: []models.HistoricalEvent{
			{ID: "evt-0", Name: "Бородинское сражение", Year: 1812},
			{ID: "evt-1", Name: "Аустерлиц", Year: 1805},
		},
		Questions: []models.QuizQuestion{
			{ID: "quiz-0", Question: "Год Бородина?", Options: []string{"1805", "1812"}, CorrectAnswerIndex: 1},
		},
		Characters: []models.CharacterInfo{
			{ID: "char-0", Name: "Napoleon Bonaparte", Hints: []string{"Corsica", "Emperor"}},
		},
	}
}

// loaded возвращает сессию с контентом в редакторе.
func (e *env) loaded(t *testing.T) *Session {
	t.Helper()
	require.NoError(t, e.session.AnalyzeText(context.Background(), "Текст про 1812 год"))
	require.Equal(t, models.ScreenEditor, e.session.Snapshot().Screen)
	return e.session
}

func TestSession_InitialSnapshot(t *testing.T) {
	e := newEnv(t)

	snap := e.session.Snapshot()
	assert.Equal(t, e.session.ID(), snap.ID)
	assert.Equal(t, models.ScreenWelcome, snap.Screen)
	assert.Equal(t, models.DefaultGameConfig(), snap.Config)
	assert.False(t, snap.HasAPIKey)
	assert.Nil(t, snap.Data)
	assert.Nil(t, snap.Result)
}

func TestSession_AnalyzeText(t *testing.T) {
	e := newEnv(t)
	e.session.SetCredentials(" key-1 ", "gemini-2.5-flash")

	require.NoError(t, e.session.AnalyzeText(context.Background(), "Текст про 1812 год"))

	snap := e.session.Snapshot()
	assert.Equal(t, models.ScreenEditor, snap.Screen)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Error)
	require.NotNil(t, snap.Data)
	assert.Equal(t, "Наполеоновские войны", snap.Data.Title)
	assert.NotEmpty(t, snap.SavedID)
	assert.True(t, snap.HasAPIKey)

	require.Len(t, e.fake.creds, 1)
	assert.Equal(t, extract.Credentials{APIKey: "key-1", Model: "gemini-2.5-flash"}, e.fake.creds[0])

	saved := e.history.List(context.Background())
	require.Len(t, saved, 1)
	assert.Equal(t, snap.SavedID, saved[0].ID)
}

func TestSession_AnalyzeText_Blank(t *testing.T) {
	e := newEnv(t)

	err := e.session.AnalyzeText(context.Background(), "  \n ")
	assert.ErrorIs(t, err, ErrNoInput)

	snap := e.session.Snapshot()
	assert.Equal(t, models.ScreenWelcome, snap.Screen)
	assert.Equal(t, msgNoInput, snap.Error)
	assert.Empty(t, e.fake.texts)
}

func TestSession_AnalyzeText_Failure(t *testing.T) {
	e := newEnv(t)
	e.fake.err = fmt.Errorf("%w: model down", extract.ErrAllModelsFailed)

	err := e.session.AnalyzeText(context.Background(), "text")
	assert.ErrorIs(t, err, extract.ErrAllModelsFailed)

	snap := e.session.Snapshot()
	assert.Equal(t, models.ScreenWelcome, snap.Screen)
	assert.Contains(t, snap.Error, "AI error: ")
	assert.False(t, snap.Loading)
	assert.Empty(t, e.history.List(context.Background()))
}

func TestSession_AnalyzeFile(t *testing.T) {
	e := newEnv(t)

	err := e.session.AnalyzeFile(context.Background(), "notes.txt", "text/plain", []byte("Бородино, 1812"))
	require.NoError(t, err)

	assert.Equal(t, []string{"Бородино, 1812"}, e.fake.texts)
	assert.Equal(t, models.ScreenEditor, e.session.Snapshot().Screen)
}

func TestSession_AnalyzeFile_Image(t *testing.T) {
	e := newEnv(t)

	err := e.session.AnalyzeFile(context.Background(), "map.png", "image/png", []byte("\x89PNG\r\n\x1a\nfake"))
	require.NoError(t, err)

	assert.Equal(t, []string{"image/png"}, e.fake.mimes)
	assert.Empty(t, e.fake.texts)
}

func TestSession_AnalyzeFile_Errors(t *testing.T) {
	tests := []struct {
		name      string
		fileName  string
		data      []byte
		extractor error
		message   string
	}{
		{
			name:     "unsupported",
			fileName: "slides.pptx",
			data:     []byte{0x00, 0x01, 0x02},
			message:  "Error: unsupported file format",
		},
		{
			name:     "empty document",
			fileName: "empty.txt",
			data:     []byte("   "),
			message:  "Error: ",
		},
		{
			name:      "quota",
			fileName:  "notes.txt",
			data:      []byte("text"),
			extractor: fmt.Errorf("%w: %w", extract.ErrAllModelsFailed, extract.ErrQuotaExhausted),
			message:   "Please change the API key or try again later",
		},
		{
			name:      "no api key",
			fileName:  "notes.txt",
			data:      []byte("text"),
			extractor: extract.ErrNoAPIKey,
			message:   msgNoAPIKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			e.fake.err = tt.extractor

			err := e.session.AnalyzeFile(context.Background(), tt.fileName, "", tt.data)
			require.Error(t, err)

			snap := e.session.Snapshot()
			assert.Equal(t, models.ScreenWelcome, snap.Screen)
			assert.Contains(t, snap.Error, tt.message)
			assert.False(t, snap.Loading)
		})
	}
}

func TestSession_AnalyzeBusyAndCancelled(t *testing.T) {
	e := newEnv(t)
	e.fake.block = make(chan struct{})
	e.fake.called = make(chan struct{}, 1)

	done := make(chan error, 1)
	go func() {
		done <- e.session.AnalyzeFile(context.Background(), "notes.txt", "", []byte("text"))
	}()
	<-e.fake.called

	snap := e.session.Snapshot()
	assert.Equal(t, models.ScreenUpload, snap.Screen)
	assert.True(t, snap.Loading)
	assert.Equal(t, msgAnalyzingFile, snap.LoadingMessage)

	assert.ErrorIs(t, e.session.AnalyzeText(context.Background(), "more"), ErrBusy)

	e.session.Reset()
	close(e.fake.block)

	assert.ErrorIs(t, <-done, ErrAnalysisCancelled)
	snap = e.session.Snapshot()
	assert.Equal(t, models.ScreenWelcome, snap.Screen)
	assert.Nil(t, snap.Data)
}

func TestSession_CharacterGameToResult(t *testing.T) {
	e := newEnv(t)
	s := e.loaded(t)

	require.NoError(t, s.OpenMenu())
	snap := s.Snapshot()
	assert.Equal(t, models.ScreenMenu, snap.Screen)
	require.Len(t, snap.Games, 5)
	assert.Equal(t, GameInfo{Type: models.GamePuzzle}, snap.Games[4])
	assert.Equal(t, GameInfo{Type: models.GameCharacter, Items: 1, Available: true}, snap.Games[3])

	require.NoError(t, s.StartGame(models.GameCharacter))
	snap = s.Snapshot()
	assert.Equal(t, models.ScreenPlaying, snap.Screen)
	assert.Equal(t, models.GameCharacter, snap.GameType)
	require.IsType(t, games.CharacterSnapshot{}, snap.Game)

	require.NoError(t, s.Act(games.Action{Kind: games.ActionGuess, Text: "napoleon"}))
	require.NoError(t, s.Act(games.Action{Kind: games.ActionNext}))

	snap = s.Snapshot()
	assert.Equal(t, models.ScreenResult, snap.Screen)
	assert.Nil(t, snap.Game)
	require.NotNil(t, snap.Result)
	assert.Equal(t, 40, snap.Result.Score)
	assert.Equal(t, 40, snap.Result.MaxScore)
	assert.Equal(t, *e.now, snap.Result.Timestamp)
	assert.True(t, snap.Result.Celebrate)

	assert.ErrorIs(t, s.Act(games.Action{Kind: games.ActionNext}), ErrNoGame)

	require.NoError(t, s.Replay())
	snap = s.Snapshot()
	assert.Equal(t, models.ScreenPlaying, snap.Screen)
	assert.Nil(t, snap.Result)
}

func TestSession_QuizTimeoutFinishesViaScheduler(t *testing.T) {
	e := newEnv(t)
	s := e.loaded(t)
	require.NoError(t, s.OpenMenu())
	require.NoError(t, s.StartGame(models.GameQuiz))

	e.sched.Advance(time.Minute)

	snap := s.Snapshot()
	assert.Equal(t, models.ScreenResult, snap.Screen)
	require.NotNil(t, snap.Result)
	assert.Equal(t, 0, snap.Result.Score)
	assert.Equal(t, 15, snap.Result.MaxScore)
	assert.False(t, snap.Result.Celebrate)
	assert.Zero(t, e.sched.Pending())
}

func TestSession_LeaveGameStopsTimers(t *testing.T) {
	e := newEnv(t)
	s := e.loaded(t)
	require.NoError(t, s.OpenMenu())
	require.NoError(t, s.StartGame(models.GameMatching))
	assert.NotZero(t, e.sched.Pending())

	require.NoError(t, s.LeaveGame())
	assert.Zero(t, e.sched.Pending())
	assert.Equal(t, models.ScreenMenu, s.Snapshot().Screen)

	e.sched.Advance(time.Hour)
	assert.Nil(t, s.Snapshot().Result)

	assert.ErrorIs(t, s.LeaveGame(), ErrNoGame)
}

func TestSession_StartGameReplacesActiveGame(t *testing.T) {
	e := newEnv(t)
	s := e.loaded(t)
	require.NoError(t, s.OpenMenu())

	require.NoError(t, s.StartGame(models.GameMatching))
	require.NoError(t, s.StartGame(models.GameQuiz))
	assert.Equal(t, 1, e.sched.Pending())
	assert.Equal(t, models.GameQuiz, s.Snapshot().GameType)
}

func TestSession_ScreenGuards(t *testing.T) {
	e := newEnv(t)
	s := e.session

	assert.ErrorIs(t, s.OpenMenu(), ErrWrongScreen)
	assert.ErrorIs(t, s.BackToEditor(), ErrWrongScreen)
	assert.ErrorIs(t, s.StartGame(models.GameQuiz), ErrWrongScreen)
	assert.ErrorIs(t, s.Act(games.Action{Kind: games.ActionNext}), ErrNoGame)
	assert.ErrorIs(t, s.Replay(), ErrWrongScreen)
	assert.ErrorIs(t, s.SetPuzzleImage("https://example.com/map.jpg"), ErrWrongScreen)

	e.loaded(t)
	require.NoError(t, s.OpenMenu())
	assert.ErrorIs(t, s.StartGame("CHESS"), ErrUnknownGame)
	assert.ErrorIs(t, s.StartGame(models.GamePuzzle), games.ErrNoPuzzleImage)
	assert.Equal(t, models.ScreenMenu, s.Snapshot().Screen)

	require.NoError(t, s.StartGame(models.GameTimeline))
	assert.ErrorIs(t, s.SetConfig(models.DefaultGameConfig()), ErrWrongScreen)
	assert.ErrorIs(t, s.AnalyzeText(context.Background(), "text"), ErrWrongScreen)
	assert.ErrorIs(t, s.LoadSaved(context.Background(), "game_1"), ErrWrongScreen)
	assert.ErrorIs(t, s.OpenMenu(), ErrWrongScreen)

	require.NoError(t, s.LeaveGame())
	require.NoError(t, s.BackToEditor())
	assert.Equal(t, models.ScreenEditor, s.Snapshot().Screen)
}

func TestSession_SetConfig(t *testing.T) {
	e := newEnv(t)

	cfg := models.GameConfig{Difficulty: models.DifficultyEasy, SoundEnabled: false, TimeLimit: 60}
	require.NoError(t, e.session.SetConfig(cfg))
	assert.Equal(t, cfg, e.session.Snapshot().Config)

	err := e.session.SetConfig(models.GameConfig{Difficulty: "insane", TimeLimit: 60})
	assert.ErrorIs(t, err, models.ErrInvalidConfig)
	assert.Equal(t, cfg, e.session.Snapshot().Config)
}

func TestSession_SetPuzzleImage(t *testing.T) {
	e := newEnv(t)
	s := e.loaded(t)

	for _, bad := range []string{"", "ftp://example.com/a.png", "not a url", "data:text/plain;base64,AAAA", "https://"} {
		assert.ErrorIs(t, s.SetPuzzleImage(bad), ErrInvalidImage, bad)
	}

	require.NoError(t, s.SetPuzzleImage("data:image/png;base64,iVBORw0KGgo="))
	require.NoError(t, s.SetPuzzleImage(" https://example.com/map.jpg "))

	snap := s.Snapshot()
	assert.Equal(t, "https://example.com/map.jpg", snap.Data.PuzzleImageURL)
	assert.True(t, snap.Games[4].Available)

	require.NoError(t, s.OpenMenu())
	require.NoError(t, s.StartGame(models.GamePuzzle))
	assert.IsType(t, games.PuzzleSnapshot{}, s.Snapshot().Game)
}

func TestSession_LoadSaved(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	data := sampleData()
	data.Title = "Сохранённый"
	saved := e.history.Save(ctx, data)

	require.NoError(t, e.session.LoadSaved(ctx, saved.ID))
	snap := e.session.Snapshot()
	assert.Equal(t, models.ScreenEditor, snap.Screen)
	assert.Equal(t, "Сохранённый", snap.Data.Title)
	assert.Equal(t, saved.ID, snap.SavedID)

	assert.ErrorIs(t, e.session.LoadSaved(ctx, "game_missing"), ErrSavedGameNotFound)
}

func TestSession_SnapshotIsCopy(t *testing.T) {
	e := newEnv(t)
	s := e.loaded(t)

	snap := s.Snapshot()
	snap.Data.Events[0].Name = "Changed"

	assert.Equal(t, "Бородинское сражение", s.Snapshot().Data.Events[0].Name)
}

func TestSession_ResetKeepsCredentials(t *testing.T) {
	e := newEnv(t)
	e.session.SetCredentials("key", "")
	s := e.loaded(t)
	require.NoError(t, s.OpenMenu())
	require.NoError(t, s.StartGame(models.GameQuiz))

	s.Reset()

	snap := s.Snapshot()
	assert.Equal(t, models.ScreenWelcome, snap.Screen)
	assert.Nil(t, snap.Data)
	assert.Empty(t, snap.GameType)
	assert.True(t, snap.HasAPIKey)
	assert.Zero(t, e.sched.Pending())
}
