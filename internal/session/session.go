package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/letsssgooo/historyGames/internal/docparse"
	"github.com/letsssgooo/historyGames/internal/domain/models"
	"github.com/letsssgooo/historyGames/internal/extract"
	"github.com/letsssgooo/historyGames/internal/games"
	"github.com/letsssgooo/historyGames/internal/metrics"
	"github.com/letsssgooo/historyGames/internal/scheduler"
)

// Ошибки сессии
var (
	ErrNoInput           = errors.New("text is empty")
	ErrWrongScreen       = errors.New("operation is not allowed on the current screen")
	ErrBusy              = errors.New("analysis is already in progress")
	ErrNoData            = errors.New("no content loaded")
	ErrNoGame            = errors.New("no active game")
	ErrUnknownGame       = errors.New("unknown game type")
	ErrInvalidImage      = errors.New("puzzle image must be an http(s) or data:image url")
	ErrSavedGameNotFound = errors.New("saved game not found")
	ErrAnalysisCancelled = errors.New("analysis was cancelled")
)

// celebrateRatio — доля от максимума, выше которой итог празднуется.
const celebrateRatio = 0.7

// Extractor извлекает контент из текста или изображения.
type Extractor interface {
	FromText(ctx context.Context, creds extract.Credentials, text string) (models.ParsedData, error)
	FromImage(ctx context.Context, creds extract.Credentials, base64Data, mimeType string) (models.ParsedData, error)
}

// History сохраняет проанализированные документы.
type History interface {
	Save(ctx context.Context, data models.ParsedData) models.SavedGame
	Get(ctx context.Context, id string) (models.SavedGame, bool)
}

// Deps — общие зависимости всех сессий.
type Deps struct {
	Extractor Extractor
	History   History
	Log       *slog.Logger
	Metrics   *metrics.Metrics

	// NewScheduler создаёт планировщик игр сессии. По умолчанию scheduler.NewReal.
	NewScheduler func(locker sync.Locker) scheduler.Scheduler
	NewRand      func() *rand.Rand
	Now          func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.NewScheduler == nil {
		d.NewScheduler = func(locker sync.Locker) scheduler.Scheduler {
			return scheduler.NewReal(locker)
		}
	}
	if d.NewRand == nil {
		d.NewRand = func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// Session — состояние одного игрока: экран, контент, настройки и активная игра.
// Все изменения происходят под mu, включая колбэки таймеров игр.
type Session struct {
	mu sync.Mutex

	id    string
	deps  Deps
	log   *slog.Logger
	sched scheduler.Scheduler

	screen  models.Screen
	data    *models.ParsedData
	savedID string
	config  models.GameConfig
	creds   extract.Credentials

	game     games.Game
	gameType models.GameType
	gameGen  uint64

	result    *models.PlayerScore
	celebrate bool

	errMsg     string
	loading    bool
	loadingMsg string
	analysis   uint64

	lastSeen time.Time
	closed   bool
}

func newSession(id string, deps Deps) *Session {
	s := &Session{
		id:       id,
		deps:     deps,
		log:      deps.Log.With(slog.String("session", id)),
		screen:   models.ScreenWelcome,
		config:   models.DefaultGameConfig(),
		lastSeen: deps.Now(),
	}
	s.sched = deps.NewScheduler(&s.mu)
	return s
}

// ID возвращает идентификатор сессии.
func (s *Session) ID() string {
	return s.id
}

// AnalyzeText извлекает контент из введённого текста.
// При ошибке экран не меняется, сообщение показывается на нём же.
func (s *Session) AnalyzeText(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		s.mu.Lock()
		s.errMsg = msgNoInput
		s.mu.Unlock()
		return ErrNoInput
	}

	token, creds, prev, err := s.beginAnalysis(msgAnalyzingText, false)
	if err != nil {
		return err
	}

	data, err := s.deps.Extractor.FromText(ctx, creds, text)
	if err != nil {
		return s.failAnalysis(token, err, prev, msgTextError)
	}
	return s.commitAnalysis(ctx, token, data)
}

// AnalyzeFile разбирает загруженный файл и извлекает из него контент.
// Пока идёт анализ, экран UPLOAD. При ошибке сессия возвращается на WELCOME.
func (s *Session) AnalyzeFile(ctx context.Context, fileName, mimeType string, raw []byte) error {
	token, creds, _, err := s.beginAnalysis(msgAnalyzingFile, true)
	if err != nil {
		return err
	}

	file, err := docparse.Parse(fileName, mimeType, raw)
	if err != nil {
		return s.failAnalysis(token, err, models.ScreenWelcome, msgFileError)
	}

	var data models.ParsedData
	if file.Type == docparse.TypeImage {
		s.setLoadingMessage(token, msgAnalyzingImage)
		data, err = s.deps.Extractor.FromImage(ctx, creds, file.ImageBase64, file.ImageMimeType)
	} else {
		data, err = s.deps.Extractor.FromText(ctx, creds, file.Text)
	}
	if err != nil {
		return s.failAnalysis(token, err, models.ScreenWelcome, msgFileError)
	}

	return s.commitAnalysis(ctx, token, data)
}

// beginAnalysis помечает сессию занятой и возвращает токен анализа.
// Сетевой вызов выполняется без блокировки, токен отсекает устаревшие результаты.
func (s *Session) beginAnalysis(msg string, upload bool) (uint64, extract.Credentials, models.Screen, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()
	if s.loading {
		return 0, extract.Credentials{}, "", ErrBusy
	}
	if s.screen == models.ScreenPlaying {
		return 0, extract.Credentials{}, "", ErrWrongScreen
	}

	prev := s.screen
	s.analysis++
	s.loading = true
	s.loadingMsg = msg
	s.errMsg = ""
	if upload {
		s.screen = models.ScreenUpload
	}

	return s.analysis, s.creds, prev, nil
}

func (s *Session) setLoadingMessage(token uint64, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token == s.analysis && s.loading {
		s.loadingMsg = msg
	}
}

func (s *Session) failAnalysis(token uint64, err error, screen models.Screen, generic string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.analysis || !s.loading {
		return ErrAnalysisCancelled
	}

	s.loading = false
	s.loadingMsg = ""
	s.screen = screen
	s.errMsg = displayError(err, generic)
	s.log.Warn("analysis failed", slog.String("error", err.Error()))

	return err
}

func (s *Session) commitAnalysis(ctx context.Context, token uint64, data models.ParsedData) error {
	s.mu.Lock()
	cancelled := token != s.analysis || !s.loading
	s.mu.Unlock()
	if cancelled {
		return ErrAnalysisCancelled
	}

	saved := s.deps.History.Save(ctx, data)

	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.analysis || !s.loading {
		return ErrAnalysisCancelled
	}

	s.loading = false
	s.loadingMsg = ""
	s.setData(saved.ParsedData, saved.ID)
	s.log.Info("content extracted",
		slog.String("title", data.Title),
		slog.Int("events", len(data.Events)),
		slog.Int("questions", len(data.Questions)),
		slog.Int("characters", len(data.Characters)),
	)

	return nil
}

// setData заменяет контент и открывает редактор. Вызывается под mu.
func (s *Session) setData(data models.ParsedData, savedID string) {
	s.closeGame()
	clone := data.Clone()
	s.data = &clone
	s.savedID = savedID
	s.result = nil
	s.celebrate = false
	s.gameType = ""
	s.errMsg = ""
	s.screen = models.ScreenEditor
}

// LoadSaved загружает сохранённый документ в сессию.
func (s *Session) LoadSaved(ctx context.Context, id string) error {
	s.mu.Lock()
	s.touch()
	if err := s.idleCheck(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	saved, ok := s.deps.History.Get(ctx, id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSavedGameNotFound, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.idleCheck(); err != nil {
		return err
	}
	s.setData(saved.ParsedData, saved.ID)

	return nil
}

// idleCheck запрещает операцию во время игры или анализа. Вызывается под mu.
func (s *Session) idleCheck() error {
	if s.loading {
		return ErrBusy
	}
	if s.screen == models.ScreenPlaying {
		return ErrWrongScreen
	}
	return nil
}

// SetPuzzleImage задаёт картинку для пазла.
func (s *Session) SetPuzzleImage(imageURL string) error {
	imageURL = strings.TrimSpace(imageURL)
	if !validImageURL(imageURL) {
		return ErrInvalidImage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()
	if s.screen != models.ScreenEditor && s.screen != models.ScreenMenu {
		return ErrWrongScreen
	}
	if s.data == nil {
		return ErrNoData
	}

	s.data.PuzzleImageURL = imageURL
	return nil
}

func validImageURL(raw string) bool {
	if strings.HasPrefix(raw, "data:image/") {
		return true
	}

	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// SetConfig меняет настройки игр. Во время игры запрещено.
func (s *Session) SetConfig(cfg models.GameConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()
	if s.screen == models.ScreenPlaying {
		return ErrWrongScreen
	}

	s.config = cfg
	return nil
}

// SetCredentials задаёт ключ API и предпочитаемую модель сессии.
func (s *Session) SetCredentials(apiKey, model string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()
	s.creds = extract.Credentials{
		APIKey: strings.TrimSpace(apiKey),
		Model:  strings.TrimSpace(model),
	}
	if s.errMsg == msgNoAPIKey {
		s.errMsg = ""
	}
}

// OpenMenu открывает меню игр из редактора или экрана итогов.
func (s *Session) OpenMenu() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()
	switch s.screen {
	case models.ScreenEditor, models.ScreenResult, models.ScreenMenu:
	default:
		return ErrWrongScreen
	}
	if s.data == nil {
		return ErrNoData
	}

	s.screen = models.ScreenMenu
	return nil
}

// BackToEditor возвращает из меню в редактор.
func (s *Session) BackToEditor() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()
	switch s.screen {
	case models.ScreenMenu, models.ScreenResult, models.ScreenEditor:
	default:
		return ErrWrongScreen
	}
	if s.data == nil {
		return ErrNoData
	}

	s.screen = models.ScreenEditor
	return nil
}

// StartGame запускает игру. Предыдущая активная игра останавливается.
func (s *Session) StartGame(gameType models.GameType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()
	switch s.screen {
	case models.ScreenMenu, models.ScreenResult, models.ScreenPlaying:
	default:
		return ErrWrongScreen
	}

	return s.startGame(gameType)
}

// startGame вызывается под mu.
func (s *Session) startGame(gameType models.GameType) error {
	if !gameType.Valid() {
		return fmt.Errorf("%w %q", ErrUnknownGame, gameType)
	}
	if s.data == nil {
		return ErrNoData
	}

	s.closeGame()
	s.gameGen++
	gen := s.gameGen

	game, err := games.New(gameType, *s.data, games.Options{
		Config:    s.config,
		Scheduler: s.sched,
		Rand:      s.deps.NewRand(),
		OnFinish: func(score models.PlayerScore) {
			s.handleFinish(gen, score)
		},
		Now: s.deps.Now,
	})
	if err != nil {
		return err
	}

	s.game = game
	s.gameType = gameType
	s.result = nil
	s.celebrate = false
	s.screen = models.ScreenPlaying
	s.deps.Metrics.GameStarted(gameType)
	s.log.Info("game started", slog.String("type", string(gameType)))

	return nil
}

// handleFinish вызывается игрой под mu: из Act или из таймера.
func (s *Session) handleFinish(gen uint64, score models.PlayerScore) {
	if gen != s.gameGen || s.closed {
		return
	}

	s.result = &score
	s.celebrate = float64(score.Score) > float64(score.MaxScore)*celebrateRatio
	s.game = nil
	s.screen = models.ScreenResult
	s.deps.Metrics.GameFinished(score.GameType)
	s.log.Info("game finished",
		slog.String("type", string(score.GameType)),
		slog.Int("score", score.Score),
		slog.Int("max", score.MaxScore),
	)
}

// Act передаёт действие активной игре.
func (s *Session) Act(a games.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()
	if s.screen != models.ScreenPlaying || s.game == nil {
		return ErrNoGame
	}

	return s.game.Apply(a)
}

// LeaveGame останавливает игру и возвращает в меню.
func (s *Session) LeaveGame() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()
	if s.screen != models.ScreenPlaying {
		return ErrNoGame
	}

	s.closeGame()
	s.screen = models.ScreenMenu
	return nil
}

// Replay перезапускает последнюю игру.
func (s *Session) Replay() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()
	if s.screen != models.ScreenResult && s.screen != models.ScreenPlaying {
		return ErrWrongScreen
	}
	if s.gameType == "" {
		return ErrNoGame
	}

	return s.startGame(s.gameType)
}

// Reset возвращает сессию на стартовый экран и забывает контент.
// Ключ API и настройки сохраняются.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()
	s.closeGame()
	s.analysis++
	s.loading = false
	s.loadingMsg = ""
	s.data = nil
	s.savedID = ""
	s.gameType = ""
	s.result = nil
	s.celebrate = false
	s.errMsg = ""
	s.screen = models.ScreenWelcome
}

// closeGame вызывается под mu.
func (s *Session) closeGame() {
	if s.game == nil {
		return
	}
	s.game.Close()
	s.game = nil
	s.gameGen++
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closeGame()
	s.analysis++
	s.loading = false
	s.closed = true
}

func (s *Session) touch() {
	s.lastSeen = s.deps.Now()
}

// idleSince сообщает, что сессия простаивает дольше ttl.
func (s *Session) idleSince(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return !s.loading && now.Sub(s.lastSeen) > ttl
}
