package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/letsssgooo/historyGames/internal/domain/models"
	"github.com/letsssgooo/historyGames/internal/metrics"
	"github.com/letsssgooo/historyGames/internal/storage"
)

const (
	// StorageKey — единственный ключ, под которым хранится история.
	StorageKey = "game_history"

	// MaxGames — сколько последних игр хранится.
	MaxGames = 20
)

// Store хранит последние загруженные материалы, новые первыми.
// Ошибки хранилища логируются и не возвращаются: история деградирует до пустой.
type Store struct {
	kv      storage.KV
	log     *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option настраивает Store.
type Option func(*Store)

// WithClock подменяет часы.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithMetrics включает учёт размера истории.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

func New(kv storage.KV, log *slog.Logger, opts ...Option) *Store {
	if log == nil {
		log = slog.Default()
	}

	s := &Store{
		kv:  kv,
		log: log.With(slog.String("component", "history")),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List возвращает историю, новые записи первыми.
func (s *Store) List(ctx context.Context) []models.SavedGame {
	raw, err := s.kv.Get(ctx, StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return []models.SavedGame{}
	}
	if err != nil {
		s.log.Error("can not read history", slog.Any("error", err))
		return []models.SavedGame{}
	}

	var games []models.SavedGame
	if err := json.Unmarshal(raw, &games); err != nil {
		s.log.Error("history is corrupt, ignoring it", slog.Any("error", err))
		return []models.SavedGame{}
	}
	if games == nil {
		games = []models.SavedGame{}
	}
	return games
}

// Get возвращает запись по идентификатору.
func (s *Store) Get(ctx context.Context, id string) (models.SavedGame, bool) {
	for _, g := range s.List(ctx) {
		if g.ID == id {
			return g, true
		}
	}
	return models.SavedGame{}, false
}

// Save добавляет материал в начало истории и обрезает её до MaxGames.
// Возвращает созданную запись даже если сохранить её не удалось.
func (s *Store) Save(ctx context.Context, data models.ParsedData) models.SavedGame {
	now := s.now()

	title := strings.TrimSpace(data.Title)
	if title == "" {
		title = "Game " + now.Format("02/01/2006")
	}

	game := models.SavedGame{
		ID:         fmt.Sprintf("game_%d_%s", now.UnixMilli(), uuid.NewString()[:8]),
		Title:      title,
		CreatedAt:  now,
		ParsedData: data.Clone(),
	}

	games := append([]models.SavedGame{game}, s.List(ctx)...)
	if len(games) > MaxGames {
		games = games[:MaxGames]
	}
	s.write(ctx, games)

	return game
}

// Delete удаляет запись. Отсутствующий идентификатор игнорируется.
func (s *Store) Delete(ctx context.Context, id string) {
	games := s.List(ctx)

	kept := games[:0]
	for _, g := range games {
		if g.ID != id {
			kept = append(kept, g)
		}
	}
	if len(kept) == len(games) {
		return
	}

	s.write(ctx, kept)
}

// Clear удаляет всю историю.
func (s *Store) Clear(ctx context.Context) {
	if err := s.kv.Delete(ctx, StorageKey); err != nil {
		s.log.Error("can not clear history", slog.Any("error", err))
		return
	}
	s.metrics.SetHistorySize(0)
}

func (s *Store) write(ctx context.Context, games []models.SavedGame) {
	raw, err := json.Marshal(games)
	if err != nil {
		s.log.Error("can not encode history", slog.Any("error", err))
		return
	}
	if err := s.kv.Set(ctx, StorageKey, raw); err != nil {
		s.log.Error("can not save history", slog.Any("error", err))
		return
	}
	s.metrics.SetHistorySize(len(games))
}

// Entry — краткое описание записи для списка.
type Entry struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	CreatedAt  time.Time `json:"createdAt"`
	Date       string    `json:"date"`
	Events     int       `json:"events"`
	Questions  int       `json:"questions"`
	Characters int       `json:"characters"`
}

// Summarize строит Entry по записи истории.
func Summarize(g models.SavedGame) Entry {
	return Entry{
		ID:         g.ID,
		Title:      g.Title,
		CreatedAt:  g.CreatedAt,
		Date:       FormatDate(g.CreatedAt),
		Events:     len(g.ParsedData.Events),
		Questions:  len(g.ParsedData.Questions),
		Characters: len(g.ParsedData.Characters),
	}
}

// FormatDate форматирует дату записи для списка.
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006 15:04")
}
