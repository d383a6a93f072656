package client

import (
	"context"
	"time"

	"github.com/letsssgooo/historyGames/internal/domain/models"
	"github.com/letsssgooo/historyGames/internal/games"
	"github.com/letsssgooo/historyGames/internal/history"
	"github.com/letsssgooo/historyGames/internal/session"
)

// APIError — ответ сервера с кодом ошибки.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client определяет интерфейс клиента сервиса мини-игр.
type Client interface {
	// CreateSession создаёт сессию.
	CreateSession(ctx context.Context) (*session.Snapshot, error)

	// Session возвращает снимок сессии.
	Session(ctx context.Context, id string) (*session.Snapshot, error)

	// SetCredentials задаёт ключ API и модель.
	SetCredentials(ctx context.Context, id, apiKey, model string) (*session.Snapshot, error)

	// AnalyzeText отправляет текст на анализ.
	AnalyzeText(ctx context.Context, id, text string) (*session.Snapshot, error)

	// AnalyzeFile загружает файл на анализ.
	AnalyzeFile(ctx context.Context, id, fileName string, data []byte) (*session.Snapshot, error)

	// StartGame запускает игру.
	StartGame(ctx context.Context, id string, gameType models.GameType) (*session.Snapshot, error)

	// Act отправляет действие игрока.
	Act(ctx context.Context, id string, action games.Action) (*session.Snapshot, error)

	// OpenMenu открывает меню игр.
	OpenMenu(ctx context.Context, id string) (*session.Snapshot, error)

	// History возвращает сохранённые игры.
	History(ctx context.Context) ([]history.Entry, error)
}

// Таймауты
const (
	timeoutSend    = 10 * time.Second
	timeoutAnalyze = 3 * time.Minute
)
