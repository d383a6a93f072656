package session

import (
	"github.com/letsssgooo/historyGames/internal/domain/models"
)

// Snapshot — представление сессии для клиента.
type Snapshot struct {
	ID             string             `json:"id"`
	Screen         models.Screen      `json:"screen"`
	Loading        bool               `json:"loading"`
	LoadingMessage string             `json:"loadingMessage,omitempty"`
	Error          string             `json:"error,omitempty"`
	HasAPIKey      bool               `json:"hasApiKey"`
	Model          string             `json:"model,omitempty"`
	Config         models.GameConfig  `json:"config"`
	Data           *models.ParsedData `json:"data,omitempty"`
	SavedID        string             `json:"savedId,omitempty"`
	Games          []GameInfo         `json:"games,omitempty"`
	GameType       models.GameType    `json:"gameType,omitempty"`
	Game           any                `json:"game,omitempty"`
	Result         *Result            `json:"result,omitempty"`
}

// GameInfo описывает пункт меню игр.
type GameInfo struct {
	Type      models.GameType `json:"type"`
	Items     int             `json:"items"`
	Available bool            `json:"available"`
}

// Result — итог последней партии.
type Result struct {
	models.PlayerScore
	Celebrate bool `json:"celebrate"`
}

// Snapshot возвращает копию состояния сессии.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()
	snap := Snapshot{
		ID:             s.id,
		Screen:         s.screen,
		Loading:        s.loading,
		LoadingMessage: s.loadingMsg,
		Error:          s.errMsg,
		HasAPIKey:      s.creds.APIKey != "",
		Model:          s.creds.Model,
		Config:         s.config,
		SavedID:        s.savedID,
		GameType:       s.gameType,
	}

	if s.data != nil {
		data := s.data.Clone()
		snap.Data = &data
		snap.Games = menu(data)
	}
	if s.game != nil {
		snap.Game = s.game.Snapshot()
	}
	if s.result != nil {
		snap.Result = &Result{PlayerScore: *s.result, Celebrate: s.celebrate}
	}

	return snap
}

func menu(data models.ParsedData) []GameInfo {
	puzzle := 0
	if data.PuzzleImageURL != "" {
		puzzle = 1
	}

	items := []GameInfo{
		{Type: models.GameMatching, Items: len(data.Events)},
		{Type: models.GameTimeline, Items: len(data.Events)},
		{Type: models.GameQuiz, Items: len(data.Questions)},
		{Type: models.GameCharacter, Items: len(data.Characters)},
		{Type: models.GamePuzzle, Items: puzzle},
	}
	for i := range items {
		items[i].Available = items[i].Items > 0
	}
	return items
}
