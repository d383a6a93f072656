package models

import (
	"errors"
	"fmt"
	"time"
)

// Файл с моделями контента, которые производит извлечение и потребляют игры.
// Игры получают срезы только для чтения и никогда не изменяют ParsedData.

// HistoricalEvent — историческое событие с годом.
type HistoricalEvent struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Year        int    `json:"year"`
	Description string `json:"description"`
}

// QuizQuestion — вопрос с вариантами ответа.
type QuizQuestion struct {
	ID                 string   `json:"id"`
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex"`
}

// CharacterInfo — историческая личность с подсказками.
// Подсказки упорядочены от самой сложной к самой простой.
type CharacterInfo struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Hints       []string `json:"hints"`
	Description string   `json:"description"`
}

// ParsedData — корневой объект контента одной сессии.
type ParsedData struct {
	Title          string            `json:"title"`
	Events         []HistoricalEvent `json:"events"`
	Questions      []QuizQuestion    `json:"questions"`
	Characters     []CharacterInfo   `json:"characters"`
	PuzzleImageURL string            `json:"puzzleImageUrl,omitempty"`
}

// Clone возвращает глубокую копию, чтобы снимки истории не делили срезы с сессией.
func (p ParsedData) Clone() ParsedData {
	out := p
	out.Events = append([]HistoricalEvent(nil), p.Events...)
	out.Questions = make([]QuizQuestion, len(p.Questions))
	for i, q := range p.Questions {
		q.Options = append([]string(nil), q.Options...)
		out.Questions[i] = q
	}
	out.Characters = make([]CharacterInfo, len(p.Characters))
	for i, c := range p.Characters {
		c.Hints = append([]string(nil), c.Hints...)
		out.Characters[i] = c
	}
	return out
}

// Difficulty — уровень сложности.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Pick возвращает значение, соответствующее сложности.
func (d Difficulty) Pick(easy, medium, hard int) int {
	switch d {
	case DifficultyEasy:
		return easy
	case DifficultyMedium:
		return medium
	default:
		return hard
	}
}

// ErrInvalidConfig возвращается при некорректной конфигурации игры.
var ErrInvalidConfig = errors.New("invalid game config")

// GameConfig — общие настройки, которые игрок выбирает в меню.
type GameConfig struct {
	Difficulty   Difficulty `json:"difficulty"`
	SoundEnabled bool       `json:"soundEnabled"`
	TimeLimit    int        `json:"timeLimit"`
}

// DefaultGameConfig возвращает настройки по умолчанию.
func DefaultGameConfig() GameConfig {
	return GameConfig{
		Difficulty:   DifficultyMedium,
		SoundEnabled: true,
		TimeLimit:    120,
	}
}

// Validate проверяет конфигурацию.
func (c GameConfig) Validate() error {
	switch c.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return fmt.Errorf("%w, unknown difficulty %q", ErrInvalidConfig, c.Difficulty)
	}

	if c.TimeLimit <= 0 {
		return fmt.Errorf("%w, time limit must be positive", ErrInvalidConfig)
	}

	return nil
}

// GameType — вид мини-игры.
type GameType string

const (
	GameMatching  GameType = "MATCHING"
	GameTimeline  GameType = "TIMELINE"
	GameQuiz      GameType = "QUIZ"
	GamePuzzle    GameType = "PUZZLE"
	GameCharacter GameType = "CHARACTER"
)

// Valid сообщает, известен ли тип игры.
func (t GameType) Valid() bool {
	switch t {
	case GameMatching, GameTimeline, GameQuiz, GamePuzzle, GameCharacter:
		return true
	}
	return false
}

// PlayerScore — итог одной партии.
type PlayerScore struct {
	GameType  GameType  `json:"gameType"`
	Score     int       `json:"score"`
	MaxScore  int       `json:"maxScore"`
	Timestamp time.Time `json:"timestamp"`
}

// Screen — экран сессии.
type Screen string

const (
	ScreenWelcome Screen = "WELCOME"
	ScreenUpload  Screen = "UPLOAD"
	ScreenEditor  Screen = "EDITOR"
	ScreenMenu    Screen = "MENU"
	ScreenPlaying Screen = "PLAYING"
	ScreenResult  Screen = "RESULT"
)

// SavedGame — запись истории.
type SavedGame struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	CreatedAt  time.Time  `json:"createdAt"`
	ParsedData ParsedData `json:"parsedData"`
}
