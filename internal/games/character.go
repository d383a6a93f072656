package games

import (
	"fmt"
	"strings"

	"github.com/letsssgooo/historyGames/internal/domain/models"
)

const (
	characterMaxHints    = 4
	characterMaxPoints   = 40
	characterFallbackPts = 10
)

// characterPoints — награда по числу открытых подсказок.
var characterPoints = []int{40, 30, 20, 10}

// Feedback — результат последней попытки.
type Feedback string

const (
	FeedbackNone      Feedback = "none"
	FeedbackCorrect   Feedback = "correct"
	FeedbackIncorrect Feedback = "incorrect"
)

// CharacterSnapshot — состояние игры «Угадай личность».
type CharacterSnapshot struct {
	Index         int      `json:"index"`
	Total         int      `json:"total"`
	Hints         []string `json:"hints"`
	HintLevel     int      `json:"hintLevel"`
	CanRevealHint bool     `json:"canRevealHint"`
	Points        int      `json:"points"`
	Feedback      Feedback `json:"feedback"`
	Found         bool     `json:"found"`
	Name          string   `json:"name,omitempty"`
	Description   string   `json:"description,omitempty"`
	Score         int      `json:"score"`
	Sound         Sound    `json:"sound,omitempty"`
	Finished      bool     `json:"finished"`
}

// Character реализует игру угадывания личности по подсказкам.
type Character struct {
	base

	characters []models.CharacterInfo

	index     int
	hintLevel int
	found     bool
	feedback  Feedback
	score     int
}

// NewCharacter создаёт игру. Показана только первая, самая сложная подсказка.
func NewCharacter(characters []models.CharacterInfo, opts Options) (*Character, error) {
	if len(characters) == 0 {
		return nil, fmt.Errorf("character: %w", ErrNoContent)
	}

	return &Character{
		base:       newBase(models.GameCharacter, opts),
		characters: characters,
		feedback:   FeedbackNone,
	}, nil
}

// RevealHint открывает следующую подсказку.
func (c *Character) RevealHint() error {
	if c.finished {
		return ErrGameFinished
	}
	if c.found {
		return ErrAlreadyGuessed
	}
	if c.hintLevel >= c.maxHints()-1 {
		return ErrNoMoreHints
	}

	c.hintLevel++
	return nil
}

// Guess проверяет догадку. Верна любая непустая подстрока имени без учёта регистра.
func (c *Character) Guess(text string) (bool, error) {
	if c.finished {
		return false, ErrGameFinished
	}
	if c.found {
		return false, ErrAlreadyGuessed
	}

	if !MatchesName(c.characters[c.index].Name, text) {
		c.feedback = FeedbackIncorrect
		c.cue(false)
		return false, nil
	}

	c.found = true
	c.feedback = FeedbackCorrect
	c.score += CharacterPoints(c.hintLevel)
	c.cue(true)

	return true, nil
}

// Next переходит к следующей личности или завершает игру на последней.
func (c *Character) Next() error {
	if c.finished {
		return ErrGameFinished
	}
	if !c.found {
		return ErrNotGuessedYet
	}

	if c.index >= len(c.characters)-1 {
		c.finish(c.score, c.MaxScore())
		return nil
	}

	c.index++
	c.hintLevel = 0
	c.found = false
	c.feedback = FeedbackNone
	c.sound = SoundNone

	return nil
}

// Apply применяет действие игрока.
func (c *Character) Apply(a Action) error {
	switch a.Kind {
	case ActionHint:
		return c.RevealHint()
	case ActionGuess:
		_, err := c.Guess(a.Text)
		return err
	case ActionNext:
		return c.Next()
	default:
		return fmt.Errorf("%w %q for character", ErrUnknownAction, a.Kind)
	}
}

// MaxScore возвращает максимально возможный счёт.
func (c *Character) MaxScore() int {
	return len(c.characters) * characterMaxPoints
}

// Snapshot возвращает состояние игры.
func (c *Character) Snapshot() any {
	current := c.characters[c.index]

	snap := CharacterSnapshot{
		Index:         c.index,
		Total:         len(c.characters),
		Hints:         append([]string(nil), current.Hints[:min(c.hintLevel+1, len(current.Hints))]...),
		HintLevel:     c.hintLevel,
		CanRevealHint: !c.finished && !c.found && c.hintLevel < c.maxHints()-1,
		Points:        CharacterPoints(c.hintLevel),
		Feedback:      c.feedback,
		Found:         c.found,
		Score:         c.score,
		Sound:         c.sound,
		Finished:      c.finished,
	}
	if c.found {
		snap.Name = current.Name
		snap.Description = current.Description
	}

	return snap
}

func (c *Character) maxHints() int {
	return min(characterMaxHints, len(c.characters[c.index].Hints))
}

// CharacterPoints возвращает награду за верную догадку на уровне подсказки hintLevel.
func CharacterPoints(hintLevel int) int {
	if hintLevel < 0 || hintLevel >= len(characterPoints) {
		return characterFallbackPts
	}
	return characterPoints[hintLevel]
}

// MatchesName сообщает, подходит ли догадка к имени.
func MatchesName(name, guess string) bool {
	g := strings.ToLower(strings.TrimSpace(guess))
	if g == "" {
		return false
	}
	return strings.Contains(strings.ToLower(strings.TrimSpace(name)), g)
}
