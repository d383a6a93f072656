package games

import (
	"fmt"

	"github.com/letsssgooo/historyGames/internal/domain/models"
)

const (
	matchPoints       = 10
	mismatchPenalty   = 2
	matchSnippetRunes = 30
)

// MatchCard — карточка одной из колонок.
type MatchCard struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Matched bool   `json:"matched"`
}

// MatchingSnapshot — состояние игры «Сопоставление».
type MatchingSnapshot struct {
	Left         []MatchCard `json:"left"`
	Right        []MatchCard `json:"right"`
	SelectedLeft string      `json:"selectedLeft,omitempty"`
	Matched      int         `json:"matched"`
	Total        int         `json:"total"`
	Score        int         `json:"score"`
	TimeLeft     int         `json:"timeLeft"`
	Sound        Sound       `json:"sound,omitempty"`
	Finished     bool        `json:"finished"`
}

// Matching реализует игру сопоставления события и описания.
type Matching struct {
	base

	left     []MatchCard
	right    []MatchCard
	matched  map[string]struct{}
	selected string
	score    int
	timeLeft int
}

// NewMatching создаёт игру по первым 5/8/10 событиям и запускает таймер.
func NewMatching(events []models.HistoricalEvent, opts Options) (*Matching, error) {
	count := opts.Config.Difficulty.Pick(5, 8, 10)
	items := events[:min(count, len(events))]
	if len(items) == 0 {
		return nil, fmt.Errorf("matching: %w", ErrNoContent)
	}

	m := &Matching{
		base:     newBase(models.GameMatching, opts),
		matched:  make(map[string]struct{}, len(items)),
		timeLeft: opts.Config.TimeLimit,
	}

	left := make([]MatchCard, 0, len(items))
	right := make([]MatchCard, 0, len(items))
	for _, e := range items {
		left = append(left, MatchCard{ID: e.ID, Text: e.Name})
		right = append(right, MatchCard{
			ID:   e.ID,
			Text: fmt.Sprintf("%d - %s...", e.Year, truncateRunes(e.Description, matchSnippetRunes)),
		})
	}
	m.left = shuffled(m.rng, left)
	m.right = shuffled(m.rng, right)

	m.every(tickInterval, m.tick)

	return m, nil
}

// SelectLeft выбирает событие в левой колонке.
// Выбор уже сопоставленного события игнорируется.
func (m *Matching) SelectLeft(id string) error {
	if m.finished {
		return ErrGameFinished
	}
	if !m.has(id) {
		return fmt.Errorf("%w: %s", ErrUnknownItem, id)
	}
	if _, ok := m.matched[id]; ok {
		return nil
	}

	m.selected = id
	return nil
}

// SelectRight выбирает описание в правой колонке и проверяет пару.
// Возвращает true, если пара совпала. Без выбранного слева события ничего не происходит.
func (m *Matching) SelectRight(id string) (bool, error) {
	if m.finished {
		return false, ErrGameFinished
	}
	if !m.has(id) {
		return false, fmt.Errorf("%w: %s", ErrUnknownItem, id)
	}
	if _, ok := m.matched[id]; ok || m.selected == "" {
		return false, nil
	}

	if m.selected != id {
		m.score = max(0, m.score-mismatchPenalty)
		m.selected = ""
		m.cue(false)
		return false, nil
	}

	m.matched[id] = struct{}{}
	m.score += matchPoints
	m.selected = ""
	m.cue(true)

	if len(m.matched) == len(m.left) {
		m.finish(m.score, m.MaxScore())
	}

	return true, nil
}

// Apply применяет действие игрока.
func (m *Matching) Apply(a Action) error {
	switch a.Kind {
	case ActionSelectLeft:
		return m.SelectLeft(a.ID)
	case ActionSelectRight:
		_, err := m.SelectRight(a.ID)
		return err
	default:
		return fmt.Errorf("%w %q for matching", ErrUnknownAction, a.Kind)
	}
}

// MaxScore возвращает максимально возможный счёт.
func (m *Matching) MaxScore() int {
	return len(m.left) * matchPoints
}

// Score возвращает текущий счёт.
func (m *Matching) Score() int {
	return m.score
}

// Snapshot возвращает состояние игры.
func (m *Matching) Snapshot() any {
	return MatchingSnapshot{
		Left:         m.cards(m.left),
		Right:        m.cards(m.right),
		SelectedLeft: m.selected,
		Matched:      len(m.matched),
		Total:        len(m.left),
		Score:        m.score,
		TimeLeft:     m.timeLeft,
		Sound:        m.sound,
		Finished:     m.finished,
	}
}

func (m *Matching) tick() {
	if m.finished {
		return
	}

	m.timeLeft--
	if m.timeLeft <= 0 {
		m.timeLeft = 0
		m.finish(m.score, m.MaxScore())
	}
}

func (m *Matching) has(id string) bool {
	for _, c := range m.left {
		if c.ID == id {
			return true
		}
	}
	return false
}

func (m *Matching) cards(src []MatchCard) []MatchCard {
	out := make([]MatchCard, len(src))
	for i, c := range src {
		_, c.Matched = m.matched[c.ID]
		out[i] = c
	}
	return out
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
