package games

import (
	"fmt"
	"sort"

	"github.com/letsssgooo/historyGames/internal/domain/models"
)

const timelinePoints = 10

// TimelineToken — событие, которое ещё не размещено.
type TimelineToken struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TimelineSlot — ячейка шкалы времени.
type TimelineSlot struct {
	Index   int    `json:"index"`
	Year    int    `json:"year"`
	EventID string `json:"eventId,omitempty"`
	Name    string `json:"name,omitempty"`

	// Correct заполняется только после проверки.
	Correct *bool `json:"correct,omitempty"`
}

// TimelineSnapshot — состояние игры «Шкала времени».
type TimelineSnapshot struct {
	Pool     []TimelineToken `json:"pool"`
	Slots    []TimelineSlot  `json:"slots"`
	CanCheck bool            `json:"canCheck"`
	Checked  bool            `json:"checked"`
	Score    int             `json:"score"`
	MaxScore int             `json:"maxScore"`
	Sound    Sound           `json:"sound,omitempty"`
	Finished bool            `json:"finished"`
}

// Timeline реализует игру упорядочивания событий по годам.
type Timeline struct {
	base

	key     []models.HistoricalEvent
	pool    []models.HistoricalEvent
	placed  []*models.HistoricalEvent
	checked bool
	score   int
}

// NewTimeline выбирает случайные 5/7/10 событий и строит ключ ответа.
func NewTimeline(events []models.HistoricalEvent, opts Options) (*Timeline, error) {
	if len(events) == 0 {
		return nil, fmt.Errorf("timeline: %w", ErrNoContent)
	}

	t := &Timeline{base: newBase(models.GameTimeline, opts)}

	count := opts.Config.Difficulty.Pick(5, 7, 10)
	subset := shuffled(t.rng, events)
	subset = subset[:min(count, len(subset))]

	t.key = append([]models.HistoricalEvent(nil), subset...)
	sort.SliceStable(t.key, func(i, j int) bool {
		return t.key[i].Year < t.key[j].Year
	})

	t.pool = shuffled(t.rng, subset)
	t.placed = make([]*models.HistoricalEvent, len(subset))

	return t, nil
}

// Place кладёт событие из пула в пустую ячейку.
func (t *Timeline) Place(eventID string, slot int) error {
	if err := t.editable(slot); err != nil {
		return err
	}
	if t.placed[slot] != nil {
		return ErrSlotOccupied
	}

	idx := -1
	for i, e := range t.pool {
		if e.ID == eventID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownItem, eventID)
	}

	event := t.pool[idx]
	t.placed[slot] = &event
	t.pool = append(t.pool[:idx], t.pool[idx+1:]...)

	return nil
}

// Remove возвращает событие из ячейки в пул.
func (t *Timeline) Remove(slot int) error {
	if err := t.editable(slot); err != nil {
		return err
	}
	if t.placed[slot] == nil {
		return ErrSlotEmpty
	}

	t.pool = append(t.pool, *t.placed[slot])
	t.placed[slot] = nil

	return nil
}

// Check подсчитывает очки и замораживает шкалу.
// Повторная проверка возвращает тот же счёт и ErrAlreadyChecked.
func (t *Timeline) Check() (int, error) {
	if t.checked {
		return t.score, ErrAlreadyChecked
	}
	if len(t.pool) != 0 {
		return 0, ErrPoolNotEmpty
	}

	score := 0
	for i, p := range t.placed {
		if p != nil && p.ID == t.key[i].ID {
			score += timelinePoints
		}
	}

	t.score = score
	t.checked = true
	t.cue(score == t.MaxScore())

	t.after(timelineFinishWait, func() {
		t.finish(t.score, t.MaxScore())
	})

	return score, nil
}

// Apply применяет действие игрока.
func (t *Timeline) Apply(a Action) error {
	switch a.Kind {
	case ActionPlace:
		return t.Place(a.ID, a.Index)
	case ActionRemove:
		return t.Remove(a.Index)
	case ActionCheck:
		_, err := t.Check()
		return err
	default:
		return fmt.Errorf("%w %q for timeline", ErrUnknownAction, a.Kind)
	}
}

// AnswerKey возвращает события в правильном порядке.
func (t *Timeline) AnswerKey() []models.HistoricalEvent {
	return append([]models.HistoricalEvent(nil), t.key...)
}

// MaxScore возвращает максимально возможный счёт.
func (t *Timeline) MaxScore() int {
	return len(t.key) * timelinePoints
}

// Snapshot возвращает состояние игры.
func (t *Timeline) Snapshot() any {
	pool := make([]TimelineToken, len(t.pool))
	for i, e := range t.pool {
		pool[i] = TimelineToken{ID: e.ID, Name: e.Name}
	}

	slots := make([]TimelineSlot, len(t.key))
	for i, expected := range t.key {
		slot := TimelineSlot{Index: i, Year: expected.Year}
		if p := t.placed[i]; p != nil {
			slot.EventID = p.ID
			slot.Name = p.Name
		}
		if t.checked {
			correct := slot.EventID == expected.ID
			slot.Correct = &correct
		}
		slots[i] = slot
	}

	return TimelineSnapshot{
		Pool:     pool,
		Slots:    slots,
		CanCheck: !t.checked && len(t.pool) == 0,
		Checked:  t.checked,
		Score:    t.score,
		MaxScore: t.MaxScore(),
		Sound:    t.sound,
		Finished: t.finished,
	}
}

func (t *Timeline) editable(slot int) error {
	if t.checked {
		return ErrAlreadyChecked
	}
	if slot < 0 || slot >= len(t.placed) {
		return ErrInvalidSlot
	}
	return nil
}
