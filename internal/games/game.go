package games

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/letsssgooo/historyGames/internal/domain/models"
	"github.com/letsssgooo/historyGames/internal/scheduler"
)

// Ошибки игр
var (
	ErrNoContent       = errors.New("not enough content for this game")
	ErrNoPuzzleImage   = errors.New("puzzle image is required")
	ErrGameFinished    = errors.New("game is already finished")
	ErrUnknownItem     = errors.New("unknown item")
	ErrUnknownAction   = errors.New("unknown action")
	ErrInvalidSlot     = errors.New("invalid slot index")
	ErrSlotOccupied    = errors.New("slot is already occupied")
	ErrSlotEmpty       = errors.New("slot is empty")
	ErrPoolNotEmpty    = errors.New("all events must be placed before checking")
	ErrAlreadyChecked  = errors.New("timeline is already checked")
	ErrAlreadyAnswered = errors.New("question is already answered")
	ErrInvalidOption   = errors.New("invalid option index")
	ErrAlreadyGuessed  = errors.New("character is already guessed")
	ErrNotGuessedYet   = errors.New("character is not guessed yet")
	ErrNoMoreHints     = errors.New("no more hints available")
	ErrIllegalMove     = errors.New("tile is not adjacent to the empty slot")
)

// Задержки перед переходом и завершением.
const (
	tickInterval       = time.Second
	quizAdvanceDelay   = 2 * time.Second
	timelineFinishWait = 2 * time.Second
	puzzleFinishWait   = 1500 * time.Millisecond
)

// Game определяет общий интерфейс мини-игры.
type Game interface {
	// Type возвращает вид игры.
	Type() models.GameType

	// Apply применяет действие игрока.
	Apply(a Action) error

	// Snapshot возвращает состояние для отображения.
	Snapshot() any

	// Finished сообщает, что итог уже передан в FinishFunc.
	Finished() bool

	// Close останавливает таймеры игры.
	Close()
}

// FinishFunc получает итог партии. Вызывается ровно один раз.
type FinishFunc func(models.PlayerScore)

// ActionKind — тип действия игрока.
type ActionKind string

const (
	ActionSelectLeft  ActionKind = "select_left"
	ActionSelectRight ActionKind = "select_right"
	ActionPlace       ActionKind = "place"
	ActionRemove      ActionKind = "remove"
	ActionCheck       ActionKind = "check"
	ActionAnswer      ActionKind = "answer"
	ActionHint        ActionKind = "hint"
	ActionGuess       ActionKind = "guess"
	ActionNext        ActionKind = "next"
	ActionMove        ActionKind = "move"
)

// Action — действие игрока. Используются только поля, нужные конкретной игре.
type Action struct {
	Kind  ActionKind `json:"kind"`
	ID    string     `json:"id,omitempty"`
	Index int        `json:"index"`
	Text  string     `json:"text,omitempty"`
}

// Sound — звуковой сигнал последнего действия.
type Sound string

const (
	SoundNone    Sound = ""
	SoundCorrect Sound = "correct"
	SoundWrong   Sound = "wrong"
)

// Options — общие зависимости конструктора игры.
type Options struct {
	Config    models.GameConfig
	Scheduler scheduler.Scheduler
	Rand      *rand.Rand
	OnFinish  FinishFunc
	Now       func() time.Time
}

// New создаёт игру нужного вида по контенту.
func New(gameType models.GameType, data models.ParsedData, opts Options) (Game, error) {
	switch gameType {
	case models.GameMatching:
		return NewMatching(data.Events, opts)
	case models.GameTimeline:
		return NewTimeline(data.Events, opts)
	case models.GameQuiz:
		return NewQuiz(data.Questions, opts)
	case models.GameCharacter:
		return NewCharacter(data.Characters, opts)
	case models.GamePuzzle:
		return NewPuzzle(data.PuzzleImageURL, opts)
	default:
		return nil, fmt.Errorf("unknown game type %q", gameType)
	}
}

// base хранит общее состояние: единственную живую задачу планировщика и итог.
type base struct {
	gameType models.GameType
	cfg      models.GameConfig
	sched    scheduler.Scheduler
	rng      *rand.Rand
	onFinish FinishFunc
	now      func() time.Time

	task     scheduler.Task
	finished bool
	sound    Sound
}

func newBase(gameType models.GameType, opts Options) base {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	sched := opts.Scheduler
	if sched == nil {
		sched = scheduler.NewReal(nil)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return base{
		gameType: gameType,
		cfg:      opts.Config,
		sched:    sched,
		rng:      rng,
		onFinish: opts.OnFinish,
		now:      now,
	}
}

func (b *base) Type() models.GameType {
	return b.gameType
}

func (b *base) Finished() bool {
	return b.finished
}

func (b *base) Close() {
	b.stopTask()
}

// every заменяет текущую задачу периодической.
func (b *base) every(d time.Duration, fn func()) {
	b.stopTask()
	b.task = b.sched.Every(d, fn)
}

// after заменяет текущую задачу отложенной.
func (b *base) after(d time.Duration, fn func()) {
	b.stopTask()
	b.task = b.sched.After(d, fn)
}

func (b *base) stopTask() {
	if b.task != nil {
		b.task.Stop()
		b.task = nil
	}
}

func (b *base) finish(score, maxScore int) {
	if b.finished {
		return
	}
	b.finished = true
	b.stopTask()

	if b.onFinish != nil {
		b.onFinish(models.PlayerScore{
			GameType:  b.gameType,
			Score:     score,
			MaxScore:  maxScore,
			Timestamp: b.now(),
		})
	}
}

func (b *base) cue(correct bool) {
	if !b.cfg.SoundEnabled {
		b.sound = SoundNone
		return
	}
	if correct {
		b.sound = SoundCorrect
	} else {
		b.sound = SoundWrong
	}
}

func shuffled[T any](rng *rand.Rand, items []T) []T {
	out := append([]T(nil), items...)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
