package games

import (
	"fmt"

	"github.com/letsssgooo/historyGames/internal/domain/models"
)

const (
	quizBasePoints     = 10
	quizMaxPointsPerQn = 15
)

// QuizSnapshot — состояние игры «Викторина».
type QuizSnapshot struct {
	Index    int      `json:"index"`
	Total    int      `json:"total"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	TimeLeft int      `json:"timeLeft"`
	MaxTime  int      `json:"maxTime"`
	Answered bool     `json:"answered"`
	TimedOut bool     `json:"timedOut"`
	Selected *int     `json:"selected,omitempty"`

	// CorrectAnswerIndex раскрывается только после ответа.
	CorrectAnswerIndex *int  `json:"correctAnswerIndex,omitempty"`
	Score              int   `json:"score"`
	Sound              Sound `json:"sound,omitempty"`
	Finished           bool  `json:"finished"`
}

// Quiz реализует викторину с таймером на каждый вопрос.
type Quiz struct {
	base

	questions []models.QuizQuestion
	maxTime   int

	index    int
	timeLeft int
	selected int
	answered bool
	timedOut bool
	score    int
}

// NewQuiz создаёт викторину и запускает таймер первого вопроса.
func NewQuiz(questions []models.QuizQuestion, opts Options) (*Quiz, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("quiz: %w", ErrNoContent)
	}

	q := &Quiz{
		base:      newBase(models.GameQuiz, opts),
		questions: questions,
		maxTime:   opts.Config.Difficulty.Pick(20, 15, 10),
	}
	q.startQuestion(0)

	return q, nil
}

// TimePerQuestion возвращает время на вопрос в секундах.
func (q *Quiz) TimePerQuestion() int {
	return q.maxTime
}

// Answer фиксирует выбор игрока. Засчитывается только первый ответ на вопрос.
// Возвращает true, если ответ верный.
func (q *Quiz) Answer(option int) (bool, error) {
	if q.finished {
		return false, ErrGameFinished
	}
	if q.answered {
		return false, ErrAlreadyAnswered
	}

	question := q.questions[q.index]
	if option < 0 || option >= len(question.Options) {
		return false, ErrInvalidOption
	}

	q.selected = option
	q.answered = true

	correct := option == question.CorrectAnswerIndex
	if correct {
		q.score += QuizPoints(q.timeLeft)
	}
	q.cue(correct)

	q.after(quizAdvanceDelay, q.advance)

	return correct, nil
}

// QuizPoints возвращает очки за верный ответ при оставшемся времени timeLeft.
func QuizPoints(timeLeft int) int {
	if timeLeft < 0 {
		timeLeft = 0
	}
	return quizBasePoints + (timeLeft+1)/2
}

// Apply применяет действие игрока.
func (q *Quiz) Apply(a Action) error {
	if a.Kind != ActionAnswer {
		return fmt.Errorf("%w %q for quiz", ErrUnknownAction, a.Kind)
	}
	_, err := q.Answer(a.Index)
	return err
}

// MaxScore возвращает нормировочный максимум.
func (q *Quiz) MaxScore() int {
	return len(q.questions) * quizMaxPointsPerQn
}

// Snapshot возвращает состояние игры.
func (q *Quiz) Snapshot() any {
	question := q.questions[q.index]

	snap := QuizSnapshot{
		Index:    q.index,
		Total:    len(q.questions),
		Question: question.Question,
		Options:  append([]string(nil), question.Options...),
		TimeLeft: q.timeLeft,
		MaxTime:  q.maxTime,
		Answered: q.answered,
		TimedOut: q.timedOut,
		Score:    q.score,
		Sound:    q.sound,
		Finished: q.finished,
	}
	if q.answered {
		correct := question.CorrectAnswerIndex
		snap.CorrectAnswerIndex = &correct
		if !q.timedOut {
			selected := q.selected
			snap.Selected = &selected
		}
	}

	return snap
}

func (q *Quiz) startQuestion(i int) {
	q.index = i
	q.timeLeft = q.maxTime
	q.selected = -1
	q.answered = false
	q.timedOut = false
	q.sound = SoundNone

	q.every(tickInterval, q.tick)
}

func (q *Quiz) tick() {
	if q.finished || q.answered {
		return
	}

	q.timeLeft--
	if q.timeLeft > 0 {
		return
	}

	q.timeLeft = 0
	q.answered = true
	q.timedOut = true
	q.cue(false)
	q.after(quizAdvanceDelay, q.advance)
}

func (q *Quiz) advance() {
	if q.index < len(q.questions)-1 {
		q.startQuestion(q.index + 1)
		return
	}
	q.finish(q.score, q.MaxScore())
}
