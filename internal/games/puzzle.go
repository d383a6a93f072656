package games

import (
	"fmt"

	"github.com/letsssgooo/historyGames/internal/domain/models"
)

const (
	puzzleSide     = 3
	puzzleTiles    = puzzleSide * puzzleSide
	puzzleBlank    = puzzleTiles - 1
	puzzleShuffles = 100
	puzzleMaxScore = 100
)

// PuzzleSnapshot — состояние игры «Пазл».
type PuzzleSnapshot struct {
	ImageURL string `json:"imageUrl"`

	// Board[i] содержит номер плитки в позиции i, 8 означает пустую клетку.
	Board    []int `json:"board"`
	Moves    int   `json:"moves"`
	Solved   bool  `json:"solved"`
	Finished bool  `json:"finished"`
}

// Puzzle реализует пятнашки 3×3 по картинке.
type Puzzle struct {
	base

	imageURL string
	board    [puzzleTiles]int
	moves    int
	solved   bool
}

// NewPuzzle создаёт перемешанную доску. Перемешивание делается только
// допустимыми ходами, поэтому доска всегда решаема.
func NewPuzzle(imageURL string, opts Options) (*Puzzle, error) {
	if imageURL == "" {
		return nil, fmt.Errorf("puzzle: %w", ErrNoPuzzleImage)
	}

	p := &Puzzle{
		base:     newBase(models.GamePuzzle, opts),
		imageURL: imageURL,
	}
	for i := range p.board {
		p.board[i] = i
	}

	// Перемешанная доска может совпасть с собранной. Победа проверяется
	// только после хода, так что такая партия требует минимум двух ходов.
	blank := puzzleBlank
	for range puzzleShuffles {
		neighbours := adjacent(blank)
		next := neighbours[p.rng.Intn(len(neighbours))]
		p.board[blank], p.board[next] = p.board[next], p.board[blank]
		blank = next
	}

	return p, nil
}

// Move двигает плитку в позиции index на пустое место.
func (p *Puzzle) Move(index int) error {
	if p.finished || p.solved {
		return ErrGameFinished
	}
	if index < 0 || index >= puzzleTiles {
		return ErrInvalidSlot
	}

	blank := p.blankIndex()
	if !isAdjacent(index, blank) {
		return ErrIllegalMove
	}

	p.board[blank], p.board[index] = p.board[index], p.board[blank]
	p.moves++

	if p.isSolved() {
		p.solved = true
		p.after(puzzleFinishWait, func() {
			p.finish(PuzzleScore(p.moves), puzzleMaxScore)
		})
	}

	return nil
}

// PuzzleScore возвращает итог по числу ходов.
func PuzzleScore(moves int) int {
	return max(0, puzzleMaxScore-moves)
}

// Apply применяет действие игрока.
func (p *Puzzle) Apply(a Action) error {
	if a.Kind != ActionMove {
		return fmt.Errorf("%w %q for puzzle", ErrUnknownAction, a.Kind)
	}
	return p.Move(a.Index)
}

// Board возвращает копию доски.
func (p *Puzzle) Board() []int {
	return append([]int(nil), p.board[:]...)
}

// Snapshot возвращает состояние игры.
func (p *Puzzle) Snapshot() any {
	return PuzzleSnapshot{
		ImageURL: p.imageURL,
		Board:    p.Board(),
		Moves:    p.moves,
		Solved:   p.solved,
		Finished: p.finished,
	}
}

func (p *Puzzle) blankIndex() int {
	for i, v := range p.board {
		if v == puzzleBlank {
			return i
		}
	}
	return -1
}

func (p *Puzzle) isSolved() bool {
	for i, v := range p.board {
		if v != i {
			return false
		}
	}
	return true
}

func adjacent(i int) []int {
	row, col := i/puzzleSide, i%puzzleSide
	out := make([]int, 0, 4)
	if row > 0 {
		out = append(out, i-puzzleSide)
	}
	if row < puzzleSide-1 {
		out = append(out, i+puzzleSide)
	}
	if col > 0 {
		out = append(out, i-1)
	}
	if col < puzzleSide-1 {
		out = append(out, i+1)
	}
	return out
}

func isAdjacent(a, b int) bool {
	for _, n := range adjacent(b) {
		if n == a {
			return true
		}
	}
	return false
}
