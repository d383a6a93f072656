package games

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letsssgooo/historyGames/internal/domain/models"
)

// solvable проверяет чётность инверсий для доски 3×3.
func solvable(board []int) bool {
	inversions := 0
	for i := range board {
		for j := i + 1; j < len(board); j++ {
			if board[i] != puzzleBlank && board[j] != puzzleBlank && board[i] > board[j] {
				inversions++
			}
		}
	}
	return inversions%2 == 0
}

func TestPuzzle_ShuffleIsAlwaysSolvable(t *testing.T) {
	for seed := int64(0); seed < 200; seed++ {
		opts, _, _ := testOptions(t, models.DifficultyEasy)
		opts.Rand = rand.New(rand.NewSource(seed))

		p, err := NewPuzzle("data:image/png;base64,AAAA", opts)
		require.NoError(t, err)

		board := p.Board()
		require.Len(t, board, 9)
		require.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8}, board)
		require.True(t, solvable(board), "seed %d board %v", seed, board)
	}
}

func TestPuzzle_RequiresImage(t *testing.T) {
	opts, _, _ := testOptions(t, models.DifficultyEasy)

	_, err := NewPuzzle("", opts)
	assert.ErrorIs(t, err, ErrNoPuzzleImage)
}

func TestPuzzle_IllegalMove(t *testing.T) {
	opts, _, _ := testOptions(t, models.DifficultyEasy)

	p, err := NewPuzzle("img", opts)
	require.NoError(t, err)

	blank := p.blankIndex()
	far := -1
	for i := range puzzleTiles {
		if i != blank && !isAdjacent(i, blank) {
			far = i
			break
		}
	}
	require.NotEqual(t, -1, far)

	before := p.Board()
	assert.ErrorIs(t, p.Move(far), ErrIllegalMove)
	assert.ErrorIs(t, p.Move(blank), ErrIllegalMove)
	assert.ErrorIs(t, p.Move(9), ErrInvalidSlot)
	assert.Equal(t, before, p.Board())
	assert.Equal(t, 0, p.Snapshot().(PuzzleSnapshot).Moves)
}

func TestPuzzle_SolveFromOneMoveAway(t *testing.T) {
	opts, sched, rec := testOptions(t, models.DifficultyEasy)

	p, err := NewPuzzle("img", opts)
	require.NoError(t, err)

	// Доска в одном ходе от решения: пустая клетка в позиции 7.
	p.board = [puzzleTiles]int{0, 1, 2, 3, 4, 5, 6, 8, 7}

	require.NoError(t, p.Move(8))
	snap := p.Snapshot().(PuzzleSnapshot)
	assert.True(t, snap.Solved)
	assert.Equal(t, 1, snap.Moves)
	assert.ErrorIs(t, p.Move(7), ErrGameFinished)

	assert.Empty(t, rec.scores)
	sched.Advance(1500 * time.Millisecond)
	requireFinishedOnce(t, rec, models.GamePuzzle, 99, 100)
}

func TestPuzzleScore(t *testing.T) {
	assert.Equal(t, 100, PuzzleScore(0))
	assert.Equal(t, 58, PuzzleScore(42))
	assert.Equal(t, 0, PuzzleScore(100))
	assert.Equal(t, 0, PuzzleScore(150))
}

func TestPuzzle_SolvedStartNeedsAMove(t *testing.T) {
	opts, sched, rec := testOptions(t, models.DifficultyEasy)

	p, err := NewPuzzle("img", opts)
	require.NoError(t, err)
	for i := range p.board {
		p.board[i] = i
	}

	snap := p.Snapshot().(PuzzleSnapshot)
	assert.False(t, snap.Solved)
	assert.False(t, snap.Finished)

	require.NoError(t, p.Move(puzzleBlank-1))
	assert.False(t, p.Snapshot().(PuzzleSnapshot).Solved)

	require.NoError(t, p.Move(puzzleBlank))
	assert.True(t, p.Snapshot().(PuzzleSnapshot).Solved)

	sched.Advance(puzzleFinishWait)
	requireFinishedOnce(t, rec, models.GamePuzzle, 98, 100)
}
