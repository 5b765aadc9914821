package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gameroom-backend/internal/apperror"
)

func TestBoard_Evaluate(t *testing.T) {
	t.Run("Returns win for a completed row", func(t *testing.T) {
		// Given: a board where X holds the top row
		board := Board{
			PlayerX, PlayerX, PlayerX,
			PlayerO, PlayerO, EmptyCell,
			EmptyCell, EmptyCell, EmptyCell,
		}

		// When: evaluating the board
		result := board.Evaluate()

		// Then: X wins with the top-row triple
		assert.True(t, result.IsWin())
		assert.Equal(t, PlayerX, result.Winner)
		assert.Equal(t, [3]int{0, 1, 2}, result.Line)
	})

	t.Run("Returns win for a completed column", func(t *testing.T) {
		// Given: a board where O holds the middle column
		board := Board{
			PlayerX, PlayerO, PlayerX,
			EmptyCell, PlayerO, PlayerX,
			EmptyCell, PlayerO, EmptyCell,
		}

		// When: evaluating the board
		result := board.Evaluate()

		// Then: O wins with the middle-column triple
		assert.Equal(t, PlayerO, result.Winner)
		assert.Equal(t, [3]int{1, 4, 7}, result.Line)
	})

	t.Run("Returns win for a completed diagonal", func(t *testing.T) {
		// Given: a board where X holds the main diagonal
		board := Board{
			PlayerX, PlayerO, EmptyCell,
			PlayerO, PlayerX, EmptyCell,
			EmptyCell, EmptyCell, PlayerX,
		}

		// When: evaluating the board
		result := board.Evaluate()

		// Then: X wins with the diagonal triple
		assert.Equal(t, PlayerX, result.Winner)
		assert.Equal(t, [3]int{0, 4, 8}, result.Line)
	})

	t.Run("Returns the first matching triple in canonical order", func(t *testing.T) {
		// Given: a board where X completes both the top row and the left column
		board := Board{
			PlayerX, PlayerX, PlayerX,
			PlayerX, PlayerO, PlayerO,
			PlayerX, PlayerO, EmptyCell,
		}

		// When: evaluating the board
		result := board.Evaluate()

		// Then: the row triple wins because rows are listed first
		assert.Equal(t, PlayerX, result.Winner)
		assert.Equal(t, [3]int{0, 1, 2}, result.Line)
	})

	t.Run("Returns tie for a full board with no winning triple", func(t *testing.T) {
		// Given: a full board with no three in a row
		board := Board{
			"X", "O", "X",
			"O", "X", "O",
			"O", "X", "O",
		}

		// When: evaluating the board
		result := board.Evaluate()

		// Then: the game is a tie
		assert.True(t, result.IsTie())
		assert.True(t, result.IsFinished())
	})

	t.Run("Returns in-progress while empty cells remain", func(t *testing.T) {
		// Given: a board with moves left
		board := Board{
			PlayerX, PlayerO, EmptyCell,
			EmptyCell, PlayerX, EmptyCell,
			EmptyCell, EmptyCell, PlayerO,
		}

		// When: evaluating the board
		result := board.Evaluate()

		// Then: nobody has won and the game continues
		assert.False(t, result.IsFinished())
		assert.Equal(t, EmptyCell, result.Winner)
	})

	t.Run("Empty board is in progress", func(t *testing.T) {
		assert.False(t, NewBoard().Evaluate().IsFinished())
	})
}

func TestBoard_Apply(t *testing.T) {
	t.Run("Places a mark on an empty cell", func(t *testing.T) {
		// Given: an empty board
		board := NewBoard()

		// When: X plays cell 4
		next, err := board.Apply(4, PlayerX)

		// Then: only cell 4 changed, and the original board is untouched
		require.NoError(t, err)
		assert.Equal(t, PlayerX, next[4])
		assert.Equal(t, EmptyCell, board[4])
	})

	t.Run("Rejects an out-of-range cell", func(t *testing.T) {
		_, err := NewBoard().Apply(9, PlayerX)
		assert.ErrorIs(t, err, apperror.ErrInvalidCell)

		_, err = NewBoard().Apply(-1, PlayerX)
		assert.ErrorIs(t, err, apperror.ErrInvalidCell)
	})

	t.Run("Rejects an occupied cell", func(t *testing.T) {
		// Given: a board with cell 0 taken
		board, err := NewBoard().Apply(0, PlayerO)
		require.NoError(t, err)

		// When: X tries to overwrite it
		_, err = board.Apply(0, PlayerX)

		// Then: the move is refused
		assert.ErrorIs(t, err, apperror.ErrCellOccupied)
	})
}

func TestBoard_Transition(t *testing.T) {
	t.Run("Accepts a single new mark on an empty cell", func(t *testing.T) {
		// Given: a board and the same board with one extra O
		board := Board{PlayerX, "", "", "", "", "", "", "", ""}
		next := Board{PlayerX, "", "", "", PlayerO, "", "", "", ""}

		// When: validating the transition for O
		cell, err := board.Transition(next, PlayerO)

		// Then: the changed cell is reported
		require.NoError(t, err)
		assert.Equal(t, 4, cell)
	})

	t.Run("Rejects a board with more than one changed cell", func(t *testing.T) {
		board := NewBoard()
		next := Board{PlayerX, PlayerX, "", "", "", "", "", "", ""}

		_, err := board.Transition(next, PlayerX)

		assert.ErrorIs(t, err, apperror.ErrInvalidBoard)
	})

	t.Run("Rejects overwriting an occupied cell", func(t *testing.T) {
		board := Board{PlayerO, "", "", "", "", "", "", "", ""}
		next := Board{PlayerX, "", "", "", "", "", "", "", ""}

		_, err := board.Transition(next, PlayerX)

		assert.ErrorIs(t, err, apperror.ErrCellOccupied)
	})

	t.Run("Rejects a new cell carrying the wrong mark", func(t *testing.T) {
		board := NewBoard()
		next := Board{PlayerO, "", "", "", "", "", "", "", ""}

		_, err := board.Transition(next, PlayerX)

		assert.ErrorIs(t, err, apperror.ErrInvalidBoard)
	})

	t.Run("Rejects an unchanged board", func(t *testing.T) {
		board := NewBoard()

		_, err := board.Transition(board, PlayerX)

		assert.ErrorIs(t, err, apperror.ErrInvalidBoard)
	})
}

func TestBoardFromSlice(t *testing.T) {
	t.Run("Accepts a valid 9-cell board", func(t *testing.T) {
		board, err := BoardFromSlice([]string{"", "X", "", "O", "", "", "", "", ""})

		require.NoError(t, err)
		assert.Equal(t, PlayerX, board[1])
		assert.Equal(t, PlayerO, board[3])
	})

	t.Run("Rejects a wrong-sized board", func(t *testing.T) {
		_, err := BoardFromSlice([]string{"", "", ""})

		assert.ErrorIs(t, err, apperror.ErrInvalidBoard)
	})

	t.Run("Rejects unknown marks", func(t *testing.T) {
		_, err := BoardFromSlice([]string{"Z", "", "", "", "", "", "", "", ""})

		assert.ErrorIs(t, err, apperror.ErrInvalidBoard)
	})
}

func TestOpponentMark(t *testing.T) {
	assert.Equal(t, PlayerO, OpponentMark(PlayerX))
	assert.Equal(t, PlayerX, OpponentMark(PlayerO))
}
