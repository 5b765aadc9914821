package entity

import (
	"fmt"

	"github.com/rocketscienceinc/gameroom-backend/internal/apperror"
)

const (
	PlayerX   = "X"
	PlayerO   = "O"
	PlayerTie = "-"

	EmptyCell = ""
)

// WinCombos lists the 8 winning triples: rows, columns, diagonals.
// Evaluate checks them in this order and reports the first match.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board is a 9-cell grid in row-major order. The zero value is an empty board.
type Board [9]string

// NewBoard returns an all-empty board.
func NewBoard() Board {
	return Board{}
}

// BoardFromSlice validates a client-submitted board: exactly 9 cells, each
// empty or one of the two marks.
func BoardFromSlice(cells []string) (Board, error) {
	var board Board

	if len(cells) != len(board) {
		return board, fmt.Errorf("%w: expected %d cells, got %d", apperror.ErrInvalidBoard, len(board), len(cells))
	}

	for i, cell := range cells {
		if cell != EmptyCell && cell != PlayerX && cell != PlayerO {
			return board, fmt.Errorf("%w: unknown mark %q at cell %d", apperror.ErrInvalidBoard, cell, i)
		}
		board[i] = cell
	}

	return board, nil
}

// Result is the outcome of evaluating a board.
// Winner is PlayerX or PlayerO on a win, PlayerTie on a full board with no
// winner, and EmptyCell while the game continues. Line holds the winning
// triple's indices and is only meaningful on a win.
type Result struct {
	Winner string
	Line   [3]int
}

func (that Result) IsWin() bool {
	return that.Winner == PlayerX || that.Winner == PlayerO
}

func (that Result) IsTie() bool {
	return that.Winner == PlayerTie
}

func (that Result) IsFinished() bool {
	return that.Winner != EmptyCell
}

// Evaluate determines the game result for the board. It is pure: no state,
// no side effects, deterministic for a given board.
func (that Board) Evaluate() Result {
	for _, combo := range WinCombos {
		a, b, c := that[combo[0]], that[combo[1]], that[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return Result{Winner: a, Line: combo}
		}
	}

	for _, cell := range that {
		if cell == EmptyCell {
			return Result{}
		}
	}

	return Result{Winner: PlayerTie}
}

// Apply places mark on the given cell and returns the resulting board.
// The receiver is left untouched. Turn ownership is the caller's concern;
// Apply only refuses out-of-range indices and occupied cells.
func (that Board) Apply(cell int, mark string) (Board, error) {
	if cell < 0 || cell >= len(that) {
		return that, fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if that[cell] != EmptyCell {
		return that, fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, cell)
	}

	that[cell] = mark

	return that, nil
}

// Transition verifies that next extends the board by exactly one move: a
// single previously empty cell now holds mark, everything else unchanged.
// It returns the index of that cell. The wire protocol carries full boards,
// so this is how a claimed board is reduced to a checked move.
func (that Board) Transition(next Board, mark string) (int, error) {
	changed := -1

	for i := range that {
		if that[i] == next[i] {
			continue
		}

		if changed != -1 {
			return -1, fmt.Errorf("%w: more than one cell changed", apperror.ErrInvalidBoard)
		}

		if that[i] != EmptyCell {
			return -1, fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, i)
		}

		if next[i] != mark {
			return -1, fmt.Errorf("%w: cell %d is not marked %q", apperror.ErrInvalidBoard, i, mark)
		}

		changed = i
	}

	if changed == -1 {
		return -1, fmt.Errorf("%w: no cell changed", apperror.ErrInvalidBoard)
	}

	return changed, nil
}

// Slice returns the board as a fresh slice for marshaling; the copy keeps
// queued messages immune to later board mutations.
func (that Board) Slice() []string {
	return append([]string(nil), that[:]...)
}

// OpponentMark returns the other player's mark.
func OpponentMark(mark string) string {
	if mark == PlayerX {
		return PlayerO
	}
	return PlayerX
}
