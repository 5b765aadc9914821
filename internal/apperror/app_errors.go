package apperror

import "errors"

var (
	ErrRoomFull         = errors.New("room is already full")
	ErrRoomNotFound     = errors.New("room not found")
	ErrGameFinished     = errors.New("game is already finished")
	ErrGameIsNotStarted = errors.New("game is not started")
	ErrGameNotFinished  = errors.New("game is not finished yet")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrCellOccupied     = errors.New("cell is already occupied")
	ErrInvalidCell      = errors.New("invalid cell index")
	ErrInvalidBoard     = errors.New("invalid board state")
)
