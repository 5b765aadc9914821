// Package game owns the mutable state of live rooms: the per-room session
// state machine and the registry that maps room codes to sessions.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/rocketscienceinc/gameroom-backend/internal/apperror"
	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
	"github.com/rocketscienceinc/gameroom-backend/internal/protocol"
)

const (
	StatusWaiting   = "waiting"
	StatusOngoing   = "ongoing"
	StatusFinished  = "finished"
	StatusAbandoned = "abandoned"
)

const maxParticipants = 2

// Conn is one participant's outbound channel. Send must not block
// indefinitely: a dead peer returns an error and is treated as gone.
type Conn interface {
	Send(msg *protocol.Message) error
}

// Recorder receives aggregate match events. Implementations must tolerate
// being called under a session's lock, so they should be quick.
type Recorder interface {
	RecordStarted(ctx context.Context) error
	RecordFinished(ctx context.Context, winner string) error
	RecordAbandoned(ctx context.Context) error
}

// NopRecorder discards all match events. Used when no storage is configured.
type NopRecorder struct{}

func (NopRecorder) RecordStarted(_ context.Context) error            { return nil }
func (NopRecorder) RecordFinished(_ context.Context, _ string) error { return nil }
func (NopRecorder) RecordAbandoned(_ context.Context) error          { return nil }

type participant struct {
	conn         Conn
	name         string
	mark         string
	wantsRestart bool
}

// Session is one room's state machine. All mutation happens under mu, and
// every broadcast belonging to a transition is sent before mu is released,
// so the two participants always observe transitions in the same order.
type Session struct {
	logger   *slog.Logger
	id       string
	rng      *rand.Rand
	recorder Recorder
	onEmpty  func()

	mu           sync.Mutex
	status       string
	board        entity.Board
	turn         string
	participants []*participant
}

// NewSession creates an empty room. rng decides symbol assignment and the
// post-restart opener; tests pass a seeded source. onEmpty runs, still under
// the session lock, when the last participant leaves.
func NewSession(logger *slog.Logger, id string, rng *rand.Rand, recorder Recorder, onEmpty func()) *Session {
	return &Session{
		logger:   logger.With("component", "session", "roomID", id),
		id:       id,
		rng:      rng,
		recorder: recorder,
		onEmpty:  onEmpty,
		status:   StatusWaiting,
		board:    entity.NewBoard(),
	}
}

func (that *Session) ID() string {
	return that.id
}

// Join adds a connection to the room. The second join assigns marks at
// random, starts the game with X to move, and notifies both participants.
func (that *Session) Join(ctx context.Context, conn Conn, name string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.status != StatusWaiting || len(that.participants) >= maxParticipants {
		return fmt.Errorf("%w: room %s", apperror.ErrRoomFull, that.id)
	}

	that.participants = append(that.participants, &participant{conn: conn, name: name})

	if len(that.participants) < maxParticipants {
		return nil
	}

	firstMark, secondMark := that.randomMarks()
	that.participants[0].mark = firstMark
	that.participants[1].mark = secondMark

	// X always opens a fresh room; only the restart opener is random.
	that.turn = entity.PlayerX
	that.status = StatusOngoing

	if err := that.recorder.RecordStarted(ctx); err != nil {
		that.logger.Error("failed to record game start", "error", err)
	}

	first, second := that.participants[0], that.participants[1]
	for _, pair := range [][2]*participant{{first, second}, {second, first}} {
		// A failed send abandons the room mid-loop; the survivor already
		// heard opponentLeft and must not get a start on top of it.
		if that.status != StatusOngoing {
			break
		}

		player, opponent := pair[0], pair[1]
		that.sendLocked(ctx, player, &protocol.Message{
			Type:          protocol.TypeStart,
			OpponentName:  opponent.name,
			CurrentPlayer: that.turn,
			Symbol:        player.mark,
		})
	}

	return nil
}

// Move adopts the mover's claimed board after validating that it extends the
// current one by exactly one cell carrying the mover's own on-turn mark.
// A rejected move changes nothing and nothing is broadcast.
func (that *Session) Move(ctx context.Context, conn Conn, next entity.Board, claimed string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	player := that.findLocked(conn)
	if player == nil {
		return fmt.Errorf("%w: connection is not in room %s", apperror.ErrRoomNotFound, that.id)
	}

	switch that.status {
	case StatusOngoing:
	case StatusWaiting:
		return apperror.ErrGameIsNotStarted
	default:
		return apperror.ErrGameFinished
	}

	if claimed != player.mark || claimed != that.turn {
		return apperror.ErrNotYourTurn
	}

	cell, err := that.board.Transition(next, claimed)
	if err != nil {
		return fmt.Errorf("rejected board from %s: %w", player.name, err)
	}

	that.board = next

	result := that.board.Evaluate()
	switch {
	case result.IsWin():
		that.finishLocked(ctx, result.Winner)
		that.broadcastLocked(ctx, &protocol.Message{
			Type:        protocol.TypeMove,
			Board:       that.board.Slice(),
			Winner:      result.Winner,
			Combination: result.Line[:],
		})
	case result.IsTie():
		that.finishLocked(ctx, entity.PlayerTie)
		that.broadcastLocked(ctx, &protocol.Message{
			Type:  protocol.TypeMove,
			Board: that.board.Slice(),
		})
	default:
		that.turn = entity.OpponentMark(claimed)
		that.broadcastLocked(ctx, &protocol.Message{
			Type:          protocol.TypeMove,
			Board:         that.board.Slice(),
			CurrentPlayer: that.turn,
		})
	}

	that.logger.Debug("move accepted", "cell", cell, "mark", claimed)

	return nil
}

// RestartRequest marks the requester ready for a rematch and tells the other
// participant. Once both are ready the board resets, a random mark opens,
// and both participants receive the restart broadcast.
func (that *Session) RestartRequest(ctx context.Context, conn Conn) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	player := that.findLocked(conn)
	if player == nil {
		return fmt.Errorf("%w: connection is not in room %s", apperror.ErrRoomNotFound, that.id)
	}

	if that.status != StatusFinished {
		return apperror.ErrGameNotFinished
	}

	player.wantsRestart = true

	opponent := that.otherLocked(player)
	if opponent == nil {
		return nil
	}

	if !opponent.wantsRestart {
		that.sendLocked(ctx, opponent, &protocol.Message{Type: protocol.TypeOpponentReady})
		return nil
	}

	that.board = entity.NewBoard()
	that.turn = that.randomOpener()
	that.status = StatusOngoing
	for _, p := range that.participants {
		p.wantsRestart = false
	}

	if err := that.recorder.RecordStarted(ctx); err != nil {
		that.logger.Error("failed to record game start", "error", err)
	}

	// currentPlayer is a compatible extension: the stock client ignores it,
	// but it lets clients resync whose turn it is after the reset.
	that.broadcastLocked(ctx, &protocol.Message{
		Type:          protocol.TypeRestart,
		CurrentPlayer: that.turn,
	})

	return nil
}

// Relay forwards a cosmetic message to every participant except the sender.
// It reads only room membership; game state is untouched.
func (that *Session) Relay(ctx context.Context, from Conn, msg *protocol.Message) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for _, player := range that.participants {
		if player.conn == from {
			continue
		}
		that.sendLocked(ctx, player, msg)
	}
}

// Leave removes a connection from the room. The remaining participant, if
// any, is told the opponent left and the room becomes abandoned. Leaving a
// room the connection is no longer in is a no-op.
func (that *Session) Leave(ctx context.Context, conn Conn) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.leaveLocked(ctx, conn)
}

func (that *Session) leaveLocked(ctx context.Context, conn Conn) {
	idx := -1
	for i, player := range that.participants {
		if player.conn == conn {
			idx = i
			break
		}
	}

	if idx == -1 {
		return
	}

	left := that.participants[idx]
	that.participants = append(that.participants[:idx], that.participants[idx+1:]...)

	that.logger.Info("participant left", "name", left.name)

	if len(that.participants) == 0 {
		if that.onEmpty != nil {
			that.onEmpty()
		}
		return
	}

	if that.status == StatusOngoing {
		if err := that.recorder.RecordAbandoned(ctx); err != nil {
			that.logger.Error("failed to record abandoned game", "error", err)
		}
	}

	that.status = StatusAbandoned
	that.turn = entity.EmptyCell

	remaining := that.participants[0]
	if err := remaining.conn.Send(&protocol.Message{
		Type:    protocol.TypeOpponentLeft,
		Message: "Your opponent has left. You win!",
	}); err != nil {
		that.logger.Warn("failed to notify remaining participant", "name", remaining.name, "error", err)
	}
}

func (that *Session) finishLocked(ctx context.Context, winner string) {
	that.status = StatusFinished
	that.turn = entity.EmptyCell

	if err := that.recorder.RecordFinished(ctx, winner); err != nil {
		that.logger.Error("failed to record finished game", "error", err)
	}
}

// sendLocked pushes a message to one participant. A failed send means the
// peer is unreachable and is handled as an implicit leave.
func (that *Session) sendLocked(ctx context.Context, player *participant, msg *protocol.Message) {
	if err := player.conn.Send(msg); err != nil {
		that.logger.Warn("dropping unreachable participant", "name", player.name, "error", err)
		that.leaveLocked(ctx, player.conn)
	}
}

func (that *Session) broadcastLocked(ctx context.Context, msg *protocol.Message) {
	for _, player := range append([]*participant(nil), that.participants...) {
		that.sendLocked(ctx, player, msg)
	}
}

func (that *Session) findLocked(conn Conn) *participant {
	for _, player := range that.participants {
		if player.conn == conn {
			return player
		}
	}
	return nil
}

func (that *Session) otherLocked(player *participant) *participant {
	for _, p := range that.participants {
		if p != player {
			return p
		}
	}
	return nil
}

func (that *Session) randomMarks() (string, string) {
	if that.rng.Intn(2) == 0 {
		return entity.PlayerX, entity.PlayerO
	}
	return entity.PlayerO, entity.PlayerX
}

func (that *Session) randomOpener() string {
	if that.rng.Intn(2) == 0 {
		return entity.PlayerX
	}
	return entity.PlayerO
}
