package websocket

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/gameroom-backend/internal/apperror"
	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
	"github.com/rocketscienceinc/gameroom-backend/internal/game"
	"github.com/rocketscienceinc/gameroom-backend/internal/protocol"
)

// serveClient is the per-connection read loop. Whatever way the connection
// ends — a leaveRoom frame, a close frame, or the transport dropping — the
// deferred leave runs, so room cleanup is uniform.
func (that *Server) serveClient(ctx context.Context, c *client) {
	log := that.logger.With("method", "serveClient")

	var session *game.Session

	defer func() {
		if session != nil {
			session.Leave(ctx, c)
		}
		c.Close()
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Info("connection dropped", "error", err)
			}
			return
		}

		var msg protocol.Message
		if err = json.Unmarshal(raw, &msg); err != nil {
			log.Warn("malformed message", "error", err)
			that.sendError(c, "malformed message")
			continue
		}

		switch msg.Type {
		case protocol.TypeJoin:
			session = that.handleJoin(ctx, c, session, &msg)
		case protocol.TypeMove:
			that.handleMove(ctx, c, session, &msg)
		case protocol.TypeRestartRequest:
			that.handleRestartRequest(ctx, c, session)
		case protocol.TypeRestart:
			// The stock client still announces the restart it expects; the
			// session performs the reset itself on the second restartRequest.
			log.Debug("ignoring client restart frame")
		case protocol.TypeLeaveRoom:
			if session != nil {
				session.Leave(ctx, c)
				session = nil
			}
		case protocol.TypeEmoji:
			if session != nil {
				session.Relay(ctx, c, &protocol.Message{
					Type:       protocol.TypeEmoji,
					Emoji:      msg.Emoji,
					PlayerName: msg.PlayerName,
				})
			}
		default:
			log.Warn("unknown message type", "type", msg.Type)
			that.sendError(c, "unknown message type")
		}
	}
}

func (that *Server) handleJoin(ctx context.Context, c *client, session *game.Session, msg *protocol.Message) *game.Session {
	log := that.logger.With("method", "handleJoin", "roomID", msg.RoomID)

	if session != nil {
		that.sendError(c, "already in a room")
		return session
	}

	if msg.RoomID == "" {
		that.sendError(c, "roomId is required")
		return nil
	}

	joined := that.registry.GetOrCreate(string(msg.RoomID))

	if err := joined.Join(ctx, c, msg.PlayerName); err != nil {
		if errors.Is(err, apperror.ErrRoomFull) {
			if sendErr := c.Send(&protocol.Message{Type: protocol.TypeFull}); sendErr != nil {
				log.Warn("failed to send full notice", "error", sendErr)
			}
			c.Close()
			return nil
		}

		log.Error("failed to join room", "error", err)
		that.sendError(c, "failed to join room")
		return nil
	}

	log.Info("participant joined", "playerName", msg.PlayerName)

	return joined
}

func (that *Server) handleMove(ctx context.Context, c *client, session *game.Session, msg *protocol.Message) {
	log := that.logger.With("method", "handleMove")

	if session == nil {
		that.sendError(c, "room not found")
		return
	}

	board, err := entity.BoardFromSlice(msg.Board)
	if err != nil {
		log.Warn("rejected board", "error", err)
		that.sendError(c, "invalid board")
		return
	}

	if err = session.Move(ctx, c, board, msg.CurrentPlayer); err != nil {
		log.Warn("rejected move", "roomID", session.ID(), "error", err)
		that.sendError(c, rejectionText(err))
	}
}

func (that *Server) handleRestartRequest(ctx context.Context, c *client, session *game.Session) {
	log := that.logger.With("method", "handleRestartRequest")

	if session == nil {
		that.sendError(c, "room not found")
		return
	}

	if err := session.RestartRequest(ctx, c); err != nil {
		log.Warn("rejected restart request", "roomID", session.ID(), "error", err)
		that.sendError(c, rejectionText(err))
	}
}

// rejectionText maps a session error to the short text sent back to the
// sender. Rejections never reach the opponent, and wrapped internals never
// reach the wire.
func rejectionText(err error) string {
	switch {
	case errors.Is(err, apperror.ErrNotYourTurn):
		return "it's not your turn"
	case errors.Is(err, apperror.ErrCellOccupied):
		return "cell is already occupied"
	case errors.Is(err, apperror.ErrGameIsNotStarted):
		return "game has not started"
	case errors.Is(err, apperror.ErrGameFinished):
		return "game is already finished"
	case errors.Is(err, apperror.ErrGameNotFinished):
		return "game is not finished yet"
	case errors.Is(err, apperror.ErrRoomNotFound):
		return "room not found"
	default:
		return "invalid move"
	}
}

func (that *Server) sendError(c *client, text string) {
	if err := c.Send(&protocol.Message{Type: protocol.TypeError, Message: text}); err != nil {
		that.logger.Debug("failed to send error response", "error", err)
	}
}
