package websocket

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/gameroom-backend/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 4096

	sendBufferSize = 64
)

var ErrClientGone = errors.New("client is gone")

// client is one connected participant. Outbound messages go through a
// buffered queue drained by writePump, so a session broadcast never blocks
// on a slow or dead peer.
type client struct {
	logger *slog.Logger
	conn   *websocket.Conn

	send      chan *protocol.Message
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(logger *slog.Logger, conn *websocket.Conn) *client {
	conn.SetReadLimit(maxMessageSize)

	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logger.Warn("failed to set read deadline", "error", err)
	}

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	return &client{
		logger: logger,
		conn:   conn,
		send:   make(chan *protocol.Message, sendBufferSize),
		done:   make(chan struct{}),
	}
}

// Send enqueues a message without blocking. A full queue or a closed client
// reports the peer as gone; the session turns that into a leave.
func (that *client) Send(msg *protocol.Message) error {
	select {
	case <-that.done:
		return fmt.Errorf("%w: connection closed", ErrClientGone)
	default:
	}

	select {
	case that.send <- msg:
		return nil
	default:
		return fmt.Errorf("%w: send queue full", ErrClientGone)
	}
}

// Close stops the write pump after draining queued messages, so anything
// enqueued before the close (such as a final "full" notice) still goes out.
func (that *client) Close() {
	that.closeOnce.Do(func() {
		close(that.done)
	})
}

func (that *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = that.conn.Close()
	}()

	for {
		select {
		case msg := <-that.send:
			if !that.writeMessage(msg) {
				return
			}
		case <-ticker.C:
			if err := that.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := that.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-that.done:
			that.drain()
			return
		}
	}
}

func (that *client) drain() {
	for {
		select {
		case msg := <-that.send:
			if !that.writeMessage(msg) {
				return
			}
		default:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = that.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (that *client) writeMessage(msg *protocol.Message) bool {
	if err := that.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return false
	}

	if err := that.conn.WriteJSON(msg); err != nil {
		that.logger.Debug("failed to write message", "error", err)
		return false
	}

	return true
}
