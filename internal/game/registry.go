package game

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	mrand "math/rand"
	"sync"
	"time"

	"github.com/rocketscienceinc/gameroom-backend/internal/apperror"
)

const roomCodeAttempts = 100

// Registry is the single authority mapping room codes to live sessions.
// Concurrent GetOrCreate calls for the same code are serialized: the first
// caller creates the session, later callers observe it.
type Registry struct {
	logger   *slog.Logger
	recorder Recorder

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(logger *slog.Logger, recorder Recorder) *Registry {
	return &Registry{
		logger:   logger,
		recorder: recorder,
		sessions: make(map[string]*Session),
	}
}

// GetOrCreate returns the live session for the room code, creating it on
// first use. A created session removes itself from the registry once its
// last participant leaves.
func (that *Registry) GetOrCreate(id string) *Session {
	that.mu.Lock()
	defer that.mu.Unlock()

	if session, ok := that.sessions[id]; ok {
		return session
	}

	rng := mrand.New(mrand.NewSource(time.Now().UnixNano())) //nolint:gosec // mark assignment only needs fairness, not secrecy

	var session *Session
	session = NewSession(that.logger, id, rng, that.recorder, func() {
		that.Remove(id, session)
	})
	that.sessions[id] = session

	that.logger.Info("room created", "roomID", id)

	return session
}

// Get returns the live session for the room code.
func (that *Registry) Get(id string) (*Session, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	session, ok := that.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, id)
	}

	return session, nil
}

// Remove drops the room code from the registry, freeing it for reuse. The
// code is released only when it still points at the given session; a stale
// session emptying out must not evict a newer room that reused its code.
func (that *Registry) Remove(id string, session *Session) {
	that.mu.Lock()
	defer that.mu.Unlock()

	current, ok := that.sessions[id]
	if !ok || current != session {
		return
	}

	delete(that.sessions, id)
	that.logger.Info("room removed", "roomID", id)
}

// NewRoomCode picks a shareable 4-digit code not currently in use. Codes of
// finished rooms are reusable once the registry has dropped them.
func (that *Registry) NewRoomCode() (string, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for i := 0; i < roomCodeAttempts; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(9000))
		if err != nil {
			return "", fmt.Errorf("failed to generate room code: %w", err)
		}

		code := fmt.Sprintf("%04d", n.Int64()+1000)
		if _, taken := that.sessions[code]; !taken {
			return code, nil
		}
	}

	return "", fmt.Errorf("%w: no free room codes", apperror.ErrRoomFull)
}
