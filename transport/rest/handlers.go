package rest

import (
	"encoding/json"
	"net/http"

	"github.com/rocketscienceinc/gameroom-backend/internal/game"
)

func pingHandler(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusOK)
	_, _ = writer.Write([]byte("pong"))
}

// newRoomHandler issues a 4-digit room code that is not in use by any live
// room. The code is only reserved once the creator actually joins it.
func newRoomHandler(registry *game.Registry) http.HandlerFunc {
	return func(writer http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			http.Error(writer, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		code, err := registry.NewRoomCode()
		if err != nil {
			http.Error(writer, "no room codes available", http.StatusServiceUnavailable)
			return
		}

		writer.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(writer).Encode(map[string]string{"roomId": code})
	}
}

// statsHandler reports the aggregate match counters, or 404 when the server
// runs without storage.
func statsHandler(stats StatsProvider) http.HandlerFunc {
	return func(writer http.ResponseWriter, req *http.Request) {
		if stats == nil {
			http.Error(writer, "statistics are not enabled", http.StatusNotFound)
			return
		}

		snapshot, err := stats.Snapshot(req.Context())
		if err != nil {
			http.Error(writer, "failed to read statistics", http.StatusInternalServerError)
			return
		}

		writer.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(writer).Encode(map[string]int64{
			"started":   snapshot.Started,
			"abandoned": snapshot.Abandoned,
			"wonByX":    snapshot.WonByX,
			"wonByO":    snapshot.WonByO,
			"tied":      snapshot.Tied,
		})
	}
}
