// Package protocol defines the JSON message format exchanged with clients
// over the game socket.
package protocol

import "encoding/json"

const (
	TypeJoin           = "join"
	TypeStart          = "start"
	TypeFull           = "full"
	TypeMove           = "move"
	TypeRestartRequest = "restartRequest"
	TypeOpponentReady  = "opponentReady"
	TypeRestart        = "restart"
	TypeLeaveRoom      = "leaveRoom"
	TypeOpponentLeft   = "opponentLeft"
	TypeEmoji          = "emoji"
	TypeError          = "error"
)

// RoomID is a shareable room code. Clients send it either as a JSON string
// or as a bare number (the stock web client does both), so it unmarshals
// from both forms.
type RoomID string

func (that *RoomID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*that = RoomID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}

	*that = RoomID(n.String())

	return nil
}

// Message is a single frame on the game socket, discriminated by Type.
// Unused fields are omitted per type.
type Message struct {
	Type          string   `json:"type"`
	RoomID        RoomID   `json:"roomId,omitempty"`
	PlayerName    string   `json:"playerName,omitempty"`
	OpponentName  string   `json:"opponentName,omitempty"`
	Board         []string `json:"board,omitempty"`
	CurrentPlayer string   `json:"currentPlayer,omitempty"`
	Symbol        string   `json:"symbol,omitempty"`
	Winner        string   `json:"winner,omitempty"`
	Combination   []int    `json:"combination,omitempty"`
	Emoji         string   `json:"emoji,omitempty"`
	Message       string   `json:"message,omitempty"`
}
