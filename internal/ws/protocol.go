package ws

import (
	"encoding/json"

	"cardroom/internal/game"
)

// Envelope is the wire frame in both directions: an event name and an
// event-specific payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type CreateRoomMessage struct {
	Name     string        `json:"name"`
	PlayerID game.PlayerID `json:"playerId"`
	Nickname string        `json:"nickname"`
	GameType game.Type     `json:"gameType,omitempty"`
	Password string        `json:"password,omitempty"`
}

type JoinRoomMessage struct {
	Name     string        `json:"name"`
	PlayerID game.PlayerID `json:"playerId"`
	Nickname string        `json:"nickname"`
	Password string        `json:"password,omitempty"`
}

type VerifyPasswordMessage struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LeaveRoomMessage struct {
	Name string `json:"name"`
}

type KickPlayerMessage struct {
	RoomName       string        `json:"roomName"`
	TargetPlayerID game.PlayerID `json:"targetPlayerId"`
}

type RoomNameMessage struct {
	RoomName string `json:"roomName"`
}

type RoomMessageMessage struct {
	RoomName string `json:"roomName"`
	Message  any    `json:"message"`
}

type SelectChipMessage struct {
	RoomName   string `json:"roomName"`
	ChipNumber int    `json:"chipNumber"`
}

type BidMessage struct {
	RoomName string `json:"roomName"`
	Bid      int    `json:"bid"`
}

// PlayCardMessage serves both card games: the trick game reads
// TigressDeclared, the bluff game reads the declared pair.
type PlayCardMessage struct {
	RoomName        string    `json:"roomName"`
	CardIndex       int       `json:"cardIndex"`
	TigressDeclared string    `json:"tigressDeclared,omitempty"`
	DeclaredSuit    game.Suit `json:"declaredSuit,omitempty"`
	DeclaredNumber  int       `json:"declaredNumber,omitempty"`
}

type ChallengeMessage struct {
	RoomName string `json:"roomName"`
	Kind     string `json:"kind"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
