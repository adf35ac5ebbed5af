package state

// ConnectionState is the discriminant of State.
type ConnectionState string

const (
	ConnOutsideLobby ConnectionState = "outsideLobby"
	ConnLobby        ConnectionState = "lobby"
	ConnGame         ConnectionState = "game"
	ConnDisconnected ConnectionState = "disconnected"
)

// State is the single value mirrored from the server. It is one of
// OutsideLobby, Disconnected, *LobbyState or *GameState.
//
// A State handed out by the game manager is a snapshot: it is never written
// to again, so readers must not write to it either.
type State interface {
	Connection() ConnectionState
	isState()
}

type OutsideLobby struct{}

type Disconnected struct{}

func (OutsideLobby) Connection() ConnectionState { return ConnOutsideLobby }
func (Disconnected) Connection() ConnectionState { return ConnDisconnected }
func (*LobbyState) Connection() ConnectionState  { return ConnLobby }
func (*GameState) Connection() ConnectionState   { return ConnGame }

func (OutsideLobby) isState() {}
func (Disconnected) isState() {}
func (*LobbyState) isState()  {}
func (*GameState) isState()   {}

// PlayerID identifies a player for the lifetime of a room, across reconnects.
type PlayerID uint32

// PlayerIndex is a 0-based seat in a running game. It is stable for the game.
type PlayerIndex int
