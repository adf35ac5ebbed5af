package state

import "maps"

type LobbyPlayer struct {
	Name  string `json:"name"`
	Host  bool   `json:"host"`
	Ready bool   `json:"ready"`
}

// LobbyState mirrors a room that has not started its game yet.
//
// Invariant: MyID, when set, is a key of Players.
type LobbyState struct {
	RoomCode  RoomCode `json:"roomCode"`
	LobbyName string   `json:"lobbyName"`

	MyID *PlayerID `json:"myId"`

	RoleList      []RoleListEntry `json:"roleList"`
	ExcludedRoles []RoleListEntry `json:"excludedRoles"`
	PhaseTimes    PhaseTimes      `json:"phaseTimes"`

	Players map[PlayerID]LobbyPlayer `json:"players"`

	// StartRejection is the reason the server gave for refusing to start.
	StartRejection string `json:"startRejection,omitempty"`
}

func NewLobbyState(code RoomCode) *LobbyState {
	return &LobbyState{
		RoomCode:      code,
		LobbyName:     "Mafia Lobby",
		RoleList:      []RoleListEntry{},
		ExcludedRoles: []RoleListEntry{},
		PhaseTimes:    DefaultLobbyPhaseTimes(),
		Players:       map[PlayerID]LobbyPlayer{},
	}
}

// Clone returns a shallow copy. Slices and the player map are shared with l
// and must be replaced, not written through.
func (l *LobbyState) Clone() *LobbyState {
	c := *l
	return &c
}

// SetMe records the local player id, adding a placeholder player when the id
// is not in Players yet.
func (l *LobbyState) SetMe(id PlayerID) {
	l.MyID = &id
	if _, ok := l.Players[id]; !ok {
		players := maps.Clone(l.Players)
		if players == nil {
			players = map[PlayerID]LobbyPlayer{}
		}
		players[id] = LobbyPlayer{}
		l.Players = players
	}
}

func (l *LobbyState) Me() (LobbyPlayer, bool) {
	if l.MyID == nil {
		return LobbyPlayer{}, false
	}
	p, ok := l.Players[*l.MyID]
	return p, ok
}

func (l *LobbyState) IsHost() bool {
	me, ok := l.Me()
	return ok && me.Host
}
