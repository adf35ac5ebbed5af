package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/DoyleJ11/mafia-client/internal/state"
)

// StateSource is anything that can hand out the current state snapshot.
type StateSource interface {
	State() state.State
}

type stateView struct {
	Connection state.ConnectionState `json:"connection"`
	RoomCode   string                `json:"roomCode,omitempty"`
	Lobby      *state.LobbyState     `json:"lobby,omitempty"`
	Game       *state.GameState      `json:"game,omitempty"`
}

func viewOf(s state.State) stateView {
	v := stateView{Connection: s.Connection()}
	switch s := s.(type) {
	case *state.LobbyState:
		v.RoomCode = s.RoomCode.String()
		v.Lobby = s
	case *state.GameState:
		v.RoomCode = s.RoomCode.String()
		v.Game = s
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func State(src StateSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, viewOf(src.State()))
	}
}

// Chat returns the chat as the local player sees it, with the chat filter
// applied.
func Chat(src StateSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, ok := src.State().(*state.GameState)
		if !ok {
			http.Error(w, "not in a game", http.StatusConflict)
			return
		}
		writeJSON(w, http.StatusOK, g.VisibleChat())
	}
}

// Players lists the players of the current game as "n: name".
func Players(src StateSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, ok := src.State().(*state.GameState)
		if !ok {
			http.Error(w, "not in a game", http.StatusConflict)
			return
		}
		out := make([]string, len(g.Players))
		for i, p := range g.Players {
			out[i] = p.String()
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type rolesView struct {
	Possible   []state.Role `json:"possible"`
	Impossible []state.Role `json:"impossible"`
}

// Roles lists which catalog roles the mirrored role list can still produce
// once exclusions are applied.
func Roles(src StateSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, excluded, ok := state.RoleConfig(src.State())
		if !ok {
			http.Error(w, "not in a room", http.StatusConflict)
			return
		}
		possible := state.RolesFromRoleList(list, excluded)
		writeJSON(w, http.StatusOK, rolesView{Possible: possible, Impossible: state.RolesComplement(possible)})
	}
}

type killerView struct {
	Type    state.GraveKillerType `json:"type"`
	Role    state.Role            `json:"role,omitempty"`
	Faction state.Faction         `json:"faction,omitempty"`
}

type graveView struct {
	Player     string       `json:"player"`
	Died       string       `json:"died"`
	Obscured   bool         `json:"obscured"`
	Role       state.Role   `json:"role,omitempty"`
	Cause      string       `json:"cause,omitempty"`
	Killers    []killerView `json:"killers,omitempty"`
	Will       string       `json:"will,omitempty"`
	DeathNotes []string     `json:"deathNotes,omitempty"`
}

// Graves renders the graves of the current game with player names and
// readable death causes.
func Graves(src StateSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, ok := src.State().(*state.GameState)
		if !ok {
			http.Error(w, "not in a game", http.StatusConflict)
			return
		}
		out := make([]graveView, 0, len(g.Graves))
		for _, gr := range g.Graves {
			v := graveView{
				Player:   "#" + strconv.Itoa(int(gr.Player)+1),
				Died:     fmt.Sprintf("%s %d", gr.DiedPhase, gr.DayNumber),
				Obscured: gr.Information.Obscured(),
			}
			if g.ValidIndex(gr.Player) {
				v.Player = g.Players[gr.Player].String()
			}
			if !v.Obscured {
				info := gr.Information
				v.Role, v.Will, v.DeathNotes = info.Role, info.Will, info.DeathNotes
				if info.DeathCause != nil {
					v.Cause = info.DeathCause.Describe()
					for _, k := range info.DeathCause.Killers {
						kv := killerView{Type: k.Type}
						if r, ok := k.Role(); ok {
							kv.Role = r
						}
						if f, ok := k.Faction(); ok {
							kv.Faction = f
						}
						v.Killers = append(v.Killers, kv)
					}
				}
			}
			out = append(out, v)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
