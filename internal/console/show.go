package console

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/DoyleJ11/mafia-client/internal/state"
)

var ErrNotAvailable = errors.New("not available here")

// Topics Show can render.
var Topics = []string{"state", "roles", "graves"}

// Show writes a human readable view of topic for snapshot s.
func Show(w io.Writer, s state.State, topic string) error {
	switch topic {
	case "state":
		showState(w, s)
		return nil
	case "roles":
		return showRoles(w, s)
	case "graves":
		return showGraves(w, s)
	}
	return fmt.Errorf("%w: %s", ErrUnknownCommand, topic)
}

func showState(w io.Writer, s state.State) {
	switch s := s.(type) {
	case *state.LobbyState:
		fmt.Fprintf(w, "lobby %s %q, %d players, host=%t\n", s.RoomCode, s.LobbyName, len(s.Players), s.IsHost())
	case *state.GameState:
		phase := "-"
		if s.Phase != nil {
			phase = string(*s.Phase)
		}
		fmt.Fprintf(w, "game %s, day %d %s, %s left\n", s.RoomCode, s.DayNumber, phase, s.TimeLeft)
		for _, p := range s.Players {
			mark := ""
			if !p.Alive {
				mark = " (dead)"
			}
			fmt.Fprintf(w, "  %s%s\n", p, mark)
		}
	default:
		fmt.Fprintln(w, s.Connection())
	}
}

func showRoles(w io.Writer, s state.State) error {
	list, excluded, ok := state.RoleConfig(s)
	if !ok {
		return fmt.Errorf("%w: roles need a lobby or game", ErrNotAvailable)
	}
	possible := state.RolesFromRoleList(list, excluded)
	fmt.Fprintf(w, "possible: %s\n", joinRoles(possible))
	fmt.Fprintf(w, "impossible: %s\n", joinRoles(state.RolesComplement(possible)))
	return nil
}

func joinRoles(roles []state.Role) string {
	if len(roles) == 0 {
		return "-"
	}
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}

func showGraves(w io.Writer, s state.State) error {
	g, ok := s.(*state.GameState)
	if !ok {
		return fmt.Errorf("%w: graves need a game", ErrNotAvailable)
	}
	if len(g.Graves) == 0 {
		fmt.Fprintln(w, "no graves")
	}
	for _, gr := range g.Graves {
		who := fmt.Sprintf("#%d", gr.Player+1)
		if g.ValidIndex(gr.Player) {
			who = g.Players[gr.Player].String()
		}
		if gr.Information.Obscured() {
			fmt.Fprintf(w, "%s, %s %d: obscured\n", who, gr.DiedPhase, gr.DayNumber)
			continue
		}
		line := fmt.Sprintf("%s, %s %d: %s", who, gr.DiedPhase, gr.DayNumber, gr.Information.Role)
		if c := gr.Information.DeathCause; c != nil {
			line += ", " + c.Describe()
		}
		fmt.Fprintln(w, line)
	}
	return nil
}
