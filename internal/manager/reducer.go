package manager

import (
	"maps"
	"slices"
	"time"

	"github.com/DoyleJ11/mafia-client/internal/packet"
	"github.com/DoyleJ11/mafia-client/internal/state"
)

// resolution is the answer to a pending join, rejoin or host request.
type resolution struct {
	err error
}

// reduce applies one server packet to s and returns the next state. s is
// never written to; arms work on a clone and replace any slice or map they
// change.
func reduce(s state.State, p packet.ToClient) (state.State, *resolution) {
	r := &reducer{in: s, out: s}
	p.Accept(r)
	return r.out, r.res
}

// tickState counts the timer of a running game down by elapsed. It reports
// false when nothing changes.
func tickState(s state.State, elapsed time.Duration) (state.State, bool) {
	g, ok := s.(*state.GameState)
	if !ok || !g.Ticking || g.TimeLeft <= 0 {
		return s, false
	}
	next := g.Clone()
	next.TimeLeft = max(0, g.TimeLeft-elapsed)
	return next, true
}

var _ packet.Visitor = (*reducer)(nil)

type reducer struct {
	in  state.State
	out state.State
	res *resolution
}

func (r *reducer) lobby(fn func(l *state.LobbyState)) {
	if l, ok := r.in.(*state.LobbyState); ok {
		next := l.Clone()
		fn(next)
		r.out = next
	}
}

func (r *reducer) game(fn func(g *state.GameState)) {
	if g, ok := r.in.(*state.GameState); ok {
		next := g.Clone()
		fn(next)
		r.out = next
	}
}

// eachPlayer rewrites every player of a running game through fn.
func (r *reducer) eachPlayer(fn func(i state.PlayerIndex, p *state.Player)) {
	r.game(func(g *state.GameState) {
		players := slices.Clone(g.Players)
		for i := range players {
			fn(state.PlayerIndex(i), &players[i])
		}
		g.Players = players
	})
}

func (r *reducer) VisitAcceptJoin(p packet.AcceptJoin) {
	if p.InGame {
		g := state.NewGameState(p.RoomCode)
		id := p.PlayerID
		g.MyID = &id
		g.Spectator = p.Spectator
		r.out = g
	} else {
		l := state.NewLobbyState(p.RoomCode)
		l.SetMe(p.PlayerID)
		r.out = l
	}
	r.res = &resolution{}
}

func (r *reducer) VisitRejectJoin(p packet.RejectJoin) {
	r.out = state.Disconnected{}
	r.res = &resolution{err: rejectError(p.Reason)}
}

func (r *reducer) VisitAcceptHost(p packet.AcceptHost) {
	r.out = state.NewLobbyState(p.RoomCode)
	r.res = &resolution{}
}

func (r *reducer) VisitYourID(p packet.YourID) {
	r.lobby(func(l *state.LobbyState) { l.SetMe(p.PlayerID) })
	r.game(func(g *state.GameState) {
		id := p.PlayerID
		g.MyID = &id
	})
}

func (r *reducer) VisitLobbyName(p packet.LobbyName) {
	r.lobby(func(l *state.LobbyState) { l.LobbyName = p.Name })
}

func (r *reducer) VisitLobbyPlayers(p packet.LobbyPlayers) {
	r.lobby(func(l *state.LobbyState) {
		players := maps.Clone(p.Players)
		if players == nil {
			players = map[state.PlayerID]state.LobbyPlayer{}
		}
		l.Players = players
		// The list can lag behind yourId; keep the id and its placeholder.
		if l.MyID != nil {
			l.SetMe(*l.MyID)
		}
	})
}

func (r *reducer) VisitPlayersHost(p packet.PlayersHost) {
	r.lobby(func(l *state.LobbyState) {
		players := make(map[state.PlayerID]state.LobbyPlayer, len(l.Players))
		for id, lp := range l.Players {
			lp.Host = slices.Contains(p.Hosts, id)
			players[id] = lp
		}
		l.Players = players
	})
}

func (r *reducer) VisitPlayersReady(p packet.PlayersReady) {
	r.lobby(func(l *state.LobbyState) {
		players := make(map[state.PlayerID]state.LobbyPlayer, len(l.Players))
		for id, lp := range l.Players {
			lp.Ready = slices.Contains(p.Ready, id)
			players[id] = lp
		}
		l.Players = players
	})
}

func (r *reducer) VisitRejectStart(p packet.RejectStart) {
	r.lobby(func(l *state.LobbyState) { l.StartRejection = p.Reason })
}

func (r *reducer) VisitRoleList(p packet.RoleList) {
	list := orEmpty(p.RoleList)
	r.lobby(func(l *state.LobbyState) { l.RoleList = list })
	r.game(func(g *state.GameState) { g.RoleList = list })
}

func (r *reducer) VisitExcludedRoles(p packet.ExcludedRoles) {
	roles := orEmpty(p.Roles)
	r.lobby(func(l *state.LobbyState) { l.ExcludedRoles = roles })
	r.game(func(g *state.GameState) { g.ExcludedRoles = roles })
}

func (r *reducer) VisitPhaseTime(p packet.PhaseTime) {
	r.lobby(func(l *state.LobbyState) { l.PhaseTimes = l.PhaseTimes.With(p.Phase, p.Time) })
	r.game(func(g *state.GameState) { g.PhaseTimes = g.PhaseTimes.With(p.Phase, p.Time) })
}

func (r *reducer) VisitPhaseTimes(p packet.PhaseTimes) {
	r.lobby(func(l *state.LobbyState) { l.PhaseTimes = p.PhaseTimeSettings })
	r.game(func(g *state.GameState) { g.PhaseTimes = p.PhaseTimeSettings })
}

func (r *reducer) VisitStartGame(packet.StartGame) {
	l, ok := r.in.(*state.LobbyState)
	if !ok {
		return
	}
	g := state.NewGameState(l.RoomCode)
	g.MyID = l.MyID
	g.RoleList = l.RoleList
	g.ExcludedRoles = l.ExcludedRoles
	g.PhaseTimes = l.PhaseTimes
	r.out = g
}

func (r *reducer) VisitGamePlayers(p packet.GamePlayers) {
	r.game(func(g *state.GameState) {
		players := make([]state.Player, len(p.Players))
		for i, name := range p.Players {
			players[i] = state.NewPlayer(name, state.PlayerIndex(i))
		}
		g.Players = players
	})
}

func (r *reducer) VisitYourPlayerIndex(p packet.YourPlayerIndex) {
	r.game(func(g *state.GameState) {
		i := p.PlayerIndex
		g.MyIndex = &i
		g.Spectator = false
	})
}

func (r *reducer) VisitPlayerButtons(p packet.PlayerButtons) {
	r.eachPlayer(func(i state.PlayerIndex, pl *state.Player) {
		if int(i) < len(p.Buttons) {
			pl.Buttons = p.Buttons[i]
		}
	})
}

func (r *reducer) VisitPlayerAlive(p packet.PlayerAlive) {
	r.eachPlayer(func(i state.PlayerIndex, pl *state.Player) {
		if int(i) < len(p.Alive) {
			pl.Alive = p.Alive[i]
		}
	})
}

func (r *reducer) VisitPlayerVotes(p packet.PlayerVotes) {
	r.eachPlayer(func(i state.PlayerIndex, pl *state.Player) {
		pl.NumVoted = p.VotesForPlayer[i]
	})
}

func (r *reducer) VisitYourRoleLabels(p packet.YourRoleLabels) {
	r.eachPlayer(func(i state.PlayerIndex, pl *state.Player) {
		pl.RoleLabel = nil
		if role, ok := p.RoleLabels[i]; ok {
			pl.RoleLabel = &role
		}
	})
}

func (r *reducer) VisitYourPlayerTags(p packet.YourPlayerTags) {
	r.eachPlayer(func(i state.PlayerIndex, pl *state.Player) {
		pl.PlayerTags = orEmpty(p.PlayerTags[i])
	})
}

func (r *reducer) VisitPhase(p packet.Phase) {
	if !p.Phase.Valid() {
		return
	}
	r.game(func(g *state.GameState) {
		phase := p.Phase
		g.Phase = &phase
		if p.DayNumber != 0 {
			g.DayNumber = p.DayNumber
		}
		g.TimeLeft = g.PhaseTimes.Duration(phase)
		if p.FastForward {
			g.TimeLeft = 0
		}
	})
}

func (r *reducer) VisitPhaseTimeLeft(p packet.PhaseTimeLeft) {
	r.game(func(g *state.GameState) {
		g.TimeLeft = time.Duration(max(0, p.SecondsLeft)) * time.Second
	})
}

func (r *reducer) VisitPlayerOnTrial(p packet.PlayerOnTrial) {
	r.game(func(g *state.GameState) { g.PlayerOnTrial = p.PlayerIndex })
}

func (r *reducer) VisitAddChatMessages(p packet.AddChatMessages) {
	r.game(func(g *state.GameState) {
		g.ChatMessages = append(slices.Clip(g.ChatMessages), p.ChatMessages...)
	})
}

func (r *reducer) VisitAddGrave(p packet.AddGrave) {
	r.game(func(g *state.GameState) {
		g.Graves = append(slices.Clip(g.Graves), p.Grave)
		if g.ValidIndex(p.Grave.Player) {
			players := slices.Clone(g.Players)
			players[p.Grave.Player].Alive = false
			g.Players = players
		}
	})
}

func (r *reducer) VisitYourRoleState(p packet.YourRoleState) {
	r.game(func(g *state.GameState) {
		rs := p.RoleState
		g.RoleState = &rs
	})
}

func (r *reducer) VisitYourWill(p packet.YourWill) {
	r.game(func(g *state.GameState) { g.Will = p.Will })
}

func (r *reducer) VisitYourNotes(p packet.YourNotes) {
	r.game(func(g *state.GameState) { g.Notes = p.Notes })
}

func (r *reducer) VisitYourCrossedOutOutlines(p packet.YourCrossedOutOutlines) {
	r.game(func(g *state.GameState) { g.CrossedOutOutlines = orEmpty(p.CrossedOutOutlines) })
}

func (r *reducer) VisitYourDeathNote(p packet.YourDeathNote) {
	r.game(func(g *state.GameState) {
		g.DeathNote = ""
		if p.DeathNote != nil {
			g.DeathNote = *p.DeathNote
		}
	})
}

func (r *reducer) VisitYourTarget(p packet.YourTarget) {
	r.game(func(g *state.GameState) { g.Targets = orEmpty(p.PlayerIndices) })
}

func (r *reducer) VisitYourVoting(p packet.YourVoting) {
	r.game(func(g *state.GameState) { g.Voted = p.PlayerIndex })
}

func (r *reducer) VisitYourJudgement(p packet.YourJudgement) {
	r.game(func(g *state.GameState) {
		g.Judgement = p.Verdict
		if !g.Judgement.Valid() {
			g.Judgement = state.VerdictAbstain
		}
	})
}

func (r *reducer) VisitYourVoteFastForwardPhase(p packet.YourVoteFastForwardPhase) {
	r.game(func(g *state.GameState) { g.FastForward = p.FastForward })
}

func (r *reducer) VisitGameOver(p packet.GameOver) {
	r.game(func(g *state.GameState) {
		g.Ticking = false
		g.GameOver = p.Reason
	})
}

// VisitUnknown leaves the state alone. The event is still notified.
func (r *reducer) VisitUnknown(packet.Unknown) {}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
