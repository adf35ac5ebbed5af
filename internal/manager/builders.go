package manager

import (
	"slices"
	"strings"

	"github.com/DoyleJ11/mafia-client/internal/packet"
	"github.com/DoyleJ11/mafia-client/internal/state"
)

// A builder turns a user intent into a packet, or reports false when the
// intent makes no sense in the given state. Builders never write to s.
type builder func(s state.State) (packet.ToServer, bool)

func inLobby(s state.State) (*state.LobbyState, bool) {
	l, ok := s.(*state.LobbyState)
	return l, ok
}

func asHost(s state.State) (*state.LobbyState, bool) {
	l, ok := inLobby(s)
	return l, ok && l.IsHost()
}

// asPlayer returns the game and local player when the client holds a seat.
func asPlayer(s state.State) (*state.GameState, state.Player, bool) {
	g, ok := s.(*state.GameState)
	if !ok {
		return nil, state.Player{}, false
	}
	me, ok := g.Me()
	return g, me, ok
}

func asLiving(s state.State) (*state.GameState, state.Player, bool) {
	g, me, ok := asPlayer(s)
	return g, me, ok && me.Alive
}

func inPhase(g *state.GameState, p state.Phase) bool {
	return g.Phase != nil && *g.Phase == p
}

func buildSetName(name string) builder {
	return func(s state.State) (packet.ToServer, bool) {
		if _, ok := inLobby(s); !ok {
			return nil, false
		}
		return packet.SetName{Name: name}, true
	}
}

func buildReady(ready bool) builder {
	return func(s state.State) (packet.ToServer, bool) {
		if _, ok := inLobby(s); !ok {
			return nil, false
		}
		return packet.ReadyUp{Ready: ready}, true
	}
}

func buildStartGame() builder {
	return func(s state.State) (packet.ToServer, bool) {
		if _, ok := asHost(s); !ok {
			return nil, false
		}
		return packet.StartGame{}, true
	}
}

func buildSetPhaseTime(phase state.Phase, seconds int) builder {
	return func(s state.State) (packet.ToServer, bool) {
		if _, ok := asHost(s); !ok || !phase.Valid() || seconds < 0 {
			return nil, false
		}
		return packet.SetPhaseTime{Phase: phase, Time: seconds}, true
	}
}

func buildSetPhaseTimes(times state.PhaseTimes) builder {
	return func(s state.State) (packet.ToServer, bool) {
		if _, ok := asHost(s); !ok {
			return nil, false
		}
		return packet.SetPhaseTimes{PhaseTimeSettings: times}, true
	}
}

func buildSetRoleList(list []state.RoleListEntry) builder {
	list = slices.Clone(list)
	return func(s state.State) (packet.ToServer, bool) {
		if _, ok := asHost(s); !ok {
			return nil, false
		}
		return packet.SetRoleList{RoleList: orEmpty(list)}, true
	}
}

func buildExcludedRoles(roles []state.RoleListEntry) builder {
	roles = slices.Clone(roles)
	return func(s state.State) (packet.ToServer, bool) {
		if _, ok := asHost(s); !ok {
			return nil, false
		}
		return packet.SetExcludedRoles{Roles: orEmpty(roles)}, true
	}
}

// buildJudgement needs a living player who is not the one on trial.
func buildJudgement(v state.Verdict) builder {
	return func(s state.State) (packet.ToServer, bool) {
		g, me, ok := asLiving(s)
		if !ok || !v.Valid() || !inPhase(g, state.PhaseJudgement) {
			return nil, false
		}
		if g.PlayerOnTrial != nil && *g.PlayerOnTrial == me.Index {
			return nil, false
		}
		return packet.Judgement{Verdict: v}, true
	}
}

// buildVote with a nil votee withdraws the current vote.
func buildVote(votee *state.PlayerIndex) builder {
	if votee != nil {
		v := *votee
		votee = &v
	}
	return func(s state.State) (packet.ToServer, bool) {
		g, me, ok := asLiving(s)
		if !ok || !inPhase(g, state.PhaseVoting) {
			return nil, false
		}
		if votee != nil {
			if !g.ValidIndex(*votee) || *votee == me.Index || !g.Players[*votee].Alive {
				return nil, false
			}
		}
		return packet.Vote{PlayerIndex: votee}, true
	}
}

func buildTarget(targets []state.PlayerIndex) builder {
	targets = slices.Clone(targets)
	return func(s state.State) (packet.ToServer, bool) {
		g, _, ok := asLiving(s)
		if !ok || !inPhase(g, state.PhaseNight) {
			return nil, false
		}
		for _, t := range targets {
			if !g.ValidIndex(t) {
				return nil, false
			}
		}
		return packet.Target{PlayerIndexList: orEmpty(targets)}, true
	}
}

func buildDayTarget(target state.PlayerIndex) builder {
	return func(s state.State) (packet.ToServer, bool) {
		g, _, ok := asLiving(s)
		if !ok || g.Phase == nil || !g.Phase.IsDay() || !g.ValidIndex(target) {
			return nil, false
		}
		return packet.DayTarget{PlayerIndex: target}, true
	}
}

func buildSaveWill(will string) builder {
	return func(s state.State) (packet.ToServer, bool) {
		if _, _, ok := asPlayer(s); !ok {
			return nil, false
		}
		return packet.SaveWill{Will: will}, true
	}
}

func buildSaveNotes(notes string) builder {
	return func(s state.State) (packet.ToServer, bool) {
		if _, _, ok := asPlayer(s); !ok {
			return nil, false
		}
		return packet.SaveNotes{Notes: notes}, true
	}
}

func buildSaveCrossedOutOutlines(outlines []int) builder {
	outlines = slices.Clone(outlines)
	return func(s state.State) (packet.ToServer, bool) {
		if _, _, ok := asPlayer(s); !ok {
			return nil, false
		}
		return packet.SaveCrossedOutOutlines{CrossedOutOutlines: orEmpty(outlines)}, true
	}
}

// buildSaveDeathNote clears the death note when note is empty.
func buildSaveDeathNote(note string) builder {
	return func(s state.State) (packet.ToServer, bool) {
		if _, _, ok := asPlayer(s); !ok {
			return nil, false
		}
		if note == "" {
			return packet.SaveDeathNote{}, true
		}
		return packet.SaveDeathNote{DeathNote: &note}, true
	}
}

func buildSendMessage(text string) builder {
	return func(s state.State) (packet.ToServer, bool) {
		g, _, ok := asPlayer(s)
		if !ok || strings.TrimSpace(text) == "" {
			return nil, false
		}
		return packet.SendMessage{Text: state.ReplaceMentions(text, g.PlayerNames())}, true
	}
}

func buildSendWhisper(to state.PlayerIndex, text string) builder {
	return func(s state.State) (packet.ToServer, bool) {
		g, me, ok := asPlayer(s)
		if !ok || !g.ValidIndex(to) || to == me.Index || strings.TrimSpace(text) == "" {
			return nil, false
		}
		return packet.SendWhisper{PlayerIndex: to, Text: state.ReplaceMentions(text, g.PlayerNames())}, true
	}
}

func buildVoteFastForward(fastForward bool) builder {
	return func(s state.State) (packet.ToServer, bool) {
		if _, _, ok := asPlayer(s); !ok {
			return nil, false
		}
		return packet.VoteFastForwardPhase{FastForward: fastForward}, true
	}
}
