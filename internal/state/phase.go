package state

import "time"

type Phase string

const (
	PhaseBriefing   Phase = "briefing"
	PhaseMorning    Phase = "morning"
	PhaseDiscussion Phase = "discussion"
	PhaseVoting     Phase = "voting"
	PhaseTestimony  Phase = "testimony"
	PhaseJudgement  Phase = "judgement"
	PhaseEvening    Phase = "evening"
	PhaseNight      Phase = "night"
)

// Phases lists every fixed phase in the order they occur.
var Phases = []Phase{
	PhaseBriefing,
	PhaseMorning,
	PhaseDiscussion,
	PhaseVoting,
	PhaseTestimony,
	PhaseJudgement,
	PhaseEvening,
	PhaseNight,
}

func (p Phase) String() string { return string(p) }

func (p Phase) Valid() bool {
	switch p {
	case PhaseBriefing, PhaseMorning, PhaseDiscussion, PhaseVoting,
		PhaseTestimony, PhaseJudgement, PhaseEvening, PhaseNight:
		return true
	}
	return false
}

// IsDay reports whether day abilities can be used during p.
func (p Phase) IsDay() bool {
	return p.Valid() && p != PhaseBriefing && p != PhaseNight
}

// PhaseTimes holds the configured length of each phase in seconds.
type PhaseTimes struct {
	Briefing   int `json:"briefing"`
	Morning    int `json:"morning"`
	Discussion int `json:"discussion"`
	Voting     int `json:"voting"`
	Testimony  int `json:"testimony"`
	Judgement  int `json:"judgement"`
	Evening    int `json:"evening"`
	Night      int `json:"night"`
}

func DefaultLobbyPhaseTimes() PhaseTimes {
	return PhaseTimes{
		Briefing:   20,
		Morning:    5,
		Discussion: 45,
		Voting:     30,
		Testimony:  20,
		Judgement:  20,
		Evening:    7,
		Night:      37,
	}
}

func DefaultGamePhaseTimes() PhaseTimes {
	return PhaseTimes{
		Briefing:   20,
		Morning:    15,
		Discussion: 46,
		Voting:     30,
		Testimony:  24,
		Judgement:  20,
		Evening:    10,
		Night:      37,
	}
}

func (t PhaseTimes) Seconds(p Phase) int {
	switch p {
	case PhaseBriefing:
		return t.Briefing
	case PhaseMorning:
		return t.Morning
	case PhaseDiscussion:
		return t.Discussion
	case PhaseVoting:
		return t.Voting
	case PhaseTestimony:
		return t.Testimony
	case PhaseJudgement:
		return t.Judgement
	case PhaseEvening:
		return t.Evening
	case PhaseNight:
		return t.Night
	}
	return 0
}

func (t PhaseTimes) Duration(p Phase) time.Duration {
	return time.Duration(t.Seconds(p)) * time.Second
}

// With returns a copy of t with phase p set to seconds. Unknown phases leave
// t unchanged.
func (t PhaseTimes) With(p Phase, seconds int) PhaseTimes {
	switch p {
	case PhaseBriefing:
		t.Briefing = seconds
	case PhaseMorning:
		t.Morning = seconds
	case PhaseDiscussion:
		t.Discussion = seconds
	case PhaseVoting:
		t.Voting = seconds
	case PhaseTestimony:
		t.Testimony = seconds
	case PhaseJudgement:
		t.Judgement = seconds
	case PhaseEvening:
		t.Evening = seconds
	case PhaseNight:
		t.Night = seconds
	}
	return t
}

type Verdict string

const (
	VerdictGuilty   Verdict = "guilty"
	VerdictInnocent Verdict = "innocent"
	VerdictAbstain  Verdict = "abstain"
)

func (v Verdict) Valid() bool {
	return v == VerdictGuilty || v == VerdictInnocent || v == VerdictAbstain
}
