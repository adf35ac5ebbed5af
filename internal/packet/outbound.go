package packet

import "github.com/DoyleJ11/mafia-client/internal/state"

// Client -> server
const (
	TypeHost                   Type = "host"
	TypeJoin                   Type = "join"
	TypeRejoin                 Type = "rejoin"
	TypeLeave                  Type = "leave"
	TypeSetName                Type = "setName"
	TypeReadyUp                Type = "readyUp"
	TypeSetPhaseTime           Type = "setPhaseTime"
	TypeSetPhaseTimes          Type = "setPhaseTimes"
	TypeSetRoleList            Type = "setRoleList"
	TypeSetExcludedRoles       Type = "setExcludedRoles"
	TypeJudgement              Type = "judgement"
	TypeVote                   Type = "vote"
	TypeTarget                 Type = "target"
	TypeDayTarget              Type = "dayTarget"
	TypeSaveWill               Type = "saveWill"
	TypeSaveNotes              Type = "saveNotes"
	TypeSaveCrossedOutOutlines Type = "saveCrossedOutOutlines"
	TypeSaveDeathNote          Type = "saveDeathNote"
	TypeSendMessage            Type = "sendMessage"
	TypeSendWhisper            Type = "sendWhisper"
	TypeVoteFastForwardPhase   Type = "voteFastForwardPhase"
)

// ToServer is a packet sent by the client.
type ToServer interface {
	PacketType() Type
	isToServer()
}

type Host struct{}

type Join struct {
	RoomCode state.RoomCode `json:"roomCode"`
}

type Rejoin struct {
	RoomCode state.RoomCode `json:"roomCode"`
	PlayerID state.PlayerID `json:"playerId"`
}

type Leave struct{}

type SetName struct {
	Name string `json:"name"`
}

type ReadyUp struct {
	Ready bool `json:"ready"`
}

type SetPhaseTime struct {
	Phase state.Phase `json:"phase"`
	Time  int         `json:"time"`
}

type SetPhaseTimes struct {
	PhaseTimeSettings state.PhaseTimes `json:"phaseTimeSettings"`
}

type SetRoleList struct {
	RoleList []state.RoleListEntry `json:"roleList"`
}

type SetExcludedRoles struct {
	Roles []state.RoleListEntry `json:"roles"`
}

type Judgement struct {
	Verdict state.Verdict `json:"verdict"`
}

// Vote with a nil PlayerIndex withdraws the vote.
type Vote struct {
	PlayerIndex *state.PlayerIndex `json:"playerIndex"`
}

type Target struct {
	PlayerIndexList []state.PlayerIndex `json:"playerIndexList"`
}

type DayTarget struct {
	PlayerIndex state.PlayerIndex `json:"playerIndex"`
}

type SaveWill struct {
	Will string `json:"will"`
}

type SaveNotes struct {
	Notes string `json:"notes"`
}

type SaveCrossedOutOutlines struct {
	CrossedOutOutlines []int `json:"crossedOutOutlines"`
}

type SaveDeathNote struct {
	DeathNote *string `json:"deathNote"`
}

type SendMessage struct {
	Text string `json:"text"`
}

type SendWhisper struct {
	PlayerIndex state.PlayerIndex `json:"playerIndex"`
	Text        string            `json:"text"`
}

type VoteFastForwardPhase struct {
	FastForward bool `json:"fastForward"`
}

func (Host) PacketType() Type                   { return TypeHost }
func (Join) PacketType() Type                   { return TypeJoin }
func (Rejoin) PacketType() Type                 { return TypeRejoin }
func (Leave) PacketType() Type                  { return TypeLeave }
func (SetName) PacketType() Type                { return TypeSetName }
func (ReadyUp) PacketType() Type                { return TypeReadyUp }
func (SetPhaseTime) PacketType() Type           { return TypeSetPhaseTime }
func (SetPhaseTimes) PacketType() Type          { return TypeSetPhaseTimes }
func (SetRoleList) PacketType() Type            { return TypeSetRoleList }
func (SetExcludedRoles) PacketType() Type       { return TypeSetExcludedRoles }
func (Judgement) PacketType() Type              { return TypeJudgement }
func (Vote) PacketType() Type                   { return TypeVote }
func (Target) PacketType() Type                 { return TypeTarget }
func (DayTarget) PacketType() Type              { return TypeDayTarget }
func (SaveWill) PacketType() Type               { return TypeSaveWill }
func (SaveNotes) PacketType() Type              { return TypeSaveNotes }
func (SaveCrossedOutOutlines) PacketType() Type { return TypeSaveCrossedOutOutlines }
func (SaveDeathNote) PacketType() Type          { return TypeSaveDeathNote }
func (SendMessage) PacketType() Type            { return TypeSendMessage }
func (SendWhisper) PacketType() Type            { return TypeSendWhisper }
func (VoteFastForwardPhase) PacketType() Type   { return TypeVoteFastForwardPhase }

func (Host) isToServer()                   {}
func (Join) isToServer()                   {}
func (Rejoin) isToServer()                 {}
func (Leave) isToServer()                  {}
func (SetName) isToServer()                {}
func (ReadyUp) isToServer()                {}
func (StartGame) isToServer()              {}
func (SetPhaseTime) isToServer()           {}
func (SetPhaseTimes) isToServer()          {}
func (SetRoleList) isToServer()            {}
func (SetExcludedRoles) isToServer()       {}
func (Judgement) isToServer()              {}
func (Vote) isToServer()                   {}
func (Target) isToServer()                 {}
func (DayTarget) isToServer()              {}
func (SaveWill) isToServer()               {}
func (SaveNotes) isToServer()              {}
func (SaveCrossedOutOutlines) isToServer() {}
func (SaveDeathNote) isToServer()          {}
func (SendMessage) isToServer()            {}
func (SendWhisper) isToServer()            {}
func (VoteFastForwardPhase) isToServer()   {}
