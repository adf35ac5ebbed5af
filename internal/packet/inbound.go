package packet

import (
	"encoding/json"

	"github.com/DoyleJ11/mafia-client/internal/state"
)

// Type is the "type" discriminant carried by every packet.
type Type string

// Server -> client
const (
	TypeAcceptJoin               Type = "acceptJoin"
	TypeRejectJoin               Type = "rejectJoin"
	TypeAcceptHost               Type = "acceptHost"
	TypeYourID                   Type = "yourId"
	TypeLobbyName                Type = "lobbyName"
	TypeLobbyPlayers             Type = "lobbyPlayers"
	TypePlayersHost              Type = "playersHost"
	TypePlayersReady             Type = "playersReady"
	TypeRejectStart              Type = "rejectStart"
	TypeRoleList                 Type = "roleList"
	TypeExcludedRoles            Type = "excludedRoles"
	TypePhaseTime                Type = "phaseTime"
	TypePhaseTimes               Type = "phaseTimes"
	TypeStartGame                Type = "startGame"
	TypeGamePlayers              Type = "gamePlayers"
	TypeYourPlayerIndex          Type = "yourPlayerIndex"
	TypePlayerButtons            Type = "playerButtons"
	TypePlayerAlive              Type = "playerAlive"
	TypePlayerVotes              Type = "playerVotes"
	TypeYourRoleLabels           Type = "yourRoleLabels"
	TypeYourPlayerTags           Type = "yourPlayerTags"
	TypePhase                    Type = "phase"
	TypePhaseTimeLeft            Type = "phaseTimeLeft"
	TypePlayerOnTrial            Type = "playerOnTrial"
	TypeAddChatMessages          Type = "addChatMessages"
	TypeAddGrave                 Type = "addGrave"
	TypeYourRoleState            Type = "yourRoleState"
	TypeYourWill                 Type = "yourWill"
	TypeYourNotes                Type = "yourNotes"
	TypeYourCrossedOutOutlines   Type = "yourCrossedOutOutlines"
	TypeYourDeathNote            Type = "yourDeathNote"
	TypeYourTarget               Type = "yourTarget"
	TypeYourVoting               Type = "yourVoting"
	TypeYourJudgement            Type = "yourJudgement"
	TypeYourVoteFastForwardPhase Type = "yourVoteFastForwardPhase"
	TypeGameOver                 Type = "gameOver"
)

// ToClient is a packet sent by the server. The set of implementations is
// closed; Visitor has one method per implementation.
type ToClient interface {
	PacketType() Type
	Accept(v Visitor)
	isToClient()
}

// Visitor handles every inbound packet type. Adding a packet type adds a
// method here, which breaks every visitor that does not handle it yet.
type Visitor interface {
	VisitAcceptJoin(AcceptJoin)
	VisitRejectJoin(RejectJoin)
	VisitAcceptHost(AcceptHost)
	VisitYourID(YourID)
	VisitLobbyName(LobbyName)
	VisitLobbyPlayers(LobbyPlayers)
	VisitPlayersHost(PlayersHost)
	VisitPlayersReady(PlayersReady)
	VisitRejectStart(RejectStart)
	VisitRoleList(RoleList)
	VisitExcludedRoles(ExcludedRoles)
	VisitPhaseTime(PhaseTime)
	VisitPhaseTimes(PhaseTimes)
	VisitStartGame(StartGame)
	VisitGamePlayers(GamePlayers)
	VisitYourPlayerIndex(YourPlayerIndex)
	VisitPlayerButtons(PlayerButtons)
	VisitPlayerAlive(PlayerAlive)
	VisitPlayerVotes(PlayerVotes)
	VisitYourRoleLabels(YourRoleLabels)
	VisitYourPlayerTags(YourPlayerTags)
	VisitPhase(Phase)
	VisitPhaseTimeLeft(PhaseTimeLeft)
	VisitPlayerOnTrial(PlayerOnTrial)
	VisitAddChatMessages(AddChatMessages)
	VisitAddGrave(AddGrave)
	VisitYourRoleState(YourRoleState)
	VisitYourWill(YourWill)
	VisitYourNotes(YourNotes)
	VisitYourCrossedOutOutlines(YourCrossedOutOutlines)
	VisitYourDeathNote(YourDeathNote)
	VisitYourTarget(YourTarget)
	VisitYourVoting(YourVoting)
	VisitYourJudgement(YourJudgement)
	VisitYourVoteFastForwardPhase(YourVoteFastForwardPhase)
	VisitGameOver(GameOver)
	VisitUnknown(Unknown)
}

type AcceptJoin struct {
	RoomCode  state.RoomCode `json:"roomCode"`
	InGame    bool           `json:"inGame"`
	PlayerID  state.PlayerID `json:"playerId"`
	Spectator bool           `json:"spectator"`
}

type RejectJoinReason string

const (
	RejectRoomDoesntExist    RejectJoinReason = "roomDoesntExist"
	RejectRoomFull           RejectJoinReason = "roomFull"
	RejectGameAlreadyStarted RejectJoinReason = "gameAlreadyStarted"
	RejectPlayerDoesntExist  RejectJoinReason = "playerDoesntExist"
	RejectPlayerTaken        RejectJoinReason = "playerTaken"
	RejectServerBusy         RejectJoinReason = "serverBusy"
)

type RejectJoin struct {
	Reason RejectJoinReason `json:"reason"`
}

type AcceptHost struct {
	RoomCode state.RoomCode `json:"roomCode"`
}

type YourID struct {
	PlayerID state.PlayerID `json:"playerId"`
}

type LobbyName struct {
	Name string `json:"name"`
}

type LobbyPlayers struct {
	Players map[state.PlayerID]state.LobbyPlayer `json:"players"`
}

type PlayersHost struct {
	Hosts []state.PlayerID `json:"hosts"`
}

type PlayersReady struct {
	Ready []state.PlayerID `json:"ready"`
}

type RejectStart struct {
	Reason string `json:"reason"`
}

type RoleList struct {
	RoleList []state.RoleListEntry `json:"roleList"`
}

type ExcludedRoles struct {
	Roles []state.RoleListEntry `json:"roles"`
}

type PhaseTime struct {
	Phase state.Phase `json:"phase"`
	Time  int         `json:"time"`
}

type PhaseTimes struct {
	PhaseTimeSettings state.PhaseTimes `json:"phaseTimeSettings"`
}

// StartGame travels both ways: the host asks for it and the server announces it.
type StartGame struct{}

type GamePlayers struct {
	Players []string `json:"players"`
}

type YourPlayerIndex struct {
	PlayerIndex state.PlayerIndex `json:"playerIndex"`
}

type PlayerButtons struct {
	Buttons []state.Buttons `json:"buttons"`
}

type PlayerAlive struct {
	Alive []bool `json:"alive"`
}

type PlayerVotes struct {
	VotesForPlayer map[state.PlayerIndex]int `json:"votesForPlayer"`
}

type YourRoleLabels struct {
	RoleLabels map[state.PlayerIndex]state.Role `json:"roleLabels"`
}

type YourPlayerTags struct {
	PlayerTags map[state.PlayerIndex][]state.Tag `json:"playerTags"`
}

type Phase struct {
	Phase       state.Phase `json:"phase"`
	DayNumber   int         `json:"dayNumber"`
	FastForward bool        `json:"fastForward,omitempty"`
}

type PhaseTimeLeft struct {
	SecondsLeft int `json:"secondsLeft"`
}

type PlayerOnTrial struct {
	PlayerIndex *state.PlayerIndex `json:"playerIndex"`
}

type AddChatMessages struct {
	ChatMessages []state.ChatMessage `json:"chatMessages"`
}

type AddGrave struct {
	Grave state.Grave `json:"grave"`
}

type YourRoleState struct {
	RoleState state.RoleState `json:"roleState"`
}

type YourWill struct {
	Will string `json:"will"`
}

type YourNotes struct {
	Notes string `json:"notes"`
}

type YourCrossedOutOutlines struct {
	CrossedOutOutlines []int `json:"crossedOutOutlines"`
}

type YourDeathNote struct {
	DeathNote *string `json:"deathNote"`
}

type YourTarget struct {
	PlayerIndices []state.PlayerIndex `json:"playerIndices"`
}

type YourVoting struct {
	PlayerIndex *state.PlayerIndex `json:"playerIndex"`
}

type YourJudgement struct {
	Verdict state.Verdict `json:"verdict"`
}

type YourVoteFastForwardPhase struct {
	FastForward bool `json:"fastForward"`
}

type GameOver struct {
	Reason string `json:"reason"`
}

// Unknown is a packet whose type this client was not built with.
type Unknown struct {
	Type Type
	Raw  json.RawMessage
}

func (AcceptJoin) PacketType() Type               { return TypeAcceptJoin }
func (RejectJoin) PacketType() Type               { return TypeRejectJoin }
func (AcceptHost) PacketType() Type               { return TypeAcceptHost }
func (YourID) PacketType() Type                   { return TypeYourID }
func (LobbyName) PacketType() Type                { return TypeLobbyName }
func (LobbyPlayers) PacketType() Type             { return TypeLobbyPlayers }
func (PlayersHost) PacketType() Type              { return TypePlayersHost }
func (PlayersReady) PacketType() Type             { return TypePlayersReady }
func (RejectStart) PacketType() Type              { return TypeRejectStart }
func (RoleList) PacketType() Type                 { return TypeRoleList }
func (ExcludedRoles) PacketType() Type            { return TypeExcludedRoles }
func (PhaseTime) PacketType() Type                { return TypePhaseTime }
func (PhaseTimes) PacketType() Type               { return TypePhaseTimes }
func (StartGame) PacketType() Type                { return TypeStartGame }
func (GamePlayers) PacketType() Type              { return TypeGamePlayers }
func (YourPlayerIndex) PacketType() Type          { return TypeYourPlayerIndex }
func (PlayerButtons) PacketType() Type            { return TypePlayerButtons }
func (PlayerAlive) PacketType() Type              { return TypePlayerAlive }
func (PlayerVotes) PacketType() Type              { return TypePlayerVotes }
func (YourRoleLabels) PacketType() Type           { return TypeYourRoleLabels }
func (YourPlayerTags) PacketType() Type           { return TypeYourPlayerTags }
func (Phase) PacketType() Type                    { return TypePhase }
func (PhaseTimeLeft) PacketType() Type            { return TypePhaseTimeLeft }
func (PlayerOnTrial) PacketType() Type            { return TypePlayerOnTrial }
func (AddChatMessages) PacketType() Type          { return TypeAddChatMessages }
func (AddGrave) PacketType() Type                 { return TypeAddGrave }
func (YourRoleState) PacketType() Type            { return TypeYourRoleState }
func (YourWill) PacketType() Type                 { return TypeYourWill }
func (YourNotes) PacketType() Type                { return TypeYourNotes }
func (YourCrossedOutOutlines) PacketType() Type   { return TypeYourCrossedOutOutlines }
func (YourDeathNote) PacketType() Type            { return TypeYourDeathNote }
func (YourTarget) PacketType() Type               { return TypeYourTarget }
func (YourVoting) PacketType() Type               { return TypeYourVoting }
func (YourJudgement) PacketType() Type            { return TypeYourJudgement }
func (YourVoteFastForwardPhase) PacketType() Type { return TypeYourVoteFastForwardPhase }
func (GameOver) PacketType() Type                 { return TypeGameOver }
func (u Unknown) PacketType() Type                { return u.Type }

func (p AcceptJoin) Accept(v Visitor)               { v.VisitAcceptJoin(p) }
func (p RejectJoin) Accept(v Visitor)               { v.VisitRejectJoin(p) }
func (p AcceptHost) Accept(v Visitor)               { v.VisitAcceptHost(p) }
func (p YourID) Accept(v Visitor)                   { v.VisitYourID(p) }
func (p LobbyName) Accept(v Visitor)                { v.VisitLobbyName(p) }
func (p LobbyPlayers) Accept(v Visitor)             { v.VisitLobbyPlayers(p) }
func (p PlayersHost) Accept(v Visitor)              { v.VisitPlayersHost(p) }
func (p PlayersReady) Accept(v Visitor)             { v.VisitPlayersReady(p) }
func (p RejectStart) Accept(v Visitor)              { v.VisitRejectStart(p) }
func (p RoleList) Accept(v Visitor)                 { v.VisitRoleList(p) }
func (p ExcludedRoles) Accept(v Visitor)            { v.VisitExcludedRoles(p) }
func (p PhaseTime) Accept(v Visitor)                { v.VisitPhaseTime(p) }
func (p PhaseTimes) Accept(v Visitor)               { v.VisitPhaseTimes(p) }
func (p StartGame) Accept(v Visitor)                { v.VisitStartGame(p) }
func (p GamePlayers) Accept(v Visitor)              { v.VisitGamePlayers(p) }
func (p YourPlayerIndex) Accept(v Visitor)          { v.VisitYourPlayerIndex(p) }
func (p PlayerButtons) Accept(v Visitor)            { v.VisitPlayerButtons(p) }
func (p PlayerAlive) Accept(v Visitor)              { v.VisitPlayerAlive(p) }
func (p PlayerVotes) Accept(v Visitor)              { v.VisitPlayerVotes(p) }
func (p YourRoleLabels) Accept(v Visitor)           { v.VisitYourRoleLabels(p) }
func (p YourPlayerTags) Accept(v Visitor)           { v.VisitYourPlayerTags(p) }
func (p Phase) Accept(v Visitor)                    { v.VisitPhase(p) }
func (p PhaseTimeLeft) Accept(v Visitor)            { v.VisitPhaseTimeLeft(p) }
func (p PlayerOnTrial) Accept(v Visitor)            { v.VisitPlayerOnTrial(p) }
func (p AddChatMessages) Accept(v Visitor)          { v.VisitAddChatMessages(p) }
func (p AddGrave) Accept(v Visitor)                 { v.VisitAddGrave(p) }
func (p YourRoleState) Accept(v Visitor)            { v.VisitYourRoleState(p) }
func (p YourWill) Accept(v Visitor)                 { v.VisitYourWill(p) }
func (p YourNotes) Accept(v Visitor)                { v.VisitYourNotes(p) }
func (p YourCrossedOutOutlines) Accept(v Visitor)   { v.VisitYourCrossedOutOutlines(p) }
func (p YourDeathNote) Accept(v Visitor)            { v.VisitYourDeathNote(p) }
func (p YourTarget) Accept(v Visitor)               { v.VisitYourTarget(p) }
func (p YourVoting) Accept(v Visitor)               { v.VisitYourVoting(p) }
func (p YourJudgement) Accept(v Visitor)            { v.VisitYourJudgement(p) }
func (p YourVoteFastForwardPhase) Accept(v Visitor) { v.VisitYourVoteFastForwardPhase(p) }
func (p GameOver) Accept(v Visitor)                 { v.VisitGameOver(p) }
func (p Unknown) Accept(v Visitor)                  { v.VisitUnknown(p) }

func (AcceptJoin) isToClient()               {}
func (RejectJoin) isToClient()               {}
func (AcceptHost) isToClient()               {}
func (YourID) isToClient()                   {}
func (LobbyName) isToClient()                {}
func (LobbyPlayers) isToClient()             {}
func (PlayersHost) isToClient()              {}
func (PlayersReady) isToClient()             {}
func (RejectStart) isToClient()              {}
func (RoleList) isToClient()                 {}
func (ExcludedRoles) isToClient()            {}
func (PhaseTime) isToClient()                {}
func (PhaseTimes) isToClient()               {}
func (StartGame) isToClient()                {}
func (GamePlayers) isToClient()              {}
func (YourPlayerIndex) isToClient()          {}
func (PlayerButtons) isToClient()            {}
func (PlayerAlive) isToClient()              {}
func (PlayerVotes) isToClient()              {}
func (YourRoleLabels) isToClient()           {}
func (YourPlayerTags) isToClient()           {}
func (Phase) isToClient()                    {}
func (PhaseTimeLeft) isToClient()            {}
func (PlayerOnTrial) isToClient()            {}
func (AddChatMessages) isToClient()          {}
func (AddGrave) isToClient()                 {}
func (YourRoleState) isToClient()            {}
func (YourWill) isToClient()                 {}
func (YourNotes) isToClient()                {}
func (YourCrossedOutOutlines) isToClient()   {}
func (YourDeathNote) isToClient()            {}
func (YourTarget) isToClient()               {}
func (YourVoting) isToClient()               {}
func (YourJudgement) isToClient()            {}
func (YourVoteFastForwardPhase) isToClient() {}
func (GameOver) isToClient()                 {}
func (Unknown) isToClient()                  {}
