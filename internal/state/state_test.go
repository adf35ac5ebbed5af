package state

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomCodeBase18(t *testing.T) {
	cases := []struct {
		code RoomCode
		text string
	}{
		{0, "0"},
		{17, "h"},
		{18, "10"},
		{42, "26"},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			assert.Equal(t, tc.text, tc.code.String())
			got, err := ParseRoomCode(tc.text)
			require.NoError(t, err)
			assert.Equal(t, tc.code, got)
		})
	}

	got, err := ParseRoomCode(" H ")
	require.NoError(t, err)
	assert.Equal(t, RoomCode(17), got)

	_, err = ParseRoomCode("zz")
	assert.Error(t, err)
}

func TestPhaseTimes(t *testing.T) {
	times := DefaultLobbyPhaseTimes()
	assert.Equal(t, 30*time.Second, times.Duration(PhaseVoting))
	assert.Equal(t, 0, times.Seconds(Phase("recess")))

	updated := times.With(PhaseNight, 60)
	assert.Equal(t, 60, updated.Night)
	assert.Equal(t, 37, times.Night, "With must not modify the receiver")
	assert.Equal(t, times, times.With(Phase("recess"), 5))
}

func TestPhaseIsDay(t *testing.T) {
	assert.False(t, PhaseBriefing.IsDay())
	assert.False(t, PhaseNight.IsDay())
	assert.False(t, Phase("").IsDay())
	for _, p := range []Phase{PhaseMorning, PhaseDiscussion, PhaseVoting, PhaseTestimony, PhaseJudgement, PhaseEvening} {
		assert.True(t, p.IsDay(), p)
	}
}

func TestRolesFromRoleList(t *testing.T) {
	list := []RoleListEntry{FactionRoles(FactionMafia), ExactRole(RoleSheriff), ExactRole("unknownRole")}
	excluded := []RoleListEntry{ExactRole(RoleConsort)}

	roles := RolesFromRoleList(list, excluded)
	assert.Equal(t, []Role{RoleSheriff, RoleConsigliere, RoleGodfather}, roles)

	complement := RolesComplement(roles)
	assert.NotContains(t, complement, RoleSheriff)
	assert.Contains(t, complement, RoleConsort)
	assert.Len(t, complement, len(AllRoles)-len(roles))

	assert.Equal(t, AllRoles, RolesFromRoleList([]RoleListEntry{AnyRole()}, nil))
}

func TestLobbySetMeKeepsInvariant(t *testing.T) {
	l := NewLobbyState(7)
	shared := l.Players

	l.SetMe(3)
	me, ok := l.Me()
	require.True(t, ok)
	assert.Equal(t, LobbyPlayer{}, me)
	assert.Empty(t, shared, "SetMe must copy the player map before adding to it")

	l.Players[3] = LobbyPlayer{Name: "ada", Host: true}
	assert.True(t, l.IsHost())
}

func TestGameMe(t *testing.T) {
	g := NewGameState(1)
	g.Players = []Player{NewPlayer("ada", 0), NewPlayer("bob", 1)}

	_, ok := g.Me()
	assert.False(t, ok, "no seat assigned yet")

	idx := PlayerIndex(1)
	g.MyIndex = &idx
	me, ok := g.Me()
	require.True(t, ok)
	assert.Equal(t, "2: bob", me.String())

	g.Spectator = true
	_, ok = g.Me()
	assert.False(t, ok)
}

func TestVisibleChat(t *testing.T) {
	g := NewGameState(1)
	g.Players = []Player{NewPlayer("Ada", 0), NewPlayer("Bob", 1)}
	var msgs []ChatMessage
	require.NoError(t, json.Unmarshal([]byte(`[
		{"variant":{"type":"normal","text":"hello from ada"}},
		{"variant":{"type":"normal","text":"bob here"}}
	]`), &msgs))
	g.ChatMessages = msgs
	assert.Equal(t, "normal", msgs[0].Type)

	assert.Len(t, g.VisibleChat(), 2)

	filter := PlayerIndex(1)
	g.ChatFilter = &filter
	visible := g.VisibleChat()
	require.Len(t, visible, 1)
	assert.Contains(t, string(visible[0].Raw), "bob here")
}

func TestVisibleChatMatchesWholeNames(t *testing.T) {
	g := NewGameState(1)
	g.Players = []Player{NewPlayer("Bo", 0), NewPlayer("Bob", 1), NewPlayer("normal", 2)}
	var msgs []ChatMessage
	require.NoError(t, json.Unmarshal([]byte(`[
		{"type":"normal","text":"bob here"},
		{"type":"normal","text":"bo says hi"},
		{"type":"normal","text":"vote BO!"},
		{"type":"normal","text":"robot"},
		{"type":"whisper","from":"bo","text":"psst"}
	]`), &msgs))
	g.ChatMessages = msgs

	filter := PlayerIndex(0)
	g.ChatFilter = &filter
	var texts []string
	for _, m := range g.VisibleChat() {
		texts = append(texts, string(m.Raw))
	}
	assert.Equal(t, []string{
		`{"type":"normal","text":"bo says hi"}`,
		`{"type":"normal","text":"vote BO!"}`,
		`{"type":"whisper","from":"bo","text":"psst"}`,
	}, texts)

	// Type tags are not chat text.
	filter = 2
	assert.Empty(t, g.VisibleChat())
}

func TestReplaceMentions(t *testing.T) {
	names := []string{"Ada", "Bob"}
	cases := []struct {
		in, want string
	}{
		{"@1 is sus", "Ada is sus"},
		{"ask @2.", "ask Bob."},
		{"@3 does not exist", "@3 does not exist"},
		{"mail@1", "mail@1"},
		{"hi @bob", "hi Bob"},
		{"@12", "@12"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, ReplaceMentions(tc.in, names))
		})
	}
}

func TestGraveDecodesTaggedUnions(t *testing.T) {
	raw := `{
		"player": 2,
		"diedPhase": "night",
		"dayNumber": 3,
		"information": {
			"type": "normal",
			"role": "sheriff",
			"will": "I checked 4",
			"deathCause": {"type": "killers", "killers": [{"type": "faction", "value": "mafia"}, {"type": "suicide"}]},
			"deathNotes": ["rip"]
		}
	}`
	var g Grave
	require.NoError(t, json.Unmarshal([]byte(raw), &g))
	assert.Equal(t, PlayerIndex(2), g.Player)
	assert.False(t, g.Information.Obscured())
	require.NotNil(t, g.Information.DeathCause)
	require.Len(t, g.Information.DeathCause.Killers, 2)

	f, ok := g.Information.DeathCause.Killers[0].Faction()
	assert.True(t, ok)
	assert.Equal(t, FactionMafia, f)
	_, ok = g.Information.DeathCause.Killers[1].Role()
	assert.False(t, ok)

	var obscured Grave
	require.NoError(t, json.Unmarshal([]byte(`{"player":0,"diedPhase":"day","dayNumber":1,"information":{"type":"obscured"}}`), &obscured))
	assert.True(t, obscured.Information.Obscured())
}

func TestRoleStateKeepsRaw(t *testing.T) {
	raw := `{"type":"veteran","alertsRemaining":1}`
	var rs RoleState
	require.NoError(t, json.Unmarshal([]byte(raw), &rs))
	assert.Equal(t, RoleVeteran, rs.Type)
	assert.Equal(t, FactionTown, rs.Type.Faction())

	out, err := json.Marshal(rs)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}

func TestRoleConfig(t *testing.T) {
	l := NewLobbyState(1)
	l.RoleList = []RoleListEntry{AnyRole()}
	list, excluded, ok := RoleConfig(l)
	require.True(t, ok)
	assert.Equal(t, []RoleListEntry{AnyRole()}, list)
	assert.Empty(t, excluded)

	g := NewGameState(1)
	g.ExcludedRoles = []RoleListEntry{ExactRole(RoleVeteran)}
	_, excluded, ok = RoleConfig(g)
	require.True(t, ok)
	assert.Equal(t, []RoleListEntry{ExactRole(RoleVeteran)}, excluded)

	_, _, ok = RoleConfig(OutsideLobby{})
	assert.False(t, ok)
}

func TestDeathCauseDescribe(t *testing.T) {
	cases := []struct {
		cause DeathCause
		want  string
	}{
		{DeathCause{Type: DeathLynching}, "lynched"},
		{DeathCause{Type: DeathLeftTown}, "left town"},
		{DeathCause{Type: DeathKillers}, "killed"},
		{DeathCause{Type: DeathKillers, Killers: []GraveKiller{
			{Type: KillerFaction, Value: "mafia"},
			{Type: KillerRole, Value: "vigilante"},
			{Type: KillerSuicide},
			{Type: KillerQuit},
		}}, "killed by mafia, vigilante, suicide, quit"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.cause.Describe())
	}
}
