package state

import (
	"encoding/json"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

type Buttons struct {
	DayTarget bool `json:"dayTarget"`
	Target    bool `json:"target"`
	Vote      bool `json:"vote"`
}

// Tag is a marker the server attaches to a player, e.g. "doused".
type Tag string

type Player struct {
	Name       string      `json:"name"`
	Index      PlayerIndex `json:"index"`
	Buttons    Buttons     `json:"buttons"`
	NumVoted   int         `json:"numVoted"`
	Alive      bool        `json:"alive"`
	RoleLabel  *Role       `json:"roleLabel"`
	PlayerTags []Tag       `json:"playerTags"`
	Host       bool        `json:"host"`
}

func NewPlayer(name string, index PlayerIndex) Player {
	return Player{
		Name:       name,
		Index:      index,
		Alive:      true,
		PlayerTags: []Tag{},
	}
}

func (p Player) String() string {
	return strconv.Itoa(int(p.Index)+1) + ": " + p.Name
}

// ChatMessage is a server chat message. Only its type is interpreted.
type ChatMessage struct {
	Type string
	Raw  json.RawMessage
}

func (m *ChatMessage) UnmarshalJSON(data []byte) error {
	var head struct {
		Type    string `json:"type"`
		Variant struct {
			Type string `json:"type"`
		} `json:"variant"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	m.Type = head.Type
	if m.Type == "" {
		m.Type = head.Variant.Type
	}
	m.Raw = slices.Clone(data)
	return nil
}

func (m ChatMessage) MarshalJSON() ([]byte, error) {
	if len(m.Raw) > 0 {
		return m.Raw, nil
	}
	return json.Marshal(struct {
		Type string `json:"type"`
	}{m.Type})
}

// GameState mirrors a running game as seen by one client.
type GameState struct {
	RoomCode RoomCode  `json:"roomCode"`
	MyID     *PlayerID `json:"myId"`

	// MyIndex is nil for spectators and until the server assigns a seat.
	MyIndex   *PlayerIndex `json:"myIndex"`
	Spectator bool         `json:"spectator"`

	ChatMessages []ChatMessage `json:"chatMessages"`
	Graves       []Grave       `json:"graves"`
	Players      []Player      `json:"players"`

	PlayerOnTrial *PlayerIndex  `json:"playerOnTrial"`
	Phase         *Phase        `json:"phase"`
	TimeLeft      time.Duration `json:"timeLeft"`
	DayNumber     int           `json:"dayNumber"`

	RoleState *RoleState `json:"roleState"`

	Will               string        `json:"will"`
	Notes              string        `json:"notes"`
	CrossedOutOutlines []int         `json:"crossedOutOutlines"`
	ChatFilter         *PlayerIndex  `json:"chatFilter"`
	DeathNote          string        `json:"deathNote"`
	Targets            []PlayerIndex `json:"targets"`
	Voted              *PlayerIndex  `json:"voted"`
	Judgement          Verdict       `json:"judgement"`
	FastForward        bool          `json:"fastForward"`

	RoleList      []RoleListEntry `json:"roleList"`
	ExcludedRoles []RoleListEntry `json:"excludedRoles"`
	PhaseTimes    PhaseTimes      `json:"phaseTimes"`

	Ticking  bool   `json:"ticking"`
	GameOver string `json:"gameOver,omitempty"`
}

func NewGameState(code RoomCode) *GameState {
	return &GameState{
		RoomCode:           code,
		ChatMessages:       []ChatMessage{},
		Graves:             []Grave{},
		Players:            []Player{},
		DayNumber:          1,
		CrossedOutOutlines: []int{},
		Targets:            []PlayerIndex{},
		Judgement:          VerdictAbstain,
		RoleList:           []RoleListEntry{},
		ExcludedRoles:      []RoleListEntry{},
		PhaseTimes:         DefaultGamePhaseTimes(),
		Ticking:            true,
	}
}

// Clone returns a shallow copy. Slices and pointers are shared with g and
// must be replaced, not written through.
func (g *GameState) Clone() *GameState {
	c := *g
	return &c
}

func (g *GameState) ValidIndex(i PlayerIndex) bool {
	return i >= 0 && int(i) < len(g.Players)
}

// Me returns the local player. It fails for spectators and before the
// server has assigned a seat.
func (g *GameState) Me() (Player, bool) {
	if g.Spectator || g.MyIndex == nil || !g.ValidIndex(*g.MyIndex) {
		return Player{}, false
	}
	return g.Players[*g.MyIndex], true
}

func (g *GameState) PlayerNames() []string {
	names := make([]string, len(g.Players))
	for i, p := range g.Players {
		names[i] = p.Name
	}
	return names
}

// VisibleChat applies the chat filter: with a filter set, only messages
// mentioning the filtered player's name as a whole word are kept.
func (g *GameState) VisibleChat() []ChatMessage {
	if g.ChatFilter == nil || !g.ValidIndex(*g.ChatFilter) {
		return g.ChatMessages
	}
	name := g.Players[*g.ChatFilter].Name
	if name == "" {
		return g.ChatMessages
	}
	mention := regexp.MustCompile(`(?i)(?:^|\W)` + regexp.QuoteMeta(name) + `(?:\W|$)`)
	out := []ChatMessage{}
	for _, m := range g.ChatMessages {
		if mention.MatchString(m.text()) {
			out = append(out, m)
		}
	}
	return out
}

// text joins the string values of the message, one per line, leaving out
// keys and type tags.
func (m ChatMessage) text() string {
	var v any
	if err := json.Unmarshal(m.Raw, &v); err != nil {
		return string(m.Raw)
	}
	var sb strings.Builder
	appendStrings(&sb, v)
	return sb.String()
}

func appendStrings(sb *strings.Builder, v any) {
	switch v := v.(type) {
	case string:
		sb.WriteString(v)
		sb.WriteByte('\n')
	case []any:
		for _, e := range v {
			appendStrings(sb, e)
		}
	case map[string]any:
		for k, e := range v {
			if k != "type" {
				appendStrings(sb, e)
			}
		}
	}
}
