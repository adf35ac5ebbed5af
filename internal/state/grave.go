package state

import "strings"

type GravePhase string

const (
	GravePhaseDay   GravePhase = "day"
	GravePhaseNight GravePhase = "night"
)

// Grave is the death record of a player. Information starts obscured for
// some deaths and may be revealed by a later grave packet.
type Grave struct {
	Player      PlayerIndex      `json:"player"`
	DiedPhase   GravePhase       `json:"diedPhase"`
	DayNumber   int              `json:"dayNumber"`
	Information GraveInformation `json:"information"`
}

type GraveInformationType string

const (
	GraveObscured GraveInformationType = "obscured"
	GraveNormal   GraveInformationType = "normal"
)

// GraveInformation is {"type":"obscured"} or a normal grave carrying the
// revealed role, will, death cause and death notes.
type GraveInformation struct {
	Type       GraveInformationType `json:"type"`
	Role       Role                 `json:"role,omitempty"`
	Will       string               `json:"will,omitempty"`
	DeathCause *DeathCause          `json:"deathCause,omitempty"`
	DeathNotes []string             `json:"deathNotes,omitempty"`
}

func (g GraveInformation) Obscured() bool { return g.Type != GraveNormal }

type DeathCauseType string

const (
	DeathLynching DeathCauseType = "lynching"
	DeathLeftTown DeathCauseType = "leftTown"
	DeathKillers  DeathCauseType = "killers"
)

type DeathCause struct {
	Type    DeathCauseType `json:"type"`
	Killers []GraveKiller  `json:"killers,omitempty"`
}

type GraveKillerType string

const (
	KillerFaction GraveKillerType = "faction"
	KillerSuicide GraveKillerType = "suicide"
	KillerQuit    GraveKillerType = "quit"
	KillerRole    GraveKillerType = "role"
)

// GraveKiller attributes a death. Value holds the faction or role for the
// faction and role kinds and is empty otherwise.
type GraveKiller struct {
	Type  GraveKillerType `json:"type"`
	Value string          `json:"value,omitempty"`
}

func (k GraveKiller) Role() (Role, bool) {
	return Role(k.Value), k.Type == KillerRole
}

func (k GraveKiller) Faction() (Faction, bool) {
	return Faction(k.Value), k.Type == KillerFaction
}

func (k GraveKiller) String() string {
	if r, ok := k.Role(); ok {
		return string(r)
	}
	if f, ok := k.Faction(); ok {
		return string(f)
	}
	return string(k.Type)
}

// Describe renders the cause as shown on a grave, e.g. "killed by mafia,
// suicide".
func (c DeathCause) Describe() string {
	switch c.Type {
	case DeathLynching:
		return "lynched"
	case DeathLeftTown:
		return "left town"
	case DeathKillers:
		if len(c.Killers) == 0 {
			return "killed"
		}
		names := make([]string, len(c.Killers))
		for i, k := range c.Killers {
			names[i] = k.String()
		}
		return "killed by " + strings.Join(names, ", ")
	}
	return string(c.Type)
}
