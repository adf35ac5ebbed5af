package state

import (
	"encoding/json"
	"slices"
)

type Role string

const (
	RoleConsigliere  Role = "consigliere"
	RoleConsort      Role = "consort"
	RoleDoctor       Role = "doctor"
	RoleEscort       Role = "escort"
	RoleGodfather    Role = "godfather"
	RoleSheriff      Role = "sheriff"
	RoleVeteran      Role = "veteran"
	RoleVigilante    Role = "vigilante"
	RoleTrueWildcard Role = "trueWildcard"
)

type Faction string

const (
	FactionTown    Faction = "town"
	FactionMafia   Faction = "mafia"
	FactionNeutral Faction = "neutral"
)

// AllRoles is the role catalog in display order.
var AllRoles = []Role{
	RoleDoctor,
	RoleEscort,
	RoleSheriff,
	RoleVeteran,
	RoleVigilante,
	RoleConsigliere,
	RoleConsort,
	RoleGodfather,
	RoleTrueWildcard,
}

var roleFactions = map[Role]Faction{
	RoleDoctor:       FactionTown,
	RoleEscort:       FactionTown,
	RoleSheriff:      FactionTown,
	RoleVeteran:      FactionTown,
	RoleVigilante:    FactionTown,
	RoleConsigliere:  FactionMafia,
	RoleConsort:      FactionMafia,
	RoleGodfather:    FactionMafia,
	RoleTrueWildcard: FactionNeutral,
}

// Faction returns the faction r belongs to, or "" for roles this client does
// not know about.
func (r Role) Faction() Faction { return roleFactions[r] }

type RoleListEntryType string

const (
	EntryExact   RoleListEntryType = "exact"
	EntryFaction RoleListEntryType = "faction"
	EntryAny     RoleListEntryType = "any"
)

// RoleListEntry is one slot of the role list: an exact role, any role of a
// faction, or any role at all.
type RoleListEntry struct {
	Type    RoleListEntryType `json:"type"`
	Role    Role              `json:"role,omitempty"`
	Faction Faction           `json:"faction,omitempty"`
}

func ExactRole(r Role) RoleListEntry       { return RoleListEntry{Type: EntryExact, Role: r} }
func FactionRoles(f Faction) RoleListEntry { return RoleListEntry{Type: EntryFaction, Faction: f} }
func AnyRole() RoleListEntry               { return RoleListEntry{Type: EntryAny} }

// Roles returns every catalog role the entry can produce.
func (e RoleListEntry) Roles() []Role {
	switch e.Type {
	case EntryExact:
		if _, ok := roleFactions[e.Role]; ok {
			return []Role{e.Role}
		}
	case EntryFaction:
		var out []Role
		for _, r := range AllRoles {
			if r.Faction() == e.Faction {
				out = append(out, r)
			}
		}
		return out
	case EntryAny:
		return slices.Clone(AllRoles)
	}
	return nil
}

// RolesFromRoleList returns the roles that can appear in a game built from
// roleList once excluded entries are removed, in catalog order.
func RolesFromRoleList(roleList, excluded []RoleListEntry) []Role {
	possible := map[Role]bool{}
	for _, e := range roleList {
		for _, r := range e.Roles() {
			possible[r] = true
		}
	}
	for _, e := range excluded {
		for _, r := range e.Roles() {
			delete(possible, r)
		}
	}
	out := []Role{}
	for _, r := range AllRoles {
		if possible[r] {
			out = append(out, r)
		}
	}
	return out
}

// RoleConfig returns the role list and exclusions mirrored in a lobby or
// game. ok is false in the other states.
func RoleConfig(s State) (roleList, excluded []RoleListEntry, ok bool) {
	switch s := s.(type) {
	case *LobbyState:
		return s.RoleList, s.ExcludedRoles, true
	case *GameState:
		return s.RoleList, s.ExcludedRoles, true
	}
	return nil, nil, false
}

// RolesComplement returns catalog roles not present in roles.
func RolesComplement(roles []Role) []Role {
	out := []Role{}
	for _, r := range AllRoles {
		if !slices.Contains(roles, r) {
			out = append(out, r)
		}
	}
	return out
}

// RoleState is the server's view of the local player's role. Only the role
// type is interpreted; the rest of the object is kept verbatim.
type RoleState struct {
	Type Role
	Raw  json.RawMessage
}

func (s *RoleState) UnmarshalJSON(data []byte) error {
	var head struct {
		Type Role `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	s.Type = head.Type
	s.Raw = slices.Clone(data)
	return nil
}

func (s RoleState) MarshalJSON() ([]byte, error) {
	if len(s.Raw) > 0 {
		return s.Raw, nil
	}
	return json.Marshal(struct {
		Type Role `json:"type"`
	}{s.Type})
}
