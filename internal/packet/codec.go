package packet

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMissingType = errors.New("packet has no type")

type envelope struct {
	Type Type `json:"type"`
}

var inboundDecoders = map[Type]func([]byte) (ToClient, error){
	TypeAcceptJoin:               decodeAs[AcceptJoin],
	TypeRejectJoin:               decodeAs[RejectJoin],
	TypeAcceptHost:               decodeAs[AcceptHost],
	TypeYourID:                   decodeAs[YourID],
	TypeLobbyName:                decodeAs[LobbyName],
	TypeLobbyPlayers:             decodeAs[LobbyPlayers],
	TypePlayersHost:              decodeAs[PlayersHost],
	TypePlayersReady:             decodeAs[PlayersReady],
	TypeRejectStart:              decodeAs[RejectStart],
	TypeRoleList:                 decodeAs[RoleList],
	TypeExcludedRoles:            decodeAs[ExcludedRoles],
	TypePhaseTime:                decodeAs[PhaseTime],
	TypePhaseTimes:               decodeAs[PhaseTimes],
	TypeStartGame:                decodeAs[StartGame],
	TypeGamePlayers:              decodeAs[GamePlayers],
	TypeYourPlayerIndex:          decodeAs[YourPlayerIndex],
	TypePlayerButtons:            decodeAs[PlayerButtons],
	TypePlayerAlive:              decodeAs[PlayerAlive],
	TypePlayerVotes:              decodeAs[PlayerVotes],
	TypeYourRoleLabels:           decodeAs[YourRoleLabels],
	TypeYourPlayerTags:           decodeAs[YourPlayerTags],
	TypePhase:                    decodeAs[Phase],
	TypePhaseTimeLeft:            decodeAs[PhaseTimeLeft],
	TypePlayerOnTrial:            decodeAs[PlayerOnTrial],
	TypeAddChatMessages:          decodeAs[AddChatMessages],
	TypeAddGrave:                 decodeAs[AddGrave],
	TypeYourRoleState:            decodeAs[YourRoleState],
	TypeYourWill:                 decodeAs[YourWill],
	TypeYourNotes:                decodeAs[YourNotes],
	TypeYourCrossedOutOutlines:   decodeAs[YourCrossedOutOutlines],
	TypeYourDeathNote:            decodeAs[YourDeathNote],
	TypeYourTarget:               decodeAs[YourTarget],
	TypeYourVoting:               decodeAs[YourVoting],
	TypeYourJudgement:            decodeAs[YourJudgement],
	TypeYourVoteFastForwardPhase: decodeAs[YourVoteFastForwardPhase],
	TypeGameOver:                 decodeAs[GameOver],
}

func decodeAs[T ToClient](data []byte) (ToClient, error) {
	var p T
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return p, nil
}

// InboundTypes returns every server packet type this client understands.
func InboundTypes() []Type {
	out := make([]Type, 0, len(inboundDecoders))
	for t := range inboundDecoders {
		out = append(out, t)
	}
	return out
}

// PeekType reads only the discriminant of a packet.
func PeekType(data []byte) (Type, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", err
	}
	if env.Type == "" {
		return "", ErrMissingType
	}
	return env.Type, nil
}

// Decode parses a server packet. Types this client does not know decode to
// Unknown so newer servers do not break older clients; malformed JSON is an
// error.
func Decode(data []byte) (ToClient, error) {
	t, err := PeekType(data)
	if err != nil {
		return nil, err
	}
	decode, ok := inboundDecoders[t]
	if !ok {
		return Unknown{Type: t, Raw: bytes.Clone(data)}, nil
	}
	p, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", t, err)
	}
	return p, nil
}

// Encode serializes a client packet with its "type" field first.
func Encode(p ToServer) ([]byte, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	if len(body) < 2 || body[0] != '{' {
		return nil, fmt.Errorf("encode %s: payload is not an object", p.PacketType())
	}
	head, err := json.Marshal(envelope{Type: p.PacketType()})
	if err != nil {
		return nil, err
	}
	if bytes.Equal(body, []byte("{}")) {
		return head, nil
	}
	// {"type":"x"} and {"a":1} become {"type":"x","a":1}
	out := make([]byte, 0, len(head)+len(body))
	out = append(out, head[:len(head)-1]...)
	out = append(out, ',')
	out = append(out, body[1:]...)
	return out, nil
}
