package state

import (
	"fmt"
	"strconv"
	"strings"
)

// RoomCode is the numeric room identifier. Players see and type it in base 18.
type RoomCode uint32

const roomCodeBase = 18

func (c RoomCode) String() string {
	return strconv.FormatUint(uint64(c), roomCodeBase)
}

func ParseRoomCode(s string) (RoomCode, error) {
	n, err := strconv.ParseUint(strings.ToLower(strings.TrimSpace(s)), roomCodeBase, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid room code %q: %w", s, err)
	}
	return RoomCode(n), nil
}
