package manager

import (
	"errors"
	"fmt"

	"github.com/DoyleJ11/mafia-client/internal/packet"
)

// Join errors. Connect, Rejoin and Host return one of these, possibly
// wrapped; match with errors.Is.
var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room is full")
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrNetwork            = errors.New("network error")
	ErrTimeout            = errors.New("timed out waiting for the server")

	// ErrSeatRefused marks a rejoin the server turned down because the
	// seat is gone or taken. It is always wrapped with ErrNetwork.
	ErrSeatRefused = errors.New("seat refused")
)

var (
	ErrRequestPending = errors.New("another join request is pending")
	ErrClosed         = errors.New("manager closed")
)

func rejectError(reason packet.RejectJoinReason) error {
	switch reason {
	case packet.RejectRoomDoesntExist:
		return ErrRoomNotFound
	case packet.RejectRoomFull:
		return ErrRoomFull
	case packet.RejectGameAlreadyStarted:
		return ErrGameAlreadyStarted
	case packet.RejectPlayerDoesntExist, packet.RejectPlayerTaken:
		return fmt.Errorf("%w: %w: %s", ErrNetwork, ErrSeatRefused, reason)
	}
	return fmt.Errorf("%w: join rejected: %s", ErrNetwork, reason)
}

func networkError(err error) error {
	if err == nil {
		return fmt.Errorf("%w: connection closed", ErrNetwork)
	}
	return fmt.Errorf("%w: %w", ErrNetwork, err)
}

// Refused reports whether err is the server turning a join down for good,
// as opposed to a timeout or a dropped connection that may pass.
func Refused(err error) bool {
	return errors.Is(err, ErrRoomNotFound) ||
		errors.Is(err, ErrRoomFull) ||
		errors.Is(err, ErrGameAlreadyStarted) ||
		errors.Is(err, ErrSeatRefused)
}
