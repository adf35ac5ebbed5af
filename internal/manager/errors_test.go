package manager

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/DoyleJ11/mafia-client/internal/packet"
	"github.com/stretchr/testify/assert"
)

func TestRefused(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"room gone", rejectError(packet.RejectRoomDoesntExist), true},
		{"room full", rejectError(packet.RejectRoomFull), true},
		{"started", rejectError(packet.RejectGameAlreadyStarted), true},
		{"seat gone", rejectError(packet.RejectPlayerDoesntExist), true},
		{"seat taken", rejectError(packet.RejectPlayerTaken), true},
		{"busy", rejectError(packet.RejectServerBusy), false},
		{"timeout", ErrTimeout, false},
		{"ctx timeout", fmt.Errorf("%w: %w", ErrTimeout, context.DeadlineExceeded), false},
		{"dropped", networkError(errors.New("EOF")), false},
		{"closed", networkError(nil), false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Refused(tc.err))
		})
	}
}

func TestSeatRefusalIsStillANetworkError(t *testing.T) {
	err := rejectError(packet.RejectPlayerTaken)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.ErrorIs(t, err, ErrSeatRefused)
	assert.ErrorContains(t, err, "playerTaken")
}
