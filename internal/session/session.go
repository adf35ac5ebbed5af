package session

import (
	"context"
	"errors"

	"github.com/DoyleJ11/mafia-client/internal/manager"
	"github.com/DoyleJ11/mafia-client/internal/reconnect"
	"github.com/DoyleJ11/mafia-client/internal/state"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var ErrNoSession = errors.New("no saved session")

// Game is the part of the game manager the session layer drives.
type Game interface {
	Connect(ctx context.Context, code state.RoomCode) error
	Rejoin(ctx context.Context, code state.RoomCode, id state.PlayerID) error
	Host(ctx context.Context) error
	Leave(ctx context.Context) error
	Credentials() (state.RoomCode, state.PlayerID, bool)
}

// Store persists reconnect credentials per profile.
type Store interface {
	Save(ctx context.Context, profile string, c reconnect.Credentials) error
	Load(ctx context.Context, profile string) (reconnect.Credentials, bool, error)
	Delete(ctx context.Context, profile string) error
}

// Session joins rooms for one profile, resuming a saved seat when it can.
type Session struct {
	game    Game
	store   Store
	profile string
	log     *zap.Logger
}

func New(game Game, store Store, profile string, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{game: game, store: store, profile: profile, log: log.With(zap.String("profile", profile))}
}

// Join enters room code. A saved seat in the same room is tried first;
// when the server refuses it the seat is forgotten and a fresh join is
// made. Any other rejoin failure is returned and the seat is kept.
func (s *Session) Join(ctx context.Context, code state.RoomCode) error {
	saved, ok, err := s.store.Load(ctx, s.profile)
	if err != nil {
		s.log.Warn("load credentials", zap.Error(err))
	}
	if ok && saved.RoomCode == code {
		err := s.game.Rejoin(ctx, code, saved.PlayerID)
		if err == nil {
			s.log.Info("rejoined", zap.Stringer("room", code))
			return s.Remember(ctx)
		}
		if !manager.Refused(err) {
			s.log.Info("rejoin failed, keeping seat", zap.Stringer("room", code), zap.Error(err))
			return err
		}
		s.log.Info("seat refused, joining fresh", zap.Stringer("room", code), zap.Error(err))
		if derr := s.store.Delete(ctx, s.profile); derr != nil {
			s.log.Warn("delete credentials", zap.Error(derr))
		}
	}
	if err := s.game.Connect(ctx, code); err != nil {
		return err
	}
	return s.Remember(ctx)
}

// Resume rejoins the saved seat. The seat is forgotten only when the
// server refuses it.
func (s *Session) Resume(ctx context.Context) error {
	saved, ok, err := s.store.Load(ctx, s.profile)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoSession
	}
	if err := s.game.Rejoin(ctx, saved.RoomCode, saved.PlayerID); err != nil {
		if !manager.Refused(err) {
			return err
		}
		return multierr.Append(err, s.store.Delete(ctx, s.profile))
	}
	return s.Remember(ctx)
}

// Host opens a new room. Its seat is saved once the server assigns an id;
// call Remember after the yourId event.
func (s *Session) Host(ctx context.Context) error {
	if err := s.game.Host(ctx); err != nil {
		return err
	}
	return s.Remember(ctx)
}

// Remember saves the current seat. It does nothing before the server has
// issued a player id.
func (s *Session) Remember(ctx context.Context) error {
	code, id, ok := s.game.Credentials()
	if !ok {
		return nil
	}
	return s.store.Save(ctx, s.profile, reconnect.Credentials{RoomCode: code, PlayerID: id})
}

// Leave leaves the room and forgets the seat.
func (s *Session) Leave(ctx context.Context) error {
	return multierr.Combine(s.game.Leave(ctx), s.store.Delete(ctx, s.profile))
}
