package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DoyleJ11/mafia-client/internal/config"
	"github.com/DoyleJ11/mafia-client/internal/conn"
	"github.com/DoyleJ11/mafia-client/internal/httpapi"
	"github.com/DoyleJ11/mafia-client/internal/manager"
	"github.com/DoyleJ11/mafia-client/internal/packet"
	"github.com/DoyleJ11/mafia-client/internal/reconnect"
	"github.com/DoyleJ11/mafia-client/internal/session"
	"github.com/DoyleJ11/mafia-client/internal/state"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type options struct {
	env  string
	room string
	host bool
	name string
}

func main() {
	var opts options
	flag.StringVar(&opts.env, "env", ".env", "path to a .env file")
	flag.StringVar(&opts.room, "room", "", "room code to join")
	flag.BoolVar(&opts.host, "host", false, "host a new lobby")
	flag.StringVar(&opts.name, "name", "", "name to set once in the lobby")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(opts options) error {
	if err := config.LoadDotEnv(opts.env); err != nil {
		return fmt.Errorf("load %s: %w", opts.env, err)
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := newLogger(cfg.LogDevelopment)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := reconnect.Open(cfg.ReconnectDSN, cfg.ReconnectTTL, log)
	if err != nil {
		return err
	}

	dialer := conn.NewDialer(cfg.ServerURL, log)
	m := manager.New(ctx, manager.DialerFunc(func(ctx context.Context, h manager.Handler) (manager.Conn, error) {
		c, err := dialer.Dial(ctx, h)
		if err != nil {
			return nil, err
		}
		return c, nil
	}), cfg.Manager(), log)
	sess := session.New(m, store, cfg.Profile, log)

	sub := m.Subscribe(func(ev manager.EventType) {
		switch ev {
		case manager.EventType(packet.TypeYourID):
			// yourId can arrive after the join was accepted.
			go func() {
				if err := sess.Remember(ctx); err != nil {
					log.Warn("save reconnect credentials", zap.Error(err))
				}
			}()
		case manager.EventType(packet.TypeGameOver):
			log.Info("game over")
		case manager.EventDisconnect:
			log.Warn("disconnected from server")
		case manager.EventTick:
			return
		}
		log.Debug("event", zap.String("type", string(ev)))
	})

	err = enter(ctx, sess, opts)
	if err == nil && opts.name != "" {
		m.SendSetName(opts.name)
	}
	if err == nil {
		err = serve(ctx, cfg, m, sess, log)
	}

	m.Unsubscribe(sub)
	return multierr.Combine(err, m.Close(), store.Close())
}

func newLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// enter joins, hosts or resumes depending on the flags.
func enter(ctx context.Context, sess *session.Session, opts options) error {
	switch {
	case opts.host:
		return sess.Host(ctx)
	case opts.room != "":
		code, err := state.ParseRoomCode(opts.room)
		if err != nil {
			return err
		}
		return sess.Join(ctx, code)
	default:
		err := sess.Resume(ctx)
		if errors.Is(err, session.ErrNoSession) {
			return errors.New("nothing to resume: pass -room or -host")
		}
		return err
	}
}

func serve(ctx context.Context, cfg config.Config, m *manager.Manager, sess *session.Session, log *zap.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if cfg.DebugAddr != "" {
		srv := &http.Server{
			Addr:              cfg.DebugAddr,
			Handler:           httpapi.SetupRoutes(m),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			log.Info("debug api listening", zap.String("addr", cfg.DebugAddr))
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), 3*time.Second)
			defer done()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		defer cancel()
		return repl(ctx, m, sess, os.Stdin, os.Stdout)
	})
	return g.Wait()
}
