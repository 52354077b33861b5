package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/simviewer/go/clients/engine_client"
	"github.com/mcdev12/simviewer/go/internal/animation"
	"github.com/mcdev12/simviewer/go/internal/archive"
	"github.com/mcdev12/simviewer/go/internal/gateway"
	"github.com/mcdev12/simviewer/go/internal/inspect"
	"github.com/mcdev12/simviewer/go/internal/playback"
	"github.com/mcdev12/simviewer/go/internal/relay"
)

type Options struct {
	ConfigPath string
	Headless   bool
	ReplayID   string
	SessionID  string
}

type Services struct {
	Conn         *gateway.ConnectionManager
	Controller   *playback.Controller
	Interpolator *animation.Interpolator
	Relay        *relay.Relay
	Recorder     *archive.Recorder
	Store        *archive.Store
	Server       *http.Server

	database *sql.DB
}

// setupServices wires the pipeline: socket → controller → observers
// (relay, archive) plus the inspect server. In replay mode the controller
// is seeded from the archive and no session is opened.
func setupServices(ctx context.Context, config *Config, opts Options) (*Services, error) {
	s := &Services{}
	var observers []playback.Observer

	if config.Archive.Enabled || opts.ReplayID != "" {
		database, store, err := setupDatabase(ctx)
		if err != nil {
			return nil, err
		}
		s.database = database
		s.Store = store
	}
	if config.Archive.Enabled && opts.ReplayID == "" {
		s.Recorder = archive.NewRecorder(s.Store, 0)
		observers = append(observers, s.Recorder)
	}

	if config.Relay.Enabled && opts.ReplayID == "" {
		r, err := relay.Connect(ctx, config.Relay.NATS)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to start relay: %w", err)
		}
		// The worker outlives the signal context so Close can drain the queue
		r.Start(context.Background())
		s.Relay = r
		observers = append(observers, r)
	}

	s.Conn = gateway.NewConnectionManager(config.connectionConfig())
	s.Controller = playback.NewController(s.Conn, config.Viewer.BufferCapacity, observers...)

	if config.Viewer.Interpolate && !opts.Headless {
		s.Interpolator = animation.NewInterpolator(clockwork.NewRealClock(), config.Viewer.FrameInterval, config.Viewer.LerpRate)
	}

	if opts.ReplayID != "" {
		snapshots, err := loadReplay(ctx, s.Store, opts.ReplayID)
		if err == nil {
			err = s.Controller.LoadHistory(snapshots)
		}
		if err != nil {
			s.Close()
			return nil, err
		}
	} else if err := s.connect(ctx, config, opts.SessionID); err != nil {
		s.Close()
		return nil, err
	}

	// A nil *archive.Store must not become a non-nil interface
	var plays inspect.PlayLister
	if s.Store != nil {
		plays = s.Store
	}
	s.Server = setupServer(config.Inspect.Addr, inspect.NewHandler(s.Controller, plays))
	return s, nil
}

func (s *Services) connect(ctx context.Context, config *Config, sessionID string) error {
	if sessionID == "" {
		client := engine_client.NewEngineClient(config.Engine.URL)
		session, err := client.CreateSession(ctx, engine_client.CreateSessionRequest{
			OffensePlay: config.Engine.OffensePlay,
			DefensePlay: config.Engine.DefensePlay,
		})
		if err != nil {
			return err
		}
		sessionID = session.SessionID
	}

	if s.Relay != nil {
		s.Relay.SetSession(sessionID)
	}
	if s.Recorder != nil {
		s.Recorder.SetSession(sessionID)
	}
	// A failed dial is reported to the controller as a disconnect and shown
	// in the error banner, so the viewer keeps running.
	if err := s.Conn.Connect(ctx, sessionID); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("engine socket not connected")
	}
	return nil
}

// Close tears everything down: the socket first so no further messages
// arrive, then the animation loop, then the observers.
func (s *Services) Close() {
	if s.Conn != nil {
		s.Conn.Disconnect()
	}
	if s.Interpolator != nil {
		s.Interpolator.Stop()
	}
	if s.Server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.Server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("inspect server shutdown failed")
		}
		cancel()
	}
	if s.Relay != nil {
		s.Relay.Close()
	}
	if s.Recorder != nil {
		s.Recorder.Close()
	}
	if s.database != nil {
		if err := s.database.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}
}
