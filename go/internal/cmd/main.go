package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/simviewer/go/internal/field"
	"github.com/mcdev12/simviewer/go/internal/render"
	"github.com/mcdev12/simviewer/go/internal/viewer"
)

func main() {
	envErr := godotenv.Load()
	setupLogging()
	if envErr != nil {
		log.Warn().Err(envErr).Msg("could not load .env file")
	}

	var opts Options
	flag.StringVar(&opts.ConfigPath, "config", getEnv("VIEWER_CONFIG", ""), "path to the YAML config file")
	flag.BoolVar(&opts.Headless, "headless", false, "run without a window, inspect API only")
	flag.StringVar(&opts.ReplayID, "replay", "", "archived play id to replay instead of a live session")
	flag.StringVar(&opts.SessionID, "session", "", "existing engine session id; a new session is created when empty")
	flag.Parse()

	config, err := loadConfig(opts.ConfigPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services, err := setupServices(ctx, config, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start viewer")
	}
	defer services.Close()

	go serve(services.Server)

	if opts.Headless {
		runHeadless(ctx, services)
		return
	}
	if err := runWindow(ctx, config, services, opts.ReplayID != ""); err != nil {
		log.Error().Err(err).Msg("viewer window failed")
	}
}

func setupLogging() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	level, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

func runHeadless(ctx context.Context, services *Services) {
	log.Info().Msg("running headless")
	services.Conn.Run(ctx, services.Controller.HandleMessage)
	log.Info().Msg("shutting down")
}

func runWindow(ctx context.Context, config *Config, services *Services, replay bool) error {
	presets, err := config.presets()
	if err != nil {
		return err
	}
	zoom, err := field.ParseZoomMode(config.Viewer.Zoom)
	if err != nil {
		return err
	}
	transform := field.NewTransform(config.Viewer.Width, config.Viewer.Height, presets)

	opts := viewer.Options{
		Interpolator: services.Interpolator,
		TrailLength:  config.Viewer.TrailLength,
	}
	if !replay {
		opts.Source = services.Conn
	}
	if services.Interpolator != nil {
		services.Interpolator.Start(ctx)
	}

	game := viewer.NewGame(
		viewer.New(services.Controller, render.NewRenderer(transform, zoom), opts),
		config.Viewer.Width,
		config.Viewer.Height,
	)
	game.StopOn(ctx.Done())

	ebiten.SetWindowTitle("Sim Viewer")
	ebiten.SetWindowSize(config.Viewer.Width, config.Viewer.Height)
	return ebiten.RunGame(game)
}
