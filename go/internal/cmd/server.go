package main

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/simviewer/go/internal/inspect"
)

func setupServer(addr string, handler *inspect.Handler) *http.Server {
	return inspect.NewServer(addr, handler)
}

func serve(server *http.Server) {
	log.Info().Str("addr", server.Addr).Msg("inspect API listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("inspect server failed")
	}
}
