package main

import (
	"encoding/hex"
	"flag"
	"net"
	"os"

	"github.com/rs/zerolog"

	"framecore/internal/server"
	"framecore/pkg/frame"
)

func main() {
	cfgPath := flag.String("config", "", "optional TOML config file")
	listen := flag.String("listen", "", "listen address (overrides config)")
	format := flag.String("format", "", "wire format: simple, checksum32, websocket")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg := defaultConfig()
	if *cfgPath != "" {
		var err error
		cfg, err = loadConfig(*cfgPath)
		if err != nil {
			log.Fatal().Err(err).Msg("load config")
		}
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *format != "" {
		cfg.Format = *format
	}
	if v := os.Getenv("FRAMED_KEY_HEX"); v != "" {
		cfg.KeyHex = v
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("parse log level")
	}
	log = log.Level(level)

	builder, err := frame.NewBuilder(cfg.Format, cfg.MaxPayload)
	if err != nil {
		log.Fatal().Err(err).Msg("select wire format")
	}

	var key []byte
	if cfg.KeyHex != "" {
		key, err = hex.DecodeString(cfg.KeyHex)
		if err != nil || len(key) != 32 {
			log.Fatal().Msg("key must be 64 hex characters")
		}
	}

	srv, err := server.New(server.Options{
		Builder:     builder,
		Key:         key,
		AcceptRate:  cfg.AcceptRate,
		AcceptBurst: cfg.AcceptBurst,
		Log:         log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("server setup")
	}

	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		log.Fatal().Err(err).Msg("listen")
	}
	log.Info().
		Str("listen", cfg.Listen).
		Str("format", cfg.Format).
		Bool("secure", key != nil).
		Msg("framed echo server up")
	if err := srv.Serve(ln); err != nil {
		log.Fatal().Err(err).Msg("serve")
	}
}
