package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/rs/zerolog"

	"framecore/pkg/frame"
	"framecore/pkg/stream"
	"framecore/pkg/transport"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:9400", "server address")
	format := flag.String("format", "simple", "wire format: simple, checksum32, websocket")
	payload := flag.String("payload", "ping", "payload to frame and send")
	count := flag.Int("count", 1, "number of frames to send")
	timeout := flag.Duration("timeout", 10*time.Second, "dial timeout")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	builder, err := frame.NewBuilder(*format, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("select wire format")
	}

	conn, err := net.DialTimeout("tcp", *addr, *timeout)
	if err != nil {
		log.Fatal().Err(err).Msg("dial")
	}

	var t transport.Transport = transport.NewConn(conn)
	if v := os.Getenv("FRAMED_KEY_HEX"); v != "" {
		key, err := hex.DecodeString(v)
		if err != nil || len(key) != 32 {
			log.Fatal().Msg("FRAMED_KEY_HEX must be 64 hex characters")
		}
		t, err = transport.EstablishSecure(t, key, false)
		if err != nil {
			log.Fatal().Err(err).Msg("secure session")
		}
	}

	st, err := stream.New(stream.Options{Transport: t, Builder: builder})
	if err != nil {
		log.Fatal().Err(err).Msg("stream setup")
	}
	defer st.Shutdown()

	for i := 0; i < *count; i++ {
		msg := fmt.Sprintf("%s %d", *payload, i)
		if _, err := st.Send([]byte(msg)); err != nil {
			log.Fatal().Err(err).Msg("send")
		}
	}

	received := 0
	for received < *count {
		if err := st.Recv(); err != nil {
			if errors.Is(err, stream.ErrPeerClosed) {
				log.Fatal().Int("received", received).Msg("server closed early")
			}
			log.Fatal().Err(err).Msg("recv")
		}
		for _, f := range st.DrainRxQueue() {
			log.Info().Str("echo", string(f.Payload())).Msg("frame received")
			received++
		}
	}
}
