package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-ctap/vkapi/pkg/config"
	"github.com/go-ctap/vkapi/pkg/driver"
	"github.com/go-ctap/vkapi/pkg/dynload"
	"github.com/go-ctap/vkapi/pkg/fprint"
	"github.com/go-ctap/vkapi/pkg/options"
	"github.com/go-ctap/vkapi/pkg/sim"
	"github.com/go-ctap/vkapi/pkg/sugar"
	"github.com/go-ctap/vkapi/pkg/vkproxy"
)

// session wraps a sugar session so the proxy connection is closed with it.
type session struct {
	*sugar.Session
	closeEngine func() error
}

func (s *session) Close() error {
	err := s.Session.Close()
	if s.closeEngine != nil {
		if cerr := s.closeEngine(); err == nil {
			err = cerr
		}
	}
	return err
}

func openSession(ctx context.Context, cfg config.Config, logger *slog.Logger) (*session, error) {
	opts := []options.Option{
		options.WithLogger(logger),
		options.WithRetryPolicy(cfg.RetryPolicy()),
	}

	switch cfg.Engine.Kind {
	case config.EngineSim:
		engine := sim.New(
			sim.WithDelay(cfg.SimDelay()),
			sim.WithStages(cfg.Engine.Sim.Stages),
			sim.WithLogger(logger),
		)
		sess, err := sugar.Open(engine, &fprint.Device{ID: "sim", Driver: driver.Info}, opts...)
		if err != nil {
			return nil, err
		}
		return &session{Session: sess}, nil

	case config.EngineNative:
		library := cfg.Engine.Library
		if library == "" {
			library = dynload.DefaultLibrary
		}
		engine, err := dynload.Load(library)
		if err != nil {
			return nil, err
		}
		sess, err := sugar.OpenFirst(ctx, engine, opts...)
		if err != nil {
			return nil, err
		}
		return &session{Session: sess}, nil

	case config.EngineProxy:
		client, err := vkproxy.Dial(ctx, options.WithAddress(cfg.Engine.Address), options.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("dial proxy: %w", err)
		}
		sess, err := sugar.Open(client, &fprint.Device{ID: "proxy", Driver: driver.Info}, opts...)
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		return &session{Session: sess, closeEngine: client.Close}, nil
	}
	return nil, fmt.Errorf("unknown engine kind %q", cfg.Engine.Kind)
}
