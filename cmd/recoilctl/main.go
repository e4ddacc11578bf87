// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command recoilctl runs a producer/consumer pipeline on a recoil kernel
// and optionally serves the kernel's Prometheus metrics while it runs.
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

	"code.hybscloud.com/recoil"
	"code.hybscloud.com/recoil/observe/prom"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "recoilctl: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(cfg.LogLevel).
		With().Timestamp().Str("app", "recoilctl").Logger()

	id := uuid.New()
	reg := prometheus.NewRegistry()
	k := recoil.New(
		recoil.WithID(id),
		recoil.WithLogger(log),
		recoil.WithObserver(prom.New(reg, id)),
		recoil.WithInboxCapacity(cfg.InboxCapacity),
		recoil.WithExceptionHandler(func(s *recoil.Strand, err error) error {
			log.Warn().Uint64("strand", s.ID()).Err(err).Msg("unhandled strand failure")
			return nil
		}),
	)

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(sigCtx)
	done := make(chan struct{})

	g.Go(func() error {
		defer close(done)
		start := time.Now()
		n, err := recoil.Exec(k, pipeline(cfg, log))
		if err != nil {
			if errors.Is(err, recoil.ErrKernelStopped) && sigCtx.Err() != nil {
				log.Info().Msg("interrupted")
				return nil
			}
			return fmt.Errorf("pipeline: %w", err)
		}
		log.Info().Int("messages", n).Dur("elapsed", time.Since(start)).Msg("pipeline finished")
		return nil
	})

	g.Go(func() error {
		select {
		case <-ctx.Done():
			k.Stop()
		case <-done:
		}
		return nil
	})

	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			log.Info().Str("addr", cfg.MetricsAddr).Msg("serving metrics")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			select {
			case <-ctx.Done():
			case <-done:
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}
