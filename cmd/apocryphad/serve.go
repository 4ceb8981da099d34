package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Gandalf-/apocrypha/document"
	"github.com/Gandalf-/apocrypha/libap/config"
	"github.com/Gandalf-/apocrypha/libap/healthserver"
	apjson "github.com/Gandalf-/apocrypha/libap/json"
	"github.com/Gandalf-/apocrypha/libap/logging"
	"github.com/Gandalf-/apocrypha/persist"
	"github.com/Gandalf-/apocrypha/server"
	"github.com/Gandalf-/apocrypha/store"
)

func init() {
	// Wire the fast JSON codec in before anything touches libap/json:
	// the persistence snapshot and --set/--edit paths are the hottest
	// JSON paths in a read-heavy store.
	apjson.SetConfig(apjson.Config{
		Marshal:       sonic.Marshal,
		MarshalIndent: sonic.ConfigDefault.MarshalIndent,
		MarshalString: func(v any) (string, error) {
			b, err := sonic.Marshal(v)
			return string(b), err
		},
		Unmarshal: sonic.Unmarshal,
		UnmarshalString: func(s string, v any) error {
			return sonic.UnmarshalString(s, v)
		},
		NewEncoder: func(w io.Writer) apjson.Encoder {
			return sonic.ConfigDefault.NewEncoder(w)
		},
		NewDecoder: func(r io.Reader) apjson.Decoder {
			return sonic.ConfigDefault.NewDecoder(r)
		},
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	applyFlagOverrides(cmd, &cfg)

	log := logging.NewLogger(&cfg.Logging)
	defer log.Sync() //nolint:errcheck

	if cfg.Host != "" {
		log.Info("advertised host for clustering mode", zap.String("host", cfg.Host))
	}

	root, err := document.Load(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("refusing to start, malformed database at %s: %w", cfg.DBPath, err)
	}
	log.Info("loaded document", zap.String("path", cfg.DBPath), zap.Int("top_level_keys", root.Value().Len()))

	s := store.New(root, cfg.CacheSize, log)

	ready := true
	healthSrv := healthserver.Start(log, cfg.HealthPort, func() bool { return ready })

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	loop := persist.New(s, cfg.DBPath, cfg.FlushInterval, log)
	g.Go(func() error {
		loop.Run(gctx)
		return nil
	})

	srv := server.New(fmt.Sprintf(":%d", cfg.Port), s, log)
	g.Go(func() error {
		return srv.Serve(gctx)
	})

	<-gctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := healthserver.Stop(shutdownCtx, healthSrv); err != nil {
		log.Warn("health server shutdown error", zap.Error(err))
	}

	return g.Wait()
}

func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if p, _ := cmd.Flags().GetInt("port"); p != 0 {
		cfg.Port = p
	}
	if c, _ := cmd.Flags().GetString("config"); c != "" {
		cfg.DBPath = c
	}
	if hp, _ := cmd.Flags().GetInt("health-port"); hp != 0 {
		cfg.HealthPort = hp
	}
	if cs, _ := cmd.Flags().GetInt("cache-size"); cs != 0 {
		cfg.CacheSize = cs
	}
	if fi, _ := cmd.Flags().GetDuration("flush-interval"); fi != 0 {
		cfg.FlushInterval = fi
	}
}
