package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/do/v2"
	"github.com/urfave/cli/v3"

	"github.com/web3tea/fixture-sentinel/config"
	"github.com/web3tea/fixture-sentinel/di"
	"github.com/web3tea/fixture-sentinel/pkg/log"
	"github.com/web3tea/fixture-sentinel/service"
)

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "Run the fixture feed service",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to a TOML or JSON config file",
		},
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		injector := di.SetupContainer(c.String("config"))

		cfg, err := do.Invoke[*config.Config](injector)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		log.SetGlobalLevel(log.ParseLevel(cfg.LogLevel))

		svc, err := do.Invoke[*service.Service](injector)
		if err != nil {
			return fmt.Errorf("failed to build service: %w", err)
		}

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

		if err := svc.Start(ctx); err != nil {
			return fmt.Errorf("failed to start service: %w", err)
		}
		if svc.Status() == service.StatusDegraded {
			log.Warnf("Feed subscription is down; calendar will not follow changes until a restart")
		}

		if cfg.Metrics.Enabled {
			go serveOps(cfg.Metrics.Addr, svc)
		}

		log.Infof("Fixture sentinel started")

		sig := <-sigChan
		log.Infof("Received signal: %s", sig.String())

		if err := svc.Stop(); err != nil {
			return fmt.Errorf("failed to stop service: %w", err)
		}

		log.Infof("Fixture sentinel stopped")
		return nil
	},
}

// serveOps exposes Prometheus metrics and a small health endpoint.
func serveOps(addr string, svc *service.Service) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		status := svc.Status()

		w.Header().Set("Content-Type", "application/json")
		if status == service.StatusDegraded || status == service.StatusError {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":     status,
			"subscriber": svc.Subscriber.Status(),
			"stats":      svc.Subscriber.Statistics(),
		})
	})

	log.Infof("Serving metrics on http://%s/metrics", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Errorf("Ops server failed: %v", err)
	}
}
