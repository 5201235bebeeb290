// Copyright (c) 2016-2019 Uber Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cmd wires every beebox component together into a running
// process: configuration load, logging, metrics, the cluster client,
// pool manager, pipeline, reaper, and ingress server.
package cmd

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/uber-go/tally"
	"go.uber.org/zap"

	"github.com/uber/beebox/ingress"
	"github.com/uber/beebox/lib/cluster"
	"github.com/uber/beebox/lib/fileindex"
	"github.com/uber/beebox/lib/healthcheck"
	"github.com/uber/beebox/lib/objectstore"
	"github.com/uber/beebox/lib/pipeline"
	"github.com/uber/beebox/lib/pool"
	"github.com/uber/beebox/lib/reaper"
	"github.com/uber/beebox/lib/tracing"
	"github.com/uber/beebox/localdb"
	"github.com/uber/beebox/metrics"
	"github.com/uber/beebox/service"
	"github.com/uber/beebox/utils/configutil"
	"github.com/uber/beebox/utils/log"
	"github.com/uber/beebox/utils/shutdown"
)

// Flags defines beebox CLI flags.
type Flags struct {
	ConfigFile string
	Cluster    string
	SelfKind   string
	SelfName   string
}

// ParseFlags parses beebox CLI flags.
func ParseFlags() *Flags {
	var flags Flags
	flag.StringVar(&flags.ConfigFile, "config", "", "configuration file path")
	flag.StringVar(&flags.Cluster, "cluster", "", "cluster name (e.g. prod01-zone1), used for metrics tagging")
	flag.StringVar(&flags.SelfKind, "self-kind", cluster.KindPod, "kind of this process's own container, used to own spawned sandboxes")
	flag.StringVar(&flags.SelfName, "self-name", "", "name of this process's own container, used to own spawned sandboxes")
	flag.Parse()
	return &flags
}

type options struct {
	config  *service.Config
	metrics tally.Scope
	logger  *zap.Logger
}

// Option defines an optional Run parameter.
type Option func(*options)

// WithConfig ignores the config flag and directly uses the provided config
// struct.
func WithConfig(c service.Config) Option {
	return func(o *options) { o.config = &c }
}

// WithMetrics ignores metrics config and directly uses the provided tally
// scope.
func WithMetrics(s tally.Scope) Option {
	return func(o *options) { o.metrics = s }
}

// WithLogger ignores logging config and directly uses the provided logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Run runs beebox to completion (i.e. until the process is killed or its
// HTTP server dies).
func Run(flags *Flags, opts ...Option) {
	var overrides options
	for _, o := range opts {
		o(&overrides)
	}

	config := setupConfiguration(flags, &overrides)
	logger := setupLogging(config, &overrides)
	defer func() {
		if logger != nil {
			logger.Sync()
		}
	}()

	stats, statsCloser := setupMetrics(config, flags, &overrides)
	defer statsCloser()

	sh := shutdown.New(context.Background())

	shutdownTracing, err := tracing.InitProvider(sh.Context(), config.Tracing)
	if err != nil {
		log.Fatalf("Error initializing tracing: %s", err)
	}
	sh.AddCleanup(func() error { return shutdownTracing(context.Background()) })

	localDB := setupLocalDB(config)
	sh.AddCleanup(localDB.Close)

	index := fileindex.New(localDB)
	store := setupObjectStore(config)
	clusterClient := setupClusterClient(config)

	selfIdentity := pool.SelfIdentity{Kind: flags.SelfKind, Name: flags.SelfName}
	if config.SelfKind != "" {
		selfIdentity.Kind = config.SelfKind
	}
	if config.SelfName != "" {
		selfIdentity.Name = config.SelfName
	}

	poolManager := pool.NewManager(config.Pool, clusterClient, selfIdentity)
	go poolManager.Replenish(sh.Context())

	pl := pipeline.New(config.Pipeline, poolManager, clusterClient, store, index)

	r := reaper.New(config.Reaper, index)
	r.Start()
	sh.AddCleanup(func() error { r.Stop(); return nil })

	monitor := healthcheck.NewMonitor(config.HealthCheck, healthcheck.Check{
		Name: "localdb",
		Run:  func() error { return localDB.Ping() },
	})

	srv, err := ingress.New(config.Ingress, pl, store, index, monitor, stats)
	if err != nil {
		log.Fatalf("Error creating ingress server: %s", err)
	}

	startServices(config, srv, sh)
}

func setupConfiguration(flags *Flags, overrides *options) service.Config {
	var config service.Config
	if overrides.config != nil {
		config = *overrides.config
	} else {
		if err := configutil.Load(flags.ConfigFile, &config); err != nil {
			panic(err)
		}
		service.ApplyEnvOverrides(&config)
	}
	return config
}

func setupLogging(config service.Config, overrides *options) *zap.Logger {
	if overrides.logger != nil {
		log.SetGlobalLogger(overrides.logger.Sugar())
		return overrides.logger
	}
	zlog := log.ConfigureLogger(config.ZapLogging)
	return zlog
}

func setupMetrics(config service.Config, flags *Flags, overrides *options) (tally.Scope, func()) {
	if overrides.metrics != nil {
		return overrides.metrics, func() {}
	}

	s, closer, err := metrics.New(config.Metrics, flags.Cluster)
	if err != nil {
		log.Fatalf("Failed to init metrics: %s", err)
	}

	go metrics.EmitVersion(s)
	return s, func() { closer.Close() }
}

func setupLocalDB(config service.Config) *sqlx.DB {
	db, err := localdb.New(config.LocalDB)
	if err != nil {
		log.Fatalf("Error creating local db: %s", err)
	}
	return db
}

func setupObjectStore(config service.Config) *objectstore.Store {
	store, err := objectstore.New(config.ObjectStore)
	if err != nil {
		log.Fatalf("Error creating object store: %s", err)
	}
	return store
}

func setupClusterClient(config service.Config) cluster.Client {
	c, err := cluster.NewK8sClient(config.Cluster)
	if err != nil {
		log.Fatalf("Error creating cluster client: %s", err)
	}
	return c
}

// startServices runs the ingress HTTP server until it dies or the process
// receives SIGINT/SIGTERM, then runs every registered shutdown cleanup.
func startServices(config service.Config, srv *ingress.Server, sh *shutdown.Handler) {
	addr := config.Ingress.Listener
	httpServer := &http.Server{Addr: addr, Handler: srv.Handler()}
	sh.AddCleanup(httpServer.Close)

	log.Infof("Starting beebox ingress server on %s", addr)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	errc := make(chan error, 1)
	go func() { errc <- httpServer.ListenAndServe() }()

	select {
	case err := <-errc:
		if err != nil && err != http.ErrServerClosed {
			log.Errorf("ingress server exited: %s", err)
		}
	case <-sigc:
		log.Info("Received shutdown signal")
	}

	sh.Shutdown()
}
