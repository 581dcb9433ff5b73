package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/jensneuse/abstractlogger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/unitecms/contentgraph/pkg/graphql"
	graphqlhttp "github.com/unitecms/contentgraph/pkg/http"
	"github.com/unitecms/contentgraph/pkg/identity"
)

const shutdownTimeout = 10 * time.Second

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serves POST /{organization}/{domain}/api and /metrics",
	Example: `contentgraph serve --domains marketing.json --fixtures content.json --config keys.yaml
CONTENTGRAPH_MAX_NESTING_LEVEL=3 contentgraph serve --domains marketing.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings()
		if err != nil {
			return err
		}
		zapLogger, logger, err := newLogger(s.LogLevel)
		if err != nil {
			return err
		}
		defer zapLogger.Sync() // nolint

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return serve(ctx, s, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen_addr", ":8080", "address the HTTP server listens on")
	_ = viper.BindPFlag("listen_addr", serveCmd.Flags().Lookup("listen_addr"))
}

func serve(ctx context.Context, s settings, logger log.Logger) error {
	registry, org, err := provision(s, s.Domains)
	if err != nil {
		return err
	}
	store, closeStore, err := openStore(ctx, s, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error("serve.closeStore", log.Error(err))
		}
	}()

	engine, err := graphql.NewEngine(s.Engine, registry, store, logger)
	if err != nil {
		return err
	}

	keyring := identity.NewKeyring(s.APIKeys...)
	if len(s.APIKeys) == 0 {
		logger.Warn("no api_keys configured, every query will be rejected")
	}

	metricsRegistry := prometheus.NewRegistry()
	metricsRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := graphqlhttp.NewMetrics(metricsRegistry)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{}))
	mux.Handle("/", graphqlhttp.NewGraphqlHTTPHandler(engine, keyring, metrics, logger))

	server := &http.Server{
		Addr:              s.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening",
			log.String("addr", s.ListenAddr),
			log.String("organization", org.Identifier),
			log.Int("domains", len(org.Domains)),
			log.Int("maxNestingLevel", s.Engine.MaxNestingLevel),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	stats := engine.Stats()
	logger.Info("stopped",
		log.Int("executions", int(stats.Executions)),
		log.Int("parseFailures", int(stats.ParseFailures)),
		log.Int("sentinels", int(stats.Sentinels)),
	)
	return err
}
