package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"

	log "github.com/jensneuse/abstractlogger"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unitecms/contentgraph/pkg/content"
	"github.com/unitecms/contentgraph/pkg/content/badgerstore"
	"github.com/unitecms/contentgraph/pkg/domaindef"
	"github.com/unitecms/contentgraph/pkg/graphql"
	"github.com/unitecms/contentgraph/pkg/identity"
	"github.com/unitecms/contentgraph/pkg/schema"
)

// settings is the resolved configuration of a command run.
type settings struct {
	Organization      string               `mapstructure:"organization"`
	OrganizationTitle string               `mapstructure:"organization_title"`
	Domains           []string             `mapstructure:"domains"`
	Fixtures          []string             `mapstructure:"fixtures"`
	DataDir           string               `mapstructure:"data_dir"`
	LogLevel          string               `mapstructure:"log_level"`
	ListenAddr        string               `mapstructure:"listen_addr"`
	APIKeys           []*identity.APIKey   `mapstructure:"api_keys"`
	Engine            graphql.EngineConfig `mapstructure:",squash"`
}

func loadSettings() (settings, error) {
	var s settings
	if err := viper.Unmarshal(&s); err != nil {
		return s, errors.Wrap(err, "decode config")
	}
	if err := s.Engine.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

func newLogger(level string) (*zap.Logger, log.Logger, error) {
	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	logger, err := config.Build()
	if err != nil {
		return nil, nil, err
	}
	return logger, log.NewZapLogger(logger, log.DebugLevel), nil
}

// provision reads the domain documents and registers them as one organization.
func provision(s settings, documents []string) (*schema.Registry, *schema.Organization, error) {
	if len(documents) == 0 {
		return nil, nil, fmt.Errorf("no domain documents given")
	}
	data := make([][]byte, 0, len(documents))
	for _, file := range documents {
		document, err := os.ReadFile(file)
		if err != nil {
			return nil, nil, err
		}
		data = append(data, document)
	}
	registry := schema.NewRegistry()
	org, err := domaindef.Provision(registry, s.Organization, s.OrganizationTitle, data...)
	if err != nil {
		return nil, nil, err
	}
	return registry, org, nil
}

// pickDomain returns the domain named identifier or the first domain if identifier is empty.
func pickDomain(org *schema.Organization, identifier string) (*schema.Domain, error) {
	if identifier == "" {
		return org.Domains[0], nil
	}
	return org.Domain(identifier)
}

// openStore opens the badger store in s.DataDir or a memory store and loads the fixtures.
func openStore(ctx context.Context, s settings, logger log.Logger) (content.Store, func() error, error) {
	var (
		store   content.Store
		closeFn = func() error { return nil }
	)
	if s.DataDir == "" {
		store = content.NewMemoryStore()
	} else {
		badger, err := badgerstore.Open(s.DataDir)
		if err != nil {
			return nil, nil, err
		}
		store, closeFn = badger, badger.Close
	}

	for _, file := range s.Fixtures {
		data, err := os.ReadFile(file)
		if err != nil {
			_ = closeFn()
			return nil, nil, err
		}
		n, err := content.LoadFixtures(ctx, store, s.Organization, bytes.NewReader(data))
		if err != nil {
			_ = closeFn()
			return nil, nil, errors.Wrapf(err, "fixtures %s", file)
		}
		logger.Info("fixtures loaded",
			log.String("file", file),
			log.Int("items", n),
		)
	}
	return store, closeFn, nil
}
