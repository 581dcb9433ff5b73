// Package graphql executes content queries for a single domain and writes the response envelope.
package graphql

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	log "github.com/jensneuse/abstractlogger"
	"go.uber.org/atomic"

	"github.com/unitecms/contentgraph/pkg/content"
	"github.com/unitecms/contentgraph/pkg/identity"
	"github.com/unitecms/contentgraph/pkg/middleware/nesting_limiter"
	"github.com/unitecms/contentgraph/pkg/resolve"
	"github.com/unitecms/contentgraph/pkg/schema"
	"github.com/unitecms/contentgraph/pkg/selection"
)

const DefaultMaxNestingLevel = 5

type EngineConfig struct {
	// MaxNestingLevel is the number of reference fields a query may cross before the
	// next reference is answered with a message object.
	MaxNestingLevel int `mapstructure:"max_nesting_level"`
	QueryCacheSize  int `mapstructure:"query_cache_size"`
}

func NewEngineConfig() EngineConfig {
	return EngineConfig{
		MaxNestingLevel: DefaultMaxNestingLevel,
		QueryCacheSize:  selection.DefaultCacheSize,
	}
}

func (c EngineConfig) Validate() error {
	if c.MaxNestingLevel < 1 {
		return fmt.Errorf("max_nesting_level must be at least 1, got %d", c.MaxNestingLevel)
	}
	if c.QueryCacheSize < 0 {
		return fmt.Errorf("query_cache_size must not be negative, got %d", c.QueryCacheSize)
	}
	return nil
}

type ExecutionResult struct {
	// ParseFailed is set when the query was answered with errors only.
	ParseFailed bool
	Sentinels   int
	Loads       int
	Errors      int
	Duration    time.Duration
}

// Stats are the totals since the engine was created.
type Stats struct {
	Executions    int64
	ParseFailures int64
	Sentinels     int64
}

type Engine struct {
	config   EngineConfig
	registry *schema.Registry
	builder  *selection.Builder
	limiter  *nesting_limiter.Limiter
	resolver *resolve.Resolver
	logger   log.Logger

	executions    *atomic.Int64
	parseFailures *atomic.Int64
	sentinels     *atomic.Int64
}

func NewEngine(config EngineConfig, registry *schema.Registry, store content.Reader, logger log.Logger) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NoopLogger
	}
	builder, err := selection.NewBuilder(config.MaxNestingLevel, config.QueryCacheSize)
	if err != nil {
		return nil, err
	}
	limiter, err := nesting_limiter.New(config.MaxNestingLevel)
	if err != nil {
		return nil, err
	}
	return &Engine{
		config:        config,
		registry:      registry,
		builder:       builder,
		limiter:       limiter,
		resolver:      resolve.New(store, limiter),
		logger:        logger,
		executions:    atomic.NewInt64(0),
		parseFailures: atomic.NewInt64(0),
		sentinels:     atomic.NewInt64(0),
	}, nil
}

func (e *Engine) Registry() *schema.Registry {
	return e.registry
}

func (e *Engine) Config() EngineConfig {
	return e.config
}

// RequestContext looks up the organization and domain a request is addressed to.
func (e *Engine) RequestContext(organization, domain string, actor identity.Actor) (identity.Context, error) {
	org, dom, err := e.registry.Domain(organization, domain)
	if err != nil {
		return identity.Context{}, err
	}
	return identity.Context{Organization: org, Domain: dom, Actor: actor}, nil
}

// Execute runs request within reqCtx and writes the response envelope to w.
// Queries that can't be executed are answered with errors only and a nil error.
// ErrAccessDenied, invalid variables and context errors are returned without writing anything.
func (e *Engine) Execute(ctx context.Context, reqCtx identity.Context, request *Request, w io.Writer) (ExecutionResult, error) {
	start := time.Now()
	result := ExecutionResult{}

	if !reqCtx.Authorized() {
		return result, ErrAccessDenied
	}

	variables, err := request.VariablesMap()
	if err != nil {
		return result, err
	}

	e.executions.Inc()

	tree, err := e.builder.Build(reqCtx, request.Query, request.OperationName, variables)
	if err != nil {
		var parseErr *selection.ParseError
		if !errors.As(err, &parseErr) {
			return result, err
		}
		e.parseFailures.Inc()
		for _, internal := range parseErr.Report.InternalErrors {
			e.logger.Error("Engine.Execute.Build",
				log.String("domain", reqCtx.Domain.Identifier),
				log.Error(internal),
			)
		}
		result.ParseFailed = true
		result.Errors = len(parseErr.Report.ExternalErrors)
		result.Duration = time.Since(start)
		return result, RequestErrorsFromReport(parseErr.Report).WriteResponse(w)
	}

	inspection := e.limiter.Inspect(tree)
	e.logger.Debug("Engine.Execute.Inspect",
		log.String("domain", reqCtx.Domain.Identifier),
		log.String("operation", tree.OperationName),
		log.Int("deepestLevel", inspection.DeepestLevel),
		log.Int("limitedFields", len(inspection.Limited)),
	)

	resolved := e.resolver.Resolve(resolve.NewContext(ctx, reqCtx), tree)
	if err := ctx.Err(); err != nil {
		return result, err
	}
	for _, internal := range resolved.Report.InternalErrors {
		e.logger.Error("Engine.Execute.Resolve",
			log.String("domain", reqCtx.Domain.Identifier),
			log.Error(internal),
		)
	}
	e.sentinels.Add(int64(resolved.Sentinels))

	result.Sentinels = resolved.Sentinels
	result.Loads = resolved.Loads
	result.Errors = len(resolved.Report.ExternalErrors)
	result.Duration = time.Since(start)

	return result, WriteResponse(w, resolved)
}

func (e *Engine) Stats() Stats {
	return Stats{
		Executions:    e.executions.Load(),
		ParseFailures: e.parseFailures.Load(),
		Sentinels:     e.sentinels.Load(),
	}
}
