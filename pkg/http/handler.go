package http

import (
	"errors"
	"net/http"
	"strings"

	log "github.com/jensneuse/abstractlogger"

	"github.com/unitecms/contentgraph/pkg/graphql"
	"github.com/unitecms/contentgraph/pkg/identity"
	"github.com/unitecms/contentgraph/pkg/schema"
)

const (
	apiPathSegment      = "api"
	tokenQueryParameter = "token"
	bearerPrefix        = "Bearer "
)

func NewGraphqlHTTPHandler(engine *graphql.Engine, keyring *identity.Keyring, metrics *Metrics, logger log.Logger) http.Handler {
	if logger == nil {
		logger = log.NoopLogger
	}
	return &GraphQLHTTPRequestHandler{
		log:     logger,
		engine:  engine,
		keyring: keyring,
		metrics: metrics,
	}
}

// GraphQLHTTPRequestHandler serves POST /{organization}/{domain}/api.
type GraphQLHTTPRequestHandler struct {
	log     log.Logger
	engine  *graphql.Engine
	keyring *identity.Keyring
	metrics *Metrics
}

func (g *GraphQLHTTPRequestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	organization, domain, ok := apiPath(r.URL.Path)
	if !ok {
		g.fail(w, http.StatusNotFound)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		g.fail(w, http.StatusMethodNotAllowed)
		return
	}

	key, err := g.keyring.Authenticate(token(r))
	if err != nil {
		g.fail(w, http.StatusUnauthorized)
		return
	}

	reqCtx, err := g.engine.RequestContext(organization, domain, key)
	if err != nil {
		if errors.Is(err, schema.ErrUnknownOrganization) || errors.Is(err, schema.ErrUnknownDomain) {
			g.fail(w, http.StatusNotFound)
			return
		}
		g.log.Error("GraphQLHTTPRequestHandler.ServeHTTP",
			log.Error(err),
		)
		g.fail(w, http.StatusInternalServerError)
		return
	}

	g.handleHTTP(w, r, reqCtx)
}

// apiPath splits /{organization}/{domain}/api.
func apiPath(path string) (organization, domain string, ok bool) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) != 3 || segments[2] != apiPathSegment || segments[0] == "" || segments[1] == "" {
		return "", "", false
	}
	return segments[0], segments[1], true
}

// token reads the API key from the Authorization header, falling back to the token query parameter.
func token(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, bearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	}
	return r.URL.Query().Get(tokenQueryParameter)
}

func (g *GraphQLHTTPRequestHandler) fail(w http.ResponseWriter, status int) {
	g.metrics.observe(status, "", 0, 0)
	w.WriteHeader(status)
}
