// Package http serves content queries over HTTP.
package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	log "github.com/jensneuse/abstractlogger"

	"github.com/unitecms/contentgraph/pkg/graphql"
	"github.com/unitecms/contentgraph/pkg/identity"
	"github.com/unitecms/contentgraph/pkg/pool"
)

const (
	httpHeaderContentType     string = "Content-Type"
	httpHeaderContentEncoding string = "Content-Encoding"
	httpHeaderAcceptEncoding  string = "Accept-Encoding"
	httpHeaderVary            string = "Vary"

	httpContentTypeApplicationJson string = "application/json"
	httpContentEncodingBrotli      string = "br"

	// MaxRequestBodySize bounds the request body, larger bodies are answered with 400.
	MaxRequestBodySize int64 = 1 << 20
)

func (g *GraphQLHTTPRequestHandler) handleHTTP(w http.ResponseWriter, r *http.Request, reqCtx identity.Context) {
	start := time.Now()
	domain := reqCtx.Domain.Identifier

	var request graphql.Request
	body := http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	if err := graphql.UnmarshalRequest(body, &request); err != nil {
		g.log.Debug("GraphQLHTTPRequestHandler.handleHTTP.UnmarshalRequest",
			log.Error(err),
		)
		g.respond(w, http.StatusBadRequest, domain, 0, start)
		return
	}

	buf := pool.BytesBuffer.Get()
	defer pool.BytesBuffer.Put(buf)

	result, err := g.engine.Execute(r.Context(), reqCtx, &request, buf)
	switch {
	case err == nil:
	case errors.Is(err, graphql.ErrAccessDenied):
		g.respond(w, http.StatusForbidden, domain, 0, start)
		return
	case errors.Is(err, graphql.ErrInvalidVariables):
		g.respond(w, http.StatusBadRequest, domain, 0, start)
		return
	default:
		g.log.Error("GraphQLHTTPRequestHandler.handleHTTP.Execute",
			log.String("domain", domain),
			log.Error(err),
		)
		g.respond(w, http.StatusInternalServerError, domain, 0, start)
		return
	}

	w.Header().Set(httpHeaderContentType, httpContentTypeApplicationJson)
	w.Header().Add(httpHeaderVary, httpHeaderAcceptEncoding)
	if !acceptsBrotli(r) {
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
		g.metrics.observe(http.StatusOK, domain, result.Sentinels, time.Since(start))
		return
	}

	w.Header().Set(httpHeaderContentEncoding, httpContentEncodingBrotli)
	w.WriteHeader(http.StatusOK)
	bw := brotli.NewWriter(w)
	if _, err := buf.WriteTo(bw); err != nil {
		g.log.Error("GraphQLHTTPRequestHandler.handleHTTP.brotli",
			log.Error(err),
		)
	}
	if err := bw.Close(); err != nil {
		g.log.Error("GraphQLHTTPRequestHandler.handleHTTP.brotli.Close",
			log.Error(err),
		)
	}
	g.metrics.observe(http.StatusOK, domain, result.Sentinels, time.Since(start))
}

func (g *GraphQLHTTPRequestHandler) respond(w http.ResponseWriter, status int, domain string, sentinels int, start time.Time) {
	g.metrics.observe(status, domain, sentinels, time.Since(start))
	w.WriteHeader(status)
}

func acceptsBrotli(r *http.Request) bool {
	for _, header := range r.Header.Values(httpHeaderAcceptEncoding) {
		for _, encoding := range strings.Split(header, ",") {
			encoding = strings.TrimSpace(encoding)
			if i := strings.IndexByte(encoding, ';'); i != -1 {
				encoding = strings.TrimSpace(encoding[:i])
			}
			if encoding == httpContentEncodingBrotli {
				return true
			}
		}
	}
	return false
}
