// Package gateway relays admin console requests to the serverless admin
// function.
package gateway

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/ferdiebergado/storyboard/internal/config"
	"github.com/ferdiebergado/storyboard/internal/pkg/web"
)

const (
	Prefix = "/api/admin"

	MsgUnavailable = "The admin service is unavailable. Please try again later."
)

// dropped request headers; the transport sets its own.
var skipRequestHeaders = map[string]bool{
	"Host":           true,
	"Connection":     true,
	"Content-Length": true,
}

// Proxy forwards a request under Prefix to the admin function. The
// response status, headers and body are relayed unchanged, including
// every Set-Cookie.
type Proxy struct {
	target *url.URL
	client *http.Client
}

func NewProxy(cfg *config.Gateway, client *http.Client) (*Proxy, error) {
	target, err := url.Parse(cfg.AdminURL)
	if err != nil {
		return nil, fmt.Errorf("parse admin gateway url: %w", err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("admin gateway url %q is not absolute", cfg.AdminURL)
	}

	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout.Duration}
	}

	return &Proxy{target: target, client: client}, nil
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	upstream := p.upstreamURL(r.URL)

	req, err := http.NewRequestWithContext(r.Context(), r.Method, upstream, r.Body)
	if err != nil {
		web.RespondInternalServerError(w, err)
		return
	}
	req.ContentLength = r.ContentLength
	for key, values := range r.Header {
		if skipRequestHeaders[http.CanonicalHeaderKey(key)] {
			continue
		}
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	res, err := p.client.Do(req)
	if err != nil {
		slog.Error("admin gateway request failed", "method", r.Method, "url", upstream, "error", err)
		web.RespondBadGateway(w, err, MsgUnavailable)
		return
	}
	defer res.Body.Close()

	for key, values := range res.Header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	w.WriteHeader(res.StatusCode)

	if _, err := io.Copy(w, res.Body); err != nil {
		slog.Warn("relay admin gateway response", "url", upstream, "error", err)
	}
}

func (p *Proxy) upstreamURL(in *url.URL) string {
	rest := strings.TrimPrefix(in.Path, Prefix)

	out := *p.target
	out.Path = strings.TrimSuffix(p.target.Path, "/") + "/" + strings.TrimPrefix(rest, "/")
	out.RawPath = ""
	out.RawQuery = in.RawQuery
	return out.String()
}
