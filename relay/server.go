// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package relay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/hashicorp/bnet-relay/oauth"
	"github.com/hashicorp/bnet-relay/oauth/handler"
	"github.com/hashicorp/bnet-relay/webhook"
)

const pageTitle = "Battle.net account link"

// Server is the relay's http.Handler. It's read-only once New returns and
// safe for concurrent use.
type Server struct {
	config   *EnvConfig
	provider *oauth.Provider
	webhook  *webhook.Client
	logger   hclog.Logger
	views    *views
	handler  http.Handler
}

// New builds the relay from its configuration.
//
// Supported options:
//	WithLogger
//	WithWebhookHTTPClient
func New(c *EnvConfig, opt ...Option) (*Server, error) {
	const op = "relay.New"
	if c == nil {
		return nil, fmt.Errorf("%s: config is nil: %w", op, oauth.ErrNilParameter)
	}
	opts := getServerOpts(opt...)
	s := &Server{
		config: c,
		logger: opts.withLogger.Named("relay"),
	}

	oc, err := c.OAuthConfig()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if s.provider, err = oauth.NewProvider(oc); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	codec, err := c.StateCodec()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	whOpts := []webhook.Option{webhook.WithLogger(s.logger)}
	if opts.withWebhookHTTPClient != nil {
		whOpts = append(whOpts, webhook.WithHTTPClient(opts.withWebhookHTTPClient))
	}
	if s.webhook, err = c.Webhook(whOpts...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if s.views, err = newViews(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hOpts := []oauth.Option{
		handler.WithLogger(s.logger),
		handler.WithRequireCorrelation(c.RequireCorrelation()),
	}
	authorize, err := handler.Authorize(s.provider, codec, s.errorResponse, hOpts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if s.webhook != nil {
		hOpts = append(hOpts, handler.WithForwarder(handler.ForwarderFunc(s.forward)))
	}
	callback, err := handler.AuthCode(s.provider, codec, s.successResponse, s.errorResponse, hOpts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.index)
	mux.HandleFunc("GET /authorize", authorize)
	mux.HandleFunc("GET /callback", callback)
	mux.HandleFunc("GET /healthz", healthz)
	s.handler = s.logRequests(mux)

	s.logger.Info("relay configured",
		"region", oc.Region,
		"locale", oc.Locale,
		"redirect_url", oc.RedirectURL,
		"forwarding", s.webhook != nil,
		"require_discord_id", c.RequireCorrelation(),
		"signed_state", c.StateSecret != "",
	)
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	s.handler.ServeHTTP(w, req)
}

func (s *Server) index(w http.ResponseWriter, req *http.Request) {
	authorizeURL := "/authorize"
	if id := req.URL.Query().Get(handler.DefaultCorrelationParam); id != "" {
		authorizeURL += "?" + url.Values{handler.DefaultCorrelationParam: {id}}.Encode()
	}
	page := indexPage{Title: pageTitle, AuthorizeURL: authorizeURL}
	if err := render(w, s.views.index, http.StatusOK, page); err != nil {
		s.logger.Error("unable to render landing page", "error", err)
	}
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// forward posts a callback result to the webhook.
func (s *Server) forward(ctx context.Context, r *handler.Result) error {
	err := s.webhook.Send(ctx, webhook.Payload{
		DiscordID:  r.CorrelationID,
		Characters: r.Characters,
	})
	if err != nil {
		return err
	}
	s.logger.Info("characters forwarded", "discord_id", r.CorrelationID)
	return nil
}

func (s *Server) successResponse(r *handler.Result, w http.ResponseWriter, _ *http.Request) {
	var chars []oauth.Character
	var err error
	if r.Forwarded {
		chars, err = oauth.DecodeCharacters(r.Characters)
	} else {
		chars, err = r.Profile.Characters()
	}
	if err != nil {
		s.logger.Warn("unable to decode characters for display", "error", err)
		chars = nil
	}
	page := successPage{
		Title:      pageTitle,
		Message:    "Profile fetched successfully!",
		Characters: chars,
	}
	if r.Forwarded {
		page.Message = "Your characters have been linked!"
	}
	if err := render(w, s.views.success, http.StatusOK, page); err != nil {
		s.logger.Error("unable to render success page", "error", err)
	}
}

func (s *Server) errorResponse(state string, respErr *handler.AuthenErrorResponse, e error, w http.ResponseWriter, _ *http.Request) {
	status, msg := errorStatus(respErr, e)
	args := []interface{}{"status", status, "error", e}
	if respErr != nil {
		args = append(args, "provider_error", respErr.Error)
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", args...)
	} else {
		s.logger.Warn("request rejected", args...)
	}
	if err := render(w, s.views.failure, status, errorPage{Title: pageTitle, Message: msg}); err != nil {
		s.logger.Error("unable to render error page", "error", err)
	}
}

// errorStatus maps a handler error to the status and message the user sees.
// Upstream details are logged, never shown.
func errorStatus(respErr *handler.AuthenErrorResponse, e error) (int, string) {
	switch {
	case respErr != nil:
		return http.StatusBadRequest, "Battle.net did not authorize the request."
	case errors.Is(e, oauth.ErrMissingParameters):
		return http.StatusBadRequest, "The request is missing required parameters."
	case errors.Is(e, oauth.ErrTokenExchangeFailed):
		return http.StatusBadGateway, "Failed to get token."
	case errors.Is(e, oauth.ErrProfileFetchFailed):
		return http.StatusBadGateway, "Failed to fetch profile."
	case errors.Is(e, oauth.ErrForwardingFailed):
		return http.StatusBadGateway, "Failed to link your characters."
	default:
		return http.StatusInternalServerError, "Something went wrong."
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// logRequests logs each request's method, path and status. The query is
// left out since it carries authorization codes.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, req)
		s.logger.Debug("request", "method", req.Method, "path", req.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}
