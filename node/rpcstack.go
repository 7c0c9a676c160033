// Copyright 2026 The gantry Authors
// This file is part of the gantry library.
//
// The gantry library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The gantry library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the gantry library. If not, see <http://www.gnu.org/licenses/>.

package node

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/rs/cors"
)

const httpShutdownTimeout = 5 * time.Second

// RPCServer is the RPC extension component: a JSON-RPC endpoint stack with an
// in-process handler, an optional public HTTP endpoint with websocket upgrade
// support, and an optional JWT-authenticated endpoint. An RPC build hook
// assembles one, registers the node's API namespaces on it and stores it in
// the container; Start brings the configured listeners up.
type RPCServer struct {
	log  log.Logger
	cfg  *Config
	apis []rpc.API

	// Request handlers by trust level. The in-process handler carries every
	// registered API, the public one only the unauthenticated namespaces the
	// configuration exposes, the authenticated one everything behind JWT.
	inproc *rpc.Server
	pub    *rpc.Server
	auth   *rpc.Server

	mu           sync.Mutex
	started      bool
	stopped      bool
	httpServer   *http.Server
	httpListener net.Listener
	authServer   *http.Server
	authListener net.Listener
	serverWG     sync.WaitGroup
}

// NewRPCServer creates an RPC server stack around the given configuration.
// No listener is opened until Start.
func NewRPCServer(cfg *Config, logger log.Logger) *RPCServer {
	if logger == nil {
		logger = log.Root()
	}
	s := &RPCServer{
		log:    logger,
		cfg:    cfg,
		inproc: rpc.NewServer(),
		pub:    rpc.NewServer(),
		auth:   rpc.NewServer(),
	}
	if cfg.BatchRequestLimit > 0 && cfg.BatchResponseMaxSize > 0 {
		s.pub.SetBatchLimits(cfg.BatchRequestLimit, cfg.BatchResponseMaxSize)
		s.auth.SetBatchLimits(cfg.BatchRequestLimit, cfg.BatchResponseMaxSize)
	}
	return s
}

// RegisterAPIs registers the given APIs on the server's handlers. The
// in-process handler receives every API, the public handler the enabled
// non-authenticated ones, the authenticated handler everything. Registration
// is only possible before the server has started.
func (s *RPCServer) RegisterAPIs(apis []rpc.API) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		panic("can't register APIs on started RPC server")
	}
	for _, api := range apis {
		if err := s.inproc.RegisterName(api.Namespace, api.Service); err != nil {
			return err
		}
		if err := s.auth.RegisterName(api.Namespace, api.Service); err != nil {
			return err
		}
		if !api.Authenticated && s.moduleEnabled(api.Namespace) {
			if err := s.pub.RegisterName(api.Namespace, api.Service); err != nil {
				return err
			}
		}
		s.apis = append(s.apis, api)
	}
	return nil
}

// moduleEnabled reports whether the configuration exposes the given namespace
// on the public endpoint. An empty whitelist exposes all public namespaces.
func (s *RPCServer) moduleEnabled(module string) bool {
	if len(s.cfg.HTTPModules) == 0 {
		return true
	}
	for _, m := range s.cfg.HTTPModules {
		if m == module {
			return true
		}
	}
	return false
}

// APIs returns the APIs registered so far.
func (s *RPCServer) APIs() []rpc.API {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]rpc.API{}, s.apis...)
}

// Handler returns the in-process request handler. It is live from the moment
// the server is constructed, independent of the network listeners.
func (s *RPCServer) Handler() *rpc.Server {
	return s.inproc
}

// Start opens the configured network endpoints. It returns only once the
// listeners are accepting requests; a second call is a no-op.
func (s *RPCServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if err := s.startHTTP(); err != nil {
		return err
	}
	if err := s.startAuth(); err != nil {
		s.stopListenersLocked()
		return err
	}
	s.started = true
	return nil
}

// startHTTP opens the public HTTP endpoint, serving both plain JSON-RPC
// requests and websocket upgrades.
func (s *RPCServer) startHTTP() error {
	endpoint := s.cfg.HTTPEndpoint()
	if endpoint == "" {
		return nil
	}
	listener, err := net.Listen("tcp", endpoint)
	if err != nil {
		return err
	}
	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isWebsocket(r) {
			s.pub.WebsocketHandler(s.cfg.WSOrigins).ServeHTTP(w, r)
			return
		}
		s.pub.ServeHTTP(w, r)
	})
	handler = newVHostHandler(s.cfg.HTTPVirtualHosts, handler)
	handler = newCorsHandler(s.cfg.HTTPCors, handler)

	s.httpListener = listener
	s.httpServer = newHTTPServer(handler, s.cfg.HTTPTimeouts)
	s.serveOn(s.httpServer, listener)

	s.log.Info("HTTP server started",
		"endpoint", listener.Addr(),
		"cors", strings.Join(s.cfg.HTTPCors, ","),
		"vhosts", strings.Join(s.cfg.HTTPVirtualHosts, ","),
	)
	return nil
}

// startAuth opens the JWT-authenticated endpoint carrying all registered
// APIs. It is only enabled when a secret path is configured.
func (s *RPCServer) startAuth() error {
	endpoint := s.cfg.AuthEndpoint()
	if endpoint == "" {
		return nil
	}
	secret, err := ObtainJWTSecret(s.cfg.JWTSecret)
	if err != nil {
		return err
	}
	listener, err := net.Listen("tcp", endpoint)
	if err != nil {
		return err
	}
	var handler http.Handler = s.auth
	handler = newVHostHandler(s.cfg.AuthVirtualHosts, handler)
	handler = newJWTHandler(secret, handler)

	s.authListener = listener
	s.authServer = newHTTPServer(handler, s.cfg.HTTPTimeouts)
	s.serveOn(s.authServer, listener)

	s.log.Info("HTTP server started", "endpoint", listener.Addr(), "auth", true)
	return nil
}

func (s *RPCServer) serveOn(srv *http.Server, listener net.Listener) {
	s.serverWG.Add(1)
	go func() {
		defer s.serverWG.Done()
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("RPC server failed", "err", err)
		}
	}()
}

// Stop shuts the endpoints down and terminates the request handlers,
// blocking until all serving goroutines have exited.
func (s *RPCServer) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	s.stopListenersLocked()
	s.mu.Unlock()

	s.serverWG.Wait()
	s.inproc.Stop()
	s.pub.Stop()
	s.auth.Stop()
	return nil
}

func (s *RPCServer) stopListenersLocked() {
	for _, srv := range []*http.Server{s.httpServer, s.authServer} {
		if srv == nil {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
		if err := srv.Shutdown(ctx); err != nil && err == ctx.Err() {
			s.log.Warn("HTTP server graceful shutdown timed out")
			srv.Close()
		}
		cancel()
	}
	s.httpServer, s.authServer = nil, nil
	s.httpListener, s.authListener = nil, nil
}

// ListenAddr returns the address the public HTTP endpoint is bound to, empty
// when the endpoint is disabled or not yet started. With a zero configured
// port this reports the port the kernel picked.
func (s *RPCServer) ListenAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.httpListener == nil {
		return ""
	}
	return s.httpListener.Addr().String()
}

// AuthListenAddr returns the address of the authenticated endpoint, empty
// when disabled or not yet started.
func (s *RPCServer) AuthListenAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.authListener == nil {
		return ""
	}
	return s.authListener.Addr().String()
}

func newHTTPServer(handler http.Handler, timeouts rpc.HTTPTimeouts) *http.Server {
	CheckTimeouts(&timeouts)
	return &http.Server{
		Handler:           handler,
		ReadTimeout:       timeouts.ReadTimeout,
		ReadHeaderTimeout: timeouts.ReadHeaderTimeout,
		WriteTimeout:      timeouts.WriteTimeout,
		IdleTimeout:       timeouts.IdleTimeout,
	}
}

// CheckTimeouts ensures that timeout values are meaningful
func CheckTimeouts(timeouts *rpc.HTTPTimeouts) {
	if timeouts.ReadTimeout < time.Second {
		log.Warn("Sanitizing invalid HTTP read timeout", "provided", timeouts.ReadTimeout, "updated", rpc.DefaultHTTPTimeouts.ReadTimeout)
		timeouts.ReadTimeout = rpc.DefaultHTTPTimeouts.ReadTimeout
	}
	if timeouts.ReadHeaderTimeout < time.Second {
		log.Warn("Sanitizing invalid HTTP read header timeout", "provided", timeouts.ReadHeaderTimeout, "updated", rpc.DefaultHTTPTimeouts.ReadHeaderTimeout)
		timeouts.ReadHeaderTimeout = rpc.DefaultHTTPTimeouts.ReadHeaderTimeout
	}
	if timeouts.WriteTimeout < time.Second {
		log.Warn("Sanitizing invalid HTTP write timeout", "provided", timeouts.WriteTimeout, "updated", rpc.DefaultHTTPTimeouts.WriteTimeout)
		timeouts.WriteTimeout = rpc.DefaultHTTPTimeouts.WriteTimeout
	}
	if timeouts.IdleTimeout < time.Second {
		log.Warn("Sanitizing invalid HTTP idle timeout", "provided", timeouts.IdleTimeout, "updated", rpc.DefaultHTTPTimeouts.IdleTimeout)
		timeouts.IdleTimeout = rpc.DefaultHTTPTimeouts.IdleTimeout
	}
}

// isWebsocket checks the header of an http request for a websocket upgrade
// request.
func isWebsocket(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket") &&
		strings.Contains(strings.ToLower(r.Header.Get("Connection")), "upgrade")
}

func newCorsHandler(allowedOrigins []string, srv http.Handler) http.Handler {
	// disable CORS support if user has not specified a custom CORS configuration
	if len(allowedOrigins) == 0 {
		return srv
	}
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodPost, http.MethodGet},
		AllowedHeaders: []string{"*"},
		MaxAge:         600,
	})
	return c.Handler(srv)
}

// virtualHostHandler is a handler which validates the Host-header of incoming
// requests. Using virtual hosts can help prevent DNS rebinding attacks, where
// a malicious site tricks a browser into issuing requests against a locally
// running server. The handler only allows requests whose Host-header matches
// a whitelisted hostname; requests addressing the server by IP are unaffected.
type virtualHostHandler struct {
	vhosts map[string]struct{}
	next   http.Handler
}

func newVHostHandler(vhosts []string, next http.Handler) http.Handler {
	vhostMap := make(map[string]struct{})
	for _, allowedHost := range vhosts {
		vhostMap[strings.ToLower(allowedHost)] = struct{}{}
	}
	return &virtualHostHandler{vhostMap, next}
}

// ServeHTTP serves JSON-RPC requests over HTTP, implements http.Handler
func (h *virtualHostHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// if r.Host is not set, we can continue serving since a browser would set the Host header
	if r.Host == "" {
		h.next.ServeHTTP(w, r)
		return
	}
	host, _, err := net.SplitHostPort(r.Host)
	if err != nil {
		// Either invalid (too many colons) or no port specified
		host = r.Host
	}
	if ipAddr := net.ParseIP(host); ipAddr != nil {
		// It's an IP address, we can serve that
		h.next.ServeHTTP(w, r)
		return
	}
	// Not an IP address, but a hostname. Need to validate
	if _, exist := h.vhosts["*"]; exist {
		h.next.ServeHTTP(w, r)
		return
	}
	if _, exist := h.vhosts[strings.ToLower(host)]; exist {
		h.next.ServeHTTP(w, r)
		return
	}
	http.Error(w, fmt.Sprintf("invalid host specified: %q", r.Host), http.StatusForbidden)
}
