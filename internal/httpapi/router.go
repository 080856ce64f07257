package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rs/cors"

	"campuslink/internal/service"
)

type RouterOpts struct {
	Logger *slog.Logger
	IsProd bool

	DBPing func(context.Context) error

	Connections *service.ConnectionService
	Chat        *service.ChatService
	Verifier    TokenVerifier
	Realtime    http.Handler

	AllowedOrigins []string
}

func NewRouter(opts RouterOpts) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	api := &api{
		logger:        logger,
		isProd:        opts.IsProd,
		dbPing:        opts.DBPing,
		connectionSvc: opts.Connections,
		chatSvc:       opts.Chat,
		verifier:      opts.Verifier,
	}

	publicMux := http.NewServeMux()
	apiMux := http.NewServeMux()

	publicMux.HandleFunc("GET /healthz", api.handleHealthz)

	if api.connectionSvc == nil || api.chatSvc == nil {
		apiMux.HandleFunc("/", handleNotImplemented)
	} else {
		apiMux.HandleFunc("POST /v1/connections/request", api.requireAuth(api.handleConnectionsRequest))
		apiMux.HandleFunc("PUT /v1/connections/respond", api.requireAuth(api.handleConnectionsRespond))
		apiMux.HandleFunc("DELETE /v1/connections/{id}", api.requireAuth(api.handleConnectionsRemove))

		apiMux.HandleFunc("GET /v1/chat/conversations", api.requireAuth(api.handleChatConversations))
		apiMux.HandleFunc("GET /v1/chat/history/{id}", api.requireAuth(api.handleChatHistory))
		apiMux.HandleFunc("POST /v1/chat/send", api.requireAuth(api.handleChatSend))
		apiMux.HandleFunc("GET /v1/chat/unread", api.requireAuth(api.handleChatUnread))
	}

	if opts.Realtime != nil {
		// The gateway authenticates the handshake itself: browser
		// websocket clients cannot set an Authorization header.
		publicMux.Handle("GET /v1/ws", opts.Realtime)
	}

	apiHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, pattern := apiMux.Handler(r)
		if pattern == "" {
			handleV1NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})

	root := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/ws" || r.URL.Path == "/healthz" {
			publicMux.ServeHTTP(w, r)
			return
		}
		if strings.HasPrefix(r.URL.Path, "/v1/") || r.URL.Path == "/v1" {
			apiHandler.ServeHTTP(w, r)
			return
		}
		publicMux.ServeHTTP(w, r)
	})

	corsOpts := cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
	}
	if len(corsOpts.AllowedOrigins) == 0 && !opts.IsProd {
		corsOpts.AllowedOrigins = []string{"*"}
		corsOpts.AllowCredentials = false
	}

	var h http.Handler = root
	h = cors.New(corsOpts).Handler(h)
	h = RequestLogger(logger)(h)
	h = RequestID()(h)
	h = Recoverer(logger, opts.IsProd)(h)
	return h
}

func handleNotImplemented(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusNotImplemented, "not_implemented", "not implemented")
}

func handleV1NotFound(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusNotFound, "not_found", "not found")
}

type api struct {
	logger *slog.Logger
	isProd bool

	dbPing func(context.Context) error

	connectionSvc *service.ConnectionService
	chatSvc       *service.ChatService
	verifier      TokenVerifier
}

func (a *api) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if a.dbPing != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()
		if err := a.dbPing(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("db down"))
			return
		}
	}

	_, _ = w.Write([]byte("ok"))
}
