package realtime

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"campuslink/internal/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The bearer token is the access check; origin allow-listing happens
	// at the CORS layer in front of the router.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// TokenVerifier validates the handshake bearer token.
type TokenVerifier interface {
	Verify(token string) (domain.Identity, error)
}

// ConnectionSource is the slice of the connection store the gateway needs
// to authorize room joins.
type ConnectionSource interface {
	GetConnection(ctx context.Context, connectionID string) (domain.Connection, error)
}

// Gateway upgrades authenticated requests to websockets, auto-joins each
// socket to its personal room and authorizes per-connection room joins.
type Gateway struct {
	Registry    RoomRegistry
	Verifier    TokenVerifier
	Connections ConnectionSource
	Logger      *slog.Logger
}

// ServeHTTP handles the socket handshake. A request without a verifiable
// token is rejected before any room membership exists; the client must
// reconnect with a fresh token.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := g.Logger
	if logger == nil {
		logger = slog.Default()
	}

	identity, err := g.Verifier.Verify(handshakeToken(r))
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("realtime: upgrade failed", "err", err)
		return
	}

	c := &client{
		id:       uuid.NewString(),
		identity: identity,
		gateway:  g,
		conn:     conn,
		send:     make(chan Event, sendBufferSize),
		logger:   logger,
	}

	// Personal notification room needs no further authorization: it is
	// the caller's own identity.
	g.Registry.Join(c, UserRoom(identity.UserID))

	go c.writePump()
	go c.readPump()
}

// joinConnectionRoom verifies the user is a participant before joining.
// Failures are silently dropped so a probing client cannot learn whether a
// connection exists.
func (g *Gateway) joinConnectionRoom(sub Subscriber, userID, connectionID string) {
	connectionID = strings.TrimSpace(connectionID)
	if connectionID == "" {
		return
	}

	logger := g.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := g.Connections.GetConnection(ctx, connectionID)
	if err != nil {
		logger.Debug("realtime: join dropped", "connection_id", connectionID, "user_id", userID, "err", err)
		return
	}
	if !conn.IsParticipant(userID) {
		logger.Debug("realtime: join dropped, not a participant", "connection_id", connectionID, "user_id", userID)
		return
	}

	g.Registry.Join(sub, ConnectionRoom(connectionID))
}

// handshakeToken pulls the bearer token from the Authorization header or,
// for browser websocket clients that cannot set headers, the token query
// parameter.
func handshakeToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return r.URL.Query().Get("token")
}
