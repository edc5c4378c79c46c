package httpapi

import (
	"net/http"

	"github.com/firewatch/muster/internal/changefeed"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API serves trusted marshal clients on the internal network
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsEvent is the websocket wire format for one feed notification
type wsEvent struct {
	Kind  changefeed.Kind  `json:"kind"`
	Table changefeed.Table `json:"table"`
	Row   any              `json:"row"`
}

// handleFeed upgrades the connection and streams change notifications.
// Session lifecycle events always flow; attendance events are scoped to
// the session_id query parameter when present. A dropped connection is
// not resumed: the client reconnects and reloads its attendance set.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")

	subscriber, err := changefeed.NewSubscriber(r.Context(), &changefeed.SubscriberConfig{
		RedisClient: s.redis,
		SessionID:   sessionID,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer func() { _ = subscriber.Close() }()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer func() { _ = conn.Close() }()

	s.logger.Debug().Str("session_id", sessionID).Msg("feed client connected")

	// Reads are discarded; the socket is one-way. The read loop exists
	// to notice the peer going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case msg, ok := <-subscriber.Events():
			if !ok {
				return
			}

			event := wsEvent{
				Kind:  msg.Kind,
				Table: msg.Table,
			}
			if msg.Attendance != nil {
				event.Row = msg.Attendance
			} else {
				event.Row = msg.Session
			}

			if err := conn.WriteJSON(event); err != nil {
				s.logger.Debug().Err(err).Msg("feed client write failed")
				return
			}
		}
	}
}
