package server

import (
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// handleEvents upgrades to a websocket and streams the session's events until
// the client disconnects or the session is closed.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "session_id", sess.ID, "error", err)
		return
	}
	defer conn.CloseNow()

	events, unsubscribe := sess.Subscribe()
	defer unsubscribe()

	// The client never sends frames; CloseRead surfaces disconnects on ctx.
	ctx := conn.CloseRead(r.Context())

	slog.Info("event stream opened", "session_id", sess.ID)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, open := <-events:
			if !open {
				conn.Close(websocket.StatusNormalClosure, "session closed")
				return
			}
			if err := wsjson.Write(ctx, conn, ev); err != nil {
				slog.Debug("event stream write failed", "session_id", sess.ID, "error", err)
				return
			}
		}
	}
}
