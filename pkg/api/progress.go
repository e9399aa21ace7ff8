package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 2 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandleProgress streams load progress over a websocket. The first message
// is the current state, then every report published on the hub follows.
func (s *Server) HandleProgress(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	id, events := s.progress.Register()
	defer s.progress.Unregister(id)

	if err := s.send(conn, ProgressMessage{Type: "init", Progress: s.loader.Progress()}); err != nil {
		return
	}

	// The client never sends anything; reading only notices when it leaves.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case p, ok := <-events:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
				return
			}
			if err := s.send(conn, ProgressMessage{Type: "progress", Progress: p}); err != nil {
				s.logger.Debugf("progress listener gone: %v", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (s *Server) send(conn *websocket.Conn, msg ProgressMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	err := conn.WriteJSON(msg)
	_ = conn.SetWriteDeadline(time.Time{})
	return err
}
