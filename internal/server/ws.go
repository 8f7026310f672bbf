package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/raysh454/policysim/internal/logging"
	"github.com/raysh454/policysim/internal/model"
)

// handleWS runs one live dashboard session. The session starts from the
// query-string levers (or the defaults) and answers every LeverMessage with
// a fresh view. When the dataset is reloaded the view for the session's
// current levers is pushed without a request.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	levers, err := s.parseLevers(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	updates, unsubscribe := s.dashboard.Store().Subscribe()
	defer unsubscribe()

	incoming := make(chan []byte)
	done := make(chan struct{})
	defer close(done)
	readErr := make(chan error, 1)

	go func() {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case incoming <- msg:
			case <-done:
				return
			}
		}
	}()

	s.logger.Info("websocket session started", logging.Field{Key: "remote", Value: r.RemoteAddr})
	if !s.pushView(conn, levers) {
		return
	}

	for {
		select {
		case <-s.closing:
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return

		case err := <-readErr:
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("websocket read ended", logging.Field{Key: "error", Value: err.Error()})
			}
			return

		case msg := <-incoming:
			var lm LeverMessage
			if err := json.Unmarshal(msg, &lm); err != nil {
				if werr := conn.WriteJSON(ErrorResponse{Error: "invalid lever message: " + err.Error()}); werr != nil {
					return
				}
				continue
			}
			levers = lm.apply(levers)
			if !s.pushView(conn, levers) {
				return
			}

		case _, ok := <-updates:
			if !ok {
				return
			}
			if !s.pushView(conn, levers) {
				return
			}
		}
	}
}

// pushView evaluates levers and writes the view, or an error payload when
// there is no dataset yet. It reports whether the connection is still usable.
func (s *Server) pushView(conn *websocket.Conn, levers model.LeverState) bool {
	v, err := s.dashboard.Evaluate(levers)
	var payload any = v
	if err != nil {
		payload = ErrorResponse{Error: err.Error()}
	}
	if err := conn.WriteJSON(payload); err != nil {
		s.logger.Debug("websocket write failed", logging.Field{Key: "error", Value: err.Error()})
		return false
	}
	return true
}
