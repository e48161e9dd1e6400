package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ShatadruM/MonkeRivals/internal/hub"
	"github.com/ShatadruM/MonkeRivals/internal/protocol"
)

const writeTimeout = 3 * time.Second

// Handler upgrades the connection, registers it with the hub, and shuttles
// messages both ways. The reader loop is this handler; a separate writer
// goroutine drains the outbox so a slow socket never stalls the hub.
// allowedOrigins comes from config; empty keeps the same-origin check.
func Handler(h *hub.Hub, log *zap.Logger, allowedOrigins []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: allowedOrigins,
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		connID := uuid.NewString()
		outbox := make(chan protocol.ServerMessage, 16)

		h.Inbox() <- hub.Connect{ConnID: connID, Outbox: outbox}
		defer func() { h.Inbox() <- hub.Disconnect{ConnID: connID} }()

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for {
				select {
				case <-writeCtx.Done():
					return
				case msg := <-outbox:
					payload, err := json.Marshal(msg)
					if err != nil {
						log.Error("marshal failed", zap.String("conn", connID), zap.Error(err))
						continue
					}
					ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
					err = conn.Write(ctx, websocket.MessageText, payload)
					cancel()
					if err != nil {
						return
					}
				}
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				// Treat clean close/going-away as normal:
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				// Otherwise, just exit (hub.Disconnect in defer):
				return
			}

			var cm protocol.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				log.Debug("bad json from client", zap.String("conn", connID))
				continue
			}

			cmd, ok := protocol.ParseCommand(cm)
			if !ok {
				// unknown kinds never reach the hub
				log.Debug("unknown message type", zap.String("conn", connID), zap.String("type", cm.Type))
				continue
			}

			h.Inbox() <- hub.FromClient{ConnID: connID, Cmd: cmd}
		}
	}
}
