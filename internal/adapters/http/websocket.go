package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"
)

// wsMessage is sent from a client to narrow or widen its subscription.
type wsMessage struct {
	Action  string `json:"action"`  // "subscribe" | "unsubscribe"
	RouteID string `json:"routeId"` // optional: a single route, "" = all
}

// WebSocketHandler upgrades to WebSocket and relays optimisation
// completions from NATS to the client. By default every completion is
// relayed; clients may subscribe to individual route IDs instead.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		if nc == nil {
			_ = c.WriteMessage(websocket.TextMessage, []byte(`{"error":"realtime feed unavailable"}`))
			return
		}

		remoteAddr := c.RemoteAddr().String()
		slog.Debug("ws client connected", "remote", remoteAddr)

		var mu sync.Mutex
		subs := make(map[string]*nats.Subscription) // subject -> subscription

		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		relay := func(msg *nats.Msg) {
			_ = writeJSON(json.RawMessage(msg.Data))
		}

		subscribe := func(subject string) {
			if _, exists := subs[subject]; exists {
				_ = writeJSON(map[string]string{"status": "already subscribed", "subject": subject})
				return
			}
			s, err := nc.Subscribe(subject, relay)
			if err != nil {
				_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
				return
			}
			subs[subject] = s
			_ = writeJSON(map[string]string{"status": "subscribed", "subject": subject})
		}

		// All completions by default.
		defaultSubject := "routes.optimised.>"
		sub, err := nc.Subscribe(defaultSubject, relay)
		if err != nil {
			slog.Warn("ws default subscribe error", "error", err)
			return
		}
		subs[defaultSubject] = sub

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			subject := defaultSubject
			if m.RouteID != "" {
				subject = "routes.optimised." + m.RouteID
			}

			switch m.Action {
			case "subscribe":
				subscribe(subject)
			case "unsubscribe":
				if s, exists := subs[subject]; exists {
					_ = s.Unsubscribe()
					delete(subs, subject)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": subject})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + subject})
				}
			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		slog.Debug("ws client disconnected", "remote", remoteAddr)
	}
}
