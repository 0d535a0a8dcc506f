package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"nhooyr.io/websocket"
)

// createWebsocketHandler streams every ring event to the client as a JSON
// text message until either side goes away.
func createWebsocketHandler(playground *Playground) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Subscribe before the handshake completes so a client that mutates
		// the ring right after dialing still sees its own event.
		unsub, ch := playground.Subscribe()
		defer unsub()

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			http.Error(w, fmt.Sprintf("websocket upgrade failed: %s", err), http.StatusInternalServerError)
			return
		}
		defer c.Close(websocket.StatusInternalError, "the sky is falling")

		ctx := c.CloseRead(r.Context())

		for {
			select {
			case <-ctx.Done():
				log.Debug().Msg("Websocket closed")
				c.Close(websocket.StatusNormalClosure, "")
				return

			case event, ok := <-ch:
				if !ok {
					c.Close(websocket.StatusGoingAway, "unsubscribed")
					return
				}

				js, err := json.Marshal(event)
				if err != nil {
					log.Err(err).Msg("Failed to marshal event payload for websocket")
					continue
				}

				if err := writeTimeout(ctx, 5*time.Second, c, js); err != nil {
					log.Debug().Err(err).Msg("Websocket write failed")
					return
				}
			}
		}
	}
}

func writeTimeout(ctx context.Context, timeout time.Duration, c *websocket.Conn, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return c.Write(ctx, websocket.MessageText, msg)
}
