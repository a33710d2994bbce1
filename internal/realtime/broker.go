// Package realtime pushes event log entries to browsers over server-sent
// events. Every event has its own channel.
package realtime

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/tablecup/internal/bracket"
	"github.com/alexandrevicenzi/go-sse"
	"github.com/google/uuid"
)

type Broker struct {
	server *sse.Server
}

func NewBroker() *Broker {
	return &Broker{
		server: sse.NewServer(&sse.Options{
			Logger: slog.NewLogLogger(slog.Default().Handler(), slog.LevelDebug),
		}),
	}
}

// Channel is the stream path clients subscribe to for one event.
func Channel(eventID uuid.UUID) string {
	return fmt.Sprintf("/events/%s/stream", eventID)
}

// Publish sends the entry to everyone watching its event.
func (b *Broker) Publish(entry bracket.LogEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		slog.Error("failed to marshal log entry", "event_id", entry.EventID, "action", entry.Action, "error", err)
		return
	}
	b.server.SendMessage(Channel(entry.EventID), sse.NewMessage(entry.ID.String(), string(data), entry.Action))
}

// ServeHTTP subscribes the client to the channel named by the request path.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.server.ServeHTTP(w, r)
}

func (b *Broker) Shutdown() {
	b.server.Shutdown()
}
