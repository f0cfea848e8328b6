package events

import (
	"github.com/rs/zerolog"
)

// AuditHandler writes every event to a zerolog logger. Low stock alerts are
// logged at warn level.
type AuditHandler struct {
	log zerolog.Logger
}

func NewAuditHandler(log zerolog.Logger) *AuditHandler {
	return &AuditHandler{log: log}
}

func (h *AuditHandler) CanHandle(string) bool {
	return true
}

func (h *AuditHandler) Handle(event Event) error {
	entry := h.log.Info()
	if event.Type() == StockBelowReorderPointEvent {
		entry = h.log.Warn()
	}
	entry.
		Str("event", event.Type()).
		Str("stream", event.StreamID()).
		Int("version", event.Version()).
		Interface("data", event.Data()).
		Msg("audit")
	return nil
}

// AllEvents is the subscription list that matches every event type
var AllEvents = []string{wildcard}
