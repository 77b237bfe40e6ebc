package handlers

import (
	"encoding/json"
	"log"

	"github.com/291e/bogofit-verify/domain"
)

// logEvent writes an audit event as a prefixed JSON log line, the same format
// the verification service emits for challenge lifecycle events.
func logEvent(event *domain.AuditEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("%s: identifier=%s purpose=%s", event.EventType, event.Identifier, event.Purpose)
		return
	}
	log.Printf("%s: %s", event.EventType, data)
}
