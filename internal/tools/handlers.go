package tools

import (
	"log/slog"

	"github.com/offbeat-studio/tradegate/internal/session"
)

// Handlers bundles the tool implementations around one injected session.
// The hosting process owns the session lifecycle; handlers never reach for
// globals.
type Handlers struct {
	session *session.Session
	log     *slog.Logger
}

// New builds the handler set over the given session.
func New(s *session.Session, log *slog.Logger) *Handlers {
	if log == nil {
		log = slog.Default()
	}
	return &Handlers{session: s, log: log}
}
