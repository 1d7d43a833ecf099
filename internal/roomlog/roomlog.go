// Package roomlog appends chat messages to one plain-text log file per room.
// Writes are best-effort; the hub logs and ignores failures.
package roomlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chatter-project/chatter-server/internal/core"
)

const logsSubdir = "room_logs"

// Log writes room transcripts under <dir>/room_logs/<room-uuid>.log.
type Log struct {
	mu  sync.Mutex
	dir string
	log *zerolog.Logger
}

// New ensures the log directory exists and returns the logger. A data
// directory that cannot be created is a startup failure.
func New(dataDir string, logger *zerolog.Logger) (*Log, error) {
	dir := filepath.Join(dataDir, logsSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create room log dir: %w", err)
	}
	logger.Info().Str("dir", dir).Msg("room logs directory ready")
	return &Log{dir: dir, log: logger}, nil
}

// Append writes one message line to the room's log file, creating the file
// on first use.
func (l *Log) Append(msg *core.ChatMessage, roomID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	path := filepath.Join(l.dir, roomID.String()+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open room log: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, msg.String()); err != nil {
		return fmt.Errorf("append room log: %w", err)
	}
	return nil
}
