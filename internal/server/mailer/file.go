package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/verixa/internal/filex"
)

// FileOutboxMailer writes each message as a JSON file under a local
// directory, using the same layout as the S3 outbox keys.
type FileOutboxMailer struct {
	dir string
	now func() time.Time
}

// NewFileOutboxMailer creates dir if needed.
func NewFileOutboxMailer(dir string) (*FileOutboxMailer, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	return &FileOutboxMailer{dir: abs, now: time.Now}, nil
}

func (m *FileOutboxMailer) Send(ctx context.Context, msg Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = m.now()
	}

	body, err := json.MarshalIndent(msg, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding message: %w", err)
	}

	key := strings.TrimPrefix(OutboxKey(msg.CreatedAt), "outbox/")
	path := filepath.Join(m.dir, filepath.FromSlash(key))
	if _, err := filex.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	if err := filex.WriteFileAtomic(path, body, 0o640); err != nil {
		return fmt.Errorf("error storing message %s: %w", key, err)
	}
	return nil
}
