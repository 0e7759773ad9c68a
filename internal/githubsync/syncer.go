package githubsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/speedial/speedial/internal/backup"
	"github.com/speedial/speedial/internal/logger"
)

// syncFileName is the fixed blob name under the configured path prefix.
const syncFileName = "speedial-backup.json"

// ErrNotConfigured is returned when sync runs without a loaded config.
var ErrNotConfigured = errors.New("github sync is not configured")

// Document is the remote sync payload: a full export plus the upload
// timestamp.
type Document struct {
	backup.Document
	LastSynced time.Time `json:"lastSynced"`
}

// Syncer uploads the full local dataset to a GitHub repository and can
// restore from it. Up always overwrites the remote blob; there is no
// merge step.
type Syncer struct {
	codec  *backup.Codec
	client *Client
	cfg    *Config
	log    logger.Logger
	now    func() time.Time
}

func NewSyncer(codec *backup.Codec, cfg *Config, log logger.Logger, opts ...ClientOption) *Syncer {
	s := &Syncer{
		codec: codec,
		cfg:   cfg,
		log:   log,
		now:   time.Now,
	}
	if cfg.Valid() {
		s.client = NewClient(cfg, opts...)
	}
	return s
}

// Configured reports whether a valid config was loaded.
func (s *Syncer) Configured() bool { return s.client != nil }

func (s *Syncer) remotePath() string {
	return strings.TrimPrefix(path.Join(s.cfg.PathPrefix, syncFileName), "/")
}

// Up exports the local dataset and overwrites the remote blob. The
// current revision is fetched first so the contents API accepts the
// update; a missing remote file is treated as a first-time create.
func (s *Syncer) Up(ctx context.Context) error {
	if !s.Configured() {
		return ErrNotConfigured
	}

	export, err := s.codec.Export(ctx)
	if err != nil {
		return fmt.Errorf("sync up: %w", err)
	}
	doc := Document{Document: *export, LastSynced: s.now().UTC()}
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("sync up: marshal: %w", err)
	}

	remote := s.remotePath()
	revision := ""
	switch existing, err := s.client.Read(ctx, remote); {
	case err == nil:
		revision = existing.Revision
	case errors.Is(err, ErrNotFound):
		// first upload
	default:
		return fmt.Errorf("sync up: %w", err)
	}

	msg := fmt.Sprintf("speedial sync %s", doc.LastSynced.Format("2006-01-02 15:04:05"))
	if err := s.client.Write(ctx, remote, msg, payload, revision); err != nil {
		return fmt.Errorf("sync up: %w", err)
	}

	s.log.Info("sync upload complete",
		logger.String("path", remote),
		logger.Int("groups", len(doc.Groups)),
		logger.Int("dials", len(doc.Dials)),
	)
	return nil
}

// Down downloads the remote blob and imports it into the local store.
// Existing local data is kept; imported dials are appended.
func (s *Syncer) Down(ctx context.Context) (backup.ImportStats, error) {
	if !s.Configured() {
		return backup.ImportStats{}, ErrNotConfigured
	}

	remote := s.remotePath()
	file, err := s.client.Read(ctx, remote)
	if err != nil {
		return backup.ImportStats{}, fmt.Errorf("sync down: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(file.Content, &doc); err != nil {
		return backup.ImportStats{}, fmt.Errorf("sync down: parse: %w", err)
	}

	stats, err := s.codec.Import(ctx, &doc.Document)
	if err != nil {
		return stats, fmt.Errorf("sync down: %w", err)
	}

	s.log.Info("sync restore complete",
		logger.String("path", remote),
		logger.Time("lastSynced", doc.LastSynced),
		logger.Int("dialsImported", stats.DialsImported),
	)
	return stats, nil
}
