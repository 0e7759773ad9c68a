package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/speedial/speedial/internal/domain"
	"github.com/speedial/speedial/internal/logger"
	"github.com/speedial/speedial/internal/store/sqlite"
)

// ErrInvalidDocument is returned when an import payload is missing the
// groups or dials sections. Nothing is written in that case.
var ErrInvalidDocument = errors.New("invalid backup document: missing groups or dials")

// ExportedGroup is a group as it appears in the portable document:
// no internal id, no timestamps. Name is the reconciliation key.
type ExportedGroup struct {
	Name       string `json:"name"`
	Pos        int    `json:"pos"`
	IsSelected bool   `json:"is_selected,omitempty"`
}

// ExportedDial replaces the internal groupId with the owning group's
// name so the document survives database resets.
type ExportedDial struct {
	URL             string                 `json:"url"`
	Title           string                 `json:"title"`
	Pos             int                    `json:"pos"`
	ThumbSourceType domain.ThumbSourceType `json:"thumbSourceType"`
	ThumbURL        string                 `json:"thumbUrl,omitempty"`
	ThumbData       string                 `json:"thumbData,omitempty"`
	ThumbIndex      int                    `json:"thumbIndex"`
	ClickCount      int                    `json:"clickCount"`
	GroupName       string                 `json:"group_name"`
}

// Document is the portable JSON snapshot of the full group+dial graph.
type Document struct {
	Groups []ExportedGroup `json:"groups"`
	Dials  []ExportedDial  `json:"dials"`
}

// ImportStats summarizes one import run. Skipped counts dials whose
// group name could not be resolved; they are logged and dropped while
// the rest of the import proceeds.
type ImportStats struct {
	GroupsCreated int `json:"groupsCreated"`
	DialsImported int `json:"dialsImported"`
	DialsSkipped  int `json:"dialsSkipped"`
}

// Codec serializes the store to a portable document and merges such
// documents back in. Import is additive: idempotent by name for groups,
// deliberately non-deduplicating for dials (re-importing the same
// document duplicates every dial).
type Codec struct {
	groups *sqlite.GroupStore
	dials  *sqlite.DialStore
	logger logger.Logger
}

func NewCodec(groups *sqlite.GroupStore, dials *sqlite.DialStore, log logger.Logger) *Codec {
	return &Codec{groups: groups, dials: dials, logger: log}
}

// Export produces the portable document. Groups are emitted in pos
// order; dials carry their group's name instead of its id.
func (c *Codec) Export(ctx context.Context) (*Document, error) {
	groups, err := c.groups.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("export groups: %w", err)
	}
	dials, err := c.dials.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("export dials: %w", err)
	}

	idToName := make(map[int64]string, len(groups))
	doc := &Document{
		Groups: make([]ExportedGroup, 0, len(groups)),
		Dials:  make([]ExportedDial, 0, len(dials)),
	}
	for _, g := range groups {
		idToName[g.ID] = g.Name
		doc.Groups = append(doc.Groups, ExportedGroup{
			Name:       g.Name,
			Pos:        g.Pos,
			IsSelected: g.IsSelected,
		})
	}
	for _, d := range dials {
		name, ok := idToName[d.GroupID]
		if !ok {
			name = "Unknown Group"
		}
		doc.Dials = append(doc.Dials, ExportedDial{
			URL:             d.URL,
			Title:           d.Title,
			Pos:             d.Pos,
			ThumbSourceType: d.ThumbSourceType,
			ThumbURL:        d.ThumbURL,
			ThumbData:       d.ThumbData,
			ThumbIndex:      d.ThumbIndex,
			ClickCount:      d.ClickCount,
			GroupName:       name,
		})
	}
	return doc, nil
}

// Import merges doc into the store. Groups are reconciled by name:
// missing ones are created appended after the current maximum pos,
// existing ones are left untouched. Dials are appended at the end of
// their target group's ordering; a dial whose group cannot be resolved
// is skipped with a warning and the import continues.
func (c *Codec) Import(ctx context.Context, doc *Document) (ImportStats, error) {
	var stats ImportStats
	if doc == nil || doc.Groups == nil || doc.Dials == nil {
		return stats, ErrInvalidDocument
	}

	existing, err := c.groups.List(ctx)
	if err != nil {
		return stats, fmt.Errorf("import: load groups: %w", err)
	}
	nameToID := make(map[string]int64, len(existing))
	for _, g := range existing {
		nameToID[g.Name] = g.ID
	}

	for _, eg := range doc.Groups {
		if eg.Name == "" {
			continue
		}
		if _, ok := nameToID[eg.Name]; ok {
			continue
		}
		g := &domain.Group{Name: eg.Name}
		if err := c.groups.Create(ctx, g, domain.PositionBottom); err != nil {
			return stats, fmt.Errorf("import: create group %q: %w", eg.Name, err)
		}
		nameToID[eg.Name] = g.ID
		stats.GroupsCreated++
	}

	for _, ed := range doc.Dials {
		groupID, ok := nameToID[ed.GroupName]
		if !ok {
			c.logger.Warn("skipping dial with unresolvable group",
				logger.String("title", ed.Title),
				logger.String("group_name", ed.GroupName))
			stats.DialsSkipped++
			continue
		}
		d := &domain.Dial{
			URL:             domain.NormalizeURL(ed.URL),
			Title:           ed.Title,
			GroupID:         groupID,
			ThumbSourceType: ed.ThumbSourceType,
			ThumbURL:        ed.ThumbURL,
			ThumbData:       ed.ThumbData,
			ThumbIndex:      ed.ThumbIndex,
			ClickCount:      ed.ClickCount,
		}
		if err := c.dials.Create(ctx, d); err != nil {
			return stats, fmt.Errorf("import: create dial %q: %w", ed.Title, err)
		}
		stats.DialsImported++
	}

	c.logger.Info("import completed",
		logger.Int("groups_created", stats.GroupsCreated),
		logger.Int("dials_imported", stats.DialsImported),
		logger.Int("dials_skipped", stats.DialsSkipped))
	return stats, nil
}

// Marshal renders doc as pretty-printed UTF-8 JSON, the on-disk and
// on-wire backup format.
func Marshal(doc *Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// Unmarshal parses a backup document.
func Unmarshal(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse backup document: %w", err)
	}
	return &doc, nil
}

// DataFilename names a data backup file for the given day, e.g.
// "speedial-dials-backup-2025-06-01.json".
func DataFilename(t time.Time) string {
	return fmt.Sprintf("speedial-dials-backup-%s.json", t.Format("2006-01-02"))
}

// ConfigFilename names a sync-config backup file for the given day.
func ConfigFilename(t time.Time) string {
	return fmt.Sprintf("speedial-github-backup-%s.json", t.Format("2006-01-02"))
}
