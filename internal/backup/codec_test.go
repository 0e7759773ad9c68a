package backup

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/speedial/speedial/internal/domain"
	"github.com/speedial/speedial/internal/logger"
	"github.com/speedial/speedial/internal/store/sqlite"
)

func newTestCodec(t *testing.T) (*Codec, *sqlite.GroupStore, *sqlite.DialStore) {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "backup.db"))
	if err != nil {
		t.Fatalf("sqlite.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	groups := sqlite.NewGroupStore(db)
	dials := sqlite.NewDialStore(db)
	return NewCodec(groups, dials, logger.New("error", false)), groups, dials
}

func seedGroup(t *testing.T, groups *sqlite.GroupStore, name string) *domain.Group {
	t.Helper()
	g := &domain.Group{Name: name}
	if err := groups.Create(context.Background(), g, domain.PositionBottom); err != nil {
		t.Fatalf("create group %q: %v", name, err)
	}
	return g
}

func seedDial(t *testing.T, dials *sqlite.DialStore, groupID int64, title string) *domain.Dial {
	t.Helper()
	d := &domain.Dial{
		URL:             title + ".example.com",
		Title:           title,
		GroupID:         groupID,
		ThumbSourceType: domain.ThumbAuto,
		ThumbIndex:      -1,
	}
	if err := dials.Create(context.Background(), d); err != nil {
		t.Fatalf("create dial %q: %v", title, err)
	}
	return d
}

func TestExport(t *testing.T) {
	codec, groups, dials := newTestCodec(t)
	ctx := context.Background()

	work := seedGroup(t, groups, "Work")
	play := seedGroup(t, groups, "Play")
	seedDial(t, dials, work.ID, "repo")
	seedDial(t, dials, play.ID, "game")

	doc, err := codec.Export(ctx)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	if len(doc.Groups) != 2 {
		t.Fatalf("exported %d groups, want 2", len(doc.Groups))
	}
	// Groups come out in pos order; the first ever created is selected.
	if doc.Groups[0].Name != "Work" || !doc.Groups[0].IsSelected {
		t.Errorf("Groups[0] = %+v, want selected Work first", doc.Groups[0])
	}
	if doc.Groups[1].Name != "Play" || doc.Groups[1].IsSelected {
		t.Errorf("Groups[1] = %+v, want unselected Play", doc.Groups[1])
	}

	if len(doc.Dials) != 2 {
		t.Fatalf("exported %d dials, want 2", len(doc.Dials))
	}
	for _, ed := range doc.Dials {
		switch ed.Title {
		case "repo":
			if ed.GroupName != "Work" {
				t.Errorf("dial %q GroupName = %q, want Work", ed.Title, ed.GroupName)
			}
		case "game":
			if ed.GroupName != "Play" {
				t.Errorf("dial %q GroupName = %q, want Play", ed.Title, ed.GroupName)
			}
		default:
			t.Errorf("unexpected dial %q in export", ed.Title)
		}
	}
}

func TestExportEmptyStore(t *testing.T) {
	codec, _, _ := newTestCodec(t)

	doc, err := codec.Export(context.Background())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if doc.Groups == nil || doc.Dials == nil {
		t.Error("empty export must still carry non-nil groups and dials sections")
	}

	payload, err := Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	parsed, err := Unmarshal(payload)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(parsed.Groups) != 0 || len(parsed.Dials) != 0 {
		t.Errorf("round trip of empty document changed sizes: %d groups, %d dials", len(parsed.Groups), len(parsed.Dials))
	}
}

func TestImportCreatesMissingGroups(t *testing.T) {
	codec, groups, dials := newTestCodec(t)
	ctx := context.Background()

	seedGroup(t, groups, "Existing")

	doc := &Document{
		Groups: []ExportedGroup{{Name: "Existing"}, {Name: "New"}},
		Dials: []ExportedDial{
			{URL: "a.example.com", Title: "a", ThumbSourceType: domain.ThumbAuto, ThumbIndex: -1, GroupName: "New"},
		},
	}

	stats, err := codec.Import(ctx, doc)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if stats.GroupsCreated != 1 {
		t.Errorf("GroupsCreated = %d, want 1 (existing group untouched)", stats.GroupsCreated)
	}
	if stats.DialsImported != 1 {
		t.Errorf("DialsImported = %d, want 1", stats.DialsImported)
	}

	list, err := groups.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 || list[1].Name != "New" || list[1].Pos != 1 {
		t.Errorf("imported group placement wrong: %+v", list)
	}

	imported, err := dials.ListByGroup(ctx, list[1].ID)
	if err != nil {
		t.Fatalf("ListByGroup() error = %v", err)
	}
	if len(imported) != 1 || imported[0].Title != "a" {
		t.Errorf("imported dials = %+v, want the one dial in New", imported)
	}
}

func TestImportAppendsAfterExistingDials(t *testing.T) {
	codec, groups, dials := newTestCodec(t)
	ctx := context.Background()

	g := seedGroup(t, groups, "G")
	seedDial(t, dials, g.ID, "existing")

	doc := &Document{
		Groups: []ExportedGroup{{Name: "G"}},
		Dials: []ExportedDial{
			{URL: "new.example.com", Title: "new", Pos: 0, ThumbSourceType: domain.ThumbAuto, ThumbIndex: -1, GroupName: "G"},
		},
	}
	if _, err := codec.Import(ctx, doc); err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	list, err := dials.ListByGroup(ctx, g.ID)
	if err != nil {
		t.Fatalf("ListByGroup() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("group has %d dials, want 2", len(list))
	}
	// The imported dial's own pos is ignored; it appends after the max.
	if list[1].Title != "new" || list[1].Pos != 1 {
		t.Errorf("imported dial = %+v, want appended at pos 1", list[1])
	}
}

func TestImportSkipsUnresolvableGroup(t *testing.T) {
	codec, groups, _ := newTestCodec(t)
	ctx := context.Background()

	seedGroup(t, groups, "G")

	doc := &Document{
		Groups: []ExportedGroup{{Name: "G"}},
		Dials: []ExportedDial{
			{URL: "ok.example.com", Title: "ok", ThumbSourceType: domain.ThumbAuto, ThumbIndex: -1, GroupName: "G"},
			{URL: "lost.example.com", Title: "lost", ThumbSourceType: domain.ThumbAuto, ThumbIndex: -1, GroupName: "Ghost"},
		},
	}

	stats, err := codec.Import(ctx, doc)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if stats.DialsImported != 1 || stats.DialsSkipped != 1 {
		t.Errorf("stats = %+v, want 1 imported and 1 skipped", stats)
	}
}

func TestImportIsNotDeduplicating(t *testing.T) {
	codec, groups, dials := newTestCodec(t)
	ctx := context.Background()

	g := seedGroup(t, groups, "G")
	seedDial(t, dials, g.ID, "twice")

	doc, err := codec.Export(ctx)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	// Re-importing the export duplicates dials but not groups.
	stats, err := codec.Import(ctx, doc)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if stats.GroupsCreated != 0 {
		t.Errorf("GroupsCreated = %d, want 0 (group matched by name)", stats.GroupsCreated)
	}

	list, err := dials.ListByGroup(ctx, g.ID)
	if err != nil {
		t.Fatalf("ListByGroup() error = %v", err)
	}
	if len(list) != 2 {
		t.Errorf("group has %d dials after re-import, want 2 (duplicated)", len(list))
	}
}

func TestImportInvalidDocument(t *testing.T) {
	codec, _, _ := newTestCodec(t)
	ctx := context.Background()

	tests := []struct {
		name string
		doc  *Document
	}{
		{name: "nil document", doc: nil},
		{name: "missing groups", doc: &Document{Dials: []ExportedDial{}}},
		{name: "missing dials", doc: &Document{Groups: []ExportedGroup{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := codec.Import(ctx, tt.doc); !errors.Is(err, ErrInvalidDocument) {
				t.Errorf("Import(%s) error = %v, want ErrInvalidDocument", tt.name, err)
			}
		})
	}
}

func TestFilenames(t *testing.T) {
	day := time.Date(2025, 6, 1, 15, 4, 5, 0, time.UTC)
	if got := DataFilename(day); got != "speedial-dials-backup-2025-06-01.json" {
		t.Errorf("DataFilename() = %q", got)
	}
	if got := ConfigFilename(day); got != "speedial-github-backup-2025-06-01.json" {
		t.Errorf("ConfigFilename() = %q", got)
	}
}
