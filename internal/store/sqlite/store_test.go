package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/speedial/speedial/internal/domain"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func mustCreateGroup(t *testing.T, s *GroupStore, name string, position domain.GroupPosition) *domain.Group {
	t.Helper()
	g := &domain.Group{Name: name}
	if err := s.Create(context.Background(), g, position); err != nil {
		t.Fatalf("Create(%q) error = %v", name, err)
	}
	return g
}

func mustCreateDial(t *testing.T, s *DialStore, groupID int64, title string) *domain.Dial {
	t.Helper()
	d := &domain.Dial{
		URL:             title + ".example.com",
		Title:           title,
		GroupID:         groupID,
		ThumbSourceType: domain.ThumbAuto,
		ThumbIndex:      -1,
	}
	if err := s.Create(context.Background(), d); err != nil {
		t.Fatalf("Create dial %q error = %v", title, err)
	}
	return d
}

func assertGroupOrder(t *testing.T, s *GroupStore, wantNames []string) {
	t.Helper()
	groups, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(groups) != len(wantNames) {
		t.Fatalf("List() returned %d groups, want %d", len(groups), len(wantNames))
	}
	for i, g := range groups {
		if g.Name != wantNames[i] {
			t.Errorf("groups[%d].Name = %q, want %q", i, g.Name, wantNames[i])
		}
		if g.Pos != i {
			t.Errorf("groups[%d].Pos = %d, want %d (dense zero-based)", i, g.Pos, i)
		}
	}
}

func assertDialOrder(t *testing.T, s *DialStore, groupID int64, wantTitles []string) {
	t.Helper()
	dials, err := s.ListByGroup(context.Background(), groupID)
	if err != nil {
		t.Fatalf("ListByGroup() error = %v", err)
	}
	if len(dials) != len(wantTitles) {
		t.Fatalf("ListByGroup() returned %d dials, want %d", len(dials), len(wantTitles))
	}
	for i, d := range dials {
		if d.Title != wantTitles[i] {
			t.Errorf("dials[%d].Title = %q, want %q", i, d.Title, wantTitles[i])
		}
		if d.Pos != i {
			t.Errorf("dials[%d].Pos = %d, want %d (dense zero-based)", i, d.Pos, i)
		}
	}
}

func TestGroupCreateFirstIsSelected(t *testing.T) {
	db := newTestDB(t)
	groups := NewGroupStore(db)

	first := mustCreateGroup(t, groups, "Default", domain.PositionBottom)
	if !first.IsSelected {
		t.Error("first group should be created selected")
	}

	second := mustCreateGroup(t, groups, "Work", domain.PositionBottom)
	if second.IsSelected {
		t.Error("second group should not be created selected")
	}
}

func TestGroupCreatePositions(t *testing.T) {
	db := newTestDB(t)
	groups := NewGroupStore(db)

	mustCreateGroup(t, groups, "A", domain.PositionBottom)
	mustCreateGroup(t, groups, "B", domain.PositionBottom)
	assertGroupOrder(t, groups, []string{"A", "B"})

	// Insert at top shifts everything down by one.
	mustCreateGroup(t, groups, "C", domain.PositionTop)
	assertGroupOrder(t, groups, []string{"C", "A", "B"})
}

func TestGroupDeleteCascade(t *testing.T) {
	db := newTestDB(t)
	groups := NewGroupStore(db)
	dials := NewDialStore(db)

	a := mustCreateGroup(t, groups, "A", domain.PositionBottom)
	b := mustCreateGroup(t, groups, "B", domain.PositionBottom)
	c := mustCreateGroup(t, groups, "C", domain.PositionBottom)

	mustCreateDial(t, dials, b.ID, "doomed1")
	mustCreateDial(t, dials, b.ID, "doomed2")
	keep := mustCreateDial(t, dials, a.ID, "keep")

	if err := groups.DeleteCascade(context.Background(), b.ID); err != nil {
		t.Fatalf("DeleteCascade() error = %v", err)
	}

	assertGroupOrder(t, groups, []string{"A", "C"})
	_ = c

	all, err := dials.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 1 || all[0].ID != keep.ID {
		t.Errorf("cascade left %d dials, want only %q", len(all), keep.Title)
	}
}

func TestGroupDeleteLastRejected(t *testing.T) {
	db := newTestDB(t)
	groups := NewGroupStore(db)

	only := mustCreateGroup(t, groups, "Only", domain.PositionBottom)
	err := groups.DeleteCascade(context.Background(), only.ID)
	if !errors.Is(err, ErrLastGroup) {
		t.Errorf("DeleteCascade(last group) error = %v, want ErrLastGroup", err)
	}

	n, err := groups.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 1 {
		t.Errorf("group count = %d after rejected delete, want 1", n)
	}
}

func TestGroupSetSelected(t *testing.T) {
	db := newTestDB(t)
	groups := NewGroupStore(db)
	ctx := context.Background()

	mustCreateGroup(t, groups, "A", domain.PositionBottom)
	b := mustCreateGroup(t, groups, "B", domain.PositionBottom)

	if err := groups.SetSelected(ctx, b.ID); err != nil {
		t.Fatalf("SetSelected() error = %v", err)
	}

	list, err := groups.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	selected := 0
	for _, g := range list {
		if g.IsSelected {
			selected++
			if g.ID != b.ID {
				t.Errorf("selected group = %q, want %q", g.Name, "B")
			}
		}
	}
	if selected != 1 {
		t.Errorf("selected count = %d, want exactly 1", selected)
	}

	if err := groups.SetSelected(ctx, 999); err == nil {
		t.Error("SetSelected(unknown id) should fail")
	}
}

func TestGroupReorder(t *testing.T) {
	db := newTestDB(t)
	groups := NewGroupStore(db)

	a := mustCreateGroup(t, groups, "A", domain.PositionBottom)
	b := mustCreateGroup(t, groups, "B", domain.PositionBottom)
	c := mustCreateGroup(t, groups, "C", domain.PositionBottom)

	if err := groups.Reorder(context.Background(), []int64{c.ID, a.ID, b.ID}); err != nil {
		t.Fatalf("Reorder() error = %v", err)
	}
	assertGroupOrder(t, groups, []string{"C", "A", "B"})
}

func TestDialCreateAppends(t *testing.T) {
	db := newTestDB(t)
	groups := NewGroupStore(db)
	dials := NewDialStore(db)

	g := mustCreateGroup(t, groups, "G", domain.PositionBottom)
	other := mustCreateGroup(t, groups, "Other", domain.PositionBottom)

	d0 := mustCreateDial(t, dials, g.ID, "first")
	d1 := mustCreateDial(t, dials, g.ID, "second")
	if d0.Pos != 0 || d1.Pos != 1 {
		t.Errorf("dial pos = %d, %d, want 0, 1", d0.Pos, d1.Pos)
	}

	// Ordering is per group: another group starts again at 0.
	o0 := mustCreateDial(t, dials, other.ID, "elsewhere")
	if o0.Pos != 0 {
		t.Errorf("first dial in other group Pos = %d, want 0", o0.Pos)
	}
}

func TestDialDeleteRenumbers(t *testing.T) {
	db := newTestDB(t)
	groups := NewGroupStore(db)
	dials := NewDialStore(db)

	g := mustCreateGroup(t, groups, "G", domain.PositionBottom)
	mustCreateDial(t, dials, g.ID, "a")
	b := mustCreateDial(t, dials, g.ID, "b")
	mustCreateDial(t, dials, g.ID, "c")

	if err := dials.Delete(context.Background(), b.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	assertDialOrder(t, dials, g.ID, []string{"a", "c"})

	// Deleting an absent id is a no-op.
	if err := dials.Delete(context.Background(), 999); err != nil {
		t.Errorf("Delete(absent) error = %v, want nil", err)
	}
}

func TestDialMoveToGroup(t *testing.T) {
	db := newTestDB(t)
	groups := NewGroupStore(db)
	dials := NewDialStore(db)
	ctx := context.Background()

	src := mustCreateGroup(t, groups, "Src", domain.PositionBottom)
	dst := mustCreateGroup(t, groups, "Dst", domain.PositionBottom)

	mustCreateDial(t, dials, src.ID, "a")
	moved := mustCreateDial(t, dials, src.ID, "b")
	mustCreateDial(t, dials, src.ID, "c")
	mustCreateDial(t, dials, dst.ID, "existing")

	if err := dials.MoveToGroup(ctx, moved.ID, dst.ID); err != nil {
		t.Fatalf("MoveToGroup() error = %v", err)
	}

	// Appended after the destination's dials, source renumbered dense.
	assertDialOrder(t, dials, dst.ID, []string{"existing", "b"})
	assertDialOrder(t, dials, src.ID, []string{"a", "c"})

	// Same-group move is a no-op.
	if err := dials.MoveToGroup(ctx, moved.ID, dst.ID); err != nil {
		t.Fatalf("MoveToGroup(same group) error = %v", err)
	}
	assertDialOrder(t, dials, dst.ID, []string{"existing", "b"})
}

func TestDialIncrementClick(t *testing.T) {
	db := newTestDB(t)
	groups := NewGroupStore(db)
	dials := NewDialStore(db)
	ctx := context.Background()

	g := mustCreateGroup(t, groups, "G", domain.PositionBottom)
	d := mustCreateDial(t, dials, g.ID, "clickme")

	for i := 0; i < 3; i++ {
		if err := dials.IncrementClick(ctx, d.ID); err != nil {
			t.Fatalf("IncrementClick() error = %v", err)
		}
	}

	got, err := dials.Get(ctx, d.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ClickCount != 3 {
		t.Errorf("ClickCount = %d, want 3", got.ClickCount)
	}
	if got.Pos != d.Pos {
		t.Errorf("Pos changed by click: %d -> %d", d.Pos, got.Pos)
	}
}

func TestSeed(t *testing.T) {
	db := newTestDB(t)
	groups := NewGroupStore(db)
	dials := NewDialStore(db)
	ctx := context.Background()

	seeded, err := Seed(ctx, groups, dials)
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if !seeded {
		t.Fatal("Seed() on empty database should report seeded = true")
	}

	assertGroupOrder(t, groups, []string{"Default", "Work", "Personal"})

	list, err := groups.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if !list[0].IsSelected {
		t.Error("seeded Default group should be selected")
	}

	all, err := dials.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("seed created %d dials, want 3", len(all))
	}

	// Second run must be a no-op.
	seeded, err = Seed(ctx, groups, dials)
	if err != nil {
		t.Fatalf("Seed() second run error = %v", err)
	}
	if seeded {
		t.Error("Seed() on populated database should report seeded = false")
	}
	n, _ := groups.Count(ctx)
	if n != 3 {
		t.Errorf("group count after second seed = %d, want 3", n)
	}
}
