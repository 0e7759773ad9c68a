package state

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/speedial/speedial/internal/domain"
	"github.com/speedial/speedial/internal/logger"
	"github.com/speedial/speedial/internal/store/sqlite"
)

var (
	// ErrNotFound is wrapped by operations that reference a group or
	// dial id absent from the mirror.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is wrapped when a caller-supplied value fails
	// validation.
	ErrInvalidInput = errors.New("invalid input")
)

// ThumbFetcher resolves a remote image URL into an inline base64 payload.
// Implemented by the thumb package; nil disables caching of remote
// thumbnails at write time.
type ThumbFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Manager is the in-memory mirror of the local store and the single
// source of truth for reads. Every mutating operation writes through to
// SQLite first and only then patches the mirror, so a crash between the
// two can under-represent persisted state but never over-represent it.
type Manager struct {
	mu     sync.RWMutex
	groups map[int64]*domain.Group
	dials  map[int64]*domain.Dial

	groupStore *sqlite.GroupStore
	dialStore  *sqlite.DialStore
	thumbs     ThumbFetcher
	logger     logger.Logger
}

// NewManager creates a Manager with an empty mirror; call Refresh to
// hydrate it from the store.
func NewManager(groups *sqlite.GroupStore, dials *sqlite.DialStore, thumbs ThumbFetcher, log logger.Logger) *Manager {
	return &Manager{
		groups:     make(map[int64]*domain.Group),
		dials:      make(map[int64]*domain.Dial),
		groupStore: groups,
		dialStore:  dials,
		thumbs:     thumbs,
		logger:     log,
	}
}

// Refresh reloads the whole mirror from the store.
func (m *Manager) Refresh(ctx context.Context) error {
	groups, err := m.groupStore.List(ctx)
	if err != nil {
		return fmt.Errorf("load groups: %w", err)
	}
	dials, err := m.dialStore.List(ctx)
	if err != nil {
		return fmt.Errorf("load dials: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups = make(map[int64]*domain.Group, len(groups))
	for i := range groups {
		g := groups[i]
		m.groups[g.ID] = &g
	}
	m.dials = make(map[int64]*domain.Dial, len(dials))
	for i := range dials {
		d := dials[i]
		m.dials[d.ID] = &d
	}
	return nil
}

// ── Reads ─────────────────────────────────────────────────────────

// Groups returns all groups in display order.
func (m *Manager) Groups() []domain.Group {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Group, 0, len(m.groups))
	for _, g := range m.groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pos < out[j].Pos })
	return out
}

// Dials returns every dial, ordered by group then pos.
func (m *Manager) Dials() []domain.Dial {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dialsLocked()
}

func (m *Manager) dialsLocked() []domain.Dial {
	out := make([]domain.Dial, 0, len(m.dials))
	for _, d := range m.dials {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].GroupID != out[j].GroupID {
			return out[i].GroupID < out[j].GroupID
		}
		return out[i].Pos < out[j].Pos
	})
	return out
}

// SelectedGroup returns the currently selected group, if any.
func (m *Manager) SelectedGroup() (domain.Group, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, g := range m.groups {
		if g.IsSelected {
			return *g, true
		}
	}
	return domain.Group{}, false
}

// Group returns one group by id.
func (m *Manager) Group(id int64) (domain.Group, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.groups[id]
	if !ok {
		return domain.Group{}, false
	}
	return *g, true
}

// Dial returns one dial by id.
func (m *Manager) Dial(id int64) (domain.Dial, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.dials[id]
	if !ok {
		return domain.Dial{}, false
	}
	return *d, true
}

// FilteredDials returns the dials of the currently selected group in
// pos order, or every dial when no group is selected.
func (m *Manager) FilteredDials() []domain.Dial {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var selected *domain.Group
	for _, g := range m.groups {
		if g.IsSelected {
			selected = g
			break
		}
	}
	if selected == nil {
		return m.dialsLocked()
	}

	out := make([]domain.Dial, 0)
	for _, d := range m.dials {
		if d.GroupID == selected.ID {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pos < out[j].Pos })
	return out
}

// ── Group mutations ───────────────────────────────────────────────

// AddGroup creates a group at the top or bottom of the global order and
// returns its id. The first group ever created becomes selected.
func (m *Manager) AddGroup(ctx context.Context, name string, position domain.GroupPosition) (int64, error) {
	if name == "" {
		return 0, fmt.Errorf("group name must not be empty: %w", ErrInvalidInput)
	}
	if !position.Valid() {
		return 0, fmt.Errorf("unknown group position %q: %w", position, ErrInvalidInput)
	}

	g := &domain.Group{Name: name}
	if err := m.groupStore.Create(ctx, g, position); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if position == domain.PositionTop {
		for _, existing := range m.groups {
			existing.Pos++
		}
	}
	cp := *g
	m.groups[g.ID] = &cp
	return g.ID, nil
}

// GroupUpdate holds the fields of a group a caller may edit directly.
// Position changes go through ReorderGroups and selection through
// SetSelectedGroup.
type GroupUpdate struct {
	Name *string `json:"name,omitempty"`
}

// UpdateGroup applies upd to the group with the given id.
func (m *Manager) UpdateGroup(ctx context.Context, id int64, upd GroupUpdate) error {
	m.mu.RLock()
	current, ok := m.groups[id]
	var snapshot domain.Group
	if ok {
		snapshot = *current
	}
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("group %d: %w", id, ErrNotFound)
	}

	if upd.Name != nil {
		if *upd.Name == "" {
			return fmt.Errorf("group name must not be empty: %w", ErrInvalidInput)
		}
		snapshot.Name = *upd.Name
	}

	if err := m.groupStore.Update(ctx, &snapshot); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.groups[id]; ok {
		g.Name = snapshot.Name
		g.UpdatedAt = snapshot.UpdatedAt
	}
	return nil
}

// DeleteGroup removes the group and all dials it owns. Deleting the
// last remaining group is rejected with sqlite.ErrLastGroup. If the
// deleted group was selected, the caller is responsible for selecting a
// replacement.
func (m *Manager) DeleteGroup(ctx context.Context, id int64) error {
	if err := m.groupStore.DeleteCascade(ctx, id); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.groups, id)
	for did, d := range m.dials {
		if d.GroupID == id {
			delete(m.dials, did)
		}
	}
	// Mirror the store-side renumbering of the survivors.
	remaining := make([]*domain.Group, 0, len(m.groups))
	for _, g := range m.groups {
		remaining = append(remaining, g)
	}
	sort.Slice(remaining, func(i, j int) bool { return remaining[i].Pos < remaining[j].Pos })
	for i, g := range remaining {
		g.Pos = i
	}
	return nil
}

// SetSelectedGroup atomically clears every selection flag and sets one.
func (m *Manager) SetSelectedGroup(ctx context.Context, id int64) error {
	if err := m.groupStore.SetSelected(ctx, id); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.groups {
		g.IsSelected = g.ID == id
	}
	return nil
}

// ReorderGroups rewrites the global group order to match ids, which
// must be a permutation of the full group set. Only the listed ids are
// touched in the mirror.
func (m *Manager) ReorderGroups(ctx context.Context, ids []int64) error {
	if err := m.validateGroupPermutation(ids); err != nil {
		return err
	}
	if err := m.groupStore.Reorder(ctx, ids); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, id := range ids {
		if g, ok := m.groups[id]; ok {
			g.Pos = i
		}
	}
	return nil
}

func (m *Manager) validateGroupPermutation(ids []int64) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(ids) != len(m.groups) {
		return fmt.Errorf("reorder must list all %d groups, got %d: %w", len(m.groups), len(ids), ErrInvalidInput)
	}
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return fmt.Errorf("duplicate group id %d in reorder: %w", id, ErrInvalidInput)
		}
		if _, ok := m.groups[id]; !ok {
			return fmt.Errorf("unknown group id %d in reorder: %w", id, ErrInvalidInput)
		}
		seen[id] = true
	}
	return nil
}

// ── Dial mutations ────────────────────────────────────────────────

// AddDialInput carries the caller-supplied fields for a new dial.
type AddDialInput struct {
	URL             string                 `json:"url"`
	Title           string                 `json:"title"`
	GroupID         int64                  `json:"groupId"`
	ThumbSourceType domain.ThumbSourceType `json:"thumbSourceType"`
	ThumbURL        string                 `json:"thumbUrl"`
	ThumbData       string                 `json:"thumbData"`
	ThumbIndex      int                    `json:"thumbIndex"`
}

// AddDial creates a dial appended at the end of its group's ordering
// and returns its id. The URL is stored scheme-less. For remote
// thumbnails the image is fetched and inlined best-effort at write time.
func (m *Manager) AddDial(ctx context.Context, in AddDialInput) (int64, error) {
	d := &domain.Dial{
		URL:             domain.NormalizeURL(in.URL),
		Title:           in.Title,
		GroupID:         in.GroupID,
		ThumbSourceType: in.ThumbSourceType,
		ThumbURL:        in.ThumbURL,
		ThumbData:       in.ThumbData,
		ThumbIndex:      in.ThumbIndex,
	}
	if d.ThumbSourceType == "" {
		d.ThumbSourceType = domain.ThumbAuto
	}
	if d.ThumbSourceType != domain.ThumbDefault {
		d.ThumbIndex = -1
	}
	if err := d.Validate(); err != nil {
		return 0, fmt.Errorf("%v: %w", err, ErrInvalidInput)
	}

	m.mu.RLock()
	_, groupExists := m.groups[d.GroupID]
	m.mu.RUnlock()
	if !groupExists {
		return 0, fmt.Errorf("group %d: %w", d.GroupID, ErrNotFound)
	}

	if d.ThumbSourceType == domain.ThumbRemote && d.ThumbURL != "" && d.ThumbData == "" && m.thumbs != nil {
		data, err := m.thumbs.Fetch(ctx, d.ThumbURL)
		if err != nil {
			m.logger.Warn("failed to fetch remote thumbnail",
				logger.String("url", d.ThumbURL),
				logger.Error(err))
		} else {
			d.ThumbData = data
		}
	}

	if err := m.dialStore.Create(ctx, d); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *d
	m.dials[d.ID] = &cp
	return d.ID, nil
}

// DialUpdate holds the editable fields of a dial; nil means unchanged.
type DialUpdate struct {
	URL             *string                 `json:"url,omitempty"`
	Title           *string                 `json:"title,omitempty"`
	ThumbSourceType *domain.ThumbSourceType `json:"thumbSourceType,omitempty"`
	ThumbURL        *string                 `json:"thumbUrl,omitempty"`
	ThumbData       *string                 `json:"thumbData,omitempty"`
	ThumbIndex      *int                    `json:"thumbIndex,omitempty"`
}

// UpdateDial applies upd to the dial with the given id. When the remote
// thumbnail URL changes the payload is refetched best-effort.
func (m *Manager) UpdateDial(ctx context.Context, id int64, upd DialUpdate) error {
	m.mu.RLock()
	current, ok := m.dials[id]
	var snapshot domain.Dial
	if ok {
		snapshot = *current
	}
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("dial %d: %w", id, ErrNotFound)
	}

	refetch := false
	if upd.URL != nil {
		snapshot.URL = domain.NormalizeURL(*upd.URL)
	}
	if upd.Title != nil {
		snapshot.Title = *upd.Title
	}
	if upd.ThumbSourceType != nil {
		snapshot.ThumbSourceType = *upd.ThumbSourceType
	}
	if upd.ThumbURL != nil && *upd.ThumbURL != snapshot.ThumbURL {
		snapshot.ThumbURL = *upd.ThumbURL
		refetch = true
	}
	if upd.ThumbData != nil {
		snapshot.ThumbData = *upd.ThumbData
		refetch = false
	}
	if upd.ThumbIndex != nil {
		snapshot.ThumbIndex = *upd.ThumbIndex
	}
	if err := snapshot.Validate(); err != nil {
		return fmt.Errorf("%v: %w", err, ErrInvalidInput)
	}

	if refetch && snapshot.ThumbSourceType == domain.ThumbRemote && snapshot.ThumbURL != "" && m.thumbs != nil {
		data, err := m.thumbs.Fetch(ctx, snapshot.ThumbURL)
		if err != nil {
			m.logger.Warn("failed to fetch remote thumbnail",
				logger.String("url", snapshot.ThumbURL),
				logger.Error(err))
		} else {
			snapshot.ThumbData = data
		}
	}

	if err := m.dialStore.Update(ctx, &snapshot); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	cp := snapshot
	m.dials[id] = &cp
	return nil
}

// DeleteDial removes the dial; the owning group's remaining dials are
// renumbered so their pos stays dense.
func (m *Manager) DeleteDial(ctx context.Context, id int64) error {
	m.mu.RLock()
	d, ok := m.dials[id]
	var groupID int64
	if ok {
		groupID = d.GroupID
	}
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("dial %d: %w", id, ErrNotFound)
	}

	if err := m.dialStore.Delete(ctx, id); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.dials, id)
	m.renumberGroupLocked(groupID)
	return nil
}

// IncrementClickCount bumps a dial's activation counter without
// touching its ordering.
func (m *Manager) IncrementClickCount(ctx context.Context, id int64) error {
	m.mu.RLock()
	_, ok := m.dials[id]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("dial %d: %w", id, ErrNotFound)
	}

	if err := m.dialStore.IncrementClick(ctx, id); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.dials[id]; ok {
		d.ClickCount++
	}
	return nil
}

// ReorderDials rewrites one group's dial order to match ids, which must
// be a permutation of that group's full ordered dial set. Dials outside
// the group are left untouched in the mirror.
func (m *Manager) ReorderDials(ctx context.Context, ids []int64) error {
	if err := m.validateDialPermutation(ids); err != nil {
		return err
	}
	if err := m.dialStore.Reorder(ctx, ids); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, id := range ids {
		if d, ok := m.dials[id]; ok {
			d.Pos = i
		}
	}
	return nil
}

func (m *Manager) validateDialPermutation(ids []int64) error {
	if len(ids) == 0 {
		return fmt.Errorf("reorder requires at least one dial: %w", ErrInvalidInput)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	first, ok := m.dials[ids[0]]
	if !ok {
		return fmt.Errorf("unknown dial id %d in reorder: %w", ids[0], ErrInvalidInput)
	}
	groupID := first.GroupID

	groupSize := 0
	for _, d := range m.dials {
		if d.GroupID == groupID {
			groupSize++
		}
	}
	if len(ids) != groupSize {
		return fmt.Errorf("reorder must list all %d dials of group %d, got %d: %w", groupSize, groupID, len(ids), ErrInvalidInput)
	}

	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		d, ok := m.dials[id]
		if !ok {
			return fmt.Errorf("unknown dial id %d in reorder: %w", id, ErrInvalidInput)
		}
		if d.GroupID != groupID {
			return fmt.Errorf("dial %d belongs to group %d, not %d: %w", id, d.GroupID, groupID, ErrInvalidInput)
		}
		if seen[id] {
			return fmt.Errorf("duplicate dial id %d in reorder: %w", id, ErrInvalidInput)
		}
		seen[id] = true
	}
	return nil
}

// MoveDialToGroup reassigns a dial to another group, appending it after
// the destination's existing dials. The source group is renumbered in
// the same transaction so its pos sequence stays dense.
func (m *Manager) MoveDialToGroup(ctx context.Context, id, destGroupID int64) error {
	m.mu.RLock()
	d, ok := m.dials[id]
	var srcGroupID int64
	if ok {
		srcGroupID = d.GroupID
	}
	_, destOK := m.groups[destGroupID]
	destMax := -1
	for _, other := range m.dials {
		if other.GroupID == destGroupID && other.Pos > destMax {
			destMax = other.Pos
		}
	}
	m.mu.RUnlock()

	if !ok {
		return fmt.Errorf("dial %d: %w", id, ErrNotFound)
	}
	if !destOK {
		return fmt.Errorf("group %d: %w", destGroupID, ErrNotFound)
	}
	if srcGroupID == destGroupID {
		return nil
	}

	if err := m.dialStore.MoveToGroup(ctx, id, destGroupID); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if moved, ok := m.dials[id]; ok {
		moved.GroupID = destGroupID
		moved.Pos = destMax + 1
	}
	m.renumberGroupLocked(srcGroupID)
	return nil
}

// renumberGroupLocked mirrors the store-side renumbering of one group's
// dials. Caller must hold the write lock.
func (m *Manager) renumberGroupLocked(groupID int64) {
	var members []*domain.Dial
	for _, d := range m.dials {
		if d.GroupID == groupID {
			members = append(members, d)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Pos < members[j].Pos })
	for i, d := range members {
		d.Pos = i
	}
}
