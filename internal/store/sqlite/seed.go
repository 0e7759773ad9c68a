package sqlite

import (
	"context"
	"fmt"

	"github.com/speedial/speedial/internal/domain"
)

// Seed populates an empty database with the default groups and sample
// dials shown on first run. It is a no-op when any group already exists,
// so it runs at most once per store lifetime.
func Seed(ctx context.Context, groups *GroupStore, dials *DialStore) (bool, error) {
	count, err := groups.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("seed check: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	defaultGroup := &domain.Group{Name: "Default"}
	workGroup := &domain.Group{Name: "Work"}
	personalGroup := &domain.Group{Name: "Personal"}
	for _, g := range []*domain.Group{defaultGroup, workGroup, personalGroup} {
		if err := groups.Create(ctx, g, domain.PositionBottom); err != nil {
			return false, fmt.Errorf("seed group %q: %w", g.Name, err)
		}
	}

	samples := []*domain.Dial{
		{URL: "github.com", Title: "GitHub", GroupID: defaultGroup.ID, ThumbSourceType: domain.ThumbDefault, ThumbIndex: 1},
		{URL: "facebook.com", Title: "Facebook", GroupID: personalGroup.ID, ThumbSourceType: domain.ThumbDefault, ThumbIndex: 2},
		{URL: "x.com", Title: "Twitter", GroupID: personalGroup.ID, ThumbSourceType: domain.ThumbDefault, ThumbIndex: 3},
	}
	for _, d := range samples {
		if err := dials.Create(ctx, d); err != nil {
			return false, fmt.Errorf("seed dial %q: %w", d.Title, err)
		}
	}

	return true, nil
}
