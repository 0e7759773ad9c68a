package domain

// DefaultIcons is the fixed, ordered catalog of built-in icon names.
// A dial with ThumbDefault stores an index into this slice; the order
// is part of the persisted contract and must not change.
var DefaultIcons = []string{
	"Camera",
	"Share",
	"Copy",
	"Paste",
	"File",
	"Add File",
	"Edit File",
	"Check File",
	"Download",
	"Upload",
	"Save",
	"Delete",
	"Edit",
	"Duplicate",
	"Link",
	"Search",
	"Settings",
	"User",
	"Mail",
	"Home",
}

// IconName returns the catalog name for idx, or "" when idx is out of
// range (including the -1 "unset" marker).
func IconName(idx int) string {
	if idx < 0 || idx >= len(DefaultIcons) {
		return ""
	}
	return DefaultIcons[idx]
}
