package format

import "github.com/spiffcs/vigil/internal/model"

// KindIcon returns the glyph shown next to a notification of the given
// kind. Renderers apply their own styling.
func KindIcon(kind model.Kind) string {
	switch kind {
	case model.KindNew:
		return "\u2728" // ✨
	case model.KindMention:
		return "\U0001F4E3" // 📣
	case model.KindThread:
		return "\U0001F9F5" // 🧵
	case model.KindAssignee:
		return "\U0001F4CC" // 📌
	default:
		return " "
	}
}

// TypeLabel returns the short column label for an item type.
func TypeLabel(t model.ItemType) string {
	if t == model.ItemTypePullRequest {
		return "PR"
	}
	return "ISS"
}

// IconWidth is the display width reserved for the icon column (emoji=2 + space=1).
const IconWidth = 3
