package visibility

import "github.com/mcdev12/retrospekt/go/internal/models"

// Palette is the fixed set of reactions offered on every card.
var Palette = []string{"👍", "❤️", "😂", "🎉", "🤔", "👀"}

// InPalette reports whether emoji is one of the offered reactions.
func InPalette(emoji string) bool {
	for _, e := range Palette {
		if e == emoji {
			return true
		}
	}
	return false
}

// reactionCounts builds the reaction affordances for a card.
// With canReact every palette entry is exposed, zero counts included; otherwise only
// emoji that somebody used. Emoji outside the palette follow in first-seen order.
func reactionCounts(reactions []models.Reaction, viewerName string, canReact bool) []ReactionCount {
	counts := make(map[string]int)
	reacted := make(map[string]bool)
	var extras []string

	for _, r := range reactions {
		if r.Emoji == "" {
			continue
		}
		if _, seen := counts[r.Emoji]; !seen && !InPalette(r.Emoji) {
			extras = append(extras, r.Emoji)
		}
		counts[r.Emoji]++
		if viewerName != "" && r.ParticipantName == viewerName {
			reacted[r.Emoji] = true
		}
	}

	out := make([]ReactionCount, 0, len(Palette)+len(extras))
	for _, emoji := range append(append([]string{}, Palette...), extras...) {
		n := counts[emoji]
		if n == 0 && !canReact {
			continue
		}
		out = append(out, ReactionCount{Emoji: emoji, Count: n, Reacted: reacted[emoji]})
	}
	return out
}
