package convention

// glyphs is the closed set of emoji the Clean Commit convention prefixes types with.
var glyphs = map[string]string{
	"new":      "📦",
	"update":   "🔧",
	"remove":   "🗑️",
	"security": "🔒",
	"setup":    "⚙️",
	"chore":    "☕",
}

// Glyph returns the emoji for a Clean Commit type, or "" if it has none.
func Glyph(commitType string) string {
	return glyphs[commitType]
}

// Decorate prefixes text with the glyph for commitType when the style is emoji.
func (c *Config) Decorate(commitType, text string) string {
	if c.Style != StyleEmoji {
		return text
	}
	if g := Glyph(commitType); g != "" {
		return g + " " + text
	}
	return text
}
