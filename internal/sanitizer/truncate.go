package sanitizer // import "github.com/jemtv/storyfeed/internal/sanitizer"

const ellipsis = "..."

// TruncateText shortens text to at most maxLen runes. Truncated text ends
// with a three character ellipsis marker and is exactly maxLen runes long.
func TruncateText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen-len(ellipsis)]) + ellipsis
}
