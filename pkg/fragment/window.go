package fragment

import (
	"strings"

	"github.com/doclens/doclens/pkg/common"
)

// Segment markers let the oracle (and anyone reading a logged unit) tell
// neighbor context apart from the text actually under analysis.
const (
	previousMarkerOpen  = "=== PREVIOUS CONTEXT ==="
	previousMarkerClose = "=== END PREVIOUS CONTEXT ==="
	currentMarkerOpen   = "=== CURRENT TEXT ==="
	currentMarkerClose  = "=== END CURRENT TEXT ==="
	nextMarkerOpen      = "=== NEXT CONTEXT ==="
	nextMarkerClose     = "=== END NEXT CONTEXT ==="
)

// buildUnit assembles the text unit sent to the oracle for chunk i: up to
// overlap trailing runes of the previous chunk, the full current chunk,
// and up to overlap leading runes of the next chunk, each wrapped in its
// marker. Missing neighbors are omitted, not padded, so the first and
// last chunks still produce well-formed units.
func buildUnit(chunks []common.Chunk, i int, overlap int) string {
	var b strings.Builder

	if i > 0 {
		previous := trailingRunes(chunks[i-1].Text, overlap)
		if previous != "" {
			b.WriteString(previousMarkerOpen)
			b.WriteString("\n")
			b.WriteString(previous)
			b.WriteString("\n")
			b.WriteString(previousMarkerClose)
			b.WriteString("\n\n")
		}
	}

	b.WriteString(currentMarkerOpen)
	b.WriteString("\n")
	b.WriteString(chunks[i].Text)
	b.WriteString("\n")
	b.WriteString(currentMarkerClose)

	if i < len(chunks)-1 {
		next := leadingRunes(chunks[i+1].Text, overlap)
		if next != "" {
			b.WriteString("\n\n")
			b.WriteString(nextMarkerOpen)
			b.WriteString("\n")
			b.WriteString(next)
			b.WriteString("\n")
			b.WriteString(nextMarkerClose)
		}
	}

	return b.String()
}

func trailingRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}

func leadingRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
