package directive

import "strings"

// Sanitize removes the given spans from text and tidies the seams they
// leave behind. Whitespace is collapsed only where a span was cut out, so a
// text with no spans comes back unchanged apart from the final trim.
// Sanitizing already-clean text is a no-op.
func Sanitize(text string, spans []Span) string {
	if len(spans) == 0 {
		return strings.TrimSpace(text)
	}

	// Cut from the end so earlier offsets stay valid.
	ordered := make([]Span, len(spans))
	copy(ordered, spans)
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			if ordered[j].Start > ordered[i].Start {
				ordered[i], ordered[j] = ordered[j], ordered[i]
			}
		}
	}

	out := text
	for _, sp := range ordered {
		if sp.Start < 0 || sp.End > len(out) || sp.Start > sp.End {
			continue
		}
		left, right := sp.Start, sp.End

		// Widen the cut over the horizontal whitespace run touching the
		// span on both sides, then close the seam with a single space
		// unless the cut sits at a string edge or against a newline.
		for left > 0 && (out[left-1] == ' ' || out[left-1] == '\t') {
			left--
		}
		for right < len(out) && (out[right] == ' ' || out[right] == '\t') {
			right++
		}

		seam := ""
		if left > 0 && right < len(out) && out[left-1] != '\n' && out[right] != '\n' {
			seam = " "
		}
		out = out[:left] + seam + out[right:]
	}
	return strings.TrimSpace(out)
}
