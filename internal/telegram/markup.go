package telegram

import (
	"strings"

	"github.com/gotd/td/telegram/message/styling"
)

const boldMarker = "**"

// segment is a run of text sharing one style.
type segment struct {
	Text string
	Bold bool
}

// splitBold breaks text on "**" pairs. A marker without a closing partner stays literal.
func splitBold(text string) []segment {
	var out []segment
	for text != "" {
		open := strings.Index(text, boldMarker)
		if open < 0 {
			break
		}
		rest := text[open+len(boldMarker):]
		end := strings.Index(rest, boldMarker)
		if end < 0 {
			break
		}
		if open > 0 {
			out = append(out, segment{Text: text[:open]})
		}
		if end > 0 {
			out = append(out, segment{Text: rest[:end], Bold: true})
		}
		text = rest[end+len(boldMarker):]
	}
	if text != "" {
		out = append(out, segment{Text: text})
	}
	return out
}

// styledText converts "**" markup into gotd entities.
func styledText(text string) []styling.StyledTextOption {
	segs := splitBold(text)
	opts := make([]styling.StyledTextOption, 0, len(segs))
	for _, s := range segs {
		if s.Bold {
			opts = append(opts, styling.Bold(s.Text))
		} else {
			opts = append(opts, styling.Plain(s.Text))
		}
	}
	return opts
}
