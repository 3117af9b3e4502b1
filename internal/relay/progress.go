package relay

import (
	"fmt"
	"strings"
	"time"

	"github.com/ghrelay/ghrelay/internal/utils"
)

const (
	ReportPercentStep = 5.0
	ReportInterval    = 3 * time.Second

	barWidth  = 20
	barFilled = "█"
	barEmpty  = "░"
)

// Progress decides when a transfer phase pushes a status update.
// An update fires when the percentage advanced by ReportPercentStep or ReportInterval elapsed,
// whichever comes first. One Progress belongs to one phase of one transfer.
type Progress struct {
	now         func() time.Time
	lastPercent float64
	lastReport  time.Time
}

func NewProgress(now func() time.Time) *Progress {
	if now == nil {
		now = time.Now
	}
	return &Progress{now: now}
}

// ShouldReport reports whether current/total warrants an update and, if so, records it.
// With total <= 0 the percentage trigger is off and only the interval applies.
func (p *Progress) ShouldReport(current, total int64) bool {
	now := p.now()

	pct := 0.0
	if total > 0 {
		pct = percent(current, total)
	}

	byPercent := total > 0 && pct-p.lastPercent >= ReportPercentStep
	byInterval := now.Sub(p.lastReport) >= ReportInterval
	if !byPercent && !byInterval {
		return false
	}

	if pct > p.lastPercent {
		p.lastPercent = pct
	}
	p.lastReport = now
	return true
}

// Render draws a status block for a phase: title, filename, sizes, percentage and a 20 cell bar.
func Render(title, filename string, current, total int64) string {
	pct := percent(current, total)

	filled := int(pct / ReportPercentStep)
	filled = max(0, min(filled, barWidth))

	totalStr := "?"
	if total >= 0 {
		totalStr = utils.FormatSize(total)
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "📁 %s\n", filename)
	fmt.Fprintf(&b, "📊 %s / %s\n", utils.FormatSize(current), totalStr)
	fmt.Fprintf(&b, "⏳ %.1f%%\n", pct)
	b.WriteString(strings.Repeat(barFilled, filled))
	b.WriteString(strings.Repeat(barEmpty, barWidth-filled))
	return b.String()
}

// percent treats 0 of 0 as done and an unknown total as 0%.
func percent(current, total int64) float64 {
	switch {
	case total > 0:
		return float64(current) / float64(total) * 100
	case total == 0 && current == 0:
		return 100
	default:
		return 0
	}
}
