package dashboard

import (
	"fmt"
	"strings"
)

// View implements tea.Model: it renders the header, a line per observed
// track (ok/not-all-ok), and a footer tally.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.spin.View() + " melodium — world dashboard"))
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-8s %s", "TRACK", "STATUS")))
	b.WriteString("\n")

	if len(m.tracks) == 0 {
		b.WriteString(mutedStyle.Render("  (no tracks yet)"))
		b.WriteString("\n")
	}

	var okCount, failedCount int
	for _, t := range m.tracks {
		status := okStyle.Render("ok")
		if !t.AllOk() {
			status = failedStyle.Render("not all ok")
			failedCount++
		} else {
			okCount++
		}
		b.WriteString(fmt.Sprintf("  %-6d %s\n", t.ID, status))
	}

	b.WriteString(footerStyle.Render(fmt.Sprintf("%d track(s) observed — %d ok, %d not all ok (q to quit)",
		len(m.tracks), okCount, failedCount)))
	b.WriteString("\n")

	return b.String()
}
