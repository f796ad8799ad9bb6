package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/aurorus/pkg/deps"
	"github.com/matzehuels/aurorus/pkg/install"
	"github.com/matzehuels/aurorus/pkg/removal"
	"github.com/matzehuels/aurorus/pkg/source"
	"github.com/matzehuels/aurorus/pkg/update"
)

var headerStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)

// headerRow is the row index lipgloss tables pass to StyleFunc for headers.
const headerRow = -1

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...)
}

// =============================================================================
// Search
// =============================================================================

func searchView(results []source.Result) string {
	rows := make([][]string, len(results))
	for i, r := range results {
		rows[i] = searchRow(r)
	}
	t := newTable("Name", "Version", "Origin", "Votes", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return headerStyle
			}
			r := results[row]
			switch col {
			case 0:
				if r.Installed {
					return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
				}
				return StyleValue
			case 2:
				return originStyle(string(r.Origin))
			case 4:
				return StyleDim
			}
			if col == 1 && r.OutOfDate {
				return StyleWarning
			}
			return lipgloss.NewStyle()
		})
	return t.Render()
}

func searchRow(r source.Result) []string {
	name := r.Name
	if r.Installed {
		name += " " + iconSuccess
	}
	origin := string(r.Origin)
	if r.Repository != "" {
		origin = r.Repository
	}
	votes := ""
	if r.Origin == source.OriginAUR {
		votes = strconv.Itoa(r.Votes)
	}
	return []string{name, r.Version, origin, votes, truncate(r.Description, 60)}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

// =============================================================================
// Plans
// =============================================================================

func planView(plan *deps.Plan) string {
	var b strings.Builder
	root := plan.Root()
	fmt.Fprintf(&b, "%s %s\n", StyleTitle.Render("Install plan for"), StyleHighlight.Render(root.Name()))

	rows := make([][]string, len(plan.Steps))
	for i, n := range plan.Steps {
		reason := "dependency"
		if n.Explicit {
			reason = "requested"
		}
		origin := string(n.Origin())
		if n.Pinned {
			origin += " (pinned)"
		}
		rows[i] = []string{strconv.Itoa(i + 1), n.Name(), n.Version(), origin, reason}
	}
	t := newTable("#", "Package", "Version", "Origin", "Reason").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return headerStyle
			}
			switch col {
			case 0, 4:
				return StyleDim
			case 3:
				return originStyle(string(plan.Steps[row].Origin()))
			}
			return StyleValue
		})
	b.WriteString(t.Render())
	b.WriteString("\n")

	if len(plan.Satisfied) > 0 {
		b.WriteString(StyleDim.Render("Already installed:") + "\n")
		for _, s := range plan.Satisfied {
			fmt.Fprintf(&b, "  %s %s %s %s\n", StyleDim.Render(iconSkip), s.Dependency,
				StyleDim.Render(iconArrow), StyleValue.Render(s.Name+" "+s.Version))
		}
	}
	for _, w := range plan.Warnings {
		fmt.Fprintf(&b, "%s %s\n", styleIconWarning.Render(iconWarning), StyleWarning.Render(w.Error()))
	}
	return b.String()
}

func removalView(plan *removal.Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", StyleTitle.Render("Removal plan for"), StyleHighlight.Render(plan.Target))

	rows := make([][]string, len(plan.Steps))
	for i, s := range plan.Steps {
		rows[i] = []string{strconv.Itoa(i + 1), s.Name, string(s.Reason)}
	}
	t := newTable("#", "Package", "Reason").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return headerStyle
			}
			if col == 1 {
				return StyleValue
			}
			return StyleDim
		})
	b.WriteString(t.Render())
	b.WriteString("\n")

	if plan.Forced {
		msg := fmt.Sprintf("forced: still required by %s", strings.Join(plan.BlockedBy, ", "))
		fmt.Fprintf(&b, "%s %s\n", styleIconWarning.Render(iconWarning), StyleWarning.Render(msg))
	}
	return b.String()
}

// =============================================================================
// Reports
// =============================================================================

func reportView(r *install.Report) string {
	var b strings.Builder
	for _, o := range r.Outcomes {
		icon, style := outcomeIcon(o.Status)
		line := fmt.Sprintf("%s %s", style.Render(icon), StyleValue.Render(o.Name))
		if o.Version != "" {
			line += " " + StyleDim.Render(o.Version)
		}
		line += " " + style.Render(string(o.Status))
		if o.Reason != "" {
			line += StyleDim.Render(" (" + o.Reason + ")")
		}
		if o.Duration > 0 {
			line += " " + StyleDim.Render(o.Duration.Round(time.Millisecond).String())
		}
		b.WriteString(line + "\n")
	}
	b.WriteString(StyleDim.Render(summaryLine(r)))
	return b.String()
}

func outcomeIcon(s install.Status) (string, lipgloss.Style) {
	switch s {
	case install.StatusInstalled, install.StatusRemoved:
		return iconSuccess, StyleSuccess
	case install.StatusFailed:
		return iconError, StyleError
	case install.StatusSkipped:
		return iconSkip, StyleDim
	}
	return iconPending, StyleDim
}

func summaryLine(r *install.Report) string {
	var parts []string
	for _, s := range []install.Status{
		install.StatusInstalled, install.StatusRemoved, install.StatusSkipped,
		install.StatusFailed, install.StatusNotRun,
	} {
		if n := r.Count(s); n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, s))
		}
	}
	if len(parts) == 0 {
		parts = append(parts, "nothing to do")
	}
	return fmt.Sprintf("run %s: %s in %s", shortID(r.RunID), strings.Join(parts, ", "),
		r.Elapsed.Round(time.Millisecond))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// =============================================================================
// Updates
// =============================================================================

func updatesView(updates []update.Update) string {
	rows := make([][]string, len(updates))
	for i, u := range updates {
		rows[i] = []string{u.Name, u.Installed, iconArrow, u.Available}
	}
	return newTable("Package", "Installed", "", "Available").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == headerRow:
				return headerStyle
			case col == 3:
				return StyleSuccess
			case col == 0:
				return StyleValue
			}
			return StyleDim
		}).
		Render()
}
