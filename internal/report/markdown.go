package report

import (
	"fmt"
	"strings"

	"github.com/caselens/caselens/internal/bias"
	"github.com/caselens/caselens/internal/weapons"
)

const methodologyNote = `All findings are aggregate statistical observations about case-record ` +
	`composition, not claims about individuals. Results depend on reporting practices and ` +
	`data completeness; excluded and unknown records are counted above rather than silently dropped.`

// RenderMarkdown renders the report as a human-readable markdown document.
// The output is a pure function of the report: section order, row order, and
// number formatting are all fixed.
func RenderMarkdown(r *Report) string {
	var sections []string
	sections = append(sections, "# Case Record Bias Analysis")
	sections = append(sections, datasetSection(r.DatasetSummary))
	sections = append(sections, geographicSection(r.Geographic))
	sections = append(sections, categorySection(r.Category))
	sections = append(sections, temporalSection(r.Temporal))
	sections = append(sections, persistenceSection(r.Persistence))
	sections = append(sections, weaponsSection(r.Weapons))
	sections = append(sections, qualitySection(r.DatasetSummary))
	return strings.Join(sections, "\n\n") + "\n"
}

func datasetSection(s DatasetSummary) string {
	var b strings.Builder
	b.WriteString("## Dataset Summary\n\n")
	fmt.Fprintf(&b, "- Records analyzed: %d\n", s.RecordCount)
	if s.DateFrom != "" {
		fmt.Fprintf(&b, "- Publication range: %s to %s\n", s.DateFrom, s.DateTo)
	}
	fmt.Fprintf(&b, "- Distinct categories: %d\n", s.CategoryCount)
	fmt.Fprintf(&b, "- Distinct states: %d", s.StateCount)
	return b.String()
}

func testLine(t bias.TestResult) string {
	if !t.Conclusive {
		return fmt.Sprintf("Inconclusive: %s", t.Interpretation)
	}
	line := fmt.Sprintf("%s: statistic=%.4f, %s, df=%d (n=%d",
		t.Name, *t.Statistic, pString(*t.PValue), t.DF, t.SampleSize)
	if t.Excluded > 0 {
		line += fmt.Sprintf(", %d excluded", t.Excluded)
	}
	line += ")"
	if t.LowPower {
		line += " [low statistical power]"
	}
	return line
}

func geographicSection(g *bias.GeographicResult) string {
	var b strings.Builder
	b.WriteString("## Geographic Bias\n\n")
	b.WriteString(testLine(g.TestResult) + "\n\n")
	fmt.Fprintf(&b, "%s\n", g.Interpretation)
	if len(g.States) > 0 {
		b.WriteString("\n| State | Observed | Expected | Ratio |\n|---|---|---|---|\n")
		for _, st := range g.States {
			fmt.Fprintf(&b, "| %s | %d | %.1f | %.2f |\n", st.State, st.Observed, st.Expected, st.Ratio)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func categorySection(c *bias.CategoryResult) string {
	var b strings.Builder
	b.WriteString("## Category Bias\n\n")
	b.WriteString(testLine(c.TestResult) + "\n\n")
	b.WriteString(c.Interpretation)
	if len(c.OverRepresented) > 0 {
		fmt.Fprintf(&b, "\n\n- Over-represented: %s", strings.Join(c.OverRepresented, ", "))
	}
	if len(c.UnderRepresented) > 0 {
		fmt.Fprintf(&b, "\n- Under-represented: %s", strings.Join(c.UnderRepresented, ", "))
	}
	return b.String()
}

func temporalSection(t *bias.TemporalResult) string {
	var b strings.Builder
	b.WriteString("## Temporal Trends\n\n")
	fmt.Fprintf(&b, "%s\n", t.Interpretation)
	if len(t.Trends) > 0 {
		b.WriteString("\n| Category | Direction | r | p | Change |\n|---|---|---|---|---|\n")
		for _, tr := range t.Trends {
			fmt.Fprintf(&b, "| %s | %s | %.3f | %.4f | %+.1f%% |\n",
				tr.Family, tr.Direction, tr.Correlation, tr.PValue, tr.PercentChange)
		}
	}
	if len(t.Skipped) > 0 {
		fmt.Fprintf(&b, "\nSkipped (insufficient time points): %s\n", strings.Join(t.Skipped, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func persistenceSection(p *bias.PersistenceResult) string {
	var b strings.Builder
	b.WriteString("## Persistence Analysis\n\n")
	b.WriteString(testLine(p.TestResult) + "\n\n")
	fmt.Fprintf(&b, "%s\n", p.Interpretation)
	if len(p.Groups) > 0 {
		b.WriteString("\n| Category | n | Mean days | Median days |\n|---|---|---|---|\n")
		for _, g := range p.Groups {
			fmt.Fprintf(&b, "| %s | %d | %.1f | %.1f |\n", g.Family, g.Count, g.Mean, g.Median)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func weaponsSection(w *weapons.Summary) string {
	var b strings.Builder
	b.WriteString("## Weapons Analysis\n\n")
	fmt.Fprintf(&b, "%s\n", w.Note)
	b.WriteString("\n| Weapon | Count | Share |\n|---|---|---|\n")
	for _, cs := range w.Distribution {
		fmt.Fprintf(&b, "| %s | %d | %.1f%% |\n", cs.Category, cs.Count, cs.Percentage)
	}
	if len(w.StateGroups) > 0 {
		b.WriteString("\nStates with similar weapon profiles:\n")
		for _, g := range w.StateGroups {
			fmt.Fprintf(&b, "- %s\n", strings.Join(g.States, ", "))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func qualitySection(s DatasetSummary) string {
	q := s.Quality
	var b strings.Builder
	b.WriteString("## Data Quality & Limitations\n\n")
	fmt.Fprintf(&b, "- Input records: %d, excluded: %d (%d missing id, %d bad date, %d duplicate)\n",
		q.InputCount, q.Dropped(), q.DroppedMissingID, q.DroppedBadDate, q.DroppedDuplicate)
	fmt.Fprintf(&b, "- Negative durations nulled: %d\n", q.NegativeDurations)
	fmt.Fprintf(&b, "- Records without a resolvable state: %d\n", q.MissingState)
	fmt.Fprintf(&b, "- Records without a source category: %d\n\n", q.MissingCategory)
	b.WriteString(methodologyNote)
	return b.String()
}

func pString(p float64) string {
	if p < 0.0001 {
		return "p<0.0001"
	}
	return fmt.Sprintf("p=%.4f", p)
}
