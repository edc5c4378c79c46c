// Package report renders the printable headcount report. Everything is
// built from the already-loaded roster and attendance map; no store
// access happens here.
package report

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/firewatch/muster/internal/models"
)

// statusIcons are the single-character markers used in report lines
var statusIcons = map[models.Status]string{
	models.StatusUnaccounted: "?",
	models.StatusPresent:     "✓",
	models.StatusMissing:     "✗",
	models.StatusExcused:     "∅",
}

// Input holds everything the report is generated from
type Input struct {
	// Session is the drill being reported on, may be nil
	Session *models.DrillSession

	// Marshals is the full marshal list, ordered by name
	Marshals []*models.Marshal

	// Employees is the full roster, ordered by name
	Employees []*models.Employee

	// Attendance is the session ledger keyed by employee ID
	Attendance map[string]*models.AttendanceRecord

	// Now is the report generation time
	Now time.Time
}

// Build renders the plain-text headcount report: header, overall
// summary, one block per marshal's party, unassigned employees, and a
// closing missing-persons section when anyone is missing.
func Build(input *Input) string {
	var b strings.Builder

	writeHeader(&b, input)
	writeSummary(&b, input)

	for _, m := range input.Marshals {
		party := partyOf(input.Employees, m.ID)
		if len(party) == 0 {
			continue
		}
		writePartyBlock(&b, m, party, input.Attendance)
	}

	unassigned := unassignedOf(input.Employees, input.Marshals)
	if len(unassigned) > 0 {
		b.WriteString("── UNASSIGNED ────────────────────────────────\n")
		for _, e := range unassigned {
			record := input.Attendance[e.ID]
			fmt.Fprintf(&b, "  %s %s %s\n", icon(record), pad(e.Name, 22), e.Dept)
		}
		b.WriteString("\n")
	}

	writeMissing(&b, input)

	return b.String()
}

func writeHeader(b *strings.Builder, input *Input) {
	b.WriteString("FIRE EVACUATION DRILL – HEADCOUNT REPORT\n")
	b.WriteString("==========================================\n")
	fmt.Fprintf(b, "Date:          %s\n", input.Now.Format("02 Jan 2006"))
	fmt.Fprintf(b, "Report time:   %s\n", input.Now.Format("15:04:05"))

	session := input.Session
	if session == nil {
		b.WriteString("Drill:         —\n\n")
		return
	}

	fmt.Fprintf(b, "Drill started: %s  by  %s\n", session.StartedAt.Format("15:04:05"), orDash(session.StartedBy))
	if session.EndedAt != nil {
		fmt.Fprintf(b, "Drill ended:   %s  by  %s\n", session.EndedAt.Format("15:04:05"), orDash(session.EndedBy))
	} else {
		b.WriteString("Status:        ONGOING\n")
	}

	elapsed := session.Elapsed(input.Now)
	fmt.Fprintf(b, "Duration:      %dm %ds\n\n", int(elapsed.Minutes()), int(elapsed.Seconds())%60)
}

func writeSummary(b *strings.Builder, input *Input) {
	stats := models.CalcStats(input.Employees, input.Attendance)

	b.WriteString("── OVERALL SUMMARY ──────────────────────\n")
	fmt.Fprintf(b, "  Total staff    : %d\n", stats.Total)
	fmt.Fprintf(b, "  ✓ Present      : %d\n", stats.Present)
	fmt.Fprintf(b, "  ✗ Missing      : %d\n", stats.Missing)
	fmt.Fprintf(b, "  ∅ Off-site     : %d\n", stats.Excused)
	fmt.Fprintf(b, "  ? Unaccounted  : %d\n\n", stats.Unaccounted)
}

func writePartyBlock(b *strings.Builder, m *models.Marshal, party []*models.Employee, attendance map[string]*models.AttendanceRecord) {
	stats := models.CalcStats(party, attendance)

	rule := strings.Repeat("─", max(0, 44-utf8.RuneCountInString(m.Name)))
	fmt.Fprintf(b, "── %s %s\n", strings.ToUpper(m.Name), rule)
	fmt.Fprintf(b, "  Present: %d  Missing: %d  Off-site: %d  Unaccounted: %d\n",
		stats.Present, stats.Missing, stats.Excused, stats.Unaccounted)

	for _, e := range party {
		record := attendance[e.ID]
		line := fmt.Sprintf("  %s %s %s", icon(record), pad(e.Name, 22), pad(e.Dept, 16))
		if record != nil && record.Note != "" {
			line += fmt.Sprintf("  [%s]", record.Note)
		}
		if record != nil && record.MarshalName != "" {
			line += fmt.Sprintf("  (%s)", record.MarshalName)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
}

func writeMissing(b *strings.Builder, input *Input) {
	missing := make([]*models.Employee, 0)
	for _, e := range input.Employees {
		if models.EffectiveStatus(input.Attendance[e.ID]) == models.StatusMissing {
			missing = append(missing, e)
		}
	}

	if len(missing) == 0 {
		return
	}

	b.WriteString("⚠  MISSING PERSONS – ACTION REQUIRED ─────────\n")
	for _, e := range missing {
		marshalName := "Unassigned"
		for _, m := range input.Marshals {
			if m.ID == e.MarshalID {
				marshalName = m.Name
				break
			}
		}

		line := fmt.Sprintf("  ✗ %s  |  %s  |  Marshal: %s", e.Name, orDash(e.Dept), marshalName)
		if record := input.Attendance[e.ID]; record != nil && record.Note != "" {
			line += fmt.Sprintf("  |  Note: %s", record.Note)
		}
		b.WriteString(line + "\n")
	}
}

func partyOf(employees []*models.Employee, marshalID string) []*models.Employee {
	party := make([]*models.Employee, 0)
	for _, e := range employees {
		if e.MarshalID == marshalID {
			party = append(party, e)
		}
	}
	return party
}

// unassignedOf returns employees with no marshal or a dangling marshal
// reference
func unassignedOf(employees []*models.Employee, marshals []*models.Marshal) []*models.Employee {
	known := make(map[string]bool, len(marshals))
	for _, m := range marshals {
		known[m.ID] = true
	}

	unassigned := make([]*models.Employee, 0)
	for _, e := range employees {
		if e.MarshalID == "" || !known[e.MarshalID] {
			unassigned = append(unassigned, e)
		}
	}
	return unassigned
}

func icon(record *models.AttendanceRecord) string {
	return statusIcons[models.EffectiveStatus(record)]
}

// pad left-aligns s in a field of the given rune width. fmt's %-Ns pads
// by bytes, which skews columns for names with multibyte characters.
func pad(s string, width int) string {
	if n := width - utf8.RuneCountInString(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
