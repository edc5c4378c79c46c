package models

// Stats holds headcount totals for a set of employees
type Stats struct {
	Total       int
	Present     int
	Missing     int
	Excused     int
	Unaccounted int
}

// CalcStats tallies statuses for the given employees against an
// attendance map keyed by employee ID. Employees without a record
// count as unaccounted.
func CalcStats(employees []*Employee, attendance map[string]*AttendanceRecord) Stats {
	stats := Stats{Total: len(employees)}
	for _, employee := range employees {
		switch EffectiveStatus(attendance[employee.ID]) {
		case StatusPresent:
			stats.Present++
		case StatusMissing:
			stats.Missing++
		case StatusExcused:
			stats.Excused++
		default:
			stats.Unaccounted++
		}
	}
	return stats
}

// AllClear reports whether every employee is accounted for and nobody
// is missing. Empty rosters are never all clear.
func (s Stats) AllClear() bool {
	return s.Total > 0 && s.Unaccounted == 0 && s.Missing == 0
}
