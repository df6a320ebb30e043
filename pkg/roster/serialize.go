package roster

import "strconv"

// FormatBool renders a boolean as the literal token stored in the sheet.
func FormatBool(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

// ToRow returns the participant's cells in canonical column order.
func (p Participant) ToRow() []string {
	return []string{
		strconv.Itoa(p.Number),
		p.Name,
		FormatBool(p.FirstSession),
		FormatBool(p.SecondSession),
		p.Comment,
		p.LastModified,
	}
}

func (r Roster) ToRows() [][]string {
	rows := make([][]string, len(r))
	for i, p := range r {
		rows[i] = p.ToRow()
	}
	return rows
}

// Header returns a fresh copy of the canonical header row.
func Header() []string {
	h := make([]string, len(CanonicalColumns))
	copy(h, CanonicalColumns)
	return h
}
