package roster

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// rawTable is a sheet as read, before it has been mapped onto the
// canonical schema. Rows are copies, so migrations may edit them freely.
type rawTable struct {
	columns map[string]bool
	rows    []map[string]string
}

func newRawTable(records []map[string]string) *rawTable {
	t := &rawTable{
		columns: make(map[string]bool),
		rows:    make([]map[string]string, len(records)),
	}
	for i, rec := range records {
		row := make(map[string]string, len(rec))
		for k, v := range rec {
			row[k] = v
			t.columns[k] = true
		}
		t.rows[i] = row
	}
	return t
}

func (t *rawTable) has(col string) bool {
	return t.columns[col]
}

func (t *rawTable) rename(from, to string) {
	for _, row := range t.rows {
		if v, ok := row[from]; ok {
			row[to] = v
			delete(row, from)
		}
	}
	delete(t.columns, from)
	t.columns[to] = true
}

// fill sets col to value on every row.
func (t *rawTable) fill(col, value string) {
	for _, row := range t.rows {
		row[col] = value
	}
	t.columns[col] = true
}

// migration takes one historical sheet layout to the next. Steps are
// applied in order and each one is a no-op on layouts it does not recognise.
type migration struct {
	name  string
	apply func(t *rawTable)
}

var migrations = []migration{
	{name: "rename-identifier", apply: renameIdentifier},
	{name: "split-attendance", apply: splitAttendance},
	{name: "backfill-columns", apply: backfillColumns},
}

// The first revisions keyed participants by "ID".
func renameIdentifier(t *rawTable) {
	if t.has(legacyColumnID) && !t.has(ColumnNumber) {
		t.rename(legacyColumnID, ColumnNumber)
	}
}

// Before the second session existed attendance was a single "出席" column.
func splitAttendance(t *rawTable) {
	if t.has(legacyColumnAttendance) && !t.has(ColumnFirstSession) {
		t.rename(legacyColumnAttendance, ColumnFirstSession)
		t.fill(ColumnSecondSession, "FALSE")
	}
}

func backfillColumns(t *rawTable) {
	for _, col := range CanonicalColumns {
		if t.has(col) {
			continue
		}
		def := ""
		if col == ColumnFirstSession || col == ColumnSecondSession {
			def = "FALSE"
		}
		t.fill(col, def)
	}
}

// Normalize maps rows read from the sheet, in any known historical layout,
// onto the canonical Roster. On failure it returns an empty Roster and a
// KindNormalization error.
func Normalize(records []map[string]string) (out Roster, err error) {
	if len(records) == 0 {
		return Roster{}, nil
	}

	defer func() {
		if rec := recover(); rec != nil {
			out = Roster{}
			err = newError(KindNormalization, "normalize", "malformed sheet data", fmt.Errorf("%v", rec))
		}
	}()

	t := newRawTable(records)
	for _, m := range migrations {
		m.apply(t)
		log.WithField("step", m.name).Debug("applied schema migration")
	}

	out = make(Roster, 0, len(t.rows))
	seen := make(map[int]int, len(t.rows))
	for i, row := range t.rows {
		no, perr := parseNumber(row[ColumnNumber])
		if perr != nil {
			return Roster{}, newError(KindNormalization, "normalize",
				fmt.Sprintf("row %d: invalid %s", i+1, ColumnNumber), perr)
		}
		if prev, dup := seen[no]; dup {
			return Roster{}, newError(KindNormalization, "normalize",
				fmt.Sprintf("rows %d and %d share %s %d", prev+1, i+1, ColumnNumber, no), nil)
		}
		seen[no] = i
		out = append(out, Participant{
			Number:        no,
			Name:          row[ColumnName],
			FirstSession:  ParseBool(row[ColumnFirstSession]),
			SecondSession: ParseBool(row[ColumnSecondSession]),
			Comment:       row[ColumnComment],
			LastModified:  row[ColumnLastModified],
		})
	}
	return out, nil
}

// ParseBool reports whether a stored cell is the TRUE token, ignoring case.
// Anything else, including "1" and "yes", is false.
func ParseBool(v string) bool {
	return strings.ToUpper(v) == "TRUE"
}

// parseNumber accepts integer text and integral float text ("3.0"), which
// is how the Sheets API renders numbers typed into a cell by hand.
func parseNumber(v string) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, fmt.Errorf("empty value")
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("%q is not an integer", v)
		}
		n = int(f)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%d is not positive", n)
	}
	return n, nil
}
