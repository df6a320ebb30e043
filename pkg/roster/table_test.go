package roster

import (
	"context"
	"fmt"
	"testing"
	"time"
)

// fakeTable keeps the sheet in memory. ReplaceAll updates what later reads
// return, like the real sheet does.
type fakeTable struct {
	records      []map[string]string
	readErr      error
	writeErr     error
	readCalls    int
	replaceCalls int
	header       []string
	rows         [][]string
	// beforeRead runs at the start of every read, after readCalls is bumped.
	beforeRead func(f *fakeTable)
}

func (f *fakeTable) ReadAllRows(ctx context.Context) ([]map[string]string, error) {
	f.readCalls++
	if f.beforeRead != nil {
		f.beforeRead(f)
	}
	if f.readErr != nil {
		return nil, f.readErr
	}
	out := make([]map[string]string, len(f.records))
	for i, rec := range f.records {
		cp := make(map[string]string, len(rec))
		for k, v := range rec {
			cp[k] = v
		}
		out[i] = cp
	}
	return out, nil
}

func (f *fakeTable) ReplaceAll(ctx context.Context, header []string, rows [][]string) error {
	f.replaceCalls++
	if f.writeErr != nil {
		return f.writeErr
	}
	f.header = header
	f.rows = rows
	f.records = zipRecords(header, rows)
	return nil
}

func zipRecords(header []string, rows [][]string) []map[string]string {
	out := make([]map[string]string, len(rows))
	for i, row := range rows {
		rec := make(map[string]string, len(header))
		for j, col := range header {
			if j < len(row) {
				rec[col] = row[j]
			}
		}
		out[i] = rec
	}
	return out
}

func canonicalRecord(no int, name, first, second, comment, modified string) map[string]string {
	return map[string]string{
		ColumnNumber:        fmt.Sprint(no),
		ColumnName:          name,
		ColumnFirstSession:  first,
		ColumnSecondSession: second,
		ColumnComment:       comment,
		ColumnLastModified:  modified,
	}
}

func pinClock(t *testing.T, at time.Time) {
	t.Helper()
	old := nowFunc
	nowFunc = func() time.Time { return at }
	t.Cleanup(func() { nowFunc = old })
}
