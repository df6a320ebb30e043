package roster

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(table *fakeTable, opts ServiceOptions) *Service {
	return NewService(NewStore(table), opts)
}

func seededTable() *fakeTable {
	return &fakeTable{records: []map[string]string{
		canonicalRecord(1, "佐藤", "TRUE", "FALSE", "", ""),
		canonicalRecord(2, "鈴木", "FALSE", "FALSE", "", ""),
	}}
}

func TestServiceView(t *testing.T) {
	svc := newTestService(seededTable(), ServiceOptions{})
	r, stats, err := svc.View(context.Background(), SortByFirstSession)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, numbers(r))
	assert.Equal(t, Stats{Total: 2, FirstAttended: 1}, stats)

	r, stats, err = svc.View(context.Background(), SortMode("bogus"))
	assert.True(t, IsKind(err, KindValidation))
	assert.Equal(t, []int{1, 2}, numbers(r))
	assert.Equal(t, 2, stats.Total)
}

func TestServiceViewLoadFailure(t *testing.T) {
	svc := newTestService(&fakeTable{readErr: errors.New("offline")}, ServiceOptions{})
	r, stats, err := svc.View(context.Background(), SortByNumber)
	assert.True(t, IsKind(err, KindConnection))
	assert.Empty(t, r)
	assert.Equal(t, Stats{}, stats)
}

func TestServiceAdd(t *testing.T) {
	table := seededTable()
	svc := newTestService(table, ServiceOptions{})

	r, p, err := svc.Add(context.Background(), "田中")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Number)
	assert.Len(t, r, 3)
	assert.Equal(t, 1, table.replaceCalls)
	assert.Equal(t, []string{"3", "田中", "FALSE", "FALSE", "", ""}, table.rows[2])

	_, _, err = svc.Add(context.Background(), " ")
	assert.True(t, IsKind(err, KindValidation))
	assert.Equal(t, 1, table.replaceCalls, "validation failures must not save")
}

func TestServiceEditWithoutChangeDoesNotSave(t *testing.T) {
	pinClock(t, fixedTime)
	table := seededTable()
	svc := newTestService(table, ServiceOptions{})

	_, changed, err := svc.Edit(context.Background(), 1, true, false, "")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Zero(t, table.replaceCalls)

	r, changed, err := svc.Edit(context.Background(), 1, true, true, "")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, fixedStamp, r[0].LastModified)
	assert.Equal(t, 1, table.replaceCalls)

	_, _, err = svc.Edit(context.Background(), 42, true, true, "")
	assert.True(t, IsKind(err, KindNotFound))
}

func TestServicePatchKeepsUnsetFields(t *testing.T) {
	pinClock(t, fixedTime)
	table := seededTable()
	// Another editor marks 鈴木 as attending just before this interaction loads.
	table.beforeRead = func(f *fakeTable) {
		if f.readCalls == 1 {
			f.records[1][ColumnFirstSession] = "TRUE"
		}
	}
	svc := newTestService(table, ServiceOptions{})

	second := true
	r, changed, err := svc.Patch(context.Background(), 2, Changes{SecondSession: &second})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 1, table.readCalls, "one load per interaction")
	assert.True(t, r[1].FirstSession, "the concurrent change survives")
	assert.True(t, r[1].SecondSession)
	assert.Equal(t, fixedStamp, r[1].LastModified)
	assert.Equal(t, "TRUE", table.records[1][ColumnFirstSession])

	comment := ""
	_, changed, err = svc.Patch(context.Background(), 2, Changes{Comment: &comment})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 1, table.replaceCalls)

	_, _, err = svc.Patch(context.Background(), 9, Changes{SecondSession: &second})
	assert.True(t, IsKind(err, KindNotFound))
}

func TestServiceToggle(t *testing.T) {
	table := seededTable()
	svc := newTestService(table, ServiceOptions{})

	r, changed, err := svc.Toggle(context.Background(), 2, SecondSession)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, r[1].SecondSession)
	assert.Equal(t, "TRUE", table.records[1][ColumnSecondSession])

	_, _, err = svc.Toggle(context.Background(), 2, SessionNumber(3))
	assert.True(t, IsKind(err, KindValidation))
}

func TestServiceDelete(t *testing.T) {
	table := seededTable()
	svc := newTestService(table, ServiceOptions{})

	r, changed, err := svc.Delete(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []int{2}, numbers(r))

	r, changed, err = svc.Delete(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, []int{2}, numbers(r))
	assert.Equal(t, 1, table.replaceCalls)
}

func TestServiceNeverSavesAfterFailedLoad(t *testing.T) {
	table := &fakeTable{records: []map[string]string{{"No": "broken"}}}
	svc := newTestService(table, ServiceOptions{})

	_, _, err := svc.Add(context.Background(), "佐藤")
	assert.True(t, IsKind(err, KindNormalization))
	assert.Zero(t, table.replaceCalls)
}

func TestServiceSaveFailure(t *testing.T) {
	table := seededTable()
	table.writeErr = errors.New("503")
	svc := newTestService(table, ServiceOptions{})

	r, changed, err := svc.Toggle(context.Background(), 1, FirstSession)
	assert.True(t, IsKind(err, KindSave))
	assert.True(t, changed)
	assert.False(t, r[0].FirstSession)
}

func TestServiceConflictCheck(t *testing.T) {
	table := seededTable()
	table.beforeRead = func(f *fakeTable) {
		// The second read is the pre-save check; someone else got there first.
		if f.readCalls == 2 {
			f.records = append(f.records, canonicalRecord(3, "田中", "FALSE", "FALSE", "", ""))
		}
	}
	svc := newTestService(table, ServiceOptions{ConflictCheck: true})

	_, _, err := svc.Toggle(context.Background(), 1, FirstSession)
	assert.True(t, IsKind(err, KindConflict))
	assert.Zero(t, table.replaceCalls)
}

func TestParseSessionNumber(t *testing.T) {
	for in, want := range map[string]SessionNumber{"1": FirstSession, "first": FirstSession, "2": SecondSession, "second": SecondSession} {
		got, err := ParseSessionNumber(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseSessionNumber("third")
	assert.True(t, IsKind(err, KindValidation))
}
