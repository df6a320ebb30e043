package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"attendance/pkg/roster"
	"attendance/pkg/sqlitetable"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type cliHarness struct {
	t     *testing.T
	table *sqlitetable.Table
	reads int
}

// countingTable counts reads so tests can check one load per command.
type countingTable struct {
	*sqlitetable.Table
	reads *int
}

func (c countingTable) ReadAllRows(ctx context.Context) ([]map[string]string, error) {
	*c.reads++
	return c.Table.ReadAllRows(ctx)
}

func newHarness(t *testing.T) *cliHarness {
	t.Helper()
	tbl, err := sqlitetable.Open(":memory:", "名簿")
	require.NoError(t, err)
	t.Cleanup(func() { tbl.Close() })
	require.NoError(t, tbl.WriteGrid(context.Background(), [][]string{
		{"ID", "名前", "出席", "コメント", "更新日時"},
		{"1", "佐藤", "TRUE", "", ""},
		{"2", "鈴木", "FALSE", "遅刻", ""},
	}))
	return &cliHarness{t: t, table: tbl}
}

func (h *cliHarness) run(stdin string, args ...string) (string, string, error) {
	opts := &rootOptions{
		openService: func(ctx context.Context, configFile string) (*roster.Service, func() error, error) {
			table := countingTable{Table: h.table, reads: &h.reads}
			svc := roster.NewService(roster.NewStore(table), roster.ServiceOptions{})
			return svc, func() error { return nil }, nil
		},
	}
	cmd := newRootCommandWithOptions(opts)
	var out, errOut bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func (h *cliHarness) roster() roster.Roster {
	r, err := roster.NewStore(h.table).Load(context.Background())
	require.NoError(h.t, err)
	return r
}

func TestListText(t *testing.T) {
	h := newHarness(t)
	out, _, err := h.run("", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "佐藤")
	assert.Contains(t, out, "遅刻")
	assert.Contains(t, out, "総参加者数: 2")
	assert.Contains(t, out, "1回目出席: 1 (50.0%)")
}

func TestListJSON(t *testing.T) {
	h := newHarness(t)
	out, _, err := h.run("", "list", "--format", "json", "--sort", "first")
	require.NoError(t, err)

	var got rosterOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Participants, 2)
	assert.Equal(t, 1, got.Participants[0].Number)
	assert.Equal(t, 2, got.Stats.Total)
}

func TestListYAML(t *testing.T) {
	h := newHarness(t)
	out, _, err := h.run("", "list", "--format", "yaml")
	require.NoError(t, err)

	var got rosterOutput
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, "鈴木", got.Participants[1].Name)
	assert.Equal(t, "遅刻", got.Participants[1].Comment)
}

func TestListUnknownSortWarns(t *testing.T) {
	h := newHarness(t)
	out, errOut, err := h.run("", "list", "--sort", "age")
	require.NoError(t, err)
	assert.Contains(t, errOut, "unknown sort mode")
	assert.Contains(t, out, "佐藤")
}

func TestInvalidFormat(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run("", "list", "--format", "xml")
	assert.Error(t, err)
}

func TestStats(t *testing.T) {
	h := newHarness(t)
	out, _, err := h.run("", "stats", "--format", "json")
	require.NoError(t, err)
	var s roster.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, roster.Stats{Total: 2, FirstAttended: 1}, s)
}

func TestAddAndToggle(t *testing.T) {
	h := newHarness(t)
	out, _, err := h.run("", "add", "田中", "花子")
	require.NoError(t, err)
	assert.Contains(t, out, "田中 花子さんを追加しました (No. 3)")

	out, _, err = h.run("", "toggle", "3", "second")
	require.NoError(t, err)
	assert.Contains(t, out, "2回目 出席")

	r := h.roster()
	require.Len(t, r, 3)
	assert.True(t, r[2].SecondSession)
	assert.NotEmpty(t, r[2].LastModified)

	_, _, err = h.run("", "add", " ")
	assert.True(t, roster.IsKind(err, roster.KindValidation))
}

func TestEditKeepsUnsetFields(t *testing.T) {
	h := newHarness(t)
	out, _, err := h.run("", "edit", "2", "--second")
	require.NoError(t, err)
	assert.Contains(t, out, "変更を保存しました")
	assert.Equal(t, 1, h.reads, "defaults come from the load the edit is applied to")

	p, ok := h.roster().Find(2)
	require.True(t, ok)
	assert.False(t, p.FirstSession)
	assert.True(t, p.SecondSession)
	assert.Equal(t, "遅刻", p.Comment)

	out, _, err = h.run("", "edit", "2", "--second", "--comment", "遅刻")
	require.NoError(t, err)
	assert.Contains(t, out, "変更はありません")

	_, _, err = h.run("", "edit", "9", "--first")
	assert.True(t, roster.IsKind(err, roster.KindNotFound))
}

func TestDeleteConfirmation(t *testing.T) {
	tests := []struct {
		name      string
		stdin     string
		args      []string
		wantOut   string
		wantCount int
	}{
		{"declined", "n\n", []string{"delete", "1"}, "キャンセルしました", 2},
		{"no answer", "", []string{"delete", "1"}, "キャンセルしました", 2},
		{"confirmed", "y\n", []string{"delete", "1"}, "削除しました", 1},
		{"yes flag", "", []string{"delete", "--yes", "2"}, "削除しました", 1},
		{"missing participant", "", []string{"delete", "-y", "7"}, "participant 7 was not on the roster", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			out, _, err := h.run(tt.stdin, tt.args...)
			require.NoError(t, err)
			assert.Contains(t, out, tt.wantOut)
			assert.Len(t, h.roster(), tt.wantCount)
		})
	}
}

func TestBadNumber(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run("", "toggle", "zero", "first")
	assert.Error(t, err)
	_, _, err = h.run("", "toggle", "1", "third")
	assert.True(t, roster.IsKind(err, roster.KindValidation))
}
