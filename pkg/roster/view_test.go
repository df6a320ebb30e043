package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numbers(r Roster) []int {
	out := make([]int, len(r))
	for i, p := range r {
		out[i] = p.Number
	}
	return out
}

func TestSort(t *testing.T) {
	r := Roster{
		{Number: 3, Name: "carol", FirstSession: true},
		{Number: 1, Name: "Bob", SecondSession: true},
		{Number: 4, Name: "alice", FirstSession: true, SecondSession: true},
		{Number: 2, Name: "bob"},
	}
	tests := []struct {
		mode SortMode
		want []int
	}{
		{SortByNumber, []int{1, 2, 3, 4}},
		{SortByName, []int{4, 2, 1, 3}},
		{SortByFirstSession, []int{3, 4, 1, 2}},
		{SortBySecondSession, []int{1, 4, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			got, err := Sort(r, tt.mode, NewCollator("en"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, numbers(got))
			assert.Equal(t, []int{3, 1, 4, 2}, numbers(r), "input must not change")
		})
	}
}

func TestSortFirstSessionPriority(t *testing.T) {
	r := Roster{
		{Number: 1, FirstSession: false},
		{Number: 2, FirstSession: true},
		{Number: 3, FirstSession: true},
	}
	got, err := Sort(r, SortByFirstSession, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 1}, numbers(got))
}

func TestSortJapaneseNames(t *testing.T) {
	r := Roster{
		{Number: 1, Name: "さとう"},
		{Number: 2, Name: "あべ"},
		{Number: 3, Name: "かとう"},
	}
	got, err := Sort(r, SortByName, NewCollator("ja"))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 1}, numbers(got))
}

func TestSortUnknownMode(t *testing.T) {
	r := Roster{{Number: 2}, {Number: 1}}
	got, err := Sort(r, SortMode("age"), nil)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation))
	assert.Equal(t, []int{2, 1}, numbers(got))
}

func TestParseSortMode(t *testing.T) {
	m, err := ParseSortMode("")
	require.NoError(t, err)
	assert.Equal(t, SortByNumber, m)

	m, err = ParseSortMode("second")
	require.NoError(t, err)
	assert.Equal(t, SortBySecondSession, m)

	_, err = ParseSortMode("Name")
	assert.True(t, IsKind(err, KindValidation))
}

func TestNewCollatorBadTag(t *testing.T) {
	c := NewCollator("!!")
	require.NotNil(t, c)
	assert.Negative(t, c.compare("あ", "か"))
}

func TestComputeStats(t *testing.T) {
	s := ComputeStats(Roster{})
	assert.Equal(t, Stats{}, s)
	assert.Zero(t, s.FirstRate())
	assert.Zero(t, s.SecondRate())
	assert.Zero(t, s.BothRate())

	s = ComputeStats(Roster{
		{Number: 1, FirstSession: true, SecondSession: true},
		{Number: 2, FirstSession: true},
		{Number: 3, SecondSession: true},
		{Number: 4},
	})
	assert.Equal(t, Stats{Total: 4, FirstAttended: 2, SecondAttended: 2, BothAttended: 1}, s)
	assert.InDelta(t, 50.0, s.FirstRate(), 0.001)
	assert.InDelta(t, 25.0, s.BothRate(), 0.001)
}
