package roster

import "time"

// Header tokens of the canonical sheet layout, in column order.
const (
	ColumnNumber        = "No"
	ColumnName          = "名前"
	ColumnFirstSession  = "1回目出席"
	ColumnSecondSession = "2回目出席"
	ColumnComment       = "コメント"
	ColumnLastModified  = "更新日時"
)

// Header tokens found in sheets written by older revisions of the app.
const (
	legacyColumnID         = "ID"
	legacyColumnAttendance = "出席"
)

// TimestampLayout is the format of Participant.LastModified.
const TimestampLayout = "2006-01-02 15:04:05"

// CanonicalColumns is the fixed header row written on every save.
var CanonicalColumns = []string{
	ColumnNumber,
	ColumnName,
	ColumnFirstSession,
	ColumnSecondSession,
	ColumnComment,
	ColumnLastModified,
}

var nowFunc = time.Now

func timestamp() string {
	return nowFunc().Format(TimestampLayout)
}

type Participant struct {
	Number        int    `json:"no" yaml:"no"`
	Name          string `json:"name" yaml:"name"`
	FirstSession  bool   `json:"first_session" yaml:"first_session"`
	SecondSession bool   `json:"second_session" yaml:"second_session"`
	Comment       string `json:"comment" yaml:"comment"`
	LastModified  string `json:"last_modified" yaml:"last_modified"`
}

// Roster is the ordered working copy of the sheet for one interaction.
type Roster []Participant

func (r Roster) clone() Roster {
	out := make(Roster, len(r))
	copy(out, r)
	return out
}

func (r Roster) indexOf(no int) int {
	for i, p := range r {
		if p.Number == no {
			return i
		}
	}
	return -1
}

// Find returns the participant with the given number.
func (r Roster) Find(no int) (Participant, bool) {
	if i := r.indexOf(no); i >= 0 {
		return r[i], true
	}
	return Participant{}, false
}

// MaxNumber returns the highest sequence number, or 0 for an empty roster.
func (r Roster) MaxNumber() int {
	max := 0
	for _, p := range r {
		if p.Number > max {
			max = p.Number
		}
	}
	return max
}
