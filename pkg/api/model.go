package api

import "attendance/pkg/roster"

type statsResponse struct {
	roster.Stats
	FirstRate  float64 `json:"first_rate"`
	SecondRate float64 `json:"second_rate"`
	BothRate   float64 `json:"both_rate"`
}

func newStatsResponse(s roster.Stats) statsResponse {
	return statsResponse{
		Stats:      s,
		FirstRate:  s.FirstRate(),
		SecondRate: s.SecondRate(),
		BothRate:   s.BothRate(),
	}
}

type rosterResponse struct {
	Participants   roster.Roster `json:"participants"`
	Stats          statsResponse `json:"stats"`
	PendingDeletes []int         `json:"pending_deletes"`
	Changed        bool          `json:"changed"`
	Message        string        `json:"message,omitempty"`
	Warning        string        `json:"warning,omitempty"`
}

type addRequest struct {
	Name string `json:"name"`
}

type addResponse struct {
	rosterResponse
	Participant roster.Participant `json:"participant"`
}

// editRequest uses pointers so a missing field is an error rather than a
// silent reset to false or "".
type editRequest struct {
	FirstSession  *bool   `json:"first_session"`
	SecondSession *bool   `json:"second_session"`
	Comment       *string `json:"comment"`
}

type deleteStateResponse struct {
	Number int    `json:"no"`
	State  string `json:"state"`
}

type sortModeResponse struct {
	Mode  roster.SortMode `json:"mode"`
	Label string          `json:"label"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
