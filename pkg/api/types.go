package api

import (
	"net/http"

	"attendance/pkg/roster"
)

// sortModeLabels are the names the front end shows for each sort mode.
var sortModeLabels = map[roster.SortMode]string{
	roster.SortByNumber:        "番号順",
	roster.SortByName:          "名前順",
	roster.SortByFirstSession:  "1回目出席者を先に",
	roster.SortBySecondSession: "2回目出席者を先に",
}

// errorStatus maps roster error kinds to HTTP status codes.
var errorStatus = map[roster.Kind]int{
	roster.KindValidation:    http.StatusBadRequest,
	roster.KindNotFound:      http.StatusNotFound,
	roster.KindConflict:      http.StatusConflict,
	roster.KindConnection:    http.StatusBadGateway,
	roster.KindSave:          http.StatusBadGateway,
	roster.KindNormalization: http.StatusInternalServerError,
}
