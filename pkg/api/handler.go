package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"attendance/pkg/roster"
	"attendance/pkg/session"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

// SessionHeader carries the caller's session id. A response always sets
// it, issuing a new id when the request had none or an unknown one. The
// session is only kept server side once a delete is requested.
const SessionHeader = "X-Session-ID"

type Handler struct {
	svc      *roster.Service
	sessions *session.Manager
}

func NewHandler(svc *roster.Service, sessions *session.Manager) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) *session.Session {
	s := h.sessions.Peek(r.Header.Get(SessionHeader))
	w.Header().Set(SessionHeader, s.ID)
	return s
}

// storedSession is session for handlers that leave state behind.
func (h *Handler) storedSession(w http.ResponseWriter, r *http.Request) *session.Session {
	s := h.sessions.Get(r.Header.Get(SessionHeader))
	w.Header().Set(SessionHeader, s.ID)
	return s
}

func sendResponse(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func sendJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		log.WithError(err).Error("Failed to encode response")
		sendResponse(w, http.StatusInternalServerError, []byte(`{"error":{"code":"INTERNAL","message":"internal error"}}`))
		return
	}
	sendResponse(w, status, body)
}

func writeError(w http.ResponseWriter, handlerName string, err error) {
	kind := roster.KindOf(err)
	status, ok := errorStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	entry := log.WithError(err).WithFields(log.Fields{"handler": handlerName, "code": kind.String()})
	if status >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Debug("Request rejected")
	}
	sendJSON(w, status, errorBody{Error: errorDetail{Code: kind.String(), Message: publicMessage(err)}})
}

// publicMessage is the part of err that is safe to show a client. Wrapped
// transport and database errors stay in the log.
func publicMessage(err error) string {
	var rerr *roster.Error
	if errors.As(err, &rerr) {
		return rerr.Message
	}
	return "internal error"
}

func badRequest(w http.ResponseWriter, handlerName, msg string) {
	writeError(w, handlerName, &roster.Error{Kind: roster.KindValidation, Op: handlerName, Message: msg})
}

func participantNumber(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "no")
	no, err := strconv.Atoi(raw)
	if err != nil || no <= 0 {
		return 0, fmt.Errorf("invalid participant number %q", raw)
	}
	return no, nil
}

func newRosterResponse(r roster.Roster, stats roster.Stats, s *session.Session) rosterResponse {
	if r == nil {
		r = roster.Roster{}
	}
	pending := s.Pending()
	sort.Ints(pending)
	return rosterResponse{
		Participants:   r,
		Stats:          newStatsResponse(stats),
		PendingDeletes: pending,
	}
}

// mutationResponse builds the reply for a change that went through, and
// clears the session's delete confirmations once something was saved.
func mutationResponse(r roster.Roster, changed bool, s *session.Session, msg string) rosterResponse {
	if changed {
		s.Reset()
	}
	resp := newRosterResponse(r, roster.ComputeStats(r), s)
	resp.Changed = changed
	resp.Message = msg
	return resp
}

func getHealth(w http.ResponseWriter, r *http.Request) {
	sendResponse(w, http.StatusOK, []byte(`{"status":"ok"}`))
}

func getSortModes(w http.ResponseWriter, r *http.Request) {
	modes := make([]sortModeResponse, 0, len(roster.SortModes))
	for _, m := range roster.SortModes {
		modes = append(modes, sortModeResponse{Mode: m, Label: sortModeLabels[m]})
	}
	sendJSON(w, http.StatusOK, modes)
}

// getRoster never fails: read errors and unknown sort modes are reported
// in the warning field alongside whatever could be shown.
func (h *Handler) getRoster(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	mode := roster.SortMode(r.URL.Query().Get("sort"))
	if mode == "" {
		mode = roster.SortByNumber
	}
	list, stats, err := h.svc.View(r.Context(), mode)
	resp := newRosterResponse(list, stats, s)
	if err != nil {
		log.WithError(err).WithField("handler", "get_roster").Warn("Showing degraded roster")
		resp.Warning = publicMessage(err)
	}
	sendJSON(w, http.StatusOK, resp)
}

func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Refresh(r.Context())
	resp := struct {
		statsResponse
		Warning string `json:"warning,omitempty"`
	}{statsResponse: newStatsResponse(roster.ComputeStats(list))}
	if err != nil {
		log.WithError(err).WithField("handler", "get_stats").Warn("Showing degraded stats")
		resp.Warning = publicMessage(err)
	}
	sendJSON(w, http.StatusOK, resp)
}

func (h *Handler) postParticipant(w http.ResponseWriter, r *http.Request) {
	const handlerName = "add_participant"
	s := h.session(w, r)

	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, handlerName, "invalid JSON")
		return
	}
	list, p, err := h.svc.Add(r.Context(), req.Name)
	if err != nil {
		writeError(w, handlerName, err)
		return
	}
	sendJSON(w, http.StatusCreated, addResponse{
		rosterResponse: mutationResponse(list, true, s, fmt.Sprintf("%sさんを追加しました", p.Name)),
		Participant:    p,
	})
}

func (h *Handler) putParticipant(w http.ResponseWriter, r *http.Request) {
	const handlerName = "edit_participant"
	s := h.session(w, r)

	no, err := participantNumber(r)
	if err != nil {
		badRequest(w, handlerName, err.Error())
		return
	}
	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, handlerName, "invalid JSON")
		return
	}
	if req.FirstSession == nil || req.SecondSession == nil || req.Comment == nil {
		badRequest(w, handlerName, "first_session, second_session and comment are required")
		return
	}
	list, changed, err := h.svc.Edit(r.Context(), no, *req.FirstSession, *req.SecondSession, *req.Comment)
	if err != nil {
		writeError(w, handlerName, err)
		return
	}
	msg := ""
	if changed {
		msg = "変更を保存しました"
	}
	sendJSON(w, http.StatusOK, mutationResponse(list, changed, s, msg))
}

func (h *Handler) postToggle(w http.ResponseWriter, r *http.Request) {
	const handlerName = "toggle_attendance"
	s := h.session(w, r)

	no, err := participantNumber(r)
	if err != nil {
		badRequest(w, handlerName, err.Error())
		return
	}
	which, err := roster.ParseSessionNumber(chi.URLParam(r, "session"))
	if err != nil {
		writeError(w, handlerName, err)
		return
	}
	list, changed, err := h.svc.Toggle(r.Context(), no, which)
	if err != nil {
		writeError(w, handlerName, err)
		return
	}
	sendJSON(w, http.StatusOK, mutationResponse(list, changed, s, "変更を保存しました"))
}

// postDeleteRequest is the first half of the delete gesture. Nothing is
// read or written; the request is only remembered for this session.
func (h *Handler) postDeleteRequest(w http.ResponseWriter, r *http.Request) {
	const handlerName = "request_delete"
	s := h.storedSession(w, r)

	no, err := participantNumber(r)
	if err != nil {
		badRequest(w, handlerName, err.Error())
		return
	}
	s.RequestDelete(no)
	sendJSON(w, http.StatusOK, deleteStateResponse{Number: no, State: s.State(no).String()})
}

func (h *Handler) postDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	const handlerName = "confirm_delete"
	s := h.session(w, r)

	no, err := participantNumber(r)
	if err != nil {
		badRequest(w, handlerName, err.Error())
		return
	}
	if !s.Confirm(no) {
		sendJSON(w, http.StatusConflict, errorBody{Error: errorDetail{
			Code:    "CONFIRMATION_REQUIRED",
			Message: fmt.Sprintf("delete of participant %d was not requested in this session", no),
		}})
		return
	}
	list, changed, err := h.svc.Delete(r.Context(), no)
	if err != nil {
		writeError(w, handlerName, err)
		return
	}
	msg := ""
	if changed {
		msg = "削除しました"
	}
	sendJSON(w, http.StatusOK, mutationResponse(list, changed, s, msg))
}

func (h *Handler) postDeleteCancel(w http.ResponseWriter, r *http.Request) {
	const handlerName = "cancel_delete"
	s := h.session(w, r)

	no, err := participantNumber(r)
	if err != nil {
		badRequest(w, handlerName, err.Error())
		return
	}
	s.Cancel(no)
	sendJSON(w, http.StatusOK, deleteStateResponse{Number: no, State: s.State(no).String()})
}
