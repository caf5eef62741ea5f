package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/username/shift-calendar/internal/annotation"
	"github.com/username/shift-calendar/internal/backup"
	"github.com/username/shift-calendar/internal/calendar"
	"github.com/username/shift-calendar/internal/leave"
	"github.com/username/shift-calendar/internal/shift"
	"github.com/username/shift-calendar/pkg/dateutil"
	"go.uber.org/zap"
)

const maxBodySize = 5 << 20

var errBadRequest = errors.New("bad request")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps engine errors to status codes
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, calendar.ErrInvalidRange),
		errors.Is(err, leave.ErrInvalidType),
		errors.Is(err, leave.ErrReasonRequired),
		errors.Is(err, shift.ErrInvalidRotation),
		errors.Is(err, shift.ErrMalformedShiftToken),
		errors.Is(err, backup.ErrUnknownFormat):
		status = http.StatusBadRequest
	case errors.Is(err, annotation.ErrEntryNotFound):
		status = http.StatusNotFound
	case errors.Is(err, annotation.ErrPermanentNote):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func parseDate(value, name string) (time.Time, error) {
	d, err := dateutil.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %v", errBadRequest, name, err)
	}
	return d, nil
}

func parseRange(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()
	from, err := parseDate(q.Get("from"), "from")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseDate(q.Get("to"), "to")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

func pathInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(mux.Vars(r)[name])
	return n
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (s *Server) getDay(w http.ResponseWriter, r *http.Request) {
	date, err := parseDate(mux.Vars(r)["date"], "date")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	day, err := s.manager.Day(r.Context(), date)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

func (s *Server) getMonth(w http.ResponseWriter, r *http.Request) {
	month := pathInt(r, "month")
	if month < 1 || month > 12 {
		s.writeError(w, r, fmt.Errorf("%w: month %d", errBadRequest, month))
		return
	}
	view, err := s.manager.Month(r.Context(), pathInt(r, "year"), time.Month(month))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) getHolidays(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.manager.Holidays(pathInt(r, "year")))
}

func (s *Server) getChargeable(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	audit, err := s.manager.Audit(r.Context(), from, to)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if r.URL.Query().Get("audit") != "true" {
		writeJSON(w, http.StatusOK, map[string]float64{"total": audit.Total})
		return
	}
	writeJSON(w, http.StatusOK, audit)
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.manager.Statistics(r.Context(), pathInt(r, "year"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) getOverview(w http.ResponseWriter, r *http.Request) {
	years, err := s.manager.Overview(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, years)
}

type vacationRequest struct {
	From   string             `json:"from"`
	To     string             `json:"to"`
	Type   leave.VacationType `json:"type"`
	Label  string             `json:"label"`
	Remark string             `json:"remark"`
}

func (s *Server) postVacation(w http.ResponseWriter, r *http.Request) {
	var body vacationRequest
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	from, err := parseDate(body.From, "from")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	to, err := parseDate(body.To, "to")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.manager.AddVacation(r.Context(), leave.Booking{
		Start:  from,
		End:    to,
		Type:   body.Type,
		Label:  body.Label,
		Remark: body.Remark,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) deleteVacation(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cleared, err := s.manager.DeleteVacation(r.Context(), from, to)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"cleared": cleared})
}

func (s *Server) putNote(w http.ResponseWriter, r *http.Request) {
	date, err := parseDate(mux.Vars(r)["date"], "date")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body struct {
		Text string `json:"text"`
	}
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.manager.SetNote(r.Context(), date, body.Text); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteNote(w http.ResponseWriter, r *http.Request) {
	date, err := parseDate(mux.Vars(r)["date"], "date")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.manager.DeleteNote(r.Context(), date); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listImportantDates(w http.ResponseWriter, r *http.Request) {
	entries, err := s.manager.ImportantDates(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []annotation.ImportantDate{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) postImportantDate(w http.ResponseWriter, r *http.Request) {
	var entry annotation.ImportantDate
	if err := decodeBody(r, &entry); err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := parseDate(entry.Date, "date"); err != nil {
		s.writeError(w, r, err)
		return
	}
	stored, err := s.manager.AddImportantDate(r.Context(), entry)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

func (s *Server) deleteImportantDate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: id", errBadRequest))
		return
	}
	if _, err := s.manager.DeleteImportantDate(r.Context(), annotation.EntryID(id)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type rotationResponse struct {
	Definition shift.Definition `json:"definition"`
	Length     int              `json:"length"`
}

func (s *Server) getRotation(w http.ResponseWriter, r *http.Request) {
	rot, err := s.manager.Rotation(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rotationResponse{Definition: rot.Definition(), Length: rot.Len()})
}

// putRotation accepts either {"preset": "name"} or a full definition.
// Definitions with unknown tokens are rejected outright.
func (s *Server) putRotation(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	var preset struct {
		Preset string `json:"preset"`
	}
	if err := json.Unmarshal(raw, &preset); err == nil && preset.Preset != "" {
		rot, err := s.manager.ApplyPreset(r.Context(), preset.Preset)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
		writeJSON(w, http.StatusOK, rotationResponse{Definition: rot.Definition(), Length: rot.Len()})
		return
	}

	var def shift.Definition
	if err := json.Unmarshal(raw, &def); err != nil {
		if !errors.Is(err, shift.ErrMalformedShiftToken) {
			err = fmt.Errorf("%w: %v", errBadRequest, err)
		}
		s.writeError(w, r, err)
		return
	}
	rot, err := s.manager.SetRotation(r.Context(), def)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rotationResponse{Definition: rot.Definition(), Length: rot.Len()})
}

func (s *Server) getPresets(w http.ResponseWriter, r *http.Request) {
	out := make([]map[string]any, 0)
	for _, name := range shift.PresetNames() {
		p, err := shift.LookupPreset(name)
		if err != nil {
			continue
		}
		out = append(out, map[string]any{
			"name":        p.Name,
			"description": p.Description,
			"definition":  p.Definition,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type leaveRequestBody struct {
	From   string             `json:"from"`
	To     string             `json:"to"`
	Type   leave.VacationType `json:"type"`
	Reason string             `json:"reason"`
	Remark string             `json:"remark"`
}

func (s *Server) postRequest(w http.ResponseWriter, r *http.Request) {
	var body leaveRequestBody
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	from, err := parseDate(body.From, "from")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	to, err := parseDate(body.To, "to")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	req, err := s.manager.NewRequest(r.Context(), leave.RequestInput{
		Start:  from,
		End:    to,
		Type:   body.Type,
		Reason: body.Reason,
		Remark: body.Remark,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

type decisionBody struct {
	Request          *leave.Request `json:"request"`
	Status           leave.Status   `json:"status"`
	Reason           string         `json:"reason"`
	ManagerSignature string         `json:"managerSignature"`
	Apply            bool           `json:"apply"`
}

func (s *Server) postDecision(w http.ResponseWriter, r *http.Request) {
	var body decisionBody
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	d, err := leave.Decide(body.Request, body.Status, body.Reason, body.ManagerSignature, time.Now())
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if body.Apply {
		if err := s.manager.ApplyDecision(r.Context(), d); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) getBackup(w http.ResponseWriter, r *http.Request) {
	b, err := s.manager.Backup(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="schichtkalender_backup_%s.json"`, dateutil.FormatDate(b.ExportedAt)))
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) postRestore(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	b, err := backup.Import(raw, s.logger)
	if err != nil {
		if !errors.Is(err, backup.ErrUnknownFormat) {
			err = fmt.Errorf("%w: %v", errBadRequest, err)
		}
		s.writeError(w, r, err)
		return
	}
	if err := s.manager.Restore(r.Context(), b); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
