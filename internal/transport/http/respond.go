package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"cohort-admin/internal/domain"
)

// envelope is the shape of every JSON response.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Changes *int   `json:"changes,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), envelope{Success: false, Error: err.Error()})
}

func writeOutcome(w http.ResponseWriter, out domain.Outcome) {
	if !out.Success {
		err := out.Err
		if err == nil {
			err = errors.New(out.Error)
		}
		writeError(w, err)
		return
	}
	changes := out.Changes
	writeJSON(w, http.StatusOK, envelope{Success: true, Changes: &changes})
}

func statusFor(err error) int {
	var seqErr *domain.SequencingError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrStudentNotApproved):
		return http.StatusForbidden
	case errors.As(err, &seqErr):
		return http.StatusConflict
	default:
		// DataCorruptionError and store failures alike.
		return http.StatusInternalServerError
	}
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.Invalid(fmt.Sprintf("malformed body: %v", err))
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Invalid("must be a positive integer", name)
	}
	return id, nil
}

func pathInt(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(r.PathValue(name))
	if err != nil || n < 0 {
		return 0, domain.Invalid("must be a non-negative integer", name)
	}
	return n, nil
}

// optionalTask reads ?task=N; absent means every task.
func optionalTask(r *http.Request) (*int, error) {
	raw := r.URL.Query().Get("task")
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return nil, domain.Invalid("must be a non-negative integer", "task")
	}
	return &n, nil
}

func optionalBool(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, domain.Invalid("must be true or false", name)
	}
	return &v, nil
}
