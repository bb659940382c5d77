package http

import (
	"net/http"

	"cohort-admin/internal/domain"
)

type scoreRequest struct {
	StudentID  string           `json:"student_id"`
	TaskNumber int              `json:"task_number"`
	ScoreType  domain.ScoreType `json:"score_type"`
	Score      int              `json:"score"`
	Completed  *bool            `json:"completed"`
}

func (a *API) recordScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	completed := false
	if req.Completed != nil {
		completed = *req.Completed
	}
	id, err := a.svc.Ledger.Record(r.Context(), req.StudentID, req.TaskNumber, req.ScoreType, req.Score, completed)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, map[string]int64{"id": id})
}

func (a *API) rawScores(w http.ResponseWriter, r *http.Request) {
	scores, err := a.svc.Agg.RawScores(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, scores)
}

func (a *API) updateScore(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var patch domain.ScorePatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, err)
		return
	}
	writeOutcome(w, a.svc.Ledger.Update(r.Context(), id, patch))
}

func (a *API) deleteScore(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	writeOutcome(w, a.svc.Ledger.Delete(r.Context(), id))
}

func (a *API) studentScores(w http.ResponseWriter, r *http.Request) {
	records, err := a.svc.Ledger.ListForStudent(r.Context(), r.PathValue("studentId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, records)
}

func (a *API) studentSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := a.svc.Agg.Summarize(r.Context(), r.PathValue("studentId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, summary)
}

type submitRequest struct {
	TaskNumber int              `json:"taskNumber"`
	Answers    map[int64]string `json:"answers"`
}

// submitQuiz is the request/response twin of the websocket submit message.
func (a *API) submitQuiz(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	studentID := r.PathValue("studentId")
	if _, err := a.svc.Feed.Join(r.Context(), studentID); err != nil {
		writeError(w, err)
		return
	}
	result, update, err := a.svc.Feed.Submit(r.Context(), studentID, req.TaskNumber, req.Answers)
	if err != nil {
		writeError(w, err)
		return
	}
	a.svc.Feed.Publish(update, nil)
	writeData(w, http.StatusOK, result)
}

func (a *API) leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := a.svc.Agg.Leaderboard(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, entries)
}
