package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"cohort-admin/internal/domain"
)

const maxQuestionBody = 4 << 20

func (a *API) listQuestions(w http.ResponseWriter, r *http.Request) {
	task, err := optionalTask(r)
	if err != nil {
		writeError(w, err)
		return
	}
	questions, err := a.svc.Bank.List(r.Context(), task)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, questions)
}

func (a *API) listPublicQuestions(w http.ResponseWriter, r *http.Request) {
	task, err := optionalTask(r)
	if err != nil {
		writeError(w, err)
		return
	}
	questions, err := a.svc.Bank.ListWithoutAnswers(r.Context(), task)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, questions)
}

// createQuestions accepts a single question object or an array of them.
func (a *API) createQuestions(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxQuestionBody))
	if err != nil {
		writeError(w, err)
		return
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var batch []domain.Question
		if err := json.Unmarshal(trimmed, &batch); err != nil {
			writeError(w, domain.Invalid("malformed body: "+err.Error()))
			return
		}
		results := a.svc.Bank.AddBatch(r.Context(), batch)
		created := 0
		for _, res := range results {
			if res.Success {
				created++
			}
		}
		writeJSON(w, http.StatusOK, envelope{Success: created == len(results), Data: results, Changes: &created})
		return
	}

	var q domain.Question
	if err := json.Unmarshal(trimmed, &q); err != nil {
		writeError(w, domain.Invalid("malformed body: "+err.Error()))
		return
	}
	id, err := a.svc.Bank.Add(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, map[string]int64{"id": id})
}

func (a *API) updateQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var patch domain.QuestionPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, err)
		return
	}
	writeOutcome(w, a.svc.Bank.Update(r.Context(), id, patch))
}

func (a *API) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	writeOutcome(w, a.svc.Bank.Delete(r.Context(), id))
}

func (a *API) deleteTaskQuestions(w http.ResponseWriter, r *http.Request) {
	task, err := pathInt(r, "task")
	if err != nil {
		writeError(w, err)
		return
	}
	writeOutcome(w, a.svc.Bank.DeleteByTask(r.Context(), task))
}

type gradeRequest struct {
	Answers map[int64]string `json:"answers"`
}

func (a *API) gradeAnswers(w http.ResponseWriter, r *http.Request) {
	var req gradeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	score, err := a.svc.Bank.Grade(r.Context(), req.Answers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]int{"score": score})
}
