package http

import (
	"net/http"

	"cohort-admin/internal/app"
	"cohort-admin/internal/domain"
)

func (a *API) allNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := a.svc.Notes.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, notes)
}

func (a *API) studentNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := a.svc.Notes.ListForStudent(r.Context(), r.PathValue("studentId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, notes)
}

// addNote takes the owning student from the path; a student_id in the body is ignored.
func (a *API) addNote(w http.ResponseWriter, r *http.Request) {
	var in app.NoteInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}
	in.StudentID = r.PathValue("studentId")
	id, err := a.svc.Notes.Add(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, map[string]int64{"id": id})
}

func (a *API) updateNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var patch domain.NotePatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, err)
		return
	}
	writeOutcome(w, a.svc.Notes.Update(r.Context(), id, r.PathValue("studentId"), patch))
}

func (a *API) deleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	writeOutcome(w, a.svc.Notes.Delete(r.Context(), id, r.PathValue("studentId")))
}
