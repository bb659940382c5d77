package http

import (
	"net/http"

	"cohort-admin/internal/app"
)

func (a *API) upsertProject(w http.ResponseWriter, r *http.Request) {
	var in app.ProjectInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}
	writeOutcome(w, a.svc.Projects.Upsert(r.Context(), in))
}

func (a *API) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := a.svc.Projects.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, projects)
}

func (a *API) latestProject(w http.ResponseWriter, r *http.Request) {
	p, err := a.svc.Projects.Latest(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (a *API) getProject(w http.ResponseWriter, r *http.Request) {
	p, err := a.svc.Projects.Get(r.Context(), r.PathValue("projectId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (a *API) deleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	writeOutcome(w, a.svc.Projects.Delete(r.Context(), id))
}

func (a *API) addClaim(w http.ResponseWriter, r *http.Request) {
	var in app.ClaimInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}
	claim, err := a.svc.Projects.AddClaim(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, claim)
}

func (a *API) allClaims(w http.ResponseWriter, r *http.Request) {
	claims, err := a.svc.Projects.AllClaims(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, claims)
}

func (a *API) studentClaims(w http.ResponseWriter, r *http.Request) {
	claims, err := a.svc.Projects.ClaimsForStudent(r.Context(), r.PathValue("studentId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, claims)
}

func (a *API) deleteClaim(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	writeOutcome(w, a.svc.Projects.DeleteClaim(r.Context(), id))
}
