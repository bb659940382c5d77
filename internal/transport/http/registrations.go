package http

import (
	"net/http"

	"cohort-admin/internal/domain"
)

func (a *API) createRegistration(w http.ResponseWriter, r *http.Request) {
	var reg domain.Registration
	if err := decodeBody(r, &reg); err != nil {
		writeError(w, err)
		return
	}
	created, err := a.svc.Registrar.Register(r.Context(), reg)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, created)
}

func (a *API) listRegistrations(w http.ResponseWriter, r *http.Request) {
	approved, err := optionalBool(r, "approved")
	if err != nil {
		writeError(w, err)
		return
	}
	regs, err := a.svc.Registrar.List(r.Context(), approved)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, regs)
}

func (a *API) getRegistration(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	reg, err := a.svc.Registrar.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, reg)
}

func (a *API) updateRegistration(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var patch domain.RegistrationPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, err)
		return
	}
	writeOutcome(w, a.svc.Registrar.Update(r.Context(), id, patch))
}

func (a *API) setApproval(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var body struct {
		Approved *bool `json:"approved"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.Approved == nil {
		writeError(w, domain.Invalid("required", "approved"))
		return
	}
	writeOutcome(w, a.svc.Registrar.SetApproval(r.Context(), id, *body.Approved))
}

func (a *API) deleteRegistration(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	writeOutcome(w, a.svc.Registrar.Delete(r.Context(), id))
}

func (a *API) checkWallet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.svc.Wallets.CheckWallet(r.Context(), r.PathValue("address")))
}
