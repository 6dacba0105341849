package handlers

import (
	"net/http"

	"github.com/andrewpaige1/cardbox-api/apperr"
	"github.com/andrewpaige1/cardbox-api/library"
	"github.com/andrewpaige1/cardbox-api/models"
	"github.com/andrewpaige1/cardbox-api/utils"
)

// ListSets lists published sets, filtered by ?name= when it is not empty.
func (h *APIHandler) ListSets(w http.ResponseWriter, r *http.Request) {
	sets, err := h.Lib.ListPublishedSets(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sets)
}

func (h *APIHandler) CreateSet(w http.ResponseWriter, r *http.Request) {
	ident := utils.CurrentIdentity(r)
	if ident.IsAnonymous() {
		writeError(w, r, apperr.NoIdentity("Unauthorized, please login"))
		return
	}

	var req models.SetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	set, err := h.Lib.CreateSet(r.Context(), ident, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

// GetSet returns the set without its card list; see GetSetCards.
func (h *APIHandler) GetSet(w http.ResponseWriter, r *http.Request) {
	set, err := h.Lib.GetSet(r.Context(), utils.CurrentIdentity(r), r.PathValue("sid"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, set.Summary())
}

func (h *APIHandler) UpdateSet(w http.ResponseWriter, r *http.Request) {
	ident := utils.CurrentIdentity(r)
	if ident.IsAnonymous() {
		writeError(w, r, apperr.NoIdentity("Unauthorized, please login"))
		return
	}

	var req models.SetUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	set, err := h.Lib.UpdateSet(r.Context(), ident, r.PathValue("sid"), library.SetUpdate{
		Name:    req.Name,
		Publish: req.IsPublished != nil && *req.IsPublished,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (h *APIHandler) DeleteSet(w http.ResponseWriter, r *http.Request) {
	ident := utils.CurrentIdentity(r)
	if ident.IsAnonymous() {
		writeError(w, r, apperr.NoIdentity("Unauthorized, please login"))
		return
	}

	if err := h.Lib.DeleteSet(r.Context(), ident, r.PathValue("sid")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) GetSetCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.Lib.SetCards(r.Context(), utils.CurrentIdentity(r), r.PathValue("sid"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

// ReplaceSetCards makes cidArr the card list of the set.
func (h *APIHandler) ReplaceSetCards(w http.ResponseWriter, r *http.Request) {
	ident := utils.CurrentIdentity(r)
	if ident.IsAnonymous() {
		writeError(w, r, apperr.NoIdentity("Unauthorized, please login"))
		return
	}

	var req models.SetCardsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.CardIDs == nil {
		writeError(w, r, apperr.Invalid("cidArr is required"))
		return
	}

	set, err := h.Lib.ReplaceSetCards(r.Context(), ident, r.PathValue("sid"), req.CardIDs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}
