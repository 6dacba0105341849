package handlers

import (
	"net/http"

	"github.com/andrewpaige1/cardbox-api/apperr"
	"github.com/andrewpaige1/cardbox-api/library"
	"github.com/andrewpaige1/cardbox-api/models"
	"github.com/andrewpaige1/cardbox-api/utils"
)

// ListCards lists published cards, filtered by ?word= when it is not empty.
func (h *APIHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.Lib.ListPublishedCards(r.Context(), r.URL.Query().Get("word"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (h *APIHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	ident := utils.CurrentIdentity(r)
	if ident.IsAnonymous() {
		writeError(w, r, apperr.NoIdentity("Unauthorized, please login"))
		return
	}

	var req models.CardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	card, err := h.Lib.CreateCard(r.Context(), ident, library.CardInput{
		Word:       req.Word,
		Definition: req.Definition,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

func (h *APIHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	card, err := h.Lib.GetCard(r.Context(), utils.CurrentIdentity(r), r.PathValue("cid"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (h *APIHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	ident := utils.CurrentIdentity(r)
	if ident.IsAnonymous() {
		writeError(w, r, apperr.NoIdentity("Unauthorized, please login"))
		return
	}

	var req models.CardUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	card, err := h.Lib.UpdateCard(r.Context(), ident, r.PathValue("cid"), library.CardUpdate{
		Word:       req.Word,
		Definition: req.Definition,
		Publish:    req.IsPublished != nil && *req.IsPublished,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (h *APIHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	ident := utils.CurrentIdentity(r)
	if ident.IsAnonymous() {
		writeError(w, r, apperr.NoIdentity("Unauthorized, please login"))
		return
	}

	card, err := h.Lib.DeleteCard(r.Context(), ident, r.PathValue("cid"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}
