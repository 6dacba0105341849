package handlers

import (
	"net/http"

	"github.com/andrewpaige1/cardbox-api/apperr"
	"github.com/andrewpaige1/cardbox-api/library"
	"github.com/andrewpaige1/cardbox-api/models"
	"github.com/andrewpaige1/cardbox-api/utils"
)

var errAlreadyLoggedIn = apperr.Denied("Already logged in")

// Root answers with the path of the caller's box, or "" when anonymous.
func (h *APIHandler) Root(w http.ResponseWriter, r *http.Request) {
	ident := utils.CurrentIdentity(r)
	if ident.IsAnonymous() {
		writeJSON(w, http.StatusOK, "")
		return
	}
	writeJSON(w, http.StatusOK, "/boxes/"+ident.Username)
}

func (h *APIHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !utils.CurrentIdentity(r).IsAnonymous() {
		writeError(w, r, errAlreadyLoggedIn)
		return
	}

	var req models.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Icon == nil {
		writeError(w, r, apperr.Invalid("icon is required"))
		return
	}

	user, err := h.Lib.Register(r.Context(), library.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Icon:     *req.Icon,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.startSession(w, models.Identity{UserID: user.PublicID, Username: user.Username}); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, models.ProfileResponse{Username: user.Username, Icon: user.Icon})
}

func (h *APIHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !utils.CurrentIdentity(r).IsAnonymous() {
		writeError(w, r, errAlreadyLoggedIn)
		return
	}

	var req models.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	ident, err := h.Lib.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.startSession(w, ident); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.AuthCheckResponse{IsAuth: true, Username: &ident.Username})
}

func (h *APIHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.ClearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) AuthCheck(w http.ResponseWriter, r *http.Request) {
	ident := utils.CurrentIdentity(r)
	if ident.IsAnonymous() {
		writeJSON(w, http.StatusOK, models.AuthCheckResponse{})
		return
	}
	writeJSON(w, http.StatusOK, models.AuthCheckResponse{IsAuth: true, Username: &ident.Username})
}

func (h *APIHandler) AuthUserInfo(w http.ResponseWriter, r *http.Request) {
	ident := utils.CurrentIdentity(r)
	if ident.IsAnonymous() {
		writeJSON(w, http.StatusOK, models.AuthUserInfoResponse{})
		return
	}

	user, err := h.Lib.CurrentUser(r.Context(), ident)
	if apperr.KindOf(err) == apperr.Unauthorized {
		// the token outlived its user
		writeJSON(w, http.StatusOK, models.AuthUserInfoResponse{})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	favs, err := h.Lib.FavoriteIDs(r.Context(), ident)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.AuthUserInfoResponse{
		Icon:     &user.Icon,
		FavsIDs:  favs,
		IsAuth:   true,
		Username: &user.Username,
	})
}

func (h *APIHandler) AuthUserSets(w http.ResponseWriter, r *http.Request) {
	ident := utils.CurrentIdentity(r)
	if ident.IsAnonymous() {
		writeJSON(w, http.StatusOK, []models.Set{})
		return
	}
	sets, err := h.Lib.UserSets(r.Context(), ident, ident.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sets)
}

func (h *APIHandler) AuthUserFavs(w http.ResponseWriter, r *http.Request) {
	ident := utils.CurrentIdentity(r)
	if ident.IsAnonymous() {
		writeJSON(w, http.StatusOK, []models.Card{})
		return
	}
	cards, err := h.Lib.Favorites(r.Context(), ident)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (h *APIHandler) GetBox(w http.ResponseWriter, r *http.Request) {
	user, err := h.Lib.Profile(r.Context(), r.PathValue("username"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.ProfileResponse{Username: user.Username, Icon: user.Icon})
}

func (h *APIHandler) UpdateBox(w http.ResponseWriter, r *http.Request) {
	ident := utils.CurrentIdentity(r)
	if ident.IsAnonymous() {
		writeError(w, r, apperr.NoIdentity("Unauthorized, please login"))
		return
	}

	var req models.IconRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Icon == nil {
		writeError(w, r, apperr.Invalid("icon is required"))
		return
	}

	user, err := h.Lib.UpdateIcon(r.Context(), ident, r.PathValue("username"), *req.Icon)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.ProfileResponse{Username: user.Username, Icon: user.Icon})
}

func (h *APIHandler) GetBoxCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.Lib.UserCards(r.Context(), utils.CurrentIdentity(r), r.PathValue("username"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (h *APIHandler) GetBoxSets(w http.ResponseWriter, r *http.Request) {
	sets, err := h.Lib.UserSets(r.Context(), utils.CurrentIdentity(r), r.PathValue("username"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sets)
}

func (h *APIHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	ident := utils.CurrentIdentity(r)
	if ident.IsAnonymous() {
		writeError(w, r, apperr.NoIdentity("Unauthorized, please login"))
		return
	}

	var req models.FavoriteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.CardID == "" {
		writeError(w, r, apperr.Invalid("cid is required"))
		return
	}

	favs, err := h.Lib.ToggleFavorite(r.Context(), ident, r.PathValue("username"), req.CardID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, favs)
}

func (h *APIHandler) startSession(w http.ResponseWriter, ident models.Identity) error {
	token, err := h.Sessions.CreateToken(ident)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to generate token", err)
	}
	h.Sessions.SetCookie(w, token)
	return nil
}
