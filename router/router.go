package router

import (
	"net/http"
	"time"

	"github.com/andrewpaige1/cardbox-api/auth"
	"github.com/andrewpaige1/cardbox-api/handlers"
	"github.com/andrewpaige1/cardbox-api/library"
	"github.com/andrewpaige1/cardbox-api/middleware"
)

type Options struct {
	CORSOrigins    []string
	RequestTimeout time.Duration
}

// NewRouter wires every route and wraps the mux in the middleware chain.
func NewRouter(lib *library.Library, sessions *auth.Sessions, opts Options) http.Handler {
	mux := http.NewServeMux()
	h := handlers.NewAPIHandler(lib, sessions)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("GET /api/{$}", h.Root)

	// Session
	mux.HandleFunc("POST /api/login", h.Login)
	mux.HandleFunc("POST /api/logout", h.Logout)
	mux.HandleFunc("GET /api/authCheck", h.AuthCheck)
	mux.HandleFunc("GET /api/authUserInfo", h.AuthUserInfo)
	mux.HandleFunc("GET /api/authUserSets", h.AuthUserSets)
	mux.HandleFunc("GET /api/authUserFavs", h.AuthUserFavs)

	// Boxes
	mux.HandleFunc("POST /api/boxes", h.Register)
	mux.HandleFunc("GET /api/boxes/{username}", h.GetBox)
	mux.HandleFunc("PATCH /api/boxes/{username}", h.UpdateBox)
	mux.HandleFunc("GET /api/boxes/{username}/cards", h.GetBoxCards)
	mux.HandleFunc("GET /api/boxes/{username}/sets", h.GetBoxSets)
	mux.HandleFunc("PATCH /api/boxes/{username}/favorites", h.ToggleFavorite)

	// Sets
	mux.HandleFunc("GET /api/sets", h.ListSets)
	mux.HandleFunc("POST /api/sets", h.CreateSet)
	mux.HandleFunc("GET /api/sets/{sid}", h.GetSet)
	mux.HandleFunc("PATCH /api/sets/{sid}", h.UpdateSet)
	mux.HandleFunc("DELETE /api/sets/{sid}", h.DeleteSet)
	mux.HandleFunc("GET /api/sets/{sid}/cards", h.GetSetCards)
	mux.HandleFunc("PATCH /api/sets/{sid}/cards", h.ReplaceSetCards)

	// Cards
	mux.HandleFunc("GET /api/cards", h.ListCards)
	mux.HandleFunc("POST /api/cards", h.CreateCard)
	mux.HandleFunc("GET /api/cards/{cid}", h.GetCard)
	mux.HandleFunc("PATCH /api/cards/{cid}", h.UpdateCard)
	mux.HandleFunc("DELETE /api/cards/{cid}", h.DeleteCard)

	var handler http.Handler = mux
	handler = middleware.Identify(sessions)(handler)
	handler = middleware.WithTimeout(opts.RequestTimeout)(handler)
	handler = middleware.CORS(opts.CORSOrigins)(handler)
	handler = middleware.WithLogging(handler)
	handler = middleware.Recover(handler)
	return handler
}
