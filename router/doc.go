/*
Package router defines the HTTP routes of the cardbox API.

NewRouter registers every endpoint on an http.ServeMux and wraps it in the
middleware chain (recovery, request logging, CORS, request timeout, identity):

	handler := router.NewRouter(lib, sessions, router.Options{CORSOrigins: origins})

# Endpoints

Session:

	GET  /api/               - Box path of the caller, or ""
	POST /api/login          - Sign in, sets the session cookie
	POST /api/logout         - Clears the session cookie
	GET  /api/authCheck      - Whether the caller is signed in
	GET  /api/authUserInfo   - Icon and favorite ids of the caller
	GET  /api/authUserSets   - Sets of the caller, drafts included
	GET  /api/authUserFavs   - Favorite cards of the caller

Boxes:

	POST  /api/boxes                      - Register
	GET   /api/boxes/{username}           - Profile
	PATCH /api/boxes/{username}           - Change icon
	GET   /api/boxes/{username}/cards     - Cards of a box
	GET   /api/boxes/{username}/sets      - Sets of a box
	PATCH /api/boxes/{username}/favorites - Toggle a favorite

Cards and sets:

	GET|POST         /api/cards        (?word=)
	GET|PATCH|DELETE /api/cards/{cid}
	GET|POST         /api/sets         (?name=)
	GET|PATCH|DELETE /api/sets/{sid}
	GET|PATCH        /api/sets/{sid}/cards

A missing or invalid session cookie makes the caller anonymous. Anonymous
callers can read published content and get 401 on every mutation.
*/
package router
