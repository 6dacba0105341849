package models

// Request types

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Icon     *int   `json:"icon"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type IconRequest struct {
	Icon *int `json:"icon"`
}

type FavoriteRequest struct {
	CardID string `json:"cid"`
}

type CardRequest struct {
	Word       string `json:"word"`
	Definition string `json:"definition"`
}

type CardUpdateRequest struct {
	Word        *string `json:"word,omitempty"`
	Definition  *string `json:"definition,omitempty"`
	IsPublished *bool   `json:"isPublished,omitempty"`
}

type SetRequest struct {
	Name string `json:"name"`
}

type SetUpdateRequest struct {
	Name        *string `json:"name,omitempty"`
	IsPublished *bool   `json:"isPublished,omitempty"`
}

// cidArr is the desired card list of the set
type SetCardsRequest struct {
	CardIDs []string `json:"cidArr"`
}

// Response types

type ProfileResponse struct {
	Username string `json:"username"`
	Icon     int    `json:"icon"`
}

type AuthCheckResponse struct {
	IsAuth   bool    `json:"isAuth"`
	Username *string `json:"username"`
}

type AuthUserInfoResponse struct {
	Icon     *int     `json:"icon"`
	FavsIDs  []string `json:"favsIds"`
	IsAuth   bool     `json:"isAuth"`
	Username *string  `json:"username"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
