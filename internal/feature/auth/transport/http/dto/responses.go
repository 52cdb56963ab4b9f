package dto

// UserRes is the public view of a user.
type UserRes struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
}

// AuthRes is returned by signup and login.
type AuthRes struct {
	Message      string  `json:"message"`
	AccessToken  string  `json:"accessToken"`
	RefreshToken string  `json:"refreshToken"`
	User         UserRes `json:"user"`
}

// MeRes is returned by /me.
type MeRes struct {
	User UserRes `json:"user"`
}

// ErrorRes is the body of every error response.
// Error is a stable machine-readable code, Message is shown to the user.
type ErrorRes struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
