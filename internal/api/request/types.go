package request

// RegisterRequest is the request body for registering a user
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ScoreRequest is the request body for creating or updating a score.
// Score is left untyped: numbers and numeric strings are both accepted.
type ScoreRequest struct {
	PlayerName string `json:"player_name"`
	Score      any    `json:"score"`
}
