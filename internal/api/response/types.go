package response

import (
	"time"

	"github.com/mcoot/scoreboard/internal/model"
	"github.com/mcoot/scoreboard/internal/services/auth"
)

// User is the public view of an account. The password hash never leaves
// the server.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UserFromModel converts a model.User to a User response
func UserFromModel(u *model.User) User {
	return User{
		ID:       string(u.ID),
		Username: u.Username,
		Email:    u.Email,
	}
}

// AuthResponse is returned on successful registration or login
type AuthResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    User   `json:"user"`
}

// AuthResponseFromSession converts an auth.Session to an AuthResponse
func AuthResponseFromSession(message string, s *auth.Session) AuthResponse {
	return AuthResponse{
		Message: message,
		Token:   s.Token,
		User:    UserFromModel(s.User),
	}
}

// Score is a scoreboard entry
type Score struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	PlayerName string     `json:"player_name"`
	Score      int64      `json:"score"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// ScoreFromModel converts a model.Score to a Score response
func ScoreFromModel(s *model.Score) Score {
	return Score{
		ID:         string(s.ID),
		UserID:     string(s.OwnerID),
		PlayerName: s.PlayerName,
		Score:      s.Score,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

// ScoresFromModel converts a slice, never returning nil
func ScoresFromModel(scores []*model.Score) []Score {
	out := make([]Score, len(scores))
	for i, s := range scores {
		out[i] = ScoreFromModel(s)
	}
	return out
}

// MessageResponse carries a confirmation message
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse reports service and storage status
type HealthResponse struct {
	Status   string `json:"status"`
	Storage  string `json:"storage"`
	Database string `json:"database"`
}
