package model

// Identity is the verified caller attached to an authenticated request
type Identity struct {
	SubjectID UserID
	Username  string
}
