package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format, w: os.Stdout}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	o.Print(Message{Message: msg})
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case User:
		o.printUser(v)
	case AuthResult:
		o.printAuthResult(v)
	case Score:
		o.printScore(v)
	case ScoreList:
		o.printScoreList(v)
	case Message:
		fmt.Fprintln(o.w, v.Message)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// User response type (matches API)
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// AuthResult combines user and token
type AuthResult struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    User   `json:"user"`
}

// Score response type
type Score struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	PlayerName string     `json:"player_name"`
	Score      int64      `json:"score"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// ScoreList is the list response, highest score first
type ScoreList []Score

// Message response type
type Message struct {
	Message string `json:"message"`
}

// HealthResult response type
type HealthResult struct {
	Status   string `json:"status"`
	Storage  string `json:"storage"`
	Database string `json:"database"`
}

func (o *Output) printUser(u User) {
	fmt.Fprintf(o.w, "User: %s (%s)\n", u.Username, u.ID)
	fmt.Fprintf(o.w, "Email: %s\n", u.Email)
}

func (o *Output) printAuthResult(a AuthResult) {
	if a.Message != "" {
		fmt.Fprintln(o.w, a.Message)
	}
	o.printUser(a.User)
	fmt.Fprintln(o.w, "Token saved")
}

func (o *Output) printScore(s Score) {
	fmt.Fprintf(o.w, "Score: %d (%s)\n", s.Score, s.PlayerName)
	fmt.Fprintf(o.w, "ID: %s\n", s.ID)
	fmt.Fprintf(o.w, "Created: %s\n", s.CreatedAt.Format(time.RFC3339))
	if s.UpdatedAt != nil {
		fmt.Fprintf(o.w, "Updated: %s\n", s.UpdatedAt.Format(time.RFC3339))
	}
}

func (o *Output) printScoreList(list ScoreList) {
	if len(list) == 0 {
		fmt.Fprintln(o.w, "No scores")
		return
	}

	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tPLAYER\tSCORE\tID")
	for i, s := range list {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", i+1, s.PlayerName, s.Score, s.ID)
	}
	_ = tw.Flush()
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	fmt.Fprintf(o.w, "Storage: %s (%s)\n", h.Storage, h.Database)
}
