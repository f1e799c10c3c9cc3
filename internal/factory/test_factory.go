package factory

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/scoreboard/internal/config"
	"github.com/mcoot/scoreboard/internal/dependencies/mocks"
	"github.com/mcoot/scoreboard/internal/services/password"
	"github.com/mcoot/scoreboard/internal/services/token"
	"github.com/mcoot/scoreboard/internal/storage/memory"
	"github.com/mcoot/scoreboard/internal/testutil"
)

// TestTokenSecret signs tokens issued by a TestApp
const TestTokenSecret = "test-secret"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	MockIDs   *mocks.MockIDGenerator
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockIDs := mocks.NewMockIDGenerator()

	tokens, err := token.New(token.Config{Secret: TestTokenSecret, TTL: time.Hour}, mockClock)
	if err != nil {
		panic(err)
	}

	// Minimum bcrypt cost keeps tests fast
	hasher := password.New(bcrypt.MinCost)

	app := newWithDependencies(store, config.StorageMemory, mockClock, mockIDs, tokens, hasher, testutil.NopLogger())

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		MockIDs:   mockIDs,
	}
}
