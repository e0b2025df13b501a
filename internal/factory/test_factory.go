package factory

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/gamesessions/internal/authz"
	"github.com/mcoot/gamesessions/internal/dependencies/mocks"
	"github.com/mcoot/gamesessions/internal/directory"
	"github.com/mcoot/gamesessions/internal/services/credentials"
	"github.com/mcoot/gamesessions/internal/storage/memory"
	"github.com/mcoot/gamesessions/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// Bcrypt runs at its minimum cost to keep tests fast.
func NewTestApp(policy authz.Policy) *TestApp {
	if policy == nil {
		policy = authz.Open{}
	}
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, credentials.NewBcrypt(bcrypt.MinCost),
		policy, directory.NewMemory(), testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
