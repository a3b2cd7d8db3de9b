package factory

import (
	"time"

	"github.com/mcoot/rightsquest/internal/dependencies/mocks"
	"github.com/mcoot/rightsquest/internal/storage/memory"
	"github.com/mcoot/rightsquest/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// The simulated ledger confirms instantly unless the clock says otherwise.
func NewTestApp() *TestApp {
	return NewTestAppWithConfig(Config{
		ConfirmDelay:   -1,
		ConfirmTimeout: time.Second,
	})
}

// NewTestAppWithConfig is NewTestApp with explicit factory settings
func NewTestAppWithConfig(cfg Config) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app, err := newWithDependencies(store, mockClock, mockRandom, cfg, testutil.NopLogger())
	if err != nil {
		panic(err)
	}

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
