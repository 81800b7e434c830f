package orchestrator

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain ensures scorePairs' errgroup workers never outlive a test.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
