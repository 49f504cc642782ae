//go:build integration

package evaluationintegrationtests

import (
	"log"
	"os"
	"testing"

	"github.com/Black-And-White-Club/campscore/integration_tests/testutils"
)

var testEnv *testutils.TestEnvironment

func TestMain(m *testing.M) {
	env, err := testutils.NewTestEnvironment()
	if err != nil {
		log.Printf("Failed to set up test environment: %v", err)
		os.Exit(1)
	}
	testEnv = env

	code := m.Run()
	testEnv.Cleanup()
	os.Exit(code)
}
