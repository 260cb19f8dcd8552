package bdd

import (
	"fmt"
	"os"
	"testing"

	"github.com/cucumber/godog"

	"github.com/ropable/spacetraders-api/test/bdd/steps"
	"github.com/ropable/spacetraders-api/test/helpers"
)

func TestMain(m *testing.M) {
	if err := helpers.InitializeSharedTestDB(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize test database: %v\n", err)
		os.Exit(1)
	}
	code := m.Run()
	_ = helpers.CloseSharedTestDB()
	os.Exit(code)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/domain", "features/application", "features/adapters"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

func InitializeScenario(sc *godog.ScenarioContext) {
	// Domain layer
	steps.InitializeTravelModelScenario(sc)
	steps.InitializeArbitrageScenario(sc)

	// Application layer
	steps.InitializeShipActionScenario(sc)

	// Adapter layer, backed by the shared in-memory database
	steps.InitializeMarketCacheScenario(sc)
}
