package e2e

import (
	"context"
	"os"
	"testing"

	"github.com/cucumber/godog"
)

// TestFeatures runs the feature files against LIFELINE_E2E_URL. Admin
// scenarios also need the server's bootstrap credentials in
// LIFELINE_E2E_ADMIN_USERNAME and LIFELINE_E2E_ADMIN_PASSWORD.
func TestFeatures(t *testing.T) {
	baseURL := os.Getenv("LIFELINE_E2E_URL")
	if baseURL == "" {
		t.Skip("LIFELINE_E2E_URL not set")
	}
	tc := NewTestContext(baseURL)

	suite := godog.TestSuite{
		Name: "lifeline",
		ScenarioInitializer: func(ctx *godog.ScenarioContext) {
			ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
				tc.Reset()
				return ctx, nil
			})
			RegisterSteps(ctx, tc)
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
			Strict:   true,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("feature suite failed")
	}
}
