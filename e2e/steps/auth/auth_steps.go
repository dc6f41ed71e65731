package auth

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	GET(path string) error
	Status() int
	Body() string
	GetResponseField(field string) (any, error)
	SetTokens(access, refresh string)
	AccessToken() string
	RefreshToken() string
	Save(name, value string)
	Saved(name string) string
}

const testPassword = "donate-blood-42"

// RegisterSteps registers authentication-related step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &authSteps{tc: tc}

	ctx.Step(`^I register a donor named "([^"]*)"$`, steps.registerDonor)
	ctx.Step(`^I am a registered donor named "([^"]*)"$`, steps.registeredDonor)
	ctx.Step(`^I am logged in as the bootstrap admin$`, steps.loginAsAdmin)
	ctx.Step(`^I log in as "([^"]*)"$`, steps.loginAs)
	ctx.Step(`^I log in as "([^"]*)" with password "([^"]*)"$`, steps.loginWithPassword)
	ctx.Step(`^I refresh my access token$`, steps.refresh)
	ctx.Step(`^I log out$`, steps.logout)
	ctx.Step(`^I act as "([^"]*)"$`, steps.actAs)
	ctx.Step(`^I register with password "([^"]*)" confirmed as "([^"]*)"$`, steps.registerWithPasswords)
}

type authSteps struct {
	tc TestContext
}

// unique keeps scenarios independent on a long-lived server.
func unique(name string) string {
	return fmt.Sprintf("%s_%d", name, time.Now().UnixNano())
}

func (s *authSteps) registerDonor(ctx context.Context, name string) error {
	username := unique(name)
	s.tc.Save(name, username)
	if err := s.tc.POST("/auth/register", map[string]any{
		"username":   username,
		"email":      username + "@example.org",
		"password":   testPassword,
		"password2":  testPassword,
		"first_name": name,
		"last_name":  "Tester",
	}); err != nil {
		return err
	}
	return s.captureTokens(name)
}

func (s *authSteps) registeredDonor(ctx context.Context, name string) error {
	if err := s.registerDonor(ctx, name); err != nil {
		return err
	}
	if s.tc.Status() != 201 {
		return fmt.Errorf("register %s: status %d: %s", name, s.tc.Status(), s.tc.Body())
	}
	return nil
}

func (s *authSteps) registerWithPasswords(ctx context.Context, pw, pw2 string) error {
	username := unique("weak")
	return s.tc.POST("/auth/register", map[string]any{
		"username":  username,
		"email":     username + "@example.org",
		"password":  pw,
		"password2": pw2,
	})
}

func (s *authSteps) loginAsAdmin(ctx context.Context) error {
	username := os.Getenv("LIFELINE_E2E_ADMIN_USERNAME")
	password := os.Getenv("LIFELINE_E2E_ADMIN_PASSWORD")
	if username == "" || password == "" {
		return godog.ErrPending
	}
	if err := s.login(username, password, "admin"); err != nil {
		return err
	}
	if s.tc.Status() != 200 {
		return fmt.Errorf("admin login: status %d: %s", s.tc.Status(), s.tc.Body())
	}
	return nil
}

func (s *authSteps) loginAs(ctx context.Context, name string) error {
	return s.login(s.tc.Saved(name), testPassword, name)
}

func (s *authSteps) loginWithPassword(ctx context.Context, username, password string) error {
	return s.login(username, password, username)
}

func (s *authSteps) login(username, password, actor string) error {
	s.tc.SetTokens("", "")
	if err := s.tc.POST("/auth/login", map[string]any{
		"username": username,
		"password": password,
	}); err != nil {
		return err
	}
	return s.captureTokens(actor)
}

// actAs switches to the tokens an earlier step captured for actor.
func (s *authSteps) actAs(ctx context.Context, actor string) error {
	access := s.tc.Saved("access:" + actor)
	if access == "" {
		return fmt.Errorf("no session for %q", actor)
	}
	s.tc.SetTokens(access, s.tc.Saved("refresh:"+actor))
	return nil
}

func (s *authSteps) refresh(ctx context.Context) error {
	refresh := s.tc.RefreshToken()
	if err := s.tc.POST("/auth/token/refresh", map[string]any{"refresh": refresh}); err != nil {
		return err
	}
	if access, err := s.tc.GetResponseField("access"); err == nil {
		s.tc.SetTokens(access.(string), refresh)
	}
	return nil
}

func (s *authSteps) logout(ctx context.Context) error {
	return s.tc.POST("/auth/logout", map[string]any{"refresh": s.tc.RefreshToken()})
}

// captureTokens keeps the pair from a successful register or login and
// remembers it under actor.
func (s *authSteps) captureTokens(actor string) error {
	if s.tc.Status() >= 300 {
		return nil
	}
	access, err := s.tc.GetResponseField("tokens.access")
	if err != nil {
		return err
	}
	refresh, err := s.tc.GetResponseField("tokens.refresh")
	if err != nil {
		return err
	}
	s.tc.SetTokens(access.(string), refresh.(string))
	s.tc.Save("access:"+actor, access.(string))
	s.tc.Save("refresh:"+actor, refresh.(string))
	return nil
}
