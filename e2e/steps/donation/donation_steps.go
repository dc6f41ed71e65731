package donation

import (
	"context"
	"fmt"
	"time"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	PATCH(path string, body any) error
	GET(path string) error
	Status() int
	Body() string
	GetResponseField(field string) (any, error)
	Save(name, value string)
	Saved(name string) string
	Expand(s string) string
}

// RegisterSteps registers hospital, scheduling and finalization steps
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &donationSteps{tc: tc}

	ctx.Step(`^I add a hospital "([^"]*)" in "([^"]*)"$`, steps.addHospital)
	ctx.Step(`^I schedule a "([^"]*)" donation in (\d+) days? at hospital "([^"]*)"$`, steps.scheduleAt)
	ctx.Step(`^I schedule a "([^"]*)" donation in (\d+) days?$`, steps.schedule)
	ctx.Step(`^I finalize schedule "([^"]*)" at hospital "([^"]*)" with (\d+(?:\.\d+)?) ml$`, steps.finalize)
	ctx.Step(`^I cancel schedule "([^"]*)"$`, steps.cancel)
	ctx.Step(`^I record (-?\d+) lives saved on record "([^"]*)"$`, steps.recordLives)
	ctx.Step(`^I post an emergency request for "([^"]*)" blood at "([^"]*)" with urgency "([^"]*)"$`, steps.postEmergency)
}

type donationSteps struct {
	tc TestContext
}

func (s *donationSteps) addHospital(ctx context.Context, name, location string) error {
	if err := s.tc.POST("/admin/hospitals/add", map[string]any{
		"name":     fmt.Sprintf("%s %d", name, time.Now().UnixNano()),
		"location": location,
	}); err != nil {
		return err
	}
	if s.tc.Status() != 201 {
		return fmt.Errorf("add hospital: status %d: %s", s.tc.Status(), s.tc.Body())
	}
	hospitalID, err := s.tc.GetResponseField("id")
	if err != nil {
		return err
	}
	s.tc.Save(name, hospitalID.(string))
	return nil
}

func (s *donationSteps) schedule(ctx context.Context, donationType string, days int) error {
	return s.tc.POST("/donations/schedule", map[string]any{
		"scheduled_date": time.Now().UTC().AddDate(0, 0, days).Format(time.RFC3339),
		"donation_type":  donationType,
	})
}

func (s *donationSteps) scheduleAt(ctx context.Context, donationType string, days int, hospital string) error {
	return s.tc.POST("/donations/schedule", map[string]any{
		"scheduled_date":        time.Now().UTC().AddDate(0, 0, days).Format(time.RFC3339),
		"donation_type":         donationType,
		"preferred_hospital_id": s.tc.Saved(hospital),
	})
}

func (s *donationSteps) finalize(ctx context.Context, schedule, hospital string, amount float64) error {
	return s.tc.PATCH(s.tc.Expand("/admin/schedules/{"+schedule+"}/done"), map[string]any{
		"hospital_id":  s.tc.Saved(hospital),
		"blood_amount": amount,
	})
}

func (s *donationSteps) cancel(ctx context.Context, schedule string) error {
	return s.tc.PATCH(s.tc.Expand("/admin/schedules/{"+schedule+"}/cancel"), nil)
}

func (s *donationSteps) recordLives(ctx context.Context, n int, record string) error {
	return s.tc.PATCH(s.tc.Expand("/admin/records/{"+record+"}/update-lives"), map[string]any{
		"lives_saved": n,
	})
}

func (s *donationSteps) postEmergency(ctx context.Context, bloodType, hospital, urgency string) error {
	return s.tc.POST("/emergency-requests", map[string]any{
		"patient_name":      "E2E Patient",
		"blood_type":        bloodType,
		"hospital_name":     hospital,
		"hospital_location": "Ward 3",
		"contact_phone":     "+1-555-0100",
		"urgency":           urgency,
	})
}
