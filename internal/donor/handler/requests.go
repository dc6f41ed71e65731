package handler

import (
	"strings"

	"lifeline/internal/donor/models"
	id "lifeline/pkg/domain"
	dErrors "lifeline/pkg/domain-errors"
)

// UpdateProfileRequest is a partial update; omitted fields are untouched and
// an empty blood_type clears it.
type UpdateProfileRequest struct {
	Age        *int     `json:"age"`
	Weight     *float64 `json:"weight"`
	Phone      *string  `json:"phone"`
	Location   *string  `json:"location"`
	BloodType  *string  `json:"blood_type"`
	HealthInfo *string  `json:"health_info"`

	update models.ProfileUpdate
}

func (r *UpdateProfileRequest) Normalize() {
	trim := func(p *string) {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
	trim(r.Phone)
	trim(r.Location)
	trim(r.BloodType)
}

func (r *UpdateProfileRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.update = models.ProfileUpdate{
		Age:        r.Age,
		Weight:     r.Weight,
		Phone:      r.Phone,
		Location:   r.Location,
		HealthInfo: r.HealthInfo,
	}
	if r.BloodType != nil {
		bt := id.BloodType("")
		if *r.BloodType != "" {
			parsed, err := id.ParseBloodType(*r.BloodType)
			if err != nil {
				return dErrors.New(dErrors.CodeValidation, "\""+*r.BloodType+"\" is not a valid choice.").
					WithDetails("field", "blood_type")
			}
			bt = parsed
		}
		r.update.BloodType = &bt
	}
	return r.update.Validate()
}
