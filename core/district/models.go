package district

import (
	"time"

	"github.com/trezcool/kipimo/core"
	"github.com/trezcool/kipimo/core/dashboard"
)

type District struct {
	ID             string    `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Slug           string    `json:"slug" db:"slug"`
	PrimaryColor   string    `json:"primary_color" db:"primary_color"`
	SecondaryColor string    `json:"secondary_color" db:"secondary_color"`
	LogoURL        string    `json:"logo_url" db:"logo_url"`
	AdminEmail     string    `json:"admin_email" db:"admin_email"`
	IsPublic       bool      `json:"is_public" db:"is_public"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// Summary is a District with the statistics of its goals and metrics.
type Summary struct {
	District
	StrategyCount int              `json:"strategy_count"` // level 0
	GoalCount     int              `json:"goal_count"`     // level 1
	SubGoalCount  int              `json:"sub_goal_count"` // level 2
	MetricCount   int              `json:"metric_count"`
	LastActivity  *time.Time       `json:"last_activity"`
	Buckets       dashboard.Counts `json:"buckets"` // goals per progress bucket
}

// NewDistrict contains information needed to create a new District.
type NewDistrict struct {
	Name           string `json:"name" validate:"required,min=2,max=120"`
	Slug           string `json:"slug" validate:"omitempty,max=50"`
	PrimaryColor   string `json:"primary_color" validate:"omitempty,hexcolor"`
	SecondaryColor string `json:"secondary_color" validate:"omitempty,hexcolor"`
	LogoURL        string `json:"logo_url" validate:"omitempty,url"`
	AdminEmail     string `json:"admin_email" validate:"required,email"`
	IsPublic       bool   `json:"is_public"`
}

func (nd *NewDistrict) Clean() {
	nd.Name = core.CleanString(nd.Name)
	nd.Slug = core.CleanString(nd.Slug, true /* lower */)
	nd.PrimaryColor = core.CleanString(nd.PrimaryColor)
	nd.SecondaryColor = core.CleanString(nd.SecondaryColor)
	nd.LogoURL = core.CleanString(nd.LogoURL)
	nd.AdminEmail = core.CleanString(nd.AdminEmail, true /* lower */)
}

// UpdateDistrict defines what information may be provided to modify an existing District.
// nil fields are left unchanged.
type UpdateDistrict struct {
	Name           *string `json:"name" validate:"omitempty,min=2,max=120"`
	Slug           *string `json:"slug" validate:"omitempty,max=50"`
	PrimaryColor   *string `json:"primary_color" validate:"omitempty,hexcolor"`
	SecondaryColor *string `json:"secondary_color" validate:"omitempty,hexcolor"`
	LogoURL        *string `json:"logo_url" validate:"omitempty,url"`
	AdminEmail     *string `json:"admin_email" validate:"omitempty,email"`
	IsPublic       *bool   `json:"is_public"`
}

func (ud *UpdateDistrict) Clean() {
	clean := func(s *string, lower bool) {
		if s != nil {
			*s = core.CleanString(*s, lower)
		}
	}
	clean(ud.Name, false)
	clean(ud.Slug, true)
	clean(ud.PrimaryColor, false)
	clean(ud.SecondaryColor, false)
	clean(ud.LogoURL, false)
	clean(ud.AdminEmail, true)
}
