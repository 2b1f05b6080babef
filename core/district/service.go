package district

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/kipimo/core"
	"github.com/trezcool/kipimo/core/dashboard"
	"github.com/trezcool/kipimo/core/goal"
)

var (
	// errors
	ErrNotFound   = errors.New("district not found")
	ErrSlugExists = errors.New("a district with this slug already exists")

	invalidSlugText = "slug may only contain lowercase letters, digits and hyphens, and cannot be a reserved word"
)

// Orderings maps the public ordering fields of districts to their columns.
var Orderings = map[string]string{
	"name":       "name",
	"slug":       "slug",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

type (
	Repository interface {
		QueryAll(ctx context.Context, ordering []core.DBOrdering) ([]District, error)
		GetByID(ctx context.Context, id string) (District, error)
		GetBySlug(ctx context.Context, slug string) (District, error)
		// CheckSlugUniqueness returns ErrSlugExists if another district than `excludedID` uses `slug`.
		CheckSlugUniqueness(ctx context.Context, slug, excludedID string) error
		Create(ctx context.Context, d District) (District, error)
		Update(ctx context.Context, d District) (District, error)
		Delete(ctx context.Context, id string) error
	}

	Service struct {
		repo   Repository
		goals  *goal.Service
		mail   core.EmailService
		logger core.Logger
	}
)

func NewService(repo Repository, goals *goal.Service, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{repo: repo, goals: goals, mail: mailSvc, logger: logger}
}

func (svc *Service) checkSlug(ctx context.Context, slug, excludedID string) error {
	if GenerateSlug(slug) != slug {
		return core.NewFieldError("slug", "%s", invalidSlugText)
	}
	if err := svc.repo.CheckSlugUniqueness(ctx, slug, excludedID); err != nil {
		if errors.Cause(err) == ErrSlugExists {
			return core.NewValidationError(err, core.FieldError{Field: "slug", Error: err.Error()})
		}
		return errors.Wrap(err, "checking slug uniqueness")
	}
	return nil
}

func (svc *Service) QueryAll(ctx context.Context, ordering []core.DBOrdering) ([]District, error) {
	return svc.repo.QueryAll(ctx, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (District, error) {
	return svc.repo.GetByID(ctx, id)
}

// Get returns a district by slug, without statistics.
func (svc *Service) Get(ctx context.Context, slug string) (District, error) {
	return svc.repo.GetBySlug(ctx, core.CleanString(slug, true /* lower */))
}

// GetBySlug returns a district with the statistics of its goals and metrics.
func (svc *Service) GetBySlug(ctx context.Context, slug string) (Summary, error) {
	d, err := svc.Get(ctx, slug)
	if err != nil {
		return Summary{}, err
	}
	goals, err := svc.goals.List(ctx, d.ID)
	if err != nil {
		return Summary{}, errors.Wrap(err, "listing goals")
	}
	return Summarize(d, goals), nil
}

// Summarize computes the statistics of a district from its goals (with their metrics).
// Only goals with an override or at least one metric are bucketed.
func Summarize(d District, goals []goal.Goal) Summary {
	s := Summary{District: d, Buckets: make(dashboard.Counts)}
	var last time.Time
	for _, g := range goals {
		switch g.Level {
		case goal.LevelObjective:
			s.StrategyCount++
		case goal.LevelGoal:
			s.GoalCount++
		case goal.LevelSubGoal:
			s.SubGoalCount++
		}
		s.MetricCount += len(g.Metrics)

		if g.UpdatedAt.After(last) {
			last = g.UpdatedAt
		}
		for _, m := range g.Metrics {
			if m.UpdatedAt.After(last) {
				last = m.UpdatedAt
			}
		}

		if b, ok := goal.ProgressBucket(g); ok {
			s.Buckets.Add(b)
		}
	}
	if !last.IsZero() {
		s.LastActivity = &last
	}
	return s
}

func (svc *Service) Create(ctx context.Context, nd NewDistrict) (District, error) {
	slug := nd.Slug
	if slug == "" {
		slug = GenerateSlug(nd.Name)
	}
	if err := svc.checkSlug(ctx, slug, ""); err != nil {
		return District{}, err
	}

	now := core.Now()
	d := District{
		ID:             uuid.NewString(),
		Name:           nd.Name,
		Slug:           slug,
		PrimaryColor:   nd.PrimaryColor,
		SecondaryColor: nd.SecondaryColor,
		LogoURL:        nd.LogoURL,
		AdminEmail:     nd.AdminEmail,
		IsPublic:       nd.IsPublic,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return svc.repo.Create(ctx, d)
}

func (svc *Service) Update(ctx context.Context, id string, ud UpdateDistrict) (District, error) {
	d, err := svc.repo.GetByID(ctx, id)
	if err != nil {
		return District{}, err
	}
	if ud.Slug != nil && *ud.Slug != d.Slug {
		if err = svc.checkSlug(ctx, *ud.Slug, d.ID); err != nil {
			return District{}, err
		}
		d.Slug = *ud.Slug
	}
	if ud.Name != nil {
		d.Name = *ud.Name
	}
	if ud.PrimaryColor != nil {
		d.PrimaryColor = *ud.PrimaryColor
	}
	if ud.SecondaryColor != nil {
		d.SecondaryColor = *ud.SecondaryColor
	}
	if ud.LogoURL != nil {
		d.LogoURL = *ud.LogoURL
	}
	if ud.AdminEmail != nil {
		d.AdminEmail = *ud.AdminEmail
	}
	if ud.IsPublic != nil {
		d.IsPublic = *ud.IsPublic
	}
	d.UpdatedAt = core.Now()
	return svc.repo.Update(ctx, d)
}

// Delete removes a district after every one of its goals and metrics.
// A failure in the cascade is returned as a *goal.CascadeError and the district is kept.
func (svc *Service) Delete(ctx context.Context, id string) error {
	d, err := svc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err = svc.goals.DeleteByDistrict(ctx, d.ID); err != nil {
		return err
	}
	if err = svc.repo.Delete(ctx, d.ID); err != nil {
		return errors.Wrap(err, "deleting district")
	}
	svc.logger.Info(fmt.Sprintf("district %q deleted", d.Slug))
	return nil
}

// ProgressOverrideData is the content of the progress override email.
type ProgressOverrideData struct {
	DistrictName string
	GoalNumber   string
	Title        string
	Calculated   string
	Override     string
	DisplayMode  goal.DisplayMode
	Reason       string
}

// NotifyProgressOverride emails the district admin about a manual progress override.
func (svc *Service) NotifyProgressOverride(ctx context.Context, g goal.Goal) error {
	if !g.HasOverride() {
		return nil
	}
	d, err := svc.repo.GetByID(ctx, g.DistrictID)
	if err != nil {
		return errors.Wrap(err, "getting goal district")
	}
	if d.AdminEmail == "" {
		return nil
	}

	calculated := "n/a"
	if g.OverallProgress != nil {
		calculated = fmt.Sprintf("%.0f%%", *g.OverallProgress)
	}
	svc.mail.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: d.Name, Address: d.AdminEmail}},
		Subject:      fmt.Sprintf("Progress override on goal %s", g.GoalNumber),
		TemplateName: "progress_override",
		TemplateData: ProgressOverrideData{
			DistrictName: d.Name,
			GoalNumber:   g.GoalNumber,
			Title:        g.Title,
			Calculated:   calculated,
			Override:     fmt.Sprintf("%.0f%%", *g.OverallProgressOverride),
			DisplayMode:  g.OverallProgressDisplayMode,
			Reason:       g.OverallProgressOverrideReason,
		},
	})
	return nil
}
