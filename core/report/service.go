package report

import (
	"bytes"
	"context"
	"fmt"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/trezcool/kipimo/core"
	"github.com/trezcool/kipimo/core/district"
	"github.com/trezcool/kipimo/core/goal"
	"github.com/trezcool/kipimo/core/metric"
)

// Archiver keeps a copy of exported files, see services/archive.
type Archiver interface {
	Archive(ctx context.Context, key string, content []byte, contentType string) (string, error)
}

// File is an encoded report.
type File struct {
	Name        string
	ContentType string
	Content     []byte
}

type Service struct {
	districts  *district.Service
	goals      *goal.Service
	thresholds metric.Thresholds
	mail       core.EmailService
	archiver   Archiver
	logger     core.Logger
}

func NewService(
	districts *district.Service,
	goals *goal.Service,
	thresholds metric.Thresholds,
	mailSvc core.EmailService,
	archiver Archiver,
	logger core.Logger,
) *Service {
	return &Service{
		districts:  districts,
		goals:      goals,
		thresholds: thresholds,
		mail:       mailSvc,
		archiver:   archiver,
		logger:     logger,
	}
}

// Build returns the report of the district identified by `slug`.
func (svc *Service) Build(ctx context.Context, slug string) (district.District, Report, error) {
	d, err := svc.districts.Get(ctx, slug)
	if err != nil {
		return district.District{}, Report{}, err
	}
	goals, err := svc.goals.List(ctx, d.ID)
	if err != nil {
		return district.District{}, Report{}, errors.Wrap(err, "listing goals")
	}
	return d, Build(d, goals, svc.thresholds, core.Now()), nil
}

// Export encodes the report of a district in `format`.
func (svc *Service) Export(ctx context.Context, slug string, format Format) (File, error) {
	d, r, err := svc.Build(ctx, slug)
	if err != nil {
		return File{}, err
	}
	return encode(d, r, format)
}

func encode(d district.District, r Report, format Format) (File, error) {
	var buf bytes.Buffer
	if err := Write(&buf, r, format); err != nil {
		return File{}, errors.Wrap(err, "encoding report")
	}
	return File{
		Name:        fmt.Sprintf("%s-report-%s%s", d.Slug, r.GeneratedAt.Format("20060102"), format.Ext()),
		ContentType: format.ContentType(),
		Content:     buf.Bytes(),
	}, nil
}

// EmailData is the content of the district report email.
type EmailData struct {
	Format        string
	DistrictName  string
	StrategyCount int
	GoalCount     int
	SubGoalCount  int
	MetricCount   int
}

// Email sends the report of a district, attached in `format`, to the district admin.
func (svc *Service) Email(ctx context.Context, slug string, format Format) error {
	d, r, err := svc.Build(ctx, slug)
	if err != nil {
		return err
	}
	if d.AdminEmail == "" {
		return core.NewFieldError("admin_email", "the district has no admin email")
	}
	f, err := encode(d, r, format)
	if err != nil {
		return err
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: d.Name, Address: d.AdminEmail}},
		Subject:      fmt.Sprintf("%s report", d.Name),
		TemplateName: "district_report",
		TemplateData: EmailData{
			Format:        string(format),
			DistrictName:  d.Name,
			StrategyCount: r.Summary.StrategyCount,
			GoalCount:     r.Summary.GoalCount,
			SubGoalCount:  r.Summary.SubGoalCount,
			MetricCount:   r.Summary.MetricCount,
		},
	}
	if err = msg.Attach(bytes.NewReader(f.Content), f.Name, f.ContentType); err != nil {
		return errors.Wrap(err, "attaching report")
	}
	svc.mail.SendMessages(msg)
	return nil
}

// Archive stores the report of a district and returns where it was stored.
func (svc *Service) Archive(ctx context.Context, slug string, format Format) (string, error) {
	d, r, err := svc.Build(ctx, slug)
	if err != nil {
		return "", err
	}
	f, err := encode(d, r, format)
	if err != nil {
		return "", err
	}
	loc, err := svc.archiver.Archive(ctx, d.Slug+"/"+f.Name, f.Content, f.ContentType)
	if err != nil {
		return "", errors.Wrap(err, "archiving report")
	}
	svc.logger.Info(fmt.Sprintf("report of %q archived to %s", d.Slug, loc))
	return loc, nil
}
