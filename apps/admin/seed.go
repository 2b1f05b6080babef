package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/kipimo/core/district"
	"github.com/trezcool/kipimo/core/goal"
	"github.com/trezcool/kipimo/core/metric"
	emailsvc "github.com/trezcool/kipimo/services/email"
	inmemdb "github.com/trezcool/kipimo/storage/database/inmem"
)

type (
	// seed is a district with its goal tree, as written in a YAML seed file.
	seed struct {
		District seedDistrict `yaml:"district"`
		Goals    []seedGoal   `yaml:"goals"`
	}

	seedDistrict struct {
		Name           string `yaml:"name"`
		Slug           string `yaml:"slug"`
		AdminEmail     string `yaml:"admin_email"`
		PrimaryColor   string `yaml:"primary_color"`
		SecondaryColor string `yaml:"secondary_color"`
		LogoURL        string `yaml:"logo_url"`
		IsPublic       bool   `yaml:"is_public"`
	}

	seedGoal struct {
		Title        string           `yaml:"title"`
		Description  string           `yaml:"description"`
		StatusDetail string           `yaml:"status_detail"`
		DisplayMode  goal.DisplayMode `yaml:"display_mode"`
		CustomValue  string           `yaml:"custom_value"`
		Metrics      []seedMetric     `yaml:"metrics"`
		Children     []seedGoal       `yaml:"children"`
	}

	seedMetric struct {
		Name                string      `yaml:"name"`
		Description         string      `yaml:"description"`
		MetricType          metric.Type `yaml:"metric_type"`
		MetricCategory      string      `yaml:"metric_category"`
		CurrentValue        *float64    `yaml:"current_value"`
		TargetValue         *float64    `yaml:"target_value"`
		Unit                string      `yaml:"unit"`
		IsHigherBetter      *bool       `yaml:"is_higher_better"`
		CollectionFrequency string      `yaml:"collection_frequency"`
	}
)

func readSeed(path string) (seed, error) {
	var s seed
	f, err := os.Open(path)
	if err != nil {
		return s, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err = dec.Decode(&s); err != nil {
		return s, errors.Wrapf(err, "decoding %s", path)
	}
	return s, nil
}

func (s seed) slug() string {
	if s.District.Slug != "" {
		return strings.ToLower(strings.TrimSpace(s.District.Slug))
	}
	return district.GenerateSlug(s.District.Name)
}

type importStats struct {
	created bool // district
	goals   int
	metrics int
}

func (st importStats) String() string {
	verb := "updated"
	if st.created {
		verb = "created"
	}
	return fmt.Sprintf("district %s: %d goals and %d metrics imported", verb, st.goals, st.metrics)
}

func (cli *commandLine) importCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "import SEED.yml",
		Short: "Import a district and its goal tree from a YAML seed",
		Long: `Import a district and its goal tree from a YAML seed.

The district is created unless its slug is taken, in which case the seeded goals are added
to it. With --dry-run nothing is written: the changes to the goal outline are printed as a
unified diff.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := readSeed(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if dryRun {
				return cli.importDryRun(ctx, s)
			}

			_, stats, err := cli.importSeed(ctx, cli.svc, s)
			if err != nil {
				return err
			}
			fmt.Fprintln(cli.out, stats)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the changes without writing them")
	return cmd
}

// importSeed writes `s` through `svc`: district first, then goals depth-first so each one is
// numbered after its parent, then the progress of the whole district.
func (cli *commandLine) importSeed(ctx context.Context, svc services, s seed) (district.District, importStats, error) {
	var stats importStats

	d, err := svc.districts.Get(ctx, s.slug())
	switch errors.Cause(err) {
	case nil:
	case district.ErrNotFound:
		nd := district.NewDistrict{
			Name:           s.District.Name,
			Slug:           s.District.Slug,
			PrimaryColor:   s.District.PrimaryColor,
			SecondaryColor: s.District.SecondaryColor,
			LogoURL:        s.District.LogoURL,
			AdminEmail:     s.District.AdminEmail,
			IsPublic:       s.District.IsPublic,
		}
		if err = nd.Validate(cli.validate); err != nil {
			return d, stats, errors.Wrap(err, "invalid district")
		}
		if d, err = svc.districts.Create(ctx, nd); err != nil {
			return d, stats, errors.Wrap(err, "creating district")
		}
		stats.created = true
	default:
		return d, stats, errors.Wrap(err, "finding district")
	}

	var create func(parentID *string, goals []seedGoal) error
	create = func(parentID *string, goals []seedGoal) error {
		for _, sg := range goals {
			ng := goal.NewGoal{
				DistrictID:   d.ID,
				ParentID:     parentID,
				Title:        sg.Title,
				Description:  sg.Description,
				StatusDetail: sg.StatusDetail,
				DisplayMode:  sg.DisplayMode,
				CustomValue:  sg.CustomValue,
			}
			if err := ng.Validate(cli.validate); err != nil {
				return errors.Wrapf(err, "invalid goal %q", sg.Title)
			}
			g, err := svc.goals.Create(ctx, ng)
			if err != nil {
				return errors.Wrapf(err, "creating goal %q", sg.Title)
			}
			stats.goals++

			for _, sm := range sg.Metrics {
				nm := metric.NewMetric{
					GoalID:              g.ID,
					DistrictID:          d.ID,
					Name:                sm.Name,
					Description:         sm.Description,
					MetricType:          sm.MetricType,
					MetricCategory:      sm.MetricCategory,
					CurrentValue:        sm.CurrentValue,
					TargetValue:         sm.TargetValue,
					Unit:                sm.Unit,
					IsHigherBetter:      sm.IsHigherBetter,
					CollectionFrequency: sm.CollectionFrequency,
				}
				if nm.MetricType == "" {
					nm.MetricType = metric.TypeNumber
				}
				if err = nm.Validate(cli.validate); err != nil {
					return errors.Wrapf(err, "invalid metric %q of goal %s", sm.Name, g.GoalNumber)
				}
				if _, err = svc.metrics.Create(ctx, nm); err != nil {
					return errors.Wrapf(err, "creating metric %q of goal %s", sm.Name, g.GoalNumber)
				}
				stats.metrics++
			}

			if err = create(&g.ID, sg.Children); err != nil {
				return err
			}
		}
		return nil
	}
	if err = create(nil, s.Goals); err != nil {
		return d, stats, err
	}

	if _, err = svc.goals.RecalculateDistrict(ctx, d.ID); err != nil {
		return d, stats, errors.Wrap(err, "recalculating district progress")
	}
	return d, stats, nil
}

// importDryRun replays the import over an in-memory copy of the district and prints how its
// goal outline would change.
func (cli *commandLine) importDryRun(ctx context.Context, s seed) error {
	db := inmemdb.Open()
	dRepo := inmemdb.NewDistrictRepository(db)
	gRepo := inmemdb.NewGoalRepository(db)
	mRepo := inmemdb.NewMetricRepository(db)

	var before []goal.Goal
	d, err := cli.svc.districts.Get(ctx, s.slug())
	switch errors.Cause(err) {
	case nil:
		if before, err = cli.svc.goals.List(ctx, d.ID); err != nil {
			return errors.Wrap(err, "listing goals")
		}
		if err = copyDistrict(ctx, d, before, dRepo, gRepo, mRepo); err != nil {
			return errors.Wrap(err, "copying district")
		}
	case district.ErrNotFound:
	default:
		return errors.Wrap(err, "finding district")
	}

	// nothing is sent from a dry run
	dry := newServices(cli.conf, cli.logger, emailsvc.NewConsoleServiceMock(cli.conf, cli.logger), dRepo, gRepo, mRepo)
	d, stats, err := cli.importSeed(ctx, dry, s)
	if err != nil {
		return err
	}
	after, err := dry.goals.List(ctx, d.ID)
	if err != nil {
		return errors.Wrap(err, "listing goals")
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        outline(before),
		B:        outline(after),
		FromFile: d.Slug + " (current)",
		ToFile:   d.Slug + " (imported)",
		Context:  3,
	})
	if err != nil {
		return errors.Wrap(err, "diffing goal outlines")
	}
	fmt.Fprint(cli.out, diff)
	fmt.Fprintf(cli.out, "dry run, %s\n", stats)
	return nil
}

func copyDistrict(ctx context.Context, d district.District, goals []goal.Goal,
	dRepo district.Repository, gRepo goal.Repository, mRepo metric.Repository) error {
	if _, err := dRepo.Create(ctx, d); err != nil {
		return err
	}
	for _, g := range goals {
		metrics := g.Metrics
		g.Metrics = nil
		if _, err := gRepo.Create(ctx, g); err != nil {
			return err
		}
		for _, m := range metrics {
			if _, err := mRepo.Create(ctx, m); err != nil {
				return err
			}
		}
	}
	return nil
}

// outline renders a goal tree one line per goal, indented by level.
func outline(goals []goal.Goal) []string {
	flat := goal.Flatten(goal.BuildHierarchy(goals))
	lines := make([]string, 0, len(flat))
	for _, g := range flat {
		line := strings.Repeat("  ", int(g.Level)) + g.GoalNumber + " " + g.Title
		if n := len(g.Metrics); n > 0 {
			line += fmt.Sprintf(" [%d metrics]", n)
		}
		lines = append(lines, line+"\n")
	}
	return lines
}
