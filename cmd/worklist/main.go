package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"radiology-portal/internal/assignment"
	"radiology-portal/internal/config"
	"radiology-portal/internal/models"
	"radiology-portal/internal/store"
	"radiology-portal/internal/timeline"
	"radiology-portal/internal/worklist"
)

// app is shared by every subcommand; PersistentPreRunE fills it in.
type app struct {
	logger zerolog.Logger
	store  store.Store
	close  func()
	now    func() time.Time
	asJSON bool

	loadConfig func() (*config.Config, error)
	openStore  func(ctx context.Context, dsn string, logger zerolog.Logger) (store.Store, func(), error)
}

func main() {
	a := &app{now: time.Now, loadConfig: config.Load, openStore: store.Open}
	if err := newRootCmd(a).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "worklist",
		Short:        "Inspect and assign the radiology worklist",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			a.logger = cfg.NewLogger(cmd.ErrOrStderr())
			s, closeFn, err := a.openStore(cmd.Context(), cfg.DatabaseURL, a.logger)
			if err != nil {
				return err
			}
			a.store, a.close = s, closeFn
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.close != nil {
				a.close()
			}
		},
	}
	root.PersistentFlags().BoolVar(&a.asJSON, "json", false, "print JSON instead of a table")

	root.AddCommand(listCmd(a), assignCmd(a), recountCmd(a), timelineCmd(a))
	return root
}

func (a *app) printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func listCmd(a *app) *cobra.Command {
	var (
		c      worklist.Criteria
		sort   string
		from   string
		to     string
		output string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the exams of a category",
		RunE: func(cmd *cobra.Command, args []string) error {
			c.Sort = worklist.ParseSortOrder(sort)
			var err error
			if c.From, err = parseDate(from); err != nil {
				return err
			}
			if c.To, err = parseDate(to); err != nil {
				return err
			}
			if err := c.Validate(); err != nil {
				return err
			}

			exams, err := a.store.ListExams(cmd.Context())
			if err != nil {
				return err
			}
			selected := worklist.Apply(exams, c)
			a.logger.Debug().Int("total", len(exams)).Int("selected", len(selected)).Msg("worklist filtered")

			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				return worklist.Export(f, selected)
			}
			if a.asJSON {
				return a.printJSON(cmd.OutOrStdout(), selected)
			}

			now := a.now()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tPATIENT\tEXAM\tDATE\tAGE\tDOCTOR")
			for _, e := range selected {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					e.ID, e.PatientName, e.ExamType, e.Date.Format("02/01/2006"), e.DaysOldText(now), e.AssignedDoctor)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar((*string)(&c.Category), "category", string(models.CategoryInbox), "inbox, pending, second-opinion or completed")
	cmd.Flags().StringVarP(&c.Query, "query", "q", "", "free-text search")
	cmd.Flags().StringVar(&sort, "sort", string(worklist.SortDateDesc), "date-desc, date-asc, patient-name-asc or patient-name-desc")
	cmd.Flags().StringVar((*string)(&c.Site), "site", "", "principal or policlinique")
	cmd.Flags().StringVar(&c.Modality, "modality", "", "CT, MR, US, CR or MG")
	cmd.Flags().StringVar(&c.Doctor, "doctor", "", "assigned doctor name")
	cmd.Flags().StringVar((*string)(&c.Report), "report", "", "reported or unreported")
	cmd.Flags().StringVar(&from, "from", "", "earliest exam date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "latest exam date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write an xlsx export to this file")
	return cmd
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

func assignCmd(a *app) *cobra.Command {
	var (
		strategy string
		doctor   string
		unassign bool
	)
	cmd := &cobra.Command{
		Use:   "assign EXAM_ID...",
		Short: "Assign exams to a doctor",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := assignment.NewEngine(a.store)
			ctx := cmd.Context()

			var (
				doctors []*models.Doctor
				err     error
			)
			switch {
			case unassign:
				doctors, err = engine.Unassign(ctx, args)
			case strategy == "random":
				doctors, err = engine.AssignRandom(ctx, args)
			case strategy == "balanced":
				doctors, err = engine.AssignBalanced(ctx, args)
			case strategy == "manual":
				if doctor == "" {
					return fmt.Errorf("--doctor is required with the manual strategy")
				}
				doctors, err = engine.Assign(ctx, args, doctor)
			default:
				return fmt.Errorf("unknown strategy %q", strategy)
			}
			if err != nil {
				return err
			}
			a.logger.Info().Strs("exam_ids", args).Str("strategy", strategy).Msg("exams assigned")
			return a.printDoctors(cmd.OutOrStdout(), doctors)
		},
	}
	cmd.Flags().StringVar(&strategy, "strategy", "manual", "manual, random or balanced")
	cmd.Flags().StringVar(&doctor, "doctor", "", "doctor name or id for manual assignment")
	cmd.Flags().BoolVar(&unassign, "unassign", false, "clear the assigned doctor instead")
	return cmd
}

func recountCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "recount",
		Short: "Recompute the exam count of every doctor",
		RunE: func(cmd *cobra.Command, args []string) error {
			doctors, err := assignment.NewEngine(a.store).Recount(cmd.Context())
			if err != nil {
				return err
			}
			return a.printDoctors(cmd.OutOrStdout(), doctors)
		},
	}
}

func (a *app) printDoctors(w io.Writer, doctors []*models.Doctor) error {
	if a.asJSON {
		return a.printJSON(w, doctors)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDOCTOR\tSPECIALTY\tEXAMS")
	for _, d := range doctors {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", d.ID, d.Name, d.Specialty, d.ExamCount)
	}
	return tw.Flush()
}

func timelineCmd(a *app) *cobra.Command {
	f := timeline.DefaultFilter()
	var period string
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Print the calendar map positions of the patient exams",
		RunE: func(cmd *cobra.Command, args []string) error {
			f.Period = timeline.Period(period)
			if f.View != timeline.ViewDepartment && f.View != timeline.ViewAnatomy {
				return fmt.Errorf("unknown view %q", f.View)
			}
			ctx := cmd.Context()
			points, err := a.store.ListExamPoints(ctx)
			if err != nil {
				return err
			}
			departments, err := a.store.ListDepartments(ctx)
			if err != nil {
				return err
			}
			regions, err := a.store.ListAnatomyRegions(ctx)
			if err != nil {
				return err
			}

			var deptNames, regionNames []string
			for _, d := range departments {
				deptNames = append(deptNames, d.Name)
			}
			for _, r := range regions {
				regionNames = append(regionNames, r.Name)
			}
			regionLanes := timeline.NewLanes(regionNames)
			lanes := timeline.NewLanes(deptNames)
			if f.View == timeline.ViewAnatomy {
				lanes = regionLanes
			}

			now := a.now()
			chart := timeline.Layout(f.Apply(points, regionLanes, now), f.View, lanes, now,
				timeline.FullScale, float64(40*lanes.Len()))
			if a.asJSON {
				return a.printJSON(cmd.OutOrStdout(), chart)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "today at %.2f%%\n", chart.Today)
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDATE\tEXAM\tLANE\tX\tY\t")
			for _, p := range chart.Points {
				lane := p.Department
				if f.View == timeline.ViewAnatomy {
					lane = p.AnatomicalRegion
				}
				future := ""
				if p.IsFuture {
					future = "upcoming"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\t%.0f\t%s\n",
					p.ID, p.Date.Format("02/01/2006"), p.ExamName, lane, p.X, p.Y, future)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			labels := make([]string, len(chart.Labels))
			for i, l := range chart.Labels {
				labels[i] = l.Label
			}
			fmt.Fprintf(out, "axis: %s\n", strings.Join(labels, " | "))
			return nil
		},
	}
	cmd.Flags().StringVar((*string)(&f.View), "view", string(timeline.ViewDepartment), "department or anatomy")
	cmd.Flags().StringVar(&f.Department, "department", timeline.All, "department lane to keep")
	cmd.Flags().StringVar(&f.Anatomy, "anatomy", timeline.All, "anatomical region to keep, or Others")
	cmd.Flags().StringVar(&period, "period", string(timeline.PeriodThreeYears), "time window, e.g. \"1 Year\" or ALL")
	return cmd
}
