package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"accomplish/internal/api"
	"accomplish/internal/duration"
	"accomplish/internal/history"
	"accomplish/internal/logging"
	"accomplish/internal/recap"
	"accomplish/internal/spinner"
)

func newRecapCommand(ctx *commandContext) *cobra.Command {
	var fromFlag string
	var toFlag string
	var sinceFlag string
	var projectFlag string
	var tagsFlag string
	var excludeTagsFlag string
	var historyFlag bool
	var historyLimitFlag int

	cmd := &cobra.Command{
		Use:   "recap",
		Short: "Generate an AI recap of recent worklog entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if historyFlag {
				return showRecapHistory(cmd, historyLimitFlag)
			}

			if sinceFlag != "" && (fromFlag != "" || toFlag != "") {
				return errors.New("--since cannot be combined with --from or --to")
			}

			client, err := ctx.requireAuth(cmd.Context())
			if err != nil {
				return err
			}

			fromISO, toISO, err := resolveRecapRange(fromFlag, toFlag, sinceFlag, time.Now().UTC())
			if err != nil {
				return err
			}

			identifiers := splitCSV(projectFlag)
			projectIDs, err := resolveRecapProjects(cmd, client, identifiers)
			if err != nil {
				return err
			}

			tags := splitCSV(tagsFlag)
			excludeTags := splitCSV(excludeTagsFlag)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Generating recap%s\n", buildFilterDescription(fromISO, toISO, sinceFlag, tags, excludeTags, identifiers))

			job, err := client.SubmitRecap(cmd.Context(), api.RecapRequest{
				From:        datePart(fromISO),
				To:          datePart(toISO),
				ProjectIDs:  projectIDs,
				Tags:        tags,
				ExcludeTags: excludeTags,
			})
			if err != nil {
				return describeSubmitError(err)
			}

			status, err := awaitRecap(cmd.Context(), ctx, client, job)
			if err != nil {
				return describeCompletionError(err)
			}

			printRecapResult(out, status)
			recordRecapHistory(ctx, job.RecapID, fromISO, toISO, status)
			return nil
		},
	}

	cmd.Flags().StringVar(&fromFlag, "from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toFlag, "to", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&sinceFlag, "since", "", "Relative range, e.g. 1d, 2w3d, yesterday, last-week")
	cmd.Flags().StringVarP(&projectFlag, "project", "p", "", "Comma separated project identifiers")
	cmd.Flags().StringVarP(&tagsFlag, "tags", "t", "", "Comma separated tags to include")
	cmd.Flags().StringVar(&excludeTagsFlag, "exclude-tags", "", "Comma separated tags to exclude")
	cmd.Flags().BoolVar(&historyFlag, "history", false, "Show previously generated recaps")
	cmd.Flags().IntVar(&historyLimitFlag, "limit", 10, "Number of history rows to show")
	return cmd
}

// resolveRecapRange turns the from/to/since flags into ISO8601 instants.
// With no flags the range is start of today through now.
func resolveRecapRange(from, to, since string, now time.Time) (string, string, error) {
	if since != "" {
		fromISO, err := duration.ParseSince(since, now)
		if err != nil {
			return "", "", err
		}
		return fromISO, now.Format("2006-01-02T15:04:05Z"), nil
	}
	if from == "" && to == "" {
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		return start.Format("2006-01-02T15:04:05Z"), now.Format("2006-01-02T15:04:05Z"), nil
	}
	return strings.TrimSpace(from), strings.TrimSpace(to), nil
}

// datePart strips the time portion of an ISO timestamp; the recap API takes
// plain dates and expands them itself.
func datePart(iso string) string {
	if idx := strings.IndexByte(iso, 'T'); idx > 0 {
		return iso[:idx]
	}
	return iso
}

func resolveRecapProjects(cmd *cobra.Command, client *api.Client, identifiers []string) ([]string, error) {
	if len(identifiers) == 0 {
		return nil, nil
	}
	projects, err := client.FetchProjects(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	ids := make([]string, 0, len(identifiers))
	for _, identifier := range identifiers {
		if project, ok := findProject(projects, identifier); ok {
			ids = append(ids, project.ID)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Warning: no project found with identifier %q\n", identifier)
	}
	return ids, nil
}

// awaitRecap resolves the submitted job to a completed status snapshot: a
// cache hit is fetched directly, a processing job goes through the completion
// coordinator with a spinner for liveness.
func awaitRecap(runCtx context.Context, ctx *commandContext, client *api.Client, job *api.RecapJob) (*api.RecapStatus, error) {
	switch job.Status {
	case api.RecapStatusCompleted:
		if job.PollURL == "" {
			return nil, errors.New("recap completed but no poll URL was provided")
		}
		return recap.FetchCompleted(runCtx, client, job.RecapID)
	case api.RecapStatusProcessing:
		fmt.Fprintln(os.Stdout, "Generating your recap...")
		coordinator := recap.NewCoordinator(client, *job, recap.Options{
			Indicator: spinner.New(os.Stdout),
			Logger:    ctx.logger(),
		})
		return coordinator.Run(runCtx)
	default:
		return nil, fmt.Errorf("unexpected recap status %q", job.Status)
	}
}

func describeSubmitError(err error) error {
	switch {
	case api.PlanRestricted(err):
		return errors.New("the recap feature is not available on your current plan; upgrade to access AI summaries")
	case errors.Is(err, api.ErrValidation):
		return fmt.Errorf("no worklog entries found for the specified filters\n\nTry:\n  - expanding the date range\n  - removing project or tag filters\n  - 'accomplish logs' to see available entries\n\nserver said: %v", err)
	case errors.Is(err, api.ErrRateLimited):
		return errors.New("you've reached your recap generation limit for this billing cycle; limits reset monthly")
	default:
		return fmt.Errorf("generate recap: %w", err)
	}
}

func describeCompletionError(err error) error {
	switch {
	case errors.Is(err, recap.ErrJobFailed):
		return errors.New("recap generation failed; please try again")
	case errors.Is(err, context.Canceled):
		return err
	default:
		return fmt.Errorf("recap did not complete: %w", err)
	}
}

// recordRecapHistory stores the finished recap locally, best effort.
func recordRecapHistory(ctx *commandContext, recapID, fromISO, toISO string, status *api.RecapStatus) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return
	}
	path, err := history.DefaultPath()
	if err != nil {
		ctx.logger().Debug("history path unavailable", logging.Error(err))
		return
	}
	store, err := history.Open(path)
	if err != nil {
		ctx.logger().Debug("history store unavailable", logging.Error(err))
		return
	}
	defer store.Close()

	entry := history.Entry{
		RecapID: recapID,
		Profile: cfg.Profile,
		From:    fromISO,
		To:      toISO,
	}
	if status.Content != nil {
		entry.Content = *status.Content
	}
	if status.Metadata != nil {
		entry.EntryCount = status.Metadata.EntryCount
		entry.Projects = strings.Join(status.Metadata.Projects, ", ")
		entry.Tags = strings.Join(status.Metadata.Tags, ", ")
	}
	if _, err := store.Record(context.Background(), entry); err != nil {
		ctx.logger().Debug("recap not recorded to history", logging.Error(err))
	}
}

func showRecapHistory(cmd *cobra.Command, limit int) error {
	path, err := history.DefaultPath()
	if err != nil {
		return err
	}
	store, err := history.Open(path)
	if err != nil {
		return fmt.Errorf("open recap history: %w", err)
	}
	defer store.Close()

	entries, err := store.List(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("read recap history: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No recaps recorded yet.")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderHistoryTable(entries))
	return nil
}
