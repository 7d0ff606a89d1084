package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/kiranshivaraju/logtrends/internal/analytics"
	"github.com/kiranshivaraju/logtrends/internal/config"
	"github.com/kiranshivaraju/logtrends/internal/store"
	"github.com/kiranshivaraju/logtrends/pkg/models"
	"github.com/spf13/cobra"
)

// openService wires a Service onto a fresh connection pool. The returned
// close func releases the pool.
var openService = func(ctx context.Context) (analyticsQueries, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	opts, err := analytics.OptionsFromConfig(cfg.Analytics)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("configure analytics: %w", err)
	}
	return analytics.NewService(store.NewPostgresStore(pool), opts...), pool.Close, nil
}

// analyticsQueries is the subset of the analytics service the CLI drives.
type analyticsQueries interface {
	TrendingLabels(ctx context.Context, hours float64) ([]models.TrendingLabel, error)
	ErrorGroups(ctx context.Context, hours float64, page store.Page) (*analytics.GroupPage, error)
	GroupDetail(ctx context.Context, hours float64, id int64) (*models.GroupDetail, error)
	GroupLogs(ctx context.Context, hours float64, id int64, page store.Page) (*analytics.LogPage, error)
	Histogram(ctx context.Context, hours float64) (*models.Histogram, error)
	GroupHistogram(ctx context.Context, hours float64, id int64) (*models.Histogram, error)
	LabelHistogram(ctx context.Context, hours float64) (*models.LabelHistogram, error)
}

// run opens the service, calls query and prints its result as indented JSON.
func run(cmd *cobra.Command, query func(ctx context.Context, svc analyticsQueries) (any, error)) error {
	ctx := cmd.Context()
	svc, closeFn, err := openService(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	result, err := query(ctx, svc)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), result)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("group id must be an integer, got %q", arg)
	}
	return id, nil
}

func pageFlags(cmd *cobra.Command, page *store.Page) {
	cmd.Flags().IntVar(&page.Number, "page", 1, "page number, starting at 1")
	cmd.Flags().IntVar(&page.Limit, "limit", 20, "page size, at most 100")
}

func trendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trending",
		Short: "List labels active in the window with their significance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, svc analyticsQueries) (any, error) {
				return svc.TrendingLabels(ctx, hours)
			})
		},
	}
}

func groupsCmd() *cobra.Command {
	var page store.Page

	cmd := &cobra.Command{
		Use:   "groups",
		Short: "List error groups with records in the window, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, svc analyticsQueries) (any, error) {
				return svc.ErrorGroups(ctx, hours, page)
			})
		},
	}
	pageFlags(cmd, &page)
	return cmd
}

func groupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "group <id>",
		Short: "Show one error group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return run(cmd, func(ctx context.Context, svc analyticsQueries) (any, error) {
				return svc.GroupDetail(ctx, hours, id)
			})
		},
	}
}

func groupLogsCmd() *cobra.Command {
	var page store.Page

	cmd := &cobra.Command{
		Use:   "group-logs <id>",
		Short: "Page through the raw records of one error group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return run(cmd, func(ctx context.Context, svc analyticsQueries) (any, error) {
				return svc.GroupLogs(ctx, hours, id, page)
			})
		},
	}
	pageFlags(cmd, &page)
	return cmd
}

func chartCmd() *cobra.Command {
	var (
		groupID int64
		byLabel bool
	)

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Print a gap-filled 30-minute histogram",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if byLabel && cmd.Flags().Changed("group") {
				return fmt.Errorf("--group and --by-label are mutually exclusive")
			}
			return run(cmd, func(ctx context.Context, svc analyticsQueries) (any, error) {
				switch {
				case byLabel:
					return svc.LabelHistogram(ctx, hours)
				case cmd.Flags().Changed("group"):
					return svc.GroupHistogram(ctx, hours, groupID)
				default:
					return svc.Histogram(ctx, hours)
				}
			})
		},
	}
	cmd.Flags().Int64Var(&groupID, "group", 0, "restrict the chart to one error group")
	cmd.Flags().BoolVar(&byLabel, "by-label", false, "one series per label")
	return cmd
}
