package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/agileboard/internal/engine/service"
	"github.com/go-arcade/agileboard/internal/pkg/identity"
	"github.com/go-arcade/agileboard/pkg/cron"
	"github.com/go-arcade/agileboard/pkg/log"
	"github.com/spf13/cobra"
)

var (
	attentionAs    string
	attentionEvery string
	attentionJSON  bool
)

var attentionCmd = &cobra.Command{
	Use:   "attention",
	Short: "List open projects at medium or high risk",
	Long: "List the active and on-hold projects visible to --as whose risk level is medium or high.\n" +
		"With --every the report is repeated on a cron schedule until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if attentionAs == "" {
			return fmt.Errorf("--as is required")
		}
		if attentionEvery != "" {
			if err := cron.ParseSpec(attentionEvery); err != nil {
				return err
			}
		}

		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		user, err := e.lookupUser(ctx, attentionAs)
		if err != nil {
			return err
		}
		current := service.CurrentUser{UserId: user.UserId, Email: user.Email}
		lifecycle := service.NewServices(e.repos, nil, identity.Conf{}, nil, nil).Lifecycle
		out := cmd.OutOrStdout()

		report := func(ctx context.Context) error {
			projects, err := lifecycle.RequiringAttention(ctx, current)
			if err != nil {
				return err
			}
			return writeAttention(out, projects)
		}

		if attentionEvery == "" {
			return report(ctx)
		}
		return runScheduled(attentionEvery, func() {
			runCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := report(runCtx); err != nil {
				log.Errorw("attention report failed", "error", err)
			}
		})
	},
}

func init() {
	attentionCmd.Flags().StringVar(&attentionAs, "as", "", "user id or email whose visibility is used")
	attentionCmd.Flags().StringVar(&attentionEvery, "every", "", "cron spec, e.g. \"@every 1h\" or \"0 9 * * MON-FRI\"")
	attentionCmd.Flags().BoolVar(&attentionJSON, "json", false, "print JSON instead of a table")
}

func runScheduled(spec string, fn func()) error {
	cron.Init(cron.WithSkipIfRunning())
	if err := cron.AddFunc(spec, fn, "attention-report"); err != nil {
		return err
	}
	cron.Start()
	log.Infow("attention report scheduled", "spec", spec)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	return cron.Stop(30 * time.Second)
}

func writeAttention(out io.Writer, projects []service.ProjectHealth) error {
	if attentionJSON {
		data, err := sonic.ConfigStd.MarshalIndent(projects, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PROJECT\tNAME\tSTATUS\tRISK\tCOMPLETION\tDAYS LEFT\tOVERDUE SPRINTS\tOVERDUE MILESTONES")
	for _, p := range projects {
		days := "-"
		if p.DaysRemaining != nil {
			days = fmt.Sprintf("%d", *p.DaysRemaining)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.0f%%\t%s\t%d\t%d\n",
			p.ProjectId, p.Name, p.Status, p.RiskLevel, p.Completion.Completion, days, p.OverdueSprints, len(p.OverdueMilestones))
	}
	return w.Flush()
}
