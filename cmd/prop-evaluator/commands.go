package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/yourusername/prop-evaluator/internal/access"
	"github.com/yourusername/prop-evaluator/internal/logger"
	"github.com/yourusername/prop-evaluator/internal/models"
	"github.com/yourusername/prop-evaluator/internal/scheduler"
	"github.com/yourusername/prop-evaluator/internal/server"
	"github.com/yourusername/prop-evaluator/internal/stream"
	"github.com/yourusername/prop-evaluator/internal/tracing"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func newEvaluateCmd() *cobra.Command {
	var (
		sport, subject, line, opponent, start, subjectID string
		price, providerID                                 int
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a single proposition and print the result as JSON",
		Example: `  prop-evaluator evaluate --sport MLB --subject "Gerrit Cole" --line "Strikeouts 6.5"
  prop-evaluator evaluate --sport NBA --subject "Nikola Jokic" --line "PRA 48.5" --price -115`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := models.EvaluationRequest{
				Sport:         sport,
				SubjectName:   subject,
				StatisticLine: line,
				Opponent:      opponent,
			}
			if cmd.Flags().Changed("price") {
				req.CurrentPrice = models.Some(price)
			}
			if cmd.Flags().Changed("subject-id") {
				req.SubjectID = models.Some(providerID)
			}
			if start != "" {
				t, err := time.Parse(time.RFC3339, start)
				if err != nil {
					return fmt.Errorf("invalid --start: %w", err)
				}
				req.EventStartTime = models.At(t)
			}

			ctx := access.WithSubject(cmd.Context(), access.Subject{ID: subjectID, Tier: "cli"})
			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			result := a.evaluator.Evaluate(ctx, req)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringVar(&sport, "sport", "", "Sport: NBA, WNBA, MLB or NFL")
	cmd.Flags().StringVar(&subject, "subject", "", "Player or team name")
	cmd.Flags().StringVar(&line, "line", "", `Statistic line, e.g. "Points 23.5"`)
	cmd.Flags().StringVar(&opponent, "opponent", "", "Opponent name")
	cmd.Flags().IntVar(&price, "price", 0, "Current American price for the over or subject side")
	cmd.Flags().IntVar(&providerID, "subject-id", 0, "Provider identifier for the subject, when known")
	cmd.Flags().StringVar(&start, "start", "", "Event start time (RFC3339)")
	cmd.Flags().StringVar(&subjectID, "as", "", "Caller id recorded by the analytics and history sinks")
	_ = cmd.MarkFlagRequired("sport")
	_ = cmd.MarkFlagRequired("subject")
	_ = cmd.MarkFlagRequired("line")

	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			hub := stream.NewHub(nil, log)
			defer hub.Close()

			a, err := buildApp(ctx, hub)
			if err != nil {
				return err
			}
			defer a.Close()

			sched := scheduler.NewScheduler(a.cache, log)
			if err := sched.ScheduleCacheSweep(cfg.Cache.SweepSchedule); err != nil {
				return err
			}
			if err := sched.Start(); err != nil {
				return err
			}
			defer sched.Stop()

			var quota access.QuotaChecker = access.AllowAll{}
			if len(cfg.Server.QuotaPerMinute) > 0 {
				quota = access.NewTokenBucket(access.TierLimits(cfg.Server.QuotaPerMinute), 10*time.Minute, log)
			}

			tracer, err := tracing.Initialize(tracing.Config{
				ServiceName:  cfg.App.Name,
				Enabled:      cfg.Tracing.Enabled,
				SamplingRate: cfg.Tracing.SamplingRate,
				DaemonAddr:   cfg.Tracing.DaemonAddr,
			}, log)
			if err != nil {
				return err
			}

			deps := server.Deps{
				Evaluator: a.evaluator,
				Quota:     quota,
				Stream:    hub,
				Tracer:    tracer,
				Logger:    log,
			}
			if a.db != nil {
				deps.DB = a.db
			}

			srv := server.New(server.Config{
				ServiceName:    cfg.App.Name,
				Version:        Version,
				Port:           cfg.Server.Port,
				AllowedOrigins: cfg.Server.AllowedOrigins,
				ReadTimeout:    time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
				WriteTimeout:   time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
				MetricsPath:    cfg.Metrics.Path,
			}, deps)
			if err := srv.Start(ctx); err != nil {
				return err
			}

			<-ctx.Done()
			log.Info("Shutting down")
			return srv.Shutdown()
		},
	}
}

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the response cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "sweep",
		Short: "Remove expired entries from the secondary cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCache(cmd.Context(), cfg.Cache)
			if err != nil {
				return err
			}
			defer c.Close()

			removed := scheduler.NewScheduler(c, log).RunSweep(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired entries\n", removed)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Flush every cache tier",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			c, err := openCache(ctx, cfg.Cache)
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.Clear(ctx); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
			logger.NewAuditLogger(log).LogCacheCleared("operator")
			fmt.Fprintln(cmd.OutOrStdout(), "cache cleared")
			return nil
		},
	})

	return cmd
}
