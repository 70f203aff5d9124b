package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/shanehull/newsgrid/internal/ai"
	"github.com/shanehull/newsgrid/internal/fetch"
	"github.com/shanehull/newsgrid/internal/metrics"
	"github.com/shanehull/newsgrid/internal/notify"
	"github.com/shanehull/newsgrid/internal/pipeline"
	"github.com/shanehull/newsgrid/internal/registry"
	"github.com/shanehull/newsgrid/internal/types"
)

const defaultFeedsFile = "feeds.toml"

func feedsFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "feeds",
		Value:   defaultFeedsFile,
		Usage:   "Path to the TOML feed registry (built-in registry when the file is missing)",
		EnvVars: []string{"NEWSGRID_FEEDS"},
	}
}

func newsFileFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "news-file",
		Value:   "news.html",
		Usage:   "Page whose resource grid is rewritten",
		EnvVars: []string{"NEWSGRID_NEWS_FILE"},
	}
}

func resourcesFileFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "resources-file",
		Value:   "resources.html",
		Usage:   "Additional page whose links are never re-added",
		EnvVars: []string{"NEWSGRID_RESOURCES_FILE"},
	}
}

// loadSources reads the registry at path, falling back to the embedded registry
// when path is empty or the file does not exist yet.
func loadSources(path string) ([]types.FeedSource, error) {
	if path == "" {
		return registry.Default()
	}
	sources, err := registry.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Debugf("%s not found; using the built-in feed registry", path)
		return registry.Default()
	}
	return sources, err
}

func updateCmd() *cli.Command {
	return &cli.Command{
		Name:  "update",
		Usage: "Rewrite the news grid from the feed registry",
		Description: `Fetches all registered feeds and replaces the contents of the
<div class="resource-grid"> container in the news page with the newest relevant
articles. The page is only written once every step has succeeded.

Exits non-zero when no relevant articles are found, when the news page is missing, or
when its grid container cannot be located.`,
		Flags: []cli.Flag{
			newsFileFlag(),
			resourcesFileFlag(),
			feedsFlag(),
			&cli.IntFlag{
				Name:    "max-articles",
				Value:   120,
				Usage:   "Maximum number of articles written to the grid",
				EnvVars: []string{"NEWSGRID_MAX_ARTICLES"},
			},
			&cli.IntFlag{
				Name:    "min-sources",
				Value:   10,
				Usage:   "Warn when fewer distinct sources than this are selected",
				EnvVars: []string{"NEWSGRID_MIN_SOURCES"},
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Value:   fetch.DefaultTimeout,
				Usage:   "Per-feed fetch timeout",
				EnvVars: []string{"NEWSGRID_TIMEOUT"},
			},
			&cli.IntFlag{
				Name:    "workers",
				Value:   1,
				Usage:   "Feeds fetched concurrently",
				EnvVars: []string{"NEWSGRID_WORKERS"},
			},
			&cli.BoolFlag{
				Name:    "dedupe-within-run",
				Usage:   "Also drop stories already collected from another feed in the same run",
				EnvVars: []string{"NEWSGRID_DEDUPE_WITHIN_RUN"},
			},
			&cli.BoolFlag{
				Name:    "dry-run",
				Usage:   "Report what would be written without touching the page",
				EnvVars: []string{"NEWSGRID_DRY_RUN"},
			},
			&cli.StringFlag{
				Name:    "metrics-file",
				Usage:   "Write run metrics in Prometheus textfile format to this path",
				EnvVars: []string{"NEWSGRID_METRICS_FILE"},
			},
			&cli.StringFlag{
				Name:    "smtp-server",
				Value:   "smtp.gmail.com",
				Usage:   "SMTP server address",
				EnvVars: []string{"NEWSGRID_SMTP_SERVER"},
			},
			&cli.IntFlag{
				Name:    "smtp-port",
				Value:   587,
				Usage:   "SMTP server port",
				EnvVars: []string{"NEWSGRID_SMTP_PORT"},
			},
			&cli.StringFlag{
				Name:    "smtp-user",
				Usage:   "SMTP username (email address)",
				EnvVars: []string{"NEWSGRID_SMTP_USER"},
			},
			&cli.StringFlag{
				Name:    "smtp-pass",
				Usage:   "SMTP password or App Password",
				EnvVars: []string{"NEWSGRID_SMTP_PASS"},
			},
			&cli.StringFlag{
				Name:    "to-email",
				Usage:   "Recipient of the run report",
				EnvVars: []string{"NEWSGRID_TO_EMAIL"},
			},
			&cli.StringFlag{
				Name:    "from-email",
				Usage:   "Sender email address (default: smtp-user)",
				EnvVars: []string{"NEWSGRID_FROM_EMAIL"},
			},
			&cli.StringFlag{
				Name:    "gemini-api-key",
				Usage:   "Include a Gemini digest of the selection in the report email",
				EnvVars: []string{"NEWSGRID_GEMINI_API_KEY", "GEMINI_API_KEY"},
			},
			&cli.StringFlag{
				Name:    "gemini-model",
				Value:   ai.DefaultModel,
				Usage:   "Gemini model used for the digest",
				EnvVars: []string{"NEWSGRID_GEMINI_MODEL"},
			},
		},
		Action: func(ctx *cli.Context) error {
			sources, err := loadSources(ctx.String("feeds"))
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
			}

			m := metrics.New()
			p, err := pipeline.New(pipeline.Config{
				Sources:         sources,
				NewsFile:        ctx.String("news-file"),
				ResourcesFile:   ctx.String("resources-file"),
				MaxArticles:     ctx.Int("max-articles"),
				MinSources:      ctx.Int("min-sources"),
				Workers:         ctx.Int("workers"),
				DedupeWithinRun: ctx.Bool("dedupe-within-run"),
				DryRun:          ctx.Bool("dry-run"),
			}, fetch.New(ctx.Duration("timeout")), pipeline.WithMetrics(m))
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
			}

			res, runErr := p.Run(ctx.Context)
			writeMetrics(ctx.String("metrics-file"), m)
			if runErr != nil {
				return cli.Exit(fmt.Sprintf("Error: %v", runErr), 1)
			}

			report := notify.Report{
				File:      ctx.String("news-file"),
				Selection: res.Selection,
				DryRun:    !res.Written,
				Generated: time.Now(),
			}
			notify.PrintSummary(ctx.App.Writer, report)

			emailCfg := notify.EmailConfig{
				SMTPServer: ctx.String("smtp-server"),
				SMTPPort:   ctx.Int("smtp-port"),
				SMTPUser:   ctx.String("smtp-user"),
				SMTPPass:   ctx.String("smtp-pass"),
				FromEmail:  ctx.String("from-email"),
				ToEmail:    ctx.String("to-email"),
			}
			if !emailCfg.Enabled() {
				return nil
			}

			if key := ctx.String("gemini-api-key"); key != "" {
				digest, err := ai.GenerateDigest(ctx.Context, res.Selection.Entries, key, ctx.String("gemini-model"))
				if err != nil {
					log.Warnf("AI digest failed: %v", err)
				} else {
					report.Digest = digest
				}
			}

			log.Infof("Emailing run report (SMTP: %s:%d).", emailCfg.SMTPServer, emailCfg.SMTPPort)
			msg, err := notify.NewHTMLEmailRenderer().Render(report)
			if err != nil {
				log.Warnf("Failed to render run report: %v", err)
				return nil
			}
			// delivery problems are logged by the sender and never fail the run
			_ = notify.NewEmailSender(emailCfg).Send(msg)
			return nil
		},
	}
}

func writeMetrics(path string, m *metrics.Run) {
	if path == "" {
		return
	}
	if err := m.WriteFile(path); err != nil {
		log.Warnf("Metrics not written: %v", err)
	}
}
