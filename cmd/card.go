package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jinzhu/now"
	"github.com/spf13/cobra"

	"github.com/abhisek/tutor/internal/config"
	"github.com/abhisek/tutor/internal/importer"
	"github.com/abhisek/tutor/internal/reminder"
	"github.com/abhisek/tutor/internal/spacedrep"
	"github.com/abhisek/tutor/internal/store"
)

var cardCmd = &cobra.Command{
	Use:   "card",
	Short: "Manage and review flashcards",
}

var cardCreateCmd = &cobra.Command{
	Use:   "create <topic> <question> <answer>",
	Short: "Create a flashcard, due immediately",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		tags, _ := cmd.Flags().GetStringSlice("tag")
		return withScheduler(cmd, func(s *spacedrep.Scheduler, _ *config.Config) error {
			return printJSON(cmd, s.CreateCard(cmd.Context(), args[0], args[1], args[2], tags))
		})
	},
}

var cardReviewCmd = &cobra.Command{
	Use:   "review <topic> <card-id> <quality>",
	Short: "Record a review graded 0 (blackout) to 5 (perfect)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		quality, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid quality %q: %w", args[2], err)
		}
		return withScheduler(cmd, func(s *spacedrep.Scheduler, _ *config.Config) error {
			res, err := s.ReviewCard(cmd.Context(), args[0], args[1], quality)
			if err != nil {
				return err
			}
			return printResult(cmd, res, "card "+args[1])
		})
	},
}

var cardDueCmd = &cobra.Command{
	Use:   "due <topic>",
	Short: "List cards due for review, most overdue first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		today, _ := cmd.Flags().GetBool("today")
		return withScheduler(cmd, func(s *spacedrep.Scheduler, _ *config.Config) error {
			if today {
				return printJSON(cmd, s.GetDueCardsBy(args[0], now.EndOfDay().UTC()))
			}
			return printJSON(cmd, s.GetDueCards(args[0]))
		})
	},
}

var cardListCmd = &cobra.Command{
	Use:   "list <topic>",
	Short: "List every card in a topic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withScheduler(cmd, func(s *spacedrep.Scheduler, _ *config.Config) error {
			return printJSON(cmd, s.Cards(args[0]))
		})
	},
}

var cardStatsCmd = &cobra.Command{
	Use:   "stats <topic>",
	Short: "Show deck statistics for a topic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withScheduler(cmd, func(s *spacedrep.Scheduler, _ *config.Config) error {
			return printResult(cmd, s.GetStats(args[0]), "topic "+args[0])
		})
	},
}

var cardImportCmd = &cobra.Command{
	Use:   "import <topic> <file>",
	Short: "Import flashcards from an .xlsx or .csv file",
	Long: `Import flashcards from a spreadsheet. By default column A holds the
question, B the answer and C a comma-separated tag list; the first row
is a header.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := importer.DefaultConfig(args[1], args[0])
		cfg.SheetName, _ = cmd.Flags().GetString("sheet")
		cfg.QuestionColumn, _ = cmd.Flags().GetString("question-col")
		cfg.AnswerColumn, _ = cmd.Flags().GetString("answer-col")
		cfg.TagsColumn, _ = cmd.Flags().GetString("tags-col")
		noHeader, _ := cmd.Flags().GetBool("no-header")
		cfg.SkipHeader = !noHeader

		return withScheduler(cmd, func(s *spacedrep.Scheduler, _ *config.Config) error {
			res, err := importer.Import(cmd.Context(), s, cfg)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		})
	},
}

var cardExportCmd = &cobra.Command{
	Use:   "export <topic> <file.xlsx>",
	Short: "Export a topic's flashcards to a spreadsheet",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withScheduler(cmd, func(s *spacedrep.Scheduler, _ *config.Config) error {
			cards := s.Cards(args[0])
			if err := importer.Export(args[1], cards); err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{"file": args[1], "exported": len(cards)})
		})
	},
}

var cardWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print a reminder whenever cards are due, until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kv, closer, cfg, err := openKV(cmd)
		if err != nil {
			return err
		}
		defer closer.Close()

		interval := cfg.ReminderInterval
		if d, _ := cmd.Flags().GetDuration("interval"); d > 0 {
			interval = d
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		notifiers := reminder.Multi{reminder.WriterNotifier{W: cmd.OutOrStdout()}}
		if cfg.WebhookURL != "" {
			notifiers = append(notifiers, reminder.NewWebhookNotifier(cfg.WebhookURL))
		}
		if cfg.AMQPURL != "" {
			pub, err := reminder.NewAMQPNotifier(cfg.AMQPURL, cfg.AMQPExchange)
			if err != nil {
				return err
			}
			defer pub.Close()
			notifiers = append(notifiers, pub)
		}

		var opts []reminder.Option
		if cfg.MetricsAddr != "" {
			metrics := reminder.NewMetrics()
			opts = append(opts, reminder.WithMetrics(metrics))
			srv := serveMetrics(cfg.MetricsAddr, metrics)
			defer srv.Close()
		}

		w := reminder.NewWatcher(liveDeck{ctx: ctx, kv: kv}, notifiers, interval, opts...)
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Stop()

		fmt.Fprintf(cmd.ErrOrStderr(), "Watching for due cards every %s (Ctrl-C to stop)\n", interval)
		<-ctx.Done()
		return nil
	},
}

// serveMetrics exposes /metrics on addr in the background.
func serveMetrics(addr string, m *reminder.Metrics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("tutor: warning: metrics server: %v", err)
		}
	}()
	return srv
}

// liveDeck reloads the decks on every count so reviews made by other
// processes are seen.
type liveDeck struct {
	ctx context.Context
	kv  store.KV
}

func (d liveDeck) DueCount() map[string]int {
	return spacedrep.NewScheduler(d.ctx, d.kv).DueCount()
}

func init() {
	cardCreateCmd.Flags().StringSlice("tag", nil, "Tags (comma-separated or repeatable)")

	cardDueCmd.Flags().Bool("today", false, "Include cards that fall due before the end of today")

	cardImportCmd.Flags().String("sheet", "", "Worksheet name (default: first sheet)")
	cardImportCmd.Flags().String("question-col", "A", "Question column")
	cardImportCmd.Flags().String("answer-col", "B", "Answer column")
	cardImportCmd.Flags().String("tags-col", "C", "Tags column (empty for none)")
	cardImportCmd.Flags().Bool("no-header", false, "First row holds a card, not a header")

	cardWatchCmd.Flags().Duration("interval", 0, "Check interval (overrides TUTOR_REMINDER_INTERVAL)")

	cardCmd.AddCommand(
		cardCreateCmd,
		cardReviewCmd,
		cardDueCmd,
		cardListCmd,
		cardStatsCmd,
		cardImportCmd,
		cardExportCmd,
		cardWatchCmd,
	)
}
