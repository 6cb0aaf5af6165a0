package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/tutor/internal/config"
	"github.com/abhisek/tutor/internal/lessons"
	"github.com/abhisek/tutor/internal/spacedrep"
	"github.com/abhisek/tutor/internal/store"
)

var historyKeys = map[string]string{
	"progress":   lessons.ProgressKey,
	"lessons":    lessons.LessonsKey,
	"flashcards": spacedrep.FlashcardsKey,
}

var historyCmd = &cobra.Command{
	Use:   "history <progress|lessons|flashcards>",
	Short: "Show saved revisions of a record (SQLite store only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, ok := historyKeys[args[0]]
		if !ok {
			return fmt.Errorf("unknown record %q: must be progress, lessons or flashcards", args[0])
		}
		limit, _ := cmd.Flags().GetInt("limit")
		keep, _ := cmd.Flags().GetInt("prune")

		kv, closer, cfg, err := openKV(cmd)
		if err != nil {
			return err
		}
		defer closer.Close()

		st, ok := kv.(*store.Store)
		if !ok {
			return fmt.Errorf("history needs the %s store, have %s", config.StoreSQLite, cfg.Store)
		}

		ctx := cmd.Context()
		if cmd.Flags().Changed("prune") {
			if keep < 0 {
				return fmt.Errorf("--prune must be >= 0")
			}
			if err := st.Prune(ctx, key, keep); err != nil {
				return err
			}
		}

		revs, err := st.History(ctx, key, limit)
		if err != nil {
			return err
		}

		type revisionView struct {
			ID      int64           `json:"id"`
			SavedAt time.Time       `json:"savedAt"`
			Size    int             `json:"size"`
			Value   json.RawMessage `json:"value,omitempty"`
		}
		full, _ := cmd.Flags().GetBool("full")
		out := make([]revisionView, 0, len(revs))
		for _, r := range revs {
			v := revisionView{ID: r.ID, SavedAt: r.SavedAt, Size: len(r.Value)}
			if full && json.Valid(r.Value) {
				v.Value = r.Value
			}
			out = append(out, v)
		}
		return printJSON(cmd, out)
	},
}

func init() {
	historyCmd.Flags().Int("limit", 10, "Number of revisions to show (0 for all)")
	historyCmd.Flags().Int("prune", 0, "Delete all but the N most recent revisions first")
	historyCmd.Flags().Bool("full", false, "Include each revision's value")
}
