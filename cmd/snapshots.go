package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/donorpulse/internal/model"
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "Inspect stored prediction snapshots",
	Long:  "Lists the per-day prediction history for a campaign, or prunes old snapshots with --prune-before.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if before, _ := cmd.Flags().GetString("prune-before"); before != "" {
			if _, err := time.Parse("2006-01-02", before); err != nil {
				return eris.Errorf("--prune-before must be a YYYY-MM-DD date, got %q", before)
			}
			deleted, err := env.Store.DeleteSnapshotsBefore(ctx, before)
			if err != nil {
				return eris.Wrap(err, "snapshots prune")
			}
			zap.L().Info("snapshots pruned", zap.Int("deleted", deleted), zap.String("before", before))
			fmt.Printf("Deleted %d snapshots before %s.\n", deleted, before)
			return nil
		}

		campaignID, _ := cmd.Flags().GetString("campaign")
		if campaignID == "" {
			return eris.New("--campaign is required")
		}
		limit, _ := cmd.Flags().GetInt("limit")

		snaps, err := env.Store.ListSnapshots(ctx, clientID(cmd), campaignID, limit)
		if err != nil {
			return eris.Wrap(err, "snapshots")
		}

		if len(snaps) == 0 {
			fmt.Fprintln(os.Stderr, "No snapshots found.")
			return nil
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(snaps)
		}

		formatSnapshots(os.Stdout, snaps)
		return nil
	},
}

func init() {
	snapshotsCmd.Flags().String("campaign", "", "campaign ID to list history for")
	snapshotsCmd.Flags().String("client", "", "client ID filter (default from config)")
	snapshotsCmd.Flags().Int("limit", 30, "max number of snapshots to display")
	snapshotsCmd.Flags().String("prune-before", "", "delete snapshots older than this YYYY-MM-DD day")
	snapshotsCmd.Flags().Bool("json", false, "output JSON instead of a table")
	rootCmd.AddCommand(snapshotsCmd)
}

// formatSnapshots writes the newest-first snapshot history to w.
func formatSnapshots(out io.Writer, snaps []model.Snapshot) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "DAY\tPROGRESS\tPROBABILITY\tREALISTIC\tRISKS\tSAVED")
	_, _ = fmt.Fprintln(w, "---\t--------\t-----------\t---------\t-----\t-----")

	for _, s := range snaps {
		p := s.Prediction
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			s.AsOfDay,
			percent(p.Metrics.ProgressPercentage),
			percent(p.SuccessProbability),
			money(p.Realistic.ProjectedTotal),
			len(p.RiskFactors),
			s.CreatedAt.Format(time.RFC3339),
		)
	}
	_ = w.Flush()
}
