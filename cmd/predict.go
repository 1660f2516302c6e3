package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/donorpulse/internal/forecast"
	"github.com/sells-group/donorpulse/internal/model"
)

// predictConcurrency bounds how many campaigns --all forecasts at once.
const predictConcurrency = 4

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Run the forecast engine for a campaign",
	Long:  "Computes metrics, the three scenario projections, success probability, risks, and recommendations for one campaign, or for every campaign with --all.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		campaignID, _ := cmd.Flags().GetString("campaign")
		all, _ := cmd.Flags().GetBool("all")
		if campaignID == "" && !all {
			return eris.New("either --campaign or --all is required")
		}

		env, err := initApp(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		client := clientID(cmd)
		campaigns, err := env.Source.ListCampaigns(ctx, client)
		if err != nil {
			return eris.Wrap(err, "predict: list campaigns")
		}

		if all {
			return predictAll(ctx, cmd, env, client, campaigns)
		}

		var target *model.Campaign
		for i := range campaigns {
			if campaigns[i].ID == campaignID {
				target = &campaigns[i]
				break
			}
		}
		if target == nil {
			return eris.Errorf("campaign %s not found", campaignID)
		}

		now := time.Now()
		pred, err := forecast.ComputePrediction(*target, now)
		if err != nil {
			return eris.Wrap(err, "predict")
		}

		if save, _ := cmd.Flags().GetBool("save"); save {
			if err := saveSnapshot(ctx, env, client, pred, now); err != nil {
				return err
			}
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(pred)
		}

		formatPrediction(os.Stdout, pred)
		return nil
	},
}

func init() {
	predictCmd.Flags().String("campaign", "", "campaign ID to forecast")
	predictCmd.Flags().Bool("all", false, "forecast every campaign")
	predictCmd.Flags().String("client", "", "client ID filter (default from config)")
	predictCmd.Flags().Bool("save", false, "store the day's prediction snapshot")
	predictCmd.Flags().Bool("json", false, "output JSON instead of a report")
	rootCmd.AddCommand(predictCmd)
}

// predictAll forecasts every campaign concurrently and prints one summary
// row per campaign. Campaigns the engine rejects are logged and skipped.
func predictAll(ctx context.Context, cmd *cobra.Command, env *appEnv, client string, campaigns []model.Campaign) error {
	now := time.Now()
	preds := make([]*model.PredictionModel, len(campaigns))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(predictConcurrency)
	for i, c := range campaigns {
		g.Go(func() error {
			pred, err := forecast.ComputePrediction(c, now)
			if err != nil {
				zap.L().Warn("skipping campaign", zap.String("campaign", c.ID), zap.Error(err))
				return nil
			}
			preds[i] = pred
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "predict all")
	}

	save, _ := cmd.Flags().GetBool("save")
	kept := make([]*model.PredictionModel, 0, len(preds))
	for _, pred := range preds {
		if pred == nil {
			continue
		}
		kept = append(kept, pred)
		if save {
			if err := saveSnapshot(ctx, env, client, pred, now); err != nil {
				return err
			}
		}
	}

	if len(kept) == 0 {
		fmt.Fprintln(os.Stderr, "No campaigns to forecast.")
		return nil
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(kept)
	}

	formatPredictionTable(os.Stdout, kept)
	return nil
}

func saveSnapshot(ctx context.Context, env *appEnv, client string, pred *model.PredictionModel, now time.Time) error {
	snap := &model.Snapshot{
		ClientID:   client,
		CampaignID: pred.Campaign.ID,
		AsOfDay:    model.DayBucket(now),
		Prediction: *pred,
	}
	if err := env.Store.PutSnapshot(ctx, snap); err != nil {
		return eris.Wrapf(err, "save snapshot for %s", pred.Campaign.ID)
	}
	zap.L().Info("snapshot saved",
		zap.String("campaign", pred.Campaign.ID),
		zap.String("day", snap.AsOfDay),
	)
	return nil
}

// formatPrediction writes the full single-campaign report to w.
func formatPrediction(out io.Writer, p *model.PredictionModel) {
	c := p.Campaign
	m := p.Metrics

	fmt.Fprintf(out, "%s (%s)\n", c.Name, c.ID)
	fmt.Fprintf(out, "%s raised of %s goal (%s), day %d of %d\n\n",
		money(c.Raised), money(c.Goal), percent(m.ProgressPercentage), m.DaysElapsed, m.TotalDays)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Daily velocity\t%s/day\n", money(m.DailyVelocity))
	_, _ = fmt.Fprintf(w, "Efficiency\t%.2f\n", m.Efficiency)
	_, _ = fmt.Fprintf(w, "Donor growth\t%.1f/day\n", m.DonorGrowthRate)
	_, _ = fmt.Fprintf(w, "Days remaining\t%d\n", m.DaysRemaining)
	_, _ = fmt.Fprintf(w, "Success probability\t%s\n", percent(p.SuccessProbability))
	_ = w.Flush()

	fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SCENARIO\tPROJECTED\tCONFIDENCE\tCOMPLETION")
	_, _ = fmt.Fprintln(w, "--------\t---------\t----------\t----------")
	for _, f := range []model.ForecastResult{p.Conservative, p.Realistic, p.Optimistic} {
		completion := "-"
		if f.ProjectedCompletionDate != nil {
			completion = f.ProjectedCompletionDate.Format("2006-01-02")
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			f.Scenario, money(f.ProjectedTotal), percent(f.ConfidenceLevel), completion)
	}
	_ = w.Flush()

	if len(p.RiskFactors) > 0 {
		fmt.Fprintln(out, "\nRisks:")
		for _, r := range p.RiskFactors {
			fmt.Fprintf(out, "  [%s] %s: %s\n", r.Impact, r.Factor, r.Description)
		}
	}

	if len(p.Recommendations) > 0 {
		fmt.Fprintln(out, "\nRecommendations:")
		for i, rec := range p.Recommendations {
			fmt.Fprintf(out, "  %d. %s\n", i+1, rec)
		}
	}

	if p.CostAnalysis != nil {
		ca := p.CostAnalysis
		fmt.Fprintln(out, "\nCost analysis:")
		fmt.Fprintf(out, "  Marketing spend %s, %s per dollar raised, %s per donor, projected ROI %s\n",
			money(ca.MarketingCost), money(ca.CostPerDollarRaised), money(ca.CostPerDonor), percent(ca.ProjectedROI))
	}
}

// formatPredictionTable writes one summary row per campaign to w.
func formatPredictionTable(out io.Writer, preds []*model.PredictionModel) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tPROGRESS\tPROBABILITY\tREALISTIC\tRISKS")
	_, _ = fmt.Fprintln(w, "--\t----\t--------\t-----------\t---------\t-----")

	for _, p := range preds {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
			p.Campaign.ID,
			truncate(p.Campaign.Name, 32),
			percent(p.Metrics.ProgressPercentage),
			percent(p.SuccessProbability),
			money(p.Realistic.ProjectedTotal),
			len(p.RiskFactors),
		)
	}
	_ = w.Flush()
}
