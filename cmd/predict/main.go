// Package main provides the offline prediction CLI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/keiba-predictor/internal/config"
	"github.com/yourusername/keiba-predictor/internal/datasource"
	"github.com/yourusername/keiba-predictor/internal/logger"
	"github.com/yourusername/keiba-predictor/internal/ml"
	"github.com/yourusername/keiba-predictor/internal/models"
	"github.com/yourusername/keiba-predictor/internal/predictor"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	asJSON     bool
	useML      bool

	appLog  *logrus.Logger
	cfg     *config.Config
	service *predictor.Service
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Print raw JSON instead of formatted output")
	rootCmd.PersistentFlags().BoolVar(&useML, "ml", false, "Consult the ML service when configured")

	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "predict",
	Short: "Run race predictions from a race-card file",
	Long:  `Runs the pace, scoring and simulation engine against a race-card JSON file without a running server.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		return setup()
	},
}

var predictCmd = &cobra.Command{
	Use:   "run <race-card.json>",
	Short: "Predict the finishing order for a race card",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		card, err := datasource.LoadRaceCardFile(args[0])
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		result, err := service.Predict(ctx, card.Entries, card.Race)
		if err != nil {
			return err
		}

		if asJSON {
			return printJSON(result)
		}
		printPrediction(card, result)
		return nil
	},
}

var simulateCmd = &cobra.Command{
	Use:   "simulate <race-card.json>",
	Short: "Simulate the race over its five checkpoints",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		card, err := datasource.LoadRaceCardFile(args[0])
		if err != nil {
			return err
		}

		sim, err := service.Simulate(card.Entries, card.Race)
		if err != nil {
			return err
		}

		if asJSON {
			return printJSON(sim)
		}
		printSimulation(sim)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("keiba-predictor %s (%s)\n", Version, GitCommit)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func setup() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLog = logger.NewLoggerForEnv(cfg.App.LogLevel, cfg.App.Environment)
	appLog.SetOutput(os.Stderr)

	opts := []predictor.Option{predictor.WithModelVersion(cfg.Prediction.ModelVersion)}
	if useML && cfg.MLService.Enabled {
		opts = append(opts, predictor.WithPlaceScorer(ml.NewCachedClient(&cfg.MLService, appLog)))
	}
	service = predictor.NewService(appLog, opts...)

	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func printPrediction(card *datasource.RaceCard, result *models.PredictionResult) {
	fmt.Printf("\n%s（%s %s%dm）\n", card.Race.Name, card.Race.Venue, card.Race.CourseType, card.Race.Distance)
	fmt.Printf("モデル %s / 信頼度 %.0f%%\n\n", result.ModelVersion, result.ConfidenceScore*100)

	fmt.Println("予想順位:")
	for _, r := range result.Rankings {
		marker := " "
		if r.IsDarkHorse {
			marker = "☆"
		}
		fmt.Printf("  %2d. %s %2d %-12s スコア %.3f  勝率 %4.1f%%  複勝率 %4.1f%%\n",
			r.Rank, marker, r.HorseNumber, r.HorseName,
			r.Score, r.WinProbability*100, r.PlaceProbability*100)
	}

	if bets := result.RecommendedBets; bets != nil && bets.Trio != nil {
		fmt.Println("\n買い目:")
		fmt.Printf("  三連複軸2頭流し %v-%v  %d点\n", bets.Trio.Pivots, bets.Trio.Others, bets.Trio.Combinations)
		if bets.TrifectaMulti != nil {
			fmt.Printf("  三連単軸2頭マルチ %v-%v  %d点\n", bets.TrifectaMulti.Pivots, bets.TrifectaMulti.Others, bets.TrifectaMulti.Combinations)
		}
		fmt.Printf("  合計投資額 %s円\n", bets.TotalInvestment.Round(0))
	}

	fmt.Println("\n" + result.Reasoning)
}

func printSimulation(sim *models.RaceSimulation) {
	fmt.Printf("\n%s（%s%dm） 予想ペース: %s\n\n", sim.RaceName, sim.CourseType, sim.Distance, sim.PredictedPace)

	for _, corner := range sim.CornerPositions {
		fmt.Printf("%s:", corner.CornerName)
		for _, h := range corner.Horses {
			fmt.Printf(" %d", h.HorseNumber)
		}
		fmt.Println()
	}

	fmt.Println("\n展開シナリオ:")
	for _, sc := range sim.Scenarios {
		fmt.Printf("  %s（確率 %.0f%%）", sc.PaceLabel, sc.Probability*100)
		if len(sc.Rankings) > 0 {
			fmt.Printf(" → %d %s", sc.Rankings[0].HorseNumber, sc.Rankings[0].HorseName)
		}
		fmt.Println()
	}

	fmt.Printf("\nアニメーション %dフレーム生成済み\n", len(sim.AnimationFrames))
}
