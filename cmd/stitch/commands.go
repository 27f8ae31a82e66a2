package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"trip-stitcher/internal/core/geo"
	"trip-stitcher/internal/core/logger"
	"trip-stitcher/internal/features/itinerary/adapters"
	"trip-stitcher/internal/features/itinerary/continuity"
	"trip-stitcher/internal/features/itinerary/domain"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// tripFile is the on-disk itinerary accepted by the CLI, in YAML or JSON.
type tripFile struct {
	ID       string           `json:"id" yaml:"id"`
	Segments []domain.Segment `json:"segments" yaml:"segments"`
}

type repairOptions struct {
	file             string
	id               string
	minTransfer      time.Duration
	overlapTolerance time.Duration
	proximity        float64
	confidence       float64
	matcher          string
}

func newRootCmd() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:   "stitch",
		Short: "Repair continuity gaps in travel itineraries offline",
		Long: `stitch runs the continuity engine over an itinerary file and
prints the repaired segments and diagnostics.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Init(logger.EnvCLI, logLevel)
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log verbosity (debug, info, warn, error)")

	rootCmd.AddCommand(newRepairCmd(), newCalendarCmd())
	return rootCmd
}

func newRepairCmd() *cobra.Command {
	opts := &repairOptions{}

	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Repair an itinerary file and print the result as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := runRepair(cmd.InOrStdin(), opts)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	bindRepairFlags(cmd, opts)
	return cmd
}

func newCalendarCmd() *cobra.Command {
	opts := &repairOptions{}

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Repair an itinerary file and print it as iCalendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := runRepair(cmd.InOrStdin(), opts)
			if err != nil {
				return err
			}
			data, err := adapters.NewICalExporter(geo.NewTimezoneResolver()).Export(&domain.Itinerary{
				ID:          result.ItineraryID,
				Segments:    result.Segments,
				Diagnostics: result.Diagnostics,
				UpdatedAt:   time.Now().UTC(),
			})
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	bindRepairFlags(cmd, opts)
	return cmd
}

func bindRepairFlags(cmd *cobra.Command, opts *repairOptions) {
	defaults := continuity.DefaultConfig()

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "itinerary file (.yaml, .yml or .json), - for stdin")
	cmd.Flags().StringVar(&opts.id, "id", "", "itinerary id, overrides the id in the file")
	cmd.Flags().DurationVar(&opts.minTransfer, "min-transfer", defaults.MinTransferDuration, "length of a transfer synthesized into a zero-length window")
	cmd.Flags().DurationVar(&opts.overlapTolerance, "overlap-tolerance", defaults.OverlapTolerance, "overlap allowed before a schedule conflict is reported")
	cmd.Flags().Float64Var(&opts.proximity, "proximity", defaults.ProximityMeters, "distance in meters under which two coordinates are the same place")
	cmd.Flags().Float64Var(&opts.confidence, "confidence", defaults.SynthesisConfidence, "confidence given to synthesized transfers")
	cmd.Flags().StringVar(&opts.matcher, "matcher", continuity.MatcherFuzzy, "location matching strategy (fuzzy, exact, proximity)")
	_ = cmd.MarkFlagRequired("file")
}

func runRepair(stdin io.Reader, opts *repairOptions) (*domain.RepairResult, error) {
	trip, err := readTrip(stdin, opts.file)
	if err != nil {
		return nil, err
	}
	if opts.id != "" {
		trip.ID = opts.id
	}
	if trip.ID == "" && opts.file != "-" {
		trip.ID = strings.TrimSuffix(filepath.Base(opts.file), filepath.Ext(opts.file))
	}
	if trip.ID == "" {
		trip.ID = "stdin"
	}

	cfg := continuity.Config{
		MinTransferDuration: opts.minTransfer,
		SynthesisConfidence: opts.confidence,
		OverlapTolerance:    opts.overlapTolerance,
		ProximityMeters:     opts.proximity,
	}
	matcher, err := continuity.NewMatcher(opts.matcher, cfg)
	if err != nil {
		return nil, err
	}
	engine := continuity.NewEngine(cfg, continuity.WithMatcher(matcher))

	result, err := engine.Repair(trip.ID, trip.Segments)
	if err != nil {
		return nil, fmt.Errorf("repair %s: %w", trip.ID, err)
	}

	logger.ForItinerary(trip.ID).Info("Itinerary repaired",
		zap.Int("segments", len(result.Segments)),
		zap.Int("synthesized", result.Stats.Synthesized),
		zap.Int("unresolved", result.Stats.Unresolved),
	)
	return result, nil
}

func readTrip(stdin io.Reader, path string) (*tripFile, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read itinerary: %w", err)
	}

	var trip tripFile
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &trip)
	} else {
		err = yaml.Unmarshal(data, &trip)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse itinerary %s: %w", path, err)
	}
	return &trip, nil
}
