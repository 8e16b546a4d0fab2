package analyze

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/bluess57/gt7core/log"
	"github.com/bluess57/gt7core/pkg/analytics"
	"github.com/bluess57/gt7core/pkg/config"
	"github.com/bluess57/gt7core/pkg/model"
	"github.com/bluess57/gt7core/pkg/storage"
)

var (
	sessionID string
	peakWidth int
	showFuel  bool
)

func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [lapfile]",
		Short: "analyzes recorded laps from a lap file or the archive",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return analyzeLaps(cmd.Context(), path)
		},
	}
	cmd.Flags().StringVar(&sessionID,
		"session",
		"",
		"archive session id to analyze instead of a lap file")
	cmd.Flags().IntVar(&peakWidth,
		"peak-width",
		analytics.DefaultPeakWidth,
		"minimum peak width in ticks for speed peaks and valleys")
	cmd.Flags().BoolVar(&showFuel,
		"fuel",
		true,
		"include the fuel mixture projection of the best lap")
	return cmd
}

func loadLaps(ctx context.Context, path string) ([]*model.Lap, error) {
	if sessionID != "" {
		id, err := uuid.Parse(sessionID)
		if err != nil {
			return nil, fmt.Errorf("invalid session id %q: %w", sessionID, err)
		}
		archive, err := storage.OpenArchive(config.ArchivePath)
		if err != nil {
			return nil, err
		}
		defer archive.Close() //nolint:errcheck // read only access
		return archive.LoadSession(ctx, id)
	}
	if path == "" {
		return nil, fmt.Errorf("either a lap file or --session is required")
	}
	return storage.LoadLaps(path)
}

//nolint:funlen // report layout is linear
func analyzeLaps(ctx context.Context, path string) error {
	if config.CarDBPath != "" {
		if err := model.LoadCarNames(config.CarDBPath); err != nil {
			log.Warn("could not load car names", log.ErrorField(err))
		}
	}

	laps, err := loadLaps(ctx, path)
	if err != nil {
		return err
	}
	if len(laps) == 0 {
		return fmt.Errorf("no laps found")
	}

	out := os.Stdout
	fmt.Fprintf(out, "%d laps, %s\n\n", len(laps), model.CarName(laps[0].CarID))
	fmt.Fprint(out, analytics.FormatLapTable(laps))

	best := analytics.BestLap(laps)
	if best == nil {
		return nil
	}

	fmt.Fprintf(out, "\nBest lap %d (%s), %.0f m\n",
		best.Number, best.Title, best.TotalDistance())
	for _, e := range analytics.PeaksAndValleys(best.DataSpeed, float64(peakWidth)) {
		kind := "valley"
		if e.Peak {
			kind = "peak"
		}
		fmt.Fprintf(out, "  %-6s tick %5d  %6.1f km/h\n", kind, e.Index, e.Value)
	}

	if median, err := analytics.MedianLap(laps); err == nil {
		fmt.Fprintf(out, "\n%s: %s\n", median.Title,
			model.SecondsToLapTime(median.LapFinishTime/1000))
	}

	if last, reference, _ := analytics.LastReferenceMedian(laps); last != nil &&
		reference != nil && last != reference {
		distances, deltas := analytics.TimeDelta(reference, last)
		if len(deltas) > 0 {
			fmt.Fprintf(out,
				"\nLast vs best: %+.3f s over %.0f m\n",
				deltas[len(deltas)-1], distances[len(distances)-1])
		}
	}

	if showFuel && best.FuelConsumed > 0 {
		fmt.Fprintf(out, "\nFuel Map\tPower\t\tConsumption\tFuel/Lap"+
			"\tLaps\tTime Remaining\tTime Diff\n")
		for _, fm := range analytics.ProjectFuelMaps(best) {
			fmt.Fprintln(out, fm.String())
		}
	}
	return nil
}
