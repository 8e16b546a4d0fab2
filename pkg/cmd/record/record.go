package record

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bluess57/gt7core/log"
	"github.com/bluess57/gt7core/pkg/analytics"
	"github.com/bluess57/gt7core/pkg/config"
	"github.com/bluess57/gt7core/pkg/model"
	"github.com/bluess57/gt7core/pkg/session"
	"github.com/bluess57/gt7core/pkg/storage"
	"github.com/bluess57/gt7core/pkg/telemetry"
)

func NewRecordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "records telemetry from the console until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startRecording(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&config.StorageDir,
		"storage-dir",
		"data",
		"directory for recorded lap files")
	cmd.Flags().BoolVar(&config.AlwaysRecord,
		"always-record",
		false,
		"record samples even outside of races (replays)")
	return cmd
}

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

func setupLogger() {
	var logger *log.Logger
	switch config.LogFormat {
	case "json":
		logger = log.New(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	default:
		logger = log.DevLogger(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.DebugLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	}
	if config.LogConfig != "" {
		logger = log.NewWithFilters(logger, config.LogConfig)
	}
	log.ResetDefault(logger)
}

//nolint:funlen // by design
func startRecording(ctx context.Context) error {
	setupLogger()

	if config.CarDBPath != "" {
		if err := model.LoadCarNames(config.CarDBPath); err != nil {
			log.Warn("could not load car names", log.ErrorField(err))
		}
	}

	sess := session.New()
	accumulator := telemetry.NewLapAccumulator(
		telemetry.WithAlwaysRecord(config.AlwaysRecord))
	receiver := telemetry.NewReceiver(config.PlayStationAddr,
		telemetry.WithReceivePort(config.ReceivePort),
		telemetry.WithHeartbeatPort(config.HeartbeatPort),
		telemetry.WithSession(sess),
		telemetry.WithAccumulator(accumulator))

	receiver.OnConnected(func(struct{}) {
		log.Info("console connected",
			log.String("addr", config.PlayStationAddr))
	})
	receiver.OnLapFinished(func(lap *model.Lap) {
		log.Info("lap finished",
			log.Int("number", lap.Number),
			log.String("time", lap.Title),
			log.String("car", model.CarName(lap.CarID)))
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- receiver.Run(runCtx) }()

	log.Info("Recording started",
		log.Int("receivePort", config.ReceivePort),
		log.String("psAddr", config.PlayStationAddr))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case v := <-sigChan:
		log.Debug("Got signal", log.Any("signal", v))
		receiver.Stop()
		<-done
	case err := <-done:
		if err != nil && ctx.Err() == nil {
			return err
		}
	}

	persistLaps(ctx, sess)
	log.Info("Recording terminated")
	return nil
}

// persistLaps writes the session to a lap file and the archive. A session
// without finished laps leaves no trace.
func persistLaps(ctx context.Context, sess *session.Session) {
	laps := sess.Laps()
	if len(laps) == 0 {
		log.Info("no laps recorded")
		return
	}
	log.Info("persisting laps", log.Int("count", len(laps)))
	table := analytics.FormatLapTable(laps)
	os.Stdout.WriteString(table) //nolint:errcheck // best effort console output

	path, err := storage.SaveLaps(config.StorageDir, laps)
	if err != nil {
		log.Error("could not save lap file", log.ErrorField(err))
	} else {
		log.Info("laps saved", log.String("path", path))
	}

	archive, err := storage.OpenArchive(config.ArchivePath)
	if err != nil {
		log.Error("could not open archive", log.ErrorField(err))
		return
	}
	defer archive.Close() //nolint:errcheck // closing on shutdown
	id, err := archive.StoreSession(ctx, laps)
	if err != nil {
		log.Error("could not archive session", log.ErrorField(err))
		return
	}
	log.Info("session archived", log.String("session", id.String()))
}
