package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"github.com/itohio/thermomon/pkg/config"
	"github.com/itohio/thermomon/pkg/probe"
	"github.com/itohio/thermomon/pkg/thermistor"
)

func main() {
	// .env must be loaded before flag defaults read the environment
	envErr := godotenv.Load()

	var (
		portFlag   = flag.String("p", os.Getenv("THERMOMON_PORT"), "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag = flag.String("config", envOr("THERMOMON_CONFIG", "config.yaml"), "Configuration file path")
		mockFlag   = flag.Bool("mock", false, "Use simulated probe instead of serial port")
		windowFlag = flag.Int("window", 0, "Rolling average window (0 = use config)")
		tableFlag  = flag.String("table", "", "Calibration table override")
		listFlag   = flag.Bool("list", false, "List calibration tables and serial ports, then exit")
	)
	flag.Parse()

	level := new(slog.LevelVar)
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	})))

	if envErr != nil {
		slog.Debug("could not load .env file", "error", envErr)
	}

	if *listFlag {
		if err := list(); err != nil {
			slog.Error("listing failed", "error", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		slog.Error("failed to load configuration", "path", *configFlag, "error", err)
		os.Exit(1)
	}

	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *windowFlag > 0 {
		cfg.Thermistor.Window = *windowFlag
	}
	if *tableFlag != "" {
		cfg.Thermistor.Table = *tableFlag
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	lvl, err := parseLevel(cfg.Log.Level)
	if err != nil {
		slog.Warn("unknown log level, using info", "level", cfg.Log.Level)
	}
	level.Set(lvl)

	log := slog.Default().With("session", uuid.NewString())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dev, err := openDevice(cfg, *mockFlag)
	if err != nil {
		log.Error("failed to create probe", "error", err)
		os.Exit(1)
	}

	log.Info("starting", "mock", *mockFlag, "port", cfg.Serial.Port, "table", cfg.Thermistor.Table, "window", cfg.Thermistor.Window)

	if err := run(ctx, log, cfg, dev); err != nil {
		log.Error("monitor stopped", "error", err)
		os.Exit(1)
	}
	log.Info("stopped")
}

func list() error {
	fmt.Println("Calibration tables:")
	for _, name := range thermistor.Names() {
		table := thermistor.MustLookup(name)
		lo, hi := table.Range()
		fmt.Printf("  %-20s %3d points  %g..%g ohm  unit %s\n", name, table.Len(), lo, hi, table.Unit())
	}

	ports, err := probe.Ports()
	if err != nil {
		return err
	}
	fmt.Println("Serial ports:")
	for _, p := range ports {
		fmt.Printf("  %s\n", p.Name)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, err
	}
	return lvl, nil
}
