package main

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/l1jgo/freelist/internal/config"
	"github.com/l1jgo/freelist/internal/scripting"
	"github.com/l1jgo/freelist/internal/soak"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfgPath := "config/poolsoak.toml"
	if p := os.Getenv("POOLSOAK_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	// 3. Replay mode: apply a recorded trace and exit.
	if cfg.Trace.ReplayPath != "" {
		tr, err := soak.LoadTrace(cfg.Trace.ReplayPath)
		if err != nil {
			return err
		}
		if err := soak.Replay(tr, log); err != nil {
			return fmt.Errorf("replay %s: %w", cfg.Trace.ReplayPath, err)
		}
		return nil
	}

	// 4. Lua scenarios, if configured.
	if cfg.Script.Dir != "" {
		eng, err := scripting.NewEngine(cfg.Soak.Capacity, log)
		if err != nil {
			return err
		}
		defer eng.Close()
		if err := eng.RunDir(cfg.Script.Dir); err != nil {
			return err
		}
	}

	// 5. Randomized soak.
	soakCfg := soak.Config{
		Seed:       cfg.Soak.Seed,
		Ops:        cfg.Soak.Ops,
		Capacity:   cfg.Soak.Capacity,
		EraseBias:  cfg.Soak.EraseBias,
		CheckEvery: cfg.Soak.CheckEvery,
	}
	if soakCfg.Seed == 0 {
		soakCfg.Seed = time.Now().UnixNano()
	}

	tr, runErr := soak.NewRunner(soakCfg, log).Run()
	if cfg.Trace.RecordPath != "" && tr != nil {
		if err := tr.Save(cfg.Trace.RecordPath); err != nil {
			log.Error("save trace failed", zap.Error(err))
		} else {
			log.Info("trace saved",
				zap.String("path", cfg.Trace.RecordPath),
				zap.Int("ops", len(tr.Ops)))
		}
	}
	if runErr != nil {
		return fmt.Errorf("soak (seed %d): %w", soakCfg.Seed, runErr)
	}
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("logging level %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
