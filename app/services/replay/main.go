package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/crowdpool/app/services/replay/scenario"
	"github.com/ardanlabs/crowdpool/foundation/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("REPLAY")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Scenario struct {
			File string `conf:"default:zpool/scenario.yaml"`
			Runs int    `conf:"default:2"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "replays a pool scenario and reports the state digest",
		},
	}

	const prefix = "REPLAY"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	if cfg.Scenario.Runs < 1 {
		return errors.New("at least one run is required")
	}

	// =========================================================================
	// Scenario Support

	data, err := os.ReadFile(cfg.Scenario.File)
	if err != nil {
		return fmt.Errorf("reading scenario: %w", err)
	}

	sc, err := scenario.Load(data)
	if err != nil {
		return fmt.Errorf("loading scenario: %w", err)
	}

	log.Infow("startup", "status", "scenario loaded", "file", cfg.Scenario.File, "steps", len(sc.Steps))

	// =========================================================================
	// Replay

	var digest string
	for i := 0; i < cfg.Scenario.Runs; i++ {
		traceID := uuid.NewString()

		// The program reports its events through this function.
		ev := func(v string, args ...any) {
			log.Infow(fmt.Sprintf(v, args...), "traceid", traceID)
		}

		res, err := scenario.Run(sc, ev)
		if err != nil {
			return fmt.Errorf("run[%d]: %w", i, err)
		}

		log.Infow("replay", "status", "completed", "traceid", traceID, "digest", res.Digest.Hex(), "txs", len(res.Txs))

		switch {
		case digest == "":
			digest = res.Digest.Hex()
		case digest != res.Digest.Hex():
			return fmt.Errorf("run[%d]: digest %s does not match %s", i, res.Digest.Hex(), digest)
		}
	}

	log.Infow("replay", "status", "all runs agree", "runs", cfg.Scenario.Runs, "digest", digest)

	return nil
}
