// Command mustersim runs the Muster campaign companion simulation: it
// loads the catalogs and roster, replays or starts a campaign, advances
// days with random event injection, and serves the read-only API.
package main

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"

	"github.com/voxhall/muster/internal/api"
	"github.com/voxhall/muster/internal/campaign"
	"github.com/voxhall/muster/internal/config"
	"github.com/voxhall/muster/internal/engine"
	"github.com/voxhall/muster/internal/entropy"
	"github.com/voxhall/muster/internal/journal"
	"github.com/voxhall/muster/internal/persistence"
)

type hostConfig struct {
	DBPath     string `env:"MUSTER_DB_PATH" envDefault:"data/campaign.db"`
	CatalogDir string `env:"MUSTER_CATALOG_DIR" envDefault:"catalog"`
	RosterPath string `env:"MUSTER_ROSTER" envDefault:"catalog/roster.json"`
	Port       int    `env:"MUSTER_PORT" envDefault:"8080"`
	Days       int    `env:"MUSTER_DAYS" envDefault:"7"`
	Seed       int64  `env:"MUSTER_SEED" envDefault:"0"`
	Serve      bool   `env:"MUSTER_SERVE" envDefault:"false"`
	StartYear  int    `env:"MUSTER_START_YEAR" envDefault:"3042"`
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var cfg hostConfig
	if err := env.Parse(&cfg); err != nil {
		slog.Error("parse env", "error", err)
		os.Exit(1)
	}

	if cfg.Seed == 0 {
		cfg.Seed = entropy.Seed()
	}
	slog.Info("muster campaign simulation", "seed", cfg.Seed, "catalog", cfg.CatalogDir)

	// ── Catalogs and roster ───────────────────────────────────────────
	cat, err := config.LoadDir(cfg.CatalogDir)
	if err != nil {
		slog.Error("load catalog", "error", err)
		os.Exit(1)
	}

	var chars []*campaign.Character
	if err := config.LoadFile(cfg.RosterPath, &chars); err != nil {
		slog.Error("load roster", "error", err)
		os.Exit(1)
	}
	roster := campaign.NewRoster(chars)
	slog.Info("roster loaded", "characters", roster.Len(), "events", len(cat.Events))

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(cfg.DBPath), 0755)
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// ── Simulation ────────────────────────────────────────────────────
	j := journal.New()
	j.Subscribe(func(rec journal.Record) {
		if err := db.AppendJournal(rec); err != nil {
			slog.Warn("persist journal record", "error", err)
		}
	})

	start := campaign.Date{Year: cfg.StartYear, Day: 1}
	sim, err := engine.New(cat, roster, start, cfg.Seed, j)
	if err != nil {
		slog.Error("build simulation", "error", err)
		os.Exit(1)
	}

	if db.HasSnapshot() {
		st, err := db.LoadSnapshot()
		if err != nil {
			slog.Error("load snapshot", "error", err)
			os.Exit(1)
		}
		if err := sim.RestoreState(st); err != nil {
			slog.Error("restore snapshot", "error", err)
			os.Exit(1)
		}
		slog.Info("campaign restored", "date", sim.Date.String())
	}

	// ── Day loop ──────────────────────────────────────────────────────
	for i := 0; i < cfg.Days; i++ {
		out, err := sim.InjectRandomEvent(sim.Date)
		switch {
		case err != nil && errors.Is(err, engine.ErrUnavailable):
			slog.Info("no event today", "date", sim.Date.String(), "reason", err)
		case err != nil:
			slog.Error("event cycle failed", "date", sim.Date.String(), "error", err)
			os.Exit(1)
		case out != nil:
			slog.Info("event resolved",
				"date", sim.Date.String(),
				"event_id", out.Instance.EventID,
				"interaction", out.Interaction,
				"tier", out.Tier,
				"effects", len(out.Effects),
			)
		}
		sim.AdvanceDay()
	}

	if err := db.SaveSnapshot(sim.SnapshotState()); err != nil {
		slog.Error("save snapshot", "error", err)
		os.Exit(1)
	}
	slog.Info("snapshot saved", "date", sim.Date.String())

	// ── API ───────────────────────────────────────────────────────────
	if cfg.Serve {
		srv := &api.Server{Sim: sim, Port: cfg.Port}
		srv.Start()

		clock := engine.NewClock()
		clock.OnDay = func() {
			if _, err := sim.InjectRandomEvent(sim.Date); err != nil && !errors.Is(err, engine.ErrUnavailable) {
				slog.Error("event cycle failed", "error", err)
			}
			sim.AdvanceDay()
			if err := db.SaveSnapshot(sim.SnapshotState()); err != nil {
				slog.Warn("save snapshot", "error", err)
			}
		}
		clock.Run()
	}
}
