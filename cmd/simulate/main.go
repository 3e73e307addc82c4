// Command simulate drives a fleet of synthetic titles through many in-game
// days and prints aggregate outcomes. It is the balancing harness for the
// tuning config: run it with a seed, tweak the YAML, run again, diff.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/1836047093/YCJY-sub002/internal/accrual"
	"github.com/1836047093/YCJY-sub002/internal/config"
	"github.com/1836047093/YCJY-sub002/internal/gamedate"
	"github.com/1836047093/YCJY-sub002/internal/monetize"
	"github.com/1836047093/YCJY-sub002/internal/store"
	"github.com/1836047093/YCJY-sub002/internal/telemetry"
	"github.com/1836047093/YCJY-sub002/internal/title"
)

type archetype struct {
	name      string
	category  title.Category
	rating    float64
	fans      int64
	unitPrice int64
	ai        bool
}

var archetypes = []archetype{
	{"hit-retail", title.CategoryRetail, 9.2, 500_000, 5_999, false},
	{"solid-retail", title.CategoryRetail, 7.4, 50_000, 3_999, false},
	{"budget-retail", title.CategoryRetail, 5.1, 2_000, 1_499, false},
	{"shovelware", title.CategoryRetail, 0.5, 0, 999, false},
	{"flagship-online", title.CategoryOnline, 8.8, 800_000, 0, false},
	{"midtier-online", title.CategoryOnline, 6.5, 30_000, 0, false},
	{"rival-online", title.CategoryOnline, 7.0, 100_000, 0, true},
}

var catalog = []monetize.Item{
	{ID: "skin-pack", Name: "Skin Pack", Category: monetize.CategoryCosmetic, Price: 499, Enabled: true},
	{ID: "xp-boost", Name: "XP Boost", Category: monetize.CategoryConvenience, Price: 299, Enabled: true},
	{ID: "season-pass", Name: "Season Pass", Category: monetize.CategorySeasonPass, Price: 999, Enabled: true},
	{ID: "lucky-crate", Name: "Lucky Crate", Category: monetize.CategoryGacha, Price: 199, Enabled: true},
}

func main() {
	days := flag.Int("days", 365, "number of in-game days to simulate")
	titles := flag.Int("titles", len(archetypes), "number of titles (cycles through archetypes)")
	seed := flag.Int64("seed", 1, "RNG seed")
	configPath := flag.String("config", "", "tuning config YAML (defaults when empty)")
	dataDir := flag.String("data-dir", "", "persist state to this directory (in-memory when empty)")
	flag.Parse()

	if err := run(*days, *titles, *seed, *configPath, *dataDir); err != nil {
		fmt.Fprintln(os.Stderr, "simulate:", err)
		os.Exit(1)
	}
}

func run(days, nTitles int, seed int64, configPath, dataDir string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	cfg.SeededRNG = config.SeededRNG{Enabled: true, Seed: seed}

	events := telemetry.NewMemoryRepository()

	var repo title.Repository = title.NewMemoryRepo()
	var fileStore *store.FileStore
	if dataDir != "" {
		fs, err := store.NewFileStore(dataDir, cfg, events, logger)
		if err != nil {
			return err
		}
		repo = fs
		fileStore = fs
	}

	engine := accrual.NewEngine(cfg, repo, events, logger)
	ctx := context.Background()
	start := gamedate.New(2024, 1, 1)

	ids := make([]title.ID, 0, nTitles)
	specs := make(map[title.ID]archetype, nTitles)
	for i := 0; i < nTitles; i++ {
		a := archetypes[i%len(archetypes)]
		id := title.ID(fmt.Sprintf("%s-%d", a.name, i))
		if _, err := engine.Release(ctx, accrual.ReleaseSpec{
			ID:           id,
			Name:         a.name,
			Category:     a.category,
			UnitPrice:    a.unitPrice,
			AIControlled: a.ai,
			Date:         start,
		}); err != nil {
			return err
		}
		ids = append(ids, id)
		specs[id] = a
	}

	for day := 0; day < days; day++ {
		date := start.AddDays(day)
		for _, id := range ids {
			a := specs[id]
			rating := a.rating
			d := accrual.DayContext{
				Date:     date,
				Rating:   &rating,
				FanCount: a.fans,
			}
			if a.category == title.CategoryOnline {
				d.Items = catalog
				d.UpdatePoints = 25
				// Kick off a content update roughly twice a year; a still
				// running one just keeps taking the daily points.
				if day > 0 && day%180 == 0 {
					_, _ = engine.StartUpdate(ctx, id, []string{"seasonal-event", "balance-pass"})
				}
			}
			if _, err := engine.AccrueDay(ctx, id, d); err != nil {
				return fmt.Errorf("day %d title %s: %w", day, id, err)
			}
		}
	}

	printSummary(ctx, repo, ids, days)

	if evs, err := events.GetEvents(time.Time{}, nil); err == nil {
		if stats, err := telemetry.CalculateStats(evs, time.Time{}); err == nil {
			fmt.Printf("\nevents: %d accrued days, %d decays, %d recoveries, %d updates shipped\n",
				stats.DaysAccrued, stats.Decays, stats.Recoveries, stats.UpdatesCompleted)
		}
	}

	if fileStore != nil {
		if err := fileStore.Flush(ctx); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(ctx context.Context, repo title.Repository, ids []title.ID, days int) {
	fmt.Printf("%-20s %10s %14s %14s %9s %9s\n",
		"title", "units", "revenue", "monetization", "interest", "progress")
	for _, id := range ids {
		st, ok, err := repo.Get(ctx, id)
		if err != nil || !ok {
			continue
		}
		fmt.Printf("%-20s %10d %14d %14d %8d%% %8.1f%%\n",
			st.Name, st.Stats.TotalUnits, st.Stats.TotalRevenue,
			st.Stats.MonetizationRevenue, st.PlayerInterest, st.LifecycleProgress)
	}
	fmt.Printf("\nsimulated %d days across %d titles\n", days, len(ids))
}
