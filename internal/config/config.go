package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries every tuned constant of the economy simulation. The numeric
// defaults in Default() are the balance values the simulation ships with;
// hosts override them per deployment via a YAML file.
type Config struct {
	Version      string       `yaml:"version" json:"version"`
	SeededRNG    SeededRNG    `yaml:"seeded_rng" json:"seeded_rng"`
	Economy      Economy      `yaml:"economy" json:"economy"`
	Retail       Retail       `yaml:"retail" json:"retail"`
	Online       Online       `yaml:"online" json:"online"`
	Lifecycle    Lifecycle    `yaml:"lifecycle" json:"lifecycle"`
	Bonus        Bonus        `yaml:"bonus" json:"bonus"`
	Monetization Monetization `yaml:"monetization" json:"monetization"`
	Update       Update       `yaml:"update" json:"update"`
	Store        Store        `yaml:"store" json:"store"`
}

type SeededRNG struct {
	Enabled bool  `yaml:"enabled" json:"enabled"`
	Seed    int64 `yaml:"seed" json:"seed"`
}

type Economy struct {
	// LifespanDays is the nominal active life of an online title; lifecycle
	// progress is daysSinceLaunch relative to this.
	LifespanDays int `yaml:"lifespan_days" json:"lifespan_days"`
	// DecayPeriodDays is the cadence of automatic interest decay.
	DecayPeriodDays int `yaml:"decay_period_days" json:"decay_period_days"`
	// ActivePlayerRatio converts registered players to the concurrently
	// engaged estimate before the interest multiplier applies.
	ActivePlayerRatio float64 `yaml:"active_player_ratio" json:"active_player_ratio"`
}

// Retail tunes one-time-purchase (single-player) titles.
type Retail struct {
	BaseFirstDayUnits int64         `yaml:"base_first_day_units" json:"base_first_day_units"`
	SalesWindowDays   int           `yaml:"sales_window_days" json:"sales_window_days"`
	PerDayCap         int64         `yaml:"per_day_cap" json:"per_day_cap"`
	PriceTiers        []PriceTier   `yaml:"price_tiers" json:"price_tiers"`
	Brackets          []RetailCurve `yaml:"brackets" json:"brackets"`
	LifetimeCaps      []LifetimeCap `yaml:"lifetime_caps" json:"lifetime_caps"`
}

// PriceTier scales the first-day quantity by unit price: cheaper titles move
// more copies. Tiers are matched in order; the first MaxPrice >= price wins.
// A tier with MaxPrice 0 is the open-ended fallback.
type PriceTier struct {
	MaxPrice int64   `yaml:"max_price" json:"max_price"`
	Factor   float64 `yaml:"factor" json:"factor"`
}

// RetailCurve is the day-over-day decay for a rating bracket. Brackets are
// matched by the highest MinRating <= rating and must be listed ascending.
type RetailCurve struct {
	MinRating     float64 `yaml:"min_rating" json:"min_rating"`
	DailyDecay    float64 `yaml:"daily_decay" json:"daily_decay"`
	MinDailyUnits int64   `yaml:"min_daily_units" json:"min_daily_units"`
}

// LifetimeCap bounds total lifetime units for very low ratings. Caps are
// matched by the lowest MaxRating > rating; ratings above every MaxRating
// are uncapped.
type LifetimeCap struct {
	MaxRating float64 `yaml:"max_rating" json:"max_rating"`
	Cap       int64   `yaml:"cap" json:"cap"`
}

// Online tunes persistent-service titles.
type Online struct {
	BaseFirstDayRegistrations int64         `yaml:"base_first_day_registrations" json:"base_first_day_registrations"`
	PerDayCap                 int64         `yaml:"per_day_cap" json:"per_day_cap"`
	Fluctuation               float64       `yaml:"fluctuation" json:"fluctuation"`
	Brackets                  []OnlineCurve `yaml:"brackets" json:"brackets"`
}

// OnlineCurve is the day-over-day registration growth for a rating bracket.
type OnlineCurve struct {
	MinRating   float64 `yaml:"min_rating" json:"min_rating"`
	DailyGrowth float64 `yaml:"daily_growth" json:"daily_growth"`
}

// Lifecycle tunes the interest decay/recovery state machine.
type Lifecycle struct {
	// Phase boundaries in lifecycle-progress percent.
	GrowthBelowPct   float64 `yaml:"growth_below_pct" json:"growth_below_pct"`
	MaturityBelowPct float64 `yaml:"maturity_below_pct" json:"maturity_below_pct"`
	DeclineBelowPct  float64 `yaml:"decline_below_pct" json:"decline_below_pct"`

	DecayPoints    PhasePoints `yaml:"decay_points" json:"decay_points"`
	RecoveryPoints PhasePoints `yaml:"recovery_points" json:"recovery_points"`

	// AIRecoveryMaxProbability is the chance of spontaneous interest
	// recovery for an AI-run title at interest 0; it scales linearly down
	// to 0 at interest 50.
	AIRecoveryMaxProbability float64 `yaml:"ai_recovery_max_probability" json:"ai_recovery_max_probability"`
}

type PhasePoints struct {
	Growth    int `yaml:"growth" json:"growth"`
	Maturity  int `yaml:"maturity" json:"maturity"`
	Decline   int `yaml:"decline" json:"decline"`
	EndOfLife int `yaml:"end_of_life" json:"end_of_life"`
}

// Bonus tunes the multiplicative launch/ongoing bonuses.
type Bonus struct {
	RatingRegistrations []RatingStep `yaml:"rating_registrations" json:"rating_registrations"`
	RatingUnitSales     []RatingStep `yaml:"rating_unit_sales" json:"rating_unit_sales"`
	FanTiersOnline      []FanTier    `yaml:"fan_tiers_online" json:"fan_tiers_online"`
	FanTiersRetail      []FanTier    `yaml:"fan_tiers_retail" json:"fan_tiers_retail"`
	FanCapOnline        float64      `yaml:"fan_cap_online" json:"fan_cap_online"`
	FanCapRetail        float64      `yaml:"fan_cap_retail" json:"fan_cap_retail"`
	ReputationCap       float64      `yaml:"reputation_cap" json:"reputation_cap"`
}

// RatingStep maps a minimum rating to a multiplier. Steps are matched by the
// highest MinRating <= rating and must be listed ascending.
type RatingStep struct {
	MinRating  float64 `yaml:"min_rating" json:"min_rating"`
	Multiplier float64 `yaml:"multiplier" json:"multiplier"`
}

// FanTier maps a minimum fan count to an additive bonus fraction.
type FanTier struct {
	MinFans int64   `yaml:"min_fans" json:"min_fans"`
	Bonus   float64 `yaml:"bonus" json:"bonus"`
}

// Monetization tunes paid-item revenue.
type Monetization struct {
	// PurchaseRates is the fraction of active players buying a given item
	// category per accrual tick.
	PurchaseRates  map[string]float64 `yaml:"purchase_rates" json:"purchase_rates"`
	FluctuationMin float64            `yaml:"fluctuation_min" json:"fluctuation_min"`
	FluctuationMax float64            `yaml:"fluctuation_max" json:"fluctuation_max"`
}

// Update tunes content-update tasks.
type Update struct {
	PointsPerFeature       int     `yaml:"points_per_feature" json:"points_per_feature"`
	MultiplierPerFeature   float64 `yaml:"multiplier_per_feature" json:"multiplier_per_feature"`
	MaxMultiplierPerUpdate float64 `yaml:"max_multiplier_per_update" json:"max_multiplier_per_update"`
}

// Store tunes persistence.
type Store struct {
	HistoryRetentionDays int     `yaml:"history_retention_days" json:"history_retention_days"`
	FlushIntervalSeconds float64 `yaml:"flush_interval_seconds" json:"flush_interval_seconds"`
}

// Default returns the shipped balance values.
func Default() *Config {
	return &Config{
		Version: "1",
		SeededRNG: SeededRNG{
			Enabled: false,
			Seed:    1,
		},
		Economy: Economy{
			LifespanDays:      365,
			DecayPeriodDays:   90,
			ActivePlayerRatio: 0.4,
		},
		Retail: Retail{
			BaseFirstDayUnits: 500,
			SalesWindowDays:   365,
			PerDayCap:         200_000,
			PriceTiers: []PriceTier{
				{MaxPrice: 1_999, Factor: 1.3},
				{MaxPrice: 3_999, Factor: 1.15},
				{MaxPrice: 5_999, Factor: 1.0},
				{MaxPrice: 0, Factor: 0.85},
			},
			Brackets: []RetailCurve{
				{MinRating: 0, DailyDecay: 0.70, MinDailyUnits: 1},
				{MinRating: 3, DailyDecay: 0.85, MinDailyUnits: 8},
				{MinRating: 5, DailyDecay: 0.92, MinDailyUnits: 25},
				{MinRating: 7, DailyDecay: 0.95, MinDailyUnits: 60},
				{MinRating: 9, DailyDecay: 0.97, MinDailyUnits: 120},
			},
			LifetimeCaps: []LifetimeCap{
				{MaxRating: 1.0, Cap: 500},
				{MaxRating: 2.0, Cap: 2_000},
				{MaxRating: 3.0, Cap: 10_000},
			},
		},
		Online: Online{
			BaseFirstDayRegistrations: 1_000,
			PerDayCap:                 500_000,
			Fluctuation:               0.15,
			Brackets: []OnlineCurve{
				{MinRating: 0, DailyGrowth: 0.97},
				{MinRating: 3, DailyGrowth: 1.00},
				{MinRating: 5, DailyGrowth: 1.02},
				{MinRating: 7, DailyGrowth: 1.04},
				{MinRating: 9, DailyGrowth: 1.06},
			},
		},
		Lifecycle: Lifecycle{
			GrowthBelowPct:           30,
			MaturityBelowPct:         70,
			DeclineBelowPct:          90,
			DecayPoints:              PhasePoints{Growth: 8, Maturity: 15, Decline: 25, EndOfLife: 35},
			RecoveryPoints:           PhasePoints{Growth: 25, Maturity: 15, Decline: 8, EndOfLife: 0},
			AIRecoveryMaxProbability: 0.35,
		},
		Bonus: Bonus{
			RatingRegistrations: []RatingStep{
				{MinRating: 0, Multiplier: 0.5},
				{MinRating: 5, Multiplier: 1.0},
				{MinRating: 6, Multiplier: 1.15},
				{MinRating: 7, Multiplier: 1.35},
				{MinRating: 8, Multiplier: 1.6},
				{MinRating: 9, Multiplier: 2.2},
				{MinRating: 10, Multiplier: 3.0},
			},
			RatingUnitSales: []RatingStep{
				{MinRating: 0, Multiplier: 0.4},
				{MinRating: 5, Multiplier: 1.0},
				{MinRating: 6, Multiplier: 1.1},
				{MinRating: 7, Multiplier: 1.3},
				{MinRating: 8, Multiplier: 1.5},
				{MinRating: 9, Multiplier: 2.0},
				{MinRating: 10, Multiplier: 3.0},
			},
			FanTiersOnline: []FanTier{
				{MinFans: 1_000, Bonus: 0.05},
				{MinFans: 10_000, Bonus: 0.12},
				{MinFans: 100_000, Bonus: 0.25},
				{MinFans: 500_000, Bonus: 0.38},
				{MinFans: 1_000_000, Bonus: 0.50},
			},
			FanTiersRetail: []FanTier{
				{MinFans: 1_000, Bonus: 0.03},
				{MinFans: 10_000, Bonus: 0.08},
				{MinFans: 100_000, Bonus: 0.15},
				{MinFans: 500_000, Bonus: 0.22},
				{MinFans: 1_000_000, Bonus: 0.30},
			},
			FanCapOnline:  0.50,
			FanCapRetail:  0.30,
			ReputationCap: 0.20,
		},
		Monetization: Monetization{
			PurchaseRates: map[string]float64{
				"cosmetic":    0.003,
				"convenience": 0.006,
				"season_pass": 0.010,
				"gacha":       0.020,
			},
			FluctuationMin: 0.20,
			FluctuationMax: 0.30,
		},
		Update: Update{
			PointsPerFeature:       150,
			MultiplierPerFeature:   0.05,
			MaxMultiplierPerUpdate: 0.25,
		},
		Store: Store{
			HistoryRetentionDays: 30,
			FlushIntervalSeconds: 3,
		},
	}
}

// ApplyDefaults fills zero-valued fields from Default so partial YAML files
// stay usable.
func (c *Config) ApplyDefaults() {
	d := Default()
	if c.Economy.LifespanDays == 0 {
		c.Economy.LifespanDays = d.Economy.LifespanDays
	}
	if c.Economy.DecayPeriodDays == 0 {
		c.Economy.DecayPeriodDays = d.Economy.DecayPeriodDays
	}
	if c.Economy.ActivePlayerRatio == 0 {
		c.Economy.ActivePlayerRatio = d.Economy.ActivePlayerRatio
	}
	if c.Retail.BaseFirstDayUnits == 0 {
		c.Retail.BaseFirstDayUnits = d.Retail.BaseFirstDayUnits
	}
	if c.Retail.SalesWindowDays == 0 {
		c.Retail.SalesWindowDays = d.Retail.SalesWindowDays
	}
	if c.Retail.PerDayCap == 0 {
		c.Retail.PerDayCap = d.Retail.PerDayCap
	}
	if len(c.Retail.PriceTiers) == 0 {
		c.Retail.PriceTiers = d.Retail.PriceTiers
	}
	if len(c.Retail.Brackets) == 0 {
		c.Retail.Brackets = d.Retail.Brackets
	}
	if len(c.Retail.LifetimeCaps) == 0 {
		c.Retail.LifetimeCaps = d.Retail.LifetimeCaps
	}
	if c.Online.BaseFirstDayRegistrations == 0 {
		c.Online.BaseFirstDayRegistrations = d.Online.BaseFirstDayRegistrations
	}
	if c.Online.PerDayCap == 0 {
		c.Online.PerDayCap = d.Online.PerDayCap
	}
	if c.Online.Fluctuation == 0 {
		c.Online.Fluctuation = d.Online.Fluctuation
	}
	if len(c.Online.Brackets) == 0 {
		c.Online.Brackets = d.Online.Brackets
	}
	if c.Lifecycle.GrowthBelowPct == 0 {
		c.Lifecycle.GrowthBelowPct = d.Lifecycle.GrowthBelowPct
	}
	if c.Lifecycle.MaturityBelowPct == 0 {
		c.Lifecycle.MaturityBelowPct = d.Lifecycle.MaturityBelowPct
	}
	if c.Lifecycle.DeclineBelowPct == 0 {
		c.Lifecycle.DeclineBelowPct = d.Lifecycle.DeclineBelowPct
	}
	if c.Lifecycle.DecayPoints == (PhasePoints{}) {
		c.Lifecycle.DecayPoints = d.Lifecycle.DecayPoints
	}
	if c.Lifecycle.RecoveryPoints == (PhasePoints{}) {
		c.Lifecycle.RecoveryPoints = d.Lifecycle.RecoveryPoints
	}
	if c.Lifecycle.AIRecoveryMaxProbability == 0 {
		c.Lifecycle.AIRecoveryMaxProbability = d.Lifecycle.AIRecoveryMaxProbability
	}
	if len(c.Bonus.RatingRegistrations) == 0 {
		c.Bonus.RatingRegistrations = d.Bonus.RatingRegistrations
	}
	if len(c.Bonus.RatingUnitSales) == 0 {
		c.Bonus.RatingUnitSales = d.Bonus.RatingUnitSales
	}
	if len(c.Bonus.FanTiersOnline) == 0 {
		c.Bonus.FanTiersOnline = d.Bonus.FanTiersOnline
	}
	if len(c.Bonus.FanTiersRetail) == 0 {
		c.Bonus.FanTiersRetail = d.Bonus.FanTiersRetail
	}
	if c.Bonus.FanCapOnline == 0 {
		c.Bonus.FanCapOnline = d.Bonus.FanCapOnline
	}
	if c.Bonus.FanCapRetail == 0 {
		c.Bonus.FanCapRetail = d.Bonus.FanCapRetail
	}
	if c.Bonus.ReputationCap == 0 {
		c.Bonus.ReputationCap = d.Bonus.ReputationCap
	}
	if len(c.Monetization.PurchaseRates) == 0 {
		c.Monetization.PurchaseRates = d.Monetization.PurchaseRates
	}
	if c.Monetization.FluctuationMin == 0 {
		c.Monetization.FluctuationMin = d.Monetization.FluctuationMin
	}
	if c.Monetization.FluctuationMax == 0 {
		c.Monetization.FluctuationMax = d.Monetization.FluctuationMax
	}
	if c.Update.PointsPerFeature == 0 {
		c.Update.PointsPerFeature = d.Update.PointsPerFeature
	}
	if c.Update.MultiplierPerFeature == 0 {
		c.Update.MultiplierPerFeature = d.Update.MultiplierPerFeature
	}
	if c.Update.MaxMultiplierPerUpdate == 0 {
		c.Update.MaxMultiplierPerUpdate = d.Update.MaxMultiplierPerUpdate
	}
	if c.Store.HistoryRetentionDays == 0 {
		c.Store.HistoryRetentionDays = d.Store.HistoryRetentionDays
	}
	if c.Store.FlushIntervalSeconds == 0 {
		c.Store.FlushIntervalSeconds = d.Store.FlushIntervalSeconds
	}
}

// Validate rejects configs that would make the curves nonsensical.
func (c *Config) Validate() error {
	if c.Economy.LifespanDays <= 0 {
		return fmt.Errorf("economy.lifespan_days must be positive")
	}
	if c.Economy.DecayPeriodDays <= 0 {
		return fmt.Errorf("economy.decay_period_days must be positive")
	}
	if c.Economy.ActivePlayerRatio <= 0 || c.Economy.ActivePlayerRatio > 1 {
		return fmt.Errorf("economy.active_player_ratio must be in (0,1]")
	}
	if len(c.Retail.Brackets) == 0 || len(c.Online.Brackets) == 0 {
		return fmt.Errorf("rating brackets must not be empty")
	}
	if c.Monetization.FluctuationMin > c.Monetization.FluctuationMax {
		return fmt.Errorf("monetization.fluctuation_min exceeds fluctuation_max")
	}
	for name, rate := range c.Monetization.PurchaseRates {
		if rate < 0 || rate > 1 {
			return fmt.Errorf("monetization.purchase_rates[%s] must be in [0,1]", name)
		}
	}
	return nil
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.ApplyDefaults()
	c.ApplyEnv()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
