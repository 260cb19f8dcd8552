package config

import "time"

// BehaviorConfig tunes the ship behavior driver and route search
type BehaviorConfig struct {
	// Added to every arrival before the next step fires
	ArrivalBuffer time.Duration `mapstructure:"arrival_buffer" validate:"min=0"`

	// How many of the nearest export markets a ship without a good trade may wander to
	RandomExportCandidates int `mapstructure:"random_export_candidates" validate:"min=1"`

	// Extra hops allowed beyond the shortest profitable route
	RouteLengthSlack int `mapstructure:"route_length_slack" validate:"min=0"`

	// Hop limit for the route search
	MaxRouteDepth int `mapstructure:"max_route_depth" validate:"min=1"`

	// Concurrent market fetches during a system sync
	SyncConcurrency int `mapstructure:"sync_concurrency" validate:"min=1"`
}
