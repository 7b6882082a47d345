// Package constants provides the fixed names shared by the configuration
// packages: document sections, definition keys, environment variables and
// environment names.
package constants

import "time"

const (
	// NonProductionEnvironment is the environment name for non-production environments.
	NonProductionEnvironment = "development"
	// ProductionEnvironment is the environment name for production deployments.
	ProductionEnvironment = "production"
	// DefaultReloadDebounce coalesces bursts of file events into one reload.
	DefaultReloadDebounce = 100 * time.Millisecond
)
