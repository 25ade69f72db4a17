package config

import "github.com/spf13/viper"

const (
	DefaultBatchLimit = 500
	DefaultSchedule   = "@every 1h"
)

// SyncConfig holds synchronization configuration
type SyncConfig struct {
	// BatchLimit caps how many commits one sync fetches
	BatchLimit int
	// Schedule is a cron expression for background re-syncs
	Schedule string
	// DefaultRepository is synced on Schedule; empty disables the scheduler
	DefaultRepository string
}

// DefaultSyncConfig returns the default sync configuration
func DefaultSyncConfig() *SyncConfig {
	return &SyncConfig{
		BatchLimit: DefaultBatchLimit,
		Schedule:   DefaultSchedule,
	}
}

func syncConfigFrom(v *viper.Viper) *SyncConfig {
	cfg := DefaultSyncConfig()
	cfg.BatchLimit = v.GetInt("sync_batch_limit")
	if schedule := v.GetString("sync_schedule"); schedule != "" {
		cfg.Schedule = schedule
	}
	cfg.DefaultRepository = v.GetString("default_sync_repo")
	return cfg
}
