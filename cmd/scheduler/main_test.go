package main

import (
	"testing"

	"github.com/segyhp/lendtrack/internal/config"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSetupCronJobs(t *testing.T) {
	tests := []struct {
		name        string
		reconcile   string
		overdue     string
		wantErr     bool
		wantEntries int
	}{
		{name: "default schedules", reconcile: "0 30 0 * * *", overdue: "0 0 7 * * *", wantEntries: 2},
		{name: "invalid reconcile schedule", reconcile: "every night", overdue: "0 0 7 * * *", wantErr: true},
		{name: "five field schedule rejected", reconcile: "0 30 0 * * *", overdue: "0 7 * * *", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cron.New(cron.WithSeconds())
			cfg := &config.Config{Scheduler: config.SchedulerConfig{
				ReconcileCron: tt.reconcile,
				OverdueCron:   tt.overdue,
			}}

			err := setupCronJobs(c, cfg, nil, zap.NewNop())

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, c.Entries(), tt.wantEntries)
		})
	}
}
