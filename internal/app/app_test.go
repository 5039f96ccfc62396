package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/cams/internal/models"
	"github.com/noah-isme/cams/internal/service"
	"github.com/noah-isme/cams/pkg/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Env:      config.EnvDevelopment,
		Storage:  config.StorageConfig{DataDir: filepath.Join(dir, "data")},
		Reports:  config.ReportsConfig{Dir: filepath.Join(dir, "reports")},
		Metrics:  config.MetricsConfig{TextfilePath: filepath.Join(dir, "metrics", "cams.prom")},
		Accounts: config.AccountsConfig{BcryptCost: bcrypt.MinCost, DefaultPassword: "password"},
	}
}

func TestAppSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	first, err := New(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	_, err = first.Accounts.Bootstrap(ctx)
	require.NoError(t, err)

	staff, err := first.Accounts.Login(ctx, models.RoleStaff, "HUKUMAR", "password")
	require.NoError(t, err)
	start := time.Now().UTC().AddDate(0, 1, 0)
	camp, err := first.Camp.CreateCamp(ctx, staff, service.CreateCampRequest{
		Name:           "Orientation",
		StartDate:      start,
		EndDate:        start.AddDate(0, 0, 2),
		ClosingDate:    start.AddDate(0, 0, -7),
		Faculty:        models.FacultyNTU,
		Location:       "NS Hall",
		TotalSlots:     5,
		CommitteeSlots: 1,
	})
	require.NoError(t, err)
	require.NoError(t, first.Close(ctx))

	_, err = os.Stat(cfg.Metrics.TextfilePath)
	assert.NoError(t, err)

	second, err := New(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	created, err := second.Accounts.Bootstrap(ctx)
	require.NoError(t, err)
	assert.Zero(t, created)

	reloaded, err := second.Camp.Get(ctx, camp.ID)
	require.NoError(t, err)
	assert.Equal(t, camp, reloaded)
}

func TestAppRejectsCorruptRecords(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(cfg.Storage.DataDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Storage.DataDir, "camps.csv"), []byte("ID\nCAMP1\n"), 0o644))

	_, err := New(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}
