package app

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/cams/internal/repository"
	"github.com/noah-isme/cams/internal/service"
	"github.com/noah-isme/cams/pkg/config"
	"github.com/noah-isme/cams/pkg/storage"
)

type loader interface {
	Name() string
	Load(ctx context.Context) error
	Save(ctx context.Context) error
	IDs() []string
}

// App holds every repository and service of the process. It is built once at
// start and passed to whatever front end drives it.
type App struct {
	Config *config.Config
	Logger *zap.Logger

	Students *repository.UserRepository
	Staff    *repository.UserRepository
	Camps    *repository.CampRepository
	Requests *repository.RequestRepository

	Accounts *service.AccountService
	Camp     *service.CampService
	Request  *service.RequestService
	Reports  *service.ReportService
	Metrics  *service.MetricsService
}

// New wires storage, repositories and services and loads every stored record.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	records, err := storage.NewLocalStorage(cfg.Storage.DataDir)
	if err != nil {
		return nil, err
	}
	reports, err := storage.NewLocalStorage(cfg.Reports.Dir)
	if err != nil {
		return nil, err
	}

	metrics := service.NewMetricsService()
	a := &App{
		Config:   cfg,
		Logger:   logger,
		Students: repository.NewStudentRepository(records, logger, metrics),
		Staff:    repository.NewStaffRepository(records, logger, metrics),
		Camps:    repository.NewCampRepository(records, logger, metrics),
		Requests: repository.NewRequestRepository(records, logger, metrics),
		Metrics:  metrics,
	}
	for _, repo := range a.repositories() {
		if err := repo.Load(ctx); err != nil {
			return nil, err
		}
	}

	validate := validator.New()
	ids := repository.NewIDAllocator()
	a.Accounts = service.NewAccountService(a.Students, a.Staff, service.AccountConfig{
		BcryptCost:      cfg.Accounts.BcryptCost,
		DefaultPassword: cfg.Accounts.DefaultPassword,
	}, validate, logger.Named("accounts"))
	a.Camp = service.NewCampService(a.Camps, a.Requests, a.Students, a.Staff, ids, validate, logger.Named("camps"))
	a.Request = service.NewRequestService(a.Requests, a.Camps, a.Students, a.Camp, ids, validate, logger.Named("requests"))
	a.Reports = service.NewReportService(a.Camps, a.Students, reports, nil, nil, validate, logger.Named("reports"))

	logger.Info("records loaded",
		zap.String("data_dir", cfg.Storage.DataDir),
		zap.Int("students", len(a.Students.IDs())),
		zap.Int("staff", len(a.Staff.IDs())),
		zap.Int("camps", len(a.Camps.IDs())),
		zap.Int("requests", len(a.Requests.IDs())),
	)
	return a, nil
}

// Close flushes every repository and writes the metrics textfile when configured.
// All repositories are attempted; the first error is returned.
func (a *App) Close(ctx context.Context) error {
	var first error
	for _, repo := range a.repositories() {
		if err := repo.Save(ctx); err != nil && first == nil {
			first = fmt.Errorf("flush %s: %w", repo.Name(), err)
		}
		a.Metrics.SetRecordCount(repo.Name(), len(repo.IDs()))
	}
	if err := a.Metrics.WriteTextfile(a.Config.Metrics.TextfilePath); err != nil {
		a.Logger.Warn("failed to write metrics textfile", zap.Error(err))
	}
	return first
}

func (a *App) repositories() []loader {
	return []loader{a.Students, a.Staff, a.Camps, a.Requests}
}
