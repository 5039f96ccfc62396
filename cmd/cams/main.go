package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/cams/internal/app"
	"github.com/noah-isme/cams/internal/models"
	"github.com/noah-isme/cams/internal/service"
	"github.com/noah-isme/cams/pkg/config"
	"github.com/noah-isme/cams/pkg/logger"
)

func main() {
	var (
		listCamps  bool
		sortKey    string
		reportCamp string
		staffID    string
		password   string
		format     string
		role       string
	)
	flag.BoolVar(&listCamps, "list", false, "Print every camp")
	flag.StringVar(&sortKey, "sort", "id", "Sort key for -list: id, name, date, closing, location")
	flag.StringVar(&reportCamp, "report", "", "Generate a participant report for the camp with this id")
	flag.StringVar(&staffID, "staff", "", "Staff id owning the camp (with -report)")
	flag.StringVar(&password, "password", os.Getenv("CAMS_PASSWORD"), "Staff password (with -report), defaults to $CAMS_PASSWORD")
	flag.StringVar(&format, "format", "csv", "Report format: csv or pdf")
	flag.StringVar(&role, "role", "", "Only report participants with this role: ATTENDEE or COMMITTEE")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx := context.Background()
	a, err := app.New(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to load records", zap.Error(err))
	}
	if created, err := a.Accounts.Bootstrap(ctx); err != nil {
		logr.Fatal("failed to create default accounts", zap.Error(err))
	} else if created > 0 {
		logr.Info("first run, default accounts created", zap.Int("count", created))
	}

	runErr := run(ctx, a, listCamps, sortKey, reportCamp, staffID, password, format, role)
	if err := a.Close(ctx); err != nil {
		logr.Error("failed to flush records", zap.Error(err))
	}
	if runErr != nil {
		logr.Sync() //nolint:errcheck
		fmt.Fprintln(os.Stderr, runErr)
		os.Exit(1)
	}
}

func run(ctx context.Context, a *app.App, listCamps bool, sortKey, reportCamp, staffID, password, format, role string) error {
	if listCamps {
		key, err := service.ParseCampSortKey(sortKey)
		if err != nil {
			return err
		}
		camps := service.SortCamps(a.Camp.ListAll(ctx), key)
		for _, camp := range camps {
			fmt.Println(camp.Splitter())
			fmt.Print(camp.DisplayString())
		}
		if len(camps) > 0 {
			fmt.Println(camps[0].Splitter())
		}
		fmt.Printf("%d camp(s)\n", len(camps))
	}

	if reportCamp != "" {
		staff, err := a.Accounts.Login(ctx, models.RoleStaff, staffID, password)
		if err != nil {
			return err
		}
		result, err := a.Reports.GenerateCampReport(ctx, staff, reportCamp, service.ReportOptions{
			Format: service.ReportFormat(strings.ToLower(format)),
			Role:   models.CampRole(strings.ToUpper(role)),
		})
		if err != nil {
			return err
		}
		fmt.Printf("report with %d participant(s) written to %s\n", result.Participants, result.Path)
	}
	return nil
}
