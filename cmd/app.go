package main

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/asaskevich/EventBus"
	"github.com/lilhop36/osta-job-portal-sub001/internal/config"
	"github.com/lilhop36/osta-job-portal-sub001/internal/events"
	"github.com/lilhop36/osta-job-portal-sub001/internal/logger"
	"github.com/lilhop36/osta-job-portal-sub001/internal/notifier"
	"github.com/lilhop36/osta-job-portal-sub001/internal/repositories"
	"github.com/lilhop36/osta-job-portal-sub001/internal/services"
	log "github.com/sirupsen/logrus"
	"io"
	"strconv"
)

type dispatcher interface {
	Enqueue(ctx context.Context, userID int64, templateCode string, variables map[string]string) error
}

// app holds the wired services shared by all commands.
type app struct {
	cfg         *config.Config
	dbContext   *repositories.DbContext
	bus         EventBus.Bus
	engine      *services.EligibilityEngine
	machine     *services.StatusMachine
	criteria    *services.CriteriaService
	reevaluator *services.Reevaluator
}

func newApp(ctx context.Context) (*app, error) {

	cfg := config.Get()
	logger.Setup(ctx, cfg.Logger)

	dbContext, err := repositories.NewDbContext(cfg.DB.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("can't create db context: %w", err)
	}
	if err = dbContext.Migrate(); err != nil {
		_ = dbContext.Close()
		return nil, fmt.Errorf("can't migrate db context: %w", err)
	}

	a, err := wire(cfg, dbContext)
	if err != nil {
		_ = dbContext.Close()
		return nil, err
	}
	return a, nil
}

func wire(cfg *config.Config, dbContext *repositories.DbContext) (*app, error) {

	db := dbContext.DB
	bus := EventBus.New()

	applications := repositories.NewApplicationsRepository(db)
	criteriaRepo := repositories.NewCriteriaRepository(db)
	cachedCriteria := repositories.NewCachedCriteria(criteriaRepo, cfg.Evaluation.CriteriaCacheTTL)
	if err := bus.Subscribe(events.CriteriaChangedTopic, func(events.CriteriaChanged) { cachedCriteria.Invalidate() }); err != nil {
		return nil, err
	}

	engine, err := services.NewEligibilityEngine(applications, cachedCriteria,
		repositories.NewProfilesRepository(db), repositories.NewEvaluationsRepository(db))
	if err != nil {
		return nil, fmt.Errorf("can't create eligibility engine: %w", err)
	}

	machine, err := services.NewStatusMachine(bus, applications, repositories.NewHistoryRepository(db),
		repositories.NewDocumentsRepository(db, cfg.Workflow.RequiredDocuments), cfg.Workflow.RequireEligibleOnSubmit)
	if err != nil {
		return nil, fmt.Errorf("can't create status machine: %w", err)
	}

	d, err := newDispatcher(cfg.Notifier)
	if err != nil {
		return nil, fmt.Errorf("can't create notification dispatcher: %w", err)
	}
	if _, err = services.NewNotificationRelay(bus, d); err != nil {
		return nil, fmt.Errorf("can't create notification relay: %w", err)
	}

	reevaluator, err := services.NewReevaluator(bus, engine, applications,
		cfg.Evaluation.Workers, cfg.Evaluation.MaxRunsPerSecond)
	if err != nil {
		return nil, fmt.Errorf("can't create reevaluator: %w", err)
	}

	return &app{
		cfg:         cfg,
		dbContext:   dbContext,
		bus:         bus,
		engine:      engine,
		machine:     machine,
		criteria:    services.NewCriteriaService(bus, criteriaRepo),
		reevaluator: reevaluator,
	}, nil
}

func newDispatcher(cfg config.NotifierConfig) (dispatcher, error) {
	templates := notifier.DefaultTemplates()
	if cfg.TelegramToken == "" {
		log.Info("telegram token is not set, notifications will only be logged")
		return notifier.NewLogDispatcher(templates), nil
	}
	return notifier.NewTelegramDispatcher(cfg.TelegramToken, cfg.MaxMessagesPerSecond, templates)
}

// close waits for pending notifications before releasing the database.
func (a *app) close() {
	a.reevaluator.Stop()
	a.bus.WaitAsync()
	if err := a.dbContext.Close(); err != nil {
		log.Errorf("failed to close db: %v", err)
	}
	logger.Cleanup()
}

func parseApplicationID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid application id %q", arg)
	}
	return id, nil
}

func printJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
