package services

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/lilhop36/osta-job-portal-sub001/internal/entities"
	"github.com/lilhop36/osta-job-portal-sub001/internal/events"
	"github.com/lilhop36/osta-job-portal-sub001/internal/logger"
	"github.com/lilhop36/osta-job-portal-sub001/internal/metrics"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"sync"
	"sync/atomic"
	"time"
)

// reevaluatedStatuses are the statuses whose eligibility can still matter.
var reevaluatedStatuses = []entities.ApplicationStatus{
	entities.StatusDraft,
	entities.StatusSubmitted,
	entities.StatusUnderReview,
	entities.StatusShortlisted,
	entities.StatusInterviewScheduled,
}

type eligibilityRunner interface {
	RunEligibilityCheck(ctx context.Context, applicationID int64) (*EligibilitySummary, error)
}

type applicationLister interface {
	GetIDsByStatuses(ctx context.Context, statuses []entities.ApplicationStatus, afterID int64, limit int) ([]int64, error)
}

type ReevaluationReport struct {
	Total  int
	Failed int
}

// Reevaluator re-runs eligibility checks of open applications, on a schedule
// and whenever criteria change.
type Reevaluator struct {
	engine       eligibilityRunner
	applications applicationLister
	workers      int
	limiter      *rate.Limiter
	pageSize     int
	cron         *cron.Cron
	mu           sync.Mutex
	running      bool
	rerun        bool
}

func NewReevaluator(bus EventBus.Bus, engine eligibilityRunner, applications applicationLister,
	workers int, maxRunsPerSecond float32) (*Reevaluator, error) {

	if workers <= 0 {
		return nil, errors.New("workers must be greater than zero")
	}
	if maxRunsPerSecond <= 0 {
		return nil, errors.New("max runs per second must be greater than zero")
	}

	r := &Reevaluator{
		engine:       engine,
		applications: applications,
		workers:      workers,
		limiter:      rate.NewLimiter(rate.Limit(maxRunsPerSecond), 1),
		pageSize:     100,
	}

	if err := bus.SubscribeAsync(events.CriteriaChangedTopic, r.onCriteriaChanged, false); err != nil {
		return nil, err
	}
	return r, nil
}

// Schedule starts running RunAll on the given standard cron spec.
func (r *Reevaluator) Schedule(spec string) error {
	r.cron = cron.New()
	if _, err := r.cron.AddFunc(spec, r.trigger); err != nil {
		return err
	}
	r.cron.Start()
	log.Infof("eligibility reevaluation scheduled: %s", spec)
	return nil
}

func (r *Reevaluator) Stop() {
	if r.cron != nil {
		<-r.cron.Stop().Done()
	}
}

// RunAll checks every open application once. Failures of single applications
// are logged and counted; only listing failures abort the run.
func (r *Reevaluator) RunAll(ctx context.Context) (ReevaluationReport, error) {

	start := time.Now()
	log.Infof("running eligibility reevaluation at %v", start)

	var total, failed atomic.Int64
	var afterID int64

	for {
		ids, err := r.applications.GetIDsByStatuses(ctx, reevaluatedStatuses, afterID, r.pageSize)
		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to list applications: %v", err)
			return r.report(&total, &failed), errors.Wrap(err, "failed to list applications")
		}
		if len(ids) == 0 {
			break
		}

		g, groupCtx := errgroup.WithContext(ctx)
		g.SetLimit(r.workers)
		for _, id := range ids {
			id := id
			g.Go(func() error {
				if err := r.limiter.Wait(groupCtx); err != nil {
					return err
				}
				total.Add(1)
				if _, err := r.engine.RunEligibilityCheck(groupCtx, id); err != nil {
					failed.Add(1)
					log.Errorf("failed to reevaluate application %d: %v", id, err)
				}
				return nil
			})
		}
		if err = g.Wait(); err != nil {
			return r.report(&total, &failed), err
		}

		afterID = ids[len(ids)-1]
	}

	report := r.report(&total, &failed)
	metrics.ReevaluationDuration.Observe(time.Since(start).Seconds())
	log.Infof("reevaluation ended after %v: %d applications, %d failed", time.Since(start), report.Total, report.Failed)
	return report, nil
}

func (r *Reevaluator) report(total, failed *atomic.Int64) ReevaluationReport {
	return ReevaluationReport{Total: int(total.Load()), Failed: int(failed.Load())}
}

func (r *Reevaluator) onCriteriaChanged(event events.CriteriaChanged) {
	log.Infof("criteria %v changed, reevaluating open applications", event.CriteriaIDs)
	r.trigger()
}

// trigger runs RunAll unless a run is in progress, in which case one more run
// follows the current one.
func (r *Reevaluator) trigger() {
	r.mu.Lock()
	if r.running {
		r.rerun = true
		r.mu.Unlock()
		return
	}
	r.running = true
	r.mu.Unlock()

	for {
		if _, err := r.RunAll(context.Background()); err != nil {
			log.Errorf("reevaluation failed: %v", err)
		}

		r.mu.Lock()
		if !r.rerun {
			r.running = false
			r.mu.Unlock()
			return
		}
		r.rerun = false
		r.mu.Unlock()
	}
}
