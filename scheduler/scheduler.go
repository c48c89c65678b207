package scheduler

import (
	"sync"
	"time"

	"github.com/renoribeiro/whatsapp-automation-v0-sub000/dispatch"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/logger"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/model"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/persistence"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/util"
	"go.uber.org/zap"
)

const DEFAULT_INTERVAL_MINUTES int = 60
const CONTACT_BATCH_LIMIT int = 100

// Scheduler re-evaluates time_based triggers on a fixed tick. A due flow is
// fanned out as one execute-flow job per matching contact, capped per tick.
// One failing flow does not block the others.
type Scheduler struct {
	definitions persistence.DefinitionStore
	contacts    persistence.ContactStore
	lastRuns    persistence.SchedulerStore
	dispatcher  dispatch.Enqueuer
	interval    time.Duration
	now         func() time.Time
	stop        chan struct{}
	wg          *sync.WaitGroup
}

func NewScheduler(definitions persistence.DefinitionStore, contacts persistence.ContactStore,
	lastRuns persistence.SchedulerStore, dispatcher dispatch.Enqueuer,
	interval time.Duration, wg *sync.WaitGroup) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		definitions: definitions,
		contacts:    contacts,
		lastRuns:    lastRuns,
		dispatcher:  dispatcher,
		interval:    interval,
		now:         time.Now,
		stop:        make(chan struct{}),
		wg:          wg,
	}
}

func (s *Scheduler) Name() string {
	return "time-trigger-scheduler"
}

func (s *Scheduler) Start() error {
	tw := util.NewTickWorker(s.Name(), s.interval, s.stop, s.Tick, s.wg)
	tw.Start()
	return nil
}

func (s *Scheduler) Stop() error {
	s.stop <- struct{}{}
	return nil
}

func (s *Scheduler) Tick() {
	tenants, err := s.definitions.ListTenants()
	if err != nil {
		logger.Error("error listing tenants for time triggers", zap.Error(err))
		return
	}
	for _, tenant := range tenants {
		defs, err := s.definitions.ListActiveByTrigger(tenant, model.TRIGGER_TIME_BASED)
		if err != nil {
			logger.Error("error loading time-based flows", zap.String("tenant", tenant), zap.Error(err))
			continue
		}
		for _, def := range defs {
			if err := s.evaluate(def); err != nil {
				logger.Error("error evaluating time-based flow", zap.String("flow", def.Id), zap.Error(err))
			}
		}
	}
}

// Due reports whether the flow's interval has elapsed since its last run.
// Flows without a configured interval run hourly.
func (s *Scheduler) Due(def model.FlowDefinition, lastExecution time.Time) bool {
	minutes := def.Trigger.Data.IntervalMinutes
	if minutes <= 0 {
		minutes = DEFAULT_INTERVAL_MINUTES
	}
	return s.now().Sub(lastExecution) >= time.Duration(minutes)*time.Minute
}

func (s *Scheduler) evaluate(def model.FlowDefinition) error {
	lastExecution, err := s.lastRuns.LastExecution(def.Id)
	if err != nil {
		return err
	}
	if !s.Due(def, lastExecution) {
		return nil
	}
	tick := s.now()
	filter := model.ContactFilter{
		TagIds:     def.Trigger.Data.TagIds,
		LeadSource: def.Trigger.Data.LeadSource,
	}
	contacts, err := s.contacts.ListByFilter(def.TenantId, filter, CONTACT_BATCH_LIMIT)
	if err != nil {
		return err
	}
	for _, contact := range contacts {
		err := s.dispatcher.Enqueue(model.DispatchJob{
			Type: model.JOB_EXECUTE_FLOW,
			ExecuteFlow: &model.ExecuteFlowJob{
				TenantId:  def.TenantId,
				FlowId:    def.Id,
				ContactId: contact.Id,
				TriggerData: map[string]any{
					"tick": tick.Format(time.RFC3339),
				},
			},
		})
		if err != nil {
			logger.Error("error enqueueing time-triggered flow",
				zap.String("flow", def.Id), zap.String("contact", contact.Id), zap.Error(err))
		}
	}
	return s.lastRuns.SetLastExecution(def.Id, tick)
}
