package dispatch

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/logger"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/model"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/persistence"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/util"
	"go.uber.org/zap"
)

const QUEUE_NAME string = "dispatch"

// Enqueuer is the narrow producer-side view of the Dispatcher, injected into
// everything that creates jobs.
type Enqueuer interface {
	Enqueue(job model.DispatchJob) error
	EnqueueWithDelay(job model.DispatchJob, delay time.Duration) error
}

type JobHandler func(job model.DispatchJob) error

// Dispatcher is the asynchronous, retryable job runner. Jobs live in a redis
// list; delayed and retried jobs wait in a redis sorted set until due, then
// are promoted back onto the list. A bounded worker pool drains the list.
type Dispatcher struct {
	queue        persistence.Queue
	delayQueue   persistence.DelayQueue
	encDec       util.EncoderDecoder[model.DispatchJob]
	handlers     map[model.JobType]JobHandler
	worker       *util.Worker
	wg           *sync.WaitGroup
	stopPoll     chan struct{}
	stopPromote  chan struct{}
	batchSize    int
	maxAttempts  int
	baseBackoff  time.Duration
	pollInterval time.Duration
}

var _ Enqueuer = new(Dispatcher)

type Options struct {
	WorkerCount  int
	Capacity     int
	BatchSize    int
	MaxAttempts  int
	BaseBackoff  time.Duration
	PollInterval time.Duration
}

func NewDispatcher(queue persistence.Queue, delayQueue persistence.DelayQueue, opts Options, wg *sync.WaitGroup) *Dispatcher {
	if opts.WorkerCount <= 0 {
		opts.WorkerCount = 16
	}
	if opts.Capacity <= 0 {
		opts.Capacity = 512
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 32
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.BaseBackoff <= 0 {
		opts.BaseBackoff = 2 * time.Second
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	d := &Dispatcher{
		queue:        queue,
		delayQueue:   delayQueue,
		encDec:       util.NewJsonEncoderDecoder[model.DispatchJob](),
		handlers:     make(map[model.JobType]JobHandler),
		wg:           wg,
		stopPoll:     make(chan struct{}),
		stopPromote:  make(chan struct{}),
		batchSize:    opts.BatchSize,
		maxAttempts:  opts.MaxAttempts,
		baseBackoff:  opts.BaseBackoff,
		pollInterval: opts.PollInterval,
	}
	d.worker = util.NewWorker("dispatch-worker", wg, d.handle, opts.WorkerCount, opts.Capacity)
	return d
}

func (d *Dispatcher) RegisterHandler(jobType model.JobType, handler JobHandler) {
	d.handlers[jobType] = handler
}

func (d *Dispatcher) Enqueue(job model.DispatchJob) error {
	data, err := d.prepare(&job)
	if err != nil {
		return err
	}
	return d.queue.Push(QUEUE_NAME, data)
}

func (d *Dispatcher) EnqueueWithDelay(job model.DispatchJob, delay time.Duration) error {
	data, err := d.prepare(&job)
	if err != nil {
		return err
	}
	return d.delayQueue.PushWithDelay(QUEUE_NAME, delay, data)
}

func (d *Dispatcher) prepare(job *model.DispatchJob) ([]byte, error) {
	if job.Id == "" {
		job.Id = uuid.New().String()
	}
	if job.Attempt == 0 {
		job.Attempt = 1
	}
	return d.encDec.Encode(*job)
}

func (d *Dispatcher) Start() error {
	d.worker.Start()
	poll := util.NewTickWorker("dispatch-poller", d.pollInterval, d.stopPoll, d.PollOnce, d.wg)
	poll.Start()
	promote := util.NewTickWorker("dispatch-promoter", d.pollInterval, d.stopPromote, d.PromoteOnce, d.wg)
	promote.Start()
	logger.Info("dispatcher started")
	return nil
}

func (d *Dispatcher) Stop() error {
	d.stopPoll <- struct{}{}
	d.stopPromote <- struct{}{}
	d.worker.Stop()
	return nil
}

// PollOnce moves one batch from the queue into the worker pool.
func (d *Dispatcher) PollOnce() {
	items, err := d.queue.Pop(QUEUE_NAME, d.batchSize)
	if err != nil {
		logger.Error("error while polling dispatch queue", zap.Error(err))
		return
	}
	for _, item := range items {
		job, err := d.encDec.Decode([]byte(item))
		if err != nil {
			logger.Error("can not decode dispatch job", zap.Error(err))
			continue
		}
		d.worker.Sender() <- *job
	}
}

// PromoteOnce drains due members of the delay queue onto the main queue.
func (d *Dispatcher) PromoteOnce() {
	items, err := d.delayQueue.Pop(QUEUE_NAME)
	if err != nil {
		logger.Error("error while polling delay queue", zap.Error(err))
		return
	}
	for _, item := range items {
		if err := d.queue.Push(QUEUE_NAME, []byte(item)); err != nil {
			logger.Error("error promoting delayed job", zap.Error(err))
		}
	}
}

func (d *Dispatcher) handle(j util.Job) error {
	job, ok := j.(model.DispatchJob)
	if !ok {
		return fmt.Errorf("can not handle job of type other than model.DispatchJob")
	}
	return d.Process(job)
}

// Process runs one attempt of a job. A failed attempt is re-enqueued with
// exponential backoff until the attempt budget is exhausted; the final
// failure is logged and the job abandoned.
func (d *Dispatcher) Process(job model.DispatchJob) error {
	handler, ok := d.handlers[job.Type]
	if !ok {
		logger.Error("no handler for job type", zap.String("job", job.Id), zap.String("type", string(job.Type)))
		return nil
	}
	err := handler(job)
	if err == nil {
		return nil
	}
	if job.Attempt >= d.maxAttempts {
		logger.Error("job abandoned after final attempt",
			zap.String("job", job.Id), zap.String("type", string(job.Type)),
			zap.Int("attempts", job.Attempt), zap.Error(err))
		return nil
	}
	backoff := d.Backoff(job.Attempt)
	logger.Warn("job attempt failed, retrying",
		zap.String("job", job.Id), zap.String("type", string(job.Type)),
		zap.Int("attempt", job.Attempt), zap.Duration("backoff", backoff), zap.Error(err))
	job.Attempt++
	data, encErr := d.encDec.Encode(job)
	if encErr != nil {
		return encErr
	}
	return d.delayQueue.PushWithDelay(QUEUE_NAME, backoff, data)
}

// Backoff returns the delay before the attempt following attempt n:
// base * 2^(n-1).
func (d *Dispatcher) Backoff(attempt int) time.Duration {
	backoff := d.baseBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	return backoff
}
