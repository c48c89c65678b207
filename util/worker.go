package util

import (
	"sync"

	"github.com/renoribeiro/whatsapp-automation-v0-sub000/logger"
	"go.uber.org/zap"
)

type Job any

// Worker is a bounded pool of goroutines draining a shared job channel.
// Handler errors are logged, never propagated; one failing job does not
// affect the others.
type Worker struct {
	name     string
	size     int
	stop     chan struct{}
	wg       *sync.WaitGroup
	handler  func(Job) error
	jobChan  chan Job
	stopOnce sync.Once
}

func NewWorker(name string, wg *sync.WaitGroup, handler func(Job) error, size int, capacity int) *Worker {
	return &Worker{
		name:    name,
		size:    size,
		stop:    make(chan struct{}),
		wg:      wg,
		handler: handler,
		jobChan: make(chan Job, capacity),
	}
}

func (w *Worker) Start() {
	for i := 0; i < w.size; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for {
				select {
				case job := <-w.jobChan:
					err := w.handler(job)
					if err != nil {
						logger.Error("error executing job in worker", zap.String("worker", w.name), zap.Error(err))
					}
				case <-w.stop:
					logger.Info("stopping worker", zap.String("worker", w.name))
					return
				}
			}
		}()
	}
}

func (w *Worker) Sender() chan<- Job {
	return w.jobChan
}

func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
	})
}
