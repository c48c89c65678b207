package dispatch

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/renoribeiro/whatsapp-automation-v0-sub000/model"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/util"
	"github.com/stretchr/testify/require"
)

type memQueue struct {
	items [][]byte
}

func (q *memQueue) Push(queueName string, message []byte) error {
	q.items = append(q.items, message)
	return nil
}

func (q *memQueue) Pop(queueName string, batchSize int) ([]string, error) {
	n := batchSize
	if n > len(q.items) {
		n = len(q.items)
	}
	var out []string
	for _, item := range q.items[:n] {
		out = append(out, string(item))
	}
	q.items = q.items[n:]
	return out, nil
}

type delayedItem struct {
	delay time.Duration
	data  []byte
}

type memDelayQueue struct {
	items []delayedItem
}

func (q *memDelayQueue) PushWithDelay(queueName string, delay time.Duration, message []byte) error {
	q.items = append(q.items, delayedItem{delay: delay, data: message})
	return nil
}

// Pop drains everything regardless of due time; tests control promotion.
func (q *memDelayQueue) Pop(queueName string) ([]string, error) {
	var out []string
	for _, item := range q.items {
		out = append(out, string(item.data))
	}
	q.items = nil
	return out, nil
}

func newTestDispatcher(opts Options) (*Dispatcher, *memQueue, *memDelayQueue) {
	queue := &memQueue{}
	delayQueue := &memDelayQueue{}
	var wg sync.WaitGroup
	return NewDispatcher(queue, delayQueue, opts, &wg), queue, delayQueue
}

func decodeJob(t *testing.T, data string) model.DispatchJob {
	t.Helper()
	encDec := util.NewJsonEncoderDecoder[model.DispatchJob]()
	job, err := encDec.Decode([]byte(data))
	require.NoError(t, err)
	return *job
}

func TestEnqueue(t *testing.T) {
	d, queue, delayQueue := newTestDispatcher(Options{})

	err := d.Enqueue(model.DispatchJob{Type: model.JOB_EXECUTE_FLOW, ExecuteFlow: &model.ExecuteFlowJob{FlowId: "f-1"}})
	require.NoError(t, err)
	require.Len(t, queue.items, 1)

	job := decodeJob(t, string(queue.items[0]))
	require.NotEmpty(t, job.Id)
	require.Equal(t, 1, job.Attempt)
	require.Equal(t, "f-1", job.ExecuteFlow.FlowId)

	err = d.EnqueueWithDelay(model.DispatchJob{Type: model.JOB_SEND_SCHEDULED}, time.Minute)
	require.NoError(t, err)
	require.Len(t, delayQueue.items, 1)
	require.Equal(t, time.Minute, delayQueue.items[0].delay)
}

func TestBackoff(t *testing.T) {
	d, _, _ := newTestDispatcher(Options{BaseBackoff: 2 * time.Second})
	require.Equal(t, 2*time.Second, d.Backoff(1))
	require.Equal(t, 4*time.Second, d.Backoff(2))
	require.Equal(t, 8*time.Second, d.Backoff(3))
}

func TestProcess(t *testing.T) {
	for scenario, fn := range map[string]func(t *testing.T){
		"successful attempt queues nothing": func(t *testing.T) {
			d, queue, delayQueue := newTestDispatcher(Options{})
			d.RegisterHandler(model.JOB_EXECUTE_FLOW, func(job model.DispatchJob) error { return nil })

			err := d.Process(model.DispatchJob{Id: "j-1", Type: model.JOB_EXECUTE_FLOW, Attempt: 1})
			require.NoError(t, err)
			require.Empty(t, queue.items)
			require.Empty(t, delayQueue.items)
		},
		"failed attempt is re-enqueued with backoff": func(t *testing.T) {
			d, _, delayQueue := newTestDispatcher(Options{MaxAttempts: 3, BaseBackoff: 2 * time.Second})
			d.RegisterHandler(model.JOB_EXECUTE_FLOW, func(job model.DispatchJob) error {
				return errors.New("boom")
			})

			err := d.Process(model.DispatchJob{Id: "j-1", Type: model.JOB_EXECUTE_FLOW, Attempt: 1})
			require.NoError(t, err)
			require.Len(t, delayQueue.items, 1)
			require.Equal(t, 2*time.Second, delayQueue.items[0].delay)

			retry := decodeJob(t, string(delayQueue.items[0].data))
			require.Equal(t, "j-1", retry.Id)
			require.Equal(t, 2, retry.Attempt)

			err = d.Process(retry)
			require.NoError(t, err)
			require.Len(t, delayQueue.items, 2)
			require.Equal(t, 4*time.Second, delayQueue.items[1].delay)
		},
		"final attempt abandons the job": func(t *testing.T) {
			d, _, delayQueue := newTestDispatcher(Options{MaxAttempts: 3})
			calls := 0
			d.RegisterHandler(model.JOB_EXECUTE_FLOW, func(job model.DispatchJob) error {
				calls++
				return errors.New("boom")
			})

			err := d.Process(model.DispatchJob{Id: "j-1", Type: model.JOB_EXECUTE_FLOW, Attempt: 3})
			require.NoError(t, err)
			require.Equal(t, 1, calls)
			require.Empty(t, delayQueue.items)
		},
		"missing handler drops the job": func(t *testing.T) {
			d, _, delayQueue := newTestDispatcher(Options{})
			err := d.Process(model.DispatchJob{Id: "j-1", Type: "unknown-type", Attempt: 1})
			require.NoError(t, err)
			require.Empty(t, delayQueue.items)
		},
	} {
		t.Run(scenario, fn)
	}
}

func TestPromoteOnce(t *testing.T) {
	d, queue, delayQueue := newTestDispatcher(Options{})
	require.NoError(t, d.EnqueueWithDelay(model.DispatchJob{Type: model.JOB_SEND_SCHEDULED}, time.Second))
	require.Empty(t, queue.items)

	d.PromoteOnce()
	require.Empty(t, delayQueue.items)
	require.Len(t, queue.items, 1)
}

func TestPollOnce(t *testing.T) {
	d, queue, _ := newTestDispatcher(Options{Capacity: 8, BatchSize: 2})
	for i := 0; i < 3; i++ {
		require.NoError(t, d.Enqueue(model.DispatchJob{Type: model.JOB_EXECUTE_FLOW}))
	}

	d.PollOnce()
	// batch size caps one poll; the rest stays queued
	require.Len(t, queue.items, 1)
	require.Len(t, d.worker.Sender(), 2)
}
