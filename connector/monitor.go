package connector

import (
	"context"
	"sync"
	"time"

	"github.com/renoribeiro/whatsapp-automation-v0-sub000/logger"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/model"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/persistence"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/util"
	"go.uber.org/zap"
)

// Monitor periodically polls every connection's backend status and persists
// the result. One failing connection does not block the others.
type Monitor struct {
	connections persistence.ConnectionStore
	registry    *Registry
	interval    time.Duration
	stop        chan struct{}
	wg          *sync.WaitGroup
	tw          *util.TickWorker
}

func NewMonitor(connections persistence.ConnectionStore, registry *Registry, interval time.Duration, wg *sync.WaitGroup) *Monitor {
	return &Monitor{
		connections: connections,
		registry:    registry,
		interval:    interval,
		stop:        make(chan struct{}),
		wg:          wg,
	}
}

func (m *Monitor) Name() string {
	return "connection-monitor"
}

func (m *Monitor) Start() error {
	m.tw = util.NewTickWorker(m.Name(), m.interval, m.stop, m.Tick, m.wg)
	m.tw.Start()
	return nil
}

func (m *Monitor) Stop() error {
	m.stop <- struct{}{}
	return nil
}

func (m *Monitor) Tick() {
	connections, err := m.connections.List()
	if err != nil {
		logger.Error("error listing connections for status check", zap.Error(err))
		return
	}
	for _, connection := range connections {
		m.check(connection)
	}
}

func (m *Monitor) check(connection model.Connection) {
	conn, err := m.registry.Get(connection.Kind)
	if err != nil {
		logger.Error("unknown connector kind", zap.String("connection", connection.Id), zap.String("kind", string(connection.Kind)))
		return
	}
	status, err := conn.Status(context.Background(), connection.Identity)
	if err != nil {
		logger.Error("connection status check failed", zap.String("connection", connection.Id), zap.Error(err))
	}
	err = m.connections.UpdateStatus(connection.TenantId, connection.Id, status, time.Now())
	if err != nil {
		logger.Error("error persisting connection status", zap.String("connection", connection.Id), zap.Error(err))
	}
}
