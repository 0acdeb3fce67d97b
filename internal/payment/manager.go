package payment

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iurnickita/bakery/internal/payment/config"
)

var ErrNoAttempt = errors.New("no payment attempt for order")

// Manager держит по одному Workflow на заказ, так что на заказ всегда не больше одной
// активной попытки. Завершённые и брошенные попытки удаляются через cfg.Retention.
type Manager struct {
	cfg     config.Config
	gateway Gateway
	zaplog  *zap.Logger
	now     func() time.Time

	mu        sync.Mutex
	workflows map[string]*managed
	observers []func(Attempt)
}

type managed struct {
	workflow  *Workflow
	changedAt time.Time
}

func NewManager(cfg config.Config, gateway Gateway, zaplog *zap.Logger) *Manager {
	return &Manager{
		cfg:       cfg,
		gateway:   gateway,
		zaplog:    zaplog,
		now:       time.Now,
		workflows: make(map[string]*managed),
	}
}

// OnChange регистрирует наблюдателя за попытками всех заказов.
func (m *Manager) OnChange(fn func(Attempt)) {
	m.mu.Lock()
	m.observers = append(m.observers, fn)
	m.mu.Unlock()
}

// Start запускает оплату заказа. Если по заказу уже была попытка, она отменяется.
func (m *Manager) Start(ctx context.Context, req Request) error {
	m.mu.Lock()
	m.pruneLocked()
	entry, ok := m.workflows[req.OrderID]
	if !ok {
		entry = m.newEntryLocked(req.OrderID)
	}
	entry.changedAt = m.now()
	workflow := entry.workflow
	m.mu.Unlock()

	return workflow.StartPayment(ctx, req)
}

func (m *Manager) Snapshot(orderID string) (Attempt, error) {
	m.mu.Lock()
	m.pruneLocked()
	entry, ok := m.workflows[orderID]
	m.mu.Unlock()
	if !ok {
		return Attempt{}, ErrNoAttempt
	}
	return entry.workflow.Snapshot(), nil
}

func (m *Manager) Cancel(orderID string) error {
	workflow, err := m.lookup(orderID)
	if err != nil {
		return err
	}
	workflow.Cancel()
	return nil
}

func (m *Manager) Reset(orderID string) error {
	workflow, err := m.lookup(orderID)
	if err != nil {
		return err
	}
	return workflow.Reset()
}

// Close отменяет все активные попытки.
func (m *Manager) Close() {
	m.mu.Lock()
	workflows := make([]*Workflow, 0, len(m.workflows))
	for _, entry := range m.workflows {
		workflows = append(workflows, entry.workflow)
	}
	m.mu.Unlock()

	for _, workflow := range workflows {
		workflow.Cancel()
	}
}

func (m *Manager) lookup(orderID string) (*Workflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.workflows[orderID]
	if !ok {
		return nil, ErrNoAttempt
	}
	return entry.workflow, nil
}

func (m *Manager) newEntryLocked(orderID string) *managed {
	workflow := NewWorkflow(m.cfg, m.gateway, m.zaplog)
	workflow.now = m.now
	entry := &managed{workflow: workflow}
	m.workflows[orderID] = entry

	workflow.Subscribe(func(a Attempt) {
		m.mu.Lock()
		entry.changedAt = m.now()
		observers := append([]func(Attempt){}, m.observers...)
		m.mu.Unlock()

		for _, fn := range observers {
			fn(a)
		}
	})
	return entry
}

func (m *Manager) pruneLocked() {
	if m.cfg.Retention <= 0 {
		return
	}
	now := m.now()
	for orderID, entry := range m.workflows {
		if now.Sub(entry.changedAt) < m.cfg.Retention {
			continue
		}
		if entry.workflow.Snapshot().Active {
			continue
		}
		delete(m.workflows, orderID)
	}
}
