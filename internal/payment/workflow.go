// Package payment ведёт заказ от запроса оплаты через мобильные деньги до итогового статуса:
// инициирует платёж и опрашивает шлюз, пока не придёт итог или не истечёт время ожидания.
package payment

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iurnickita/bakery/internal/backend"
	"github.com/iurnickita/bakery/internal/payment/config"
	"github.com/iurnickita/bakery/internal/phone"
)

// Gateway: внешний платёжный API.
type Gateway interface {
	InitiatePayment(ctx context.Context, req backend.PaymentRequest) error
	PaymentStatus(ctx context.Context, orderID string) (backend.PaymentStatus, error)
}

type Request struct {
	OrderID     string
	OrderNumber string
	Phone       string
	Amount      decimal.Decimal
}

var (
	ErrInitiation    = errors.New("payment initiation failed")
	ErrCancelled     = errors.New("payment attempt cancelled")
	ErrInProgress    = errors.New("payment attempt in progress")
	ErrMissingOrder  = errors.New("order id is required")
	ErrInvalidAmount = errors.New("amount must be positive")
)

// ValidationError: ошибка входных данных, найденная до обращения к шлюзу.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// InitiationError: шлюз отклонил запрос на оплату.
// Message содержит текст шлюза как есть либо GenericInitiationMessage.
type InitiationError struct {
	Message string
	Err     error
}

func (e *InitiationError) Error() string {
	return e.Message
}

func (e *InitiationError) Unwrap() []error {
	return []error{ErrInitiation, e.Err}
}

// Workflow владеет одной попыткой оплаты. Состояние меняет только сам Workflow;
// снаружи доступны StartPayment, Cancel, Reset и чтение снимков.
//
// Таймер опроса и таймер общего ожидания останавливаются вместе при любом выходе из
// AwaitingConfirmation. Каждый обратный вызов помнит поколение попытки, для которого он
// был запланирован, и ничего не делает, если поколение сменилось.
type Workflow struct {
	cfg     config.Config
	gateway Gateway
	zaplog  *zap.Logger
	now     func() time.Time

	mu        sync.Mutex
	attempt   Attempt
	gen       uint64
	pollTimer *time.Timer
	deadline  *time.Timer
	cancelReq context.CancelFunc
	// неизвестный статус шлюза уже залогирован для этой попытки
	unknownLogged bool

	observers map[int]func(Attempt)
	nextObsID int
	// снимки в порядке смены состояния, ещё не доставленные наблюдателям
	pending    []Attempt
	delivering bool
}

func NewWorkflow(cfg config.Config, gateway Gateway, zaplog *zap.Logger) *Workflow {
	return &Workflow{
		cfg:       cfg,
		gateway:   gateway,
		zaplog:    zaplog,
		now:       time.Now,
		attempt:   Attempt{Status: StatusNotStarted},
		observers: make(map[int]func(Attempt)),
	}
}

// StartPayment проверяет номер телефона и запускает новую попытку оплаты.
// Предыдущая попытка, если она была, отменяется до начала новой.
// Возвращает *ValidationError без обращения к шлюзу или *InitiationError при отказе шлюза.
func (w *Workflow) StartPayment(ctx context.Context, req Request) error {
	if req.OrderID == "" {
		return &ValidationError{Field: "orderId", Err: ErrMissingOrder}
	}
	canonical, err := phone.Normalize(req.Phone)
	if err != nil {
		return &ValidationError{Field: "phone", Err: err}
	}
	if !req.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}

	w.mu.Lock()
	w.stopLocked()
	gen := w.gen
	w.attempt = Attempt{
		ID:          uuid.NewString(),
		OrderID:     req.OrderID,
		OrderNumber: req.OrderNumber,
		Phone:       canonical,
		Amount:      req.Amount,
		Status:      StatusSubmitting,
	}
	w.unknownLogged = false
	initCtx, cancel := context.WithCancel(ctx)
	w.cancelReq = cancel
	w.queueLocked()
	w.mu.Unlock()
	w.flush()

	err = w.gateway.InitiatePayment(initCtx, backend.PaymentRequest{
		OrderID: req.OrderID,
		Phone:   canonical,
		Amount:  req.Amount,
	})
	cancel()

	w.mu.Lock()
	if w.gen != gen {
		// попытку отменили или заменили, пока шёл запрос
		w.mu.Unlock()
		return ErrCancelled
	}
	w.cancelReq = nil

	if err != nil {
		msg := backend.MessageOf(err)
		if msg == "" {
			msg = GenericInitiationMessage
		}
		w.attempt.Status = StatusError
		w.attempt.Err = msg
		snap := w.queueLocked()
		w.mu.Unlock()

		w.zaplog.Error("payment initiation failed",
			zap.String("order", snap.OrderID),
			zap.String("attempt", snap.ID),
			zap.Error(err))
		w.flush()
		return &InitiationError{Message: msg, Err: err}
	}

	w.attempt.Status = StatusAwaitingConfirmation
	w.attempt.StartedAt = w.now()
	// опрос переживает запрос клиента, но сохраняет его значения (токен бэкенда)
	pollCtx, pollCancel := context.WithCancel(context.WithoutCancel(ctx))
	w.cancelReq = pollCancel
	w.pollTimer = time.AfterFunc(w.cfg.PollInterval, func() { w.tick(pollCtx, gen) })
	w.deadline = time.AfterFunc(w.cfg.Timeout, func() { w.expire(gen) })
	snap := w.queueLocked()
	w.mu.Unlock()

	w.zaplog.Info("payment initiated, awaiting confirmation",
		zap.String("order", snap.OrderID),
		zap.String("attempt", snap.ID),
		zap.String("phone", snap.Phone),
		zap.String("amount", snap.Amount.StringFixed(2)))
	w.flush()
	return nil
}

// tick: одна проверка статуса. Следующая проверка планируется только после того,
// как завершилась текущая, поэтому к шлюзу не бывает двух одновременных запросов.
func (w *Workflow) tick(ctx context.Context, gen uint64) {
	w.mu.Lock()
	if w.gen != gen {
		w.mu.Unlock()
		return
	}
	if w.expiredLocked() {
		snap := w.finishLocked(StatusTimedOut)
		w.mu.Unlock()
		w.settled(snap)
		return
	}
	w.attempt.Polls++
	orderID := w.attempt.OrderID
	attemptID := w.attempt.ID
	w.mu.Unlock()

	answer, err := w.checkStatus(ctx, orderID)

	w.mu.Lock()
	if w.gen != gen {
		w.mu.Unlock()
		return
	}

	next := StatusAwaitingConfirmation
	switch {
	case err != nil:
		// временная ошибка: пропускаем, опрос продолжается
		w.zaplog.Warn("payment status check failed",
			zap.String("order", orderID),
			zap.String("attempt", attemptID),
			zap.Error(err))
	case answer.Status == backend.PaymentStatusCompleted:
		next = StatusCompleted
	case answer.Status == backend.PaymentStatusFailed:
		next = StatusFailed
	case !isPending(answer.Status) && !w.unknownLogged:
		w.unknownLogged = true
		w.zaplog.Warn("unrecognized payment status, treating as pending",
			zap.String("order", orderID),
			zap.String("attempt", attemptID),
			zap.String("status", answer.Status),
			zap.Bool("verified", answer.Verified))
	}
	if next == StatusAwaitingConfirmation && w.expiredLocked() {
		next = StatusTimedOut
	}

	if next.Terminal() {
		snap := w.finishLocked(next)
		w.mu.Unlock()
		w.settled(snap)
		return
	}
	w.pollTimer.Reset(w.cfg.PollInterval)
	w.mu.Unlock()
}

// expire срабатывает по таймеру общего ожидания.
func (w *Workflow) expire(gen uint64) {
	w.mu.Lock()
	if w.gen != gen || w.attempt.Status != StatusAwaitingConfirmation {
		w.mu.Unlock()
		return
	}
	snap := w.finishLocked(StatusTimedOut)
	w.mu.Unlock()
	w.settled(snap)
}

// checkStatus считает панику при проверке временной ошибкой.
func (w *Workflow) checkStatus(ctx context.Context, orderID string) (answer backend.PaymentStatus, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("payment status check panic: %v", r)
		}
	}()
	return w.gateway.PaymentStatus(ctx, orderID)
}

// Cancel бросает текущую попытку: останавливает оба таймера и запрос к шлюзу.
// Статус не меняется; ответы, пришедшие после отмены, игнорируются.
func (w *Workflow) Cancel() {
	w.mu.Lock()
	if w.attempt.Status.Terminal() || !w.activeLocked() {
		w.mu.Unlock()
		return
	}
	w.stopLocked()
	snap := w.queueLocked()
	w.mu.Unlock()

	w.zaplog.Info("payment attempt cancelled",
		zap.String("order", snap.OrderID),
		zap.String("attempt", snap.ID),
		zap.Stringer("status", snap.Status))
	w.flush()
}

// Reset возвращает процесс в NotStarted. Активную попытку нужно сначала отменить.
func (w *Workflow) Reset() error {
	w.mu.Lock()
	if w.activeLocked() {
		w.mu.Unlock()
		return ErrInProgress
	}
	w.stopLocked()
	w.attempt = Attempt{Status: StatusNotStarted}
	w.queueLocked()
	w.mu.Unlock()
	w.flush()
	return nil
}

func (w *Workflow) Snapshot() Attempt {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

// Subscribe регистрирует наблюдателя за сменой состояния. Наблюдатель вызывается
// без удержания блокировок и может вызывать методы Workflow.
func (w *Workflow) Subscribe(fn func(Attempt)) (unsubscribe func()) {
	w.mu.Lock()
	id := w.nextObsID
	w.nextObsID++
	w.observers[id] = fn
	w.mu.Unlock()

	return func() {
		w.mu.Lock()
		delete(w.observers, id)
		w.mu.Unlock()
	}
}

// queueLocked ставит текущий снимок в очередь доставки. Очередь пополняется под той же
// блокировкой, что и меняется состояние, поэтому порядок снимков совпадает с порядком переходов.
func (w *Workflow) queueLocked() Attempt {
	snap := w.snapshotLocked()
	w.pending = append(w.pending, snap)
	return snap
}

// flush доставляет очередь наблюдателям. Доставляет одна горутина за раз: остальные только
// пополняют очередь и выходят, так что наблюдатель видит снимки по порядку и последним
// получает текущее состояние.
func (w *Workflow) flush() {
	w.mu.Lock()
	if w.delivering {
		w.mu.Unlock()
		return
	}
	w.delivering = true
	for len(w.pending) > 0 {
		batch := w.pending
		w.pending = nil
		observers := make([]func(Attempt), 0, len(w.observers))
		for _, id := range slices.Sorted(maps.Keys(w.observers)) {
			observers = append(observers, w.observers[id])
		}
		w.mu.Unlock()

		for _, snap := range batch {
			for _, fn := range observers {
				fn(snap)
			}
		}
		w.mu.Lock()
	}
	w.delivering = false
	w.mu.Unlock()
}

func (w *Workflow) settled(snap Attempt) {
	w.zaplog.Info("payment attempt finished",
		zap.String("order", snap.OrderID),
		zap.String("attempt", snap.ID),
		zap.Stringer("status", snap.Status),
		zap.Int("polls", snap.Polls))
	w.flush()
}

func (w *Workflow) finishLocked(status Status) Attempt {
	w.attempt.Status = status
	w.stopLocked()
	return w.queueLocked()
}

// stopLocked останавливает оба таймера, отменяет запрос к шлюзу и меняет поколение,
// после чего все ранее запланированные обратные вызовы становятся пустыми.
func (w *Workflow) stopLocked() {
	w.gen++
	if w.pollTimer != nil {
		w.pollTimer.Stop()
		w.pollTimer = nil
	}
	if w.deadline != nil {
		w.deadline.Stop()
		w.deadline = nil
	}
	if w.cancelReq != nil {
		w.cancelReq()
		w.cancelReq = nil
	}
}

func (w *Workflow) activeLocked() bool {
	return w.pollTimer != nil || w.deadline != nil || w.cancelReq != nil
}

func (w *Workflow) expiredLocked() bool {
	return w.now().Sub(w.attempt.StartedAt) > w.cfg.Timeout
}

func (w *Workflow) snapshotLocked() Attempt {
	snap := w.attempt
	snap.Active = w.activeLocked()
	return snap
}

// Статусы, которые шлюз присылает, пока плательщик не подтвердил оплату
func isPending(status string) bool {
	switch strings.ToLower(status) {
	case "", "pending", "processing", "initiated", "queued":
		return true
	default:
		return false
	}
}
