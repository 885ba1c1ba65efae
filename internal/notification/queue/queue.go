package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/luciodale/booking-portal-sub002/internal/notification/domain"
	"go.uber.org/zap"
)

const (
	QueueName   = "notifications"
	maxRetry    = 8
	taskTimeout = 30 * time.Second
)

// TaskID keys the task by booking so a second enqueue for the same booking
// is rejected by the broker.
func TaskID(n domain.Notice) string {
	return "booking-confirmed:" + n.BookingID.String()
}

func NewConfirmedTask(n domain.Notice) (*asynq.Task, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(domain.TaskTypeBookingConfirmed, payload,
		asynq.TaskID(TaskID(n)),
		asynq.Queue(QueueName),
		asynq.MaxRetry(maxRetry),
		asynq.Timeout(taskTimeout),
	), nil
}

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Notifier hands notices to the worker through redis.
type Notifier struct {
	client enqueuer
	log    *zap.Logger
}

func NewNotifier(client *asynq.Client, log *zap.Logger) *Notifier {
	return &Notifier{client: client, log: log.Named("notification.queue")}
}

func (q *Notifier) NotifyConfirmed(ctx context.Context, n domain.Notice) error {
	task, err := NewConfirmedTask(n)
	if err != nil {
		return err
	}
	info, err := q.client.EnqueueContext(ctx, task)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
			q.log.Debug("confirmation notice already queued", zap.String("booking_id", n.BookingID.String()))
			return nil
		}
		return err
	}
	q.log.Info("confirmation notice queued",
		zap.String("booking_id", n.BookingID.String()),
		zap.String("task_id", info.ID))
	return nil
}

// Handler delivers queued notices. Delivery errors are returned so asynq
// retries with backoff; malformed payloads are dropped.
type Handler struct {
	sender domain.Sender
	log    *zap.Logger
}

func NewHandler(sender domain.Sender, log *zap.Logger) *Handler {
	return &Handler{sender: sender, log: log.Named("notification.worker")}
}

func (h *Handler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var n domain.Notice
	if err := json.Unmarshal(t.Payload(), &n); err != nil {
		h.log.Error("invalid confirmation notice payload", zap.Error(err))
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if err := n.Validate(); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if err := h.sender.Send(ctx, n); err != nil {
		h.log.Warn("confirmation notice delivery failed",
			zap.String("booking_id", n.BookingID.String()),
			zap.Error(err))
		return err
	}
	h.log.Info("confirmation notice delivered", zap.String("booking_id", n.BookingID.String()))
	return nil
}

func NewServeMux(h *Handler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(domain.TaskTypeBookingConfirmed, h)
	return mux
}
