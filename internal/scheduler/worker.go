package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"autoplaza_backend/internal/events"
	"autoplaza_backend/internal/prospects/repository"
	"autoplaza_backend/platform/config"
	"autoplaza_backend/platform/logger"
)

// allowedReminderSkew tolerates appointment reschedules smaller than this
// between enqueue and fire time.
const allowedReminderSkew = time.Minute

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	repo   *repository.Repository
	bus    events.Bus
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, bus events.Bus, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		repo:   repository.New(pool),
		bus:    bus,
		log:    log,
	}

	mux.HandleFunc(TaskAppointmentReminder, w.handleAppointmentReminder)

	return w, nil
}

// handleAppointmentReminder re-reads the prospect before emitting: a reminder
// for a deleted prospect or a moved appointment is dropped, not retried.
func (w *Worker) handleAppointmentReminder(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseAppointmentReminderPayload(task)
	if err != nil {
		return err
	}

	prospectID, err := uuid.Parse(payload.ProspectID)
	if err != nil {
		return err
	}

	prospect, err := w.repo.GetByID(ctx, prospectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			w.log.Info("dropping reminder for deleted prospect", "prospect_id", prospectID)
			return nil
		}
		return err
	}

	if prospect.AppointmentDate == nil {
		w.log.Info("dropping reminder, appointment was cancelled", "prospect_id", prospectID)
		return nil
	}
	drift := prospect.AppointmentDate.Sub(payload.AppointmentDate)
	if drift > allowedReminderSkew || drift < -allowedReminderSkew {
		w.log.Info("dropping reminder, appointment was rescheduled",
			"prospect_id", prospectID,
			"scheduled_for", payload.AppointmentDate,
			"now_at", prospect.AppointmentDate,
		)
		return nil
	}

	return w.bus.PublishSync(ctx, events.AppointmentReminderDue{
		BaseEvent:       events.NewBaseEvent(),
		ProspectID:      prospect.ID,
		ProspectName:    prospect.Name,
		ProspectPhone:   prospect.Phone,
		AppointmentDate: *prospect.AppointmentDate,
	})
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
