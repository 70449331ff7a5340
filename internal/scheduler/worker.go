package scheduler

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"carmarket_backend/internal/email"
	"carmarket_backend/platform/config"
	"carmarket_backend/platform/logger"
)

// Worker consumes queued email tasks and delivers them.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	mail   email.Sender
	log    *logger.Logger
}

// NewWorker creates the asynq worker from Redis configuration.
func NewWorker(cfg config.RedisConfig, mail email.Sender, log *logger.Logger) (*Worker, error) {
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
		mail:   mail,
		log:    log,
	}

	mux.HandleFunc(TaskWelcomeEmail, w.handleWelcomeEmail)
	mux.HandleFunc(TaskMessageReceivedEmail, w.handleMessageReceivedEmail)

	return w, nil
}

// Run blocks processing tasks until the server is shut down.
func (w *Worker) Run() error {
	return w.server.Run(w.mux)
}

// Shutdown stops the server, waiting for in-flight tasks.
func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

func (w *Worker) handleWelcomeEmail(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseWelcomeEmailPayload(task)
	if err != nil {
		return err
	}

	if err := w.mail.SendWelcomeEmail(ctx, payload.Email, payload.Username); err != nil {
		w.log.Error("welcome email failed", "email", payload.Email, "error", err)
		return err
	}
	w.log.Info("welcome email sent", "email", payload.Email)
	return nil
}

func (w *Worker) handleMessageReceivedEmail(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseMessageReceivedEmailPayload(task)
	if err != nil {
		return err
	}

	if err := w.mail.SendMessageReceivedEmail(ctx, payload.SellerEmail, payload.SenderName, payload.CarTitle, payload.Preview); err != nil {
		w.log.Error("message notification failed", "email", payload.SellerEmail, "error", err)
		return err
	}
	w.log.Info("message notification sent", "email", payload.SellerEmail)
	return nil
}
