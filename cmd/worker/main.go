// Command worker runs the background task consumer that delivers
// queued email.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"carmarket_backend/internal/email"
	"carmarket_backend/internal/scheduler"
	"carmarket_backend/platform/config"
	"carmarket_backend/platform/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env, "queue", cfg.AsynqQueueName)

	var mail email.Sender
	if cfg.EmailEnabled {
		mail = email.NewSMTPSender(cfg)
	} else {
		log.Warn("email disabled, tasks complete without sending")
		mail = email.NoopSender{}
	}

	worker, err := scheduler.NewWorker(cfg, mail, log)
	if err != nil {
		return fmt.Errorf("init worker: %w", err)
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info("shutting down worker")
		worker.Shutdown()
	}()

	if err := worker.Run(); err != nil {
		return fmt.Errorf("worker: %w", err)
	}
	log.Info("worker stopped")
	return nil
}
