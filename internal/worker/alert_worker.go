package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spendlens/internal/amqp"
	"spendlens/internal/budget"
	"spendlens/internal/log"
	"spendlens/internal/metrics"
	"spendlens/internal/sheets"
)

type namedNotifier struct {
	name     string
	notifier sheets.AlertNotifier
}

// AlertWorker delivers raised-alert messages to every registered notifier
// and periodically exports the budget report.
type AlertWorker struct {
	notifiers []namedNotifier
	logger    *log.Logger
}

func NewAlertWorker(logger *log.Logger) *AlertWorker {
	return &AlertWorker{
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// Register adds a notifier under name, used in logs and metrics.
func (w *AlertWorker) Register(name string, n sheets.AlertNotifier) {
	w.notifiers = append(w.notifiers, namedNotifier{name: name, notifier: n})
}

// HandleAlertMessage fans a message out to the notifiers. Every notifier is
// tried and the joined failures are returned. The consumer requeues a failed
// message once, so a notifier that keeps failing gets two attempts and the
// others may see the alert twice.
func (w *AlertWorker) HandleAlertMessage(ctx context.Context, msg *amqp.AlertRaisedMessage) error {
	a := msg.Alert()
	w.logger.InfoContext(ctx, "Processing alert message",
		log.FieldAlertID, a.ID,
		log.FieldAlertTier, string(a.Tier),
		"raised_at", msg.RaisedAt)

	if len(w.notifiers) == 0 {
		w.logger.WarnContext(ctx, "No alert notifiers configured, dropping alert",
			log.FieldAlertID, a.ID)
		return nil
	}

	var errs []error
	for _, n := range w.notifiers {
		if err := n.notifier.NotifyAlert(ctx, a); err != nil {
			metrics.AlertsNotified.WithLabelValues(n.name, "error").Inc()
			w.logger.ErrorContext(ctx, "Failed to notify alert",
				log.FieldAlertID, a.ID,
				"notifier", n.name,
				log.FieldError, err.Error())
			errs = append(errs, fmt.Errorf("%s: %w", n.name, err))
			continue
		}
		metrics.AlertsNotified.WithLabelValues(n.name, "ok").Inc()
	}
	return errors.Join(errs...)
}

// RunReports calls export every interval until ctx is done. Failures are
// logged and retried on the next tick.
func (w *AlertWorker) RunReports(ctx context.Context, interval time.Duration, export func(context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			if err := export(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Periodic budget report export failed",
					log.FieldError, err.Error(),
					log.FieldOperation, log.OpExport)
			}
		}
	}
}

// LogNotifier writes alerts to the structured log.
type LogNotifier struct {
	sl *log.StructuredLogger
}

func NewLogNotifier(logger *log.Logger) *LogNotifier {
	return &LogNotifier{sl: log.NewStructuredLogger(logger.WithComponent(log.ComponentWorker))}
}

func (n *LogNotifier) NotifyAlert(ctx context.Context, a budget.Alert) error {
	n.sl.LogAlertRaised(ctx, a)
	return nil
}
