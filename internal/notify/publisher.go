package notify

import (
	"context"

	"wellbeing-waitlist/internal/models"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Publisher delivers cure notifications outside the console
type Publisher interface {
	Publish(ctx context.Context, n models.CureNotification) error
	Close() error
}

// LogPublisher writes notifications to the structured log
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, n models.CureNotification) error {
	p.logger.Info("Patient cured",
		zap.String("notification_id", n.NotificationID),
		zap.Int64("patient_id", n.PatientID),
		zap.String("name", n.Name),
		zap.Time("timestamp", n.Timestamp),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// Multi fans a notification out to every publisher; one failing sink does
// not stop the others.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, n models.CureNotification) error {
	var err error
	for _, p := range m {
		err = multierr.Append(err, p.Publish(ctx, n))
	}
	return err
}

func (m Multi) Close() error {
	var err error
	for _, p := range m {
		err = multierr.Append(err, p.Close())
	}
	return err
}
