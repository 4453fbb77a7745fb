package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/othmanee23/oraxonoptic/internal/jobs"
)

// MailSender delivers the transactional mails behind the mail tasks.
type MailSender interface {
	SendVerification(ctx context.Context, email, token string) error
	SendPasswordReset(ctx context.Context, email, token string) error
}

// MailJob processes the transactional mail tasks.
type MailJob struct {
	sender  MailSender
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewMailJob constructs a MailJob instance.
func NewMailJob(sender MailSender, logger *slog.Logger) *MailJob {
	return &MailJob{sender: sender, logger: logger, metrics: jobmetrics.NewMetrics(nil)}
}

// HandleVerification processes TaskMailVerification tasks.
func (j *MailJob) HandleVerification(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track("mail_verification")
	var payload MailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		_ = tracker.End(err)
		return asynq.SkipRetry
	}
	if err := j.sender.SendVerification(ctx, payload.To, payload.Token); err != nil {
		j.logger.Error("send verification mail", slog.String("to", payload.To), slog.Any("error", err))
		return tracker.End(err)
	}
	return tracker.End(nil)
}

// HandleReset processes TaskMailPasswordReset tasks.
func (j *MailJob) HandleReset(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track("mail_password_reset")
	var payload MailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		_ = tracker.End(err)
		return asynq.SkipRetry
	}
	if err := j.sender.SendPasswordReset(ctx, payload.To, payload.Token); err != nil {
		j.logger.Error("send reset mail", slog.String("to", payload.To), slog.Any("error", err))
		return tracker.End(err)
	}
	return tracker.End(nil)
}
