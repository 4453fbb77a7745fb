package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// QueueMail carries transactional mail so a mail backlog never starves
	// the housekeeping jobs.
	QueueMail = "mail"

	// TaskMailVerification delivers the signup verification link.
	TaskMailVerification = "mail:verification"
	// TaskMailPasswordReset delivers the password reset link.
	TaskMailPasswordReset = "mail:password_reset"
	// TaskSessionSweep prunes revocation sets whose sessions expired.
	TaskSessionSweep = "session:sweep"
)

// MailPayload describes a transactional mail carrying a one-time link.
type MailPayload struct {
	To    string `json:"to"`
	Token string `json:"token"`
}

// NewVerificationMailTask constructs the verification mail task.
func NewVerificationMailTask(payload MailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMailVerification, data), nil
}

// NewPasswordResetMailTask constructs the password reset mail task.
func NewPasswordResetMailTask(payload MailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMailPasswordReset, data), nil
}

// NewSessionSweepTask constructs the session sweep task.
func NewSessionSweepTask() *asynq.Task {
	return asynq.NewTask(TaskSessionSweep, nil)
}
