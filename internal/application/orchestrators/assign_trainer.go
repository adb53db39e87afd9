package orchestrators

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"gym/internal/domain/audit"
	"gym/internal/domain/member"
	"gym/internal/domain/trainer"
)

// TrainerStoreForAssign defines the store interface needed by AssignTrainer.
type TrainerStoreForAssign interface {
	Create(ctx context.Context, t trainer.Trainer) (int64, error)
}

// AssignTrainerInput carries input for AssignTrainer.
type AssignTrainerInput struct {
	ActorID    string
	ActorEmail string
	Name       string
	Email      string
	Speciality string
	Request    RequestMeta
}

// AssignTrainerDeps holds dependencies for AssignTrainer.
type AssignTrainerDeps struct {
	TrainerStore TrainerStoreForAssign
	Audit        AuditRecorder
}

// ExecuteAssignTrainer records a trainer. The member sharing the email gains the
// Trainer role at its next sign-in.
// PRE: caller holds the Admin role
// POST: trainer persisted; trainer.ErrEmailTaken on duplicate email
func ExecuteAssignTrainer(ctx context.Context, input AssignTrainerInput, deps AssignTrainerDeps) (trainer.Trainer, error) {
	t := trainer.Trainer{
		Name:       strings.TrimSpace(input.Name),
		Email:      member.NormalizeEmail(input.Email),
		Speciality: strings.TrimSpace(input.Speciality),
	}
	if err := t.Validate(); err != nil {
		return trainer.Trainer{}, err
	}
	id, err := deps.TrainerStore.Create(ctx, t)
	if err != nil {
		return trainer.Trainer{}, err
	}
	t.ID = id
	slog.Info("trainer_assigned", "trainer_id", id, "actor_id", input.ActorID)
	recordAudit(ctx, deps.Audit, audit.NewEvent(input.ActorID, input.ActorEmail, audit.CategoryTrainer, audit.ActionAssign).
		WithResource("trainer", strconv.FormatInt(id, 10)).
		WithDescription(t.Email), input.Request)
	return t, nil
}
