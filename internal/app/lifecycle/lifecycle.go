// Package lifecycle implements the task take/release/finish state
// machine and its bookkeeping across the task, user, and organization
// documents.
//
// State machine: available → assigned → done, with assigned → available
// via release. hidden/deleted are administrative removal, not part of
// the cycle. For hasManyAssignee tasks the task-level status never
// moves; each assignee's embedded TaskRef is the authoritative record,
// so any number of users can hold the task at once.
//
// The writes in one operation span up to three documents and are
// deliberately sequential, not transactional: a failure between steps
// surfaces to the caller and is not compensated. Within each document
// the counter movement is a single atomic update.
package lifecycle

import (
	"context"
	"errors"
	"time"

	organizationstore "github.com/shelterhub/shelterhub/internal/app/store/organizations"
	taskstore "github.com/shelterhub/shelterhub/internal/app/store/tasks"
	userstore "github.com/shelterhub/shelterhub/internal/app/store/users"
	"github.com/shelterhub/shelterhub/internal/domain/models"
	"go.uber.org/zap"
)

// Precondition errors. Handlers render these as operation-not-allowed
// responses without touching any document.
var (
	ErrNotAvailable = errors.New("task is not available")
	ErrNotAssigned  = errors.New("task is not assigned")
)

// Service coordinates the lifecycle across the three stores.
type Service struct {
	tasks *taskstore.Store
	users *userstore.Store
	orgs  *organizationstore.Store
	log   *zap.Logger
}

// New creates a lifecycle service.
func New(tasks *taskstore.Store, users *userstore.Store, orgs *organizationstore.Store, logger *zap.Logger) *Service {
	return &Service{tasks: tasks, users: users, orgs: orgs, log: logger}
}

// Create persists a task for its owner and records it on the owning
// organization: ownerId and the denormalized organization snapshot come
// from the creating user; the org's all/active counters move up by one.
//
// There is no rollback of the task if the organization update fails;
// the error is returned and the counters lag until retried.
func (s *Service) Create(ctx context.Context, task models.Task, owner models.User) (models.Task, error) {
	task.OwnerID = owner.ID
	task.Organization = owner.Organization

	created, err := s.tasks.Create(ctx, task)
	if err != nil {
		return models.Task{}, err
	}

	if created.Organization != nil {
		ref := models.TaskRef{
			TaskID:  created.ID,
			Title:   created.Title,
			Status:  created.Status,
			TakenAt: created.CreatedAt,
		}
		if err := s.orgs.RecordTaskCreated(ctx, created.Organization.ID, ref); err != nil {
			s.log.Error("task created but organization counters not updated",
				zap.String("task_id", created.ID.Hex()),
				zap.String("org_id", created.Organization.ID.Hex()),
				zap.Error(err))
			return models.Task{}, err
		}
	}
	return created, nil
}

// Take assigns an available task to the acting user.
//
// Single-assignee: the task moves to assigned through a conditional
// write, so a concurrent take loses with ErrNotAvailable instead of
// silently overwriting. Many-assignee: the task document is untouched
// and only the user's embedded reference records the assignment.
func (s *Service) Take(ctx context.Context, task models.Task, user models.User) (models.Task, error) {
	if task.Status != models.TaskStatusAvailable {
		return models.Task{}, ErrNotAvailable
	}

	refStatus := models.TaskStatusAssigned
	if !task.HasManyAssignee {
		updated, err := s.tasks.TakeIfAvailable(ctx, task.ID)
		if err == taskstore.ErrNotAvailable {
			return models.Task{}, ErrNotAvailable
		}
		if err != nil {
			return models.Task{}, err
		}
		task = updated
	}

	ref := models.TaskRef{
		TaskID:  task.ID,
		Title:   task.Title,
		Status:  refStatus,
		TakenAt: time.Now().UTC(),
	}
	if err := s.users.PushTaskRef(ctx, user.ID, ref); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// Release puts an assigned task back into the pool and removes the
// acting user's reference to it. Many-assignee tasks may always be
// released since the task-level status is not authoritative for them.
func (s *Service) Release(ctx context.Context, task models.Task, user models.User) (models.Task, error) {
	if task.Status != models.TaskStatusAssigned && !task.HasManyAssignee {
		return models.Task{}, ErrNotAssigned
	}

	// Verify the acting user actually holds the task before any write,
	// so a release by a non-holder leaves the task untouched.
	err := s.users.PullTaskRef(ctx, user.ID, task.ID)
	if err == userstore.ErrTaskRefMissing {
		return models.Task{}, ErrNotAssigned
	}
	if err != nil {
		return models.Task{}, err
	}

	if !task.HasManyAssignee {
		if err := s.tasks.SetStatus(ctx, task.ID, models.TaskStatusAvailable); err != nil {
			return models.Task{}, err
		}
		task.Status = models.TaskStatusAvailable
	}
	return task, nil
}

// Finish completes a task for the acting user: the task moves to done
// (single-assignee only), the user's reference is marked done with the
// undone/done counters shifted, and the owning organization moves one
// count from active to done on its own reference.
func (s *Service) Finish(ctx context.Context, task models.Task, user models.User) (models.Task, error) {
	if task.Status != models.TaskStatusAssigned && !task.HasManyAssignee {
		return models.Task{}, ErrNotAssigned
	}

	// Verify the acting user actually holds the task before any write.
	err := s.users.FinishTaskRef(ctx, user.ID, task.ID)
	if err == userstore.ErrTaskRefMissing {
		return models.Task{}, ErrNotAssigned
	}
	if err != nil {
		return models.Task{}, err
	}

	if !task.HasManyAssignee {
		if err := s.tasks.SetStatus(ctx, task.ID, models.TaskStatusDone); err != nil {
			return models.Task{}, err
		}
		task.Status = models.TaskStatusDone
	}

	if task.Organization != nil {
		err := s.orgs.RecordTaskFinished(ctx, task.Organization.ID, task.ID)
		if err == organizationstore.ErrTaskRefMissing {
			// The org never recorded the task (created before counter
			// bookkeeping existed); the finish itself stands.
			s.log.Warn("finished task missing from organization bookkeeping",
				zap.String("task_id", task.ID.Hex()),
				zap.String("org_id", task.Organization.ID.Hex()))
		} else if err != nil {
			return models.Task{}, err
		}
	}
	return task, nil
}
