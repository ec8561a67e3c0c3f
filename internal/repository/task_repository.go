package repository

import (
	"context"

	"github.com/pulse-crm/crm-api/internal/domain"
	"gorm.io/gorm"
)

type TaskRepository struct {
	db    *gorm.DB
	scope *ScopeResolver
}

func NewTaskRepository(db *gorm.DB, scope *ScopeResolver) *TaskRepository {
	return &TaskRepository{db: db, scope: scope}
}

const taskDefaultOrder = "tasks.created_at DESC, tasks.task_id DESC"

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	var task domain.Task
	if err := r.db.WithContext(ctx).First(&task, "task_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListByCompany returns tasks assigned to or created by the tenant's profiles
func (r *TaskRepository) ListByCompany(ctx context.Context, companyID int64) ([]domain.Task, error) {
	return r.listScoped(ctx, companyID, nil)
}

// ListByStatus returns the tenant's tasks in one status
func (r *TaskRepository) ListByStatus(ctx context.Context, companyID int64, status domain.TaskStatus) ([]domain.Task, error) {
	return r.listScoped(ctx, companyID, func(q *gorm.DB) *gorm.DB {
		return q.Where("tasks.status = ?", status)
	})
}

func (r *TaskRepository) listScoped(ctx context.Context, companyID int64, filter func(*gorm.DB) *gorm.DB) ([]domain.Task, error) {
	query, ok, err := r.scope.Owned(ctx, companyID, TaskOwner)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []domain.Task{}, nil
	}
	if filter != nil {
		query = filter(query)
	}

	var tasks []domain.Task
	err = query.Order(taskDefaultOrder).Find(&tasks).Error
	return tasks, err
}

// ListByProfile returns tasks assigned to or created by one profile
func (r *TaskRepository) ListByProfile(ctx context.Context, profileID int64) ([]domain.Task, error) {
	return r.ListByProfiles(ctx, []int64{profileID})
}

// ListByProfiles returns tasks assigned to or created by any of profileIDs
func (r *TaskRepository) ListByProfiles(ctx context.Context, profileIDs []int64) ([]domain.Task, error) {
	if len(profileIDs) == 0 {
		return []domain.Task{}, nil
	}
	var tasks []domain.Task
	err := TaskOwner.Apply(r.db.WithContext(ctx), profileIDs).
		Order(taskDefaultOrder).
		Find(&tasks).Error
	return tasks, err
}

// ListOpenByProfiles returns non-terminal tasks assigned to or created by any
// of profileIDs
func (r *TaskRepository) ListOpenByProfiles(ctx context.Context, profileIDs []int64) ([]domain.Task, error) {
	if len(profileIDs) == 0 {
		return []domain.Task{}, nil
	}
	var tasks []domain.Task
	err := TaskOwner.Apply(r.db.WithContext(ctx), profileIDs).
		Where("status NOT IN ?", domain.TerminalTaskStatuses).
		Order(taskDefaultOrder).
		Find(&tasks).Error
	return tasks, err
}

// ListOpenWithDueDate returns every non-terminal task that has a due date
func (r *TaskRepository) ListOpenWithDueDate(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	err := r.db.WithContext(ctx).
		Where("status NOT IN ?", domain.TerminalTaskStatuses).
		Where("due_date IS NOT NULL").
		Order("due_date ASC, task_id ASC").
		Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	return affected(r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("task_id = ?", id).
		Updates(fields))
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	return affected(r.db.WithContext(ctx).Delete(&domain.Task{}, "task_id = ?", id))
}
