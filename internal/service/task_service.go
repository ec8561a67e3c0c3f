package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pulse-crm/crm-api/internal/analytics"
	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/pulse-crm/crm-api/internal/mapper"
	"github.com/pulse-crm/crm-api/internal/repository"
	"go.uber.org/zap"
)

type TaskService struct {
	taskRepo *repository.TaskRepository
	scope    *repository.ScopeResolver
	logger   *zap.Logger
	now      func() time.Time
}

func NewTaskService(
	taskRepo *repository.TaskRepository,
	scope *repository.ScopeResolver,
	logger *zap.Logger,
) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		scope:    scope,
		logger:   logger,
		now:      time.Now,
	}
}

func taskOwners(t *domain.Task) []int64 {
	owners := []int64{t.CreatedBy}
	if t.AssignedTo != nil {
		owners = append(owners, *t.AssignedTo)
	}
	return owners
}

func (s *TaskService) load(ctx context.Context, id int64) (*domain.Task, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, wrap(err, "get task")
	}
	if err := ownedByCompany(ctx, s.scope, user.CompanyID, taskOwners(task)...); err != nil {
		return nil, err
	}
	return task, nil
}

// assignee checks that profileID may receive work from the caller
func (s *TaskService) assignee(ctx context.Context, companyID, profileID int64) error {
	if err := ownedByCompany(ctx, s.scope, companyID, profileID); err != nil {
		return fmt.Errorf("assignee %d: %w", profileID, ErrInvalidInput)
	}
	return nil
}

// references rejects a deal or contact outside the caller's company
func (s *TaskService) references(ctx context.Context, companyID int64, dealID, contactID *int64) error {
	if err := referencesInCompany(ctx, s.scope, companyID, repository.DealRef, dealID); err != nil {
		return err
	}
	return referencesInCompany(ctx, s.scope, companyID, repository.ContactRef, contactID)
}

func (s *TaskService) Create(ctx context.Context, req *domain.CreateTaskRequest) (*domain.TaskDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}

	assignedTo := user.ProfileID
	if req.AssignedTo != nil {
		if err := s.assignee(ctx, user.CompanyID, *req.AssignedTo); err != nil {
			return nil, err
		}
		assignedTo = *req.AssignedTo
	}
	if err := s.references(ctx, user.CompanyID, req.DealID, req.ContactID); err != nil {
		return nil, err
	}

	task := &domain.Task{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		Type:        req.Type,
		AssignedTo:  &assignedTo,
		CreatedBy:   user.ProfileID,
		DealID:      req.DealID,
		ContactID:   req.ContactID,
	}
	if task.Priority == "" {
		task.Priority = domain.TaskPriorityMedium
	}
	if task.Status == "" {
		task.Status = domain.TaskStatusPending
	}
	if task.Status == domain.TaskStatusCompleted {
		completed := s.now().UTC()
		task.CompletedAt = &completed
	}
	if req.DueDate != "" {
		due, err := mapper.ParseDate(req.DueDate)
		if err != nil {
			return nil, fmt.Errorf("due date: %w", ErrInvalidInput)
		}
		task.DueDate = due
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, wrap(err, "create task")
	}

	s.logger.Info("task created",
		zap.Int64("task_id", task.ID),
		zap.Int64("assigned_to", assignedTo),
	)

	dto := mapper.ToTaskDTO(task)
	return &dto, nil
}

func (s *TaskService) GetByID(ctx context.Context, id int64) (*domain.TaskDTO, error) {
	task, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToTaskDTO(task)
	return &dto, nil
}

// List returns the company's tasks, optionally restricted to one status
func (s *TaskService) List(ctx context.Context, status domain.TaskStatus) ([]domain.TaskDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	var tasks []domain.Task
	if status == "" {
		tasks, err = s.taskRepo.ListByCompany(ctx, user.CompanyID)
	} else {
		tasks, err = s.taskRepo.ListByStatus(ctx, user.CompanyID, status)
	}
	if err != nil {
		return nil, wrap(err, "list tasks")
	}
	return mapper.ToTaskDTOs(tasks), nil
}

// ListMine returns tasks assigned to or created by the caller
func (s *TaskService) ListMine(ctx context.Context) ([]domain.TaskDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.taskRepo.ListByProfile(ctx, user.ProfileID)
	if err != nil {
		return nil, wrap(err, "list tasks")
	}
	return mapper.ToTaskDTOs(tasks), nil
}

func (s *TaskService) Update(ctx context.Context, id int64, req *domain.UpdateTaskRequest) (*domain.TaskDTO, error) {
	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.references(ctx, user.CompanyID, req.DealID, req.ContactID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	fields := map[string]interface{}{"updated_at": now}
	if req.Title != nil {
		fields["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Priority != nil {
		fields["priority"] = *req.Priority
	}
	if req.Status != nil {
		fields["status"] = *req.Status
		switch {
		case *req.Status == domain.TaskStatusCompleted && existing.Status != domain.TaskStatusCompleted:
			fields["completed_at"] = now
		case *req.Status != domain.TaskStatusCompleted:
			fields["completed_at"] = nil
		}
	}
	if req.Type != nil {
		fields["type"] = *req.Type
	}
	if req.DueDate != nil {
		due, err := mapper.ParseDate(*req.DueDate)
		if err != nil {
			return nil, fmt.Errorf("due date: %w", ErrInvalidInput)
		}
		fields["due_date"] = due
	}
	if req.DealID != nil {
		fields["deal_id"] = *req.DealID
	}
	if req.ContactID != nil {
		fields["contact_id"] = *req.ContactID
	}

	if err := s.taskRepo.Update(ctx, id, fields); err != nil {
		return nil, wrap(err, "update task")
	}
	return s.GetByID(ctx, id)
}

// MarkCompleted sets the task's status to completed and stamps completed_at
func (s *TaskService) MarkCompleted(ctx context.Context, id int64) (*domain.TaskDTO, error) {
	task, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.Status == domain.TaskStatusCompleted {
		dto := mapper.ToTaskDTO(task)
		return &dto, nil
	}

	now := s.now().UTC()
	fields := map[string]interface{}{
		"status":       domain.TaskStatusCompleted,
		"completed_at": now,
		"updated_at":   now,
	}
	if err := s.taskRepo.Update(ctx, id, fields); err != nil {
		return nil, wrap(err, "complete task")
	}
	s.logger.Info("task completed", zap.Int64("task_id", id))
	return s.GetByID(ctx, id)
}

// AssignTo hands the task to another profile of the same company
func (s *TaskService) AssignTo(ctx context.Context, id, profileID int64) (*domain.TaskDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	if err := s.assignee(ctx, user.CompanyID, profileID); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"assigned_to": profileID,
		"updated_at":  s.now().UTC(),
	}
	if err := s.taskRepo.Update(ctx, id, fields); err != nil {
		return nil, wrap(err, "assign task")
	}
	s.logger.Info("task assigned",
		zap.Int64("task_id", id),
		zap.Int64("assigned_to", profileID),
		zap.Int64("by", user.ProfileID),
	)
	return s.GetByID(ctx, id)
}

func (s *TaskService) Delete(ctx context.Context, id int64) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.taskRepo.Delete(ctx, id); err != nil {
		return wrap(err, "delete task")
	}
	s.logger.Info("task deleted", zap.Int64("task_id", id))
	return nil
}

func (s *TaskService) Stats(ctx context.Context) (*domain.TaskStatsDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.taskRepo.ListByCompany(ctx, user.CompanyID)
	if err != nil {
		return nil, wrap(err, "list tasks")
	}
	stats := analytics.TaskStats(tasks, s.now().UTC())
	return &stats, nil
}

func (s *TaskService) Analytics(ctx context.Context) (*domain.TaskAnalyticsDTO, error) {
	user, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.taskRepo.ListByCompany(ctx, user.CompanyID)
	if err != nil {
		return nil, wrap(err, "list tasks")
	}
	result := analytics.TaskAnalytics(tasks, s.now().UTC())
	return &result, nil
}
