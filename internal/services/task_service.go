package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"tasklist/internal/logger"
	"tasklist/internal/models"
	"tasklist/internal/repositories"
)

// TaskService manages tasks inside lists owned by the caller.
type TaskService interface {
	Create(ctx context.Context, ownerID, listID string, in models.TaskInput) (*models.Task, error)
	List(ctx context.Context, ownerID, listID string, filter repositories.TaskFilter) ([]models.Task, error)
	Get(ctx context.Context, ownerID, id string) (*models.Task, error)
	Update(ctx context.Context, ownerID, id string, in models.TaskInput) (*models.Task, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type taskService struct {
	lists repositories.TaskListRepository
	repo  repositories.TaskRepository
	now   func() time.Time
}

func NewTaskService(lists repositories.TaskListRepository, repo repositories.TaskRepository) TaskService {
	return &taskService{lists: lists, repo: repo, now: time.Now}
}

func (s *taskService) Create(ctx context.Context, ownerID, listID string, in models.TaskInput) (*models.Task, error) {
	if _, err := ownedList(ctx, s.lists, ownerID, listID); err != nil {
		return nil, err
	}
	if in.Title == nil {
		return nil, invalidInput("title is required")
	}
	now := s.now().UTC()
	task := &models.Task{
		ID:        uuid.NewString(),
		ListID:    listID,
		Status:    models.StatusPending,
		Priority:  models.PriorityMedium,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := applyTaskInput(task, in); err != nil {
		return nil, err
	}

	if err := s.repo.Store(ctx, task); err != nil {
		return nil, persistence("create task", err)
	}
	logger.Info(ctx, "task created", zap.String("task_id", task.ID), zap.String("list_id", listID))
	return task, nil
}

func (s *taskService) List(ctx context.Context, ownerID, listID string, filter repositories.TaskFilter) ([]models.Task, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, invalidInput("unknown status")
	}
	if filter.Priority != nil && !filter.Priority.Valid() {
		return nil, invalidInput("unknown priority")
	}
	if _, err := ownedList(ctx, s.lists, ownerID, listID); err != nil {
		return nil, err
	}
	tasks, err := s.repo.FindByList(ctx, listID, filter)
	if err != nil {
		return nil, persistence("list tasks", err)
	}
	return tasks, nil
}

func (s *taskService) Get(ctx context.Context, ownerID, id string) (*models.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, persistence("load task", err)
	}
	if _, err := ownedList(ctx, s.lists, ownerID, task.ListID); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) Update(ctx context.Context, ownerID, id string, in models.TaskInput) (*models.Task, error) {
	task, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := applyTaskInput(task, in); err != nil {
		return nil, err
	}
	task.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, task); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, persistence("update task", err)
	}
	return task, nil
}

func (s *taskService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return persistence("delete task", err)
	}
	logger.Info(ctx, "task deleted", zap.String("task_id", id))
	return nil
}

func applyTaskInput(task *models.Task, in models.TaskInput) error {
	if in.Title != nil {
		title, err := cleanTitle(*in.Title)
		if err != nil {
			return err
		}
		task.Title = title
	}
	if in.Description != nil {
		task.Description = optionalText(in.Description)
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return invalidInput("unknown status")
		}
		task.Status = *in.Status
	}
	if in.Priority != nil {
		if !in.Priority.Valid() {
			return invalidInput("unknown priority")
		}
		task.Priority = *in.Priority
	}
	if in.DueDate != nil {
		if in.DueDate.IsZero() {
			task.DueDate = null.Time{}
		} else {
			task.DueDate = null.TimeFrom(in.DueDate.UTC())
		}
	}
	return nil
}
