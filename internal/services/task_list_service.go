package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"tasklist/internal/logger"
	"tasklist/internal/models"
	"tasklist/internal/repositories"
)

const maxTitleLen = 255

type TaskListService interface {
	Create(ctx context.Context, ownerID string, in models.TaskListInput) (*models.TaskList, error)
	List(ctx context.Context, ownerID string) ([]models.TaskList, error)
	// Get returns the list with its tasks.
	Get(ctx context.Context, ownerID, id string) (*models.TaskList, error)
	Update(ctx context.Context, ownerID, id string, in models.TaskListInput) (*models.TaskList, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type taskListService struct {
	lists repositories.TaskListRepository
	tasks repositories.TaskRepository
	now   func() time.Time
}

func NewTaskListService(lists repositories.TaskListRepository, tasks repositories.TaskRepository) TaskListService {
	return &taskListService{lists: lists, tasks: tasks, now: time.Now}
}

func (s *taskListService) Create(ctx context.Context, ownerID string, in models.TaskListInput) (*models.TaskList, error) {
	if in.Title == nil {
		return nil, invalidInput("title is required")
	}
	title, err := cleanTitle(*in.Title)
	if err != nil {
		return nil, err
	}
	l := &models.TaskList{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       title,
		Description: optionalText(in.Description),
		CreatedAt:   s.now().UTC(),
	}
	if len(in.Tasks) == 0 {
		if err := s.lists.Create(ctx, l); err != nil {
			return nil, persistence("create task list", err)
		}
		logger.Info(ctx, "task list created", zap.String("list_id", l.ID), zap.String("owner_id", ownerID))
		return l, nil
	}

	tasks, err := newListTasks(l, in.Tasks)
	if err != nil {
		return nil, err
	}
	if err := s.lists.CreateWithTasks(ctx, l, tasks); err != nil {
		return nil, persistence("create task list", err)
	}
	l.Tasks = tasks
	setCounts(l)
	logger.Info(ctx, "task list created",
		zap.String("list_id", l.ID), zap.String("owner_id", ownerID), zap.Int("tasks", len(tasks)))
	return l, nil
}

// newListTasks builds the initial tasks of l. Entries without a title are
// skipped.
func newListTasks(l *models.TaskList, inputs []models.TaskInput) ([]models.Task, error) {
	tasks := make([]models.Task, 0, len(inputs))
	for _, in := range inputs {
		if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
			continue
		}
		// offset keeps input order under created_at ordering
		created := l.CreatedAt.Add(time.Duration(len(tasks)) * time.Microsecond)
		task := models.Task{
			ID:        uuid.NewString(),
			ListID:    l.ID,
			Status:    models.StatusPending,
			Priority:  models.PriorityMedium,
			CreatedAt: created,
			UpdatedAt: created,
		}
		if err := applyTaskInput(&task, in); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func setCounts(l *models.TaskList) {
	l.TaskCount = len(l.Tasks)
	l.CompletedCount = 0
	for _, t := range l.Tasks {
		if t.Status == models.StatusCompleted {
			l.CompletedCount++
		}
	}
}

func (s *taskListService) List(ctx context.Context, ownerID string) ([]models.TaskList, error) {
	lists, err := s.lists.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, persistence("list task lists", err)
	}
	return lists, nil
}

func (s *taskListService) Get(ctx context.Context, ownerID, id string) (*models.TaskList, error) {
	l, err := ownedList(ctx, s.lists, ownerID, id)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.FindByList(ctx, l.ID, repositories.TaskFilter{})
	if err != nil {
		return nil, persistence("list tasks", err)
	}
	l.Tasks = tasks
	setCounts(l)
	return l, nil
}

func (s *taskListService) Update(ctx context.Context, ownerID, id string, in models.TaskListInput) (*models.TaskList, error) {
	l, err := ownedList(ctx, s.lists, ownerID, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		if l.Title, err = cleanTitle(*in.Title); err != nil {
			return nil, err
		}
	}
	if in.Description != nil {
		l.Description = optionalText(in.Description)
	}
	if err := s.lists.Update(ctx, l); err != nil {
		return nil, persistence("update task list", err)
	}
	return l, nil
}

func (s *taskListService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := ownedList(ctx, s.lists, ownerID, id); err != nil {
		return err
	}
	if err := s.lists.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return persistence("delete task list", err)
	}
	logger.Info(ctx, "task list deleted", zap.String("list_id", id), zap.String("owner_id", ownerID))
	return nil
}

// ownedList loads a list and checks that ownerID owns it.
func ownedList(ctx context.Context, lists repositories.TaskListRepository, ownerID, id string) (*models.TaskList, error) {
	l, err := lists.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, persistence("load task list", err)
	}
	if l.OwnerID != ownerID {
		logger.Warn(ctx, "task list access denied", zap.String("list_id", id), zap.String("account_id", ownerID))
		return nil, ErrForbidden
	}
	return l, nil
}

func cleanTitle(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", invalidInput("title is required")
	}
	if len(s) > maxTitleLen {
		return "", invalidInput("title is too long")
	}
	return s, nil
}

// optionalText maps nil and blank input to NULL.
func optionalText(s *string) null.String {
	if s == nil || strings.TrimSpace(*s) == "" {
		return null.String{}
	}
	return null.StringFrom(strings.TrimSpace(*s))
}
