package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tasklist/internal/models"
	"tasklist/internal/repositories"
)

type mockListRepo struct{ mock.Mock }

func (m *mockListRepo) Create(ctx context.Context, l *models.TaskList) error {
	return m.Called(ctx, l).Error(0)
}

func (m *mockListRepo) CreateWithTasks(ctx context.Context, l *models.TaskList, tasks []models.Task) error {
	return m.Called(ctx, l, tasks).Error(0)
}

func (m *mockListRepo) GetByID(ctx context.Context, id string) (*models.TaskList, error) {
	args := m.Called(ctx, id)
	l, _ := args.Get(0).(*models.TaskList)
	return l, args.Error(1)
}

func (m *mockListRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.TaskList, error) {
	args := m.Called(ctx, ownerID)
	l, _ := args.Get(0).([]models.TaskList)
	return l, args.Error(1)
}

func (m *mockListRepo) Update(ctx context.Context, l *models.TaskList) error {
	return m.Called(ctx, l).Error(0)
}

func (m *mockListRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockTaskRepo struct{ mock.Mock }

func (m *mockTaskRepo) Store(ctx context.Context, t *models.Task) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockTaskRepo) FindByID(ctx context.Context, id string) (*models.Task, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*models.Task)
	return t, args.Error(1)
}

func (m *mockTaskRepo) FindByList(ctx context.Context, listID string, f repositories.TaskFilter) ([]models.Task, error) {
	args := m.Called(ctx, listID, f)
	t, _ := args.Get(0).([]models.Task)
	return t, args.Error(1)
}

func (m *mockTaskRepo) Update(ctx context.Context, t *models.Task) error {
	return m.Called(ctx, t).Error(0)
}

func (m *mockTaskRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func ptr[T any](v T) *T { return &v }

func ownedBy(owner string) *models.TaskList {
	return &models.TaskList{ID: "list-1", OwnerID: owner, Title: "Groceries"}
}

func TestTaskListService_Create(t *testing.T) {
	lists := new(mockListRepo)
	svc := NewTaskListService(lists, new(mockTaskRepo))
	ctx := context.Background()

	lists.On("Create", ctx, mock.MatchedBy(func(l *models.TaskList) bool {
		return l.OwnerID == "owner" && l.Title == "Groceries" && !l.Description.Valid
	})).Return(nil).Once()

	l, err := svc.Create(ctx, "owner", models.TaskListInput{Title: ptr("  Groceries "), Description: ptr("  ")})
	require.NoError(t, err)
	assert.NotEmpty(t, l.ID)
	lists.AssertExpectations(t)

	_, err = svc.Create(ctx, "owner", models.TaskListInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTaskListService_CreateWithTasks(t *testing.T) {
	lists := new(mockListRepo)
	svc := NewTaskListService(lists, new(mockTaskRepo))
	ctx := context.Background()

	high := models.PriorityHigh
	done := models.StatusCompleted
	lists.On("CreateWithTasks", ctx, mock.AnythingOfType("*models.TaskList"),
		mock.MatchedBy(func(tasks []models.Task) bool {
			return len(tasks) == 2 &&
				tasks[0].Title == "passport" && tasks[0].Priority == models.PriorityHigh &&
				tasks[0].Status == models.StatusPending &&
				tasks[1].Title == "tickets" && tasks[1].Priority == models.PriorityMedium &&
				tasks[1].Status == models.StatusCompleted &&
				tasks[0].ListID == tasks[1].ListID && tasks[0].ListID != ""
		})).Return(nil).Once()

	l, err := svc.Create(ctx, "owner", models.TaskListInput{
		Title: ptr("Trip"),
		Tasks: []models.TaskInput{
			{Title: ptr("passport"), Priority: &high},
			{Title: ptr("  ")},
			{Description: ptr("untitled")},
			{Title: ptr("tickets"), Status: &done},
		},
	})
	require.NoError(t, err)
	require.Len(t, l.Tasks, 2)
	assert.Equal(t, 2, l.TaskCount)
	assert.Equal(t, 1, l.CompletedCount)
	assert.True(t, l.Tasks[0].CreatedAt.Before(l.Tasks[1].CreatedAt))
	lists.AssertExpectations(t)
	lists.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	bad := models.TaskPriority("urgent")
	_, err = svc.Create(ctx, "owner", models.TaskListInput{
		Title: ptr("Trip"),
		Tasks: []models.TaskInput{{Title: ptr("passport"), Priority: &bad}},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
	lists.AssertNumberOfCalls(t, "CreateWithTasks", 1)
}

func TestTaskListService_GetIncludesTasks(t *testing.T) {
	lists := new(mockListRepo)
	tasks := new(mockTaskRepo)
	svc := NewTaskListService(lists, tasks)
	ctx := context.Background()

	lists.On("GetByID", ctx, "list-1").Return(ownedBy("owner"), nil)
	tasks.On("FindByList", ctx, "list-1", repositories.TaskFilter{}).
		Return([]models.Task{{ID: "t1"}, {ID: "t2"}}, nil)

	l, err := svc.Get(ctx, "owner", "list-1")
	require.NoError(t, err)
	assert.Len(t, l.Tasks, 2)
	assert.Equal(t, 2, l.TaskCount)
}

func TestTaskListService_OwnerChecks(t *testing.T) {
	lists := new(mockListRepo)
	svc := NewTaskListService(lists, new(mockTaskRepo))
	ctx := context.Background()

	lists.On("GetByID", ctx, "list-1").Return(ownedBy("someone-else"), nil)
	lists.On("GetByID", ctx, "missing").Return(nil, repositories.ErrNotFound)

	_, err := svc.Get(ctx, "owner", "list-1")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Update(ctx, "owner", "list-1", models.TaskListInput{Title: ptr("x")})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, "owner", "list-1"), ErrForbidden)
	_, err = svc.Get(ctx, "owner", "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	lists.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	lists.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestTaskListService_Update(t *testing.T) {
	lists := new(mockListRepo)
	svc := NewTaskListService(lists, new(mockTaskRepo))
	ctx := context.Background()

	lists.On("GetByID", ctx, "list-1").Return(ownedBy("owner"), nil)
	lists.On("Update", ctx, mock.AnythingOfType("*models.TaskList")).Return(nil)

	l, err := svc.Update(ctx, "owner", "list-1", models.TaskListInput{Description: ptr("weekly")})
	require.NoError(t, err)
	assert.Equal(t, "Groceries", l.Title)
	assert.Equal(t, "weekly", l.Description.String)
}

func TestTaskService_CreateDefaults(t *testing.T) {
	lists := new(mockListRepo)
	tasks := new(mockTaskRepo)
	svc := NewTaskService(lists, tasks)
	ctx := context.Background()

	lists.On("GetByID", ctx, "list-1").Return(ownedBy("owner"), nil)
	tasks.On("Store", ctx, mock.AnythingOfType("*models.Task")).Return(nil)

	due := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	task, err := svc.Create(ctx, "owner", "list-1", models.TaskInput{Title: ptr("Milk"), DueDate: &due})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, task.Status)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.Equal(t, "list-1", task.ListID)
	assert.True(t, task.DueDate.Valid)
	assert.Equal(t, task.CreatedAt, task.UpdatedAt)
}

func TestTaskService_CreateValidation(t *testing.T) {
	lists := new(mockListRepo)
	tasks := new(mockTaskRepo)
	svc := NewTaskService(lists, tasks)
	ctx := context.Background()

	lists.On("GetByID", ctx, "list-1").Return(ownedBy("owner"), nil)

	_, err := svc.Create(ctx, "owner", "list-1", models.TaskInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	bad := models.TaskStatus("archived")
	_, err = svc.Create(ctx, "owner", "list-1", models.TaskInput{Title: ptr("x"), Status: &bad})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, "intruder", "list-1", models.TaskInput{Title: ptr("x")})
	assert.ErrorIs(t, err, ErrForbidden)

	tasks.AssertNotCalled(t, "Store", mock.Anything, mock.Anything)
}

func TestTaskService_UpdateAndDelete(t *testing.T) {
	lists := new(mockListRepo)
	tasks := new(mockTaskRepo)
	svc := NewTaskService(lists, tasks)
	ctx := context.Background()

	existing := &models.Task{ID: "t1", ListID: "list-1", Title: "Milk",
		Status: models.StatusPending, Priority: models.PriorityMedium}
	lists.On("GetByID", ctx, "list-1").Return(ownedBy("owner"), nil)
	tasks.On("FindByID", ctx, "t1").Return(existing, nil)
	tasks.On("FindByID", ctx, "gone").Return(nil, repositories.ErrNotFound)
	tasks.On("Update", ctx, mock.AnythingOfType("*models.Task")).Return(nil)
	tasks.On("Delete", ctx, "t1").Return(nil)

	done := models.StatusCompleted
	updated, err := svc.Update(ctx, "owner", "t1", models.TaskInput{Status: &done})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)
	assert.Equal(t, "Milk", updated.Title)

	_, err = svc.Update(ctx, "intruder", "t1", models.TaskInput{Status: &done})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Get(ctx, "owner", "gone")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Delete(ctx, "owner", "t1"))
	tasks.AssertCalled(t, "Delete", ctx, "t1")
}

func TestTaskService_ListFilter(t *testing.T) {
	lists := new(mockListRepo)
	tasks := new(mockTaskRepo)
	svc := NewTaskService(lists, tasks)
	ctx := context.Background()

	high := models.PriorityHigh
	filter := repositories.TaskFilter{Priority: &high}
	lists.On("GetByID", ctx, "list-1").Return(ownedBy("owner"), nil)
	tasks.On("FindByList", ctx, "list-1", filter).Return([]models.Task{{ID: "t1"}}, nil)

	got, err := svc.List(ctx, "owner", "list-1", filter)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	bogus := models.TaskPriority("urgent")
	_, err = svc.List(ctx, "owner", "list-1", repositories.TaskFilter{Priority: &bogus})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
