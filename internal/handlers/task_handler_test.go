package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tasklist/internal/models"
	"tasklist/internal/pdf"
	"tasklist/internal/repositories"
	"tasklist/internal/services"
)

func newTaskRouter(lists *mockLists, tasks *mockTasks) *gin.Engine {
	lh := NewTaskListHandler(lists, pdf.NewTaskListExporter(""))
	th := NewTaskHandler(tasks)
	r := gin.New()
	g := r.Group("", asAccount("owner"))
	g.POST("/task-lists", lh.Create)
	g.GET("/task-lists", lh.List)
	g.GET("/task-lists/:id", lh.Get)
	g.PUT("/task-lists/:id", lh.Update)
	g.DELETE("/task-lists/:id", lh.Delete)
	g.GET("/task-lists/:id/export", lh.Export)
	g.POST("/task-lists/:id/tasks", th.Create)
	g.GET("/task-lists/:id/tasks", th.List)
	g.GET("/tasks/:id", th.GetByID)
	g.PUT("/tasks/:id", th.Update)
	g.DELETE("/tasks/:id", th.Delete)
	return r
}

func TestTaskLists_CreateAndList(t *testing.T) {
	lists := new(mockLists)
	title := "Groceries"
	lists.On("Create", "owner", models.TaskListInput{Title: &title}).
		Return(&models.TaskList{ID: "list-1", OwnerID: "owner", Title: title}, nil)
	lists.On("List", "owner").Return(nil, nil)
	r := newTaskRouter(lists, new(mockTasks))

	w := doJSON(r, http.MethodPost, "/task-lists", `{"title":"Groceries"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "list-1", decode(t, w.Body.Bytes())["id"])

	w = doJSON(r, http.MethodGet, "/task-lists", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestTaskLists_CreateWithNestedTasks(t *testing.T) {
	lists := new(mockLists)
	lists.On("Create", "owner", mock.MatchedBy(func(in models.TaskListInput) bool {
		return len(in.Tasks) == 2 &&
			*in.Tasks[0].Title == "passport" && *in.Tasks[0].Priority == models.PriorityHigh &&
			*in.Tasks[1].Title == "tickets" && in.Tasks[1].Priority == nil
	})).Return(&models.TaskList{
		ID: "list-1", OwnerID: "owner", Title: "Trip", TaskCount: 2,
		Tasks: []models.Task{{ID: "t1", Title: "passport"}, {ID: "t2", Title: "tickets"}},
	}, nil)
	r := newTaskRouter(lists, new(mockTasks))

	w := doJSON(r, http.MethodPost, "/task-lists",
		`{"title":"Trip","tasks":[{"title":"passport","priority":"high"},{"title":"tickets"}]}`)
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w.Body.Bytes())
	assert.Len(t, body["tasks"], 2)
	assert.EqualValues(t, 2, body["task_count"])
	lists.AssertExpectations(t)
}

func TestTaskLists_ListIncludesCounts(t *testing.T) {
	lists := new(mockLists)
	lists.On("List", "owner").Return([]models.TaskList{
		{ID: "list-1", OwnerID: "owner", Title: "Chores", TaskCount: 3, CompletedCount: 2},
	}, nil)
	r := newTaskRouter(lists, new(mockTasks))

	w := doJSON(r, http.MethodGet, "/task-lists", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.EqualValues(t, 3, got[0]["task_count"])
	assert.EqualValues(t, 2, got[0]["completed_count"])
	assert.NotContains(t, got[0], "tasks")
}

func TestTaskLists_ForeignListLooksMissing(t *testing.T) {
	lists := new(mockLists)
	lists.On("Get", "owner", "theirs").Return(nil, services.ErrForbidden)
	lists.On("Delete", "owner", "gone").Return(services.ErrNotFound)
	r := newTaskRouter(lists, new(mockTasks))

	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodGet, "/task-lists/theirs", "").Code)
	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodDelete, "/task-lists/gone", "").Code)
}

func TestTaskLists_Export(t *testing.T) {
	lists := new(mockLists)
	lists.On("Get", "owner", "list-1").Return(&models.TaskList{
		ID: "list-1", Title: "Groceries",
		Tasks: []models.Task{{Title: "Milk", Status: models.StatusPending, Priority: models.PriorityLow}},
	}, nil)

	w := doJSON(newTaskRouter(lists, new(mockTasks)), http.MethodGet, "/task-lists/list-1/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "task-list-list-1.pdf")
	assert.Equal(t, "%PDF-", w.Body.String()[:5])
}

func TestTasks_CreateAndFilter(t *testing.T) {
	tasks := new(mockTasks)
	tasks.On("Create", "owner", "list-1", mock.AnythingOfType("models.TaskInput")).
		Return(&models.Task{ID: "t1", ListID: "list-1", Title: "Milk", Status: models.StatusPending}, nil)
	high := models.PriorityHigh
	tasks.On("List", "owner", "list-1", repositories.TaskFilter{Priority: &high}).
		Return([]models.Task{{ID: "t1"}}, nil)
	r := newTaskRouter(new(mockLists), tasks)

	w := doJSON(r, http.MethodPost, "/task-lists/list-1/tasks", `{"title":"Milk","due_date":"2024-05-01T09:00:00Z"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	in := tasks.Calls[0].Arguments.Get(2).(models.TaskInput)
	require.NotNil(t, in.DueDate)
	assert.Equal(t, 2024, in.DueDate.Year())

	w = doJSON(r, http.MethodGet, "/task-lists/list-1/tasks?priority=high", "")
	assert.Equal(t, http.StatusOK, w.Code)
	tasks.AssertExpectations(t)
}

func TestTasks_UpdateDelete(t *testing.T) {
	tasks := new(mockTasks)
	tasks.On("Update", "owner", "t1", mock.AnythingOfType("models.TaskInput")).
		Return(nil, services.ErrInvalidInput)
	tasks.On("Delete", "owner", "t1").Return(nil)
	tasks.On("Get", "owner", "t2").Return(nil, services.ErrForbidden)
	r := newTaskRouter(new(mockLists), tasks)

	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPut, "/tasks/t1", `{"status":"archived"}`).Code)
	assert.Equal(t, http.StatusNoContent, doJSON(r, http.MethodDelete, "/tasks/t1", "").Code)
	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodGet, "/tasks/t2", "").Code)
}
