package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tasklist/internal/models"
	"tasklist/internal/repositories"
	"tasklist/internal/services"
)

type TaskHandler struct {
	service services.TaskService
}

func NewTaskHandler(service services.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// Create godoc
// @Summary   Add a task to a list
// @Tags      tasks
// @Accept    json,x-www-form-urlencoded
// @Produce   json
// @Security  BearerAuth
// @Param     id    path      string            true  "List ID"
// @Param     body  body      models.TaskInput  true  "Task"
// @Success   201   {object}  models.Task
// @Failure   400   {object}  map[string]string
// @Failure   404   {object}  map[string]string
// @Router    /task-lists/{id}/tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var in models.TaskInput
	if err := c.ShouldBind(&in); err != nil {
		badRequest(c, err)
		return
	}
	task, err := h.service.Create(c.Request.Context(), accountID(c), c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// List godoc
// @Summary   Tasks of a list
// @Tags      tasks
// @Produce   json
// @Security  BearerAuth
// @Param     id        path   string  true   "List ID"
// @Param     status    query  string  false  "pending | in_progress | completed"
// @Param     priority  query  string  false  "low | medium | high"
// @Success   200  {array}  models.Task
// @Router    /task-lists/{id}/tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	var filter repositories.TaskFilter
	if v := c.Query("status"); v != "" {
		s := models.TaskStatus(v)
		filter.Status = &s
	}
	if v := c.Query("priority"); v != "" {
		p := models.TaskPriority(v)
		filter.Priority = &p
	}

	tasks, err := h.service.List(c.Request.Context(), accountID(c), c.Param("id"), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	c.JSON(http.StatusOK, tasks)
}

// GetByID godoc
// @Summary   A single task
// @Tags      tasks
// @Produce   json
// @Security  BearerAuth
// @Param     id   path      string  true  "Task ID"
// @Success   200  {object}  models.Task
// @Failure   404  {object}  map[string]string
// @Router    /tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	task, err := h.service.Get(c.Request.Context(), accountID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Update godoc
// @Summary   Update a task
// @Tags      tasks
// @Accept    json,x-www-form-urlencoded
// @Produce   json
// @Security  BearerAuth
// @Param     id    path      string            true  "Task ID"
// @Param     body  body      models.TaskInput  true  "Fields to change"
// @Success   200   {object}  models.Task
// @Failure   400   {object}  map[string]string
// @Failure   404   {object}  map[string]string
// @Router    /tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	var in models.TaskInput
	if err := c.ShouldBind(&in); err != nil {
		badRequest(c, err)
		return
	}
	task, err := h.service.Update(c.Request.Context(), accountID(c), c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Delete godoc
// @Summary   Delete a task
// @Tags      tasks
// @Security  BearerAuth
// @Param     id  path  string  true  "Task ID"
// @Success   204
// @Failure   404  {object}  map[string]string
// @Router    /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), accountID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
