package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"tasklist/internal/models"
	"tasklist/internal/pdf"
	"tasklist/internal/services"
)

type TaskListHandler struct {
	lists    services.TaskListService
	exporter pdf.Exporter
}

func NewTaskListHandler(lists services.TaskListService, exporter pdf.Exporter) *TaskListHandler {
	return &TaskListHandler{lists: lists, exporter: exporter}
}

// Create godoc
// @Summary   Create a task list
// @Tags      task-lists
// @Accept    json,x-www-form-urlencoded
// @Produce   json
// @Security  BearerAuth
// @Param     body  body      models.TaskListInput  true  "List"
// @Success   201   {object}  models.TaskList
// @Failure   400   {object}  map[string]string
// @Router    /task-lists [post]
func (h *TaskListHandler) Create(c *gin.Context) {
	var in models.TaskListInput
	if err := c.ShouldBind(&in); err != nil {
		badRequest(c, err)
		return
	}
	list, err := h.lists.Create(c.Request.Context(), accountID(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, list)
}

// List godoc
// @Summary   Task lists owned by the caller
// @Tags      task-lists
// @Produce   json
// @Security  BearerAuth
// @Success   200  {array}  models.TaskList
// @Router    /task-lists [get]
func (h *TaskListHandler) List(c *gin.Context) {
	lists, err := h.lists.List(c.Request.Context(), accountID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if lists == nil {
		lists = []models.TaskList{}
	}
	c.JSON(http.StatusOK, lists)
}

// Get godoc
// @Summary   A task list with its tasks
// @Tags      task-lists
// @Produce   json
// @Security  BearerAuth
// @Param     id   path      string  true  "List ID"
// @Success   200  {object}  models.TaskList
// @Failure   404  {object}  map[string]string
// @Router    /task-lists/{id} [get]
func (h *TaskListHandler) Get(c *gin.Context) {
	list, err := h.lists.Get(c.Request.Context(), accountID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Update godoc
// @Summary   Update a task list
// @Tags      task-lists
// @Accept    json,x-www-form-urlencoded
// @Produce   json
// @Security  BearerAuth
// @Param     id    path      string                true  "List ID"
// @Param     body  body      models.TaskListInput  true  "Fields to change"
// @Success   200   {object}  models.TaskList
// @Failure   404   {object}  map[string]string
// @Router    /task-lists/{id} [put]
func (h *TaskListHandler) Update(c *gin.Context) {
	var in models.TaskListInput
	if err := c.ShouldBind(&in); err != nil {
		badRequest(c, err)
		return
	}
	list, err := h.lists.Update(c.Request.Context(), accountID(c), c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Delete godoc
// @Summary   Delete a task list and its tasks
// @Tags      task-lists
// @Security  BearerAuth
// @Param     id  path  string  true  "List ID"
// @Success   204
// @Failure   404  {object}  map[string]string
// @Router    /task-lists/{id} [delete]
func (h *TaskListHandler) Delete(c *gin.Context) {
	if err := h.lists.Delete(c.Request.Context(), accountID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Export godoc
// @Summary   Export a task list as PDF
// @Tags      task-lists
// @Produce   application/pdf
// @Security  BearerAuth
// @Param     id  path  string  true  "List ID"
// @Success   200  {file}  file
// @Failure   404  {object}  map[string]string
// @Router    /task-lists/{id}/export [get]
func (h *TaskListHandler) Export(c *gin.Context) {
	list, err := h.lists.Get(c.Request.Context(), accountID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := h.exporter.ExportTaskList(&buf, list); err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="task-list-%s.pdf"`, list.ID))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
