package handler

import (
	"errors"
	"joban-api/common"
	"joban-api/model"
	"joban-api/service"
	"net/http"
)

type TaskHandler struct {
	service *service.TaskService
}

func NewTaskHandler(s *service.TaskService) *TaskHandler {
	return &TaskHandler{service: s}
}

func taskError(err error) *common.AppError {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		return common.NewAppError(http.StatusNotFound, "Task not found", nil)
	case errors.Is(err, service.ErrColumnNotFound):
		return common.NewAppError(http.StatusNotFound, "Column not found", nil)
	default:
		return common.NewInternalError(err)
	}
}

// CreateTask godoc
// @Summary      Create a task
// @Description  Appends a task to the end of the given column.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        task  body      model.TaskRequest  true  "Task"
// @Success      200   {object}  model.Task
// @Failure      400   {object}  common.AppError
// @Failure      404   {object}  common.AppError
// @Router       /tasks/new [post]
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := userIDFrom(r)
	if appErr != nil {
		return appErr
	}

	var req model.TaskRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	task, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		return taskError(err)
	}

	common.RespondJSON(w, http.StatusOK, task)
	return nil
}

// GetTask godoc
// @Summary      Get a task
// @Tags         tasks
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  model.Task
// @Failure      404  {object}  common.AppError
// @Router       /tasks/{id} [get]
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := userIDFrom(r)
	if appErr != nil {
		return appErr
	}
	taskID, appErr := pathID(r, "id")
	if appErr != nil {
		return appErr
	}

	task, err := h.service.Get(r.Context(), userID, taskID)
	if err != nil {
		return taskError(err)
	}

	common.RespondJSON(w, http.StatusOK, task)
	return nil
}

// UpdateTask godoc
// @Summary      Update a task
// @Description  Edits the task. A different columnId moves it to the end of that column.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path      int                true  "Task ID"
// @Param        task  body      model.TaskRequest  true  "Task"
// @Success      200   {object}  model.Task
// @Failure      400   {object}  common.AppError
// @Failure      404   {object}  common.AppError
// @Router       /tasks/{id} [put]
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := userIDFrom(r)
	if appErr != nil {
		return appErr
	}
	taskID, appErr := pathID(r, "id")
	if appErr != nil {
		return appErr
	}

	var req model.TaskRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	task, err := h.service.Update(r.Context(), userID, taskID, req)
	if err != nil {
		return taskError(err)
	}

	common.RespondJSON(w, http.StatusOK, task)
	return nil
}

// DeleteTask godoc
// @Summary      Delete a task
// @Tags         tasks
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  model.DetailResponse
// @Failure      404  {object}  common.AppError
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := userIDFrom(r)
	if appErr != nil {
		return appErr
	}
	taskID, appErr := pathID(r, "id")
	if appErr != nil {
		return appErr
	}

	if err := h.service.Delete(r.Context(), userID, taskID); err != nil {
		return taskError(err)
	}

	common.RespondJSON(w, http.StatusOK, model.DetailResponse{Detail: "Task deleted"})
	return nil
}
