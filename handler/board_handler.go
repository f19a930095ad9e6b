package handler

import (
	"errors"
	"joban-api/common"
	"joban-api/logger"
	"joban-api/model"
	"joban-api/service"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type BoardHandler struct {
	service *service.BoardService
}

func NewBoardHandler(s *service.BoardService) *BoardHandler {
	return &BoardHandler{service: s}
}

// pathID reads a positive integer route variable.
func pathID(r *http.Request, name string) (int, *common.AppError) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || id <= 0 {
		return 0, common.NewAppError(http.StatusBadRequest, "Invalid "+name, nil)
	}
	return id, nil
}

func boardError(err error) *common.AppError {
	switch {
	case errors.Is(err, service.ErrBoardNotFound):
		return common.NewAppError(http.StatusNotFound, "Board not found", nil)
	case errors.Is(err, service.ErrColumnNotFound):
		return common.NewAppError(http.StatusNotFound, "Column not found", nil)
	default:
		return common.NewInternalError(err)
	}
}

// ListBoards godoc
// @Summary      List boards
// @Description  Returns the boards owned by the caller.
// @Tags         boards
// @Produce      json
// @Security     CookieAuth
// @Success      200  {array}   model.BoardSummary
// @Failure      401  {object}  common.AppError
// @Router       /boards [get]
func (h *BoardHandler) ListBoards(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := userIDFrom(r)
	if appErr != nil {
		return appErr
	}

	boards, err := h.service.List(r.Context(), userID)
	if err != nil {
		return common.NewInternalError(err)
	}

	common.RespondJSON(w, http.StatusOK, boards)
	return nil
}

// CreateBoard godoc
// @Summary      Create a board
// @Tags         boards
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        board  body      model.BoardRequest  true  "Board with its initial columns"
// @Success      200    {object}  model.BoardSummary
// @Failure      400    {object}  common.AppError
// @Failure      401    {object}  common.AppError
// @Router       /boards/new [post]
func (h *BoardHandler) CreateBoard(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := userIDFrom(r)
	if appErr != nil {
		return appErr
	}

	var req model.BoardRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	board, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		return common.NewInternalError(err)
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id":  userID,
		"board_id": board.ID,
	}).Info("Board created")

	common.RespondJSON(w, http.StatusOK, model.BoardSummary{ID: board.ID, Title: board.Title})
	return nil
}

// GetBoard godoc
// @Summary      Get a board
// @Description  Returns the board with its columns and tasks, ordered by position.
// @Tags         boards
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      int  true  "Board ID"
// @Success      200  {object}  model.Board
// @Failure      401  {object}  common.AppError
// @Failure      404  {object}  common.AppError
// @Router       /boards/{id} [get]
func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := userIDFrom(r)
	if appErr != nil {
		return appErr
	}
	boardID, appErr := pathID(r, "id")
	if appErr != nil {
		return appErr
	}

	board, err := h.service.Get(r.Context(), userID, boardID)
	if err != nil {
		return boardError(err)
	}

	common.RespondJSON(w, http.StatusOK, board)
	return nil
}

// UpdateBoard godoc
// @Summary      Update a board
// @Description  Renames the board and replaces its column set. Columns carrying an id are kept, the rest are created, and omitted ones are removed.
// @Tags         boards
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id     path      int                 true  "Board ID"
// @Param        board  body      model.BoardRequest  true  "New title and columns"
// @Success      200    {object}  model.Board
// @Failure      400    {object}  common.AppError
// @Failure      404    {object}  common.AppError
// @Router       /boards/{id} [put]
func (h *BoardHandler) UpdateBoard(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := userIDFrom(r)
	if appErr != nil {
		return appErr
	}
	boardID, appErr := pathID(r, "id")
	if appErr != nil {
		return appErr
	}

	var req model.BoardRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	board, err := h.service.Update(r.Context(), userID, boardID, req)
	if err != nil {
		return boardError(err)
	}

	common.RespondJSON(w, http.StatusOK, board)
	return nil
}

// DeleteBoard godoc
// @Summary      Delete a board
// @Description  Deletes the board together with its columns and tasks.
// @Tags         boards
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      int  true  "Board ID"
// @Success      200  {object}  model.DetailResponse
// @Failure      404  {object}  common.AppError
// @Router       /boards/{id} [delete]
func (h *BoardHandler) DeleteBoard(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := userIDFrom(r)
	if appErr != nil {
		return appErr
	}
	boardID, appErr := pathID(r, "id")
	if appErr != nil {
		return appErr
	}

	if err := h.service.Delete(r.Context(), userID, boardID); err != nil {
		return boardError(err)
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id":  userID,
		"board_id": boardID,
	}).Info("Board deleted")

	common.RespondJSON(w, http.StatusOK, model.DetailResponse{Detail: "Board deleted"})
	return nil
}

// AddColumn godoc
// @Summary      Add a column
// @Tags         boards
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id      path      int                  true  "Board ID"
// @Param        column  body      model.ColumnRequest  true  "Column"
// @Success      200     {object}  model.Column
// @Failure      400     {object}  common.AppError
// @Failure      404     {object}  common.AppError
// @Router       /boards/{id}/columns [post]
func (h *BoardHandler) AddColumn(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := userIDFrom(r)
	if appErr != nil {
		return appErr
	}
	boardID, appErr := pathID(r, "id")
	if appErr != nil {
		return appErr
	}

	var req model.ColumnRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	column, err := h.service.AddColumn(r.Context(), userID, boardID, req)
	if err != nil {
		return boardError(err)
	}

	common.RespondJSON(w, http.StatusOK, column)
	return nil
}

// DeleteColumn godoc
// @Summary      Delete a column
// @Description  Deletes the column and every task in it.
// @Tags         boards
// @Produce      json
// @Security     CookieAuth
// @Param        id     path      int  true  "Board ID"
// @Param        colId  path      int  true  "Column ID"
// @Success      200    {object}  model.DetailResponse
// @Failure      404    {object}  common.AppError
// @Router       /boards/{id}/columns/{colId} [delete]
func (h *BoardHandler) DeleteColumn(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := userIDFrom(r)
	if appErr != nil {
		return appErr
	}
	boardID, appErr := pathID(r, "id")
	if appErr != nil {
		return appErr
	}
	columnID, appErr := pathID(r, "colId")
	if appErr != nil {
		return appErr
	}

	if err := h.service.DeleteColumn(r.Context(), userID, boardID, columnID); err != nil {
		return boardError(err)
	}

	common.RespondJSON(w, http.StatusOK, model.DetailResponse{Detail: "Column deleted"})
	return nil
}
