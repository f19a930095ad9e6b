package handler

import (
	"joban-api/common"
	"net/http"
)

// ErrorHandlingMiddleware adapts a handler that returns *common.AppError.
func ErrorHandlingMiddleware(next func(http.ResponseWriter, *http.Request) *common.AppError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := next(w, r); err != nil {
			err.Send(w)
		}
	}
}
