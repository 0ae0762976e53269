package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/RaviiSharma/Amazon-Clone/repository"
	"github.com/RaviiSharma/Amazon-Clone/service"
	"github.com/RaviiSharma/Amazon-Clone/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var kindStatus = map[service.Kind]int{
	service.KindNotFound:          http.StatusNotFound,
	service.KindInvalidState:      http.StatusBadRequest,
	service.KindInvalidTransition: http.StatusBadRequest,
	service.KindEmptyCart:         http.StatusBadRequest,
	service.KindValidation:        http.StatusBadRequest,
	service.KindForbidden:         http.StatusForbidden,
	service.KindConflict:          http.StatusConflict,
}

// respondServiceError maps a typed failure to its status code. Anything
// untyped is logged and reported as a generic 500.
func respondServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var se *service.Error
	if errors.As(err, &se) {
		if status, ok := kindStatus[se.Kind]; ok {
			utils.RespondError(w, status, string(se.Kind), se.Error())
			return
		}
	}
	if errors.Is(err, repository.ErrNotFound) {
		utils.RespondError(w, http.StatusNotFound, string(service.KindNotFound), "not found")
		return
	}
	logger.Error("request failed", "error", err)
	utils.RespondError(w, http.StatusInternalServerError, "Internal", "internal server error")
}

func badRequest(w http.ResponseWriter, message string) {
	utils.RespondError(w, http.StatusBadRequest, string(service.KindValidation), message)
}

func parseObjectID(w http.ResponseWriter, value, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		badRequest(w, name+" is required and should be valid")
		return primitive.NilObjectID, false
	}
	return id, true
}
