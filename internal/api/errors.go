package api

import (
	"errors"
	"net/http"

	"github.com/johnpackercoaching/willing-tree-sub001/internal/core"
	"github.com/johnpackercoaching/willing-tree-sub001/internal/repository"
	"github.com/johnpackercoaching/willing-tree-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

// respondWorkflowError translates weekly-workflow errors into responses a
// partner can act on. Phase conflicts are not failures: they mean "wait for
// your partner" or "already submitted", never a generic error.
func respondWorkflowError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrPhaseMismatch):
		abortWithError(c, http.StatusConflict, "This step is not open yet — wait for your partner")
	case errors.Is(err, core.ErrAlreadySubmitted):
		abortWithError(c, http.StatusConflict, "You already submitted for this step")
	case errors.Is(err, core.ErrDocumentClosed):
		abortWithError(c, http.StatusConflict, "This week is complete and can no longer be changed")
	case errors.Is(err, core.ErrNothingToRevise):
		abortWithError(c, http.StatusConflict, "Nothing submitted yet for this step")
	case errors.Is(err, core.ErrInvalidSubmission):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, core.ErrIncompleteScoringInput):
		// Data-integrity bug between detector and scorer; already logged.
		abortWithError(c, http.StatusInternalServerError, "Scoring failed due to inconsistent data")
	case errors.Is(err, service.ErrInnermostNotFound), errors.Is(err, service.ErrWeekNotFound), errors.Is(err, service.ErrScoreNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotInnermostMember):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInnermostNotActive):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, repository.ErrStorageUnavailable):
		abortWithError(c, http.StatusServiceUnavailable, "Storage temporarily unavailable")
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// respondStorageError handles the common repository outcomes for simple
// load/save paths.
func respondStorageError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		abortWithError(c, http.StatusNotFound, "Not found")
	case errors.Is(err, repository.ErrStorageUnavailable):
		abortWithError(c, http.StatusServiceUnavailable, "Storage temporarily unavailable")
	default:
		abortWithError(c, http.StatusInternalServerError, fallback)
	}
}
