package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/johnpackercoaching/willing-tree-sub001/internal/repository"
	"github.com/johnpackercoaching/willing-tree-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

// ProfileHandler holds the profile service dependency.
type ProfileHandler struct {
	profileService service.ProfileService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profileService service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// --- Request Structs ---

type PhotoUploadURLRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type ConfirmPhotoRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

// --- Handler Methods ---

// GetMe returns the authenticated user's own account.
func (h *ProfileHandler) GetMe(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	user, err := h.profileService.GetMe(c.Request.Context(), userID)
	if err != nil {
		respondStorageError(c, err, "Failed to load profile")
		return
	}

	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// RequestPhotoUploadURL returns a presigned PUT URL for a profile photo.
func (h *ProfileHandler) RequestPhotoUploadURL(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req PhotoUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	resp, err := h.profileService.RequestPhotoUploadURL(c.Request.Context(), userID, req.ContentType)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPhotoType) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Could not generate upload URL")
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ConfirmPhoto records a completed photo upload.
func (h *ProfileHandler) ConfirmPhoto(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req ConfirmPhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := h.profileService.ConfirmPhoto(c.Request.Context(), userID, req.ObjectKey)
	if err != nil {
		respondStorageError(c, err, "Could not confirm photo upload")
		return
	}

	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// GetPhotoURL returns a temporary download URL for the user's photo.
func (h *ProfileHandler) GetPhotoURL(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	url, err := h.profileService.GetPhotoDownloadURL(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "No profile photo uploaded")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Could not generate photo URL")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
