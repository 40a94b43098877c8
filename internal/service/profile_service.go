package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/johnpackercoaching/willing-tree-sub001/internal/domain"
	"github.com/johnpackercoaching/willing-tree-sub001/internal/repository"
	"github.com/johnpackercoaching/willing-tree-sub001/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrInvalidPhotoType = errors.New("invalid or missing image content type")
	ErrPhotoURLError    = errors.New("failed to generate photo URL")
)

// PhotoUploadResponse returns the presigned URL and the key the client must
// report back on confirm.
type PhotoUploadResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// ProfileService handles the user's own account view and profile photo
// uploads. Photos go directly to object storage via presigned URLs; the
// service only brokers URLs and records the confirmed key.
type ProfileService interface {
	GetMe(ctx context.Context, userID primitive.ObjectID) (*domain.User, error)
	RequestPhotoUploadURL(ctx context.Context, userID primitive.ObjectID, contentType string) (*PhotoUploadResponse, error)
	ConfirmPhoto(ctx context.Context, userID primitive.ObjectID, objectKey string) (*domain.User, error)
	GetPhotoDownloadURL(ctx context.Context, userID primitive.ObjectID) (string, error)
}

// --- Service Implementation ---

type profileService struct {
	userRepo    repository.UserRepository
	fileStorage storage.FileStorage
}

// NewProfileService creates a new instance of profileService.
func NewProfileService(userRepo repository.UserRepository, fileStorage storage.FileStorage) ProfileService {
	return &profileService{
		userRepo:    userRepo,
		fileStorage: fileStorage,
	}
}

// GetMe returns the caller's own account.
func (s *profileService) GetMe(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// RequestPhotoUploadURL generates a presigned PUT URL for a profile photo.
func (s *profileService) RequestPhotoUploadURL(ctx context.Context, userID primitive.ObjectID, contentType string) (*PhotoUploadResponse, error) {
	if userID == primitive.NilObjectID {
		return nil, errors.New("user ID is required")
	}
	if contentType == "" || !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return nil, ErrInvalidPhotoType
	}

	// Unique object key per upload so a new photo never clobbers the old
	// one mid-confirm.
	fileExtension := ""
	parts := strings.Split(contentType, "/")
	if len(parts) == 2 {
		fileExtension = parts[1]
	}
	objectKey := path.Join("photos", userID.Hex(), fmt.Sprintf("%s.%s", uuid.NewString(), fileExtension))

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrPhotoURLError
	}

	return &PhotoUploadResponse{
		UploadURL: uploadURL,
		ObjectKey: objectKey,
	}, nil
}

// ConfirmPhoto records the uploaded object key on the user and deletes the
// previous photo, if any.
func (s *profileService) ConfirmPhoto(ctx context.Context, userID primitive.ObjectID, objectKey string) (*domain.User, error) {
	if objectKey == "" {
		return nil, errors.New("object key is required")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	previousKey := user.PhotoObjectKey

	if err := s.userRepo.SetPhotoObjectKey(ctx, userID, objectKey); err != nil {
		return nil, err
	}
	user.PhotoObjectKey = objectKey

	// Best effort: the new key is already recorded, a stale object is only
	// a storage leak.
	if previousKey != "" && previousKey != objectKey {
		_ = s.fileStorage.DeleteObject(ctx, previousKey)
	}

	user.PasswordHash = ""
	return user, nil
}

// GetPhotoDownloadURL generates a temporary URL for viewing the user's photo.
func (s *profileService) GetPhotoDownloadURL(ctx context.Context, userID primitive.ObjectID) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.PhotoObjectKey == "" {
		return "", repository.ErrNotFound
	}

	downloadURL, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, user.PhotoObjectKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", ErrPhotoURLError
	}
	return downloadURL, nil
}
