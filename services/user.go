package services

import (
	"encoding/json"
	"errors"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"github.com/spectrum-bridge/spectrum_api/dto"
	"github.com/spectrum-bridge/spectrum_api/shared"
	"gorm.io/gorm"
)

type UserService struct {
	context.DefaultService

	sqlSvc *PostgresService
}

const USER_SVC = "user_svc"

func (svc UserService) Id() string {
	return USER_SVC
}

func (svc *UserService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	return nil
}

func (svc *UserService) GetProfile(userID string) (*dto.UserProfileResponse, error) {
	user, err := svc.sqlSvc.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "user not found")
		}
		return nil, shared.NewInternalError(err, "failed to load user")
	}

	return &dto.UserProfileResponse{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Role:        user.Role,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Bio:         user.Bio,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}, nil
}

func (svc *UserService) UpdateProfile(userID string, req dto.UpdateProfileRequest) (*dto.UserProfileResponse, error) {
	updates := map[string]interface{}{}
	if req.FirstName != "" {
		updates["first_name"] = req.FirstName
	}
	if req.LastName != "" {
		updates["last_name"] = req.LastName
	}
	if req.Bio != "" {
		updates["bio"] = req.Bio
	}

	if len(updates) > 0 {
		if err := svc.sqlSvc.UpdateUserProfile(userID, updates); err != nil {
			return nil, shared.NewInternalError(err, "failed to update profile")
		}
	}

	return svc.GetProfile(userID)
}

// LinkRelatedUser attaches another account to a parent or healthcare
// provider so they can read that user's session reports.
func (svc *UserService) LinkRelatedUser(userID string, req dto.LinkRelatedUserRequest) error {
	user, err := svc.sqlSvc.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.NewNotFoundError(err, "user not found")
		}
		return shared.NewInternalError(err, "failed to load user")
	}

	if user.Role != shared.RoleParent && user.Role != shared.RoleHealthcareProvider {
		return shared.NewForbiddenError(nil, "only parents and healthcare providers can link users")
	}

	target, err := svc.sqlSvc.GetUserByID(req.RelatedUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.NewNotFoundError(err, "related user not found")
		}
		return shared.NewInternalError(err, "failed to load related user")
	}

	var ids []string
	if len(user.RelatedUserIDs) > 0 {
		if err := json.Unmarshal(user.RelatedUserIDs, &ids); err != nil {
			return shared.NewInternalError(err, "failed to decode related users")
		}
	}
	for _, id := range ids {
		if id == target.ID {
			return nil
		}
	}
	ids = append(ids, target.ID)

	raw, err := json.Marshal(ids)
	if err != nil {
		return shared.NewInternalError(err, "failed to encode related users")
	}
	user.RelatedUserIDs = raw

	if err := svc.sqlSvc.UpdateUser(user); err != nil {
		return shared.NewInternalError(err, "failed to save user")
	}

	log.WithFields(log.Fields{
		"user_id":    userID,
		"related_id": target.ID,
	}).Info("Related user linked")

	return nil
}
