package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/naykakashima/timetable-api/internal/models"
	appErrors "github.com/naykakashima/timetable-api/pkg/errors"
)

// UserService exposes read access to user profiles.
type UserService struct {
	users  userRepository
	logger *zap.Logger
}

// NewUserService constructs a UserService.
func NewUserService(users userRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, logger: logger}
}

// GetByID returns the public profile of a user.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.UserInfo, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, err
	}
	info := user.Info()
	return &info, nil
}
