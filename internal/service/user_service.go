package service

import (
	"errors"
	"interview_card_backend/internal/model"
	"interview_card_backend/internal/repository"
	"interview_card_backend/internal/util"

	"gorm.io/gorm"
)

// UserService covers the admin-facing user operations.
type UserService struct {
	UserRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{UserRepo: userRepo}
}

func (s *UserService) List(page, limit int, role string) ([]model.User, int64, error) {
	return s.UserRepo.List(page, limit, role)
}

func (s *UserService) SetDisabled(userID uint, disabled bool) (*model.User, error) {
	if _, err := s.UserRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	if err := s.UserRepo.SetDisabled(userID, disabled); err != nil {
		return nil, err
	}
	return s.UserRepo.FindByID(userID)
}

func (s *UserService) SetRole(userID uint, role model.UserRole) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	user.Role = role
	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}
