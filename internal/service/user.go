package service

import (
	"github.com/pathbound/pathbound/internal/model"
	"github.com/pathbound/pathbound/internal/repository"
)

// UserService resolves owner records for the auth boundary. Account
// lifecycle (sign-up, sessions, profile) lives in the external
// identity service.
type UserService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) ByID(id string) (*model.User, error) {
	return s.repo.ByID(id)
}

func (s *UserService) ByEmail(email string) (*model.User, error) {
	return s.repo.ByEmail(email)
}
