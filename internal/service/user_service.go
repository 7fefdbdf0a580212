package service

import (
	"quizcraft_backend/internal/model"
	"quizcraft_backend/internal/repository"
	"quizcraft_backend/internal/util"
)

type UserService struct {
	Repo *repository.UserRepository
}

func NewUserService(repo *repository.UserRepository) *UserService {
	return &UserService{Repo: repo}
}

func (s *UserService) GetByID(id uint) (*model.User, error) {
	user, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, util.ErrUserNotFound
	}
	return user, nil
}

type ProfileUpdateReq struct {
	Name   *string `json:"name"`
	Avatar *string `json:"avatar"`
}

// UpdateProfile 档案更新不回写历史快照（试卷、成绩上的姓名保持提交时的值）
func (s *UserService) UpdateProfile(id uint, req ProfileUpdateReq) (*model.User, error) {
	user, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, util.ErrUserNotFound
	}
	if req.Name != nil && *req.Name != "" {
		user.Name = *req.Name
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}
	if err := s.Repo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}
