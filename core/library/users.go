package library

import (
	"musicbox/logger"
	"musicbox/model"
)

// Register creates an account and returns its first session.
func (s *Service) Register(username, password, email string) (*model.Session, error) {
	session, err := s.store.Register(username, password, email)
	if err != nil {
		return nil, err
	}
	logger.Info("用户注册成功", logger.Int64("userID", session.User.ID), logger.String("username", username))
	return session, nil
}

// Login issues a fresh token; the previous token of the user stops working.
func (s *Service) Login(username, password string) (*model.Session, error) {
	session, err := s.store.Login(username, password)
	if err != nil {
		logger.Warn("登录失败", logger.String("username", username))
		return nil, err
	}
	return session, nil
}

// Authenticate resolves a bearer token to its user.
func (s *Service) Authenticate(token string) (*model.User, error) {
	user, ok := s.store.Authenticate(token)
	if !ok {
		return nil, model.NewError(model.ErrAuth, "未登录或登录已过期")
	}
	return user, nil
}

// UpdateProfile changes the avatar when one is given and returns the public profile.
func (s *Service) UpdateProfile(user *model.User, avatar *string) (model.PublicUser, error) {
	if avatar == nil {
		return user.Public(), nil
	}
	return s.store.UpdateAvatar(user.ID, *avatar)
}
