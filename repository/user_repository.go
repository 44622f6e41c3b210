package repository

import (
	"musicbox/core/auth"
	"musicbox/model"

	"github.com/samber/lo"
)

// UserRepository defines the identity store operations.
type UserRepository interface {
	Register(username, password, email string) (*model.Session, error)
	Login(username, password string) (*model.Session, error)
	Authenticate(token string) (*model.User, bool)
	UpdateAvatar(userID int64, avatar string) (model.PublicUser, error)
	GetUserByID(id int64) (*model.User, error)
}

// Register creates a user and issues its first token.
func (s *MemoryStore) Register(username, password, email string) (*model.Session, error) {
	if username == "" || password == "" {
		return nil, model.NewError(model.ErrValidation, "用户名和密码不能为空")
	}

	// bcrypt 较慢，在锁外计算
	hash, err := auth.HashPassword(password, s.passwordCost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.findUserByUsername(username); ok {
		return nil, model.NewError(model.ErrConflict, "用户名已存在")
	}

	user := &model.User{
		ID:        next(&s.seq.user),
		Username:  username,
		Password:  hash,
		Email:     email,
		CreatedAt: s.now(),
	}
	s.users = append(s.users, user)

	return s.issueToken(user), nil
}

// Login verifies credentials and replaces the user's token, invalidating the previous one.
func (s *MemoryStore) Login(username, password string) (*model.Session, error) {
	s.mu.RLock()
	user, ok := s.findUserByUsername(username)
	var hash string
	if ok {
		hash = user.Password
	}
	s.mu.RUnlock()

	if !ok || !auth.CheckPasswordHash(password, hash) {
		return nil, model.NewError(model.ErrAuth, "用户名或密码错误")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueToken(user), nil
}

// Authenticate resolves a bearer token. Empty and unknown tokens both report false.
func (s *MemoryStore) Authenticate(token string) (*model.User, bool) {
	if token == "" {
		return nil, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.tokens[token]
	if !ok {
		return nil, false
	}
	user, ok := s.findUserByID(id)
	if !ok || user.Token != token {
		return nil, false
	}
	copied := *user
	return &copied, true
}

// UpdateAvatar 原地修改头像，不校验内容
func (s *MemoryStore) UpdateAvatar(userID int64, avatar string) (model.PublicUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.findUserByID(userID)
	if !ok {
		return model.PublicUser{}, model.NewError(model.ErrNotFound, "用户不存在")
	}
	user.Avatar = avatar
	return user.Public(), nil
}

// GetUserByID retrieves a user by their ID.
func (s *MemoryStore) GetUserByID(id int64) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.findUserByID(id)
	if !ok {
		return nil, model.NewError(model.ErrNotFound, "用户不存在")
	}
	copied := *user
	return &copied, nil
}

// issueToken must be called with the write lock held.
func (s *MemoryStore) issueToken(user *model.User) *model.Session {
	if user.Token != "" {
		delete(s.tokens, user.Token)
	}
	token := auth.NewToken()
	user.Token = token
	s.tokens[token] = user.ID

	return &model.Session{Token: token, User: user.Public()}
}

func (s *MemoryStore) findUserByUsername(username string) (*model.User, bool) {
	return lo.Find(s.users, func(u *model.User) bool { return u.Username == username })
}

func (s *MemoryStore) findUserByID(id int64) (*model.User, bool) {
	return lo.Find(s.users, func(u *model.User) bool { return u.ID == id })
}
