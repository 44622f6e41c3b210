package model

import "time"

// User 表示一个注册用户。Password 保存的是哈希值，Token 为当前唯一有效的会话令牌。
type User struct {
	ID        int64
	Username  string
	Password  string
	Email     string
	Avatar    string
	Token     string
	CreatedAt time.Time
}

// PublicUser 是对外暴露的用户视图，不包含密码和令牌
type PublicUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
}

// Public 返回用户的公开视图
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Avatar:   u.Avatar,
	}
}

// Session 是注册或登录成功后返回的数据
type Session struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}
