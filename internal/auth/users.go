package auth

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role 角色
type Role string

// 角色常量
const (
	RoleAdmin   Role = "admin"
	RoleOfficer Role = "officer"
	RoleHandler Role = "handler"
)

// User 角色标记的操作人身份
// 凭证校验与会话管理是外部协作方, 这里仅提供静态查找表
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// ErrInvalidCredentials 凭证不匹配
var ErrInvalidCredentials = errors.New("invalid credentials")

type staticUser struct {
	user         User
	passwordHash []byte
}

var mockUsers map[string]staticUser

func init() {
	now := time.Now()
	seed := []struct {
		user     User
		password string
	}{
		{User{ID: "1", Email: "admin@sagbama.gov", Name: "Administrator", Role: RoleAdmin, CreatedAt: now}, "admin123"},
		{User{ID: "2", Email: "officer@sagbama.gov", Name: "Verification Officer", Role: RoleOfficer, CreatedAt: now}, "officer123"},
		{User{ID: "3", Email: "handler@sagbama.gov", Name: "Document Handler", Role: RoleHandler, CreatedAt: now}, "handler123"},
	}
	mockUsers = make(map[string]staticUser, len(seed))
	for _, s := range seed {
		hash, err := bcrypt.GenerateFromPassword([]byte(s.password), bcrypt.DefaultCost)
		if err != nil {
			panic(err)
		}
		mockUsers[s.user.Email] = staticUser{user: s.user, passwordHash: hash}
	}
}

// ValidateCredentials 校验邮箱和口令, 成功返回角色标记的身份
func ValidateCredentials(email, password string) (*User, error) {
	su, ok := mockUsers[email]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(su.passwordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	u := su.user
	return &u, nil
}

// GetUserByEmail 根据邮箱查找身份
func GetUserByEmail(email string) (*User, bool) {
	su, ok := mockUsers[email]
	if !ok {
		return nil, false
	}
	u := su.user
	return &u, true
}

// GetAllUsers 返回全部身份
func GetAllUsers() []User {
	users := make([]User, 0, len(mockUsers))
	for _, su := range mockUsers {
		users = append(users, su.user)
	}
	return users
}
