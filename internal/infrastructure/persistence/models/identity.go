package models

import (
	"time"

	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	AggregateModel
	Username     string        `gorm:"type:varchar(100);not null;uniqueIndex"`
	Email        string        `gorm:"type:varchar(200)"`
	DisplayName  string        `gorm:"type:varchar(200)"`
	PasswordHash string        `gorm:"type:varchar(255);not null"`
	Role         identity.Role `gorm:"type:varchar(20);not null;default:'USER'"`
	Active       bool          `gorm:"not null;default:true"`
	LastLoginAt  *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.toAggregate(),
		Username:          m.Username,
		Email:             m.Email,
		DisplayName:       m.DisplayName,
		PasswordHash:      m.PasswordHash,
		Role:              m.Role,
		Active:            m.Active,
		LastLoginAt:       m.LastLoginAt,
	}
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.fromAggregate(u.BaseAggregateRoot)
	m.Username = u.Username
	m.Email = u.Email
	m.DisplayName = u.DisplayName
	m.PasswordHash = u.PasswordHash
	m.Role = u.Role
	m.Active = u.Active
	m.LastLoginAt = u.LastLoginAt
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
