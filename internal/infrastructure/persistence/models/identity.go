package models

import (
	"time"

	"github.com/tungtungsport/storefront/internal/domain/identity"
)

// CustomerModel is the persistence model for storefront accounts
type CustomerModel struct {
	AggregateModel
	Email        string `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash string `gorm:"type:varchar(100);not null"`
	Name         string `gorm:"type:varchar(200);not null"`
	Phone        string `gorm:"type:varchar(30)"`
	Address      string `gorm:"type:text"`
	Role         string `gorm:"type:varchar(20);not null;default:'customer'"`
	LastLoginAt  *time.Time
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer
func (m *CustomerModel) ToDomain() *identity.Customer {
	return &identity.Customer{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		Name:              m.Name,
		Phone:             m.Phone,
		Address:           m.Address,
		Role:              identity.Role(m.Role),
		LastLoginAt:       m.LastLoginAt,
	}
}

// CustomerFromDomain creates a persistence model from a domain Customer
func CustomerFromDomain(c *identity.Customer) *CustomerModel {
	m := &CustomerModel{
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		Name:         c.Name,
		Phone:        c.Phone,
		Address:      c.Address,
		Role:         string(c.Role),
		LastLoginAt:  c.LastLoginAt,
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}
