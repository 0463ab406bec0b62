package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/tungtungsport/storefront/internal/domain/order"
)

// PaymentProofModel is the persistence model for an uploaded bank transfer receipt
type PaymentProofModel struct {
	AggregateModel
	OrderID     uuid.UUID `gorm:"type:uuid;not null;index"`
	CustomerID  uuid.UUID `gorm:"type:uuid;not null;index"`
	ImageKey    string    `gorm:"type:varchar(500);not null"`
	ContentType string    `gorm:"type:varchar(50);not null"`
	Size        int64     `gorm:"not null"`
	Status      string    `gorm:"type:varchar(20);not null;index"`
	AdminNotes  string    `gorm:"type:text"`
	ReviewedAt  *time.Time
}

// TableName returns the table name for GORM
func (PaymentProofModel) TableName() string {
	return "payment_proofs"
}

// ToDomain converts the persistence model to a domain PaymentProof
func (m *PaymentProofModel) ToDomain() *order.PaymentProof {
	return &order.PaymentProof{
		BaseAggregateRoot: m.ToAggregateRoot(),
		OrderID:           m.OrderID,
		CustomerID:        m.CustomerID,
		ImageKey:          m.ImageKey,
		ContentType:       m.ContentType,
		Size:              m.Size,
		Status:            order.ProofStatus(m.Status),
		AdminNotes:        m.AdminNotes,
		ReviewedAt:        m.ReviewedAt,
	}
}

// PaymentProofFromDomain creates a persistence model from a domain PaymentProof
func PaymentProofFromDomain(p *order.PaymentProof) *PaymentProofModel {
	m := &PaymentProofModel{
		OrderID:     p.OrderID,
		CustomerID:  p.CustomerID,
		ImageKey:    p.ImageKey,
		ContentType: p.ContentType,
		Size:        p.Size,
		Status:      string(p.Status),
		AdminNotes:  p.AdminNotes,
		ReviewedAt:  p.ReviewedAt,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}
