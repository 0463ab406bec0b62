package order

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tungtungsport/storefront/internal/domain/shared"
)

// MaxProofSize is the largest accepted payment proof image
const MaxProofSize int64 = 5 << 20

var proofExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// ProofExtension returns the file extension for an accepted image type
func ProofExtension(contentType string) (string, bool) {
	ext, ok := proofExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	return ext, ok
}

// ProofStatus is the verification status of a payment proof
type ProofStatus string

const (
	ProofStatusPending  ProofStatus = "PENDING"
	ProofStatusVerified ProofStatus = "VERIFIED"
	ProofStatusRejected ProofStatus = "REJECTED"
)

// IsValid checks if the proof status is a valid value
func (s ProofStatus) IsValid() bool {
	return s == ProofStatusPending || s == ProofStatusVerified || s == ProofStatusRejected
}

// String returns the string representation of the proof status
func (s ProofStatus) String() string {
	return string(s)
}

// PaymentProof is an uploaded bank transfer receipt awaiting staff review
type PaymentProof struct {
	shared.BaseAggregateRoot
	OrderID     uuid.UUID
	CustomerID  uuid.UUID
	ImageKey    string
	ContentType string
	Size        int64
	Status      ProofStatus
	AdminNotes  string
	ReviewedAt  *time.Time
}

// ProofObjectKey builds the storage key of a proof image
func ProofObjectKey(customerID, orderID uuid.UUID, contentType string, now time.Time) (string, error) {
	ext, ok := ProofExtension(contentType)
	if !ok {
		return "", shared.NewDomainError(shared.ErrInvalidInput.Code, "Payment proof must be a JPEG, PNG or WebP image")
	}
	return customerID.String() + "/" + orderID.String() + "/" +
		strconv.FormatInt(now.UnixMilli(), 10) + "." + ext, nil
}

// CheckProofUpload validates that the customer may attach a proof to the order
func (o *Order) CheckProofUpload(customerID uuid.UUID, contentType string, size int64) error {
	if err := o.EnsureOwnedBy(customerID); err != nil {
		return err
	}
	if o.PaymentMethod != PaymentMethodBankTransfer {
		return shared.NewDomainError(shared.CodeInvalidTransition, "Cash on delivery orders do not take a payment proof")
	}
	if o.Status != StatusUnpaid && o.Status != StatusAwaitingPaymentConfirmation {
		return invalidTransition(o.Status, StatusAwaitingPaymentConfirmation)
	}
	if _, ok := ProofExtension(contentType); !ok {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "Payment proof must be a JPEG, PNG or WebP image")
	}
	if size <= 0 || size > MaxProofSize {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "Payment proof must be at most 5 MB")
	}
	return nil
}

// SubmitPaymentProof records an uploaded receipt. An unpaid order moves to
// awaiting confirmation; a re-upload while awaiting leaves the status alone.
func (o *Order) SubmitPaymentProof(customerID uuid.UUID, imageKey, contentType string, size int64, now time.Time) (*PaymentProof, error) {
	if err := o.CheckProofUpload(customerID, contentType, size); err != nil {
		return nil, err
	}
	if strings.TrimSpace(imageKey) == "" {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Payment proof image is required")
	}
	if err := o.MarkPaymentSubmitted(now); err != nil {
		return nil, err
	}

	p := &PaymentProof{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           o.ID,
		CustomerID:        o.CustomerID,
		ImageKey:          imageKey,
		ContentType:       strings.ToLower(contentType),
		Size:              size,
		Status:            ProofStatusPending,
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	p.AddDomainEvent(NewPaymentProofSubmittedEvent(p))
	return p, nil
}

// Verify accepts the proof
func (p *PaymentProof) Verify(now time.Time) error {
	return p.review(ProofStatusVerified, "", now)
}

// Reject declines the proof. The order stays awaiting so the customer can upload again.
func (p *PaymentProof) Reject(notes string, now time.Time) error {
	if strings.TrimSpace(notes) == "" {
		return shared.NewDomainError(shared.ErrInvalidInput.Code, "Rejection notes are required")
	}
	return p.review(ProofStatusRejected, notes, now)
}

// SupersededNote is recorded on receipts closed because the order's payment
// was confirmed some other way
const SupersededNote = "Superseded: payment for this order is already confirmed"

// Supersede closes a pending proof whose order no longer waits for payment
func (p *PaymentProof) Supersede(now time.Time) error {
	return p.review(ProofStatusRejected, SupersededNote, now)
}

func (p *PaymentProof) review(target ProofStatus, notes string, now time.Time) error {
	if p.Status != ProofStatusPending {
		return shared.NewDomainError(shared.CodeInvalidTransition, "Payment proof was already reviewed")
	}
	p.Status = target
	p.AdminNotes = strings.TrimSpace(notes)
	reviewed := now
	p.ReviewedAt = &reviewed
	p.UpdatedAt = now
	return nil
}
