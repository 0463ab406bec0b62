package order

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/tungtungsport/storefront/internal/domain/order"
	"github.com/tungtungsport/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// ProofStorage stores payment proof images
type ProofStorage interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	PresignURL(ctx context.Context, key string) (string, error)
}

// PaymentProofService handles bank transfer receipts
type PaymentProofService struct {
	txScope        TransactionScope
	orderRepo      order.OrderRepository
	proofRepo      order.PaymentProofRepository
	storage        ProofStorage
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewPaymentProofService creates a new PaymentProofService
func NewPaymentProofService(
	txScope TransactionScope,
	orderRepo order.OrderRepository,
	proofRepo order.PaymentProofRepository,
	storage ProofStorage,
	logger *zap.Logger,
) *PaymentProofService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentProofService{
		txScope:   txScope,
		orderRepo: orderRepo,
		proofRepo: proofRepo,
		storage:   storage,
		logger:    logger.Named("payment_proofs"),
		now:       time.Now,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *PaymentProofService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Upload stores the image, records the proof and moves an unpaid order to
// awaiting confirmation. The stored object is removed when the database
// write fails.
func (s *PaymentProofService) Upload(ctx context.Context, in UploadProofInput) (*PaymentProofResponse, error) {
	if in.CustomerID == uuid.Nil {
		return nil, shared.ErrNotAuthenticated
	}
	o, err := s.orderRepo.FindByID(ctx, in.OrderID)
	if err != nil {
		return nil, persistenceError(err)
	}
	if err := o.CheckProofUpload(in.CustomerID, in.ContentType, in.Size); err != nil {
		return nil, err
	}

	now := s.now()
	key, err := order.ProofObjectKey(in.CustomerID, o.ID, in.ContentType, now)
	if err != nil {
		return nil, err
	}
	if err := s.storage.Upload(ctx, key, in.ContentType, in.Body, in.Size); err != nil {
		s.logger.Error("failed to store payment proof", zap.String("key", key), zap.Error(err))
		return nil, persistenceError(err)
	}

	proof, err := o.SubmitPaymentProof(in.CustomerID, key, in.ContentType, in.Size, now)
	if err != nil {
		s.discard(ctx, key)
		return nil, err
	}

	orderChanged := len(o.GetDomainEvents()) > 0
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.ProofRepo().Create(ctx, proof); err != nil {
			return err
		}
		if !orderChanged {
			return nil
		}
		return repos.OrderRepo().SaveWithLock(ctx, o)
	})
	if err != nil {
		s.discard(ctx, key)
		return nil, persistenceError(err)
	}

	s.logger.Info("payment proof uploaded",
		zap.String("proof_id", proof.ID.String()),
		zap.String("order_id", o.ID.String()),
		zap.String("status", string(o.Status)),
	)
	publishEvents(ctx, s.eventPublisher, s.logger, o, proof)

	return s.reload(ctx, proof.ID)
}

// discard removes an uploaded object that no proof row points to
func (s *PaymentProofService) discard(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Error("failed to delete orphaned payment proof", zap.String("key", key), zap.Error(err))
	}
}

// Verify accepts a proof and confirms the order's payment (staff)
func (s *PaymentProofService) Verify(ctx context.Context, proofID uuid.UUID) (*PaymentProofResponse, error) {
	proof, err := s.proofRepo.FindByID(ctx, proofID)
	if err != nil {
		return nil, persistenceError(err)
	}
	o, err := s.orderRepo.FindByID(ctx, proof.OrderID)
	if err != nil {
		return nil, persistenceError(err)
	}

	now := s.now()
	if err := proof.Verify(now); err != nil {
		return nil, err
	}
	if err := o.ConfirmPayment(now); err != nil {
		return nil, err
	}

	var superseded int
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.ProofRepo().SaveWithLock(ctx, proof); err != nil {
			return err
		}
		if err := repos.OrderRepo().SaveWithLock(ctx, o); err != nil {
			return err
		}
		superseded, err = supersedePendingProofs(ctx, repos.ProofRepo(), o.ID, proof.ID, now)
		return err
	})
	if err != nil {
		return nil, persistenceError(err)
	}

	s.logger.Info("payment proof verified",
		zap.String("proof_id", proof.ID.String()),
		zap.String("order_id", o.ID.String()),
		zap.Int("superseded", superseded),
	)
	publishEvents(ctx, s.eventPublisher, s.logger, o, proof)
	return s.reload(ctx, proof.ID)
}

// supersedePendingProofs closes every pending receipt of the order except
// keep, returning how many were closed
func supersedePendingProofs(ctx context.Context, repo order.PaymentProofRepository, orderID, keep uuid.UUID, now time.Time) (int, error) {
	proofs, err := repo.FindByOrder(ctx, orderID)
	if err != nil {
		return 0, err
	}
	closed := 0
	for i := range proofs {
		p := &proofs[i]
		if p.ID == keep || p.Status != order.ProofStatusPending {
			continue
		}
		if err := p.Supersede(now); err != nil {
			return closed, err
		}
		if err := repo.SaveWithLock(ctx, p); err != nil {
			return closed, err
		}
		closed++
	}
	return closed, nil
}

// Reject declines a proof (staff). The order keeps awaiting confirmation so
// the customer can upload a new receipt.
func (s *PaymentProofService) Reject(ctx context.Context, proofID uuid.UUID, notes string) (*PaymentProofResponse, error) {
	proof, err := s.proofRepo.FindByID(ctx, proofID)
	if err != nil {
		return nil, persistenceError(err)
	}
	if err := proof.Reject(notes, s.now()); err != nil {
		return nil, err
	}
	if err := s.proofRepo.SaveWithLock(ctx, proof); err != nil {
		return nil, persistenceError(err)
	}

	s.logger.Info("payment proof rejected",
		zap.String("proof_id", proof.ID.String()),
		zap.String("order_id", proof.OrderID.String()),
	)
	return s.reload(ctx, proof.ID)
}

// ListForOrder lists the proofs the customer uploaded for an order
func (s *PaymentProofService) ListForOrder(ctx context.Context, orderID, customerID uuid.UUID) ([]PaymentProofResponse, error) {
	if customerID == uuid.Nil {
		return nil, shared.ErrNotAuthenticated
	}
	if _, err := s.orderRepo.FindByIDForCustomer(ctx, orderID, customerID); err != nil {
		return nil, persistenceError(err)
	}
	proofs, err := s.proofRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, persistenceError(err)
	}
	return s.toResponses(ctx, proofs), nil
}

// ListPending lists proofs waiting for review (staff)
func (s *PaymentProofService) ListPending(ctx context.Context, page, pageSize int) ([]PaymentProofResponse, error) {
	proofs, err := s.proofRepo.FindPending(ctx, normalizeFilter(page, pageSize))
	if err != nil {
		return nil, persistenceError(err)
	}
	return s.toResponses(ctx, proofs), nil
}

func (s *PaymentProofService) toResponses(ctx context.Context, proofs []order.PaymentProof) []PaymentProofResponse {
	resp := make([]PaymentProofResponse, len(proofs))
	for i := range proofs {
		resp[i] = ToPaymentProofResponse(&proofs[i], s.downloadURL(ctx, proofs[i].ImageKey))
	}
	return resp
}

func (s *PaymentProofService) reload(ctx context.Context, proofID uuid.UUID) (*PaymentProofResponse, error) {
	proof, err := s.proofRepo.FindByID(ctx, proofID)
	if err != nil {
		return nil, persistenceError(err)
	}
	resp := ToPaymentProofResponse(proof, s.downloadURL(ctx, proof.ImageKey))
	return &resp, nil
}

// downloadURL presigns the image; a failure leaves the URL empty
func (s *PaymentProofService) downloadURL(ctx context.Context, key string) string {
	url, err := s.storage.PresignURL(ctx, key)
	if err != nil {
		s.logger.Warn("failed to presign payment proof", zap.String("key", key), zap.Error(err))
		return ""
	}
	return url
}
