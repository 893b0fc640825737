package service

import (
	"context"
	"errors"
	"time"

	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/dto"
	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/infra"
	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/model"
	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/repository"
	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	// ErrInvalidCard covers structural card failures: bad Luhn checksum,
	// missing fields, malformed expiry. The message stays generic so card
	// digits never leak through an error string.
	ErrInvalidCard = errors.New("invalid card data")
	// ErrInsufficientPayment: received cash does not cover the sale total.
	ErrInsufficientPayment = errors.New("received amount is less than the sale total")
	// ErrMissingPaymentData: the request type and its data block disagree.
	ErrMissingPaymentData = errors.New("payment data missing for the requested type")
	// ErrNoOpenDrawer: cash payments require the operator's open drawer.
	ErrNoOpenDrawer = errors.New("operator has no open drawer")
	// ErrMethodMismatch: the selected method's category does not match the
	// requested payment type.
	ErrMethodMismatch = errors.New("payment method does not match payment type")
	// ErrAmountMismatch: the request amount disagrees with the sale total.
	// The sale is the source of truth; a stale client total is rejected.
	ErrAmountMismatch = errors.New("amount does not match the sale total")
)

type PaymentService interface {
	Process(ctx context.Context, operatorID uuid.UUID, req dto.ProcessPaymentRequest) (*dto.ProcessPaymentResponse, error)
}

type paymentService struct {
	payments  repository.PaymentRepository
	sales     repository.SaleRepository
	drawers   repository.DrawerRepository
	gateway   infra.Gateway
	tokenizer *infra.CardTokenizer
	vault     *infra.MetadataVault
	audit     AuditLogger
	// gatewayTimeout caps a single authorization round trip.
	gatewayTimeout time.Duration
}

func NewPaymentService(
	payments repository.PaymentRepository,
	sales repository.SaleRepository,
	drawers repository.DrawerRepository,
	gateway infra.Gateway,
	tokenizer *infra.CardTokenizer,
	vault *infra.MetadataVault,
	audit AuditLogger,
	gatewayTimeout time.Duration,
) PaymentService {
	return &paymentService{
		payments:       payments,
		sales:          sales,
		drawers:        drawers,
		gateway:        gateway,
		tokenizer:      tokenizer,
		vault:          vault,
		audit:          audit,
		gatewayTimeout: gatewayTimeout,
	}
}

// Process runs one payment attempt end to end. All request validation happens
// before the first audit event or database write, so a rejected request leaves
// no trace beyond the HTTP error. After the "initiated" audit event every path
// writes exactly one terminal payment record and one terminal audit event.
func (s *paymentService) Process(ctx context.Context, operatorID uuid.UUID, req dto.ProcessPaymentRequest) (*dto.ProcessPaymentResponse, error) {
	saleID, err := uuid.Parse(req.SaleID)
	if err != nil {
		return nil, repository.ErrSaleNotFound
	}
	methodID, err := uuid.Parse(req.PaymentMethodID)
	if err != nil {
		return nil, repository.ErrMethodNotFound
	}

	sale, err := s.sales.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if !req.Amount.Equal(sale.Total) {
		return nil, ErrAmountMismatch
	}
	method, err := s.payments.FindMethod(ctx, methodID)
	if err != nil {
		return nil, err
	}
	if method.Category != req.Type {
		return nil, ErrMethodMismatch
	}

	switch req.Type {
	case model.MethodCash:
		return s.processCash(ctx, operatorID, sale, method, req)
	case model.MethodCard:
		return s.processCard(ctx, operatorID, sale, method, req)
	case model.MethodMobile:
		return s.processMobile(ctx, operatorID, sale, method, req)
	default:
		return nil, ErrMissingPaymentData
	}
}

// ── Cash ─────────────────────────────────────────────────────────────────────

// processCash records the sale total and the change as two chained ledger
// entries in one atomic append, so the drawer can never show the revenue
// without the change deduction. Only the sale-covering amount is booked as
// cash_received; the full tender survives on the payment record.
func (s *paymentService) processCash(ctx context.Context, operatorID uuid.UUID, sale *model.Sale, method *model.PaymentMethod, req dto.ProcessPaymentRequest) (*dto.ProcessPaymentResponse, error) {
	if req.Cash == nil {
		return nil, ErrMissingPaymentData
	}
	if req.Cash.AmountReceived.LessThan(sale.Total) {
		return nil, ErrInsufficientPayment
	}

	drawer, err := s.drawers.FindOpenByOperator(ctx, operatorID)
	if err != nil {
		return nil, err
	}
	if drawer == nil {
		return nil, ErrNoOpenDrawer
	}

	s.auditPayment(ctx, "payment_initiated", model.AuditSuccess, model.RiskLow, operatorID, sale.ID, method.ID, map[string]interface{}{
		"type":   model.MethodCash,
		"amount": sale.Total.String(),
	})

	change := req.Cash.AmountReceived.Sub(sale.Total)

	entries := []repository.NewEntry{{
		OperatorID:  operatorID,
		Type:        model.EntryCashReceived,
		Amount:      sale.Total,
		Description: "cash received for sale " + sale.ID.String(),
	}}
	if change.IsPositive() {
		entries = append(entries, repository.NewEntry{
			OperatorID:  operatorID,
			Type:        model.EntryChangeGiven,
			Amount:      change.Neg(),
			Description: "change given for sale " + sale.ID.String(),
		})
	}
	if _, err := s.drawers.AppendEntries(ctx, drawer.ID, entries); err != nil {
		s.auditPayment(ctx, "payment_completed", model.AuditError, model.RiskHigh, operatorID, sale.ID, method.ID, map[string]interface{}{
			"type":   model.MethodCash,
			"reason": "ledger append failed",
		})
		return nil, err
	}

	received := req.Cash.AmountReceived
	record := &model.PaymentRecord{
		SaleID:          sale.ID,
		PaymentMethodID: method.ID,
		Amount:          sale.Total,
		ReferenceNumber: "cash-" + uuid.NewString(),
		Status:          model.PaymentCompleted,
		ReceivedAmount:  &received,
	}
	if err := s.payments.Create(ctx, record); err != nil {
		return nil, err
	}

	s.auditPayment(ctx, "payment_completed", model.AuditSuccess, model.RiskLow, operatorID, sale.ID, method.ID, map[string]interface{}{
		"type":       model.MethodCash,
		"amount":     sale.Total.String(),
		"change_due": change.String(),
	})

	return &dto.ProcessPaymentResponse{
		Success:   true,
		PaymentID: record.ID.String(),
		ChangeDue: &change,
	}, nil
}

// ── Card ─────────────────────────────────────────────────────────────────────

func (s *paymentService) processCard(ctx context.Context, operatorID uuid.UUID, sale *model.Sale, method *model.PaymentMethod, req dto.ProcessPaymentRequest) (*dto.ProcessPaymentResponse, error) {
	if req.Card == nil {
		return nil, ErrMissingPaymentData
	}
	if !luhnValid(req.Card.Number) {
		return nil, ErrInvalidCard
	}

	token := s.tokenizer.Tokenize(req.Card.Number)
	sealed, nonce, err := s.vault.Seal(infra.CardMetadata{
		MaskedNumber: infra.MaskCardNumber(req.Card.Number),
		Expiry:       req.Card.Expiry,
		HolderName:   req.Card.HolderName,
	})
	if err != nil {
		return nil, err
	}

	s.auditPayment(ctx, "payment_initiated", model.AuditSuccess, model.RiskLow, operatorID, sale.ID, method.ID, map[string]interface{}{
		"type":       model.MethodCard,
		"amount":     sale.Total.String(),
		"card_token": token,
	})

	result, authErr := s.authorize(ctx, infra.AuthorizationRequest{
		Amount:    sale.Total,
		Reference: token,
		Channel:   infra.ChannelCard,
	})

	record := &model.PaymentRecord{
		SaleID:            sale.ID,
		PaymentMethodID:   method.ID,
		Amount:            sale.Total,
		ReferenceNumber:   "card-" + uuid.NewString(),
		CardToken:         &token,
		EncryptedMetadata: sealed,
		MetadataNonce:     nonce,
	}

	return s.finishAuthorized(ctx, operatorID, sale, method, record, result, authErr, model.MethodCard, map[string]interface{}{"card_token": token})
}

// ── Mobile ───────────────────────────────────────────────────────────────────

func (s *paymentService) processMobile(ctx context.Context, operatorID uuid.UUID, sale *model.Sale, method *model.PaymentMethod, req dto.ProcessPaymentRequest) (*dto.ProcessPaymentResponse, error) {
	if req.Mobile == nil {
		return nil, ErrMissingPaymentData
	}

	masked := infra.MaskPhoneNumber(req.Mobile.PhoneNumber)

	s.auditPayment(ctx, "payment_initiated", model.AuditSuccess, model.RiskLow, operatorID, sale.ID, method.ID, map[string]interface{}{
		"type":   model.MethodMobile,
		"amount": sale.Total.String(),
		"phone":  masked,
	})

	result, authErr := s.authorize(ctx, infra.AuthorizationRequest{
		Amount:    sale.Total,
		Reference: masked,
		Channel:   infra.ChannelMobile,
	})

	record := &model.PaymentRecord{
		SaleID:            sale.ID,
		PaymentMethodID:   method.ID,
		Amount:            sale.Total,
		ReferenceNumber:   "mob-" + uuid.NewString(),
		MaskedPhoneNumber: &masked,
	}

	return s.finishAuthorized(ctx, operatorID, sale, method, record, result, authErr, model.MethodMobile, map[string]interface{}{"phone": masked})
}

// ── Shared gateway outcome handling ──────────────────────────────────────────

// authorize wraps the gateway call with the configured timeout so a hung
// acquirer cannot pin a request goroutine past the deadline.
func (s *paymentService) authorize(ctx context.Context, req infra.AuthorizationRequest) (*infra.AuthorizationResult, error) {
	authCtx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()
	return s.gateway.Authorize(authCtx, req)
}

// finishAuthorized maps a gateway outcome onto a terminal payment record and
// audit event. Declines and timeouts are recorded as failed; transport faults
// as error. Decline reasons go to the audit trail only.
func (s *paymentService) finishAuthorized(
	ctx context.Context,
	operatorID uuid.UUID,
	sale *model.Sale,
	method *model.PaymentMethod,
	record *model.PaymentRecord,
	result *infra.AuthorizationResult,
	authErr error,
	paymentType string,
	extra map[string]interface{},
) (*dto.ProcessPaymentResponse, error) {
	details := map[string]interface{}{
		"type":   paymentType,
		"amount": sale.Total.String(),
	}
	for k, v := range extra {
		details[k] = v
	}

	switch {
	case authErr == nil && result.Approved:
		record.Status = model.PaymentCompleted
		record.TransactionID = &result.TransactionID
		if err := s.payments.Create(ctx, record); err != nil {
			return nil, err
		}
		details["transaction_id"] = result.TransactionID
		s.auditPayment(ctx, "payment_completed", model.AuditSuccess, model.RiskLow, operatorID, sale.ID, method.ID, details)
		return &dto.ProcessPaymentResponse{
			Success:       true,
			PaymentID:     record.ID.String(),
			TransactionID: result.TransactionID,
		}, nil

	case authErr == nil:
		// Declined. The reason lives in the audit trail, never in the record
		// or the response.
		record.Status = model.PaymentFailed
		if err := s.payments.Create(ctx, record); err != nil {
			return nil, err
		}
		details["decline_reason"] = result.DeclineReason
		s.auditPayment(ctx, "payment_declined", model.AuditFailure, model.RiskHigh, operatorID, sale.ID, method.ID, details)
		return &dto.ProcessPaymentResponse{
			Success:   false,
			PaymentID: record.ID.String(),
			Error:     "payment declined",
		}, nil

	case errors.Is(authErr, context.DeadlineExceeded):
		record.Status = model.PaymentFailed
		if err := s.payments.Create(ctx, record); err != nil {
			return nil, err
		}
		details["reason"] = "gateway timeout"
		s.auditPayment(ctx, "payment_failed", model.AuditFailure, model.RiskHigh, operatorID, sale.ID, method.ID, details)
		return &dto.ProcessPaymentResponse{
			Success:   false,
			PaymentID: record.ID.String(),
			Error:     "gateway timeout",
		}, nil

	default:
		record.Status = model.PaymentError
		if err := s.payments.Create(ctx, record); err != nil {
			return nil, err
		}
		log.Error().Err(authErr).Str("sale_id", sale.ID.String()).Msg("payment: gateway transport failure")
		details["reason"] = authErr.Error()
		s.auditPayment(ctx, "payment_failed", model.AuditError, model.RiskHigh, operatorID, sale.ID, method.ID, details)
		return &dto.ProcessPaymentResponse{
			Success:   false,
			PaymentID: record.ID.String(),
			Error:     "payment gateway unavailable",
		}, nil
	}
}

func (s *paymentService) auditPayment(ctx context.Context, event, status, risk string, operatorID, saleID, methodID uuid.UUID, details map[string]interface{}) {
	s.audit.Record(ctx, worker.AuditJobPayload{
		EventType:       event,
		Status:          status,
		RiskLevel:       risk,
		OperatorID:      &operatorID,
		SaleID:          &saleID,
		PaymentMethodID: &methodID,
		Details:         details,
	})
}

// luhnValid checks a card number's Luhn checksum. Input must be digits only
// (the DTO validator guarantees that).
func luhnValid(number string) bool {
	if len(number) < 12 {
		return false
	}
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if d < 0 || d > 9 {
			return false
		}
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
