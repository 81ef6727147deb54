package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"nextmove-cargo/internal/model"
	"nextmove-cargo/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OpenSessionRequest struct {
	OpeningFloat decimal.Decimal `json:"opening_float"`
}

type RecordSaleRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type CloseSessionRequest struct {
	ClosingCash decimal.Decimal `json:"closing_cash"`
	Notes       string          `json:"notes"`
}

type POSSessionResponse struct {
	ID           string  `json:"id"`
	OperatorID   string  `json:"operator_id"`
	Status       string  `json:"status"`
	OpeningFloat string  `json:"opening_float"`
	SalesTotal   string  `json:"sales_total"`
	SalesCount   int     `json:"sales_count"`
	ExpectedCash *string `json:"expected_cash"`
	ClosingCash  *string `json:"closing_cash"`
	Notes        string  `json:"notes"`
	OpenedAt     string  `json:"opened_at"`
	ClosedAt     *string `json:"closed_at"`
}

// CloseSessionResult carries the closed session and the cash variance
// (counted minus expected; negative means the drawer is short).
type CloseSessionResult struct {
	Session  POSSessionResponse `json:"session"`
	Variance string             `json:"variance"`
}

type POSService interface {
	Open(ctx context.Context, operatorID uuid.UUID, openingFloat decimal.Decimal) (POSSessionResponse, error)
	RecordSale(ctx context.Context, sessionID, operatorID uuid.UUID, amount decimal.Decimal) (POSSessionResponse, error)
	Close(ctx context.Context, sessionID, operatorID uuid.UUID, closingCash decimal.Decimal, notes string) (CloseSessionResult, error)
	Current(ctx context.Context, operatorID uuid.UUID) (POSSessionResponse, error)
}

type posService struct {
	txManager repository.TransactionManager
	repo      repository.POSSessionRepository
	audit     repository.AuditRepository
	now       func() time.Time
}

func NewPOSService(txManager repository.TransactionManager, repo repository.POSSessionRepository, audit repository.AuditRepository) POSService {
	return &posService{txManager: txManager, repo: repo, audit: audit, now: time.Now}
}

func (s *posService) Open(ctx context.Context, operatorID uuid.UUID, openingFloat decimal.Decimal) (POSSessionResponse, error) {
	if openingFloat.IsNegative() {
		return POSSessionResponse{}, ErrInvalidAmount
	}

	session := model.POSSession{
		OperatorID:   operatorID,
		Status:       model.POSSessionOpen,
		OpeningFloat: openingFloat,
		SalesTotal:   decimal.Zero,
		OpenedAt:     s.now(),
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		_, err := s.repo.FindOpenByOperator(txCtx, operatorID)
		if err == nil {
			return ErrSessionAlreadyOpen
		}
		if !isNotFound(err) {
			return fmt.Errorf("failed to check open session: %w", err)
		}

		if err := s.repo.Create(txCtx, &session); err != nil {
			return fmt.Errorf("failed to open pos session: %w", err)
		}
		audit := model.AuditLog{
			ActorID:  &operatorID,
			Action:   model.ActionOpenPOSSession,
			EntityID: session.ID.String(),
			Details:  auditDetails(map[string]interface{}{"opening_float": openingFloat.StringFixed(2)}),
		}
		return s.audit.Log(txCtx, &audit)
	})
	if err != nil {
		return POSSessionResponse{}, err
	}
	return toPOSSessionResponse(session), nil
}

func (s *posService) owned(ctx context.Context, sessionID, operatorID uuid.UUID) (*model.POSSession, error) {
	session, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load pos session: %w", err)
	}
	if session.OperatorID != operatorID {
		return nil, ErrForbidden
	}
	return session, nil
}

func (s *posService) RecordSale(ctx context.Context, sessionID, operatorID uuid.UUID, amount decimal.Decimal) (POSSessionResponse, error) {
	if !amount.IsPositive() {
		return POSSessionResponse{}, ErrInvalidAmount
	}
	if _, err := s.owned(ctx, sessionID, operatorID); err != nil {
		return POSSessionResponse{}, err
	}

	ok, err := s.repo.AddSale(ctx, sessionID, amount)
	if err != nil {
		return POSSessionResponse{}, fmt.Errorf("failed to record sale: %w", err)
	}
	if !ok {
		return POSSessionResponse{}, ErrSessionClosed
	}

	session, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return POSSessionResponse{}, fmt.Errorf("failed to reload pos session: %w", err)
	}
	return toPOSSessionResponse(*session), nil
}

// Close counts the drawer: expected cash is the opening float plus sales.
// A closed session can never be reopened.
func (s *posService) Close(ctx context.Context, sessionID, operatorID uuid.UUID, closingCash decimal.Decimal, notes string) (CloseSessionResult, error) {
	if closingCash.IsNegative() {
		return CloseSessionResult{}, ErrInvalidAmount
	}

	var result CloseSessionResult
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		session, err := s.repo.FindByIDForUpdate(txCtx, sessionID)
		if err != nil {
			if isNotFound(err) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("failed to lock pos session: %w", err)
		}
		if session.OperatorID != operatorID {
			return ErrForbidden
		}
		if session.Status != model.POSSessionOpen {
			return ErrSessionClosed
		}

		expected := session.OpeningFloat.Add(session.SalesTotal)
		closedAt := s.now()
		notes = strings.TrimSpace(notes)

		ok, err := s.repo.Close(txCtx, sessionID, closingCash, expected, notes, closedAt)
		if err != nil {
			return fmt.Errorf("failed to close pos session: %w", err)
		}
		if !ok {
			return ErrSessionClosed
		}

		variance := closingCash.Sub(expected)
		audit := model.AuditLog{
			ActorID:  &operatorID,
			Action:   model.ActionClosePOSSession,
			EntityID: sessionID.String(),
			Details: auditDetails(map[string]interface{}{
				"expected_cash": expected.StringFixed(2),
				"closing_cash":  closingCash.StringFixed(2),
				"variance":      variance.StringFixed(2),
			}),
		}
		if err := s.audit.Log(txCtx, &audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}

		session.Status = model.POSSessionClosed
		session.ExpectedCash = &expected
		session.ClosingCash = &closingCash
		session.Notes = notes
		session.ClosedAt = &closedAt
		result = CloseSessionResult{Session: toPOSSessionResponse(*session), Variance: variance.StringFixed(2)}
		return nil
	})
	if err != nil {
		return CloseSessionResult{}, err
	}
	return result, nil
}

func (s *posService) Current(ctx context.Context, operatorID uuid.UUID) (POSSessionResponse, error) {
	session, err := s.repo.FindOpenByOperator(ctx, operatorID)
	if err != nil {
		if isNotFound(err) {
			return POSSessionResponse{}, ErrNoOpenSession
		}
		return POSSessionResponse{}, fmt.Errorf("failed to load pos session: %w", err)
	}
	return toPOSSessionResponse(*session), nil
}

func decimalPtrString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}

func toPOSSessionResponse(s model.POSSession) POSSessionResponse {
	return POSSessionResponse{
		ID:           s.ID.String(),
		OperatorID:   s.OperatorID.String(),
		Status:       s.Status,
		OpeningFloat: s.OpeningFloat.StringFixed(2),
		SalesTotal:   s.SalesTotal.StringFixed(2),
		SalesCount:   s.SalesCount,
		ExpectedCash: decimalPtrString(s.ExpectedCash),
		ClosingCash:  decimalPtrString(s.ClosingCash),
		Notes:        s.Notes,
		OpenedAt:     formatTime(s.OpenedAt),
		ClosedAt:     formatTimePtr(s.ClosedAt),
	}
}
