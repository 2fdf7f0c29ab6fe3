package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ptl2504/text-vending/internal/core/domain"
	"github.com/ptl2504/text-vending/internal/port"
)

var (
	ErrInvalidProduct    = errors.New("invalid product")
	ErrNotFound          = errors.New("product or account not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

type VendService struct {
	classifier port.Classifier
	catalog    port.CatalogRepository
	accounts   port.AccountRepository
	audit      port.AuditRepository
	account    string
	log        zerolog.Logger
}

func NewVendService(
	classifier port.Classifier,
	catalog port.CatalogRepository,
	accounts port.AccountRepository,
	audit port.AuditRepository,
	account string,
	log zerolog.Logger,
) *VendService {
	return &VendService{
		classifier: classifier,
		catalog:    catalog,
		accounts:   accounts,
		audit:      audit,
		account:    account,
		log:        log,
	}
}

// Vend runs one purchase attempt: classify the text, resolve price and
// balance, deduct funds, and record the audit trail.
//
// Funds are re-validated inside DeductBalance in a single conditional
// update, so concurrent vends against the same account can never drive
// the balance negative; the preliminary read below only feeds the
// rejection message.
//
// Audit rows per outcome: rejection writes one, success writes two
// (request then response). Classification and lookup failures write none.
func (s *VendService) Vend(ctx context.Context, text string) (domain.Receipt, error) {
	txID := uuid.NewString()
	log := s.log.With().Str("tx_id", txID).Logger()

	// Classification happens strictly before any store access; the
	// oracle may block for a while and must not hold anything up.
	label, err := s.classifier.Classify(ctx, text)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("classify request: %w", err)
	}
	if !label.Known() {
		log.Info().Str("label", label.String()).Msg("unrecognized product request")
		return domain.Receipt{}, fmt.Errorf("%w: %s", ErrInvalidProduct, label)
	}
	product := label.String()

	item, err := s.catalog.GetItem(ctx, product)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("lookup item: %w", err)
	}
	acct, err := s.accounts.GetAccount(ctx, s.account)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("lookup account: %w", err)
	}
	if item == nil || acct == nil {
		return domain.Receipt{}, ErrNotFound
	}

	log = log.With().Str("product", product).Int("cost", item.Cost).Int("stock", item.Stock).Logger()

	if acct.Balance < item.Cost {
		return domain.Receipt{}, s.reject(ctx, log, product, acct.Balance, item.Cost)
	}

	ok, err := s.accounts.DeductBalance(ctx, s.account, item.Cost)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("deduct balance: %w", err)
	}
	if !ok {
		// Lost a race with a concurrent vend; re-read so the rejection
		// entry carries the actual balance.
		acct, err = s.accounts.GetAccount(ctx, s.account)
		if err != nil {
			return domain.Receipt{}, fmt.Errorf("lookup account: %w", err)
		}
		if acct == nil {
			return domain.Receipt{}, ErrNotFound
		}
		return domain.Receipt{}, s.reject(ctx, log, product, acct.Balance, item.Cost)
	}

	// Deduction is committed; the request/response pair is appended
	// afterwards, request entry first.
	if _, err := s.audit.Append(ctx, "Request: "+text); err != nil {
		return domain.Receipt{}, fmt.Errorf("append request entry: %w", err)
	}
	if _, err := s.audit.Append(ctx, "Response: "+product); err != nil {
		return domain.Receipt{}, fmt.Errorf("append response entry: %w", err)
	}

	receipt := domain.Receipt{
		ID:        txID,
		Product:   product,
		Balance:   acct.Balance - item.Cost,
		CreatedAt: time.Now(),
	}
	log.Info().Int("balance", receipt.Balance).Msg("vend succeeded")
	return receipt, nil
}

func (s *VendService) reject(ctx context.Context, log zerolog.Logger, product string, balance, cost int) error {
	msg := fmt.Sprintf("Rejected %s: balance %d < cost %d", product, balance, cost)
	if _, err := s.audit.Append(ctx, msg); err != nil {
		return fmt.Errorf("append rejection entry: %w", err)
	}
	log.Info().Int("balance", balance).Msg("vend rejected, insufficient funds")
	return ErrInsufficientFunds
}
