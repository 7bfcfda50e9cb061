package credit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amanuelrf/reliance-mobile/internal/domain"
	"github.com/amanuelrf/reliance-mobile/internal/infrastructure/bureau"
	"github.com/amanuelrf/reliance-mobile/internal/infrastructure/database"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const maxTokenLength = 255

// Gateway is the credit bureau as seen by the orchestrator. *bureau.Client implements it.
type Gateway interface {
	SearchDebtors(ctx context.Context, q bureau.DebtorQuery) ([]bureau.Debtor, error)
	GetCreditStatus(ctx context.Context, externalID string) (*bureau.CreditStatus, error)
}

// CompanyDirectory resolves stored companies and records debtors the bureau turns up.
// *companies.Service implements it.
type CompanyDirectory interface {
	Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.Company, error)
	Discover(ctx context.Context, ownerID uuid.UUID, d bureau.Debtor) (*domain.Company, error)
}

type Service struct {
	DB        *gorm.DB
	Gateway   Gateway
	Companies CompanyDirectory
	Metrics   *Metrics
	Now       func() time.Time
}

// RunCheckInput is one decision request. Either MCNumber or CompanyID identifies the carrier.
type RunCheckInput struct {
	OwnerID          uuid.UUID
	MCNumber         int64
	RequestedAmount  decimal.Decimal
	CompanyID        *uuid.UUID
	ExternalID       string
	IdempotencyToken string
	Source           string
}

// Result is a persisted decision plus the terms that produced it.
type Result struct {
	Check    *domain.CreditCheck
	Terms    Terms
	Degraded bool
	Message  string
}

// lookup is what the bureau told us, or didn't.
type lookup struct {
	externalID string
	rawStatus  string
	payload    []byte
	debtor     *bureau.Debtor
	degraded   bool
}

var (
	statusKeys  = []string{"status", "creditStatus"}
	wrapperKeys = []string{"creditStatus", "data"}
)

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// RunCheck resolves the carrier at the bureau, applies the policy and records the decision
// and its history row in one transaction. Bureau failures degrade to INSUFFICIENT_DATA;
// only invalid input, a replayed token or a storage failure return an error.
func (s *Service) RunCheck(ctx context.Context, in RunCheckInput) (*Result, error) {
	started := time.Now()
	defer func() { s.Metrics.observeRun(time.Since(started)) }()

	source, err := validate(in)
	if err != nil {
		return nil, err
	}

	externalID := strings.TrimSpace(in.ExternalID)
	callerSuppliedID := externalID != ""
	mc := in.MCNumber
	if in.CompanyID != nil {
		company, err := s.resolveCompany(ctx, in.OwnerID, *in.CompanyID, mc)
		if err != nil {
			return nil, err
		}
		mc = *company.MCNumber
		if externalID == "" && company.ExternalID != nil {
			externalID = *company.ExternalID
		}
	}
	if mc <= 0 {
		return nil, fmt.Errorf("%w: mc_number must be a positive integer", ErrInvalidInput)
	}
	if callerSuppliedID {
		log.Ctx(ctx).Warn().Int64("mc_number", mc).Str("external_id", externalID).
			Msg("credit check uses caller-supplied external id without verifying it against the mc number")
	}

	lk := s.lookupRawStatus(ctx, mc, externalID)
	status := domain.NormalizeStatus(lk.rawStatus)
	terms := Decide(status, in.RequestedAmount)

	token := strings.TrimSpace(in.IdempotencyToken)
	if token == "" {
		token = uuid.NewString()
	}

	now := s.now()
	check := &domain.CreditCheck{
		OwnerID:          in.OwnerID,
		MCNumber:         mc,
		Status:           status,
		ApprovedAmount:   terms.ApprovedAmount,
		RequestedAmount:  in.RequestedAmount,
		IdempotencyToken: token,
		Source:           source,
		RawStatus:        lk.rawStatus,
		ExpiresAt:        now.AddDate(0, 0, terms.ValidityDays),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if lk.externalID != "" {
		id := lk.externalID
		check.ExternalID = &id
	}
	if len(lk.payload) > 0 {
		check.BureauPayload = datatypes.JSON(lk.payload)
	}

	if err := s.persist(ctx, check); err != nil {
		return nil, err
	}
	s.Metrics.incOutcome(string(status), string(source))

	if lk.debtor != nil && s.Companies != nil {
		if _, err := s.Companies.Discover(ctx, in.OwnerID, *lk.debtor); err != nil {
			log.Ctx(ctx).Warn().Err(err).Int64("mc_number", mc).Msg("company discovery failed")
		}
	}

	log.Ctx(ctx).Info().
		Str("check_id", check.ID.String()).
		Int64("mc_number", mc).
		Str("status", string(status)).
		Int64("approved_amount", terms.ApprovedAmount).
		Bool("degraded", lk.degraded).
		Msg("credit check recorded")

	return &Result{
		Check:    check,
		Terms:    terms,
		Degraded: lk.degraded,
		Message:  summary(mc, in.RequestedAmount, status),
	}, nil
}

func validate(in RunCheckInput) (domain.CreditSource, error) {
	if in.OwnerID == uuid.Nil {
		return "", fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}
	if in.CompanyID == nil && in.MCNumber <= 0 {
		return "", fmt.Errorf("%w: mc_number must be a positive integer", ErrInvalidInput)
	}
	if in.MCNumber < 0 {
		return "", fmt.Errorf("%w: mc_number must be a positive integer", ErrInvalidInput)
	}
	if !in.RequestedAmount.IsPositive() {
		return "", fmt.Errorf("%w: requested_amount must be positive", ErrInvalidInput)
	}
	if len(in.IdempotencyToken) > maxTokenLength {
		return "", fmt.Errorf("%w: idempotency_token is too long", ErrInvalidInput)
	}
	source, ok := domain.ParseCreditSource(in.Source)
	if !ok {
		return "", fmt.Errorf("%w: unknown source %q", ErrInvalidInput, in.Source)
	}
	return source, nil
}

func (s *Service) resolveCompany(ctx context.Context, ownerID, companyID uuid.UUID, mc int64) (*domain.Company, error) {
	if s.Companies == nil {
		return nil, fmt.Errorf("%w: company lookups are not available", ErrInvalidInput)
	}
	company, err := s.Companies.Get(ctx, ownerID, companyID)
	if err != nil {
		return nil, err
	}
	if company.MCNumber == nil {
		return nil, fmt.Errorf("%w: company has no mc number", ErrInvalidInput)
	}
	if mc != 0 && mc != *company.MCNumber {
		return nil, fmt.Errorf("%w: mc_number does not match company", ErrInvalidInput)
	}
	return company, nil
}

// lookupRawStatus is the only place bureau errors are recovered. Any failure here yields
// an empty raw status, which normalizes to INSUFFICIENT_DATA.
func (s *Service) lookupRawStatus(ctx context.Context, mc int64, externalID string) lookup {
	lk := lookup{externalID: externalID}
	if s.Gateway == nil {
		s.degrade(ctx, &lk, "search_debtors", mc, bureau.ErrNotConfigured)
		return lk
	}

	if lk.externalID == "" {
		started := time.Now()
		debtors, err := s.Gateway.SearchDebtors(ctx, bureau.DebtorQuery{MCNumber: mc})
		s.Metrics.observeBureau("search_debtors", time.Since(started))
		if err != nil {
			s.degrade(ctx, &lk, "search_debtors", mc, err)
			return lk
		}
		if len(debtors) == 0 || strings.TrimSpace(debtors[0].ExternalID) == "" {
			log.Ctx(ctx).Info().Int64("mc_number", mc).Msg("no bureau debtor matched mc number")
			return lk
		}
		first := debtors[0]
		lk.externalID = strings.TrimSpace(first.ExternalID)
		lk.debtor = &first
	}

	started := time.Now()
	st, err := s.Gateway.GetCreditStatus(ctx, lk.externalID)
	s.Metrics.observeBureau("credit_status", time.Since(started))
	if err != nil {
		s.degrade(ctx, &lk, "credit_status", mc, err)
		return lk
	}
	if st.ExternalID != "" {
		lk.externalID = st.ExternalID
	}
	lk.payload = st.Raw
	lk.rawStatus = extractRawStatus(st.Payload)
	return lk
}

func (s *Service) degrade(ctx context.Context, lk *lookup, op string, mc int64, err error) {
	lk.degraded = true
	category := bureau.Category(err)
	s.Metrics.incDegraded(op, string(category))
	log.Ctx(ctx).Warn().Err(err).Str("op", op).Str("category", string(category)).Int64("mc_number", mc).
		Msg("bureau lookup failed, deciding with insufficient data")
}

// extractRawStatus reads the status token from the top level of the payload or from
// one wrapper object. A missing token is the empty string.
func extractRawStatus(payload map[string]any) string {
	if v, ok := stringField(payload, statusKeys); ok {
		return v
	}
	for _, w := range wrapperKeys {
		inner, ok := payload[w].(map[string]any)
		if !ok {
			continue
		}
		if v, ok := stringField(inner, statusKeys); ok {
			return v
		}
	}
	return ""
}

func stringField(m map[string]any, keys []string) (string, bool) {
	for _, k := range keys {
		if v, ok := m[k].(string); ok {
			return v, true
		}
	}
	return "", false
}

func (s *Service) persist(ctx context.Context, check *domain.CreditCheck) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Unscoped().Model(&domain.CreditCheck{}).
			Where("credit_check_uuid = ?", check.IdempotencyToken).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrDuplicateIdempotencyToken
		}
		if err := tx.Create(check).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return ErrDuplicateIdempotencyToken
			}
			return err
		}
		return tx.Create(domain.HistoryFor(check)).Error
	})
	if errors.Is(err, ErrDuplicateIdempotencyToken) {
		return err
	}
	if err != nil {
		return fmt.Errorf("credit: persist check: %w", err)
	}
	return nil
}

func summary(mc int64, requested decimal.Decimal, status domain.CreditStatus) string {
	return fmt.Sprintf("Credit check for MC %d on a $%s load: %s", mc, requested.StringFixed(2), status)
}
