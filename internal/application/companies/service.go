package companies

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/amanuelrf/reliance-mobile/internal/domain"
	"github.com/amanuelrf/reliance-mobile/internal/infrastructure/bureau"
	"github.com/amanuelrf/reliance-mobile/internal/infrastructure/database"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

var (
	ErrNotFound     = errors.New("companies: company not found")
	ErrInvalidInput = errors.New("companies: invalid input")
	ErrDuplicate    = errors.New("companies: mc or dot number already registered")
)

// Tiers, best first.
const (
	TierMCExact = iota + 1
	TierDOTExact
	TierMCPrefix
	TierDOTPrefix
	TierText
)

// Ranked is one search hit and the tier that produced it.
type Ranked struct {
	Tier    int
	Company domain.Company
}

type Service struct {
	DB *gorm.DB
}

// CreateInput seeds a known company.
type CreateInput struct {
	Name       string
	LegalName  *string
	MCNumber   *int64
	DOTNumber  *int64
	ExternalID *string
}

// Search ranks the owner's live companies against query. Tier queries run concurrently;
// ranking waits for all of them. An empty query returns no results without touching the DB.
func (s *Service) Search(ctx context.Context, ownerID uuid.UUID, query string, limit int) ([]Ranked, error) {
	if strings.TrimSpace(query) == "" {
		return []Ranked{}, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	tiers := make([][]domain.Company, TierText)
	g, gctx := errgroup.WithContext(ctx)
	scoped := func() *gorm.DB {
		return s.DB.WithContext(gctx).Where("owner_id = ?", ownerID)
	}

	if n, ok := NormalizeQuery(query); ok {
		prefix := strconv.FormatInt(n, 10) + "%"
		g.Go(func() error {
			return scoped().Where("mc_number = ?", n).Order("id").Find(&tiers[TierMCExact-1]).Error
		})
		g.Go(func() error {
			return scoped().Where("dot_number = ?", n).Order("id").Find(&tiers[TierDOTExact-1]).Error
		})
		g.Go(func() error {
			return scoped().Where("mc_number IS NOT NULL AND CAST(mc_number AS TEXT) LIKE ?", prefix).
				Order("id").Find(&tiers[TierMCPrefix-1]).Error
		})
		g.Go(func() error {
			return scoped().Where("dot_number IS NOT NULL AND CAST(dot_number AS TEXT) LIKE ?", prefix).
				Order("id").Find(&tiers[TierDOTPrefix-1]).Error
		})
	}
	g.Go(func() error {
		pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
		return scoped().Where(`search_text LIKE ? ESCAPE '\'`, pattern).
			Order("name ASC").Find(&tiers[TierText-1]).Error
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("companies: search: %w", err)
	}
	return rank(tiers, limit), nil
}

// rank keeps the first tier each company appears in, then orders by (tier, name).
func rank(tiers [][]domain.Company, limit int) []Ranked {
	seen := make(map[uuid.UUID]struct{})
	out := make([]Ranked, 0)
	for i, tier := range tiers {
		for _, c := range tier {
			if _, dup := seen[c.ID]; dup {
				continue
			}
			seen[c.ID] = struct{}{}
			out = append(out, Ranked{Tier: i + 1, Company: c})
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Tier != out[b].Tier {
			return out[a].Tier < out[b].Tier
		}
		return out[a].Company.Name < out[b].Company.Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Create stores a new company for ownerID.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, in CreateInput) (*domain.Company, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if in.MCNumber != nil && *in.MCNumber <= 0 {
		return nil, fmt.Errorf("%w: mc_number must be positive", ErrInvalidInput)
	}
	if in.DOTNumber != nil && *in.DOTNumber <= 0 {
		return nil, fmt.Errorf("%w: dot_number must be positive", ErrInvalidInput)
	}

	company := &domain.Company{
		OwnerID:    ownerID,
		Name:       name,
		LegalName:  trimmedOrNil(in.LegalName),
		MCNumber:   in.MCNumber,
		DOTNumber:  in.DOTNumber,
		ExternalID: trimmedOrNil(in.ExternalID),
	}
	if err := s.DB.WithContext(ctx).Create(company).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return company, nil
}

// Get returns a live company owned by ownerID.
func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.Company, error) {
	var company domain.Company
	err := s.DB.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&company).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// Delete soft-deletes a company. Companies are never removed outright.
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	res := s.DB.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&domain.Company{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Discover records a debtor the bureau returned. A live company with the same MC number
// gets the bureau id if it has none; otherwise a new company is created. Debtors without
// an MC number or a name are ignored and return nil, nil.
func (s *Service) Discover(ctx context.Context, ownerID uuid.UUID, d bureau.Debtor) (*domain.Company, error) {
	name := strings.TrimSpace(d.CompanyName)
	externalID := strings.TrimSpace(d.ExternalID)
	if !d.MCNumber.Valid || d.MCNumber.Value <= 0 || name == "" {
		return nil, nil
	}

	var found *domain.Company
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.Company
		err := tx.Where("owner_id = ? AND mc_number = ?", ownerID, d.MCNumber.Value).First(&existing).Error
		if err == nil {
			if existing.ExternalID == nil && externalID != "" {
				existing.ExternalID = &externalID
				if err := tx.Save(&existing).Error; err != nil {
					return err
				}
			}
			found = &existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		company := &domain.Company{
			OwnerID:  ownerID,
			Name:     name,
			MCNumber: d.MCNumber.Ptr(),
		}
		if dot := d.DOTNumber.Ptr(); dot != nil && *dot > 0 {
			var taken int64
			if err := tx.Model(&domain.Company{}).Where("owner_id = ? AND dot_number = ?", ownerID, *dot).Count(&taken).Error; err != nil {
				return err
			}
			if taken == 0 {
				company.DOTNumber = dot
			}
		}
		if externalID != "" {
			company.ExternalID = &externalID
		}
		if err := tx.Create(company).Error; err != nil {
			return err
		}
		found = company
		return nil
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("companies: discover: %w", err)
	}
	log.Ctx(ctx).Debug().Str("company_id", found.ID.String()).Int64("mc_number", d.MCNumber.Value).Msg("bureau debtor recorded as company")
	return found, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
