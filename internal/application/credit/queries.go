package credit

import (
	"context"
	"errors"
	"time"

	"github.com/amanuelrf/reliance-mobile/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultWindowMonths = 6
	MaxWindowMonths     = 24
)

// MonthScore summarizes the decisions recorded in one calendar month.
type MonthScore struct {
	Month         string `json:"month"` // 2006-01
	Label         string `json:"label"` // Jan
	Checks        int    `json:"checks"`
	Approved      int    `json:"approved"`
	ApprovedTotal int64  `json:"approved_total"`
	Score         int    `json:"score"` // approved share of checks, 0..100
}

// List returns the owner's live decisions, newest first, optionally for one carrier.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID, mc *int64) ([]domain.CreditCheck, error) {
	q := s.DB.WithContext(ctx).Where("owner_id = ?", ownerID)
	if mc != nil {
		q = q.Where("mc_number = ?", *mc)
	}
	var checks []domain.CreditCheck
	if err := q.Order("created_at DESC").Find(&checks).Error; err != nil {
		return nil, err
	}
	return checks, nil
}

// Latest returns the most recent live decision for a carrier.
func (s *Service) Latest(ctx context.Context, ownerID uuid.UUID, mc int64) (*domain.CreditCheck, error) {
	var check domain.CreditCheck
	err := s.DB.WithContext(ctx).
		Where("owner_id = ? AND mc_number = ?", ownerID, mc).
		Order("created_at DESC").
		First(&check).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &check, nil
}

// Retract soft-deletes a decision. Its history row is kept.
func (s *Service) Retract(ctx context.Context, ownerID, checkID uuid.UUID) error {
	res := s.DB.WithContext(ctx).
		Where("id = ? AND owner_id = ?", checkID, ownerID).
		Delete(&domain.CreditCheck{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// History returns history rows recorded since the start of the window, oldest first.
func (s *Service) History(ctx context.Context, ownerID uuid.UUID, months int, mc *int64) ([]domain.CreditCheckHistory, error) {
	since := windowStart(s.now(), clampMonths(months))
	q := s.DB.WithContext(ctx).Where("owner_id = ? AND created_at >= ?", ownerID, since)
	if mc != nil {
		q = q.Where("mc_number = ?", *mc)
	}
	var rows []domain.CreditCheckHistory
	if err := q.Order("created_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ScoreTrend buckets the owner's history by calendar month. Every month in the window is
// present, including months without decisions.
func (s *Service) ScoreTrend(ctx context.Context, ownerID uuid.UUID, months int) ([]MonthScore, error) {
	months = clampMonths(months)
	now := s.now()
	rows, err := s.History(ctx, ownerID, months, nil)
	if err != nil {
		return nil, err
	}

	start := windowStart(now, months)
	trend := make([]MonthScore, months)
	index := make(map[string]int, months)
	for i := range trend {
		m := start.AddDate(0, i, 0)
		trend[i] = MonthScore{Month: m.Format("2006-01"), Label: m.Format("Jan")}
		index[trend[i].Month] = i
	}
	for _, r := range rows {
		i, ok := index[r.CreatedAt.UTC().Format("2006-01")]
		if !ok {
			continue
		}
		trend[i].Checks++
		if r.ApprovedAmount > 0 {
			trend[i].Approved++
			trend[i].ApprovedTotal += r.ApprovedAmount
		}
	}
	for i := range trend {
		if trend[i].Checks > 0 {
			trend[i].Score = trend[i].Approved * 100 / trend[i].Checks
		}
	}
	return trend, nil
}

func clampMonths(months int) int {
	if months <= 0 {
		return DefaultWindowMonths
	}
	if months > MaxWindowMonths {
		return MaxWindowMonths
	}
	return months
}

// windowStart is the first instant of the oldest month in a window ending with now's month.
func windowStart(now time.Time, months int) time.Time {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, -(months - 1), 0)
}
