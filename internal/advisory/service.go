package advisory

import (
	"context"
	"sort"
	"time"

	"github.com/croplink/agrimart/internal/domain"
	"gorm.io/gorm"
)

// ListFilter narrows the published-advisory listing.
type ListFilter struct {
	Category string
	Season   string
	State    string
}

type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// ListPublished returns currently valid published advisories sorted by
// priority, then urgency, then recency.
func (s *Service) ListPublished(ctx context.Context, filter ListFilter, limit int) ([]domain.CropAdvisory, error) {
	q := s.db.WithContext(ctx).
		Where("status = ?", domain.AdvisoryStatusPublished)
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Season != "" {
		q = q.Where("season = ? or season = 'all-season'", filter.Season)
	}

	var advisories []domain.CropAdvisory
	if err := q.Order("created_at DESC").Find(&advisories).Error; err != nil {
		return nil, err
	}

	now := s.now()
	out := advisories[:0]
	for _, a := range advisories {
		if !a.CurrentlyValid(now) {
			continue
		}
		if filter.State != "" && !regionMatch(a.RegionList(), filter.State, "") {
			continue
		}
		out = append(out, a)
	}

	s.sortByUrgency(out, now)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Recommendations filters published advisories through the relevance
// predicate for one user.
func (s *Service) Recommendations(ctx context.Context, user *domain.User, limit int) ([]domain.CropAdvisory, error) {
	var advisories []domain.CropAdvisory
	err := s.db.WithContext(ctx).
		Where("status = ?", domain.AdvisoryStatusPublished).
		Order("created_at DESC").
		Find(&advisories).Error
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := advisories[:0]
	for _, a := range advisories {
		if a.CurrentlyValid(now) && RelevantForUser(&a, user) {
			out = append(out, a)
		}
	}

	s.sortByUrgency(out, now)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// IncrementViews bumps the engagement counter; fire-and-forget semantics.
func (s *Service) IncrementViews(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Model(&domain.CropAdvisory{}).
		Where("id = ?", id).
		Update("views", gorm.Expr("views + 1")).Error
}

func (s *Service) sortByUrgency(advisories []domain.CropAdvisory, now time.Time) {
	sort.SliceStable(advisories, func(i, j int) bool {
		a, b := &advisories[i], &advisories[j]
		if a.PriorityRank() != b.PriorityRank() {
			return a.PriorityRank() > b.PriorityRank()
		}
		if a.UrgencyScore(now) != b.UrgencyScore(now) {
			return a.UrgencyScore(now) > b.UrgencyScore(now)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}
