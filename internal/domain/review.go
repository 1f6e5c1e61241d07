package domain

import (
	"math"
	"time"

	"github.com/croplink/agrimart/pkg/common"
)

const (
	ReviewStatusPending  = "pending"
	ReviewStatusApproved = "approved"
	ReviewStatusRejected = "rejected"
)

// ReviewAspects are the optional per-dimension ratings, each 1-5 when set.
type ReviewAspects struct {
	Quality       int `json:"quality,omitempty"`
	Effectiveness int `json:"effectiveness,omitempty"`
	Packaging     int `json:"packaging,omitempty"`
	ValueForMoney int `json:"value_for_money,omitempty"`
	Delivery      int `json:"delivery,omitempty"`
}

// Review is a verified-purchase product review. One review per user per
// product per order; reviews start pending and only count toward the
// product rating once approved.
type Review struct {
	ID              int64      `gorm:"primaryKey" json:"id,string"`
	ProductID       int64      `gorm:"index:idx_review_once,unique;index" json:"product_id,string"`
	UserID          int64      `gorm:"index:idx_review_once,unique" json:"user_id,string"`
	OrderID         int64      `gorm:"index:idx_review_once,unique" json:"order_id,string"`
	Rating          int        `json:"rating"`
	Title           string     `gorm:"size:100" json:"title"`
	Comment         string     `gorm:"size:1000" json:"comment"`
	Aspects         string     `gorm:"type:text" json:"aspects"` // JSON ReviewAspects
	Status          string     `gorm:"size:20;index;default:'pending'" json:"status"`
	Verified        bool       `gorm:"default:false" json:"verified"`
	ModeratedBy     int64      `json:"moderated_by,string"`
	ModeratedAt     *time.Time `json:"moderated_at,omitempty"`
	ModerationNotes string     `gorm:"size:500" json:"moderation_notes"`
	HelpfulYes      int        `gorm:"default:0" json:"helpful_yes"`
	HelpfulNo       int        `gorm:"default:0" json:"helpful_no"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (Review) TableName() string {
	return "mart_review"
}

func ValidRating(n int) bool {
	return n >= 1 && n <= 5
}

// CanModify allows authors to edit or withdraw a review only while it is
// still awaiting moderation.
func (r *Review) CanModify(userID int64) bool {
	return r.UserID == userID && r.Status == ReviewStatusPending
}

// HelpfulnessRatio is the percentage of yes votes, 0 with no votes.
func (r *Review) HelpfulnessRatio() float64 {
	total := r.HelpfulYes + r.HelpfulNo
	if total == 0 {
		return 0
	}
	return float64(r.HelpfulYes) / float64(total) * 100
}

// AspectValues decodes the aspects JSON column.
func (r *Review) AspectValues() ReviewAspects {
	var a ReviewAspects
	_ = common.FromJSON(r.Aspects, &a)
	return a
}

// RatingSummary aggregates approved ratings the way product pages display
// them: average rounded to one decimal plus a per-star distribution.
type RatingSummary struct {
	Average      float64     `json:"average"`
	Count        int         `json:"count"`
	Distribution map[int]int `json:"distribution"`
}

func SummarizeRatings(ratings []int) RatingSummary {
	s := RatingSummary{Distribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	sum := 0
	for _, r := range ratings {
		if !ValidRating(r) {
			continue
		}
		s.Distribution[r]++
		s.Count++
		sum += r
	}
	if s.Count > 0 {
		s.Average = math.Round(float64(sum)/float64(s.Count)*10) / 10
	}
	return s
}
