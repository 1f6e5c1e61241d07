package domain

import (
	"time"

	"github.com/croplink/agrimart/pkg/common"
)

const (
	AdvisoryStatusDraft     = "draft"
	AdvisoryStatusPublished = "published"
	AdvisoryStatusArchived  = "archived"
)

var AdvisoryCategories = []string{
	"crop-recommendation",
	"pest-management",
	"soil-health",
	"weather-advisory",
	"irrigation-tips",
	"fertilizer-advice",
	"harvesting-tips",
	"post-harvest",
	"market-prices",
	"government-schemes",
}

func ValidAdvisoryCategory(category string) bool {
	return common.InStrings(AdvisoryCategories, category)
}

// CropAdvisory is targeted content; relevance to a user is a pure function
// of the advisory and the user profile, nothing is persisted about it.
type CropAdvisory struct {
	ID          int64      `gorm:"primaryKey" json:"id,string"`
	Title       string     `gorm:"size:200" json:"title"`
	Content     string     `gorm:"type:text" json:"content"`
	Summary     string     `gorm:"size:500" json:"summary"`
	Category    string     `gorm:"size:32;index" json:"category"`
	Season      string     `gorm:"size:16;index" json:"season"` // kharif|rabi|zaid|all-season
	Months      string     `gorm:"type:text" json:"months"`     // JSON []int, 1-12
	TargetCrops string     `gorm:"type:text" json:"target_crops"`
	Regions     string     `gorm:"type:text" json:"regions"` // JSON []Region
	SoilTypes   string     `gorm:"type:text" json:"soil_types"`
	FarmSizeMin *float64   `json:"farm_size_min,omitempty"`
	FarmSizeMax *float64   `json:"farm_size_max,omitempty"`
	Priority    string     `gorm:"size:10;default:'medium'" json:"priority"` // low|medium|high|urgent
	Status      string     `gorm:"size:20;index;default:'draft'" json:"status"`
	ValidFrom   *time.Time `json:"valid_from,omitempty"`
	ValidUntil  *time.Time `json:"valid_until,omitempty"`
	Evergreen   bool       `gorm:"default:false" json:"evergreen"`
	Views       int64      `gorm:"default:0" json:"views"`
	Likes       int64      `gorm:"default:0" json:"likes"`
	Shares      int64      `gorm:"default:0" json:"shares"`
	Tags        string     `gorm:"type:text" json:"tags"`
	Language    string     `gorm:"size:20;default:'english'" json:"language"`
	CreatedBy   int64      `json:"created_by,string"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (CropAdvisory) TableName() string {
	return "mart_crop_advisory"
}

func (a *CropAdvisory) TargetCropList() []string {
	var v []string
	_ = common.FromJSON(a.TargetCrops, &v)
	return v
}

func (a *CropAdvisory) RegionList() []Region {
	var v []Region
	_ = common.FromJSON(a.Regions, &v)
	return v
}

func (a *CropAdvisory) SoilTypeList() []string {
	var v []string
	_ = common.FromJSON(a.SoilTypes, &v)
	return v
}

func (a *CropAdvisory) MonthList() []int {
	var v []int
	_ = common.FromJSON(a.Months, &v)
	return v
}

// CurrentlyValid reports whether the advisory is inside its validity window.
func (a *CropAdvisory) CurrentlyValid(now time.Time) bool {
	if a.Evergreen {
		return true
	}
	if a.ValidFrom != nil && now.Before(*a.ValidFrom) {
		return false
	}
	if a.ValidUntil != nil && now.After(*a.ValidUntil) {
		return false
	}
	return true
}

var priorityRanks = map[string]int{"low": 1, "medium": 2, "high": 3, "urgent": 4}

func (a *CropAdvisory) PriorityRank() int {
	if r, ok := priorityRanks[a.Priority]; ok {
		return r
	}
	return 2
}

// UrgencyScore is derived on demand for sorting: priority, plus a bump for
// weather advisories and another when the current month is in season.
func (a *CropAdvisory) UrgencyScore(now time.Time) int {
	score := a.PriorityRank()
	if a.Category == "weather-advisory" {
		score += 2
	}
	month := int(now.Month())
	for _, m := range a.MonthList() {
		if m == month {
			score++
			break
		}
	}
	return score
}
