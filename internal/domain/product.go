package domain

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/croplink/agrimart/pkg/common"
)

// Product categories form a closed set; CreateProduct rejects anything else.
var ProductCategories = []string{
	"seeds",
	"pesticides",
	"fertilizers",
	"herbicides",
	"fungicides",
	"insecticides",
	"growth-promoters",
	"irrigation-equipment",
	"farm-tools",
	"machinery",
	"organic-products",
	"livestock-feed",
	"soil-conditioners",
}

func ValidProductCategory(category string) bool {
	return common.InStrings(ProductCategories, category)
}

// Product represents one catalog entry. Referenced products are never hard
// deleted; they are retired by setting Status to "inactive".
type Product struct {
	ID              int64     `gorm:"primaryKey" json:"id,string"`
	Name            string    `gorm:"index;size:200" json:"name"`
	Slug            string    `gorm:"uniqueIndex;size:220" json:"slug"`
	Description     string    `gorm:"type:text" json:"description"`
	Category        string    `gorm:"size:32;index" json:"category"`
	SubCategory     string    `gorm:"size:64" json:"sub_category"`
	Brand           string    `gorm:"size:100" json:"brand"`
	Price           float64   `json:"price"`
	DiscountPrice   *float64  `json:"discount_price,omitempty"`
	Unit            string    `gorm:"size:16" json:"unit"`
	PackSize        string    `gorm:"size:32" json:"pack_size"`
	Stock           int       `gorm:"default:0" json:"stock"`
	LowStockAlert   int       `gorm:"default:10" json:"low_stock_alert"`
	CropSuitability string    `gorm:"type:text" json:"crop_suitability"` // JSON list of crop names
	SoilTypes       string    `gorm:"type:text" json:"soil_types"`       // JSON list
	Season          string    `gorm:"size:16" json:"season"`             // kharif|rabi|zaid|all-season
	Status          string    `gorm:"size:20;index;default:'active'" json:"status"`
	IsFeatured      bool      `gorm:"default:false" json:"is_featured"`
	RatingAvg       float64   `gorm:"default:0" json:"rating_avg"`
	RatingCount     int64     `gorm:"default:0" json:"rating_count"`
	Views           int64     `gorm:"default:0" json:"views"`
	Sales           int64     `gorm:"default:0" json:"sales"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Product) TableName() string {
	return "mart_product"
}

// EffectivePrice returns the discounted price when present, else the list price.
func (p *Product) EffectivePrice() float64 {
	if p.DiscountPrice != nil && *p.DiscountPrice > 0 && *p.DiscountPrice < p.Price {
		return *p.DiscountPrice
	}
	return p.Price
}

// DiscountPercentage is derived, never stored.
func (p *Product) DiscountPercentage() int {
	if p.DiscountPrice == nil || p.Price <= 0 || *p.DiscountPrice >= p.Price {
		return 0
	}
	return int(math.Round((p.Price - *p.DiscountPrice) / p.Price * 100))
}

func (p *Product) InStock() bool {
	return p.Stock > 0
}

func (p *Product) IsLowStock() bool {
	return p.Stock <= p.LowStockAlert
}

func (p *Product) IsActive() bool {
	return p.Status == "active"
}

// CropList decodes the crop suitability JSON column.
func (p *Product) CropList() []string {
	var crops []string
	_ = common.FromJSON(p.CropSuitability, &crops)
	return crops
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// MakeSlug derives a URL slug from a product name.
func MakeSlug(name string) string {
	s := slugPattern.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}
