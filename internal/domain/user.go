package domain

import (
	"time"

	"github.com/croplink/agrimart/pkg/common"
)

type User struct {
	ID           int64     `gorm:"primaryKey" json:"id,string"`
	Name         string    `gorm:"size:50" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:100" json:"email"`
	Password     string    `gorm:"size:100" json:"-"`
	Phone        string    `gorm:"index;size:16" json:"phone"`
	IsAdmin      bool      `gorm:"default:false" json:"is_admin"`
	State        string    `gorm:"index;size:50" json:"state"`
	District     string    `gorm:"size:50" json:"district"`
	Village      string    `gorm:"size:100" json:"village"`
	Pincode      string    `gorm:"size:10" json:"pincode"`
	FarmSize     float64   `gorm:"default:0" json:"farm_size"` // acres
	Crops        string    `gorm:"type:text" json:"crops"`     // JSON list of crop names
	SoilType     string    `gorm:"size:20" json:"soil_type"`
	Language     string    `gorm:"size:20;default:'english'" json:"language"`
	WalletAmount float64   `gorm:"default:0" json:"wallet_amount"`
	LastLogin    time.Time `json:"last_login"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "mart_user"
}

// CropList decodes the user's primary crops JSON column.
func (u *User) CropList() []string {
	var crops []string
	_ = common.FromJSON(u.Crops, &crops)
	return crops
}
