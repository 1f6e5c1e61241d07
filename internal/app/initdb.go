package app

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/croplink/agrimart/config"
	"github.com/croplink/agrimart/internal/domain"
	"github.com/croplink/agrimart/pkg/common"
)

func getDatabase(cfg config.DBConfig) *gorm.DB {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		cfg.Host, cfg.User, cfg.Passwd, cfg.Name, cfg.Port)

	logLevel := gormlogger.Silent
	if cfg.Debug {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		zap.S().Panicf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		zap.S().Panicf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxConn)
	sqlDB.SetMaxIdleConns(cfg.IdleConn)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return db
}

func (a *Application) checkSuper() {
	const superEmail = "admin@agrimart.local"
	const defaultPassword = "agrimart"

	hashed, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		zap.L().Error("failed to hash default admin password", zap.Error(err))
		return
	}

	var admin domain.User
	err = a.gormDB.Where("email = ?", superEmail).First(&admin).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := a.gormDB.Create(&domain.User{
			ID:        common.UUIDint64(),
			Name:      "administrator",
			Email:     superEmail,
			Password:  string(hashed),
			IsAdmin:   true,
			Language:  "english",
			LastLogin: time.Now(),
		}).Error; err != nil {
			zap.L().Error("failed to create default admin account", zap.Error(err))
		} else {
			zap.L().Info("initialized default admin account", zap.String("email", superEmail))
		}
		return
	case err != nil:
		zap.L().Error("failed to query admin account", zap.Error(err))
		return
	}

	if !admin.IsAdmin {
		if err := a.gormDB.Model(&domain.User{}).Where("id = ?", admin.ID).
			Update("is_admin", true).Error; err != nil {
			zap.L().Error("failed to repair admin account", zap.Error(err))
			return
		}
		zap.L().Warn("repaired default admin account", zap.String("email", superEmail))
	}
}

// settingSchema mirrors one row in the settings table; missing entries are
// created with their defaults on startup.
type settingSchema struct {
	Key         string
	Default     string
	Description string
}

var settingSchemas = []settingSchema{
	{"commerce.CurrencySymbol", "₹", "Currency symbol used in storefront responses"},
	{"commerce.LowStockAlertEnabled", "true", "Log an alert when an order drops stock below the threshold"},
	{"commerce.SupportEmail", "support@agrimart.local", "Customer support contact shown on order pages"},
	{"advisory.WeatherEnrichEnabled", "true", "Attach weather context to advisory recommendations"},
	{"notify.OrderCreatedEnabled", "true", "Emit notifications for newly created orders"},
}

func (a *Application) checkSettings() {
	for sortid, schema := range settingSchemas {
		category, name := splitSettingKey(schema.Key)
		if category == "" {
			zap.L().Warn("invalid setting key format", zap.String("key", schema.Key))
			continue
		}

		var count int64
		a.gormDB.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", category, name).
			Count(&count)

		if count == 0 {
			a.gormDB.Create(&domain.SysConfig{
				ID:     0,
				Sort:   sortid,
				Type:   category,
				Name:   name,
				Value:  schema.Default,
				Remark: schema.Description,
			})
			zap.L().Info("initialized setting",
				zap.String("key", schema.Key),
				zap.String("default", schema.Default))
		}
	}
}

// checkProducts seeds a small starter catalog so a fresh install is browsable.
func (a *Application) checkProducts() {
	discount := func(v float64) *float64 { return &v }
	defaultProducts := []domain.Product{
		{
			Name: "Hybrid Paddy Seeds 5kg", Category: "seeds", Brand: "KisanGro",
			Price: 650, DiscountPrice: discount(585), Unit: "bag", PackSize: "5kg",
			Stock: 200, Season: "kharif",
			CropSuitability: common.ToJSON([]string{"rice"}),
		},
		{
			Name: "Neem Oil Pesticide 1L", Category: "pesticides", Brand: "AgroShield",
			Price: 420, Unit: "bottle", PackSize: "1L",
			Stock: 150, Season: "all-season",
			CropSuitability: common.ToJSON([]string{"cotton", "vegetables"}),
		},
		{
			Name: "Urea Fertilizer 45kg", Category: "fertilizers", Brand: "BharatFert",
			Price: 310, Unit: "bag", PackSize: "45kg",
			Stock: 500, Season: "all-season",
		},
		{
			Name: "Drip Irrigation Starter Kit", Category: "irrigation-equipment", Brand: "JalSetu",
			Price: 2450, DiscountPrice: discount(2199), Unit: "kit", PackSize: "0.5 acre",
			Stock: 40, Season: "all-season",
		},
	}

	for _, p := range defaultProducts {
		var count int64
		a.gormDB.Model(&domain.Product{}).Where("name = ?", p.Name).Count(&count)
		if count == 0 {
			p.ID = common.UUIDint64()
			p.Slug = domain.MakeSlug(p.Name)
			p.Status = "active"
			p.CreatedAt = time.Now()
			p.UpdatedAt = time.Now()
			if err := a.gormDB.Create(&p).Error; err != nil {
				zap.L().Error("failed to create default product", zap.String("name", p.Name), zap.Error(err))
			} else {
				zap.L().Info("initialized default product", zap.String("name", p.Name))
			}
		}
	}
}

// checkCoupons seeds the standing first-order welcome offer.
func (a *Application) checkCoupons() {
	const welcomeCode = "WELCOME10"

	var count int64
	a.gormDB.Model(&domain.Coupon{}).Where("code = ?", welcomeCode).Count(&count)
	if count > 0 {
		return
	}

	maxDiscount := 150.0
	now := time.Now()
	c := domain.Coupon{
		ID:                common.UUIDint64(),
		Code:              welcomeCode,
		Name:              "Welcome offer",
		Description:       "10% off your first order",
		DiscountType:      domain.CouponTypePercentage,
		Value:             10,
		MaxDiscount:       &maxDiscount,
		MinOrderValue:     300,
		UsageLimitPerUser: 1,
		StartAt:           now,
		EndAt:             now.AddDate(1, 0, 0),
		UserTypes:         common.ToJSON([]string{"new"}),
		FirstOrderOnly:    true,
		Status:            common.ENABLED,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := a.gormDB.Create(&c).Error; err != nil {
		zap.L().Error("failed to create welcome coupon", zap.Error(err))
	} else {
		zap.L().Info("initialized welcome coupon", zap.String("code", welcomeCode))
	}
}

func splitSettingKey(key string) (category, name string) {
	for i := 0; i < len(key); i++ {
		if key[i] == '.' {
			return key[:i], key[i+1:]
		}
	}
	return "", ""
}
