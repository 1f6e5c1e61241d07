package adminapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/croplink/agrimart/internal/domain"
	"github.com/croplink/agrimart/internal/webserver"
	"github.com/croplink/agrimart/pkg/common"
)

type registerPayload struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Phone    string   `json:"phone"`
	State    string   `json:"state"`
	District string   `json:"district"`
	Village  string   `json:"village"`
	Pincode  string   `json:"pincode"`
	FarmSize float64  `json:"farm_size"`
	Crops    []string `json:"crops"`
	SoilType string   `json:"soil_type"`
	Language string   `json:"language"`
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func registerAuthRoutes() {
	webserver.PubPOST("/auth/register", postRegister)
	webserver.PubPOST("/auth/login", postLogin)
	webserver.ApiGET("/account/profile", getProfile)
	webserver.ApiPUT("/account/profile", updateProfile)
}

func postRegister(c echo.Context) error {
	var payload registerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse registration", err.Error())
	}
	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" || payload.Email == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Name and email are required", nil)
	}
	if len(payload.Password) < 6 {
		return fail(c, http.StatusBadRequest, "WEAK_PASSWORD", "Password must be at least 6 characters", nil)
	}

	var dup domain.User
	if err := GetDB(c).Where("email = ?", payload.Email).First(&dup).Error; err == nil {
		return fail(c, http.StatusConflict, "DUPLICATE_EMAIL", "An account with this email already exists", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to hash password", nil)
	}

	now := time.Now()
	user := domain.User{
		ID:        common.UUIDint64(),
		Name:      payload.Name,
		Email:     payload.Email,
		Password:  string(hash),
		Phone:     strings.TrimSpace(payload.Phone),
		State:     strings.TrimSpace(payload.State),
		District:  strings.TrimSpace(payload.District),
		Village:   strings.TrimSpace(payload.Village),
		Pincode:   strings.TrimSpace(payload.Pincode),
		FarmSize:  payload.FarmSize,
		Crops:     common.ToJSON(payload.Crops),
		SoilType:  strings.TrimSpace(payload.SoilType),
		Language:  payload.Language,
		LastLogin: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if user.Language == "" {
		user.Language = "english"
	}
	if err := GetDB(c).Create(&user).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create account", err.Error())
	}

	token, err := webserver.IssueToken(appConfig, user.ID, user.IsAdmin)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to issue token", nil)
	}
	zap.L().Info("user registered", zap.Int64("user_id", user.ID), zap.String("state", user.State))
	return ok(c, map[string]interface{}{"token": token, "user": user})
}

func postLogin(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse login", err.Error())
	}
	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))

	var user domain.User
	err := GetDB(c).Where("email = ?", payload.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query account", err.Error())
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(payload.Password)) != nil {
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", nil)
	}

	GetDB(c).Model(&user).Update("last_login", time.Now())

	token, err := webserver.IssueToken(appConfig, user.ID, user.IsAdmin)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to issue token", nil)
	}
	return ok(c, map[string]interface{}{"token": token, "user": user})
}

func getProfile(c echo.Context) error {
	var user domain.User
	if err := GetDB(c).First(&user, webserver.CurrentUserID(c)).Error; err != nil {
		return fail(c, http.StatusNotFound, "USER_NOT_FOUND", "Account not found", nil)
	}
	return ok(c, user)
}

func updateProfile(c echo.Context) error {
	var user domain.User
	if err := GetDB(c).First(&user, webserver.CurrentUserID(c)).Error; err != nil {
		return fail(c, http.StatusNotFound, "USER_NOT_FOUND", "Account not found", nil)
	}

	var payload registerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse profile", err.Error())
	}
	if name := strings.TrimSpace(payload.Name); name != "" {
		user.Name = name
	}
	user.Phone = strings.TrimSpace(payload.Phone)
	user.State = strings.TrimSpace(payload.State)
	user.District = strings.TrimSpace(payload.District)
	user.Village = strings.TrimSpace(payload.Village)
	user.Pincode = strings.TrimSpace(payload.Pincode)
	user.FarmSize = payload.FarmSize
	user.SoilType = strings.TrimSpace(payload.SoilType)
	if len(payload.Crops) > 0 {
		user.Crops = common.ToJSON(payload.Crops)
	}
	if payload.Language != "" {
		user.Language = payload.Language
	}
	user.UpdatedAt = time.Now()

	if err := GetDB(c).Save(&user).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update profile", err.Error())
	}
	return ok(c, user)
}

// requireAdmin gates mutating catalog and coupon endpoints.
func requireAdmin(c echo.Context) error {
	if !webserver.CurrentUserIsAdmin(c) {
		return fail(c, http.StatusForbidden, "FORBIDDEN", "Administrator access required", nil)
	}
	return nil
}
