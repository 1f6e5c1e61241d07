package adminapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/croplink/agrimart/internal/advisory"
	"github.com/croplink/agrimart/internal/domain"
	"github.com/croplink/agrimart/internal/weather"
	"github.com/croplink/agrimart/internal/webserver"
	"github.com/croplink/agrimart/pkg/common"
)

type advisoryPayload struct {
	Title       string          `json:"title"`
	Content     string          `json:"content"`
	Summary     string          `json:"summary"`
	Category    string          `json:"category"`
	Season      string          `json:"season"`
	Months      []int           `json:"months"`
	TargetCrops []string        `json:"target_crops"`
	Regions     []domain.Region `json:"regions"`
	SoilTypes   []string        `json:"soil_types"`
	FarmSizeMin *float64        `json:"farm_size_min"`
	FarmSizeMax *float64        `json:"farm_size_max"`
	Priority    string          `json:"priority"`
	Status      string          `json:"status"`
	ValidFrom   *time.Time      `json:"valid_from"`
	ValidUntil  *time.Time      `json:"valid_until"`
	Evergreen   bool            `json:"evergreen"`
	Tags        []string        `json:"tags"`
	Language    string          `json:"language"`
}

func registerAdvisoryRoutes() {
	webserver.PubGET("/advisories", listAdvisories)
	webserver.PubGET("/advisories/:id", getAdvisory)
	webserver.ApiGET("/advisories/recommendations", getAdvisoryRecommendations)
	webserver.ApiPOST("/advisories", createAdvisory)
	webserver.ApiPUT("/advisories/:id", updateAdvisory)
	webserver.ApiDELETE("/advisories/:id", archiveAdvisory)
}

func listAdvisories(c echo.Context) error {
	limit := 50
	filter := advisory.ListFilter{
		Category: strings.TrimSpace(c.QueryParam("category")),
		Season:   strings.TrimSpace(c.QueryParam("season")),
		State:    strings.TrimSpace(c.QueryParam("state")),
	}
	rows, err := advisorySvc.ListPublished(c.Request().Context(), filter, limit)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query advisories", err.Error())
	}
	return ok(c, rows)
}

func getAdvisory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid advisory ID", nil)
	}
	var a domain.CropAdvisory
	err = GetDB(c).Where("id = ? AND status = ?", id, domain.AdvisoryStatusPublished).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "ADVISORY_NOT_FOUND", "Advisory not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query advisory", err.Error())
	}
	_ = advisorySvc.IncrementViews(c.Request().Context(), a.ID)
	return ok(c, a)
}

// getAdvisoryRecommendations returns advisories relevant to the caller's
// farm profile, enriched with current weather for their district when the
// weather provider is configured and the enrichment setting is on.
func getAdvisoryRecommendations(c echo.Context) error {
	var user domain.User
	if err := GetDB(c).First(&user, webserver.CurrentUserID(c)).Error; err != nil {
		return fail(c, http.StatusNotFound, "USER_NOT_FOUND", "Account not found", nil)
	}

	rows, err := advisorySvc.Recommendations(c.Request().Context(), &user, 20)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query advisories", err.Error())
	}

	resp := map[string]interface{}{"advisories": rows}
	if cur := weatherFor(c.Request().Context(), settings, &user); cur != nil {
		resp["weather"] = cur
	}
	return ok(c, resp)
}

// weatherFor fetches district weather for the recommendation response. The
// advisory.WeatherEnrichEnabled setting can switch the lookup off without a
// restart; failures degrade to no weather rather than an error.
func weatherFor(ctx context.Context, s Settings, user *domain.User) *weather.Current {
	if s == nil || !s.GetSettingsBoolValue("advisory", "WeatherEnrichEnabled") {
		return nil
	}
	if !weatherCli.Enabled() || user.State == "" {
		return nil
	}
	cur, err := weatherCli.CurrentFor(ctx, user.State, user.District)
	if err != nil {
		zap.L().Warn("weather lookup failed", zap.String("state", user.State), zap.Error(err))
		return nil
	}
	return cur
}

func createAdvisory(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	var payload advisoryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse advisory", err.Error())
	}
	a, errResp := advisoryFromPayload(c, &payload, nil)
	if errResp != nil {
		return errResp
	}
	a.CreatedBy = webserver.CurrentUserID(c)
	if err := GetDB(c).Create(a).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create advisory", err.Error())
	}
	return ok(c, a)
}

func updateAdvisory(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid advisory ID", nil)
	}
	var existing domain.CropAdvisory
	if err := GetDB(c).Where("id = ?", id).First(&existing).Error; err != nil {
		return fail(c, http.StatusNotFound, "ADVISORY_NOT_FOUND", "Advisory not found", nil)
	}

	var payload advisoryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse advisory", err.Error())
	}
	a, errResp := advisoryFromPayload(c, &payload, &existing)
	if errResp != nil {
		return errResp
	}
	if err := GetDB(c).Save(a).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update advisory", err.Error())
	}
	return ok(c, a)
}

func archiveAdvisory(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid advisory ID", nil)
	}
	result := GetDB(c).Model(&domain.CropAdvisory{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": domain.AdvisoryStatusArchived, "updated_at": time.Now()})
	if result.Error != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to archive advisory", result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return fail(c, http.StatusNotFound, "ADVISORY_NOT_FOUND", "Advisory not found", nil)
	}
	return ok(c, map[string]interface{}{"id": id, "status": domain.AdvisoryStatusArchived})
}

func advisoryFromPayload(c echo.Context, payload *advisoryPayload, existing *domain.CropAdvisory) (*domain.CropAdvisory, error) {
	payload.Title = strings.TrimSpace(payload.Title)
	if payload.Title == "" || payload.Content == "" {
		return nil, fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Title and content are required", nil)
	}
	if !domain.ValidAdvisoryCategory(payload.Category) {
		return nil, fail(c, http.StatusBadRequest, "INVALID_CATEGORY", "Unknown advisory category", payload.Category)
	}
	if payload.ValidFrom != nil && payload.ValidUntil != nil && !payload.ValidUntil.After(*payload.ValidFrom) {
		return nil, fail(c, http.StatusBadRequest, "INVALID_REQUEST", "valid_until must be after valid_from", nil)
	}

	now := time.Now()
	a := existing
	if a == nil {
		a = &domain.CropAdvisory{ID: common.UUIDint64(), Status: domain.AdvisoryStatusDraft, CreatedAt: now}
	}
	a.Title = payload.Title
	a.Content = payload.Content
	a.Summary = payload.Summary
	a.Category = payload.Category
	a.Season = payload.Season
	a.Months = common.ToJSON(payload.Months)
	a.TargetCrops = common.ToJSON(payload.TargetCrops)
	a.Regions = common.ToJSON(payload.Regions)
	a.SoilTypes = common.ToJSON(payload.SoilTypes)
	a.FarmSizeMin = payload.FarmSizeMin
	a.FarmSizeMax = payload.FarmSizeMax
	if payload.Priority != "" {
		a.Priority = payload.Priority
	}
	if payload.Status != "" {
		a.Status = payload.Status
	}
	a.ValidFrom = payload.ValidFrom
	a.ValidUntil = payload.ValidUntil
	a.Evergreen = payload.Evergreen
	a.Tags = common.ToJSON(payload.Tags)
	if payload.Language != "" {
		a.Language = payload.Language
	}
	a.UpdatedAt = now
	return a, nil
}
