package adminapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/croplink/agrimart/internal/domain"
	"github.com/croplink/agrimart/internal/webserver"
	"github.com/croplink/agrimart/pkg/common"
)

type productPayload struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Category        string   `json:"category"`
	SubCategory     string   `json:"sub_category"`
	Brand           string   `json:"brand"`
	Price           float64  `json:"price"`
	DiscountPrice   *float64 `json:"discount_price"`
	Unit            string   `json:"unit"`
	PackSize        string   `json:"pack_size"`
	Stock           *int     `json:"stock"`
	LowStockAlert   *int     `json:"low_stock_alert"`
	CropSuitability []string `json:"crop_suitability"`
	SoilTypes       []string `json:"soil_types"`
	Season          string   `json:"season"`
	IsFeatured      *bool    `json:"is_featured"`
}

type productCSVRow struct {
	Name          string  `csv:"name"`
	Category      string  `csv:"category"`
	Brand         string  `csv:"brand"`
	Price         float64 `csv:"price"`
	DiscountPrice float64 `csv:"discount_price"`
	Unit          string  `csv:"unit"`
	PackSize      string  `csv:"pack_size"`
	Stock         int     `csv:"stock"`
	Season        string  `csv:"season"`
}

func registerProductRoutes() {
	webserver.PubGET("/products", listProducts)
	webserver.PubGET("/products/:id", getProduct)
	webserver.ApiPOST("/products", createProduct)
	webserver.ApiPUT("/products/:id", updateProduct)
	webserver.ApiDELETE("/products/:id", deleteProduct)
	webserver.ApiPOST("/products/import", importProducts)
}

func listProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)

	q := strings.TrimSpace(c.QueryParam("q"))
	category := strings.TrimSpace(c.QueryParam("category"))
	crop := strings.TrimSpace(c.QueryParam("crop"))

	sortField := strings.TrimSpace(c.QueryParam("sort"))
	order := strings.ToUpper(strings.TrimSpace(c.QueryParam("order")))
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	// whitelist allowed sort columns to avoid SQL injection
	allowed := map[string]string{
		"id":         "id",
		"name":       "name",
		"price":      "price",
		"sales":      "sales",
		"created_at": "created_at",
	}
	sortCol, okCol := allowed[sortField]
	if !okCol || sortCol == "" {
		sortCol = "id"
	}

	db := GetDB(c).Model(&domain.Product{}).Where("status = ?", "active")
	if q != "" {
		db = db.Where("name ILIKE ? OR brand ILIKE ?", "%"+q+"%", "%"+q+"%")
	}
	if category != "" {
		db = db.Where("category = ?", category)
	}
	if crop != "" {
		db = db.Where("crop_suitability ILIKE ?", "%"+crop+"%")
	}
	if c.QueryParam("in_stock") == "true" {
		db = db.Where("stock > 0")
	}
	if c.QueryParam("featured") == "true" {
		db = db.Where("is_featured = ?", true)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}
	var rows []domain.Product
	if err := db.Order(sortCol + " " + order).Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

// getProduct resolves by numeric ID or by slug and bumps the view counter.
func getProduct(c echo.Context) error {
	ref := c.Param("id")
	db := GetDB(c)

	var p domain.Product
	var err error
	if id, perr := strconv.ParseInt(ref, 10, 64); perr == nil {
		err = db.Where("id = ?", id).First(&p).Error
	} else {
		err = db.Where("slug = ?", ref).First(&p).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query product", err.Error())
	}

	db.Model(&domain.Product{}).Where("id = ?", p.ID).UpdateColumn("views", gorm.Expr("views + 1"))
	return ok(c, p)
}

func createProduct(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	p, errResp := productFromPayload(c, &payload, nil)
	if errResp != nil {
		return errResp
	}
	if err := GetDB(c).Create(p).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create product", err.Error())
	}
	return ok(c, p)
}

func updateProduct(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var existing domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&existing).Error; err != nil {
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
	}

	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	p, errResp := productFromPayload(c, &payload, &existing)
	if errResp != nil {
		return errResp
	}
	if err := GetDB(c).Save(p).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update product", err.Error())
	}
	return ok(c, p)
}

// deleteProduct retires the product instead of removing the row; orders and
// carts keep referencing it by snapshot.
func deleteProduct(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	result := GetDB(c).Model(&domain.Product{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": "inactive", "updated_at": time.Now()})
	if result.Error != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to retire product", result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
	}
	return ok(c, map[string]interface{}{"id": id, "status": "inactive"})
}

// importProducts bulk-creates products from an uploaded CSV file.
func importProducts(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "CSV file is required", nil)
	}
	src, err := fh.Open()
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to open uploaded file", err.Error())
	}
	defer src.Close()

	var csvRows []productCSVRow
	if err := gocsv.Unmarshal(src, &csvRows); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_CSV", "Unable to parse CSV", err.Error())
	}

	now := time.Now()
	imported := 0
	skipped := 0
	for _, row := range csvRows {
		row.Name = strings.TrimSpace(row.Name)
		if row.Name == "" || row.Price <= 0 || !domain.ValidProductCategory(row.Category) {
			skipped++
			continue
		}
		p := domain.Product{
			ID:        common.UUIDint64(),
			Name:      row.Name,
			Slug:      domain.MakeSlug(row.Name),
			Category:  row.Category,
			Brand:     strings.TrimSpace(row.Brand),
			Price:     row.Price,
			Unit:      row.Unit,
			PackSize:  row.PackSize,
			Stock:     row.Stock,
			Season:    row.Season,
			Status:    "active",
			CreatedAt: now,
			UpdatedAt: now,
		}
		if row.DiscountPrice > 0 && row.DiscountPrice < row.Price {
			dp := row.DiscountPrice
			p.DiscountPrice = &dp
		}
		if err := GetDB(c).Create(&p).Error; err != nil {
			skipped++
			continue
		}
		imported++
	}
	zap.L().Info("product csv import finished",
		zap.Int("imported", imported), zap.Int("skipped", skipped))
	return ok(c, map[string]interface{}{"imported": imported, "skipped": skipped})
}

func productFromPayload(c echo.Context, payload *productPayload, existing *domain.Product) (*domain.Product, error) {
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		return nil, fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Name is required", nil)
	}
	if payload.Price <= 0 {
		return nil, fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Price must be positive", nil)
	}
	if !domain.ValidProductCategory(payload.Category) {
		return nil, fail(c, http.StatusBadRequest, "INVALID_CATEGORY", "Unknown product category", payload.Category)
	}
	if payload.DiscountPrice != nil && (*payload.DiscountPrice <= 0 || *payload.DiscountPrice >= payload.Price) {
		return nil, fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Discount price must be positive and below the list price", nil)
	}

	now := time.Now()
	p := existing
	if p == nil {
		p = &domain.Product{ID: common.UUIDint64(), Status: "active", CreatedAt: now}
	}
	p.Name = payload.Name
	p.Slug = domain.MakeSlug(payload.Name)
	p.Description = payload.Description
	p.Category = payload.Category
	p.SubCategory = payload.SubCategory
	p.Brand = strings.TrimSpace(payload.Brand)
	p.Price = payload.Price
	p.DiscountPrice = payload.DiscountPrice
	p.Unit = payload.Unit
	p.PackSize = payload.PackSize
	p.Season = payload.Season
	if payload.Stock != nil {
		p.Stock = *payload.Stock
	}
	if payload.LowStockAlert != nil {
		p.LowStockAlert = *payload.LowStockAlert
	}
	if payload.IsFeatured != nil {
		p.IsFeatured = *payload.IsFeatured
	}
	if len(payload.CropSuitability) > 0 {
		p.CropSuitability = common.ToJSON(payload.CropSuitability)
	}
	if len(payload.SoilTypes) > 0 {
		p.SoilTypes = common.ToJSON(payload.SoilTypes)
	}
	p.UpdatedAt = now
	return p, nil
}
