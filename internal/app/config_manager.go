package app

import (
	"sync"
	"time"

	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/croplink/agrimart/internal/domain"
)

const settingsCacheTTL = time.Minute

// ConfigManager serves runtime settings stored in the sys_config table with
// a short-lived in-memory cache. Values missing from the table resolve to
// zero values.
type ConfigManager struct {
	db       *gorm.DB
	mu       sync.RWMutex
	cache    map[string]string
	loadedAt time.Time
}

func NewConfigManager(db *gorm.DB) *ConfigManager {
	return &ConfigManager{db: db, cache: map[string]string{}}
}

func (m *ConfigManager) GetString(category, name string) string {
	return m.value(category + "." + name)
}

func (m *ConfigManager) GetInt64(category, name string) int64 {
	return cast.ToInt64(m.value(category + "." + name))
}

func (m *ConfigManager) GetInt(category, name string) int {
	return cast.ToInt(m.value(category + "." + name))
}

func (m *ConfigManager) GetBool(category, name string) bool {
	return cast.ToBool(m.value(category + "." + name))
}

// SetValue upserts one setting and invalidates the cache.
func (m *ConfigManager) SetValue(category, name, value string) error {
	var existing domain.SysConfig
	err := m.db.Where("type = ? and name = ?", category, name).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		err = m.db.Create(&domain.SysConfig{Type: category, Name: name, Value: value}).Error
	} else if err == nil {
		err = m.db.Model(&domain.SysConfig{}).Where("id = ?", existing.ID).
			Update("value", value).Error
	}
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.loadedAt = time.Time{}
	m.mu.Unlock()
	return nil
}

func (m *ConfigManager) value(key string) string {
	m.mu.RLock()
	fresh := time.Since(m.loadedAt) < settingsCacheTTL
	v := m.cache[key]
	m.mu.RUnlock()
	if fresh {
		return v
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if time.Since(m.loadedAt) >= settingsCacheTTL {
		var rows []domain.SysConfig
		if err := m.db.Find(&rows).Error; err != nil {
			zap.L().Error("failed to load settings", zap.Error(err))
			return m.cache[key]
		}
		cache := make(map[string]string, len(rows))
		for _, r := range rows {
			cache[r.Type+"."+r.Name] = r.Value
		}
		m.cache = cache
		m.loadedAt = time.Now()
	}
	return m.cache[key]
}
