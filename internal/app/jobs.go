package app

import (
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"

	"github.com/croplink/agrimart/internal/domain"
	"github.com/croplink/agrimart/pkg/common"
	"github.com/croplink/agrimart/pkg/metrics"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	_, err = a.sched.AddFunc("@every 30s", func() {
		go a.SchedSystemMonitorTask()
		go a.SchedProcessMonitorTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@hourly", func() {
		a.SchedSweepAbandonedCarts()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@daily", func() {
		a.SchedDisableExpiredCoupons()
		a.SchedArchiveExpiredAdvisories()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// SchedSystemMonitorTask system monitor
func (a *Application) SchedSystemMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	// Collect CPU usage
	_cpuuse, err := cpu.Percent(0, false)
	if err == nil && len(_cpuuse) > 0 {
		metrics.SetGauge("system_cpuuse", int64(_cpuuse[0]*100)) // Store as percentage * 100
	}

	// Collect memory usage
	_meminfo, err := mem.VirtualMemory()
	if err == nil {
		metrics.SetGauge("system_memuse", int64(_meminfo.Used/1024/1024))
	}
}

// SchedProcessMonitorTask app process monitor
func (a *Application) SchedProcessMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return
	}

	// Collect process CPU usage
	cpuuse, err := p.CPUPercent()
	if err == nil {
		metrics.SetGauge("agrimart_cpuuse", int64(cpuuse*100)) // Store as percentage * 100
	}

	// Collect process memory usage
	meminfo, err := p.MemoryInfo()
	if err == nil {
		metrics.SetGauge("agrimart_memuse", int64(meminfo.RSS/1024/1024))
	}
}

// SchedSweepAbandonedCarts marks active carts untouched for the configured
// number of days as abandoned. Items are kept so the cart can be revived.
func (a *Application) SchedSweepAbandonedCarts() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	days := a.appConfig.Commerce.AbandonedCartDays
	if days <= 0 {
		days = 30
	}
	cutoff := time.Now().Add(-time.Hour * 24 * time.Duration(days))

	result := a.gormDB.Model(&domain.Cart{}).
		Where("status = ? and last_modified < ?", domain.CartStatusActive, cutoff).
		Updates(map[string]interface{}{"status": domain.CartStatusAbandoned, "updated_at": time.Now()})
	if result.Error != nil {
		zap.L().Error("abandoned cart sweep failed", zap.Error(result.Error))
		return
	}
	if result.RowsAffected > 0 {
		zap.L().Info("abandoned cart sweep", zap.Int64("carts", result.RowsAffected))
	}
}

// SchedDisableExpiredCoupons retires coupons whose validity window ended.
// Carts still holding an expired code re-validate at checkout anyway; this
// keeps admin listings and the public active list tidy.
func (a *Application) SchedDisableExpiredCoupons() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	result := a.gormDB.Model(&domain.Coupon{}).
		Where("status = ? and end_at <= ?", common.ENABLED, time.Now()).
		Updates(map[string]interface{}{"status": common.DISABLED, "updated_at": time.Now()})
	if result.Error != nil {
		zap.L().Error("coupon expiry sweep failed", zap.Error(result.Error))
		return
	}
	if result.RowsAffected > 0 {
		zap.L().Info("coupon expiry sweep", zap.Int64("coupons", result.RowsAffected))
	}
}

// SchedArchiveExpiredAdvisories archives published advisories past their
// validity window unless marked evergreen.
func (a *Application) SchedArchiveExpiredAdvisories() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	result := a.gormDB.Model(&domain.CropAdvisory{}).
		Where("status = ? and evergreen = ? and valid_until is not null and valid_until <= ?",
			domain.AdvisoryStatusPublished, false, time.Now()).
		Updates(map[string]interface{}{"status": domain.AdvisoryStatusArchived, "updated_at": time.Now()})
	if result.Error != nil {
		zap.L().Error("advisory archive sweep failed", zap.Error(result.Error))
		return
	}
	if result.RowsAffected > 0 {
		zap.L().Info("advisory archive sweep", zap.Int64("advisories", result.RowsAffected))
	}
}
