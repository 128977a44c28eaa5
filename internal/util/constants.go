package util

import (
	"fmt"
	"time"
)

const DateFormat = "2006-01-02"

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

const (
	ShopItemHeartRefill = "heart_refill"
	ShopItemHeart       = "heart"
)

// DailyPeriodKey 日任务周期键，如 2025-03-14
func DailyPeriodKey(t time.Time) string {
	return t.Format(DateFormat)
}

// WeeklyPeriodKey ISO 周任务周期键，如 2025-W11
func WeeklyPeriodKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// DaysBetween 返回两个日期之间相差的自然日数
func DaysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
