package model

import "time"

// NotificationKind 对应通知横幅的三种状态。
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
	NotificationLoading NotificationKind = "loading"
)

// Notification 是一条短暂显示、自动消失的横幅通知。
type Notification struct {
	ID         string           `json:"id"`
	Kind       NotificationKind `json:"kind"`
	Message    string           `json:"message"`
	Icon       string           `json:"icon"`
	Color      string           `json:"color"`
	Position   string           `json:"position"`
	DurationMs int64            `json:"durationMs"`
	CreatedAt  time.Time        `json:"createdAt"`
	ExpiresAt  time.Time        `json:"expiresAt"`
}

// Expired 判断通知在 now 时刻是否已自动消失。
func (n Notification) Expired(now time.Time) bool {
	return !now.Before(n.ExpiresAt)
}

// IconFor 返回各类通知对应的图标与颜色。
func IconFor(kind NotificationKind) (icon, color string) {
	switch kind {
	case NotificationSuccess:
		return "check-circle-2", "#60a5fa"
	case NotificationError:
		return "alert-circle", "#f87171"
	default:
		return "loader-2", "#60a5fa"
	}
}
