package models

import "time"

// NotifiedEvent は通知済みカレンダーイベントの台帳。
// ポーリングで同じイベントを何度も観測するため、イベントIDごとに一度だけ書き込み、
// 保持期間を過ぎた行は掃引の先頭で削除して肥大化を防ぐ
type NotifiedEvent struct {
	EventID    string `gorm:"primaryKey"` // 外部カレンダーのイベントID
	NotifiedAt time.Time
}
