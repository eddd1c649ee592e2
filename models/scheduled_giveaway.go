package models

import (
	"time"

	"gorm.io/gorm"
)

// ScheduledGiveaway は予約されたギブアウェイの定義。
// StartAt が入っている行は一回限りの予約で、開催後に削除される。
// RecurrenceRule が入っている行は繰り返し予約で、発火のたびに確認プロンプトを
// 送るだけで行自体は残り続ける（どちらか一方のみ設定する）
type ScheduledGiveaway struct {
	ID               string `gorm:"primaryKey"`
	GuildID          string `gorm:"index"`
	ChannelID        string // 開催先チャンネル
	Prize            string
	WinnerCount      int
	StartAt          *time.Time // 一回限りの開始時刻
	RecurrenceRule   string     // cron形式の繰り返しルール（分 時 日 月 曜日）
	DurationMinutes  int        // 開始から締切までの分数
	EndAt            *time.Time // 明示的な締切（DurationMinutes の代わりに指定できる）
	ConfirmChannelID string     // 繰り返し予約の確認プロンプトを送るチャンネル
	ConfirmRoleID    string     // 確認プロンプトでメンションするロール（<@&...> 形式、省略可）
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

// Recurring は繰り返し予約かどうかを返す
func (s *ScheduledGiveaway) Recurring() bool {
	return s.RecurrenceRule != ""
}
