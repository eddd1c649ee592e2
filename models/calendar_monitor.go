package models

import (
	"time"

	"gorm.io/gorm"
)

// CalendarMonitor は外部カレンダーを監視してイベントを通知する設定
type CalendarMonitor struct {
	ID          string `gorm:"primaryKey"`
	GuildID     string `gorm:"index:idx_guild_channel_word,unique"`
	ChannelID   string `gorm:"index:idx_guild_channel_word,unique"`
	CalendarID  string // 外部カレンダーの識別子
	TriggerWord string `gorm:"index:idx_guild_channel_word,unique"` // [キーワード] 形式でマッチさせる文字列
	MentionID   string // 通知時にメンションする対象（<@...> / <@&...> 形式、省略可）
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}
