package models

import (
	"time"

	"gorm.io/gorm"
)

// Announcement はチャンネルの最下部に常設するアナウンス設定。
// 同じ (ギルド, チャンネル) への再設定は本文の上書きになる
type Announcement struct {
	ID            string `gorm:"primaryKey"`
	GuildID       string `gorm:"index:idx_guild_channel,unique"`
	ChannelID     string `gorm:"index:idx_guild_channel,unique"`
	Body          string // アナウンス本文
	LastMessageID string // 最後に投稿したボットメッセージのID（再投稿時に削除する）
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}
