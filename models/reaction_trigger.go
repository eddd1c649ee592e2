package models

import (
	"time"

	"gorm.io/gorm"
)

// ReactionTrigger はメッセージ本文に反応して絵文字を付けるトリガー設定
type ReactionTrigger struct {
	ID          string `gorm:"primaryKey"`
	GuildID     string `gorm:"index:idx_guild_channel_trigger,unique"`
	ChannelID   string `gorm:"index:idx_guild_channel_trigger,unique"`
	TriggerText string `gorm:"index:idx_guild_channel_trigger,unique"` // 反応対象の文字列
	EmojiList   string // 付与する絵文字（カンマ区切り、付与順）
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

// Emojis は付与する絵文字を順序付きのスライスで返す
func (t *ReactionTrigger) Emojis() []string {
	return SplitList(t.EmojiList)
}
