package models

import "time"

// GuildConfig はギルドごとの設定（1ギルドにつき最大1行）
type GuildConfig struct {
	GuildID           string `gorm:"primaryKey"`
	DefaultCalendarID string // カレンダー監視でIDを省略した場合に使うカレンダー
	GiveawayRoleList  string // ギブアウェイを管理できるロールID（カンマ区切り）
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// GiveawayRoles はギブアウェイ管理を許可されたロールIDのスライスを返す
func (c *GuildConfig) GiveawayRoles() []string {
	return SplitList(c.GiveawayRoleList)
}
