package services

import (
	"fmt"
	"sync"

	"gorm.io/gorm"

	"discord-giveaway-notify/models"
)

// snapshot はある時点の設定・実行状態テーブルの完全な写し。
// 一度組み立てたら変更せず、差し替えのみ行う
type snapshot struct {
	reactionTriggers   map[string][]models.ReactionTrigger
	announcements      map[string][]models.Announcement
	calendarMonitors   map[string][]models.CalendarMonitor
	guildConfigs       map[string]models.GuildConfig
	giveaways          map[string][]models.Giveaway
	scheduledGiveaways map[string][]models.ScheduledGiveaway
}

func newSnapshot() *snapshot {
	return &snapshot{
		reactionTriggers:   make(map[string][]models.ReactionTrigger),
		announcements:      make(map[string][]models.Announcement),
		calendarMonitors:   make(map[string][]models.CalendarMonitor),
		guildConfigs:       make(map[string]models.GuildConfig),
		giveaways:          make(map[string][]models.Giveaway),
		scheduledGiveaways: make(map[string][]models.ScheduledGiveaway),
	}
}

// SettingsCache は永続ストアの読み取り最適化ミラー。
// 読み取りはスナップショットのみを参照し、ストアには触れない。
// 書き込みは Write ゲートウェイを通し、行に影響があった場合のみ再読み込みする
type SettingsCache struct {
	db        *gorm.DB
	mu        sync.RWMutex
	refreshMu sync.Mutex
	snap      *snapshot
}

func NewSettingsCache(db *gorm.DB) *SettingsCache {
	return &SettingsCache{db: db, snap: newSnapshot()}
}

// Refresh は全テーブルを読み直して新しいスナップショットを組み立て、まるごと差し替える。
// 組み立て中も古いスナップショットが有効なままなので、読み手が途中状態を見ることはない
func (c *SettingsCache) Refresh() error {
	// 書き込みが連続したとき、先に読み始めた古いスナップショットが
	// 後から差し替わって新しい書き込みを覆い隠さないよう、
	// 組み立てから差し替えまでを直列化する
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	snap := newSnapshot()

	var triggers []models.ReactionTrigger
	if err := c.db.Find(&triggers).Error; err != nil {
		return fmt.Errorf("reaction trigger load error: %w", err)
	}
	for _, t := range triggers {
		snap.reactionTriggers[t.GuildID] = append(snap.reactionTriggers[t.GuildID], t)
	}

	var announcements []models.Announcement
	if err := c.db.Find(&announcements).Error; err != nil {
		return fmt.Errorf("announcement load error: %w", err)
	}
	for _, a := range announcements {
		snap.announcements[a.GuildID] = append(snap.announcements[a.GuildID], a)
	}

	var monitors []models.CalendarMonitor
	if err := c.db.Find(&monitors).Error; err != nil {
		return fmt.Errorf("calendar monitor load error: %w", err)
	}
	for _, m := range monitors {
		snap.calendarMonitors[m.GuildID] = append(snap.calendarMonitors[m.GuildID], m)
	}

	var configs []models.GuildConfig
	if err := c.db.Find(&configs).Error; err != nil {
		return fmt.Errorf("guild config load error: %w", err)
	}
	for _, g := range configs {
		snap.guildConfigs[g.GuildID] = g
	}

	var giveaways []models.Giveaway
	if err := c.db.Find(&giveaways).Error; err != nil {
		return fmt.Errorf("giveaway load error: %w", err)
	}
	for _, g := range giveaways {
		snap.giveaways[g.GuildID] = append(snap.giveaways[g.GuildID], g)
	}

	var scheduled []models.ScheduledGiveaway
	if err := c.db.Find(&scheduled).Error; err != nil {
		return fmt.Errorf("scheduled giveaway load error: %w", err)
	}
	for _, s := range scheduled {
		snap.scheduledGiveaways[s.GuildID] = append(snap.scheduledGiveaways[s.GuildID], s)
	}

	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()
	return nil
}

// Write は永続ストアへの唯一の書き込みゲートウェイ。
// 1行以上に影響した書き込みの後にだけキャッシュを再読み込みする。
// 書き込み成功後の再読み込み失敗はエラーとして返すが、その場合も
// 古い（一貫した）スナップショットが残るだけで壊れた状態にはならない
func (c *SettingsCache) Write(op func(db *gorm.DB) *gorm.DB) error {
	_, err := c.WriteAffected(op)
	return err
}

// WriteAffected は Write と同じゲートウェイで、影響した行数も返す。
// 状態を条件に含めた更新で他の経路に先を越されたかどうかを
// 呼び出し側が判定できる
func (c *SettingsCache) WriteAffected(op func(db *gorm.DB) *gorm.DB) (int64, error) {
	result := op(c.db)
	if result.Error != nil {
		return 0, result.Error
	}

	if result.RowsAffected > 0 {
		if err := c.Refresh(); err != nil {
			return result.RowsAffected, fmt.Errorf("cache refresh error after write: %w", err)
		}
	}
	return result.RowsAffected, nil
}

func (c *SettingsCache) current() *snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// ReactionTriggers はギルドのリアクショントリガー設定を返す
func (c *SettingsCache) ReactionTriggers(guildID string) []models.ReactionTrigger {
	return c.current().reactionTriggers[guildID]
}

// Announcements はギルドの常設アナウンス設定を返す
func (c *SettingsCache) Announcements(guildID string) []models.Announcement {
	return c.current().announcements[guildID]
}

// CalendarMonitors はギルドのカレンダー監視設定を返す
func (c *SettingsCache) CalendarMonitors(guildID string) []models.CalendarMonitor {
	return c.current().calendarMonitors[guildID]
}

// AllCalendarMonitors は全ギルドのカレンダー監視設定を返す（掃引用）
func (c *SettingsCache) AllCalendarMonitors() []models.CalendarMonitor {
	snap := c.current()
	var all []models.CalendarMonitor
	for _, monitors := range snap.calendarMonitors {
		all = append(all, monitors...)
	}
	return all
}

// GuildConfig はギルド設定を返す（未設定の場合は ok=false）
func (c *SettingsCache) GuildConfig(guildID string) (models.GuildConfig, bool) {
	config, ok := c.current().guildConfigs[guildID]
	return config, ok
}

// Giveaways はギルドのギブアウェイを全状態まとめて返す
func (c *SettingsCache) Giveaways(guildID string) []models.Giveaway {
	return c.current().giveaways[guildID]
}

// AllRunningGiveaways は全ギルドの開催中ギブアウェイを返す（掃引用）
func (c *SettingsCache) AllRunningGiveaways() []models.Giveaway {
	snap := c.current()
	var running []models.Giveaway
	for _, giveaways := range snap.giveaways {
		for _, g := range giveaways {
			if g.Status == models.GiveawayStatusRunning {
				running = append(running, g)
			}
		}
	}
	return running
}

// ScheduledGiveaways はギルドの予約済みギブアウェイを返す
func (c *SettingsCache) ScheduledGiveaways(guildID string) []models.ScheduledGiveaway {
	return c.current().scheduledGiveaways[guildID]
}

// AllScheduledGiveaways は全ギルドの予約済みギブアウェイを返す（掃引用）
func (c *SettingsCache) AllScheduledGiveaways() []models.ScheduledGiveaway {
	snap := c.current()
	var all []models.ScheduledGiveaway
	for _, scheduled := range snap.scheduledGiveaways {
		all = append(all, scheduled...)
	}
	return all
}
