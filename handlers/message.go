package handlers

import (
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
	"gorm.io/gorm"

	"discord-giveaway-notify/models"
	"discord-giveaway-notify/services"
)

// HandleMessageCreate はメッセージ受信イベントのハンドラを作る。
// コマンド、リアクショントリガー、常設アナウンスの再投稿を処理する
func HandleMessageCreate(deps *Deps) func(s *discordgo.Session, m *discordgo.MessageCreate) {
	return func(s *discordgo.Session, m *discordgo.MessageCreate) {
		// ボットの発言には反応しない（自分のアナウンス再投稿でループしないため）
		if m.Author == nil || m.Author.Bot {
			return
		}

		if strings.HasPrefix(m.Content, deps.Prefix) {
			handleCommand(deps, s, m)
			return
		}

		applyReactionTriggers(deps.Cache, s, m)
		repostAnnouncement(deps.Cache, s, m)
	}
}

// applyReactionTriggers はトリガー文字列を含むメッセージに設定された絵文字を順に付ける
func applyReactionTriggers(cache *services.SettingsCache, session services.DiscordSession, m *discordgo.MessageCreate) {
	content := strings.ToLower(m.Content)

	for _, trigger := range cache.ReactionTriggers(m.GuildID) {
		if trigger.ChannelID != m.ChannelID {
			continue
		}
		if !strings.Contains(content, strings.ToLower(trigger.TriggerText)) {
			continue
		}

		for _, emoji := range trigger.Emojis() {
			if err := session.MessageReactionAdd(m.ChannelID, m.ID, emoji); err != nil {
				log.Printf("reaction add error (message: %s, emoji: %s): %v", m.ID, emoji, err)
				break
			}
		}
	}
}

// repostAnnouncement は常設アナウンスをチャンネルの最下部に保つ。
// 前回のボット投稿を消してから同じ本文を投稿し直す
func repostAnnouncement(cache *services.SettingsCache, session services.DiscordSession, m *discordgo.MessageCreate) {
	for _, announcement := range cache.Announcements(m.GuildID) {
		if announcement.ChannelID != m.ChannelID {
			continue
		}

		if announcement.LastMessageID != "" {
			if err := session.ChannelMessageDelete(m.ChannelID, announcement.LastMessageID); err != nil {
				// 手動で消されている場合もあるので記録だけして続行
				log.Printf("old announcement delete error (message: %s): %v", announcement.LastMessageID, err)
			}
		}

		posted, err := session.ChannelMessageSend(m.ChannelID, announcement.Body)
		if err != nil {
			log.Printf("announcement repost error (channel: %s): %v", m.ChannelID, err)
			continue
		}

		announcementID := announcement.ID
		err = cache.Write(func(db *gorm.DB) *gorm.DB {
			return db.Model(&models.Announcement{}).Where("id = ?", announcementID).
				Update("last_message_id", posted.ID)
		})
		if err != nil {
			log.Printf("announcement update error (id: %s): %v", announcementID, err)
		}
	}
}
