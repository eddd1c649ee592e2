package services

import (
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
	"gorm.io/gorm"

	"discord-giveaway-notify/models"
)

// 確認プロンプトのボタンIDは予約IDを接尾辞に持つ
const (
	ConfirmButtonPrefix = "giveaway_confirm:"
	SkipButtonPrefix    = "giveaway_skip:"
)

// CheckScheduledGiveaways は予約済みギブアウェイの開始判定を1回分実行する。
// 1件の失敗は記録するだけで残りの予約の処理は続行する
func CheckScheduledGiveaways(db *gorm.DB, cache *SettingsCache, session DiscordSession, now time.Time, interval time.Duration) {
	for _, scheduled := range cache.AllScheduledGiveaways() {
		if err := checkScheduledGiveaway(cache, session, scheduled, now, interval); err != nil {
			log.Printf("scheduled giveaway check error (schedule: %s): %v", scheduled.ID, err)
		}
	}
}

func checkScheduledGiveaway(cache *SettingsCache, session DiscordSession, scheduled models.ScheduledGiveaway, now time.Time, interval time.Duration) error {
	if scheduled.Recurring() {
		// 繰り返し予約は自動開催せず、発火のたびに確認プロンプトを送る。
		// ルール自体は消費しないので行は残り続ける
		occurrences, err := DueOccurrences(scheduled.RecurrenceRule, now.Add(-interval), now)
		if err != nil {
			return err
		}

		for range occurrences {
			if err := sendConfirmationPrompt(session, scheduled); err != nil {
				return fmt.Errorf("confirmation prompt send error: %w", err)
			}
		}
		return nil
	}

	if scheduled.StartAt == nil || scheduled.StartAt.After(now) {
		return nil
	}

	// 一回限りの予約は開催してから行を削除する
	if _, err := MaterializeScheduledGiveaway(cache, session, scheduled, now, interval); err != nil {
		return err
	}

	return cache.Write(func(db *gorm.DB) *gorm.DB {
		return db.Unscoped().Where("id = ?", scheduled.ID).Delete(&models.ScheduledGiveaway{})
	})
}

// MaterializeScheduledGiveaway は予約定義から実際のギブアウェイを開始する
func MaterializeScheduledGiveaway(cache *SettingsCache, session DiscordSession, scheduled models.ScheduledGiveaway, now time.Time, interval time.Duration) (*models.Giveaway, error) {
	var endsAt time.Time
	switch {
	case scheduled.EndAt != nil:
		endsAt = *scheduled.EndAt
	case scheduled.DurationMinutes > 0:
		endsAt = now.Add(time.Duration(scheduled.DurationMinutes) * time.Minute)
	default:
		endsAt = now.Add(interval)
	}

	// 予約の消化が遅れて明示的な締切が過ぎている場合は次の境界で締め切る
	if !endsAt.After(now) {
		endsAt = now.Add(interval)
	}

	return StartGiveaway(cache, session,
		scheduled.GuildID, scheduled.ChannelID,
		scheduled.Prize, scheduled.WinnerCount,
		endsAt, now, interval)
}

// sendConfirmationPrompt は繰り返し予約の開催確認を管理チャンネルへ送る
func sendConfirmationPrompt(session DiscordSession, scheduled models.ScheduledGiveaway) error {
	content := fmt.Sprintf("⏰ 定期ギブアウェイ「%s」の開催時刻です。開催しますか？", scheduled.Prize)
	if scheduled.ConfirmRoleID != "" {
		content = scheduled.ConfirmRoleID + " " + content
	}

	_, err := session.ChannelMessageSendComplex(scheduled.ConfirmChannelID, &discordgo.MessageSend{
		Content: content,
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "開催する",
						Style:    discordgo.SuccessButton,
						CustomID: ConfirmButtonPrefix + scheduled.ID,
					},
					discordgo.Button{
						Label:    "スキップ",
						Style:    discordgo.SecondaryButton,
						CustomID: SkipButtonPrefix + scheduled.ID,
					},
				},
			},
		},
	})
	return err
}
