package services

import (
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"discord-giveaway-notify/models"
)

// CalendarEvent は外部カレンダーから取得したイベント
type CalendarEvent struct {
	ID          string
	Title       string
	Description string
	StartAt     time.Time
}

// CalendarAPI は外部カレンダーの読み取り境界
type CalendarAPI interface {
	ListEvents(calendarID string, timeMin, timeMax time.Time) ([]CalendarEvent, error)
}

// 通知済みイベント台帳の保持期間。外部カレンダーがこの期間内に
// イベントIDを再利用しないことを前提にしている
const NotifiedEventRetention = 6 * time.Hour

// PruneNotifiedEvents は保持期間を過ぎた通知済みイベントの台帳を削除する
func PruneNotifiedEvents(cache *SettingsCache, now time.Time) {
	cutoff := now.Add(-NotifiedEventRetention)
	err := cache.Write(func(db *gorm.DB) *gorm.DB {
		return db.Where("notified_at < ?", cutoff).Delete(&models.NotifiedEvent{})
	})
	if err != nil {
		log.Printf("notified event prune error: %v", err)
	}
}

// CheckCalendars は全ギルドのカレンダー監視を1回分実行する。
// 1つの監視の失敗は記録するだけで、残りの監視の処理は続行する
func CheckCalendars(db *gorm.DB, cache *SettingsCache, session DiscordSession, api CalendarAPI, lookahead time.Duration, now time.Time) {
	// APIキー未設定で起動した場合はカレンダー連携を行わない
	if api == nil {
		return
	}
	for _, monitor := range cache.AllCalendarMonitors() {
		if err := checkCalendarMonitor(db, cache, session, api, monitor, lookahead, now); err != nil {
			log.Printf("calendar check error (monitor: %s, calendar: %s): %v",
				monitor.ID, monitor.CalendarID, err)
		}
	}
}

func checkCalendarMonitor(db *gorm.DB, cache *SettingsCache, session DiscordSession, api CalendarAPI, monitor models.CalendarMonitor, lookahead time.Duration, now time.Time) error {
	// 次の掃引までに始まるイベントだけを見れば、周期実行と合わせて
	// すべてのイベントがいずれかの掃引で必ず視界に入る
	events, err := api.ListEvents(monitor.CalendarID, now, now.Add(lookahead))
	if err != nil {
		return fmt.Errorf("event list error: %w", err)
	}

	for _, event := range events {
		// 通知済みならスキップ（ポーリングで同じイベントを複数回見るため）
		var count int64
		if err := db.Model(&models.NotifiedEvent{}).Where("event_id = ?", event.ID).Count(&count).Error; err != nil {
			log.Printf("notified event lookup error (event: %s): %v", event.ID, err)
			continue
		}
		if count > 0 {
			continue
		}

		if !MatchesTrigger(event, monitor.TriggerWord) {
			continue
		}

		// 送信に失敗して後の掃引でやり直しても二重通知にならないよう、
		// 台帳への記録を送信より先に行う
		err := cache.Write(func(db *gorm.DB) *gorm.DB {
			return db.Create(&models.NotifiedEvent{EventID: event.ID, NotifiedAt: now})
		})
		if err != nil {
			log.Printf("notified event record error (event: %s): %v", event.ID, err)
			continue
		}

		message := ComposeEventMessage(event, monitor.MentionID)
		if _, err := session.ChannelMessageSend(monitor.ChannelID, message); err != nil {
			log.Printf("event notify send error (event: %s, channel: %s): %v",
				event.ID, monitor.ChannelID, err)
			continue
		}

		log.Printf("✅ event notified (event: %s, channel: %s)", event.ID, monitor.ChannelID)
	}

	return nil
}

// MatchesTrigger はイベントのタイトルと説明文に [キーワード] 形式の
// トリガーが含まれるかを判定する（大文字小文字は区別しない）
func MatchesTrigger(event CalendarEvent, triggerWord string) bool {
	if triggerWord == "" {
		return false
	}

	text := strings.ToLower(event.Title + "\n" + event.Description)
	return strings.Contains(text, "["+strings.ToLower(triggerWord)+"]")
}

var mentionPattern = regexp.MustCompile(`<@[!&]?[0-9]+>`)

// ComposeEventMessage は通知メッセージを組み立てる。
// 説明文中のメンションは本文から取り除き、末尾のメンション行にまとめる。
// 監視設定のメンション先と重複する場合は1つにまとめる
func ComposeEventMessage(event CalendarEvent, mentionID string) string {
	description := event.Description
	mentions := mentionPattern.FindAllString(description, -1)
	description = strings.TrimSpace(mentionPattern.ReplaceAllString(description, ""))

	if mentionID != "" {
		mentions = append(mentions, mentionID)
	}

	seen := make(map[string]bool)
	unique := make([]string, 0, len(mentions))
	for _, m := range mentions {
		if !seen[m] {
			seen[m] = true
			unique = append(unique, m)
		}
	}

	var b strings.Builder
	b.WriteString("📅 **" + event.Title + "**\n")
	b.WriteString(event.StartAt.Format("2006-01-02 15:04") + " 開始")
	if description != "" {
		b.WriteString("\n\n" + description)
	}
	if len(unique) > 0 {
		b.WriteString("\n\n" + strings.Join(unique, " "))
	}
	return b.String()
}
