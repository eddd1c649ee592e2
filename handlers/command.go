package handlers

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"discord-giveaway-notify/models"
	"discord-giveaway-notify/services"
)

// handleCommand は接頭辞付きメッセージを管理コマンドとして処理する
func handleCommand(deps *Deps, s *discordgo.Session, m *discordgo.MessageCreate) {
	// DMではギルド設定に紐づくコマンドを使えない
	if m.GuildID == "" {
		return
	}

	parts := parseCommand(strings.TrimPrefix(m.Content, deps.Prefix))
	if len(parts) == 0 {
		return
	}

	log.Printf("command received: guild=%s, channel=%s, user=%s, command=%s",
		m.GuildID, m.ChannelID, m.Author.ID, parts[0])

	switch parts[0] {
	case "giveaway":
		handleGiveawayCommand(deps, s, m, parts[1:])
	case "trigger":
		handleTriggerCommand(deps, s, m, parts[1:])
	case "announce":
		handleAnnounceCommand(deps, s, m, parts[1:])
	case "calendar":
		handleCalendarCommand(deps, s, m, parts[1:])
	case "config":
		handleConfigCommand(deps, s, m, parts[1:])
	case "export":
		handleExportCommand(deps, s, m)
	case "help":
		reply(s, m.ChannelID, helpText(deps.Prefix))
	}
}

// reply はコマンドへの応答を送る（失敗は記録のみ）
func reply(session services.DiscordSession, channelID, text string) {
	if _, err := session.ChannelMessageSend(channelID, text); err != nil {
		log.Printf("command reply error (channel: %s): %v", channelID, err)
	}
}

// parseCommand はコマンド文字列をクォート対応で分割する
func parseCommand(text string) []string {
	var parts []string
	var current strings.Builder
	inQuote := false

	for _, r := range strings.TrimSpace(text) {
		switch {
		case r == '"':
			inQuote = !inQuote
		case r == ' ' && !inQuote:
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

// canManageGiveaways はギルド設定で許可されたロールを持つか、
// チャンネルの管理者権限を持つユーザーだけを通す
func canManageGiveaways(deps *Deps, s *discordgo.Session, m *discordgo.MessageCreate) bool {
	if config, ok := deps.Cache.GuildConfig(m.GuildID); ok && m.Member != nil {
		for _, allowed := range config.GiveawayRoles() {
			for _, role := range m.Member.Roles {
				if role == allowed {
					return true
				}
			}
		}
	}

	permissions, err := s.UserChannelPermissions(m.Author.ID, m.ChannelID)
	if err != nil {
		log.Printf("permission fetch error (user: %s): %v", m.Author.ID, err)
		return false
	}
	return permissions&discordgo.PermissionAdministrator != 0
}

func handleGiveawayCommand(deps *Deps, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) == 0 {
		reply(s, m.ChannelID, helpText(deps.Prefix))
		return
	}

	if !canManageGiveaways(deps, s, m) {
		reply(s, m.ChannelID, "このコマンドを使う権限がありません。")
		return
	}

	switch args[0] {
	case "start":
		// giveaway start <分> <当選者数> <賞品...>
		if len(args) < 4 {
			reply(s, m.ChannelID, "使い方: "+deps.Prefix+"giveaway start <分> <当選者数> <賞品>")
			return
		}
		minutes, err := strconv.Atoi(args[1])
		if err != nil || minutes < 1 {
			reply(s, m.ChannelID, "開催時間は分単位の正の整数で指定してください。")
			return
		}
		winners, err := strconv.Atoi(args[2])
		if err != nil || winners < 1 {
			reply(s, m.ChannelID, "当選者数は正の整数で指定してください。")
			return
		}
		prize := strings.Join(args[3:], " ")

		now := time.Now()
		_, err = services.StartGiveaway(deps.Cache, s, m.GuildID, m.ChannelID,
			prize, winners, now.Add(time.Duration(minutes)*time.Minute), now, deps.Interval)
		if err != nil {
			reply(s, m.ChannelID, "ギブアウェイを開始できませんでした: "+err.Error())
		}

	case "end":
		// giveaway end <メッセージID>
		if len(args) < 2 {
			reply(s, m.ChannelID, "使い方: "+deps.Prefix+"giveaway end <メッセージID>")
			return
		}
		if err := services.ConcludeGiveaway(deps.DB, deps.Cache, s, args[1]); err != nil {
			reply(s, m.ChannelID, "終了処理に失敗しました: "+err.Error())
		}

	case "reroll":
		// giveaway reroll <メッセージID>
		if len(args) < 2 {
			reply(s, m.ChannelID, "使い方: "+deps.Prefix+"giveaway reroll <メッセージID>")
			return
		}
		_, err := services.RerollGiveaway(deps.DB, deps.Cache, s, args[1], s.State.User.ID)
		if err != nil {
			reply(s, m.ChannelID, "再抽選できませんでした: "+err.Error())
		}

	case "fix":
		// giveaway fix <メッセージID>
		if len(args) < 2 {
			reply(s, m.ChannelID, "使い方: "+deps.Prefix+"giveaway fix <メッセージID>")
			return
		}
		if _, err := services.FixGiveaway(deps.DB, deps.Cache, s, args[1]); err != nil {
			reply(s, m.ChannelID, "作り直しに失敗しました: "+err.Error())
		}

	case "edit":
		handleGiveawayEdit(deps, s, m, args[1:])

	case "list":
		reply(s, m.ChannelID, formatGiveawayList(deps.Cache.Giveaways(m.GuildID)))

	case "schedule":
		handleScheduleCommand(deps, s, m, args[1:])

	default:
		reply(s, m.ChannelID, helpText(deps.Prefix))
	}
}

func handleGiveawayEdit(deps *Deps, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	// giveaway edit <メッセージID> prize|winners|end <値>
	if len(args) < 3 {
		reply(s, m.ChannelID, "使い方: "+deps.Prefix+"giveaway edit <メッセージID> prize|winners|end <値>")
		return
	}

	var edit services.GiveawayEdit
	switch args[1] {
	case "prize":
		prize := strings.Join(args[2:], " ")
		edit.Prize = &prize
	case "winners":
		winners, err := strconv.Atoi(args[2])
		if err != nil {
			reply(s, m.ChannelID, "当選者数は整数で指定してください。")
			return
		}
		edit.WinnerCount = &winners
	case "end":
		minutes, err := strconv.Atoi(args[2])
		if err != nil || minutes < 1 {
			reply(s, m.ChannelID, "締切は今から何分後かを正の整数で指定してください。")
			return
		}
		endsAt := time.Now().Add(time.Duration(minutes) * time.Minute)
		edit.EndsAt = &endsAt
	default:
		reply(s, m.ChannelID, "編集できるのは prize / winners / end のいずれかです。")
		return
	}

	if err := services.EditGiveaway(deps.DB, deps.Cache, s, args[0], edit, time.Now(), deps.Interval); err != nil {
		reply(s, m.ChannelID, "編集できませんでした: "+err.Error())
	} else {
		reply(s, m.ChannelID, "✅ ギブアウェイを更新しました。")
	}
}

// formatGiveawayList はギルドのギブアウェイ一覧を表示用に整形する。
// errored のものも載せて管理者が気づけるようにする
func formatGiveawayList(giveaways []models.Giveaway) string {
	var running, errored []string
	for _, g := range giveaways {
		line := fmt.Sprintf("`%s` %s（当選%d名 / 締切 %s / 参加%d名）",
			g.MessageID, g.Prize, g.WinnerCount,
			g.EndsAt.Format("2006-01-02 15:04"), len(g.Participants()))

		switch g.Status {
		case models.GiveawayStatusRunning:
			running = append(running, line)
		case models.GiveawayStatusErrored:
			errored = append(errored, line)
		}
	}

	if len(running) == 0 && len(errored) == 0 {
		return "開催中のギブアウェイはありません。"
	}

	var b strings.Builder
	if len(running) > 0 {
		b.WriteString("**開催中のギブアウェイ**\n" + strings.Join(running, "\n"))
	}
	if len(errored) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("**⚠️ 処理に失敗したギブアウェイ**\n" + strings.Join(errored, "\n"))
	}
	return b.String()
}

func handleScheduleCommand(deps *Deps, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) == 0 {
		reply(s, m.ChannelID, helpText(deps.Prefix))
		return
	}

	switch args[0] {
	case "once":
		// giveaway schedule once <チャンネル> <開始 2006-01-02T15:04> <期間分> <当選者数> <賞品...>
		if len(args) < 6 {
			reply(s, m.ChannelID, "使い方: "+deps.Prefix+"giveaway schedule once <チャンネル> <開始時刻> <期間分> <当選者数> <賞品>")
			return
		}
		channelID := parseChannelID(args[1])
		startAt, err := time.ParseInLocation("2006-01-02T15:04", args[2], time.Local)
		if err != nil {
			reply(s, m.ChannelID, "開始時刻は 2006-01-02T15:04 形式で指定してください。")
			return
		}
		if !startAt.After(time.Now()) {
			reply(s, m.ChannelID, "開始時刻は未来の時刻を指定してください。")
			return
		}
		duration, err := strconv.Atoi(args[3])
		if err != nil || duration < 1 {
			reply(s, m.ChannelID, "期間は分単位の正の整数で指定してください。")
			return
		}
		winners, err := strconv.Atoi(args[4])
		if err != nil || winners < 1 {
			reply(s, m.ChannelID, "当選者数は正の整数で指定してください。")
			return
		}

		scheduled := models.ScheduledGiveaway{
			ID:              uuid.NewString(),
			GuildID:         m.GuildID,
			ChannelID:       channelID,
			Prize:           strings.Join(args[5:], " "),
			WinnerCount:     winners,
			StartAt:         &startAt,
			DurationMinutes: duration,
		}
		err = deps.Cache.Write(func(db *gorm.DB) *gorm.DB {
			return db.Create(&scheduled)
		})
		if err != nil {
			reply(s, m.ChannelID, "予約を作成できませんでした: "+err.Error())
			return
		}
		reply(s, m.ChannelID, fmt.Sprintf("✅ ギブアウェイを予約しました（ID: %s, 開始: %s）",
			scheduled.ID, startAt.Format("2006-01-02 15:04")))

	case "repeat":
		// giveaway schedule repeat <チャンネル> "<cron式>" <期間分> <当選者数> <賞品...>
		// 確認プロンプトはコマンドを打ったチャンネルに届く
		if len(args) < 6 {
			reply(s, m.ChannelID, "使い方: "+deps.Prefix+"giveaway schedule repeat <チャンネル> \"<cron式>\" <期間分> <当選者数> <賞品>")
			return
		}
		channelID := parseChannelID(args[1])
		rule := args[2]
		if _, err := services.ParseRecurrenceRule(rule); err != nil {
			reply(s, m.ChannelID, "cron式が不正です: "+err.Error())
			return
		}
		duration, err := strconv.Atoi(args[3])
		if err != nil || duration < 1 {
			reply(s, m.ChannelID, "期間は分単位の正の整数で指定してください。")
			return
		}
		winners, err := strconv.Atoi(args[4])
		if err != nil || winners < 1 {
			reply(s, m.ChannelID, "当選者数は正の整数で指定してください。")
			return
		}

		confirmRole := ""
		if len(m.MentionRoles) > 0 {
			confirmRole = "<@&" + m.MentionRoles[0] + ">"
		}

		scheduled := models.ScheduledGiveaway{
			ID:               uuid.NewString(),
			GuildID:          m.GuildID,
			ChannelID:        channelID,
			Prize:            strings.Join(args[5:], " "),
			WinnerCount:      winners,
			RecurrenceRule:   rule,
			DurationMinutes:  duration,
			ConfirmChannelID: m.ChannelID,
			ConfirmRoleID:    confirmRole,
		}
		err = deps.Cache.Write(func(db *gorm.DB) *gorm.DB {
			return db.Create(&scheduled)
		})
		if err != nil {
			reply(s, m.ChannelID, "予約を作成できませんでした: "+err.Error())
			return
		}
		reply(s, m.ChannelID, fmt.Sprintf("✅ 定期ギブアウェイを予約しました（ID: %s, ルール: `%s`）",
			scheduled.ID, rule))

	case "list":
		scheduled := deps.Cache.ScheduledGiveaways(m.GuildID)
		if len(scheduled) == 0 {
			reply(s, m.ChannelID, "予約済みのギブアウェイはありません。")
			return
		}
		var lines []string
		for _, sg := range scheduled {
			when := sg.RecurrenceRule
			if sg.StartAt != nil {
				when = sg.StartAt.Format("2006-01-02 15:04")
			}
			lines = append(lines, fmt.Sprintf("`%s` %s（%s / 当選%d名）",
				sg.ID, sg.Prize, when, sg.WinnerCount))
		}
		reply(s, m.ChannelID, "**予約済みギブアウェイ**\n"+strings.Join(lines, "\n"))

	case "remove":
		if len(args) < 2 {
			reply(s, m.ChannelID, "使い方: "+deps.Prefix+"giveaway schedule remove <ID>")
			return
		}
		guildID := m.GuildID
		err := deps.Cache.Write(func(db *gorm.DB) *gorm.DB {
			return db.Unscoped().Where("id = ? AND guild_id = ?", args[1], guildID).
				Delete(&models.ScheduledGiveaway{})
		})
		if err != nil {
			reply(s, m.ChannelID, "予約を削除できませんでした: "+err.Error())
			return
		}
		reply(s, m.ChannelID, "✅ 予約を削除しました。")

	default:
		reply(s, m.ChannelID, helpText(deps.Prefix))
	}
}

func handleTriggerCommand(deps *Deps, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) == 0 {
		reply(s, m.ChannelID, helpText(deps.Prefix))
		return
	}

	switch args[0] {
	case "add":
		// trigger add <トリガー文字列> <絵文字...>
		if len(args) < 3 {
			reply(s, m.ChannelID, "使い方: "+deps.Prefix+"trigger add <トリガー文字列> <絵文字...>")
			return
		}
		trigger := models.ReactionTrigger{
			ID:          uuid.NewString(),
			GuildID:     m.GuildID,
			ChannelID:   m.ChannelID,
			TriggerText: args[1],
			EmojiList:   models.JoinList(args[2:]),
		}
		err := deps.Cache.Write(func(db *gorm.DB) *gorm.DB {
			return db.Create(&trigger)
		})
		if err != nil {
			reply(s, m.ChannelID, "トリガーを作成できませんでした（同じトリガーが既にあるかもしれません）。")
			return
		}
		reply(s, m.ChannelID, fmt.Sprintf("✅ トリガー「%s」を設定しました。", trigger.TriggerText))

	case "remove":
		if len(args) < 2 {
			reply(s, m.ChannelID, "使い方: "+deps.Prefix+"trigger remove <トリガー文字列>")
			return
		}
		// 同じトリガーを後から設定し直せるよう、行ごと削除する
		guildID, channelID := m.GuildID, m.ChannelID
		err := deps.Cache.Write(func(db *gorm.DB) *gorm.DB {
			return db.Unscoped().Where("guild_id = ? AND channel_id = ? AND trigger_text = ?",
				guildID, channelID, args[1]).Delete(&models.ReactionTrigger{})
		})
		if err != nil {
			reply(s, m.ChannelID, "トリガーを削除できませんでした: "+err.Error())
			return
		}
		reply(s, m.ChannelID, "✅ トリガーを削除しました。")

	case "list":
		triggers := deps.Cache.ReactionTriggers(m.GuildID)
		if len(triggers) == 0 {
			reply(s, m.ChannelID, "設定済みのトリガーはありません。")
			return
		}
		var lines []string
		for _, t := range triggers {
			lines = append(lines, fmt.Sprintf("<#%s> 「%s」 → %s", t.ChannelID, t.TriggerText, t.EmojiList))
		}
		reply(s, m.ChannelID, "**リアクショントリガー**\n"+strings.Join(lines, "\n"))

	default:
		reply(s, m.ChannelID, helpText(deps.Prefix))
	}
}

func handleAnnounceCommand(deps *Deps, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) == 0 {
		reply(s, m.ChannelID, helpText(deps.Prefix))
		return
	}

	switch args[0] {
	case "set":
		// announce set <本文...>
		// 同じチャンネルに設定済みの場合は本文を上書きする
		if len(args) < 2 {
			reply(s, m.ChannelID, "使い方: "+deps.Prefix+"announce set <本文>")
			return
		}
		body := strings.Join(args[1:], " ")
		guildID, channelID := m.GuildID, m.ChannelID

		var existing models.Announcement
		result := deps.DB.Where("guild_id = ? AND channel_id = ?", guildID, channelID).First(&existing)

		var err error
		if result.Error == nil {
			err = deps.Cache.Write(func(db *gorm.DB) *gorm.DB {
				return db.Model(&models.Announcement{}).Where("id = ?", existing.ID).
					Update("body", body)
			})
		} else {
			announcement := models.Announcement{
				ID:        uuid.NewString(),
				GuildID:   guildID,
				ChannelID: channelID,
				Body:      body,
			}
			err = deps.Cache.Write(func(db *gorm.DB) *gorm.DB {
				return db.Create(&announcement)
			})
		}
		if err != nil {
			reply(s, m.ChannelID, "アナウンスを設定できませんでした: "+err.Error())
			return
		}
		reply(s, m.ChannelID, "✅ 常設アナウンスを設定しました。")

	case "remove":
		guildID, channelID := m.GuildID, m.ChannelID
		err := deps.Cache.Write(func(db *gorm.DB) *gorm.DB {
			return db.Unscoped().Where("guild_id = ? AND channel_id = ?", guildID, channelID).
				Delete(&models.Announcement{})
		})
		if err != nil {
			reply(s, m.ChannelID, "アナウンスを削除できませんでした: "+err.Error())
			return
		}
		reply(s, m.ChannelID, "✅ 常設アナウンスを削除しました。")

	default:
		reply(s, m.ChannelID, helpText(deps.Prefix))
	}
}

func handleCalendarCommand(deps *Deps, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) == 0 {
		reply(s, m.ChannelID, helpText(deps.Prefix))
		return
	}

	switch args[0] {
	case "add":
		// calendar add <カレンダーID> <キーワード> [メンション]
		// カレンダーIDに default を指定するとギルド設定の既定カレンダーを使う
		if len(args) < 3 {
			reply(s, m.ChannelID, "使い方: "+deps.Prefix+"calendar add <カレンダーID> <キーワード> [メンション]")
			return
		}
		calendarID := args[1]
		if calendarID == "default" {
			config, ok := deps.Cache.GuildConfig(m.GuildID)
			if !ok || config.DefaultCalendarID == "" {
				reply(s, m.ChannelID, "既定のカレンダーが設定されていません。先に "+deps.Prefix+"config calendar で設定してください。")
				return
			}
			calendarID = config.DefaultCalendarID
		}

		mention := ""
		if len(args) > 3 {
			mention = args[3]
		}

		monitor := models.CalendarMonitor{
			ID:          uuid.NewString(),
			GuildID:     m.GuildID,
			ChannelID:   m.ChannelID,
			CalendarID:  calendarID,
			TriggerWord: args[2],
			MentionID:   mention,
		}
		err := deps.Cache.Write(func(db *gorm.DB) *gorm.DB {
			return db.Create(&monitor)
		})
		if err != nil {
			reply(s, m.ChannelID, "カレンダー監視を作成できませんでした（同じキーワードが既にあるかもしれません）。")
			return
		}
		reply(s, m.ChannelID, fmt.Sprintf("✅ カレンダー監視を設定しました（キーワード: [%s]）", monitor.TriggerWord))

	case "remove":
		if len(args) < 2 {
			reply(s, m.ChannelID, "使い方: "+deps.Prefix+"calendar remove <キーワード>")
			return
		}
		guildID, channelID := m.GuildID, m.ChannelID
		err := deps.Cache.Write(func(db *gorm.DB) *gorm.DB {
			return db.Unscoped().Where("guild_id = ? AND channel_id = ? AND trigger_word = ?",
				guildID, channelID, args[1]).Delete(&models.CalendarMonitor{})
		})
		if err != nil {
			reply(s, m.ChannelID, "カレンダー監視を削除できませんでした: "+err.Error())
			return
		}
		reply(s, m.ChannelID, "✅ カレンダー監視を削除しました。")

	case "list":
		monitors := deps.Cache.CalendarMonitors(m.GuildID)
		if len(monitors) == 0 {
			reply(s, m.ChannelID, "設定済みのカレンダー監視はありません。")
			return
		}
		var lines []string
		for _, mon := range monitors {
			lines = append(lines, fmt.Sprintf("<#%s> [%s] ← %s", mon.ChannelID, mon.TriggerWord, mon.CalendarID))
		}
		reply(s, m.ChannelID, "**カレンダー監視**\n"+strings.Join(lines, "\n"))

	default:
		reply(s, m.ChannelID, helpText(deps.Prefix))
	}
}

func handleConfigCommand(deps *Deps, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) < 2 {
		reply(s, m.ChannelID, "使い方: "+deps.Prefix+"config calendar <カレンダーID> / "+deps.Prefix+"config roles <ロールメンション...>")
		return
	}

	guildID := m.GuildID
	var config models.GuildConfig
	result := deps.DB.Where("guild_id = ?", guildID).First(&config)
	exists := result.Error == nil
	config.GuildID = guildID

	switch args[0] {
	case "calendar":
		config.DefaultCalendarID = args[1]
	case "roles":
		config.GiveawayRoleList = models.JoinList(m.MentionRoles)
	default:
		reply(s, m.ChannelID, "設定できるのは calendar / roles のいずれかです。")
		return
	}

	var err error
	if exists {
		err = deps.Cache.Write(func(db *gorm.DB) *gorm.DB {
			return db.Model(&models.GuildConfig{}).Where("guild_id = ?", guildID).
				Updates(map[string]interface{}{
					"default_calendar_id": config.DefaultCalendarID,
					"giveaway_role_list":  config.GiveawayRoleList,
				})
		})
	} else {
		err = deps.Cache.Write(func(db *gorm.DB) *gorm.DB {
			return db.Create(&config)
		})
	}
	if err != nil {
		reply(s, m.ChannelID, "ギルド設定を保存できませんでした: "+err.Error())
		return
	}
	reply(s, m.ChannelID, "✅ ギルド設定を更新しました。")
}

func handleExportCommand(deps *Deps, s *discordgo.Session, m *discordgo.MessageCreate) {
	if deps.Exporter == nil {
		reply(s, m.ChannelID, "エクスポート先のスプレッドシートが設定されていません。")
		return
	}

	if err := services.ExportGuildConfiguration(deps.DB, deps.Exporter, m.GuildID); err != nil {
		log.Printf("guild export error (guild: %s): %v", m.GuildID, err)
		reply(s, m.ChannelID, "エクスポートに失敗しました。")
		return
	}
	reply(s, m.ChannelID, "✅ 設定をスプレッドシートへエクスポートしました。")
}

// parseChannelID は <#123> 形式のメンションと素のIDのどちらも受け付ける
func parseChannelID(arg string) string {
	arg = strings.TrimPrefix(arg, "<#")
	return strings.TrimSuffix(arg, ">")
}

func helpText(prefix string) string {
	return strings.Join([]string{
		"**コマンド一覧**",
		"`" + prefix + "giveaway start <分> <当選者数> <賞品>` ギブアウェイを開始",
		"`" + prefix + "giveaway end|reroll|fix <メッセージID>` 終了 / 再抽選 / 作り直し",
		"`" + prefix + "giveaway edit <メッセージID> prize|winners|end <値>` 開催中の内容を変更",
		"`" + prefix + "giveaway list` ギブアウェイの一覧",
		"`" + prefix + "giveaway schedule once|repeat|list|remove ...` 予約の管理",
		"`" + prefix + "trigger add|remove|list ...` リアクショントリガーの管理",
		"`" + prefix + "announce set|remove ...` 常設アナウンスの管理",
		"`" + prefix + "calendar add|remove|list ...` カレンダー監視の管理",
		"`" + prefix + "config calendar|roles ...` ギルド設定",
		"`" + prefix + "export` 設定をスプレッドシートへ保存",
	}, "\n")
}
