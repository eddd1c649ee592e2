package services

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"gorm.io/gorm"

	"discord-giveaway-notify/models"
)

// GiveawayEmoji はギブアウェイメッセージに付ける絵文字。
// 参加ボタンとは別に、再抽選ではこのリアクションの付与者を参加者として数える
const GiveawayEmoji = "🎉"

// GiveawayJoinButtonID は参加ボタンのカスタムID
const GiveawayJoinButtonID = "giveaway_join"

// NormalizeEndTime は締切を次の境界時刻に切り上げる。
// 切り上げた結果が現在より前になる場合は、現在の次の境界に付け直す
func NormalizeEndTime(requested, now time.Time, interval time.Duration) time.Time {
	normalized := requested.Truncate(interval)
	if normalized.Before(requested) {
		normalized = normalized.Add(interval)
	}

	if !normalized.After(now) {
		normalized = now.Truncate(interval).Add(interval)
	}
	return normalized
}

// StartGiveaway はギブアウェイを即時開催する。
// メッセージを投稿してから running 状態の行を作成する
func StartGiveaway(cache *SettingsCache, session DiscordSession, guildID, channelID, prize string, winnerCount int, endsAt, now time.Time, interval time.Duration) (*models.Giveaway, error) {
	if prize == "" {
		return nil, fmt.Errorf("prize is required")
	}
	if winnerCount < 1 {
		return nil, fmt.Errorf("winner count must be at least 1")
	}
	if !endsAt.After(now) {
		return nil, fmt.Errorf("end time must be in the future")
	}

	giveaway := &models.Giveaway{
		GuildID:     guildID,
		ChannelID:   channelID,
		Prize:       prize,
		WinnerCount: winnerCount,
		EndsAt:      NormalizeEndTime(endsAt, now, interval),
		Status:      models.GiveawayStatusRunning,
	}

	message, err := session.ChannelMessageSendComplex(channelID, giveawayMessageSend(giveaway))
	if err != nil {
		return nil, fmt.Errorf("giveaway message send error: %w", err)
	}
	giveaway.MessageID = message.ID

	err = cache.Write(func(db *gorm.DB) *gorm.DB {
		return db.Create(giveaway)
	})
	if err != nil {
		return nil, fmt.Errorf("giveaway create error: %w", err)
	}

	if err := session.MessageReactionAdd(channelID, message.ID, GiveawayEmoji); err != nil {
		log.Printf("giveaway reaction add error (message: %s): %v", message.ID, err)
	}

	log.Printf("✅ giveaway started (message: %s, prize: %s, ends: %s)",
		message.ID, prize, giveaway.EndsAt.Format(time.RFC3339))
	return giveaway, nil
}

// RenderGiveawayMessage は開催中ギブアウェイの表示本文を組み立てる
func RenderGiveawayMessage(g *models.Giveaway) string {
	return fmt.Sprintf(
		"%s **ギブアウェイ開催中！** %s\n\n**賞品**: %s\n**当選者数**: %d名\n**締切**: %s\n**参加者**: %d名",
		GiveawayEmoji, GiveawayEmoji,
		g.Prize, g.WinnerCount,
		g.EndsAt.Format("2006-01-02 15:04"),
		len(g.Participants()),
	)
}

// giveawayMessageSend は参加ボタン付きのメッセージ本体を組み立てる
func giveawayMessageSend(g *models.Giveaway) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Content: RenderGiveawayMessage(g),
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "参加する / 取り消す",
						Style:    discordgo.PrimaryButton,
						CustomID: GiveawayJoinButtonID,
					},
				},
			},
		},
	}
}

// ToggleParticipant は参加者セットへの出入りをトグルする。
// ボタンは押すたびに参加と取り消しが切り替わるので、同じユーザーが
// 2回押すと元の状態に戻る。戻り値は操作後に参加しているかどうか
func ToggleParticipant(db *gorm.DB, cache *SettingsCache, session DiscordSession, messageID, userID string) (bool, error) {
	var giveaway models.Giveaway
	if err := db.Where("message_id = ?", messageID).First(&giveaway).Error; err != nil {
		return false, fmt.Errorf("giveaway not found (message: %s): %w", messageID, err)
	}
	if giveaway.Status != models.GiveawayStatusRunning {
		return false, fmt.Errorf("giveaway is not running (message: %s)", messageID)
	}

	ids := giveaway.Participants()
	joined := true
	for i, id := range ids {
		if id == userID {
			ids = append(ids[:i], ids[i+1:]...)
			joined = false
			break
		}
	}
	if joined {
		ids = append(ids, userID)
	}
	giveaway.SetParticipants(ids)

	err := cache.Write(func(db *gorm.DB) *gorm.DB {
		return db.Model(&models.Giveaway{}).Where("message_id = ?", messageID).
			Update("participant_list", giveaway.ParticipantList)
	})
	if err != nil {
		return false, fmt.Errorf("participant update error: %w", err)
	}

	// 表示中の参加者数を更新する（失敗しても参加状態には影響しない）
	if _, err := session.ChannelMessageEdit(giveaway.ChannelID, giveaway.MessageID, RenderGiveawayMessage(&giveaway)); err != nil {
		log.Printf("giveaway message update error (message: %s): %v", messageID, err)
	}

	return joined, nil
}

// SetParticipation は参加状態を明示的に合わせる。リアクションの付与は参加、
// 削除は取り消しに対応する。ギブアウェイ以外のメッセージへのリアクションも
// 全件ここを通るので、対象外のメッセージは黙って無視する
func SetParticipation(db *gorm.DB, cache *SettingsCache, session DiscordSession, messageID, userID string, join bool) error {
	var giveaway models.Giveaway
	if err := db.Where("message_id = ?", messageID).First(&giveaway).Error; err != nil {
		return nil
	}
	if giveaway.Status != models.GiveawayStatusRunning {
		return nil
	}

	ids := giveaway.Participants()
	changed := false
	if join {
		member := false
		for _, id := range ids {
			if id == userID {
				member = true
				break
			}
		}
		if !member {
			ids = append(ids, userID)
			changed = true
		}
	} else {
		for i, id := range ids {
			if id == userID {
				ids = append(ids[:i], ids[i+1:]...)
				changed = true
				break
			}
		}
	}
	if !changed {
		return nil
	}
	giveaway.SetParticipants(ids)

	err := cache.Write(func(db *gorm.DB) *gorm.DB {
		return db.Model(&models.Giveaway{}).Where("message_id = ?", messageID).
			Update("participant_list", giveaway.ParticipantList)
	})
	if err != nil {
		return fmt.Errorf("participant update error: %w", err)
	}

	if _, err := session.ChannelMessageEdit(giveaway.ChannelID, giveaway.MessageID, RenderGiveawayMessage(&giveaway)); err != nil {
		log.Printf("giveaway message update error (message: %s): %v", messageID, err)
	}
	return nil
}

// CompleteDueGiveaways は締切を過ぎた開催中ギブアウェイをまとめて終了させる。
// 1件の失敗は記録するだけで残りの処理は続行する
func CompleteDueGiveaways(db *gorm.DB, cache *SettingsCache, session DiscordSession, now time.Time) {
	for _, giveaway := range cache.AllRunningGiveaways() {
		if giveaway.EndsAt.After(now) {
			continue
		}

		if err := ConcludeGiveaway(db, cache, session, giveaway.MessageID); err != nil {
			log.Printf("giveaway conclude error (message: %s): %v", giveaway.MessageID, err)
		}
	}
}

// ConcludeGiveaway は抽選を行ってギブアウェイを終了させる。
// チャンネルやメッセージが見つからない場合は errored にして再試行しない
func ConcludeGiveaway(db *gorm.DB, cache *SettingsCache, session DiscordSession, messageID string) error {
	// キャッシュは掃引開始時点の写しなので、現在の行を読み直す
	var giveaway models.Giveaway
	if err := db.Where("message_id = ?", messageID).First(&giveaway).Error; err != nil {
		return fmt.Errorf("giveaway not found (message: %s): %w", messageID, err)
	}
	if giveaway.Status != models.GiveawayStatusRunning {
		// 既に別経路で終了している
		return nil
	}

	if _, err := session.ChannelMessage(giveaway.ChannelID, giveaway.MessageID); err != nil {
		markGiveawayErrored(cache, &giveaway)
		return fmt.Errorf("giveaway message unreachable (message: %s): %w", messageID, err)
	}

	// 参加者が当選者数に満たない場合は全員当選、0人なら当選者なし
	winners := PickWinners(giveaway.Participants(), giveaway.WinnerCount)
	giveaway.SetWinners(winners)
	if err := giveaway.ChangeStatus(models.GiveawayStatusEnded); err != nil {
		return err
	}

	// 同じギブアウェイが二度終了しないよう、告知より先に状態を確定させる。
	// 強制終了コマンドと掃引が同じ行を同時に読んでいる可能性があるため、
	// running からの遷移は条件付きの1文で行い、勝者だけが告知に進む
	affected, err := cache.WriteAffected(func(db *gorm.DB) *gorm.DB {
		return db.Model(&models.Giveaway{}).
			Where("message_id = ? AND status = ?", messageID, models.GiveawayStatusRunning).
			Updates(map[string]interface{}{
				"status":      giveaway.Status,
				"winner_list": giveaway.WinnerList,
			})
	})
	if err != nil {
		return fmt.Errorf("giveaway end update error: %w", err)
	}
	if affected == 0 {
		log.Printf("giveaway already concluded by another path (message: %s)", messageID)
		return nil
	}

	if _, err := session.ChannelMessageEdit(giveaway.ChannelID, giveaway.MessageID, RenderEndedMessage(&giveaway)); err != nil {
		log.Printf("giveaway end message edit error (message: %s): %v", messageID, err)
	}

	announcement := winnerAnnouncement(&giveaway, winners)
	if _, err := session.ChannelMessageSend(giveaway.ChannelID, announcement); err != nil {
		log.Printf("winner announce error (message: %s): %v", messageID, err)
	}

	log.Printf("✅ giveaway ended (message: %s, winners: %d)", messageID, len(winners))
	return nil
}

func markGiveawayErrored(cache *SettingsCache, giveaway *models.Giveaway) {
	if err := giveaway.ChangeStatus(models.GiveawayStatusErrored); err != nil {
		log.Printf("giveaway status error: %v", err)
		return
	}

	// 別経路が先に終了させていた場合は上書きしない
	affected, err := cache.WriteAffected(func(db *gorm.DB) *gorm.DB {
		return db.Model(&models.Giveaway{}).
			Where("message_id = ? AND status = ?", giveaway.MessageID, models.GiveawayStatusRunning).
			Update("status", giveaway.Status)
	})
	if err != nil {
		log.Printf("giveaway errored update error (message: %s): %v", giveaway.MessageID, err)
		return
	}
	if affected == 0 {
		log.Printf("giveaway already left running state (message: %s)", giveaway.MessageID)
	}
}

// RenderEndedMessage は終了したギブアウェイの表示本文を組み立てる
func RenderEndedMessage(g *models.Giveaway) string {
	winners := g.Winners()
	result := "参加者がいなかったため当選者なし"
	if len(winners) > 0 {
		mentions := make([]string, len(winners))
		for i, id := range winners {
			mentions[i] = "<@" + id + ">"
		}
		result = "当選者: " + strings.Join(mentions, " ")
	}

	return fmt.Sprintf(
		"%s **ギブアウェイ終了** %s\n\n**賞品**: %s\n%s",
		GiveawayEmoji, GiveawayEmoji, g.Prize, result,
	)
}

func winnerAnnouncement(g *models.Giveaway, winners []string) string {
	if len(winners) == 0 {
		return fmt.Sprintf("「%s」のギブアウェイは参加者がいなかったため、当選者なしで終了しました。", g.Prize)
	}

	mentions := make([]string, len(winners))
	for i, id := range winners {
		mentions[i] = "<@" + id + ">"
	}
	return fmt.Sprintf("🎊 おめでとうございます %s！「%s」に当選しました！", strings.Join(mentions, " "), g.Prize)
}

// PickWinners は参加者から重複なしの一様乱択で当選者を選ぶ。
// 参加者が足りない場合は全員を当選にする
func PickWinners(participants []string, count int) []string {
	if len(participants) == 0 || count < 1 {
		return nil
	}
	if count > len(participants) {
		count = len(participants)
	}

	shuffled := make([]string, len(participants))
	copy(shuffled, participants)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:count]
}

// RerollGiveaway は終了済みギブアウェイの当選者を引き直す。
// 参加状況は保存済みリストではなくメッセージのリアクションから取り直す
// （終了後にリアクションが変化している可能性があるため）。
// 参加者が当選者数に満たない場合はエラーを返し、状態は一切変えない
func RerollGiveaway(db *gorm.DB, cache *SettingsCache, session DiscordSession, messageID, botUserID string) ([]string, error) {
	var giveaway models.Giveaway
	if err := db.Where("message_id = ?", messageID).First(&giveaway).Error; err != nil {
		return nil, fmt.Errorf("giveaway not found (message: %s): %w", messageID, err)
	}
	if giveaway.Status != models.GiveawayStatusEnded {
		return nil, fmt.Errorf("reroll is only allowed for ended giveaways (status: %s)", giveaway.Status)
	}

	participants, err := FetchReactionParticipants(session, giveaway.ChannelID, giveaway.MessageID, botUserID)
	if err != nil {
		return nil, fmt.Errorf("reaction fetch error: %w", err)
	}
	if len(participants) < giveaway.WinnerCount {
		return nil, fmt.Errorf("not enough participants for reroll: %d participants, %d winners required",
			len(participants), giveaway.WinnerCount)
	}

	winners := PickWinners(participants, giveaway.WinnerCount)
	giveaway.SetWinners(winners)

	err = cache.Write(func(db *gorm.DB) *gorm.DB {
		return db.Model(&models.Giveaway{}).Where("message_id = ?", messageID).
			Update("winner_list", giveaway.WinnerList)
	})
	if err != nil {
		return nil, fmt.Errorf("winner update error: %w", err)
	}

	announcement := "🔁 再抽選しました！\n" + winnerAnnouncement(&giveaway, winners)
	if _, err := session.ChannelMessageSend(giveaway.ChannelID, announcement); err != nil {
		log.Printf("reroll announce error (message: %s): %v", messageID, err)
	}

	return winners, nil
}

// FetchReactionParticipants はメッセージのリアクション付与者を全件取得する。
// 100件ずつページングし、ボットのアカウントは除外する
func FetchReactionParticipants(session DiscordSession, channelID, messageID, botUserID string) ([]string, error) {
	var ids []string
	after := ""

	for {
		users, err := session.MessageReactions(channelID, messageID, GiveawayEmoji, 100, "", after)
		if err != nil {
			return nil, err
		}

		for _, user := range users {
			if user.Bot || user.ID == botUserID {
				continue
			}
			ids = append(ids, user.ID)
		}

		if len(users) < 100 {
			break
		}
		after = users[len(users)-1].ID
	}

	return ids, nil
}

// FixGiveaway は表示が壊れたギブアウェイを新しいメッセージとして作り直す。
// 参加者は永続化済みのリストを引き継ぐ（リアクション側の状態はズレている
// 可能性があるので使わない）。旧行は cancelled にして履歴として残す
func FixGiveaway(db *gorm.DB, cache *SettingsCache, session DiscordSession, messageID string) (*models.Giveaway, error) {
	var giveaway models.Giveaway
	if err := db.Where("message_id = ?", messageID).First(&giveaway).Error; err != nil {
		return nil, fmt.Errorf("giveaway not found (message: %s): %w", messageID, err)
	}
	if giveaway.Status != models.GiveawayStatusRunning {
		return nil, fmt.Errorf("fix is only allowed for running giveaways (status: %s)", giveaway.Status)
	}

	replacement := &models.Giveaway{
		GuildID:         giveaway.GuildID,
		ChannelID:       giveaway.ChannelID,
		Prize:           giveaway.Prize,
		WinnerCount:     giveaway.WinnerCount,
		EndsAt:          giveaway.EndsAt,
		Status:          models.GiveawayStatusRunning,
		ParticipantList: giveaway.ParticipantList,
	}

	message, err := session.ChannelMessageSendComplex(giveaway.ChannelID, giveawayMessageSend(replacement))
	if err != nil {
		return nil, fmt.Errorf("replacement message send error: %w", err)
	}
	replacement.MessageID = message.ID

	err = cache.Write(func(db *gorm.DB) *gorm.DB {
		return db.Create(replacement)
	})
	if err != nil {
		return nil, fmt.Errorf("replacement create error: %w", err)
	}

	if err := giveaway.ChangeStatus(models.GiveawayStatusCancelled); err != nil {
		return nil, err
	}
	affected, err := cache.WriteAffected(func(db *gorm.DB) *gorm.DB {
		return db.Model(&models.Giveaway{}).
			Where("message_id = ? AND status = ?", messageID, models.GiveawayStatusRunning).
			Update("status", giveaway.Status)
	})
	if err != nil {
		return nil, fmt.Errorf("old giveaway cancel error: %w", err)
	}
	if affected == 0 {
		// 作り直しの最中に掃引が旧ギブアウェイを終了させた場合。
		// 新しい行はそのまま生かし、旧行の状態には触れない
		log.Printf("old giveaway changed state during fix (message: %s)", messageID)
	}

	superseded := "⚠️ このギブアウェイは作り直されました。新しいメッセージから参加してください。"
	if _, err := session.ChannelMessageEdit(giveaway.ChannelID, giveaway.MessageID, superseded); err != nil {
		log.Printf("superseded message edit error (message: %s): %v", messageID, err)
	}

	if err := session.MessageReactionAdd(replacement.ChannelID, replacement.MessageID, GiveawayEmoji); err != nil {
		log.Printf("giveaway reaction add error (message: %s): %v", replacement.MessageID, err)
	}

	log.Printf("✅ giveaway fixed (old: %s, new: %s)", messageID, replacement.MessageID)
	return replacement, nil
}

// GiveawayEdit は部分更新の対象。nil のフィールドは変更しない
type GiveawayEdit struct {
	Prize       *string
	WinnerCount *int
	EndsAt      *time.Time
}

// EditGiveaway は開催中ギブアウェイの賞品・当選者数・締切を部分更新する。
// 参加者と状態は変更しない
func EditGiveaway(db *gorm.DB, cache *SettingsCache, session DiscordSession, messageID string, edit GiveawayEdit, now time.Time, interval time.Duration) error {
	var giveaway models.Giveaway
	if err := db.Where("message_id = ?", messageID).First(&giveaway).Error; err != nil {
		return fmt.Errorf("giveaway not found (message: %s): %w", messageID, err)
	}
	if giveaway.Status != models.GiveawayStatusRunning {
		return fmt.Errorf("edit is only allowed for running giveaways (status: %s)", giveaway.Status)
	}

	if edit.Prize != nil {
		if *edit.Prize == "" {
			return fmt.Errorf("prize is required")
		}
		giveaway.Prize = *edit.Prize
	}
	if edit.WinnerCount != nil {
		if *edit.WinnerCount < 1 {
			return fmt.Errorf("winner count must be at least 1")
		}
		giveaway.WinnerCount = *edit.WinnerCount
	}
	if edit.EndsAt != nil {
		if !edit.EndsAt.After(now) {
			return fmt.Errorf("end time must be in the future")
		}
		giveaway.EndsAt = NormalizeEndTime(*edit.EndsAt, now, interval)
	}

	err := cache.Write(func(db *gorm.DB) *gorm.DB {
		return db.Model(&models.Giveaway{}).Where("message_id = ?", messageID).
			Updates(map[string]interface{}{
				"prize":        giveaway.Prize,
				"winner_count": giveaway.WinnerCount,
				"ends_at":      giveaway.EndsAt,
			})
	})
	if err != nil {
		return fmt.Errorf("giveaway edit error: %w", err)
	}

	if _, err := session.ChannelMessageEdit(giveaway.ChannelID, giveaway.MessageID, RenderGiveawayMessage(&giveaway)); err != nil {
		log.Printf("giveaway message update error (message: %s): %v", messageID, err)
	}
	return nil
}
