package services

import (
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"

	"discord-giveaway-notify/models"
)

func TestNormalizeEndTime(t *testing.T) {
	interval := 10 * time.Minute
	now := time.Date(2025, 6, 1, 12, 3, 0, 0, time.UTC)

	// 境界ちょうどの時刻はそのまま
	exact := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)
	assert.Equal(t, exact, NormalizeEndTime(exact, now, interval))

	// 境界の途中は次の境界に切り上げ
	requested := time.Date(2025, 6, 1, 12, 34, 56, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 40, 0, 0, time.UTC),
		NormalizeEndTime(requested, now, interval))

	// 過去の時刻は現在の次の境界に付け直す
	past := time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 10, 0, 0, time.UTC),
		NormalizeEndTime(past, now, interval))
}

func TestPickWinners(t *testing.T) {
	participants := []string{"user1", "user2", "user3"}

	// 参加者が足りない場合は全員当選
	winners := PickWinners(participants, 5)
	assert.Len(t, winners, 3)

	// 参加者0人なら当選者なし
	assert.Nil(t, PickWinners(nil, 2))

	// 当選者は重複しない参加者の部分集合
	winners = PickWinners(participants, 2)
	assert.Len(t, winners, 2)
	seen := map[string]bool{}
	for _, w := range winners {
		assert.Contains(t, participants, w)
		assert.False(t, seen[w])
		seen[w] = true
	}
}

func TestStartGiveaway(t *testing.T) {
	db := setupTestDB(t)
	cache := setupTestCache(t, db)
	session := newFakeSession()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	giveaway, err := StartGiveaway(cache, session, "guild1", "channel1",
		"Nintendo Switch", 2, now.Add(30*time.Minute), now, DefaultSweepInterval)
	assert.NoError(t, err)
	assert.Equal(t, models.GiveawayStatusRunning, giveaway.Status)

	// メッセージが投稿され、リアクションが付いている
	assert.Len(t, session.sentMessages, 1)
	assert.Contains(t, session.sentMessages[0].Content, "Nintendo Switch")
	assert.Equal(t, []string{GiveawayEmoji}, session.reactions)

	// 行が作成され、メッセージIDが主キーになっている
	var saved models.Giveaway
	err = db.Where("message_id = ?", giveaway.MessageID).First(&saved).Error
	assert.NoError(t, err)
	assert.Equal(t, "guild1", saved.GuildID)

	// キャッシュにも反映されている
	assert.Len(t, cache.AllRunningGiveaways(), 1)
}

func TestStartGiveawayValidation(t *testing.T) {
	db := setupTestDB(t)
	cache := setupTestCache(t, db)
	session := newFakeSession()
	now := time.Now()

	_, err := StartGiveaway(cache, session, "g", "c", "", 1, now.Add(time.Hour), now, DefaultSweepInterval)
	assert.Error(t, err)

	_, err = StartGiveaway(cache, session, "g", "c", "prize", 0, now.Add(time.Hour), now, DefaultSweepInterval)
	assert.Error(t, err)

	_, err = StartGiveaway(cache, session, "g", "c", "prize", 1, now.Add(-time.Hour), now, DefaultSweepInterval)
	assert.Error(t, err)

	// どれも投稿まで進んでいない
	assert.Empty(t, session.sentMessages)
}

func TestToggleParticipant(t *testing.T) {
	db := setupTestDB(t)
	cache := setupTestCache(t, db)
	session := newFakeSession()

	giveaway := models.Giveaway{
		MessageID: "msg1", GuildID: "guild1", ChannelID: "channel1",
		Prize: "prize", WinnerCount: 1,
		EndsAt: time.Now().Add(time.Hour), Status: models.GiveawayStatusRunning,
	}
	assert.NoError(t, db.Create(&giveaway).Error)

	// 1回目で参加
	joined, err := ToggleParticipant(db, cache, session, "msg1", "user1")
	assert.NoError(t, err)
	assert.True(t, joined)

	var saved models.Giveaway
	db.Where("message_id = ?", "msg1").First(&saved)
	assert.Equal(t, []string{"user1"}, saved.Participants())

	// 2回目で取り消し
	joined, err = ToggleParticipant(db, cache, session, "msg1", "user1")
	assert.NoError(t, err)
	assert.False(t, joined)

	db.Where("message_id = ?", "msg1").First(&saved)
	assert.Empty(t, saved.Participants())

	// 表示の参加者数も更新されている
	assert.Len(t, session.editedMessages, 2)
}

func TestSetParticipation(t *testing.T) {
	db := setupTestDB(t)
	cache := setupTestCache(t, db)
	session := newFakeSession()

	giveaway := models.Giveaway{
		MessageID: "msg1", GuildID: "guild1", ChannelID: "channel1",
		Prize: "prize", WinnerCount: 1,
		EndsAt: time.Now().Add(time.Hour), Status: models.GiveawayStatusRunning,
	}
	assert.NoError(t, db.Create(&giveaway).Error)

	// リアクション付与で参加。同じ操作の繰り返しは何もしない
	assert.NoError(t, SetParticipation(db, cache, session, "msg1", "user1", true))
	assert.NoError(t, SetParticipation(db, cache, session, "msg1", "user1", true))

	var saved models.Giveaway
	db.Where("message_id = ?", "msg1").First(&saved)
	assert.Equal(t, []string{"user1"}, saved.Participants())

	// リアクション削除で取り消し
	assert.NoError(t, SetParticipation(db, cache, session, "msg1", "user1", false))
	db.Where("message_id = ?", "msg1").First(&saved)
	assert.Empty(t, saved.Participants())

	// ギブアウェイ以外のメッセージへのリアクションは無視する
	assert.NoError(t, SetParticipation(db, cache, session, "unknown-msg", "user1", true))
}

func TestToggleParticipantNotRunning(t *testing.T) {
	db := setupTestDB(t)
	cache := setupTestCache(t, db)
	session := newFakeSession()

	giveaway := models.Giveaway{
		MessageID: "msg1", GuildID: "guild1", ChannelID: "channel1",
		Prize: "prize", WinnerCount: 1,
		EndsAt: time.Now().Add(-time.Hour), Status: models.GiveawayStatusEnded,
	}
	assert.NoError(t, db.Create(&giveaway).Error)

	_, err := ToggleParticipant(db, cache, session, "msg1", "user1")
	assert.Error(t, err)
}

func TestConcludeGiveaway(t *testing.T) {
	db := setupTestDB(t)
	cache := setupTestCache(t, db)
	session := newFakeSession()

	giveaway := models.Giveaway{
		MessageID: "msg1", GuildID: "guild1", ChannelID: "channel1",
		Prize: "prize", WinnerCount: 2,
		EndsAt: time.Now().Add(-time.Minute), Status: models.GiveawayStatusRunning,
	}
	giveaway.SetParticipants([]string{"user1", "user2", "user3"})
	assert.NoError(t, db.Create(&giveaway).Error)

	assert.NoError(t, ConcludeGiveaway(db, cache, session, "msg1"))

	var saved models.Giveaway
	db.Where("message_id = ?", "msg1").First(&saved)
	assert.Equal(t, models.GiveawayStatusEnded, saved.Status)
	assert.Len(t, saved.Winners(), 2)

	// 終了表示への編集と当選告知が送られている
	assert.Len(t, session.editedMessages, 1)
	assert.Len(t, session.sentMessages, 1)
	assert.Contains(t, session.sentMessages[0].Content, "おめでとうございます")

	// 2回目の呼び出しは何もしない（再告知されない）
	assert.NoError(t, ConcludeGiveaway(db, cache, session, "msg1"))
	assert.Len(t, session.sentMessages, 1)
}

func TestConcludeGiveawayRacingForcedEnd(t *testing.T) {
	db := setupTestDB(t)
	cache := setupTestCache(t, db)
	session := newFakeSession()

	giveaway := models.Giveaway{
		MessageID: "msg1", GuildID: "guild1", ChannelID: "channel1",
		Prize: "prize", WinnerCount: 1,
		EndsAt: time.Now().Add(-time.Minute), Status: models.GiveawayStatusRunning,
	}
	giveaway.SetParticipants([]string{"user1"})
	assert.NoError(t, db.Create(&giveaway).Error)

	// 強制終了コマンドと掃引が同じ running の行を同時に読んだ状況を再現する。
	// 片方がメッセージ確認をしている間に、もう片方が先に終了まで進む
	session.onChannelMessage = func() {
		assert.NoError(t, ConcludeGiveaway(db, cache, session, "msg1"))
	}
	assert.NoError(t, ConcludeGiveaway(db, cache, session, "msg1"))

	var saved models.Giveaway
	db.Where("message_id = ?", "msg1").First(&saved)
	assert.Equal(t, models.GiveawayStatusEnded, saved.Status)
	assert.Equal(t, []string{"user1"}, saved.Winners())

	// 抽選・告知・終了表示への編集はどれも1回だけ
	announcements := 0
	for _, m := range session.sentMessages {
		if strings.Contains(m.Content, "おめでとうございます") {
			announcements++
		}
	}
	assert.Equal(t, 1, announcements)
	assert.Len(t, session.editedMessages, 1)
}

func TestConcludeGiveawayNoParticipants(t *testing.T) {
	db := setupTestDB(t)
	cache := setupTestCache(t, db)
	session := newFakeSession()

	giveaway := models.Giveaway{
		MessageID: "msg1", GuildID: "guild1", ChannelID: "channel1",
		Prize: "prize", WinnerCount: 1,
		EndsAt: time.Now().Add(-time.Minute), Status: models.GiveawayStatusRunning,
	}
	assert.NoError(t, db.Create(&giveaway).Error)

	assert.NoError(t, ConcludeGiveaway(db, cache, session, "msg1"))

	var saved models.Giveaway
	db.Where("message_id = ?", "msg1").First(&saved)
	assert.Equal(t, models.GiveawayStatusEnded, saved.Status)
	assert.Empty(t, saved.Winners())
	assert.Contains(t, session.sentMessages[0].Content, "当選者なし")
}

func TestConcludeGiveawayMissingMessage(t *testing.T) {
	db := setupTestDB(t)
	cache := setupTestCache(t, db)
	session := newFakeSession()
	session.missingIDs["msg1"] = true

	giveaway := models.Giveaway{
		MessageID: "msg1", GuildID: "guild1", ChannelID: "channel1",
		Prize: "prize", WinnerCount: 1,
		EndsAt: time.Now().Add(-time.Minute), Status: models.GiveawayStatusRunning,
	}
	assert.NoError(t, db.Create(&giveaway).Error)

	assert.Error(t, ConcludeGiveaway(db, cache, session, "msg1"))

	// メッセージが消えている場合は errored にして再試行しない
	var saved models.Giveaway
	db.Where("message_id = ?", "msg1").First(&saved)
	assert.Equal(t, models.GiveawayStatusErrored, saved.Status)
	assert.Empty(t, session.sentMessages)
}

func TestCompleteDueGiveaways(t *testing.T) {
	db := setupTestDB(t)
	session := newFakeSession()
	now := time.Now()

	due := models.Giveaway{
		MessageID: "due", GuildID: "guild1", ChannelID: "channel1",
		Prize: "prize1", WinnerCount: 1,
		EndsAt: now.Add(-time.Minute), Status: models.GiveawayStatusRunning,
	}
	notDue := models.Giveaway{
		MessageID: "not-due", GuildID: "guild1", ChannelID: "channel1",
		Prize: "prize2", WinnerCount: 1,
		EndsAt: now.Add(time.Hour), Status: models.GiveawayStatusRunning,
	}
	assert.NoError(t, db.Create(&due).Error)
	assert.NoError(t, db.Create(&notDue).Error)
	cache := setupTestCache(t, db)

	CompleteDueGiveaways(db, cache, session, now)

	var saved models.Giveaway
	db.Where("message_id = ?", "due").First(&saved)
	assert.Equal(t, models.GiveawayStatusEnded, saved.Status)

	var savedNotDue models.Giveaway
	db.Where("message_id = ?", "not-due").First(&savedNotDue)
	assert.Equal(t, models.GiveawayStatusRunning, savedNotDue.Status)
}

func TestRerollGiveaway(t *testing.T) {
	db := setupTestDB(t)
	cache := setupTestCache(t, db)
	session := newFakeSession()

	// ボットと本人以外のリアクション付与者が抽選対象になる
	session.reactionUsers = []*discordgo.User{
		{ID: "bot-user"},
		{ID: "user1"},
		{ID: "user2"},
		{ID: "bot2", Bot: true},
	}

	giveaway := models.Giveaway{
		MessageID: "msg1", GuildID: "guild1", ChannelID: "channel1",
		Prize: "prize", WinnerCount: 2,
		EndsAt: time.Now().Add(-time.Hour), Status: models.GiveawayStatusEnded,
		WinnerList: "user9",
	}
	assert.NoError(t, db.Create(&giveaway).Error)

	winners, err := RerollGiveaway(db, cache, session, "msg1", "bot-user")
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"user1", "user2"}, winners)

	var saved models.Giveaway
	db.Where("message_id = ?", "msg1").First(&saved)
	assert.ElementsMatch(t, []string{"user1", "user2"}, saved.Winners())
	assert.Contains(t, session.sentMessages[0].Content, "再抽選")
}

func TestRerollGiveawayNotEnoughParticipants(t *testing.T) {
	db := setupTestDB(t)
	cache := setupTestCache(t, db)
	session := newFakeSession()
	session.reactionUsers = []*discordgo.User{{ID: "user1"}}

	giveaway := models.Giveaway{
		MessageID: "msg1", GuildID: "guild1", ChannelID: "channel1",
		Prize: "prize", WinnerCount: 2,
		EndsAt: time.Now().Add(-time.Hour), Status: models.GiveawayStatusEnded,
		WinnerList: "user9",
	}
	assert.NoError(t, db.Create(&giveaway).Error)

	_, err := RerollGiveaway(db, cache, session, "msg1", "bot-user")
	assert.Error(t, err)

	// 当選者は元のまま
	var saved models.Giveaway
	db.Where("message_id = ?", "msg1").First(&saved)
	assert.Equal(t, []string{"user9"}, saved.Winners())
	assert.Empty(t, session.sentMessages)
}

func TestRerollGiveawayRunning(t *testing.T) {
	db := setupTestDB(t)
	cache := setupTestCache(t, db)
	session := newFakeSession()

	giveaway := models.Giveaway{
		MessageID: "msg1", GuildID: "guild1", ChannelID: "channel1",
		Prize: "prize", WinnerCount: 1,
		EndsAt: time.Now().Add(time.Hour), Status: models.GiveawayStatusRunning,
	}
	assert.NoError(t, db.Create(&giveaway).Error)

	_, err := RerollGiveaway(db, cache, session, "msg1", "bot-user")
	assert.Error(t, err)
}

func TestFetchReactionParticipantsPaging(t *testing.T) {
	session := newFakeSession()
	for i := 0; i < 150; i++ {
		session.reactionUsers = append(session.reactionUsers,
			&discordgo.User{ID: "user" + string(rune('a'+i%26)) + string(rune('a'+i/26))})
	}

	ids, err := FetchReactionParticipants(session, "channel1", "msg1", "bot-user")
	assert.NoError(t, err)
	assert.Len(t, ids, 150)
}

func TestFixGiveaway(t *testing.T) {
	db := setupTestDB(t)
	cache := setupTestCache(t, db)
	session := newFakeSession()

	giveaway := models.Giveaway{
		MessageID: "old-msg", GuildID: "guild1", ChannelID: "channel1",
		Prize: "prize", WinnerCount: 1,
		EndsAt: time.Now().Add(time.Hour), Status: models.GiveawayStatusRunning,
	}
	giveaway.SetParticipants([]string{"user1", "user2"})
	assert.NoError(t, db.Create(&giveaway).Error)

	replacement, err := FixGiveaway(db, cache, session, "old-msg")
	assert.NoError(t, err)
	assert.NotEqual(t, "old-msg", replacement.MessageID)

	// 参加者は永続化済みのリストを引き継ぐ
	assert.Equal(t, []string{"user1", "user2"}, replacement.Participants())

	// 旧行は cancelled として残る
	var old models.Giveaway
	db.Where("message_id = ?", "old-msg").First(&old)
	assert.Equal(t, models.GiveawayStatusCancelled, old.Status)
	assert.Equal(t, []string{"user1", "user2"}, old.Participants())

	// 旧メッセージは差し替え案内に編集される
	assert.Len(t, session.editedMessages, 1)
	assert.Contains(t, session.editedMessages[0].Content, "作り直されました")
}

func TestEditGiveaway(t *testing.T) {
	db := setupTestDB(t)
	cache := setupTestCache(t, db)
	session := newFakeSession()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	giveaway := models.Giveaway{
		MessageID: "msg1", GuildID: "guild1", ChannelID: "channel1",
		Prize: "old prize", WinnerCount: 1,
		EndsAt: now.Add(time.Hour), Status: models.GiveawayStatusRunning,
	}
	giveaway.SetParticipants([]string{"user1"})
	assert.NoError(t, db.Create(&giveaway).Error)

	newPrize := "new prize"
	newWinners := 3
	newEnd := now.Add(2 * time.Hour)
	err := EditGiveaway(db, cache, session, "msg1", GiveawayEdit{
		Prize:       &newPrize,
		WinnerCount: &newWinners,
		EndsAt:      &newEnd,
	}, now, DefaultSweepInterval)
	assert.NoError(t, err)

	var saved models.Giveaway
	db.Where("message_id = ?", "msg1").First(&saved)
	assert.Equal(t, "new prize", saved.Prize)
	assert.Equal(t, 3, saved.WinnerCount)
	assert.True(t, saved.EndsAt.Equal(newEnd))

	// 参加者と状態は変わらない
	assert.Equal(t, []string{"user1"}, saved.Participants())
	assert.Equal(t, models.GiveawayStatusRunning, saved.Status)
}

func TestEditGiveawayValidation(t *testing.T) {
	db := setupTestDB(t)
	cache := setupTestCache(t, db)
	session := newFakeSession()
	now := time.Now()

	giveaway := models.Giveaway{
		MessageID: "msg1", GuildID: "guild1", ChannelID: "channel1",
		Prize: "prize", WinnerCount: 1,
		EndsAt: now.Add(time.Hour), Status: models.GiveawayStatusRunning,
	}
	assert.NoError(t, db.Create(&giveaway).Error)

	empty := ""
	err := EditGiveaway(db, cache, session, "msg1", GiveawayEdit{Prize: &empty}, now, DefaultSweepInterval)
	assert.Error(t, err)

	past := now.Add(-time.Hour)
	err = EditGiveaway(db, cache, session, "msg1", GiveawayEdit{EndsAt: &past}, now, DefaultSweepInterval)
	assert.Error(t, err)

	zero := 0
	err = EditGiveaway(db, cache, session, "msg1", GiveawayEdit{WinnerCount: &zero}, now, DefaultSweepInterval)
	assert.Error(t, err)

	var saved models.Giveaway
	db.Where("message_id = ?", "msg1").First(&saved)
	assert.Equal(t, "prize", saved.Prize)
}
