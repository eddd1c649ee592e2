package services

import (
	"fmt"
	"testing"

	"github.com/bwmarrin/discordgo"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"discord-giveaway-notify/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("fail to open test db: %v", err)
	}

	// インメモリDBは接続ごとに別の実体になるため、並行テストでも
	// 同じDBを見るよう1接続に固定する
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("fail to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	// マイグレーションを実行
	err = db.AutoMigrate(
		&models.ReactionTrigger{},
		&models.Announcement{},
		&models.CalendarMonitor{},
		&models.GuildConfig{},
		&models.NotifiedEvent{},
		&models.Giveaway{},
		&models.ScheduledGiveaway{},
	)
	if err != nil {
		t.Fatalf("fail to migrate test db: %v", err)
	}

	return db
}

func setupTestCache(t *testing.T, db *gorm.DB) *SettingsCache {
	cache := NewSettingsCache(db)
	if err := cache.Refresh(); err != nil {
		t.Fatalf("fail to refresh test cache: %v", err)
	}
	return cache
}

// fakeSession はDiscord API呼び出しを記録するフェイク
type fakeSession struct {
	sentMessages   []fakeMessage
	editedMessages []fakeMessage
	deletedIDs     []string
	reactions      []string
	reactionUsers  []*discordgo.User
	permissions    int64

	nextMessageID int
	failSend      bool
	missingIDs    map[string]bool

	// メッセージ取得の途中に別処理を割り込ませるためのフック（1回だけ呼ばれる）
	onChannelMessage func()
}

type fakeMessage struct {
	ChannelID string
	MessageID string
	Content   string
}

func newFakeSession() *fakeSession {
	return &fakeSession{missingIDs: map[string]bool{}}
}

func (f *fakeSession) nextID() string {
	f.nextMessageID++
	return fmt.Sprintf("msg-%d", f.nextMessageID)
}

func (f *fakeSession) ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.failSend {
		return nil, fmt.Errorf("send failed")
	}
	id := f.nextID()
	f.sentMessages = append(f.sentMessages, fakeMessage{ChannelID: channelID, MessageID: id, Content: content})
	return &discordgo.Message{ID: id, ChannelID: channelID, Content: content}, nil
}

func (f *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.failSend {
		return nil, fmt.Errorf("send failed")
	}
	id := f.nextID()
	f.sentMessages = append(f.sentMessages, fakeMessage{ChannelID: channelID, MessageID: id, Content: data.Content})
	return &discordgo.Message{ID: id, ChannelID: channelID, Content: data.Content}, nil
}

func (f *fakeSession) ChannelMessageEdit(channelID, messageID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.editedMessages = append(f.editedMessages, fakeMessage{ChannelID: channelID, MessageID: messageID, Content: content})
	return &discordgo.Message{ID: messageID, ChannelID: channelID, Content: content}, nil
}

func (f *fakeSession) ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.onChannelMessage != nil {
		hook := f.onChannelMessage
		f.onChannelMessage = nil
		hook()
	}
	if f.missingIDs[messageID] {
		return nil, fmt.Errorf("unknown message")
	}
	return &discordgo.Message{ID: messageID, ChannelID: channelID}, nil
}

func (f *fakeSession) ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error {
	f.deletedIDs = append(f.deletedIDs, messageID)
	return nil
}

func (f *fakeSession) MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error {
	f.reactions = append(f.reactions, emojiID)
	return nil
}

func (f *fakeSession) MessageReactions(channelID, messageID, emojiID string, limit int, beforeID, afterID string, options ...discordgo.RequestOption) ([]*discordgo.User, error) {
	// afterカーソルより後ろのユーザーをlimit件まで返す
	start := 0
	if afterID != "" {
		for i, user := range f.reactionUsers {
			if user.ID == afterID {
				start = i + 1
				break
			}
		}
	}
	end := start + limit
	if end > len(f.reactionUsers) {
		end = len(f.reactionUsers)
	}
	if start >= len(f.reactionUsers) {
		return nil, nil
	}
	return f.reactionUsers[start:end], nil
}

func (f *fakeSession) UserChannelPermissions(userID, channelID string, fetchOptions ...discordgo.RequestOption) (int64, error) {
	return f.permissions, nil
}
