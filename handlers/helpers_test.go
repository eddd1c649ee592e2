package handlers

import (
	"fmt"
	"testing"

	"github.com/bwmarrin/discordgo"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"discord-giveaway-notify/models"
	"discord-giveaway-notify/services"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("fail to open test db: %v", err)
	}

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

func setupTestCache(t *testing.T, db *gorm.DB) *services.SettingsCache {
	cache := services.NewSettingsCache(db)
	if err := cache.Refresh(); err != nil {
		t.Fatalf("fail to refresh test cache: %v", err)
	}
	return cache
}

// fakeSession はDiscord API呼び出しを記録するフェイク
type fakeSession struct {
	sentMessages   []fakeMessage
	deletedIDs     []string
	reactions      []string
	failReactions  bool

	nextMessageID int
}

type fakeMessage struct {
	ChannelID string
	Content   string
}

func (f *fakeSession) ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.nextMessageID++
	id := fmt.Sprintf("msg-%d", f.nextMessageID)
	f.sentMessages = append(f.sentMessages, fakeMessage{ChannelID: channelID, Content: content})
	return &discordgo.Message{ID: id, ChannelID: channelID, Content: content}, nil
}

func (f *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	return f.ChannelMessageSend(channelID, data.Content)
}

func (f *fakeSession) ChannelMessageEdit(channelID, messageID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	return &discordgo.Message{ID: messageID, ChannelID: channelID, Content: content}, nil
}

func (f *fakeSession) ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	return &discordgo.Message{ID: messageID, ChannelID: channelID}, nil
}

func (f *fakeSession) ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error {
	f.deletedIDs = append(f.deletedIDs, messageID)
	return nil
}

func (f *fakeSession) MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error {
	if f.failReactions {
		return fmt.Errorf("reaction failed")
	}
	f.reactions = append(f.reactions, emojiID)
	return nil
}

func (f *fakeSession) MessageReactions(channelID, messageID, emojiID string, limit int, beforeID, afterID string, options ...discordgo.RequestOption) ([]*discordgo.User, error) {
	return nil, nil
}

func (f *fakeSession) UserChannelPermissions(userID, channelID string, fetchOptions ...discordgo.RequestOption) (int64, error) {
	return 0, nil
}
