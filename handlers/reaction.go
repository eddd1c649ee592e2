package handlers

import (
	"log"

	"github.com/bwmarrin/discordgo"

	"discord-giveaway-notify/services"
)

// HandleReactionAdd は🎉リアクションの付与をギブアウェイ参加として扱う
func HandleReactionAdd(deps *Deps) func(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	return func(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
		if r.Emoji.Name != services.GiveawayEmoji {
			return
		}
		if isBotReaction(s, r.UserID, r.Member) {
			return
		}

		if err := services.SetParticipation(deps.DB, deps.Cache, s, r.MessageID, r.UserID, true); err != nil {
			log.Printf("reaction join error (message: %s, user: %s): %v", r.MessageID, r.UserID, err)
		}
	}
}

// HandleReactionRemove は🎉リアクションの削除をギブアウェイ参加の取り消しとして扱う
func HandleReactionRemove(deps *Deps) func(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	return func(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
		if r.Emoji.Name != services.GiveawayEmoji {
			return
		}
		if isBotReaction(s, r.UserID, nil) {
			return
		}

		if err := services.SetParticipation(deps.DB, deps.Cache, s, r.MessageID, r.UserID, false); err != nil {
			log.Printf("reaction leave error (message: %s, user: %s): %v", r.MessageID, r.UserID, err)
		}
	}
}

// isBotReaction は自分自身や他のボットのリアクションかどうかを判定する。
// 削除イベントにはメンバー情報が付かないので、その場合は自分のIDだけ見る
func isBotReaction(s *discordgo.Session, userID string, member *discordgo.Member) bool {
	if s.State != nil && s.State.User != nil && userID == s.State.User.ID {
		return true
	}
	return member != nil && member.User != nil && member.User.Bot
}
