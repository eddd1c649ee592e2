package handlers

import (
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"gorm.io/gorm"

	"discord-giveaway-notify/models"
	"discord-giveaway-notify/services"
)

// HandleInteractionCreate はボタン押下を処理するハンドラを返す
func HandleInteractionCreate(deps *Deps) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionMessageComponent {
			return
		}

		customID := i.MessageComponentData().CustomID
		switch {
		case customID == services.GiveawayJoinButtonID:
			handleJoinButton(deps, s, i)
		case strings.HasPrefix(customID, services.ConfirmButtonPrefix):
			handleConfirmButton(deps, s, i, strings.TrimPrefix(customID, services.ConfirmButtonPrefix))
		case strings.HasPrefix(customID, services.SkipButtonPrefix):
			handleSkipButton(deps, s, i, strings.TrimPrefix(customID, services.SkipButtonPrefix))
		}
	}
}

// handleJoinButton は参加ボタンの押下で参加状態をトグルする
func handleJoinButton(deps *Deps, s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := interactionUser(i)
	if user == nil || user.Bot {
		return
	}

	joined, err := services.ToggleParticipant(deps.DB, deps.Cache, s, i.Message.ID, user.ID)
	if err != nil {
		log.Printf("participant toggle error (message: %s, user: %s): %v", i.Message.ID, user.ID, err)
		respondEphemeral(s, i, "このギブアウェイには参加できません。")
		return
	}

	if joined {
		respondEphemeral(s, i, "🎉 参加を受け付けました！")
	} else {
		respondEphemeral(s, i, "参加を取り消しました。")
	}
}

// handleConfirmButton は定期ギブアウェイの開催確認に応じて実際に開始する
func handleConfirmButton(deps *Deps, s *discordgo.Session, i *discordgo.InteractionCreate, scheduleID string) {
	var scheduled models.ScheduledGiveaway
	if err := deps.DB.Where("id = ?", scheduleID).First(&scheduled).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			updatePromptMessage(s, i, "⚠️ この予約は既に削除されています。")
			return
		}
		log.Printf("scheduled giveaway fetch error (id: %s): %v", scheduleID, err)
		return
	}

	giveaway, err := services.MaterializeScheduledGiveaway(deps.Cache, s, scheduled, time.Now(), deps.Interval)
	if err != nil {
		log.Printf("scheduled giveaway start error (id: %s): %v", scheduleID, err)
		updatePromptMessage(s, i, "⚠️ ギブアウェイを開始できませんでした。")
		return
	}

	log.Printf("✅ scheduled giveaway started by confirmation (schedule: %s, message: %s)",
		scheduleID, giveaway.MessageID)
	updatePromptMessage(s, i, "✅ ギブアウェイを開始しました。")
}

func handleSkipButton(deps *Deps, s *discordgo.Session, i *discordgo.InteractionCreate, scheduleID string) {
	log.Printf("scheduled giveaway skipped (schedule: %s)", scheduleID)
	updatePromptMessage(s, i, "今回の開催はスキップしました。")
}

// interactionUser はギルド内・DMどちらの形でも押したユーザーを取り出す
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil {
		return i.Member.User
	}
	return i.User
}

// respondEphemeral は押した本人だけに見える応答を返す
func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, text string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: text,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("interaction response error: %v", err)
	}
}

// updatePromptMessage は確認プロンプトのボタンを外して結果に置き換える
func updatePromptMessage(s *discordgo.Session, i *discordgo.InteractionCreate, text string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    text,
			Components: []discordgo.MessageComponent{},
		},
	})
	if err != nil {
		log.Printf("interaction response error: %v", err)
	}
}
