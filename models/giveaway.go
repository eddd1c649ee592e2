package models

import (
	"fmt"
	"time"
)

// ギブアウェイのライフサイクル状態。
// 予約段階は ScheduledGiveaway の行としてのみ存在し、Giveaway には現れない
const (
	GiveawayStatusRunning   = "running"   // 開催中
	GiveawayStatusEnded     = "ended"     // 抽選済みで終了
	GiveawayStatusCancelled = "cancelled" // fix による作り直し等で打ち切り
	GiveawayStatusErrored   = "errored"   // チャンネルやメッセージの消失など回復不能な失敗
)

// giveawayTransitions は許可される状態遷移。終了系の状態からは遷移できない
var giveawayTransitions = map[string][]string{
	GiveawayStatusRunning: {
		GiveawayStatusEnded,
		GiveawayStatusCancelled,
		GiveawayStatusErrored,
	},
}

// Giveaway は開催中または終了したギブアウェイ。メッセージIDごとに1行
type Giveaway struct {
	MessageID       string `gorm:"primaryKey"` // ギブアウェイメッセージのID
	GuildID         string `gorm:"index"`
	ChannelID       string
	Prize           string // 賞品
	WinnerCount     int    // 当選者数
	EndsAt          time.Time
	Status          string // "running", "ended", "cancelled", "errored"
	ParticipantList string // 参加者のユーザーID（カンマ区切り）
	WinnerList      string // 当選者のユーザーID（カンマ区切り）
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ChangeStatus は許可された遷移の場合のみ状態を変更する
func (g *Giveaway) ChangeStatus(next string) error {
	for _, allowed := range giveawayTransitions[g.Status] {
		if allowed == next {
			g.Status = next
			return nil
		}
	}
	return fmt.Errorf("invalid giveaway status transition: %s -> %s", g.Status, next)
}

// Participants は参加者のユーザーIDをスライスで返す
func (g *Giveaway) Participants() []string {
	return SplitList(g.ParticipantList)
}

// SetParticipants は参加者リストを置き換える
func (g *Giveaway) SetParticipants(ids []string) {
	g.ParticipantList = JoinList(ids)
}

// Winners は当選者のユーザーIDをスライスで返す
func (g *Giveaway) Winners() []string {
	return SplitList(g.WinnerList)
}

// SetWinners は当選者リストを置き換える
func (g *Giveaway) SetWinners(ids []string) {
	g.WinnerList = JoinList(ids)
}
