package services

import (
	"fmt"
	"log"
	"time"

	"google.golang.org/api/sheets/v4"
	"gorm.io/gorm"

	"discord-giveaway-notify/models"
)

// SheetWriter はスプレッドシートへの書き込み境界
type SheetWriter interface {
	WriteRows(sheetRange string, rows [][]interface{}) error
}

// GoogleSheetWriter は SheetWriter の Google Sheets 実装
type GoogleSheetWriter struct {
	service       *sheets.Service
	spreadsheetID string
}

func NewGoogleSheetWriter(service *sheets.Service, spreadsheetID string) *GoogleSheetWriter {
	return &GoogleSheetWriter{service: service, spreadsheetID: spreadsheetID}
}

func (w *GoogleSheetWriter) WriteRows(sheetRange string, rows [][]interface{}) error {
	_, err := w.service.Spreadsheets.Values.
		Update(w.spreadsheetID, sheetRange, &sheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		Do()
	return err
}

// ExportGuildConfiguration はギルドの設定一式をスプレッドシートへ書き出す
func ExportGuildConfiguration(db *gorm.DB, writer SheetWriter, guildID string) error {
	rows, err := BuildExportRows(db, guildID)
	if err != nil {
		return err
	}

	sheetRange := fmt.Sprintf("%s!A1", guildID)
	if err := writer.WriteRows(sheetRange, rows); err != nil {
		return fmt.Errorf("sheet write error (guild: %s): %w", guildID, err)
	}

	log.Printf("✅ guild configuration exported (guild: %s, rows: %d)", guildID, len(rows))
	return nil
}

// BuildExportRows はエクスポートする行を組み立てる。
// 1列目の種別名でどの設定の行かを区別する
func BuildExportRows(db *gorm.DB, guildID string) ([][]interface{}, error) {
	rows := [][]interface{}{
		{"kind", "exported_at", "values"},
	}
	exportedAt := time.Now().Format(time.RFC3339)

	var config models.GuildConfig
	if err := db.Where("guild_id = ?", guildID).First(&config).Error; err == nil {
		rows = append(rows, []interface{}{
			"guild_config", exportedAt, config.DefaultCalendarID, config.GiveawayRoleList,
		})
	}

	var triggers []models.ReactionTrigger
	if err := db.Where("guild_id = ?", guildID).Find(&triggers).Error; err != nil {
		return nil, fmt.Errorf("reaction trigger load error: %w", err)
	}
	for _, t := range triggers {
		rows = append(rows, []interface{}{
			"reaction_trigger", exportedAt, t.ChannelID, t.TriggerText, t.EmojiList,
		})
	}

	var announcements []models.Announcement
	if err := db.Where("guild_id = ?", guildID).Find(&announcements).Error; err != nil {
		return nil, fmt.Errorf("announcement load error: %w", err)
	}
	for _, a := range announcements {
		rows = append(rows, []interface{}{
			"announcement", exportedAt, a.ChannelID, a.Body,
		})
	}

	var monitors []models.CalendarMonitor
	if err := db.Where("guild_id = ?", guildID).Find(&monitors).Error; err != nil {
		return nil, fmt.Errorf("calendar monitor load error: %w", err)
	}
	for _, m := range monitors {
		rows = append(rows, []interface{}{
			"calendar_monitor", exportedAt, m.ChannelID, m.CalendarID, m.TriggerWord, m.MentionID,
		})
	}

	var scheduled []models.ScheduledGiveaway
	if err := db.Where("guild_id = ?", guildID).Find(&scheduled).Error; err != nil {
		return nil, fmt.Errorf("scheduled giveaway load error: %w", err)
	}
	for _, s := range scheduled {
		startAt := ""
		if s.StartAt != nil {
			startAt = s.StartAt.Format(time.RFC3339)
		}
		rows = append(rows, []interface{}{
			"scheduled_giveaway", exportedAt, s.ChannelID, s.Prize, s.WinnerCount,
			startAt, s.RecurrenceRule, s.DurationMinutes,
		})
	}

	return rows, nil
}
