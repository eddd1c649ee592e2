package services

import (
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"
)

// GoogleCalendarAPI は CalendarAPI の Google Calendar 実装
type GoogleCalendarAPI struct {
	service *calendar.Service
}

func NewGoogleCalendarAPI(service *calendar.Service) *GoogleCalendarAPI {
	return &GoogleCalendarAPI{service: service}
}

// ListEvents は指定範囲に開始するイベントを取得する
func (g *GoogleCalendarAPI) ListEvents(calendarID string, timeMin, timeMax time.Time) ([]CalendarEvent, error) {
	result, err := g.service.Events.List(calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Do()
	if err != nil {
		return nil, fmt.Errorf("calendar event list error (calendar: %s): %w", calendarID, err)
	}

	events := make([]CalendarEvent, 0, len(result.Items))
	for _, item := range result.Items {
		start, err := parseEventStart(item.Start)
		if err != nil {
			// 開始時刻が読めないイベントは通知対象にできないのでスキップ
			continue
		}

		events = append(events, CalendarEvent{
			ID:          item.Id,
			Title:       item.Summary,
			Description: item.Description,
			StartAt:     start,
		})
	}
	return events, nil
}

// parseEventStart はイベント開始時刻を解析する。終日イベントは日付のみ持つ
func parseEventStart(start *calendar.EventDateTime) (time.Time, error) {
	if start == nil {
		return time.Time{}, fmt.Errorf("event has no start time")
	}
	if start.DateTime != "" {
		return time.Parse(time.RFC3339, start.DateTime)
	}
	if start.Date != "" {
		return time.ParseInLocation("2006-01-02", start.Date, time.Local)
	}
	return time.Time{}, fmt.Errorf("event has no start time")
}
