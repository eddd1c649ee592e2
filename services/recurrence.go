package services

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// 繰り返しルールは標準の5フィールドcron形式（分 時 日 月 曜日）
var recurrenceParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

// ParseRecurrenceRule は繰り返しルールを検証してスケジュールに変換する
func ParseRecurrenceRule(rule string) (cron.Schedule, error) {
	sched, err := recurrenceParser.Parse(rule)
	if err != nil {
		return nil, fmt.Errorf("invalid recurrence rule %q: %w", rule, err)
	}
	return sched, nil
}

// DueOccurrences は since より後、until 以前にルールが発火する時刻を順に返す。
// スケジューラから切り離した純関数なので単体でテストできる
func DueOccurrences(rule string, since, until time.Time) ([]time.Time, error) {
	sched, err := ParseRecurrenceRule(rule)
	if err != nil {
		return nil, err
	}

	var due []time.Time
	for t := sched.Next(since); !t.IsZero() && !t.After(until); t = sched.Next(t) {
		due = append(due, t)

		// 窓が異常に広い場合の暴走防止
		if len(due) >= 100 {
			break
		}
	}
	return due, nil
}
