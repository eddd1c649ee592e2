package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseRecurrenceRule(t *testing.T) {
	// 標準の5フィールド形式
	_, err := ParseRecurrenceRule("0 12 * * 5")
	assert.NoError(t, err)

	_, err = ParseRecurrenceRule("not a cron rule")
	assert.Error(t, err)

	// 秒フィールド付きの6フィールド形式は受け付けない
	_, err = ParseRecurrenceRule("0 0 12 * * 5")
	assert.Error(t, err)
}

func TestDueOccurrences(t *testing.T) {
	// 毎週金曜12:00のルール
	rule := "0 12 * * 5"

	// 2025-06-06 は金曜
	since := time.Date(2025, 6, 6, 11, 50, 0, 0, time.UTC)
	until := time.Date(2025, 6, 6, 12, 0, 0, 0, time.UTC)

	due, err := DueOccurrences(rule, since, until)
	assert.NoError(t, err)
	assert.Len(t, due, 1)
	assert.Equal(t, time.Date(2025, 6, 6, 12, 0, 0, 0, time.UTC), due[0])

	// 窓の外では発火しない
	due, err = DueOccurrences(rule, until, until.Add(10*time.Minute))
	assert.NoError(t, err)
	assert.Empty(t, due)
}

func TestDueOccurrencesMultiple(t *testing.T) {
	// 毎分発火するルールで10分の窓を見ると10回分返る
	due, err := DueOccurrences("* * * * *",
		time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 1, 12, 10, 0, 0, time.UTC))
	assert.NoError(t, err)
	assert.Len(t, due, 10)

	// since ちょうどの時刻は含まれない（前回の窓で処理済み）
	assert.Equal(t, time.Date(2025, 6, 1, 12, 1, 0, 0, time.UTC), due[0])
}

func TestDueOccurrencesCap(t *testing.T) {
	// 異常に広い窓でも上限で打ち切る
	due, err := DueOccurrences("* * * * *",
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
	assert.Len(t, due, 100)
}
