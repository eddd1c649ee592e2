package models

import "strings"

// SplitList はカンマ区切りで保存されたリストをスライスに変換する（空要素は除外）
func SplitList(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// JoinList はスライスをカンマ区切りの文字列に変換する
func JoinList(items []string) string {
	return strings.Join(items, ",")
}
