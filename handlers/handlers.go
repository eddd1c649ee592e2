package handlers

import (
	"time"

	"gorm.io/gorm"

	"discord-giveaway-notify/services"
)

// Deps はハンドラ群が共有する依存。main で組み立てて各ハンドラに渡す
type Deps struct {
	DB       *gorm.DB
	Cache    *services.SettingsCache
	Exporter services.SheetWriter
	Prefix   string        // コマンドの接頭辞（既定は "!"）
	Interval time.Duration // 掃引周期。締切の正規化にも使う
}
