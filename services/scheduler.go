package services

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"gorm.io/gorm"
)

// DefaultSweepInterval は掃引周期の既定値。ギブアウェイの締切も
// この境界に正規化されるため、周期を変えると締切の粒度も変わる
const DefaultSweepInterval = 10 * time.Minute

// Sweeper は定期掃引の依存をまとめ、多重実行を防ぐ
type Sweeper struct {
	DB       *gorm.DB
	Cache    *SettingsCache
	Session  DiscordSession
	Calendar CalendarAPI
	Interval time.Duration

	running atomic.Bool
}

// Run は壁時計の境界に揃えて掃引を繰り返す。
// 前回の実行時刻ではなく時計そのものに揃えるため、ズレは蓄積しない。
// ctx のキャンセルで停止する
func (s *Sweeper) Run(ctx context.Context) {
	for {
		now := time.Now()
		next := NextBoundary(now, s.Interval)

		select {
		case <-ctx.Done():
			return
		case <-time.After(next.Sub(now)):
			s.Sweep(time.Now())
		}
	}
}

// NextBoundary は now より後の直近の境界時刻を返す
func NextBoundary(now time.Time, interval time.Duration) time.Time {
	return now.Truncate(interval).Add(interval)
}

// Sweep は1回分の掃引を実行する。前回の掃引がまだ動いている場合は
// その回をスキップする（後回しにはしない）。実行したかどうかを返す
func (s *Sweeper) Sweep(now time.Time) bool {
	if !s.running.CompareAndSwap(false, true) {
		log.Printf("previous sweep still running. skip")
		return false
	}
	defer s.running.Store(false)

	PruneNotifiedEvents(s.Cache, now)
	CheckCalendars(s.DB, s.Cache, s.Session, s.Calendar, s.Interval, now)
	CompleteDueGiveaways(s.DB, s.Cache, s.Session, now)
	CheckScheduledGiveaways(s.DB, s.Cache, s.Session, now, s.Interval)
	return true
}
