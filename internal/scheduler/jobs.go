package scheduler

import (
	"SwingLab-backend/internal/services"
	"context"
	"log"
	"time"
)

// DispatchJob 是一個排程任務，負責發送到期的延遲簡訊
type DispatchJob struct {
	scheduleService *services.ScheduleService
}

// NewDispatchJob 建立一個 DispatchJob
func NewDispatchJob(ss *services.ScheduleService) *DispatchJob {
	return &DispatchJob{scheduleService: ss}
}

// Run 實現 cron.Job 介面 (github.com/robfig/cron/v3)
func (j *DispatchJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	sent, err := j.scheduleService.DispatchDue(ctx, time.Now())
	if err != nil {
		log.Printf("錯誤：延遲簡訊發送排程任務執行失敗: %v", err)
		return
	}
	if sent > 0 {
		log.Printf("資訊：延遲簡訊發送排程任務完成，共發送 %d 筆。\n", sent)
	}
}

// AutoTagJob 是一個排程任務，對等待標記的訓練影片執行 AI 自動標記
type AutoTagJob struct {
	drillService *services.DrillService
}

// NewAutoTagJob 建立一個 AutoTagJob
func NewAutoTagJob(ds *services.DrillService) *AutoTagJob {
	return &AutoTagJob{drillService: ds}
}

// Run 實現 cron.Job 介面
func (j *AutoTagJob) Run() {
	log.Println("資訊：執行排程任務 - 訓練影片自動標記...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	tagged, err := j.drillService.RunPendingAutoTag(ctx)
	if err != nil {
		log.Printf("錯誤：自動標記排程任務執行失敗: %v", err)
		return
	}
	log.Printf("資訊：自動標記排程任務執行完成，共標記 %d 支影片。\n", tagged)
}
