package scheduler

import (
	"SwingLab-backend/internal/services"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler 結構
type Scheduler struct {
	cron        *cron.Cron
	dispatchJob *DispatchJob
	autoTagJob  *AutoTagJob
}

// NewScheduler 依設定檔的 Cron 表達式註冊各排程任務
func NewScheduler(
	ss *services.ScheduleService,
	ds *services.DrillService,
	dispatchCronSpec string,
	autoTagCronSpec string,
) *Scheduler {
	c := cron.New(cron.WithSeconds())

	dispatchJob := NewDispatchJob(ss)
	autoTagJob := NewAutoTagJob(ds)

	if dispatchCronSpec != "" {
		_, err := c.AddJob(dispatchCronSpec, dispatchJob)
		if err != nil {
			log.Fatalf("錯誤：無法新增延遲簡訊發送任務到排程器 (spec: %s): %v", dispatchCronSpec, err)
		}
		log.Printf("資訊：延遲簡訊發送任務已註冊，排程：%s\n", dispatchCronSpec)
	} else {
		log.Println("警告：未提供延遲簡訊發送任務的 Cron 表達式，該任務將不會被排程。")
	}

	if autoTagCronSpec != "" {
		_, err := c.AddJob(autoTagCronSpec, autoTagJob)
		if err != nil {
			log.Fatalf("錯誤：無法新增自動標記任務到排程器 (spec: %s): %v", autoTagCronSpec, err)
		}
		log.Printf("資訊：自動標記任務已註冊，排程：%s\n", autoTagCronSpec)
	} else {
		log.Println("警告：未提供自動標記任務的 Cron 表達式，該任務將不會被排程。")
	}

	return &Scheduler{
		cron:        c,
		dispatchJob: dispatchJob,
		autoTagJob:  autoTagJob,
	}
}

// Start 非阻塞啟動排程器
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("資訊：排程器已非阻塞啟動 (如果任務已註冊)。")
}

// Stop 優雅停止排程器，等待運行中的任務完成
func (s *Scheduler) Stop() {
	log.Println("資訊：正在停止排程器...")
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
		log.Println("資訊：排程器已優雅停止，所有運行中任務已完成。")
	case <-time.After(10 * time.Second):
		log.Println("警告：排程器停止超時，可能仍有任務在執行。")
	}
}
