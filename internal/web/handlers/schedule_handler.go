package handlers

import (
	"SwingLab-backend/internal/models"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
)

// MessageScheduler 定義排程佇列（由 services.ScheduleService 實現）
type MessageScheduler interface {
	Enqueue(sessionID string, triggerName string, delayMinutes int) (*models.ScheduledMessage, error)
}

// ScheduleSMSHandler 處理 POST /api/schedule-sms
type ScheduleSMSHandler struct {
	scheduler MessageScheduler
}

// NewScheduleSMSHandler 建立一個 ScheduleSMSHandler
func NewScheduleSMSHandler(scheduler MessageScheduler) *ScheduleSMSHandler {
	if scheduler == nil {
		log.Panicln("ScheduleSMSHandler：MessageScheduler 不得為空")
	}
	return &ScheduleSMSHandler{scheduler: scheduler}
}

type scheduleRequest struct {
	SessionID    string `json:"sessionId"`
	TriggerName  string `json:"triggerName"`
	DelayMinutes int    `json:"delayMinutes"`
}

// ServeHTTP 實現 http.Handler 介面
func (h *ScheduleSMSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if handlePreflight(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "僅支援 POST 方法", http.StatusMethodNotAllowed)
		return
	}

	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: 解析請求內容失敗: %v", models.ErrInvalidArgument, err))
		return
	}

	msg, err := h.scheduler.Enqueue(req.SessionID, req.TriggerName, req.DelayMinutes)
	if err != nil {
		log.Printf("錯誤：[ScheduleSMSHandler] 排程失敗: %v\n", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"scheduled": msg,
	})
}
