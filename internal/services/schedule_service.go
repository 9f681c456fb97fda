package services

import (
	"SwingLab-backend/internal/models"
	"SwingLab-backend/internal/web/handlers"
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"
)

// dispatchBatchSize 是單次發送任務最多取出的到期訊息數
const dispatchBatchSize = 50

// ScheduleService 是排程佇列：把延遲簡訊排入 scheduled_messages，
// 由排程器定期呼叫 DispatchDue 取出到期訊息發送。
type ScheduleService struct {
	db     handlers.DBStore
	notify *NotifyService
}

// NewScheduleService 建立 ScheduleService 實例
func NewScheduleService(db handlers.DBStore, notify *NotifyService) (*ScheduleService, error) {
	if db == nil {
		return nil, fmt.Errorf("ScheduleService：DBStore 不得為空")
	}
	if notify == nil {
		return nil, fmt.Errorf("ScheduleService：NotifyService 不得為空")
	}
	log.Println("資訊：ScheduleService 初始化完成。")
	return &ScheduleService{db: db, notify: notify}, nil
}

// Enqueue 排入一則延遲簡訊。delayMinutes <= 0 時採用 trigger 樣板的預設延遲。
// trigger 必須有對應的樣板，否則到期時無內文可發。
func (s *ScheduleService) Enqueue(sessionID string, triggerName string, delayMinutes int) (*models.ScheduledMessage, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: sessionId 不得為空", models.ErrInvalidArgument)
	}
	if triggerName == "" {
		return nil, fmt.Errorf("%w: triggerName 不得為空", models.ErrInvalidArgument)
	}
	session, err := s.db.GetSessionByID(sessionID)
	if err != nil {
		return nil, fmt.Errorf("查詢場次失敗: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("%w: 場次 %s 不存在", models.ErrNotFound, sessionID)
	}
	template, err := s.db.GetMessageTemplate(triggerName)
	if err != nil {
		return nil, fmt.Errorf("查詢訊息樣板失敗: %w", err)
	}
	if template == nil {
		return nil, fmt.Errorf("%w: trigger '%s' 沒有對應的訊息樣板", models.ErrInvalidArgument, triggerName)
	}
	if delayMinutes <= 0 {
		delayMinutes = template.DelayMinutes
	}

	now := time.Now()
	msg := &models.ScheduledMessage{
		SessionID:   sessionID,
		TriggerName: triggerName,
		SendAt:      now.Add(time.Duration(delayMinutes) * time.Minute),
		Status:      models.ScheduledPending,
		CreatedAt:   now,
	}
	id, err := s.db.InsertScheduledMessage(msg)
	if err != nil {
		return nil, fmt.Errorf("寫入排程訊息失敗: %w", err)
	}
	msg.ID = id
	log.Printf("資訊：[ScheduleService] 場次 %s 的 '%s' 已排程於 %s 發送。\n",
		sessionID, triggerName, msg.SendAt.Format(time.RFC3339))
	return msg, nil
}

// DispatchDue 取出所有到期的 pending 訊息並逐筆發送。
// 每筆先以條件更新搶占成 sending，搶占失敗代表別的執行緒已處理，
// 直接略過，因此同一筆訊息不會被重複發送；sent/failed 只在發送
// 結果確定後才寫回。回傳成功發送的筆數。
func (s *ScheduleService) DispatchDue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.db.GetDueScheduledMessages(now, dispatchBatchSize)
	if err != nil {
		return 0, fmt.Errorf("查詢到期訊息失敗: %w", err)
	}
	if len(due) == 0 {
		return 0, nil
	}
	log.Printf("資訊：[ScheduleService] 有 %d 筆到期訊息待發送。\n", len(due))

	sentCount := 0
	for _, msg := range due {
		claimed, err := s.db.ClaimScheduledMessage(msg.ID, models.ScheduledSending)
		if err != nil {
			log.Printf("錯誤：[ScheduleService] 搶占訊息 %d 失敗: %v\n", msg.ID, err)
			continue
		}
		if !claimed {
			continue
		}
		if err := s.dispatchOne(ctx, &msg); err != nil {
			log.Printf("錯誤：[ScheduleService] 訊息 %d 發送失敗: %v\n", msg.ID, err)
			s.finish(msg.ID, models.ScheduledFailed, err)
			continue
		}
		s.finish(msg.ID, models.ScheduledSent, nil)
		sentCount++
	}
	return sentCount, nil
}

// dispatchOne 發送單筆已搶占的排程訊息
func (s *ScheduleService) dispatchOne(ctx context.Context, msg *models.ScheduledMessage) error {
	template, err := s.db.GetMessageTemplate(msg.TriggerName)
	if err != nil {
		return fmt.Errorf("查詢訊息樣板失敗: %w", err)
	}
	if template == nil {
		return fmt.Errorf("trigger '%s' 的訊息樣板已不存在", msg.TriggerName)
	}
	session, err := s.db.GetSessionByID(msg.SessionID)
	if err != nil {
		return fmt.Errorf("查詢場次失敗: %w", err)
	}
	if session == nil {
		return fmt.Errorf("場次 %s 已不存在", msg.SessionID)
	}
	player, err := s.db.GetPlayerByID(session.PlayerID)
	if err != nil {
		return fmt.Errorf("查詢球員失敗: %w", err)
	}
	if player == nil {
		return fmt.Errorf("球員 %d 已不存在", session.PlayerID)
	}
	if !player.Phone.Valid || player.Phone.String == "" {
		return fmt.Errorf("球員 %d 沒有電話號碼", player.ID)
	}
	return s.notify.SendSMSDirect(ctx, msg.SessionID, player.Phone.String, template.Body)
}

// finish 寫回訊息的最終狀態，寫入失敗只記警告
func (s *ScheduleService) finish(id int64, status models.ScheduledMessageStatus, dispatchErr error) {
	var errMsg sql.NullString
	if dispatchErr != nil {
		errMsg = sql.NullString{String: dispatchErr.Error(), Valid: true}
	}
	if err := s.db.FinishScheduledMessage(id, status, errMsg); err != nil {
		log.Printf("警告：[ScheduleService] 更新訊息 %d 最終狀態失敗: %v\n", id, err)
	}
}
