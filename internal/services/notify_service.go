package services

import (
	"SwingLab-backend/internal/models"
	"SwingLab-backend/internal/web/handlers"
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"
)

// GradeLabel 把 0-100 的分數換成球探等第。
// 門檻對四項分項分數與綜合分一體適用。
func GradeLabel(score int) string {
	switch {
	case score >= 70:
		return "Plus-Plus"
	case score >= 60:
		return "Plus"
	case score >= 50:
		return "Average"
	case score >= 40:
		return "Fringe Average"
	default:
		return "Well Below Average"
	}
}

// NotifyService 是通知發送器：把完成的 4B 評分整理成報告文字，
// 依球員設定經簡訊閘道與 Slack 頻道送出，每次嘗試都寫入 message_logs。
type NotifyService struct {
	db            handlers.DBStore
	smsSender     SMSSender
	chatSender    ChatSender
	chatChannelID string
}

// NewNotifyService 建立 NotifyService 實例。
// smsSender 與 chatSender 允許其一為 nil（該通道視為未設定）。
func NewNotifyService(db handlers.DBStore, smsSender SMSSender, chatSender ChatSender, chatChannelID string) (*NotifyService, error) {
	if db == nil {
		return nil, fmt.Errorf("NotifyService：DBStore 不得為空")
	}
	if smsSender == nil && chatSender == nil {
		return nil, fmt.Errorf("NotifyService：至少需要一個發送通道")
	}
	log.Println("資訊：NotifyService 初始化完成。")
	return &NotifyService{db: db, smsSender: smsSender, chatSender: chatSender, chatChannelID: chatChannelID}, nil
}

// RenderReport 產生結果報告文字。相同輸入必定產生相同文字，
// 欄位順序固定為 Brain、Body、Bat、Ball、綜合分。
func RenderReport(playerName string, scores *models.AnalysisScores) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s 的揮棒分析結果\n", playerName)
	fmt.Fprintf(&b, "Brain: %d (%s)\n", scores.Brain, GradeLabel(scores.Brain))
	fmt.Fprintf(&b, "Body: %d (%s)\n", scores.Body, GradeLabel(scores.Body))
	fmt.Fprintf(&b, "Bat: %d (%s)\n", scores.Bat, GradeLabel(scores.Bat))
	fmt.Fprintf(&b, "Ball: %d (%s)\n", scores.Ball, GradeLabel(scores.Ball))
	fmt.Fprintf(&b, "綜合評價: %d (%s)", scores.Composite, GradeLabel(scores.Composite))
	if scores.MotorProfile != nil && scores.MotorProfile.Valid {
		fmt.Fprintf(&b, "\n動作型態: %s", scores.MotorProfile.String)
	}
	return b.String()
}

// SendResults 對完成分析的場次發送結果通知。
// 場次必須是 complete 且已有評分；任一通道的上游失敗在記錄後以 ErrUpstream 回報。
func (s *NotifyService) SendResults(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("%w: sessionId 不得為空", models.ErrInvalidArgument)
	}
	session, err := s.db.GetSessionByID(sessionID)
	if err != nil {
		return fmt.Errorf("查詢場次失敗: %w", err)
	}
	if session == nil {
		return fmt.Errorf("%w: 場次 %s 不存在", models.ErrNotFound, sessionID)
	}
	if session.Status != models.SessionStatusComplete {
		return fmt.Errorf("%w: 場次 %s 尚未完成分析 (狀態: %s)", models.ErrInvalidArgument, sessionID, session.Status)
	}
	scores, err := s.db.GetScoresBySession(sessionID)
	if err != nil {
		return fmt.Errorf("查詢評分失敗: %w", err)
	}
	if scores == nil {
		return fmt.Errorf("%w: 場次 %s 沒有評分記錄", models.ErrNotFound, sessionID)
	}
	player, err := s.db.GetPlayerByID(session.PlayerID)
	if err != nil {
		return fmt.Errorf("查詢球員失敗: %w", err)
	}
	if player == nil {
		return fmt.Errorf("%w: 球員 %d 不存在", models.ErrNotFound, session.PlayerID)
	}

	report := RenderReport(player.Name, scores)
	var failures []string

	if s.smsSender != nil && player.Phone.Valid && player.Phone.String != "" {
		sendErr := s.smsSender.SendSMS(ctx, player.Phone.String, report)
		s.logAttempt(sessionID, models.ChannelSMS, player.Phone.String, report, sendErr)
		if sendErr != nil {
			log.Printf("錯誤：[NotifyService] 場次 %s 簡訊發送失敗: %v\n", sessionID, sendErr)
			failures = append(failures, fmt.Sprintf("sms: %v", sendErr))
		}
	}

	if s.chatSender != nil && s.chatChannelID != "" {
		_, sendErr := s.chatSender.SendMessage(s.chatChannelID, report)
		s.logAttempt(sessionID, models.ChannelChat, s.chatChannelID, report, sendErr)
		if sendErr != nil {
			log.Printf("錯誤：[NotifyService] 場次 %s 頻道通知發送失敗: %v\n", sessionID, sendErr)
			failures = append(failures, fmt.Sprintf("chat: %v", sendErr))
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("%w: %s", models.ErrUpstream, strings.Join(failures, "; "))
	}
	log.Printf("資訊：[NotifyService] 場次 %s 結果通知發送完成。\n", sessionID)
	return nil
}

// SendSMSDirect 發送單則簡訊並寫入發送記錄，供排程佇列的發送任務使用。
func (s *NotifyService) SendSMSDirect(ctx context.Context, sessionID string, toNumber string, body string) error {
	if s.smsSender == nil {
		return fmt.Errorf("%w: 簡訊通道未設定", models.ErrUpstream)
	}
	sendErr := s.smsSender.SendSMS(ctx, toNumber, body)
	s.logAttempt(sessionID, models.ChannelSMS, toNumber, body, sendErr)
	if sendErr != nil {
		return fmt.Errorf("%w: %v", models.ErrUpstream, sendErr)
	}
	return nil
}

// logAttempt 把一次發送嘗試寫入 message_logs，寫入失敗只記警告不中斷流程
func (s *NotifyService) logAttempt(sessionID string, channel models.MessageChannel, recipient string, body string, sendErr error) {
	entry := &models.MessageLog{
		SessionID: sql.NullString{String: sessionID, Valid: sessionID != ""},
		Channel:   channel,
		Recipient: recipient,
		Body:      body,
		Success:   sendErr == nil,
		CreatedAt: time.Now(),
	}
	if sendErr != nil {
		entry.ErrorMessage = sql.NullString{String: sendErr.Error(), Valid: true}
	}
	if err := s.db.InsertMessageLog(entry); err != nil {
		log.Printf("警告：[NotifyService] 寫入發送記錄失敗 (%s/%s): %v\n", channel, recipient, err)
	}
}
