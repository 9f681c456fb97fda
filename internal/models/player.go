package models

import (
	"database/sql"
	"time"
)

// Player 對應 players 資料表。
// 本切片只用到聯絡方式與電子郵件訂閱旗標，CRM 其他欄位不在此列。
type Player struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Phone       sql.NullString `json:"phone"`
	Email       sql.NullString `json:"email"`
	EmailOptIn  bool           `json:"email_opt_in"`
	SlackUserID sql.NullString `json:"slack_user_id"`
	CreatedAt   time.Time      `json:"created_at"`
}
