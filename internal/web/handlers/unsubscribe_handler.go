package handlers

import (
	"encoding/base64"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
)

// UnsubscribeHandler 處理 GET /unsubscribe 的電子郵件退訂頁
type UnsubscribeHandler struct {
	db       DBStore
	template *template.Template
}

// unsubscribePageData 傳遞給 HTML 範本的數據
type unsubscribePageData struct {
	Success bool
	Message string
}

// NewUnsubscribeHandler 建立一個 UnsubscribeHandler
func NewUnsubscribeHandler(db DBStore, templateBasePath string) (*UnsubscribeHandler, error) {
	if db == nil {
		return nil, fmt.Errorf("UnsubscribeHandler：DBStore 不得為空")
	}
	tmplPath := filepath.Join(templateBasePath, "unsubscribe.html")
	tmpl, err := template.ParseFiles(tmplPath)
	if err != nil {
		return nil, fmt.Errorf("UnsubscribeHandler：解析範本 '%s' 失敗: %w", tmplPath, err)
	}
	return &UnsubscribeHandler{db: db, template: tmpl}, nil
}

// unsubscribeToken 回傳 player_id 對應的退訂 token（base64，去除填充）
func unsubscribeToken(playerID int64) string {
	return base64.RawStdEncoding.EncodeToString([]byte(strconv.FormatInt(playerID, 10)))
}

// ServeHTTP 實現 http.Handler 介面。
// token 必須等於 base64(player_id) 去除填充；不符時只顯示錯誤頁，
// 不會更動任何訂閱狀態。
func (h *UnsubscribeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "僅支援 GET 方法", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	playerID, err := strconv.ParseInt(q.Get("player_id"), 10, 64)
	token := q.Get("token")
	if err != nil || playerID <= 0 || token == "" {
		h.render(w, http.StatusBadRequest, unsubscribePageData{
			Success: false,
			Message: "退訂連結無效，請使用電子郵件中的原始連結。",
		})
		return
	}

	if token != unsubscribeToken(playerID) {
		log.Printf("警告：[UnsubscribeHandler] 球員 %d 的退訂 token 不符。\n", playerID)
		h.render(w, http.StatusForbidden, unsubscribePageData{
			Success: false,
			Message: "退訂連結無效，請使用電子郵件中的原始連結。",
		})
		return
	}

	player, err := h.db.GetPlayerByID(playerID)
	if err != nil {
		log.Printf("錯誤：[UnsubscribeHandler] 查詢球員 %d 失敗: %v\n", playerID, err)
		h.render(w, http.StatusInternalServerError, unsubscribePageData{
			Success: false,
			Message: "系統發生錯誤，請稍後再試。",
		})
		return
	}
	if player == nil {
		h.render(w, http.StatusNotFound, unsubscribePageData{
			Success: false,
			Message: "找不到對應的訂閱資料。",
		})
		return
	}

	if err := h.db.SetPlayerEmailOptIn(playerID, false); err != nil {
		log.Printf("錯誤：[UnsubscribeHandler] 更新球員 %d 的訂閱狀態失敗: %v\n", playerID, err)
		h.render(w, http.StatusInternalServerError, unsubscribePageData{
			Success: false,
			Message: "系統發生錯誤，請稍後再試。",
		})
		return
	}

	log.Printf("資訊：[UnsubscribeHandler] 球員 %d 已退訂電子郵件。\n", playerID)
	h.render(w, http.StatusOK, unsubscribePageData{
		Success: true,
		Message: "已成功退訂，您將不會再收到我們的電子郵件。",
	})
}

func (h *UnsubscribeHandler) render(w http.ResponseWriter, statusCode int, data unsubscribePageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := h.template.Execute(w, data); err != nil {
		log.Printf("錯誤：[UnsubscribeHandler] 渲染範本失敗: %v\n", err)
	}
}
