package handlers

import (
	"SwingLab-backend/internal/config"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// VideoHandler 負責提供影片檔案串流
type VideoHandler struct {
	mediaBasePath string // 影片儲存的絕對根路徑
}

// NewVideoHandler 建立一個 VideoHandler 實例
func NewVideoHandler(mediaCfg config.MediaConfig) (*VideoHandler, error) {
	if mediaCfg.VideoPath == "" {
		return nil, fmt.Errorf("VideoHandler: Media 設定中的 videoPath 不得為空")
	}
	absBasePath, err := filepath.Abs(mediaCfg.VideoPath)
	if err != nil {
		return nil, fmt.Errorf("VideoHandler: 無法取得 videoPath 的絕對路徑 '%s': %w", mediaCfg.VideoPath, err)
	}
	log.Printf("資訊：[VideoHandler] 初始化成功，影片服務根路徑: %s", absBasePath)
	return &VideoHandler{mediaBasePath: absBasePath}, nil
}

// ServeHTTP 實現 http.Handler 介面。
// URL 路徑是 /media/{影片在儲存根路徑下的相對路徑}，
// 例如 /media/sessions/abc123/swing_00.mp4
func (h *VideoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	relativePath := strings.TrimPrefix(r.URL.Path, "/media/")
	if relativePath == "" || strings.HasSuffix(relativePath, "/") {
		http.Error(w, "無效的影片路徑", http.StatusBadRequest)
		return
	}

	// filepath.Join 會清理路徑；再用前綴檢查擋掉 ../ 的路徑遍歷。
	// 前綴必須帶分隔符比對，否則 /data/videos-evil 會通過 /data/videos 的檢查
	fullPath := filepath.Join(h.mediaBasePath, relativePath)
	cleanedFullPath, err := filepath.Abs(fullPath)
	if err != nil {
		log.Printf("錯誤：[VideoHandler] 無法解析影片絕對路徑 '%s': %v", fullPath, err)
		http.Error(w, "內部伺服器錯誤", http.StatusInternalServerError)
		return
	}
	if !strings.HasPrefix(cleanedFullPath, h.mediaBasePath+string(os.PathSeparator)) {
		log.Printf("警告：[VideoHandler] 偵測到潛在的路徑遍歷嘗試: '%s' (解析為 '%s')", relativePath, cleanedFullPath)
		http.Error(w, "禁止存取", http.StatusForbidden)
		return
	}

	if _, err := os.Stat(cleanedFullPath); os.IsNotExist(err) {
		log.Printf("錯誤：[VideoHandler] 請求的影片檔案不存在: %s", cleanedFullPath)
		http.NotFound(w, r)
		return
	} else if err != nil {
		log.Printf("錯誤：[VideoHandler] 檢查影片檔案 '%s' 時發生錯誤: %v", cleanedFullPath, err)
		http.Error(w, "內部伺服器錯誤", http.StatusInternalServerError)
		return
	}

	// http.ServeFile 會自動處理 Content-Type 與 Range 請求（影片跳轉）
	http.ServeFile(w, r, cleanedFullPath)
}
