package handlers

import (
	"SwingLab-backend/internal/models"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
)

// maxUploadBytes 是單支揮棒影片的大小上限 (100MB)
const maxUploadBytes = 100 << 20

// SwingUploader 定義上傳編排器（由 services.UploadService 實現）
type SwingUploader interface {
	UploadSwing(sessionID string, swingIndex int, fileName string, data []byte) (*models.UploadResult, error)
}

// UploadSwingHandler 處理 POST /api/upload-swing 的 multipart 上傳
type UploadSwingHandler struct {
	uploader SwingUploader
}

// NewUploadSwingHandler 建立一個 UploadSwingHandler
func NewUploadSwingHandler(uploader SwingUploader) *UploadSwingHandler {
	if uploader == nil {
		log.Panicln("UploadSwingHandler：SwingUploader 不得為空")
	}
	return &UploadSwingHandler{uploader: uploader}
}

// ServeHTTP 實現 http.Handler 介面
func (h *UploadSwingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if handlePreflight(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "僅支援 POST 方法", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, fmt.Errorf("%w: 解析 multipart 表單失敗: %v", models.ErrInvalidArgument, err))
		return
	}

	sessionID := r.FormValue("sessionId")
	swingIndexStr := r.FormValue("swingIndex")
	swingIndex, err := strconv.Atoi(swingIndexStr)
	if err != nil {
		writeError(w, fmt.Errorf("%w: swingIndex '%s' 不是整數", models.ErrInvalidArgument, swingIndexStr))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, fmt.Errorf("%w: 缺少影片檔案欄位 'file'", models.ErrInvalidArgument))
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, fmt.Errorf("讀取上傳檔案失敗: %w", err))
		return
	}

	log.Printf("資訊：[UploadSwingHandler] 收到上傳：場次 %s 第 %d 支 (%s, %d bytes)\n",
		sessionID, swingIndex, header.Filename, len(data))

	result, err := h.uploader.UploadSwing(sessionID, swingIndex, header.Filename, data)
	if err != nil {
		log.Printf("錯誤：[UploadSwingHandler] 上傳處理失敗: %v\n", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":         true,
		"swingIndex":      result.SwingIndex,
		"swingsUploaded":  result.SwingsUploaded,
		"swingsRequired":  result.SwingsRequired,
		"readyForPayment": result.ReadyForPayment,
		"videoUrl":        result.VideoURL,
	})
}
