package media

import (
	"SwingLab-backend/internal/config"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// FileSystemStorage 負責揮棒與訓練影片在本地檔案系統上的存取
type FileSystemStorage struct {
	basePath string // 設定檔中的影片儲存根路徑
}

// NewFileSystemStorage 建立 FileSystemStorage 實例。
// 會檢查根路徑是否存在，不存在則嘗試建立。
func NewFileSystemStorage(mediaCfg config.MediaConfig) (*FileSystemStorage, error) {
	if mediaCfg.VideoPath == "" {
		return nil, fmt.Errorf("Media 設定中的 videoPath 不得為空")
	}

	absBasePath, err := filepath.Abs(mediaCfg.VideoPath)
	if err != nil {
		return nil, fmt.Errorf("無法取得影片儲存根路徑的絕對路徑 '%s': %w", mediaCfg.VideoPath, err)
	}

	if _, err := os.Stat(absBasePath); os.IsNotExist(err) {
		log.Printf("資訊：影片儲存根目錄 '%s' 不存在，正在嘗試建立...", absBasePath)
		if err := os.MkdirAll(absBasePath, os.ModePerm); err != nil {
			return nil, fmt.Errorf("無法建立影片儲存根目錄 '%s': %w", absBasePath, err)
		}
		log.Printf("資訊：影片儲存根目錄 '%s' 建立成功。", absBasePath)
	} else if err != nil {
		return nil, fmt.Errorf("檢查影片儲存根目錄 '%s' 時發生錯誤: %w", absBasePath, err)
	}

	log.Printf("資訊：FileSystemStorage 初始化成功，影片根路徑設定為: %s", absBasePath)
	return &FileSystemStorage{basePath: absBasePath}, nil
}

// safeSegment 將外部提供的識別字串壓成單一路徑片段，
// 去除目錄分隔符與 .. 成分，避免路徑遍歷。
func safeSegment(s string) string {
	seg := filepath.Base(filepath.Clean(s))
	if seg == "." || seg == ".." || seg == string(filepath.Separator) {
		return "_"
	}
	return seg
}

// SwingVideoKey 回傳揮棒影片的確定性相對路徑。
// 同一 (場次, 索引) 重新上傳會覆寫同一個檔案。
// 場次 ID 來自客戶端，必須先壓成單一路徑片段。
func SwingVideoKey(sessionID string, swingIndex int, ext string) string {
	if ext == "" {
		ext = ".mp4"
	}
	return filepath.Join("sessions", safeSegment(sessionID), fmt.Sprintf("swing_%02d%s", swingIndex, ext))
}

// DrillVideoKey 回傳訓練影片的相對路徑
func DrillVideoKey(sourceName, sourceID, fileName string) string {
	return filepath.Join("drills", safeSegment(sourceName), safeSegment(sourceID), fileName)
}

// resolveWithinBase 將相對路徑解析成根目錄下的絕對路徑；
// 解析結果若逸出根目錄則一律拒絕。
func (fs *FileSystemStorage) resolveWithinBase(relativePath string) (string, error) {
	target := filepath.Join(fs.basePath, relativePath)
	if target != fs.basePath && !strings.HasPrefix(target, fs.basePath+string(os.PathSeparator)) {
		return "", fmt.Errorf("相對路徑 '%s' 逸出影片儲存根目錄", relativePath)
	}
	return target, nil
}

// SaveVideo 將影片數據寫到相對於根路徑的 relativePath。
// 回傳實際寫入的相對路徑，供資料庫儲存與後續查找。
func (fs *FileSystemStorage) SaveVideo(relativePath string, videoData []byte) (string, error) {
	if relativePath == "" {
		return "", fmt.Errorf("SaveVideo 參數 relativePath 不得為空")
	}
	if len(videoData) == 0 {
		return "", fmt.Errorf("SaveVideo 參數 videoData 不得為空")
	}

	targetPath, err := fs.resolveWithinBase(relativePath)
	if err != nil {
		return "", err
	}
	targetDir := filepath.Dir(targetPath)

	if _, err := os.Stat(targetDir); os.IsNotExist(err) {
		log.Printf("資訊：目標目錄 '%s' 不存在，正在嘗試建立...", targetDir)
		if err := os.MkdirAll(targetDir, os.ModePerm); err != nil {
			return "", fmt.Errorf("無法建立目標目錄 '%s': %w", targetDir, err)
		}
	}

	log.Printf("資訊：正在將影片儲存到 '%s'", targetPath)
	if err := os.WriteFile(targetPath, videoData, 0644); err != nil {
		return "", fmt.Errorf("無法寫入影片檔案到 '%s': %w", targetPath, err)
	}
	log.Printf("資訊：影片成功儲存到 '%s'", targetPath)
	return relativePath, nil
}

// GetVideoAbsolutePath 根據資料庫中的相對路徑取得絕對路徑，並驗證檔案存在
func (fs *FileSystemStorage) GetVideoAbsolutePath(relativePath string) (string, error) {
	if relativePath == "" {
		return "", fmt.Errorf("GetVideoAbsolutePath 參數 relativePath 不得為空")
	}
	absPath, err := fs.resolveWithinBase(relativePath)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("影片檔案在路徑 '%s' (基於相對路徑 '%s') 上不存在: %w", absPath, relativePath, err)
	} else if err != nil {
		return "", fmt.Errorf("檢查影片檔案 '%s' 時發生錯誤: %w", absPath, err)
	}
	return absPath, nil
}

// ReadVideo 讀取影片內容
func (fs *FileSystemStorage) ReadVideo(relativePath string) ([]byte, error) {
	absolutePath, err := fs.GetVideoAbsolutePath(relativePath)
	if err != nil {
		return nil, fmt.Errorf("無法獲取影片絕對路徑: %w", err)
	}
	videoData, err := os.ReadFile(absolutePath)
	if err != nil {
		return nil, fmt.Errorf("無法讀取影片檔案 '%s': %w", absolutePath, err)
	}
	return videoData, nil
}

// DeleteVideo 刪除影片檔案
func (fs *FileSystemStorage) DeleteVideo(relativePath string) error {
	absolutePath, err := fs.GetVideoAbsolutePath(relativePath)
	if err != nil {
		return fmt.Errorf("無法獲取待刪除影片的絕對路徑: %w", err)
	}
	log.Printf("資訊：正在從 '%s' 刪除影片...", absolutePath)
	if err := os.Remove(absolutePath); err != nil {
		return fmt.Errorf("無法刪除影片檔案 '%s': %w", absolutePath, err)
	}
	return nil
}
