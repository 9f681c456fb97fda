package gemini

import (
	"SwingLab-backend/internal/models"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Client 結構用於與 Gemini API 互動
type Client struct {
	scoringModel *genai.GenerativeModel
	taggingModel *genai.GenerativeModel
}

// NewClient 建立一個 Gemini 客戶端實例
func NewClient(apiKey string, scoringModelName string, taggingModelName string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API Key 不得為空")
	}
	if scoringModelName == "" {
		scoringModelName = "gemini-1.5-flash-latest"
		log.Printf("警告：[Gemini Client] 未提供評分模型名稱，使用預設值: %s\n", scoringModelName)
	}
	if taggingModelName == "" {
		taggingModelName = "gemini-1.5-flash-latest"
		log.Printf("警告：[Gemini Client] 未提供標記模型名稱，使用預設值: %s\n", taggingModelName)
	}

	ctx := context.Background()
	genaiSDKClient, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("無法建立 Gemini GenAI SDK 客戶端: %w", err)
	}

	scoreModel := genaiSDKClient.GenerativeModel(scoringModelName)
	var scoreGenConfig genai.GenerationConfig
	scoreGenConfig.ResponseMIMEType = "application/json"
	scoreModel.GenerationConfig = scoreGenConfig
	log.Printf("資訊：[Gemini Client] 揮棒評分模型 '%s' 初始化成功。\n", scoringModelName)

	tagModel := genaiSDKClient.GenerativeModel(taggingModelName)
	var tagGenConfig genai.GenerationConfig
	tagGenConfig.ResponseMIMEType = "application/json"
	tagModel.GenerationConfig = tagGenConfig
	log.Printf("資訊：[Gemini Client] 訓練影片標記模型 '%s' 初始化成功。\n", taggingModelName)

	return &Client{
		scoringModel: scoreModel,
		taggingModel: tagModel,
	}, nil
}

// cleanJSONString 清理從 LLM 收到的可能包含雜質的 JSON 字串
func cleanJSONString(rawResponse string) string {
	cleaned := strings.TrimSpace(rawResponse)

	// 移除可能的 markdown 代碼塊標記
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		if strings.HasSuffix(cleaned, "```") {
			cleaned = strings.TrimSuffix(cleaned, "```")
		}
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		if strings.HasSuffix(cleaned, "```") {
			cleaned = strings.TrimSuffix(cleaned, "```")
		}
	}
	cleaned = strings.TrimSpace(cleaned)

	// 尋找最外層的 JSON 結構
	var potentialJSON string
	firstBrace := strings.Index(cleaned, "{")
	lastBrace := strings.LastIndex(cleaned, "}")
	firstBracket := strings.Index(cleaned, "[")
	lastBracket := strings.LastIndex(cleaned, "]")
	isObject := firstBrace != -1 && lastBrace != -1 && lastBrace > firstBrace
	isArray := firstBracket != -1 && lastBracket != -1 && lastBracket > firstBracket

	if isObject && (!isArray || (isArray && firstBrace < firstBracket)) {
		potentialJSON = cleaned[firstBrace : lastBrace+1]
	} else if isArray && (!isObject || (isObject && firstBracket < firstBrace)) {
		potentialJSON = cleaned[firstBracket : lastBracket+1]
	} else {
		potentialJSON = cleaned
	}
	potentialJSON = strings.TrimSpace(potentialJSON)

	// 處理 UTF-8 編碼問題
	if !utf8.ValidString(potentialJSON) {
		log.Println("警告：[Gemini Client Clean] 回應包含無效的 UTF-8 字元，嘗試替換...")
		potentialJSON = strings.ToValidUTF8(potentialJSON, "")
	}

	// 移除控制字元
	var sb strings.Builder
	for _, r := range potentialJSON {
		if (r >= 0 && r < 9) || (r > 10 && r < 13) || (r > 13 && r < 32) || r == 127 {
			continue
		}
		sb.WriteRune(r)
	}
	finalCleaned := sb.String()
	finalCleaned = strings.TrimPrefix(finalCleaned, "\uFEFF")

	return finalCleaned
}

// ScoreSwings 將場次的揮棒影片連同評分 Prompt 送交 Gemini，
// 解析回傳的 4B 評分 JSON。videoPaths 依揮棒索引排序。
func (c *Client) ScoreSwings(ctx context.Context, videoPaths []string, prompt string) (*models.AnalysisScores, error) {
	log.Printf("資訊：[Gemini Client] ScoreSwings - 開始評分，共 %d 支揮棒影片。\n", len(videoPaths))
	if len(videoPaths) == 0 {
		return nil, fmt.Errorf("要評分的影片清單不得為空")
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("評分的 Prompt 不得為空")
	}

	requestParts := []genai.Part{genai.Text(prompt)}
	for _, videoPath := range videoPaths {
		videoData, err := os.ReadFile(videoPath)
		if err != nil {
			return nil, fmt.Errorf("讀取影片檔案 %s 失敗: %w", videoPath, err)
		}
		requestParts = append(requestParts, genai.Blob{MIMEType: videoMIMEType(videoPath), Data: videoData})
	}

	log.Println("資訊：[Gemini Client] ScoreSwings - 正在向 Gemini API 發送請求...")
	resp, err := c.scoringModel.GenerateContent(ctx, requestParts...)
	if err != nil {
		return nil, fmt.Errorf("Gemini API 揮棒評分 GenerateContent 失敗: %w", err)
	}
	rawResponseText, err := extractResponseText(resp, "揮棒評分")
	if err != nil {
		return nil, err
	}

	cleanedJSONString := cleanJSONString(rawResponseText)
	if !json.Valid([]byte(cleanedJSONString)) {
		log.Printf("錯誤：[Gemini Client] ScoreSwings - 清理後的字串仍然不是有效的 JSON:\n%s\n", cleanedJSONString)
		return nil, fmt.Errorf("清理後的字串不是有效的 JSON (揮棒評分)")
	}
	var scores models.AnalysisScores
	if err := json.Unmarshal([]byte(cleanedJSONString), &scores); err != nil {
		return nil, fmt.Errorf("無法將 Gemini API 回應解析為 JSON (揮棒評分): %w", err)
	}
	log.Println("資訊：[Gemini Client] ScoreSwings - 評分 JSON 解析成功。")
	return &scores, nil
}

// TagDrillTranscript 將訓練影片逐字稿連同分類法 Prompt 送交 Gemini，
// 回傳清理後的 JSON 字串，由呼叫端解析為 DrillAnalysis。
func (c *Client) TagDrillTranscript(ctx context.Context, transcript string, prompt string) (string, error) {
	log.Printf("資訊：[Gemini Client] TagDrillTranscript - 開始標記逐字稿 (長度: %d 字元)\n", len(transcript))
	if strings.TrimSpace(transcript) == "" {
		return "", fmt.Errorf("要標記的逐字稿不得為空")
	}
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("標記的 Prompt 不得為空")
	}

	requestParts := []genai.Part{genai.Text(prompt), genai.Text(transcript)}
	log.Println("資訊：[Gemini Client] TagDrillTranscript - 正在向 Gemini API 發送請求...")
	resp, err := c.taggingModel.GenerateContent(ctx, requestParts...)
	if err != nil {
		return "", fmt.Errorf("Gemini API 逐字稿標記 GenerateContent 失敗: %w", err)
	}
	rawResponseText, err := extractResponseText(resp, "逐字稿標記")
	if err != nil {
		return "", err
	}

	cleanedJSONString := cleanJSONString(rawResponseText)
	if !json.Valid([]byte(cleanedJSONString)) {
		log.Printf("錯誤：[Gemini Client] TagDrillTranscript - 清理後的字串仍然不是有效的 JSON:\n%s\n", cleanedJSONString)
		return "", fmt.Errorf("清理後的字串不是有效的 JSON (逐字稿標記)")
	}
	return cleanedJSONString, nil
}

// extractResponseText 從 Gemini 回應中取出文字內容，檢查安全阻擋
func extractResponseText(resp *genai.GenerateContentResponse, operation string) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("Gemini API %s回應無效或為空 (nil response or no candidates)", operation)
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		if candidate.FinishReason != genai.FinishReasonStop && candidate.FinishReason != genai.FinishReasonUnspecified {
			if candidate.SafetyRatings != nil {
				for _, rating := range candidate.SafetyRatings {
					log.Printf("警告：[Gemini Client] 安全評級 (%s) - Category: %s, Probability: %s\n", operation, rating.Category, rating.Probability)
				}
			}
			return "", fmt.Errorf("Gemini API %s回應無效或內容被阻止，原因: %s", operation, candidate.FinishReason.String())
		}
		return "", fmt.Errorf("Gemini API %s回應無效或為空 (no content parts, FinishReason: %s)", operation, candidate.FinishReason.String())
	}
	var responseTextBuilder strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseTextBuilder.WriteString(string(txt))
		} else {
			log.Printf("警告：[Gemini Client] %s - 收到非預期的 Part 類型: %T\n", operation, part)
		}
	}
	rawResponseText := responseTextBuilder.String()
	if strings.TrimSpace(rawResponseText) == "" {
		return "", fmt.Errorf("Gemini API %s回傳的內容為空", operation)
	}
	return rawResponseText, nil
}

// videoMIMEType 依副檔名推斷影片 MIME 類型
func videoMIMEType(videoPath string) string {
	switch strings.ToLower(filepath.Ext(videoPath)) {
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".mpeg", ".mpg":
		return "video/mpeg"
	case ".avi":
		return "video/x-msvideo"
	case ".wmv":
		return "video/x-ms-wmv"
	case ".flv":
		return "video/x-flv"
	case ".webm":
		return "video/webm"
	default:
		log.Printf("警告：[Gemini Client] 未知的影片副檔名 '%s'，以 video/mp4 處理。\n", filepath.Ext(videoPath))
		return "video/mp4"
	}
}
