package config

import "time"

// Default values for configuration
const (
	// Log defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// Server defaults
	DefaultServerAddr = ":8000"

	// AI defaults
	DefaultAIModel       = "gemini-2.0-flash"
	DefaultAITemperature = 0.8
	DefaultAITimeout     = 2 * time.Minute
	DefaultAIInstruction = "你是一個溫暖的飲食小幫手。回答時先簡短回應使用者，再附一句飲食小提醒。"

	// Classifier defaults
	DefaultClassifierBackend = "spoonacular"
	DefaultClassifierBaseURL = "https://api.spoonacular.com/food/images/classify"
	DefaultClassifierModel   = "gemini-2.0-flash"
	DefaultClassifierTimeout = 30 * time.Second

	// Nutrition asset defaults
	DefaultNutritionDBPath       = ":memory:"
	DefaultNutritionTablePath    = "nutrition.csv"
	DefaultNutritionLabelMapPath = "label_zh.json"

	// Scheduler defaults
	DefaultMaintenanceSchedule = "0 0 4 * * *"
)

// Default user-facing reply templates. FoodFact takes name, kcal, protein,
// fat, advice; UnknownFood takes the classifier label.
var DefaultMessages = MessagesConfig{
	FoodFact:        "%s ≈ %.0f kcal\n蛋白質 %.0f g、脂肪 %.0f g\n建議：%s",
	UnknownFood:     "辨識到「%s」，但暫時沒有營養資料 QQ",
	UnreadableImage: "看不太出來這是什麼食物，換張清楚一點的照片試試 🙏",
	ChatApology:     "抱歉，我現在忙不過來，晚點再跟我聊聊 🙏 記得均衡飲食、多喝水喔！",
	ImageError:      "圖片處理失敗了，請再傳一次試試。",
}
