package relay

import (
	"fmt"

	"github.com/ghrelay/ghrelay/internal/utils"
)

const (
	OriginTelegram = "Telegram"
	OriginURL      = "URL"

	UploadTitle     = "📤 **Uploading to GitHub...**"
	UploadStartText = UploadTitle + "\n⏳ Starting..."

	BusyText     = "⚠️ You have an active upload. Please wait for it to complete."
	TooLargeText = "❌ File too large. Maximum size is 4GB."
	NoUploadText = "No active uploads"

	InvalidInputText = "❓ **Invalid Input**\n\n" +
		"Please send:\n" +
		"• A file (drag & drop or attach)\n" +
		"• A direct download URL\n\n" +
		"Use /help for more information."

	StartText = "🤖 **GitHub Release Uploader Bot**\n\n" +
		"Send me a file or a URL to upload to GitHub release!\n\n" +
		"**Commands:**\n" +
		"• Send any file (up to 4GB)\n" +
		"• Send a URL to download and upload\n" +
		"• /help - Show this message\n" +
		"• /status - Check upload status"
)

func DownloadTitle(origin string) string {
	return fmt.Sprintf("📥 **Downloading from %s...**", origin)
}

func DownloadStartText(origin string) string {
	return DownloadTitle(origin) + "\n⏳ Starting..."
}

func HelpText(repo, tag string) string {
	return "**How to use:**\n\n" +
		"1. **File Upload**: Send any file directly to the bot\n" +
		"2. **URL Upload**: Send a URL pointing to a file\n\n" +
		"**Features:**\n" +
		"• Supports files up to 4GB\n" +
		"• Real-time progress updates\n" +
		"• Direct upload to GitHub releases\n" +
		"• Returns download URL after upload\n\n" +
		fmt.Sprintf("**Target Repository:** %s\n", repo) +
		fmt.Sprintf("**Release Tag:** %s", tag)
}

func StatusText(info SessionInfo) string {
	return fmt.Sprintf("📊 Active upload: %s - %s", info.Filename, info.Status)
}

// SuccessText reports a finished relay. Text wrapped in ** renders bold.
func SuccessText(res *Result) string {
	text := fmt.Sprintf("✅ **Upload Complete!**\n\n📁 **File:** %s\n📊 **Size:** %s\n", res.Filename, utils.FormatSize(res.Size))
	if res.ContentType != "" {
		text += fmt.Sprintf("🏷 **Type:** %s\n", res.ContentType)
	}
	return text + fmt.Sprintf("🔗 **Download URL:**\n%s", res.URL)
}

func FailureText(err error) string {
	return fmt.Sprintf("❌ **Upload Failed**\n\n**Error:** %s", err)
}
