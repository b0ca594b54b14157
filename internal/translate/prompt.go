package translate

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"cuesync/internal/page"
)

// SystemPrompt frames chat-style providers.
const SystemPrompt = "You are a professional subtitle translator specializing in educational content. " +
	"Your goal is to provide concise translations that fit within the original time constraints " +
	"for Text-to-Speech (TTS) synchronization."

// BuildPrompt renders the translation instructions for text.
func BuildPrompt(text, targetLang string, course page.Context) string {
	if course.Title == "" {
		course.Title = page.UnknownCourse
	}
	var b strings.Builder
	b.WriteString("Translate the following educational course subtitles to ")
	b.WriteString(LanguageName(targetLang))
	b.WriteString(".\n\n**Course Context:**\n")
	b.WriteString(course.Describe())
	b.WriteString("\n\n**Instructions:**\n")
	b.WriteString("- **CRITICAL:** Translate concisely. The translated text length must be close to the original to ensure Text-to-Speech (TTS) synchronization.\n")
	b.WriteString("- Avoid expanding sentences; prefer shorter synonyms where accurate.\n")
	b.WriteString("- Translate technical terms accurately based on the course subject.\n")
	b.WriteString("- Keep WEBVTT header and all timestamps (HH:MM:SS.mmm --> HH:MM:SS.mmm) EXACTLY as they are.\n")
	b.WriteString("- Use appropriate professional terminology for this field.\n")
	b.WriteString("\n**Content to translate:**\n\n")
	b.WriteString(text)
	return b.String()
}

// LanguageName turns a BCP 47 tag such as "zh-CN" into an English name the
// model understands. Values that are not tags ("Vietnamese") pass through.
func LanguageName(targetLang string) string {
	targetLang = strings.TrimSpace(targetLang)
	tag, err := language.Parse(targetLang)
	if err != nil {
		return targetLang
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return targetLang
}
