package format

import "strings"

var mdV1Replacer = strings.NewReplacer(
	"_", `\_`,
	"*", `\*`,
	"[", `\[`,
	"`", "\\`",
)

// EscapeMarkdown escapes characters that Telegram's Markdown (v1) parse mode
// treats as formatting. Inspector-supplied text must pass through here before
// it is embedded into a Markdown message.
func EscapeMarkdown(text string) string {
	return mdV1Replacer.Replace(text)
}
