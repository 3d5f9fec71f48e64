package translator

import (
	"fmt"

	"dialect-translator/internal/models"
)

const promptTemplate = `Translate the following text accurately from %[1]s Kurdish to %[2]s Kurdish. Provide ONLY the translated text itself, without any additional explanations, introductions, or conversational phrases.

Original Text (%[1]s Kurdish):
"%[3]s"

Translated Text (%[2]s Kurdish):`

// BuildPrompt builds the single instruction sent to the model. The text is
// embedded verbatim.
func BuildPrompt(text string, source, target models.Dialect) string {
	return fmt.Sprintf(promptTemplate, source, target, text)
}
