package extract

import (
	"strings"

	"github.com/AlexViridi/TandoorRecipeMigration/internal/reader"
)

const (
	textBlockBegin = "-----BEGIN RECIPE TEXT-----"
	textBlockEnd   = "-----END RECIPE TEXT-----"
)

// BuildSystemPrompt composes the fixed instruction set for recipe
// transcription. The wording is deliberately stable: it is part of the
// extraction contract, not per-request input.
func BuildSystemPrompt() string {
	parts := []string{
		"You are a recipe transcriber. Return ONLY JSON that matches the provided JSON Schema.",
		"Preserve the source language of the recipe verbatim. Never translate names, ingredients, or instructions.",
		"Split each ingredient line into amount, unit and name when those parts are present; put remaining detail into 'note'.",
		"Keep amounts exactly as written, including fractions like 1/2. Do not convert units.",
		"Keep the preparation steps in exactly the order they are given.",
		"Silently correct obvious transcription or scanning typos without changing the language or wording.",
		"Never output null. If a field is not present in the source, omit it.",
	}
	return strings.Join(parts, " ")
}

// BuildUserText renders the textual half of the user message. For text
// content the recipe is embedded between explicit markers so the model
// cannot confuse instructions with source text; for binary content the
// message just points at the attachment.
func BuildUserText(content reader.Content, fileName string) string {
	var b strings.Builder
	if fileName != "" {
		b.WriteString("Source file: ")
		b.WriteString(fileName)
		b.WriteString("\n")
	}
	if content.IsText() {
		b.WriteString("The recipe text follows between the markers.\n\n")
		b.WriteString(textBlockBegin)
		b.WriteString("\n")
		b.WriteString(content.Text)
		b.WriteString("\n")
		b.WriteString(textBlockEnd)
	} else {
		b.WriteString("The recipe is attached as a file. Transcribe it completely.")
	}
	return b.String()
}
