package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/unalkalkan/SceneForge/pkg/types"
)

//go:embed planner.md
var plannerSystemPrompt string

const (
	defaultSceneCount = 6
	defaultLanguage   = "en"
)

// Builder turns planning input into a system and user prompt
type Builder func(input types.PlanningInput) (system, user string)

// Build is the default planning prompt builder
func Build(input types.PlanningInput) (string, string) {
	var sb strings.Builder

	sb.WriteString("Create a production plan for the following brief.\n\n")
	sb.WriteString(fmt.Sprintf("Concept: %s\n", strings.TrimSpace(input.Concept)))
	writeField(&sb, "Genre", input.Genre)
	writeField(&sb, "Audience", input.Audience)
	writeField(&sb, "Tone", input.Tone)
	writeField(&sb, "Visual style reference", input.StyleReference)

	sceneCount := input.SceneCount
	if sceneCount <= 0 {
		sceneCount = defaultSceneCount
	}
	sb.WriteString(fmt.Sprintf("Number of scenes: %d\n", sceneCount))

	language := input.Language
	if language == "" {
		language = defaultLanguage
	}
	sb.WriteString(fmt.Sprintf("Language: %s\n", language))

	if len(input.Characters) > 0 {
		sb.WriteString("\nCharacters:\n")
		for _, c := range input.Characters {
			sb.WriteString(fmt.Sprintf("- %s", c.Name))
			if c.Role != "" {
				sb.WriteString(fmt.Sprintf(" (%s)", c.Role))
			}
			if c.Description != "" {
				sb.WriteString(": " + c.Description)
			}
			sb.WriteString("\n")
		}
	}

	if len(input.Constraints) > 0 {
		sb.WriteString("\nConstraints:\n")
		for _, c := range input.Constraints {
			sb.WriteString(fmt.Sprintf("- %s\n", c))
		}
	}

	if notes := strings.TrimSpace(input.Notes); notes != "" {
		sb.WriteString("\nNotes:\n")
		sb.WriteString(notes)
		sb.WriteString("\n")
	}

	sb.WriteString("\nProvide ONLY the JSON object, no additional text.")
	return plannerSystemPrompt, sb.String()
}

func writeField(sb *strings.Builder, label, value string) {
	if value = strings.TrimSpace(value); value != "" {
		sb.WriteString(fmt.Sprintf("%s: %s\n", label, value))
	}
}

const rewriteSystemPrompt = "You are a script editor. Rewrite the text you are given following the instruction. " +
	"Keep the original meaning unless the instruction says otherwise. Reply with the rewritten text only, without quotes or commentary."

// Rewrite builds the prompts for rewriting a single piece of plan text, such
// as an image prompt or a dialogue line
func Rewrite(text, instruction, context string) (string, string) {
	var sb strings.Builder
	if context = strings.TrimSpace(context); context != "" {
		sb.WriteString("Context:\n")
		sb.WriteString(context)
		sb.WriteString("\n\n")
	}
	sb.WriteString("Instruction: ")
	sb.WriteString(strings.TrimSpace(instruction))
	sb.WriteString("\n\nText:\n")
	sb.WriteString(text)
	return rewriteSystemPrompt, sb.String()
}
