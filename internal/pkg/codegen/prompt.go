package codegen

import "github.com/shot2code/shot2code/app/models"

// System prompts per output stack. The model receives the screenshot as an
// image part and must answer with a single self-contained code block.
var stackPrompts = map[string]string{
	models.StackHTMLTailwind:  "You are an expert Tailwind developer. Recreate the UI in the screenshot as a single self-contained HTML file using Tailwind CSS from the CDN. Match layout, colors, fonts and spacing as closely as possible. Use placeholder images from https://placehold.co where the screenshot contains images. Reply with the full HTML document only, no explanations.",
	models.StackHTMLCSS:       "You are an expert web developer. Recreate the UI in the screenshot as a single self-contained HTML file with an embedded <style> block. Match layout, colors, fonts and spacing as closely as possible. Use placeholder images from https://placehold.co where the screenshot contains images. Reply with the full HTML document only, no explanations.",
	models.StackReactTailwind: "You are an expert React and Tailwind developer. Recreate the UI in the screenshot as a single HTML file that loads React and Tailwind from CDNs and renders one root component. Match layout, colors, fonts and spacing as closely as possible. Use placeholder images from https://placehold.co where the screenshot contains images. Reply with the full HTML document only, no explanations.",
}

// SystemPromptForStack returns the generation prompt for a stack, defaulting
// to the Tailwind variant for unknown values.
func SystemPromptForStack(stack string) string {
	if p, ok := stackPrompts[stack]; ok {
		return p
	}
	return stackPrompts[models.StackHTMLTailwind]
}
