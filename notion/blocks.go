package notion

import (
	"fmt"

	"github.com/richinex/synthra/model"
)

// Block constructors for the subset of Notion block types the saved
// pages use.

func textSpan(content string) map[string]any {
	return map[string]any{
		"type": "text",
		"text": map[string]any{"content": content},
	}
}

func linkSpan(content, url string) map[string]any {
	text := map[string]any{"content": content}
	if url != "" {
		text["link"] = map[string]any{"url": url}
	}
	return map[string]any{
		"type": "text",
		"text": text,
	}
}

func block(kind string, spans ...map[string]any) map[string]any {
	return map[string]any{
		"object": "block",
		"type":   kind,
		kind:     map[string]any{"rich_text": spans},
	}
}

func heading2(text string) map[string]any {
	return block("heading_2", textSpan(text))
}

func heading3(text string) map[string]any {
	return block("heading_3", textSpan(text))
}

func paragraph(text string) map[string]any {
	return block("paragraph", textSpan(text))
}

func bullet(text string) map[string]any {
	return block("bulleted_list_item", textSpan(text))
}

func bulletLink(text, url string) map[string]any {
	return block("bulleted_list_item", linkSpan(text, url))
}

// summaryBlocks renders a summary as study notes.
func summaryBlocks(summary model.Summary) []map[string]any {
	var blocks []map[string]any

	if summary.Summary != "" {
		blocks = append(blocks, heading2("Summary"), paragraph(summary.Summary))
	}

	if len(summary.KeyPoints) > 0 {
		blocks = append(blocks, heading3("Key Points"))
		for _, point := range summary.KeyPoints {
			blocks = append(blocks, bullet(point))
		}
	}

	if len(summary.KeyConcepts) > 0 {
		blocks = append(blocks, heading3("Key Concepts"))
		for _, concept := range summary.KeyConcepts {
			blocks = append(blocks, bullet(concept))
		}
	}

	return blocks
}

// highlightBlocks renders each term as a heading with its explanation.
func highlightBlocks(highlights []model.Highlight) []map[string]any {
	blocks := []map[string]any{heading2("Key Terms & Highlights")}

	for _, h := range highlights {
		blocks = append(blocks, heading3(h.Term), paragraph(h.Explanation))
		if h.Importance != "" || h.Category != "" {
			info := ""
			if h.Importance != "" {
				info = "Importance: " + h.Importance
			}
			if h.Category != "" {
				if info != "" {
					info += " | "
				}
				info += "Category: " + h.Category
			}
			blocks = append(blocks, paragraph(info))
		}
	}

	return blocks
}

// researchBlocks renders a research result with findings and sources.
func researchBlocks(research model.Research) []map[string]any {
	blocks := []map[string]any{heading2(fmt.Sprintf("Research: %s", research.Query))}

	if research.Summary != "" {
		blocks = append(blocks, heading3("Summary"), paragraph(research.Summary))
	}

	if len(research.KeyFindings) > 0 {
		blocks = append(blocks, heading3("Key Findings"))
		for _, finding := range research.KeyFindings {
			blocks = append(blocks, bullet(finding))
		}
	}

	if len(research.Comparisons) > 0 {
		blocks = append(blocks, heading3("Comparisons"))
		for _, comp := range research.Comparisons {
			blocks = append(blocks, bullet(fmt.Sprintf("%s: %s", comp.Aspect, comp.Details)))
		}
	}

	if len(research.Sources) > 0 {
		blocks = append(blocks, heading3("Sources"))
		for _, source := range research.Sources {
			blocks = append(blocks, bulletLink(source.Title, source.URL))
		}
	}

	return blocks
}
