package ai

import (
	"fmt"
	"strings"

	"github.com/richinex/synthra/model"
)

// buildSummarizePrompt asks for study-note style notes with a strict
// JSON shape.
func buildSummarizePrompt(content, title, url string) string {
	return fmt.Sprintf(`You are an expert content analyst and summarization specialist. Analyze the following web page content and create a concise, actionable summary.

CONTENT TO ANALYZE:
Title: %s
URL: %s
Content: %s

STUDY NOTES REQUIREMENTS:
Create clean, scannable study notes.

FORMATTING RULES:
- Write concise, direct content - NO fluff or unnecessary words
- Use precise technical terminology
- Include actual examples and code from the source
- Make content easy to scan and review

1. SUMMARY (2-3 sentences max):
   One clear paragraph explaining what this content teaches, why it
   matters, and how it connects to broader topics.

2. KEY POINTS (4-6 points):
   Each point should be 1-2 sentences covering one specific concept or
   technique, a concrete example or use case, and why it is important
   when applicable. Include code snippets, formulas, or data when
   relevant.

3. KEY CONCEPTS (4-6 terms):
   "TermName: One sentence definition and significance"
   Focus on technical terms that need explanation. Keep definitions
   under 20 words.

QUALITY OVER QUANTITY:
- Extract real examples and code from content
- Include numbers, measurements, benchmarks
- Be specific, not generic
- Make it practical for implementation

Format as JSON:
{
    "summary": "Comprehensive explanation of what this content teaches and its learning value",
    "keyPoints": [
        "Detailed explanation of first key concept with examples and context",
        "Step-by-step breakdown of important process or methodology"
    ],
    "keyConcepts": [
        "Technical Term: Clear definition and significance",
        "Methodology: How it works and its applications"
    ]
}

Return only valid JSON, no additional text or formatting.`,
		title, url, truncate(content, summarizeContentLimit))
}

// buildHighlightPrompt asks for key-term identification.
func buildHighlightPrompt(content, pageContext string) string {
	contextText := ""
	if pageContext != "" {
		contextText = "Context: " + pageContext + "\n\n"
	}

	return fmt.Sprintf(`You are an expert educator and domain specialist. Analyze the content and identify key terms that would help someone better understand the material. Think like a teacher explaining complex concepts to students.

%sCONTENT TO ANALYZE:
%s

IDENTIFICATION CRITERIA:
Identify 4-6 terms that are:
- Technical jargon or specialized terminology
- Industry-specific concepts or methodologies
- Important proper nouns (companies, products, people, places)
- Acronyms or abbreviations that need explanation
- Complex processes or frameworks

EXPLANATION REQUIREMENTS:
For each term provide:
1. TERM: Exact term as it appears in the content
2. EXPLANATION: 1-2 sentences that define the term clearly, explain
   why it is important in this context, and give practical examples
   when helpful
3. IMPORTANCE:
   - "high" = Critical for understanding the main content
   - "medium" = Helpful for deeper comprehension
   - "low" = Useful background information
4. CATEGORY: technical, business, academic, scientific, legal, medical, etc.

QUALITY GUIDELINES:
- Write explanations that are accessible to non-experts
- Avoid circular definitions (don't use the term to define itself)

Format as JSON:
{
    "highlights": [
        {
            "term": "API",
            "explanation": "Application Programming Interface - a set of protocols that allows different software applications to communicate with each other.",
            "importance": "high",
            "category": "technical"
        }
    ]
}

Return only valid JSON, no additional text or formatting.`,
		contextText, truncate(content, highlightContentLimit))
}

// buildResearchPrompt asks for multi-source synthesis.
func buildResearchPrompt(tabs []model.TabContent, query string) string {
	var sources strings.Builder
	for i, tab := range tabs {
		fmt.Fprintf(&sources, "Tab %d: %s\nURL: %s\nContent: %s\n\n",
			i+1, tab.Title, tab.URL, truncate(tab.Content, researchPerTabLimit))
	}

	return fmt.Sprintf(`You are an expert research analyst conducting multi-source analysis. Your goal is to synthesize information from multiple sources to provide actionable insights.

RESEARCH QUERY: %s

SOURCES TO ANALYZE:
%s
ANALYSIS REQUIREMENTS:

1. SUMMARY (1-2 sentences):
   Directly address the research query with a clear answer and
   highlight the most important discovery or conclusion.

2. KEY FINDINGS (3-4 evidence-based insights):
   Present specific, actionable discoveries with supporting evidence
   from the sources. Prioritize findings that directly answer the
   research query and note any conflicting information.

3. SOURCE COMPARISONS (2-3 comparative analyses):
   Compare how sources approach the topic differently. Identify areas
   of agreement and disagreement and unique insights from each source.

4. SOURCE EVALUATION:
   Rate each source's relevance to the query (0.0-1.0), considering
   currency, authority, accuracy, and completeness.

RESEARCH QUALITY STANDARDS:
- Base all findings on evidence from the provided sources
- Distinguish between facts and opinions
- Provide specific examples and data points
- Ensure findings are actionable and useful for decision-making

Format as JSON:
{
    "summary": "Concise synthesis that directly answers the research query with key insight",
    "keyFindings": [
        "Specific evidence-based finding with supporting data",
        "Actionable insight that addresses the core research question"
    ],
    "comparisons": [
        {
            "aspect": "Methodological Approach",
            "details": "How the sources differ or agree on this aspect"
        }
    ],
    "sources": [
        {
            "title": "Exact title from the source",
            "url": "source URL",
            "relevance": 0.9
        }
    ]
}

Return only valid JSON, no additional text or formatting.`, query, sources.String())
}
