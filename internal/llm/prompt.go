package llm

import (
	"fmt"
	"strings"
)

// SystemPrompt constrains the model to evidence-backed answers.
const SystemPrompt = "You are an incident debugging assistant. " +
	"You MUST only make claims supported by the provided evidence. " +
	"If evidence is insufficient, say so and set confidence to 'low'. " +
	"Output MUST be concise, actionable, and include citations by chunk_id."

// quoteLimit caps how much chunk text an evidence quote carries.
const quoteLimit = 350

// BuildAnalysisPrompt renders the user prompt from the question and the
// retrieved evidence blocks.
func BuildAnalysisPrompt(question string, evidenceBlocks []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question:\n%s\n\n", question)
	b.WriteString("Evidence:\n")
	b.WriteString(strings.Join(evidenceBlocks, "\n\n---\n\n"))
	b.WriteString("\n\n" +
		"Return:\n" +
		"1) Summary (1-3 sentences)\n" +
		"2) Probable root cause (1-2 sentences)\n" +
		"3) Confidence: low|medium|high\n" +
		"4) Evidence citations: list of chunk_ids used\n" +
		"5) Next steps: 3-7 bullet points\n")
	return b.String()
}

// EvidenceBlock renders one retrieved chunk the way the prompt cites it.
func EvidenceBlock(chunkID, filename, text string) string {
	return fmt.Sprintf("[%s | %s]\n%s", chunkID, filename, text)
}

// Quote truncates chunk text for display in an evidence item.
func Quote(text string) string {
	runes := []rune(text)
	if len(runes) > quoteLimit {
		return string(runes[:quoteLimit]) + "..."
	}
	return text
}

// InferConfidence applies the first-version heuristic: default medium, but
// respect the model when its output declares low or high confidence.
func InferConfidence(raw string) string {
	lower := strings.ToLower(raw)
	confidence := "medium"
	if strings.Contains(lower, "confidence") && strings.Contains(lower, "low") {
		confidence = "low"
	}
	if strings.Contains(lower, "confidence") && strings.Contains(lower, "high") {
		confidence = "high"
	}
	return confidence
}

// DefaultNextSteps is the canned follow-up list returned with every answer
// until structured output parsing lands.
func DefaultNextSteps() []string {
	return []string{
		"Check logs around the cited timestamps.",
		"Validate recent deploy/config changes.",
		"Reproduce with higher verbosity logging.",
	}
}
