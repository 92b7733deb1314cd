package gateway

import "fmt"

// NotFoundAnswer is the phrase the model is told to use when the document
// does not answer the question.
const NotFoundAnswer = "The document does not contain information about this topic"

// validationPrompt is the fixed prompt used to check a credential.
const validationPrompt = "test"

const translatePrompt = `You are an expert academic translator specializing in research documents and scientific papers.

Translate the following %s text to %s. Maintain:
- Technical terminology accuracy
- Academic tone and formality
- Citation format preservation
- Paragraph structure and formatting

Original text:
"""
%s
"""

Provide only the translated text without any explanations.`

const answerPrompt = `You are an expert research assistant analyzing an academic document.

Document:
"""
%s
"""

User Question: %s

Instructions:
1. Answer the question based ONLY on the provided document
2. Be specific and reference relevant parts of the document
3. If the answer is not in the document, say "%s"
4. Keep the answer concise but comprehensive

Provide your answer:`

const summarizePrompt = `You are an expert academic researcher. Summarize the following research document with professional precision.

Document:
"""
%s
"""

Please provide:
1. A %s summary that captures the main concepts, methodology, findings, and implications
2. Follow with exactly 5-8 key points as a bulleted list

Format your response as:
SUMMARY:
[Your summary here]

KEY POINTS:
- [Point 1]
- [Point 2]
... etc`

func buildTranslatePrompt(text, sourceLang, targetLang string) string {
	return fmt.Sprintf(translatePrompt, sourceLang, targetLang, text)
}

func buildAnswerPrompt(documentText, question string) string {
	return fmt.Sprintf(answerPrompt, documentText, question, NotFoundAnswer)
}

func buildSummarizePrompt(text string, length Length) string {
	return fmt.Sprintf(summarizePrompt, text, length.Guide())
}

// Languages lists the languages offered for translation.
var Languages = []string{"English", "Vietnamese", "French", "Spanish", "German", "Chinese", "Japanese"}
