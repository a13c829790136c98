package guide

import (
	"fmt"
	"strings"
)

// Step is one actionable recommendation shown while the knowledge base is
// still empty.
type Step struct {
	Title       string
	Description string
}

// Metadata carries just enough context for personalizing the steps.
type Metadata struct {
	Host string
}

// Build returns the onboarding checklist for a fresh workspace.
func Build(meta Metadata) []Step {
	host := strings.TrimSpace(meta.Host)
	if host == "" {
		host = "your Prism server"
	}

	return []Step{
		{
			Title:       "Upload a document",
			Description: fmt.Sprintf("Press u and give the path to a PDF, CSV, or Word file. It is sent to %s, split into passages, and indexed for retrieval.", host),
		},
		{
			Title:       "Or connect Google Drive",
			Description: "Press f to save a Drive folder ID, then s to sync it. Every supported file in the folder joins the knowledge base in one pass.",
		},
		{
			Title:       "Ask your first question",
			Description: "Press i, type a question, and hit Enter. Answers cite only what you uploaded, so the more you index the better they get.",
		},
	}
}
