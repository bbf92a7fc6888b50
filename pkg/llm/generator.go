package llm

import (
	"context"

	"github.com/ris3abh/ResumeForgeAI/pkg/revise"
)

// SectionGenerator adapts the Claude client to the revision loop's Generator
// interface, carrying the job description analysis into every rewrite.
type SectionGenerator struct {
	client   *Client
	analysis JDAnalysis
}

// NewSectionGenerator creates a generator bound to a client and analysis.
func NewSectionGenerator(client *Client, analysis JDAnalysis) (g *SectionGenerator) {
	g = &SectionGenerator{client: client, analysis: analysis}
	return g
}

// Generate produces a candidate body for one section.
func (g *SectionGenerator) Generate(ctx context.Context, req revise.Request) (body string, err error) {
	body, err = g.client.RewriteSection(ctx, RewriteRequest{
		SectionName:    req.SectionName,
		CurrentBody:    req.CurrentBody,
		JobDescription: req.JobContext,
		Analysis:       g.analysis,
		Feedback:       req.Feedback,
	})
	return body, err
}
