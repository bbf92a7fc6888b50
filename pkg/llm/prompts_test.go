package llm

import (
	"strings"
	"testing"

	"github.com/ris3abh/ResumeForgeAI/pkg/validate"
)

func TestBuildAnalysisPrompt(t *testing.T) {
	prompt := buildAnalysisPrompt("We need a Go engineer with Kafka experience.")

	for _, want := range []string{
		"We need a Go engineer with Kafka experience.",
		"company_name",
		"key_requirements",
		"ONLY valid JSON",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Analysis prompt missing %q", want)
		}
	}
}

func TestBuildRewritePrompt(t *testing.T) {
	req := RewriteRequest{
		SectionName:    "experience",
		CurrentBody:    `\resumeItem{Built services}`,
		JobDescription: "Looking for a backend engineer",
		Analysis: JDAnalysis{
			CompanyName:     "Acme Corp",
			RoleTitle:       "Backend Engineer",
			KeyRequirements: []string{"Go", "Postgres"},
			TechnicalStack:  []string{"Go", "Kafka"},
			RoleFocus:       "Own the billing services",
		},
	}

	prompt := buildRewritePrompt(req)

	for _, want := range []string{
		"Looking for a backend engineer",
		"Backend Engineer at Acme Corp",
		"Own the billing services",
		"- Go",
		`\resumeItem{Built services}`,
		"experience",
		`\section`,
		"never fabricate",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Rewrite prompt missing %q", want)
		}
	}

	if strings.Contains(prompt, "PREVIOUS ATTEMPT WAS REJECTED") {
		t.Error("First-attempt prompt should not contain a feedback block")
	}
}

func TestBuildRewritePromptWithFeedback(t *testing.T) {
	req := RewriteRequest{
		SectionName: "skills",
		CurrentBody: `\resumeItem{Go}`,
		Feedback: []validate.Violation{
			{Kind: validate.KindUnbalancedBraces, Description: "brace count is off by +1"},
			{Kind: validate.KindOverLength, Description: "document is 130 lines, ceiling is 120"},
		},
	}

	prompt := buildRewritePrompt(req)

	for _, want := range []string{
		"PREVIOUS ATTEMPT WAS REJECTED",
		"[unbalanced_braces] brace count is off by +1",
		"[over_length] document is 130 lines, ceiling is 120",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Feedback prompt missing %q", want)
		}
	}
}
