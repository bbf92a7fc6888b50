package llm

import (
	"fmt"
	"strings"
)

// buildAnalysisPrompt creates the job description analysis prompt.
func buildAnalysisPrompt(jobDescription string) (prompt string) {
	prompt = fmt.Sprintf(`You are an expert career consultant analyzing a job description.

JOB DESCRIPTION:
%s

Analyze the job description and:
1. Extract the company name
2. Extract the role title
3. Extract key requirements (technical skills, experience, domain expertise)
4. Extract the technical stack mentioned or implied
5. Describe the role focus in one or two sentences

Return ONLY valid JSON in this exact format (no markdown, no commentary):
{
  "company_name": "extracted company name",
  "role_title": "extracted role title",
  "key_requirements": ["requirement1", "requirement2"],
  "technical_stack": ["tech1", "tech2"],
  "role_focus": "description of role focus"
}`, jobDescription)

	return prompt
}

// buildRewritePrompt creates the section rewrite prompt. Feedback from a
// rejected previous attempt is appended so the model can correct it.
func buildRewritePrompt(req RewriteRequest) (prompt string) {
	requirements := strings.Join(req.Analysis.KeyRequirements, "\n- ")
	stack := strings.Join(req.Analysis.TechnicalStack, ", ")

	feedbackBlock := ""
	if len(req.Feedback) > 0 {
		var b strings.Builder
		b.WriteString("\nYOUR PREVIOUS ATTEMPT WAS REJECTED for these reasons:\n")
		for _, v := range req.Feedback {
			fmt.Fprintf(&b, "- [%s] %s\n", v.Kind, v.Description)
		}
		b.WriteString("Fix every listed problem in this attempt.\n")
		feedbackBlock = b.String()
	}

	prompt = fmt.Sprintf(`You are an expert resume writer rewriting one section of a LaTeX resume so its wording better matches a target job description. Do not invent experience, skills, or numbers that are not in the current section.

JOB DESCRIPTION:
%s

TARGET ROLE: %s at %s
ROLE FOCUS: %s

KEY REQUIREMENTS:
- %s

TECHNICAL STACK: %s

SECTION TO REWRITE: %s

CURRENT SECTION BODY (LaTeX):
%s
%s
Rules:
1. Return ONLY the replacement LaTeX body for this section. No explanations, no markdown fences.
2. Do NOT include the \section heading or the list wrapper macros (\resumeSubHeadingListStart / \resumeSubHeadingListEnd); they are supplied by the document.
3. Use exactly the same LaTeX macros the current body uses (\resumeSubheading, \resumeItem, and so on), with balanced braces.
4. Rephrase and reorder to emphasize the key requirements; never fabricate.
5. Keep the body at or under its current length.`,
		req.JobDescription,
		req.Analysis.RoleTitle, req.Analysis.CompanyName,
		req.Analysis.RoleFocus,
		requirements,
		stack,
		req.SectionName,
		req.CurrentBody,
		feedbackBlock)

	return prompt
}
