package llm

import "github.com/ris3abh/ResumeForgeAI/pkg/validate"

// JDAnalysis represents extracted insights from a job description.
type JDAnalysis struct {
	CompanyName     string   `json:"company_name"`
	RoleTitle       string   `json:"role_title"`
	KeyRequirements []string `json:"key_requirements"`
	TechnicalStack  []string `json:"technical_stack"`
	RoleFocus       string   `json:"role_focus"`
}

// RewriteRequest represents a request to rewrite one resume section.
type RewriteRequest struct {
	SectionName    string
	CurrentBody    string
	JobDescription string
	Analysis       JDAnalysis
	// Feedback carries the violations that rejected the previous attempt,
	// empty on the first.
	Feedback []validate.Violation
}

// ClaudeRequest represents the Claude API request format.
type ClaudeRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []Message `json:"messages"`
}

// ClaudeResponse represents the Claude API response format.
type ClaudeResponse struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Role    string    `json:"role"`
	Content []Content `json:"content"`
	Model   string    `json:"model"`
	Usage   Usage     `json:"usage"`
}

// Message represents a message in the conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Content represents content in the response.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Usage represents token usage information.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}
