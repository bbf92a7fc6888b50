package llm

import "testing"

func TestExtractLatexBody(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain body",
			in:   `\resumeItem{Built pipelines}`,
			want: `\resumeItem{Built pipelines}`,
		},
		{
			name: "latex fence",
			in:   "```latex\n\\resumeItem{Built pipelines}\n```",
			want: `\resumeItem{Built pipelines}`,
		},
		{
			name: "bare fence",
			in:   "```\n\\resumeItem{Built pipelines}\n```",
			want: `\resumeItem{Built pipelines}`,
		},
		{
			name: "leading prose",
			in:   "Here is the optimized section:\n\n\\resumeItem{Built pipelines}",
			want: `\resumeItem{Built pipelines}`,
		},
		{
			name: "prose and fence",
			in:   "Sure! Here you go:\n```tex\n\\resumeItem{Built pipelines}\n\\resumeItem{Led teams}\n```\nLet me know if you need changes.",
			want: "\\resumeItem{Built pipelines}\n\\resumeItem{Led teams}",
		},
		{
			name: "no latex at all",
			in:   "I cannot help with that.",
			want: "I cannot help with that.",
		},
		{
			name: "empty response",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractLatexBody(tt.in)
			if got != tt.want {
				t.Errorf("ExtractLatexBody(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
