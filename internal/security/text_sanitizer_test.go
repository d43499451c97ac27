package security

import "testing"

// TestTextSanitizer_Sanitize はタグ除去の基本動作を検証する。
func TestTextSanitizer_Sanitize(t *testing.T) {
	s := NewTextSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text passes through",
			input: "Engineering Mathematics Textbook",
			want:  "Engineering Mathematics Textbook",
		},
		{
			name:  "script tag is removed",
			input: `Desk <script>alert("xss")</script>for sale`,
			want:  "Desk for sale",
		},
		{
			name:  "bold tag is stripped but text kept",
			input: "<b>Almost new</b> calculator",
			want:  "Almost new calculator",
		},
		{
			name:  "img tag is removed entirely",
			input: `chair <img src="https://example.com/x.png"> cheap`,
			want:  "chair  cheap",
		},
		{
			name:  "surrounding whitespace is trimmed",
			input: "  wooden desk  ",
			want:  "wooden desk",
		},
		{
			name:  "empty input stays empty",
			input: "",
			want:  "",
		},
		{
			name:  "entities are unescaped back to plain text",
			input: "books &amp; notes",
			want:  "books & notes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Sanitize(tt.input)
			if got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestTextSanitizer_Idempotent は同一入力に対する冪等性を検証する。
func TestTextSanitizer_Idempotent(t *testing.T) {
	s := NewTextSanitizer()

	input := `<p>Wooden desk</p> in <em>good</em> condition`
	first := s.Sanitize(input)
	second := s.Sanitize(first)

	if first != second {
		t.Errorf("Sanitize is not idempotent: first = %q, second = %q", first, second)
	}
}
