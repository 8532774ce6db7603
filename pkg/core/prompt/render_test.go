package prompt

import "testing"

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		template string
		values   map[string]string
		want     string
	}{
		{
			name:     "two placeholders",
			template: "{{a}} and {{b}}",
			values:   map[string]string{"a": "x", "b": "y"},
			want:     "x and y",
		},
		{
			name:     "missing key renders empty",
			template: "{{missing}}",
			values:   map[string]string{},
			want:     "",
		},
		{
			name:     "whitespace inside delimiters trimmed",
			template: "Hello {{  name  }}!",
			values:   map[string]string{"name": "Ada"},
			want:     "Hello Ada!",
		},
		{
			name:     "interior spaces and hyphens in names",
			template: "{{first name}}-{{last-name}}",
			values:   map[string]string{"first name": "Ada", "last-name": "Lovelace"},
			want:     "Ada-Lovelace",
		},
		{
			name:     "non-matching braces left verbatim",
			template: "{{not closed and {plain} text",
			values:   map[string]string{"plain": "x"},
			want:     "{{not closed and {plain} text",
		},
		{
			name:     "single pass, no rescanning",
			template: "{{a}}",
			values:   map[string]string{"a": "{{b}}", "b": "never"},
			want:     "{{b}}",
		},
		{
			name:     "repeated placeholder",
			template: "{{x}} {{x}}",
			values:   map[string]string{"x": "1"},
			want:     "1 1",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Render(tc.template, tc.values); got != tc.want {
				t.Errorf("Render(%q) = %q, want %q", tc.template, got, tc.want)
			}
		})
	}
}

func TestReferences(t *testing.T) {
	refs := References("{{a}} {{ b }} {{a}} plain")
	if len(refs) != 2 || refs[0] != "a" || refs[1] != "b" {
		t.Errorf("References = %v", refs)
	}
}

func TestRegistry(t *testing.T) {
	r := Get()
	r.Clear()

	if err := r.Register(&Template{Name: "no id"}); err == nil {
		t.Error("expected error for empty ID")
	}
	if err := r.Register(&Template{ID: "research.company", Category: "research", Text: "Summarize {{name}}"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	pt, err := r.GetPrompt("research.company")
	if err != nil {
		t.Fatalf("GetPrompt: %v", err)
	}
	if pt.Text != "Summarize {{name}}" {
		t.Errorf("unexpected text %q", pt.Text)
	}
	if got := r.ListByCategory("research"); len(got) != 1 {
		t.Errorf("ListByCategory = %d entries", len(got))
	}
	if r.Count() != 1 {
		t.Errorf("Count = %d", r.Count())
	}
}
