package prompt

// Template is a reusable prompt definition from the library file. Templates
// are presets for prompt-config rows: picking one copies its text and flags
// into the Prompt_Config worksheet for a chosen target column.
type Template struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Category    string `yaml:"category" json:"category"`
	Description string `yaml:"description" json:"description"`
	Text        string `yaml:"text" json:"text"`
	WebSearch   bool   `yaml:"web_search" json:"web_search"`
	ReplaceMode bool   `yaml:"replace_mode" json:"replace_mode"`
}
