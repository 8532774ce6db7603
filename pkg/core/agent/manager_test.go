package agent

import (
	"context"
	"testing"

	"promptsheet/pkg/core/llm"
)

type namedStub struct {
	name string
	out  string
}

func (s *namedStub) Name() string { return s.name }

func (s *namedStub) Generate(ctx context.Context, prompt string, opts llm.CallOptions) (string, error) {
	return s.out, nil
}

func TestManagerDefaultsToFirstProvider(t *testing.T) {
	m := NewManager(&namedStub{name: "gemini", out: "g"}, &namedStub{name: "deepseek", out: "d"})
	if m.ActiveProvider() != "gemini" {
		t.Errorf("active = %q, want gemini", m.ActiveProvider())
	}
	text, err := m.Generate(context.Background(), "p", llm.CallOptions{})
	if err != nil || text != "g" {
		t.Errorf("Generate = %q, %v; want g, nil", text, err)
	}
}

func TestManagerSwitch(t *testing.T) {
	m := NewManager(&namedStub{name: "gemini", out: "g"}, &namedStub{name: "deepseek", out: "d"})
	if err := m.SetGlobalProvider("deepseek"); err != nil {
		t.Fatalf("switch failed: %v", err)
	}
	text, _ := m.Generate(context.Background(), "p", llm.CallOptions{})
	if text != "d" {
		t.Errorf("Generate = %q after switch, want d", text)
	}
}

func TestManagerRejectsUnknownProvider(t *testing.T) {
	m := NewManager(&namedStub{name: "gemini"})
	if err := m.SetGlobalProvider("openai"); err == nil {
		t.Error("expected error for unknown provider")
	}
	if m.ActiveProvider() != "gemini" {
		t.Errorf("active changed to %q after failed switch", m.ActiveProvider())
	}
}
