package models

import (
	"strings"
	"testing"

	"github.com/tbekken/ochat/opencode"
)

func testCatalog() *opencode.Catalog {
	return &opencode.Catalog{
		Providers: []opencode.Provider{
			{ID: "opencode", Name: "OpenCode", Models: map[string]opencode.ModelInfo{
				"kimi-k2.5-free": {},
				"shared-model":   {},
			}},
			{ID: "anthropic", Name: "Anthropic", Models: map[string]opencode.ModelInfo{
				"claude-sonnet": {},
				"shared-model":  {},
			}},
		},
		Default: map[string]string{"opencode": "kimi-k2.5-free"},
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		spec         string
		wantProvider string
		wantModel    string
	}{
		{"anthropic/claude-sonnet", "anthropic", "claude-sonnet"},
		{"kimi-k2.5-free", "", "kimi-k2.5-free"},
		{"openrouter/meta/llama-3", "openrouter", "meta/llama-3"},
		{"  anthropic/claude-sonnet  ", "anthropic", "claude-sonnet"},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			sel := Parse(tt.spec)
			if sel.Provider != tt.wantProvider || sel.Model != tt.wantModel {
				t.Errorf("Parse(%q) = %v/%v, want %v/%v", tt.spec, sel.Provider, sel.Model, tt.wantProvider, tt.wantModel)
			}
		})
	}
}

func TestResolveCompound(t *testing.T) {
	r := New(testCatalog())
	sel, err := r.Resolve("anthropic/claude-sonnet")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sel.Provider != "anthropic" || sel.Model != "claude-sonnet" {
		t.Errorf("got %v", sel)
	}
}

func TestResolveBareSearchesCatalogOrder(t *testing.T) {
	r := New(testCatalog())

	sel, err := r.Resolve("claude-sonnet")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sel.Provider != "anthropic" {
		t.Errorf("expected anthropic, got %v", sel)
	}

	// Both providers carry shared-model; the first in catalog order wins.
	sel, err = r.Resolve("shared-model")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sel.Provider != "opencode" {
		t.Errorf("expected first provider to win, got %v", sel)
	}
}

func TestResolveBareNotFound(t *testing.T) {
	r := New(testCatalog())
	_, err := r.Resolve("no-such-model")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "no-such-model") {
		t.Errorf("error should name the model: %v", err)
	}
}

func TestResolveEmpty(t *testing.T) {
	r := New(testCatalog())
	if _, err := r.Resolve(""); err == nil {
		t.Fatal("expected an error")
	}
}

func TestValidate(t *testing.T) {
	r := New(testCatalog())

	if err := r.Validate(Selection{Provider: "anthropic", Model: "claude-sonnet"}); err != nil {
		t.Errorf("valid pair rejected: %v", err)
	}

	err := r.Validate(Selection{Provider: "nope", Model: "claude-sonnet"})
	if err == nil || !strings.Contains(err.Error(), "provider 'nope' not found") {
		t.Errorf("expected unknown-provider error, got %v", err)
	}

	err = r.Validate(Selection{Provider: "anthropic", Model: "kimi-k2.5-free"})
	if err == nil || !strings.Contains(err.Error(), "not found under provider") {
		t.Errorf("expected unknown-model error, got %v", err)
	}
}

func TestSelectionString(t *testing.T) {
	sel := Selection{Provider: "opencode", Model: "kimi-k2.5-free"}
	if got := sel.String(); got != "opencode/kimi-k2.5-free" {
		t.Errorf("got %q", got)
	}
}
