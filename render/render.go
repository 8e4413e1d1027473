// Package render turns the server's structured messages into terminal
// output: markdown for prose, bordered panels for tool activity and errors,
// and muted one-line markers for the bookkeeping parts.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/tbekken/ochat/opencode"
)

// Truncation limits, in runes, for the bulky part payloads.
const (
	maxToolInput  = 300
	maxToolOutput = 500
	maxReasoning  = 300
)

// Renderer writes assistant messages and client chrome to the terminal.
// Rendering never fails: a part that cannot be rendered degrades to its
// plainest form and later parts still appear.
type Renderer struct {
	out      io.Writer
	styles   Styles
	markdown *glamour.TermRenderer
	log      *zap.Logger
}

// New creates a renderer for out. Markdown rendering switches on only when
// out is a terminal; everything else degrades to plain text on its own.
func New(out io.Writer, log *zap.Logger) *Renderer {
	r := &Renderer{out: out, styles: DefaultStyles(), log: log}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		md, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(0),
		)
		if err == nil {
			r.markdown = md
		} else {
			log.Debug("markdown renderer unavailable", zap.Error(err))
		}
	}
	return r
}

// Message renders one assistant message: the message-level error first when
// present, then every part in wire order.
func (r *Renderer) Message(msg *opencode.Message) {
	if msg.Info.Error != nil {
		r.assistantError(msg.Info.Error)
	}
	for _, part := range msg.Parts {
		r.part(part)
	}
}

func (r *Renderer) part(p opencode.Part) {
	switch p.Type {
	case opencode.PartText:
		r.text(p.Text)
	case opencode.PartTool:
		r.tool(p)
	case opencode.PartStepStart:
		r.Muted("── step started ──")
	case opencode.PartStepFinish:
		r.stepFinish(p)
	case opencode.PartReasoning:
		r.reasoning(p.Text)
	default:
		r.Muted(fmt.Sprintf("[%s]", p.Type))
	}
}

func (r *Renderer) text(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	if r.markdown != nil {
		rendered, err := r.markdown.Render(text)
		if err == nil {
			fmt.Fprintln(r.out, strings.TrimRight(rendered, "\n"))
			return
		}
		r.log.Debug("markdown render failed", zap.Error(err))
	}
	fmt.Fprintln(r.out, text)
}

func (r *Renderer) tool(p opencode.Part) {
	state := p.State
	if state == nil {
		state = &opencode.ToolState{Status: opencode.ToolPending}
	}

	lines := []string{
		r.styles.Bold.Render("Tool: " + p.Tool),
		r.toolStatus(state.Status),
	}
	if state.Title != "" {
		lines = append(lines, r.styles.Bold.Render(state.Title))
	}
	if len(state.Input) > 0 {
		lines = append(lines, "Input: "+Truncate(formatInput(state.Input), maxToolInput))
	}
	if state.Output != "" {
		lines = append(lines, "Output: "+Truncate(state.Output, maxToolOutput))
	}
	if state.Status == opencode.ToolError && state.Error != "" {
		lines = append(lines, r.styles.Error.Render("Error: "+state.Error))
	}
	r.panel(r.styles.ToolPanel, strings.Join(lines, "\n"))
}

func (r *Renderer) toolStatus(status string) string {
	switch status {
	case opencode.ToolCompleted:
		return r.styles.Success.Render("✓ completed")
	case opencode.ToolError:
		return r.styles.Error.Render("✗ error")
	case opencode.ToolRunning:
		return r.styles.Warning.Render("⋯ running")
	default:
		return r.styles.Muted.Render("⋯ " + status)
	}
}

// formatInput pretty-prints JSON tool arguments, falling back to the raw
// bytes for anything unparseable.
func formatInput(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

func (r *Renderer) stepFinish(p opencode.Part) {
	var total int
	if p.Tokens != nil {
		total = int(p.Tokens.Input + p.Tokens.Output)
	}
	r.Muted(fmt.Sprintf("── step finished (%d tokens, $%.4f) ──", total, p.Cost))
}

func (r *Renderer) reasoning(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	r.panel(r.styles.ThinkPanel, r.styles.Bold.Render("Thinking")+"\n"+Truncate(text, maxReasoning))
}

func (r *Renderer) assistantError(e *opencode.AssistantError) {
	switch e.Name {
	case opencode.ErrNameAborted:
		r.panel(r.styles.WarnPanel, "Response aborted.")
	case opencode.ErrNameProviderAuth:
		provider := e.Data.ProviderID
		if provider == "" {
			provider = "unknown"
		}
		msg := fmt.Sprintf("Authentication failed for provider '%s'", provider)
		if e.Data.Message != "" {
			msg += ": " + e.Data.Message
		}
		r.panel(r.styles.ErrorPanel, msg)
	default:
		msg := e.Name
		if e.Data.Message != "" {
			msg += ": " + e.Data.Message
		}
		r.panel(r.styles.ErrorPanel, msg)
	}
}

func (r *Renderer) panel(style lipgloss.Style, content string) {
	fmt.Fprintln(r.out, style.Render(content))
}

// Banner prints the welcome box shown at startup.
func (r *Renderer) Banner(title string, lines ...string) {
	content := r.styles.Bold.Render(title)
	if len(lines) > 0 {
		content += "\n" + strings.Join(lines, "\n")
	}
	r.panel(r.styles.Banner, content)
}

// Prompt prints the input prompt without a trailing newline.
func (r *Renderer) Prompt() {
	fmt.Fprint(r.out, r.styles.Prompt.Render("You:")+" ")
}

func (r *Renderer) Printf(format string, a ...interface{}) {
	fmt.Fprintf(r.out, format+"\n", a...)
}

func (r *Renderer) Muted(msg string) {
	fmt.Fprintln(r.out, r.styles.Muted.Render(msg))
}

func (r *Renderer) Warn(msg string) {
	fmt.Fprintln(r.out, r.styles.Warning.Render("Warning: "+msg))
}

func (r *Renderer) Errorf(format string, a ...interface{}) {
	fmt.Fprintln(r.out, r.styles.Error.Render("Error: "+fmt.Sprintf(format, a...)))
}

func (r *Renderer) Success(msg string) {
	fmt.Fprintln(r.out, r.styles.Success.Render(msg))
}

// Bold returns s in the bold style, for composing custom lines.
func (r *Renderer) Bold(s string) string {
	return r.styles.Bold.Render(s)
}

// Table prints t using the renderer's styles.
func (r *Renderer) Table(t *Table) {
	if content := t.view(r.styles); content != "" {
		fmt.Fprint(r.out, content)
	}
}

// Truncate shortens s to at most n runes, marking a cut with an ellipsis.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
