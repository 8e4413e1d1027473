package chat

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tbekken/ochat/models"
	"github.com/tbekken/ochat/opencode"
	"github.com/tbekken/ochat/render"
)

// historyLimit caps assistant text in /history listings, in runes.
const historyLimit = 200

// commandHelp pairs each command with its help line, in display order.
var commandHelp = []struct {
	usage, desc string
}{
	{"/help", "Show this help"},
	{"/new", "Start a fresh session"},
	{"/history", "Show the current session's messages"},
	{"/sessions", "List the sessions on the server"},
	{"/models", "List the available models"},
	{"/model [provider/model]", "Show or switch the active model"},
	{"/abort", "Abort the in-flight response"},
	{"/quit", "Leave the chat (also /exit)"},
}

// Dispatch routes one slash command. The keyword matches
// case-insensitively; argument text keeps its case. It returns quit=true
// for the exit commands, and a non-nil error only for failures the loop
// cannot recover from.
func (c *Chat) Dispatch(ctx context.Context, input string) (quit bool, err error) {
	keyword := input
	arg := ""
	if i := strings.IndexAny(input, " \t"); i >= 0 {
		keyword, arg = input[:i], strings.TrimSpace(input[i+1:])
	}

	switch strings.ToLower(keyword) {
	case "/help":
		c.showHelp()
	case "/new":
		return false, c.newSession(ctx)
	case "/history":
		c.showHistory(ctx)
	case "/sessions":
		c.listSessions(ctx)
	case "/models":
		c.showModels(ctx)
	case "/model":
		if arg == "" {
			c.renderer.Printf("Active model: %s", c.model)
			c.renderer.Muted("Switch with /model provider/model or /model <model>.")
		} else {
			c.switchModel(ctx, arg)
		}
	case "/abort":
		c.abort(ctx)
	case "/quit", "/exit":
		return true, nil
	default:
		c.renderer.Errorf("unknown command: %s", keyword)
		c.renderer.Muted("Type /help for the available commands.")
	}
	return false, nil
}

func (c *Chat) showHelp() {
	table := render.NewTable("Commands", "Command", "Description")
	for _, cmd := range commandHelp {
		table.AddRow(cmd.usage, cmd.desc)
	}
	c.renderer.Table(table)
	c.renderer.Muted("Anything else is sent to the agent. Ctrl+C interrupts a response in flight.")
}

func (c *Chat) newSession(ctx context.Context) error {
	if err := c.StartSession(ctx); err != nil {
		return err
	}
	c.renderer.Success(fmt.Sprintf("Started session %s", displayID(c.session.ID)))
	return nil
}

// displayID shortens a session id the way listings show them.
func displayID(id string) string {
	if len(id) > 8 {
		return id[:8] + "..."
	}
	return id
}

func (c *Chat) showHistory(ctx context.Context) {
	msgs, err := c.service.Messages(ctx, c.session.ID)
	if err != nil {
		c.renderer.Errorf("could not fetch the history: %v", err)
		return
	}
	if len(msgs) == 0 {
		c.renderer.Muted("No messages yet.")
		return
	}
	for _, msg := range msgs {
		for _, part := range msg.Parts {
			switch part.Type {
			case opencode.PartText:
				if strings.TrimSpace(part.Text) == "" {
					continue
				}
				if msg.Info.Role == "user" {
					c.renderer.Printf("%s %s", c.renderer.Bold("You:"), part.Text)
				} else {
					c.renderer.Printf("%s %s", c.renderer.Bold("Agent:"), render.Truncate(part.Text, historyLimit))
				}
			case opencode.PartTool:
				status := ""
				if part.State != nil {
					status = part.State.Status
				}
				c.renderer.Muted(fmt.Sprintf("Tool: %s (%s)", part.Tool, status))
			}
		}
	}
}

func (c *Chat) listSessions(ctx context.Context) {
	sessions, err := c.service.ListSessions(ctx)
	if err != nil {
		c.renderer.Errorf("could not list the sessions: %v", err)
		return
	}
	if len(sessions) == 0 {
		c.renderer.Muted("No sessions on the server.")
		return
	}
	table := render.NewTable("Sessions", "", "ID", "Title")
	for _, sess := range sessions {
		marker := " "
		if c.session != nil && sess.ID == c.session.ID {
			marker = "*"
		}
		title := sess.Title
		if title == "" {
			title = "(untitled)"
		}
		table.AddRow(marker, displayID(sess.ID), title)
	}
	c.renderer.Table(table)
}

func (c *Chat) showModels(ctx context.Context) {
	catalog, err := c.service.Providers(ctx)
	if err != nil {
		c.renderer.Errorf("could not fetch the model catalog: %v", err)
		return
	}
	c.registry = models.New(catalog)

	for _, provider := range catalog.Providers {
		name := provider.Name
		if name == "" {
			name = provider.ID
		}
		table := render.NewTable(fmt.Sprintf("%s (%s)", name, provider.ID), "", "Model", "Name", "Cost per 1M")

		ids := make([]string, 0, len(provider.Models))
		for id := range provider.Models {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		for _, id := range ids {
			info := provider.Models[id]
			marker := " "
			if c.model.Provider == provider.ID && c.model.Model == id {
				marker = "*"
			}
			displayName := info.Name
			if id == catalog.Default[provider.ID] {
				displayName = strings.TrimSpace(displayName + " (default)")
			}
			cost := ""
			if info.Cost != nil {
				cost = fmt.Sprintf("$%g in / $%g out", info.Cost.Input, info.Cost.Output)
			}
			table.AddRow(marker, id, displayName, cost)
		}
		c.renderer.Table(table)
	}
}

// switchModel applies a new selection only when the catalog confirms both
// halves; an unreachable catalog downgrades to a warning and the switch
// happens anyway.
func (c *Chat) switchModel(ctx context.Context, spec string) {
	catalog, err := c.service.Providers(ctx)
	if err != nil {
		sel := models.Parse(spec)
		if sel.Model == "" {
			c.renderer.Errorf("empty model spec")
			return
		}
		if sel.Provider == "" {
			sel.Provider = c.model.Provider
		}
		c.renderer.Warn(fmt.Sprintf("could not validate against the catalog (%v), switching anyway", err))
		c.model = sel
		c.renderer.Success(fmt.Sprintf("Switched model to %s", c.model))
		return
	}

	c.registry = models.New(catalog)
	sel, err := c.registry.Resolve(spec)
	if err == nil {
		err = c.registry.Validate(sel)
	}
	if err != nil {
		c.renderer.Errorf("%v", err)
		c.renderer.Printf("The active model stays %s", c.model)
		return
	}
	c.model = sel
	c.renderer.Success(fmt.Sprintf("Switched model to %s", c.model))
}

func (c *Chat) abort(ctx context.Context) {
	actx, cancel := context.WithTimeout(ctx, abortTimeout)
	defer cancel()
	if err := c.service.Abort(actx, c.session.ID); err != nil {
		c.renderer.Errorf("abort failed: %v", err)
		return
	}
	c.renderer.Success("Abort requested.")
}
