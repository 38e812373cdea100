// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/openchat-tui/internal/catalog"
	"github.com/jeranaias/openchat-tui/internal/model"
	"github.com/jeranaias/openchat-tui/internal/ui/styles"
	"github.com/jeranaias/openchat-tui/internal/util"
)

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	switch m.state {
	case statePicker:
		return m.picker.View()
	case stateBrowser:
		view := m.browser.View()
		if m.confirm == confirmDeleteOne {
			view += "\n" + styles.ConfirmPrompt.Render("Delete this conversation? (y/n)")
		} else if m.confirm == confirmDeleteAll {
			view += "\n" + styles.ConfirmPrompt.Render("Delete ALL other conversations? (y/n)")
		}
		return view
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusView())
	b.WriteString("\n")
	b.WriteString(styles.InputBoxFocused.Width(m.width - 2).Render(m.textarea.View()))
	return b.String()
}

// =============================================================================
// CHROME
// =============================================================================

func (m *Model) headerView() string {
	title := styles.Header.Render("openchat")
	hints := styles.HeaderHint.Render("ctrl+p models · ctrl+o history · ctrl+n new · ctrl+c quit")
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(hints)
	if gap < 1 {
		return title
	}
	return title + strings.Repeat(" ", gap) + hints
}

func (m *Model) statusView() string {
	if m.toastText != "" {
		if m.toastErr {
			return styles.StatusBar.Width(m.width).Render(styles.RenderError(m.toastText))
		}
		return styles.StatusBar.Width(m.width).Render(styles.RenderInfo(m.toastText))
	}

	modelName := m.session.ModelID()
	if info, ok := catalog.ByID(modelName); ok {
		modelName = info.Name
	}
	modelName = util.TruncateWidth(modelName, m.width/3)

	parts := []string{styles.StatusModel.Render(modelName)}
	if m.session.ReasoningAvailable() {
		if m.session.ReasoningMode() {
			parts = append(parts, styles.StatusReasoningOn.Render("reasoning on"))
		} else {
			parts = append(parts, "reasoning off")
		}
	}
	if m.streamingID != "" {
		parts = append(parts, styles.StatusStreaming.Render("streaming..."))
	}
	parts = append(parts, fmt.Sprintf("%d messages", m.session.Snapshot().MessageCount()))

	return styles.StatusBar.Width(m.width).Render(strings.Join(parts, "  ·  "))
}

// =============================================================================
// CONVERSATION RENDERING
// =============================================================================

// refreshViewport rebuilds the viewport content from the conversation.
func (m *Model) refreshViewport(gotoBottom bool) {
	if !m.ready {
		return
	}

	snap := m.session.Snapshot()

	var b strings.Builder
	if snap.IsEmpty() && (m.greeting.Active() || m.greeting.Visible() != "") {
		b.WriteString(styles.Greeting.Render(m.greeting.Visible()))
		b.WriteString("\n")
	}

	for _, msg := range snap.Messages {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n\n")
	}

	if line := m.thinking.view(); line != "" {
		b.WriteString(styles.Thinking.Render(line))
		b.WriteString("\n")
	}

	m.viewport.SetContent(b.String())
	if gotoBottom {
		m.viewport.GotoBottom()
	}
}

func (m *Model) renderMessage(msg *model.Message) string {
	timestamp := styles.Timestamp.Render(msg.Timestamp.Format("15:04"))

	switch msg.Role {
	case model.RoleUser:
		label := styles.UserLabel.Render(msg.Role.DisplayName()) + " " + timestamp
		return label + "\n" + styles.UserMessage.Render(msg.Content)

	case model.RoleAssistant:
		label := styles.AssistantLabel.Render(msg.Role.DisplayName()) + " " + timestamp

		if msg.IsStreaming {
			var parts []string
			if msg.HasReasoning() {
				// The section is live while tokens arrive; it collapses
				// behind the hint once the response finalizes.
				parts = append(parts, styles.Reasoning.Render("Reasoning:\n"+msg.ReasoningSteps))
			}
			parts = append(parts, styles.AssistantMessage.Render(msg.GetDisplayContent()+"▍"))
			return label + "\n" + strings.Join(parts, "\n")
		}

		var parts []string
		if msg.HasReasoning() {
			if msg.IsReasoningExpanded {
				parts = append(parts, styles.Reasoning.Render("Reasoning:\n"+msg.ReasoningSteps))
			} else {
				parts = append(parts, styles.ReasoningHint.Render("▸ reasoning hidden (ctrl+e to show)"))
			}
		}
		parts = append(parts, styles.AssistantMessage.Render(m.renderMarkdown(msg.Content)))
		return label + "\n" + strings.Join(parts, "\n")

	default:
		return styles.Timestamp.Render(msg.Content)
	}
}

// renderMarkdown renders final assistant content through glamour,
// falling back to the raw text when rendering fails.
func (m *Model) renderMarkdown(content string) string {
	if m.renderer == nil {
		return content
	}
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}
