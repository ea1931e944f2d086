package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/panels/internal/catalog"
	"github.com/five82/panels/internal/config"
	"github.com/five82/panels/internal/instance"
	"github.com/five82/panels/internal/state"
)

// Header builds the item heading: the configured header, the item number,
// the title and the publish date, joined by " - ". Parts switched off in d
// are left out. The heading is empty when titles are hidden.
func Header(d config.DisplayConfig, it catalog.Item) string {
	if !d.ShowTitle {
		return ""
	}
	first := strings.TrimSpace(d.Header)
	if d.ShowNum && it.Index > 0 {
		first = strings.TrimSpace(first + " " + strconv.Itoa(it.Index))
	}
	parts := []string{}
	if first != "" {
		parts = append(parts, first)
	}
	if title := it.DisplayTitle(); title != "" {
		parts = append(parts, title)
	}
	if d.ShowDate {
		if date := it.Date(); date != "" {
			parts = append(parts, date)
		}
	}
	return strings.Join(parts, " - ")
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	view, _ := m.snapshot.View(m.focusedID())
	st, hasStatus := m.status[m.focusedID()]

	var sections []string
	sections = append(sections, m.renderTitleBar())
	sections = append(sections, m.renderContent(view))
	if m.showLogs {
		sections = append(sections, m.renderLogPane())
	}
	if m.prompting {
		sections = append(sections, m.prompt.View())
	}
	sections = append(sections, m.renderStatusLine(view, st, hasStatus))
	sections = append(sections, m.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderTitleBar draws the instance tabs on the surface color.
func (m Model) renderTitleBar() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)

	parts := []string{bg.Render("panels", styles.AccentText.Bold(true))}
	for i, id := range m.ids {
		style := styles.MutedText
		if i == m.focused {
			style = styles.Text.Bold(true).Underline(true)
		}
		parts = append(parts, bg.Render(id, style))
	}
	return bg.FillLine(" "+bg.Join(parts, "  "), m.width)
}

// renderContent renders the loading, error or item state of a view.
func (m Model) renderContent(v state.View) string {
	styles := m.theme.Styles()
	width := max(m.width-4, 20)

	switch {
	case !v.HasItem && v.LastError != nil:
		body := styles.DangerText.Render("ERROR") + "\n" +
			styles.Text.Width(width).Render(failureText(v.LastError))
		return styles.Panel.Render(body)

	case !v.HasItem:
		return styles.Panel.Render(styles.MutedText.Render("Loading..."))
	}

	var b strings.Builder
	if heading := Header(m.display, v.Item); heading != "" {
		b.WriteString(styles.Text.Bold(true).Render(truncate(heading, width)))
		b.WriteString("\n\n")
	}
	b.WriteString(styles.FaintText.Render("image "))
	b.WriteString(styles.InfoText.Render(v.Item.Img))
	if link := strings.TrimSpace(v.Item.Link); link != "" {
		b.WriteString("\n")
		b.WriteString(styles.FaintText.Render("link  "))
		b.WriteString(styles.InfoText.Render(link))
	}
	if m.display.ShowAltText && strings.TrimSpace(v.Item.Alt) != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.MutedText.Italic(true).Width(width).Render(v.Item.Alt))
	}
	return styles.Panel.Render(b.String())
}

// renderStatusLine shows the position, scheduler state and last error.
func (m Model) renderStatusLine(v state.View, st instance.Status, hasStatus bool) string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	var parts []string
	switch {
	case v.HasItem && v.Count > 0:
		parts = append(parts, bg.Render(fmt.Sprintf("#%d of %d", v.Item.Index, v.Count), styles.Text))
	case v.Count > 0:
		parts = append(parts, bg.Render(fmt.Sprintf("%d items", v.Count), styles.Text))
	}

	if hasStatus && m.width >= LayoutCompactWidth {
		parts = append(parts, bg.Render(st.Visibility.String(), visibilityStyle(styles, st.Visibility)))
		parts = append(parts, bg.Render(phaseText(st), phaseStyle(styles, st.Phase)))
		parts = append(parts, bg.Render(string(st.Sequence)+" / "+st.Firing.String(), styles.MutedText))
	}
	if hasStatus && st.Busy {
		parts = append(parts, bg.Render("loading", styles.InfoText))
	}
	if v.IsOffline() {
		parts = append(parts, bg.Render("offline", styles.DangerText))
	}
	if v.HasItem && v.LastError != nil {
		parts = append(parts, bg.Render(truncate(failureText(v.LastError), 60), styles.WarningText))
	}
	if !v.LastUpdated.IsZero() && m.width >= LayoutCompactWidth {
		parts = append(parts, bg.Render("updated "+v.LastUpdated.Format("15:04:05"), styles.FaintText))
	}
	return bg.FillLine(" "+bg.Join(parts, " │ "), m.width)
}

func (m Model) renderLogPane() string {
	styles := m.theme.Styles()
	return styles.Panel.
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Render(m.logView.View())
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	if m.flash != "" {
		style := styles.InfoText
		if m.flashErr {
			style = styles.DangerText
		}
		return style.Render(" " + m.flash)
	}
	return " " + m.help.View(m.keys)
}

func failureText(f *instance.Failure) string {
	if f == nil {
		return ""
	}
	text := string(f.Kind)
	if f.Class != "" {
		text += " (" + f.Class + ")"
	}
	if f.Detail != "" {
		text += ": " + f.Detail
	}
	return text
}

func phaseText(st instance.Status) string {
	if st.Interval <= 0 {
		return "manual"
	}
	switch st.Phase {
	case instance.PhaseArmed:
		return "every " + shortDuration(st.Interval)
	case instance.PhaseDeferred:
		return "update pending"
	default:
		return "paused"
	}
}

func shortDuration(d time.Duration) string {
	s := d.String()
	if strings.HasSuffix(s, "m0s") {
		s = s[:len(s)-2]
	}
	if strings.HasSuffix(s, "h0m") {
		s = s[:len(s)-2]
	}
	return s
}

func visibilityStyle(s Styles, v instance.Visibility) lipgloss.Style {
	if v == instance.Hidden {
		return s.MutedText
	}
	return s.SuccessText
}

func phaseStyle(s Styles, p instance.Phase) lipgloss.Style {
	switch p {
	case instance.PhaseArmed:
		return s.AccentText
	case instance.PhaseDeferred:
		return s.WarningText
	default:
		return s.FaintText
	}
}
