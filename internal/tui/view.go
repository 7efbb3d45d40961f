package tui

import (
	"fmt"
	"sort"
	"strings"

	"netthreat/internal/analysis"

	"github.com/charmbracelet/lipgloss"
)

const maxListLines = 12

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFF7DB")).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Margin(0, 1)

	activeTabStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	severityStyles = map[analysis.Severity]lipgloss.Style{
		analysis.SeverityCritical: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		analysis.SeverityHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("202")),
		analysis.SeverityMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		analysis.SeverityLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("45")),
	}
)

func (m ResultModel) View() string {
	res := m.report.Results
	title := titleStyle.Render(fmt.Sprintf("Traffic Analysis - %s", m.report.FileName))

	summary := fmt.Sprintf("Packets: %d\nThreats: %d\nCredentials: %d",
		res.Stats.TotalPackets, len(res.Threats), len(res.CredentialHits))
	summaryBox := infoStyle.Render(summary)

	// Protocols
	protos := make([]string, 0, len(res.Stats.ProtocolCounts))
	for proto := range res.Stats.ProtocolCounts {
		protos = append(protos, proto)
	}
	sort.Strings(protos)
	var protoStrs []string
	for _, proto := range protos {
		protoStrs = append(protoStrs, fmt.Sprintf("%s: %d", proto, res.Stats.ProtocolCounts[proto]))
	}
	if len(protoStrs) == 0 {
		protoStrs = append(protoStrs, "No TCP/UDP traffic")
	}
	protoBox := infoStyle.Render("Protocols:\n" + strings.Join(protoStrs, "\n"))

	ttBox := infoStyle.Render("Top Sources\n" + m.table.View())

	detailBox := infoStyle.Render(m.tabs() + "\n\n" + m.sectionBody())

	row1 := lipgloss.JoinHorizontal(lipgloss.Top, summaryBox, protoBox)
	body := lipgloss.JoinVertical(lipgloss.Left, title, row1, ttBox, detailBox)

	return body + "\nTab to switch section, q to quit."
}

func (m ResultModel) tabs() string {
	parts := make([]string, len(sectionTitles))
	for i, name := range sectionTitles {
		if section(i) == m.section {
			parts[i] = activeTabStyle.Render(name)
		} else {
			parts[i] = inactiveTabStyle.Render(name)
		}
	}
	return strings.Join(parts, "  ")
}

func (m ResultModel) sectionBody() string {
	res := m.report.Results

	var lines []string
	switch m.section {
	case sectionThreats:
		for _, t := range res.Threats {
			lines = append(lines, severityStyles[t.Severity].Render(fmt.Sprintf("[%s]", t.Severity))+" "+t.Description)
		}
	case sectionCredentials:
		lines = res.CredentialHits
	case sectionDNS:
		lines = res.DNSHistory
	case sectionHTTP:
		lines = res.HTTPHosts
	}

	if len(lines) == 0 {
		return "Nothing found."
	}
	if len(lines) > maxListLines {
		more := len(lines) - maxListLines
		lines = append(lines[:maxListLines:maxListLines], fmt.Sprintf("... and %d more", more))
	}
	return strings.Join(lines, "\n")
}
