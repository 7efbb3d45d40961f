package tui

import (
	"fmt"

	"netthreat/internal/reporting"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type section int

const (
	sectionThreats section = iota
	sectionCredentials
	sectionDNS
	sectionHTTP
	sectionCount
)

var sectionTitles = [...]string{"Threats", "Credentials", "DNS Queries", "HTTP Hosts"}

// ResultModel displays one finished analysis report.
type ResultModel struct {
	report  reporting.Report
	table   table.Model
	section section
	width   int
}

func NewResultModel(rep reporting.Report) ResultModel {
	columns := []table.Column{
		{Title: "Source IP", Width: 20},
		{Title: "Packets", Width: 10},
		{Title: "OS", Width: 15},
	}

	stats := rep.Results.Stats
	rows := make([]table.Row, len(stats.TopSources))
	for i, src := range stats.TopSources {
		rows[i] = table.Row{src.Address, fmt.Sprintf("%d", src.Count), stats.OSFingerprint[src.Address]}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(6),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ResultModel{
		report: rep,
		table:  t,
	}
}

func (m ResultModel) Init() tea.Cmd {
	return nil
}
