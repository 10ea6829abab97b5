package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ration/internal/domain"
)

var (
	statusStyles = map[domain.Status]lipgloss.Style{
		domain.StatusOptimal:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		domain.StatusGood:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36")),
		domain.StatusMarginal:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		domain.StatusInfeasible: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
	}
	headingStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
)

// dietModel renders one DietResult as a bubbles/table view plus a styled
// summary header and footer. The nutrient-comparison table owns keyboard
// focus; the ingredient breakdown and warnings are static text around it.
type dietModel struct {
	result domain.DietResult
	table  table.Model
}

func newDietModel(result domain.DietResult) dietModel {
	columns := []table.Column{
		{Title: "Nutrient", Width: 14},
		{Title: "Supplied", Width: 10},
		{Title: "Target", Width: 10},
		{Title: "Unit", Width: 14},
		{Title: "Severity", Width: 10},
	}

	rows := make([]table.Row, 0, len(result.NutrientComparisons))
	for _, nc := range result.NutrientComparisons {
		rows = append(rows, table.Row{
			nc.Nutrient,
			fmt.Sprintf("%.2f", nc.Supplied),
			fmt.Sprintf("%.2f", nc.Target),
			nc.Unit,
			string(nc.Severity),
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(len(rows)+1),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).BorderBottom(true)
	styles.Selected = styles.Selected.Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	t.SetStyles(styles)

	return dietModel{result: result, table: t}
}

func (m dietModel) Init() tea.Cmd { return nil }

func (m dietModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m dietModel) View() string {
	var b strings.Builder

	status, ok := statusStyles[m.result.Status]
	if !ok {
		status = lipgloss.NewStyle()
	}
	fmt.Fprintf(&b, "%s  %s\n\n", headingStyle.Render("Diet status:"), status.Render(string(m.result.Status)))
	fmt.Fprintf(&b, "Total cost (as-fed): %.2f/d\n", m.result.TotalCostAsFed)
	fmt.Fprintf(&b, "Water intake: %.1f L/d   Methane: %.1f g/d (%.2f g/kg DMI)\n\n",
		m.result.WaterIntakeLD, m.result.Methane.ProductionGD, m.result.Methane.YieldGPerKgDMI)

	b.WriteString(headingStyle.Render("Ingredient breakdown"))
	b.WriteString("\n")
	for _, row := range m.result.Breakdown {
		fmt.Fprintf(&b, "  %-20s %6.2f kg DM  %6.2f kg AF  %8.2f cost\n", row.Name, row.DMKg, row.AFKg, row.Cost)
	}
	b.WriteString("\n")

	b.WriteString(headingStyle.Render("Nutrient comparison"))
	b.WriteString("\n")
	b.WriteString(m.table.View())
	b.WriteString("\n\n")

	if len(m.result.Warnings) > 0 {
		b.WriteString(headingStyle.Render("Warnings"))
		b.WriteString("\n")
		for _, w := range m.result.Warnings {
			b.WriteString(warningStyle.Render("  - " + w))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.result.LimitingNutrient != "" {
		fmt.Fprintf(&b, "Limiting nutrient: %s   milk/energy: %.1f L/d   milk/protein: %.1f L/d   cost/kg milk: %.2f\n\n",
			m.result.LimitingNutrient, m.result.MilkSupportedByEnergyL, m.result.MilkSupportedByProteinL, m.result.CostPerKgMilk)
	}

	b.WriteString(helpStyle.Render("↑/↓ scroll rows · q to quit"))
	return b.String()
}

func runTUI(result domain.DietResult) error {
	_, err := tea.NewProgram(newDietModel(result)).Run()
	return err
}
