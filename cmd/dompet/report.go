package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"dompet/internal/models"
	"dompet/internal/services"
	"dompet/internal/stats"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4ECDC4")).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true)

	incomeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))
	expenseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))

	statusStyles = map[models.BudgetStatus]lipgloss.Style{
		models.BudgetStatusNormal:  lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4")),
		models.BudgetStatusWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFE66D")).Bold(true),
		models.BudgetStatusOver:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
	}

	titleCaser = cases.Title(language.English)
)

// newPrinter formats amounts with Indonesian digit grouping (1.250.000).
func newPrinter() *message.Printer {
	return message.NewPrinter(language.Indonesian)
}

// renderStatistics writes a period report: totals, expense breakdown,
// monthly series and budget status.
func renderStatistics(w io.Writer, report *services.Statistics, p *message.Printer) {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Statistics %s", report.Range)))
	b.WriteString("\n")

	fmt.Fprintf(&b, "%-14s %s\n", "Income", incomeStyle.Render(p.Sprintf("%d", report.TotalIncome)))
	fmt.Fprintf(&b, "%-14s %s\n", "Expense", expenseStyle.Render(p.Sprintf("%d", report.TotalExpense)))
	fmt.Fprintf(&b, "%-14s %s\n", "Net", p.Sprintf("%d", report.Net))
	fmt.Fprintf(&b, "%-14s %d%%\n", "Savings rate", report.SavingsRate)

	b.WriteString("\n" + headerStyle.Render("Expenses by category") + "\n")
	if len(report.ByCategory) == 0 {
		b.WriteString(subtleStyle.Render("no expenses in this period") + "\n")
	}
	for _, cat := range report.ByCategory {
		fmt.Fprintf(&b, "%-20s %15s %4d%%\n", cat.Name, p.Sprintf("%d", cat.Amount), cat.Percentage)
	}

	b.WriteString("\n" + headerStyle.Render("Monthly") + "\n")
	for _, m := range report.Monthly {
		fmt.Fprintf(&b, "%-10s %s %s %s\n",
			m.Month,
			incomeStyle.Render(fmt.Sprintf("%15s", p.Sprintf("%d", m.Income))),
			expenseStyle.Render(fmt.Sprintf("%15s", p.Sprintf("%d", m.Expense))),
			fmt.Sprintf("%15s", p.Sprintf("%d", m.Savings)),
		)
	}

	if len(report.Budgets) > 0 {
		b.WriteString("\n" + headerStyle.Render("Budgets") + "\n")
		renderBudgets(&b, report.Budgets, p)
	}

	fmt.Fprint(w, b.String())
}

func renderBudgets(w io.Writer, items []stats.BudgetItem, p *message.Printer) {
	for _, item := range items {
		style, ok := statusStyles[item.Status]
		if !ok {
			style = subtleStyle
		}
		fmt.Fprintf(w, "%-20s %15s / %-15s %4d%% %s\n",
			item.Category.Name,
			p.Sprintf("%d", item.Spent),
			p.Sprintf("%d", item.Limit),
			item.Percentage,
			style.Render(titleCaser.String(string(item.Status))),
		)
	}
}

// renderImport writes the outcome of a multi-file import.
func renderImport(w io.Writer, results []fileResult, p *message.Printer) {
	var imported, skipped, failed int
	b := &strings.Builder{}
	b.WriteString("\n" + headerStyle.Render("Import summary") + "\n")
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(b, "%-30s %s\n", r.Name, expenseStyle.Render("failed: "+r.Err.Error()))
			continue
		}
		imported += r.Result.Imported
		skipped += r.Result.Skipped
		fmt.Fprintf(b, "%-30s %s imported, %s skipped\n", r.Name,
			p.Sprintf("%d", r.Result.Imported), p.Sprintf("%d", r.Result.Skipped))
	}
	fmt.Fprintf(b, "%s\n", subtleStyle.Render(p.Sprintf("%d files, %d imported, %d skipped, %d failed",
		len(results), imported, skipped, failed)))
	fmt.Fprint(w, b.String())
}
