package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"rfq-workers/internal/scoring"
)

type printStyles struct {
	header lipgloss.Style
	winner lipgloss.Style
	cell   lipgloss.Style
	dim    lipgloss.Style
}

func newPrintStyles() printStyles {
	return printStyles{
		header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1),
		winner: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")).Padding(0, 1),
		cell:   lipgloss.NewStyle().Padding(0, 1),
		dim:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func printRanking(w io.Writer, result *scoring.RankedResult) {
	styles := newPrintStyles()

	fmt.Fprintln(w, styles.dim.Render(fmt.Sprintf(
		"weights: price=%s leadTime=%s quality=%s reliability=%s",
		num(result.Weights.Price), num(result.Weights.LeadTime),
		num(result.Weights.Quality), num(result.Weights.Reliability),
	)))

	if len(result.Vendors) == 0 {
		fmt.Fprintln(w, "no quotes to rank")
		return
	}

	rows := make([][]string, len(result.Vendors))
	for i, v := range result.Vendors {
		rows[i] = []string{
			strconv.Itoa(i + 1), v.Vendor, num(v.Score),
			num(v.Components.Price), num(v.Components.LeadTime),
			num(v.Components.Quality), num(v.Components.Reliability),
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "VENDOR", "SCORE", "PRICE", "LEAD TIME", "QUALITY", "RELIABILITY").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styles.header
			case row == 0:
				return styles.winner
			default:
				return styles.cell
			}
		})

	fmt.Fprintln(w, t.Render())
	if result.Winner != nil {
		fmt.Fprintln(w, styles.winner.UnsetPadding().Render("winner: "+result.Winner.Vendor))
	}
}

func printRawScores(w io.Writer, raw []scoring.RawScore) {
	styles := newPrintStyles()

	rows := make([][]string, len(raw))
	for i, r := range raw {
		rows[i] = []string{r.Vendor, num(r.Price), num(r.LeadTime), num(r.Quality), num(r.Reliability)}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("VENDOR", "COST", "LEAD DAYS", "QUALITY", "RELIABILITY").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.header
			}
			return styles.cell
		})

	fmt.Fprintln(w, styles.dim.Render("raw criteria (input order)"))
	fmt.Fprintln(w, t.Render())
}
