package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"

	"github.com/shaharia-lab/stocknotify/internal/inventory"
	"github.com/shaharia-lab/stocknotify/internal/storage"
)

const notAvailable = "N/A"

// styles holds the lipgloss styles bound to one output stream.
type styles struct {
	title  lipgloss.Style
	label  lipgloss.Style
	header lipgloss.Style
	warn   lipgloss.Style
	ok     lipgloss.Style
	failed lipgloss.Style
}

// newStyles builds styles for w. NO_COLOR and non-terminal writers get plain text.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	if termenv.EnvNoColor() {
		r.SetColorProfile(termenv.Ascii)
	}
	return styles{
		title:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		label:  r.NewStyle().Foreground(lipgloss.Color("244")),
		header: r.NewStyle().Bold(true).Padding(0, 1),
		warn:   r.NewStyle().Foreground(lipgloss.Color("214")),
		ok:     r.NewStyle().Foreground(lipgloss.Color("42")),
		failed: r.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

// printBanner writes the startup banner. It is the only output visible in
// the terminal during normal operation; structured logs go to the log file.
func printBanner(w io.Writer, version, serverURL, logFile string, mailEnabled bool) {
	st := newStyles(w)
	mailStatus := st.ok.Render("enabled")
	if !mailEnabled {
		mailStatus = st.warn.Render("disabled (set SMTP_HOST, MAIL_FROM_ADDRESS, MAIL_MANAGEMENT_ADDRESS)")
	}
	_, _ = fmt.Fprintf(w, "\n%s\n\n", st.title.Render("stocknotify "+version))
	_, _ = fmt.Fprintf(w, "%s %s\n", st.label.Render("API:  "), serverURL)
	_, _ = fmt.Fprintf(w, "%s %s\n", st.label.Render("Mail: "), mailStatus)
	_, _ = fmt.Fprintf(w, "%s %s\n\n", st.label.Render("Logs: "), logFile)
}

func renderTable(w io.Writer, headers []string, rows [][]string) string {
	st := newStyles(w)
	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return st.header
			}
			return cell
		}).
		String()
}

// productRows flattens products into table rows, marking low stock.
func productRows(products []*inventory.Product) [][]string {
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		cost := notAvailable
		if p.CostPrice != nil {
			cost = "$" + p.CostPrice.StringFixed(2)
		}
		status := ""
		if p.IsLowStock() {
			status = "LOW"
		}
		rows = append(rows, []string{
			p.ID,
			p.Name,
			p.SKUOr(notAvailable),
			strconv.Itoa(p.Stock),
			strconv.Itoa(p.LowStockThreshold),
			cost,
			status,
		})
	}
	return rows
}

var productHeaders = []string{"ID", "NAME", "SKU", "STOCK", "THRESHOLD", "COST", ""}

func logRows(entries []storage.NotificationLogEntry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		detail := e.MessageID
		if e.Status == storage.NotificationStatusFailed {
			detail = e.ErrorMsg
		}
		rows = append(rows, []string{
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			e.Kind,
			e.ProductName,
			e.Status,
			detail,
		})
	}
	return rows
}

var logHeaders = []string{"TIME", "KIND", "PRODUCT", "STATUS", "MESSAGE ID / ERROR"}
