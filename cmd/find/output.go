package find

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/tbrdeals/internal/book"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	priceStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("114"))

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	emptyStyle = lipgloss.NewStyle().
			Faint(true)
)

// RenderDeals formats deals for the terminal. Tombstone rows are
// skipped; they record a deal ending, not a find. Editions of the
// same title stay together, separated from other title groups by a
// blank line.
func RenderDeals(deals []book.Book) string {
	var live []book.Book
	for _, d := range deals {
		if !d.Deleted {
			live = append(live, d)
		}
	}
	if len(live) == 0 {
		return emptyStyle.Render("No deals found.")
	}

	var sb strings.Builder
	priorTitleID := live[0].TitleID()
	for _, d := range live {
		if d.TitleID() != priorTitleID {
			priorTitleID = d.TitleID()
			sb.WriteString("\n")
		}
		sb.WriteString(renderDeal(d))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func renderDeal(d book.Book) string {
	title := d.Title
	if len(title) > 75 {
		title = title[:75] + "..."
	}

	return fmt.Sprintf("%s %s %s %s",
		titleStyle.Render(title),
		detailStyle.Render(fmt.Sprintf("%s by %s -", d.Format, d.Authors)),
		priceStyle.Render(book.PriceString(d.CurrentPrice)),
		detailStyle.Render(fmt.Sprintf("- %d%% Off at %s", d.Discount(), d.Retailer)),
	)
}
