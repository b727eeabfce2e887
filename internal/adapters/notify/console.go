package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alejandrodnm/floatwatch/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// Console implementa ports.Notifier escribiendo a stdout.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador de consola.
// Con table=true imprime la tabla completa; si no, una línea compacta.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Send imprime un mensaje de texto plano.
func (c *Console) Send(_ context.Context, text string) error {
	fmt.Fprintln(c.out, text)
	return nil
}

// NotifyDeals imprime los deals en el modo configurado.
func (c *Console) NotifyDeals(_ context.Context, deals []domain.Deal) error {
	if len(deals) == 0 {
		fmt.Fprintf(c.out, "[%s] no deals found\n", time.Now().Format("15:04:05"))
		return nil
	}

	if c.table {
		c.printTable(deals)
	} else {
		c.printCompact(deals)
	}
	return nil
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(deals []domain.Deal) {
	now := time.Now().Format("15:04:05")

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %d deal(s)", now, len(deals))

	shown := 0
	for _, d := range deals {
		if shown >= 4 {
			fmt.Fprintf(&sb, " | +%d more", len(deals)-shown)
			break
		}
		name := compactName(d.Listing.ItemName, 30)
		if d.Stage != domain.StageNone {
			fmt.Fprintf(&sb, " | %s bid$%.2f ↓%.1f%% %dm",
				name, d.Listing.PriceUSD, d.DropPct, int(d.MinutesLeft))
		} else {
			fmt.Fprintf(&sb, " | %s $%.2f ↓%.1f%%",
				name, d.Listing.PriceUSD, d.DropPct)
		}
		shown++
	}

	fmt.Fprintln(c.out, sb.String())
}

// printTable imprime la tabla completa de deals rankeados.
func (c *Console) printTable(deals []domain.Deal) {
	now := time.Now().Format("15:04:05")
	fmt.Fprintf(c.out, "\n[%s] %d deal(s)\n", now, len(deals))

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Item", "Wear", "Price", "Ref", "Drop%", "Float", "Left", "Stage")

	for i, d := range deals {
		left, stage := "-", "-"
		if d.Stage != domain.StageNone {
			left = fmt.Sprintf("%.1fm", d.MinutesLeft)
			stage = string(d.Stage)
		}
		table.Append(
			fmt.Sprintf("%d", i+1),
			compactName(d.Listing.ItemName, 45),
			d.Listing.Wear,
			fmt.Sprintf("$%.2f", d.Listing.PriceUSD),
			fmt.Sprintf("$%.2f", d.Reference),
			fmt.Sprintf("%.1f", d.DropPct),
			d.Listing.FloatLabel(),
			left,
			stage,
		)
	}

	table.Render()

	for _, d := range deals {
		if d.SearchURL != "" {
			fmt.Fprintf(c.out, "  %s → %s\n", compactName(d.Listing.ItemName, 40), d.SearchURL)
		}
	}
}

// compactName trunca un market_hash_name largo para que quepa en una línea.
func compactName(name string, maxLen int) string {
	if name == "" {
		return "?"
	}
	if len(name) <= maxLen {
		return name
	}
	return name[:maxLen-3] + "..."
}
