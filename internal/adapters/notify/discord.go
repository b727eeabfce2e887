package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alejandrodnm/floatwatch/internal/domain"
)

const (
	// dealsPerMessage acota cuántos deals se renderizan por mensaje para no
	// chocar con el límite de tamaño de Discord.
	dealsPerMessage = 5

	webhookTimeout = 10 * time.Second
)

// Discord implementa ports.Notifier contra un webhook de Discord.
type Discord struct {
	http    *http.Client
	webhook string
}

// NewDiscord crea un notificador contra el webhook dado.
func NewDiscord(webhook string) *Discord {
	return &Discord{
		http:    &http.Client{Timeout: webhookTimeout},
		webhook: webhook,
	}
}

// Send entrega un mensaje de texto plano al webhook.
func (d *Discord) Send(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]string{"content": text})
	if err != nil {
		return fmt.Errorf("notify.Discord.Send: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhook, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("notify.Discord.Send: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.http.Do(req)
	if err != nil {
		return fmt.Errorf("notify.Discord.Send: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notify.Discord.Send: webhook returned %d", resp.StatusCode)
	}
	return nil
}

// NotifyDeals agrupa los deals en chunks acotados y envía un mensaje por chunk.
func (d *Discord) NotifyDeals(ctx context.Context, deals []domain.Deal) error {
	for start := 0; start < len(deals); start += dealsPerMessage {
		end := start + dealsPerMessage
		if end > len(deals) {
			end = len(deals)
		}

		parts := make([]string, 0, end-start)
		for _, deal := range deals[start:end] {
			parts = append(parts, renderDeal(deal))
		}

		if err := d.Send(ctx, strings.Join(parts, "\n\n")); err != nil {
			return err
		}
	}
	return nil
}

// renderDeal produce el mensaje corto título + cuerpo de un deal.
func renderDeal(d domain.Deal) string {
	var lines []string

	if d.Stage != domain.StageNone {
		lines = append(lines, fmt.Sprintf("⏳ Auction: %s [%s] bid $%.2f (↓%.1f%% vs ref $%.2f) — %.0fm left",
			d.Listing.ItemName, d.Listing.Wear, d.Listing.PriceUSD, d.DropPct, d.Reference, d.MinutesLeft))
	} else {
		lines = append(lines, fmt.Sprintf("🔔 Deal: %s [%s] $%.2f (↓%.1f%% vs batch avg $%.2f)",
			d.Listing.ItemName, d.Listing.Wear, d.Listing.PriceUSD, d.DropPct, d.Reference))
	}

	lines = append(lines, fmt.Sprintf("float %s", d.Listing.FloatLabel()))
	if d.SearchURL != "" {
		lines = append(lines, "Search: "+d.SearchURL)
	}
	if d.StallURL != "" {
		lines = append(lines, "Seller: "+d.StallURL)
	}
	if d.Listing.InspectLink != "" {
		lines = append(lines, "Inspect: "+d.Listing.InspectLink)
	}

	return strings.Join(lines, "\n")
}
