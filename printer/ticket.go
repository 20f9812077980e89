package printer

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"
	"github.com/ocna/restaurant-pos/utils"
)

const (
	KindKitchen = "kitchen"
	KindPayment = "payment"

	DefaultWidth = 32
	minWidth     = 20
)

type Line struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Amount   float64 `json:"amount"`
}

// Ticket is one slip for the kitchen or the customer.
type Ticket struct {
	ID        uuid.UUID `json:"id"`
	Kind      string    `json:"kind"`
	TableName string    `json:"table_name"`
	Lines     []Line    `json:"lines"`
	Total     float64   `json:"total"`
	PrintedAt time.Time `json:"printed_at"`
}

func NewKitchenTicket(tableName string, lines []Line) Ticket {
	return Ticket{
		ID:        uuid.New(),
		Kind:      KindKitchen,
		TableName: tableName,
		Lines:     lines,
		PrintedAt: time.Now(),
	}
}

func NewPaymentTicket(tableName string, lines []Line, total float64) Ticket {
	return Ticket{
		ID:        uuid.New(),
		Kind:      KindPayment,
		TableName: tableName,
		Lines:     lines,
		Total:     total,
		PrintedAt: time.Now(),
	}
}

// Render lays the ticket out as plain text for a receipt printer that fits
// width columns.
func Render(t Ticket, width int) string {
	if width < minWidth {
		width = DefaultWidth
	}
	rule := strings.Repeat("-", width)

	var b strings.Builder
	title, footer := "ỐC NA", "Cảm ơn quý khách!"
	if t.Kind == KindKitchen {
		title, footer = "ỐC NA - BẾP", "Vui lòng chế biến"
	}

	writeLine(&b, center(title, width))
	writeLine(&b, "Bàn: "+t.TableName)
	writeLine(&b, "Thời gian: "+t.PrintedAt.Format("02/01/2006 15:04"))
	writeLine(&b, rule)

	for _, l := range t.Lines {
		if t.Kind == KindKitchen {
			writeLine(&b, runewidth.Truncate(fmt.Sprintf("%s x%d", l.Name, l.Quantity), width, "…"))
			continue
		}
		right := fmt.Sprintf(" x%d %s", l.Quantity, utils.FormatVND(l.Amount))
		writeLine(&b, columns(l.Name, right, width))
	}

	if t.Kind == KindPayment {
		writeLine(&b, rule)
		writeLine(&b, runewidth.FillLeft("Tổng: "+utils.FormatVND(t.Total), width))
	}
	b.WriteByte('\n')
	writeLine(&b, center(footer, width))
	return b.String()
}

func writeLine(b *strings.Builder, s string) {
	b.WriteString(strings.TrimRight(s, " "))
	b.WriteByte('\n')
}

func center(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return strings.Repeat(" ", (width-w)/2) + s
}

// columns puts left and right on one line, shortening left when it does not fit.
func columns(left, right string, width int) string {
	room := width - runewidth.StringWidth(right)
	if room < 1 {
		return left + right
	}
	return runewidth.FillRight(runewidth.Truncate(left, room, "…"), room) + right
}
