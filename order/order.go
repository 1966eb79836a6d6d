package order

import (
	"fmt"
	"math"
	"strings"
	"time"

	"foodagent/catalog"
)

// Status is the lifecycle state of a placed order.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
	StatusCancelled Status = "cancelled"
)

// Item is a cart line: a product snapshot and how many units were requested.
type Item struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// UnitPrice applies the bulk price once the quantity reaches the threshold.
func (i Item) UnitPrice() float64 {
	return i.Product.PriceFor(i.Quantity)
}

func (i Item) Subtotal() float64 {
	return roundCents(i.UnitPrice() * float64(i.Quantity))
}

// Total sums the subtotals of items.
func Total(items []Item) float64 {
	var total float64
	for _, it := range items {
		total += it.Subtotal()
	}
	return roundCents(total)
}

// Order is one entry in an organization's order history. It is never modified
// after checkout.
type Order struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Items     []Item    `json:"items"`
	Total     float64   `json:"total"`
	Status    Status    `json:"status"`
}

// Summary renders the order as a short plain-text confirmation.
func (o Order) Summary(orgName string) string {
	var b strings.Builder
	if orgName != "" {
		fmt.Fprintf(&b, "New order from %s\n", orgName)
	} else {
		b.WriteString("New order\n")
	}
	fmt.Fprintf(&b, "Order %s placed %s\n\n", o.ID, o.Timestamp.Format("2006-01-02 15:04"))
	for _, it := range o.Items {
		fmt.Fprintf(&b, "• %d × %s (%s): €%.2f\n", it.Quantity, it.Product.Name, it.Product.Unit, it.Subtotal())
	}
	fmt.Fprintf(&b, "\nTotal: €%.2f", o.Total)
	return b.String()
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
