package cart

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"pos-service/models"
)

var (
	// ErrInsufficientStock means the requested quantity exceeds the
	// product's last-known stock. The check is advisory: the snapshot can
	// be stale, and the finalizer re-validates against authoritative stock.
	ErrInsufficientStock = errors.New("insufficient stock")

	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// Line is one prospective sale line. UnitPrice is frozen when the line is
// first added; KnownStock is the stock snapshot used for advisory checks.
type Line struct {
	ProductID  string          `json:"product_id"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	LineTotal  decimal.Decimal `json:"line_total"`
	KnownStock int             `json:"known_stock"`
}

// Cart is the terminal-local cart state machine. It is owned by exactly one
// terminal session and never shared; it holds no reference to live stock.
type Cart struct {
	TerminalID string    `json:"terminal_id"`
	CustomerID string    `json:"customer_id,omitempty"`
	Lines      []Line    `json:"lines"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

func New(terminalID string) *Cart {
	return &Cart{TerminalID: terminalID, Lines: []Line{}}
}

// AddItem merges qty into an existing line or inserts a new one with the
// product's current price frozen in. Rejected without mutation when the
// resulting quantity would exceed the product's last-known stock.
func (c *Cart) AddItem(p models.Product, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	for i, line := range c.Lines {
		if line.ProductID != p.ID {
			continue
		}
		newQty := line.Quantity + qty
		if newQty > p.StockQuantity {
			return fmt.Errorf("%w: %s has %d left", ErrInsufficientStock, p.Name, p.StockQuantity)
		}
		c.Lines[i].Quantity = newQty
		c.Lines[i].LineTotal = line.UnitPrice.Mul(decimal.NewFromInt(int64(newQty)))
		c.Lines[i].KnownStock = p.StockQuantity
		c.touch()
		return nil
	}

	if qty > p.StockQuantity {
		return fmt.Errorf("%w: %s has %d left", ErrInsufficientStock, p.Name, p.StockQuantity)
	}
	c.Lines = append(c.Lines, Line{
		ProductID:  p.ID,
		Name:       p.Name,
		UnitPrice:  p.Price,
		Quantity:   qty,
		LineTotal:  p.Price.Mul(decimal.NewFromInt(int64(qty))),
		KnownStock: p.StockQuantity,
	})
	c.touch()
	return nil
}

// UpdateQuantity sets a line to qty, removing it when qty <= 0. The new
// quantity is re-validated against the line's last-known stock snapshot.
func (c *Cart) UpdateQuantity(productID string, qty int) error {
	if qty <= 0 {
		c.RemoveItem(productID)
		return nil
	}

	for i, line := range c.Lines {
		if line.ProductID != productID {
			continue
		}
		if qty > line.KnownStock {
			return fmt.Errorf("%w: %s has %d left", ErrInsufficientStock, line.Name, line.KnownStock)
		}
		c.Lines[i].Quantity = qty
		c.Lines[i].LineTotal = line.UnitPrice.Mul(decimal.NewFromInt(int64(qty)))
		c.touch()
		return nil
	}
	return fmt.Errorf("product %s not in cart", productID)
}

func (c *Cart) RemoveItem(productID string) {
	kept := c.Lines[:0]
	for _, line := range c.Lines {
		if line.ProductID != productID {
			kept = append(kept, line)
		}
	}
	c.Lines = kept
	c.touch()
}

// Clear drops all lines and the customer reference.
func (c *Cart) Clear() {
	c.Lines = []Line{}
	c.CustomerID = ""
	c.touch()
}

func (c *Cart) SetCustomer(customerID string) {
	c.CustomerID = customerID
	c.touch()
}

// Totals recomputes subtotal, tax and total from the lines on every call.
// tax = round(subtotal * rate) to two decimals, total = subtotal + tax.
func (c *Cart) Totals(taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, line := range c.Lines {
		subtotal = subtotal.Add(line.LineTotal)
	}
	tax := subtotal.Mul(taxRate).Round(2)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// Snapshot produces the finalize payload with the frozen unit prices.
func (c *Cart) Snapshot() []models.SaleItemInput {
	items := make([]models.SaleItemInput, 0, len(c.Lines))
	for _, line := range c.Lines {
		items = append(items, models.SaleItemInput{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}
	return items
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now().UTC()
}
