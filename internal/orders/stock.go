package orders

import "backend/internal/models"

// applyDecrement reduces product stock for one verified line item. Quantities
// clamp at zero; there is no reservation step before payment, so an ordered
// quantity can exceed what is on hand. Returns false when the line item could
// not be matched to a counter (missing variant, no numeric stock) and the
// product should not be rewritten.
func applyDecrement(p *models.Product, item models.OrderItem) bool {
	if item.Quantity <= 0 {
		return false
	}

	switch p.StockMode() {
	case models.StockVariant:
		v := p.VariantBySKU(item.SKU)
		if v == nil {
			return false
		}
		v.StockQty = clampStock(v.StockQty - item.Quantity)
		v.InStock = v.StockQty > 0
	default:
		p.StockQty = clampStock(p.StockQty - item.Quantity)
	}

	p.RecomputeInStock()
	return true
}

func clampStock(qty int) int {
	if qty < 0 {
		return 0
	}
	return qty
}
