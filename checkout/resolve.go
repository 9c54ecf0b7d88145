package checkout

import (
	"context"
	"fmt"
	"log"
	"time"

	"camshop-backend/models"
	"camshop-backend/pricing"
)

// ResolveLines loads live catalog data for every cart item and builds both
// the pricing lines and the immutable order line snapshots. Items whose
// product or variant no longer exists, or whose variant is out of stock,
// are dropped from the result.
func ResolveLines(ctx context.Context, catalog CatalogStore, items []models.CartItem, now time.Time) ([]pricing.Line, []models.OrderLineItem, error) {
	var lines []pricing.Line
	var snapshots []models.OrderLineItem

	for _, item := range items {
		if item.Quantity < 1 {
			continue
		}
		product, err := catalog.Product(ctx, item.ProductID)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve product %s: %w", item.ProductID.Hex(), err)
		}
		if product == nil || product.Archived {
			continue
		}
		variant := product.Variant(item.VariantID)
		if variant == nil || variant.Stocks <= 0 {
			continue
		}

		var salePrice *float64
		if variant.SaleID != nil {
			sale, err := catalog.Sale(ctx, *variant.SaleID)
			if err != nil {
				return nil, nil, fmt.Errorf("resolve sale for %s: %w", product.Name, err)
			}
			if sale != nil && sale.ActiveAt(now) {
				p := pricing.RoundCents(variant.Price * (1 - sale.DiscountPercentage/100))
				if p < 0 {
					p = 0
				}
				salePrice = &p
			}
		}

		lines = append(lines, pricing.Line{
			ProductID:   product.ID,
			VariantID:   variant.VariantID,
			Category:    product.Category,
			Subcategory: product.Subcategory,
			Brand:       product.Brand,
			Price:       variant.Price,
			SalePrice:   salePrice,
			Quantity:    item.Quantity,
		})
		snapshots = append(snapshots, models.OrderLineItem{
			ProductID:    product.ID,
			VariantID:    variant.VariantID,
			Name:         product.Name,
			VariantName:  variant.Name,
			VariantColor: variant.Color,
			VariantImg:   variant.Image,
			Price:        variant.Price,
			SalePrice:    salePrice,
			Quantity:     item.Quantity,
		})
	}

	if len(items) > 0 && len(lines) == 0 {
		log.Printf("checkout: all %d cart lines dropped (missing or out of stock)", len(items))
	}
	return lines, snapshots, nil
}
