package orders

import "strings"

// StaticProductMapper maps items by SKU, then by product id, to license
// fields. Values have the form "product_slug" or "product_slug:tier_code".
func StaticProductMapper(table map[string]string) ProductMapper {
	return func(item OrderItem, _ Order) map[string]any {
		value, ok := table[item.SKU]
		if !ok || item.SKU == "" {
			value, ok = table[item.ProductID]
		}
		if !ok {
			return nil
		}

		slug, tier, _ := strings.Cut(value, ":")
		if slug == "" {
			return nil
		}

		fields := map[string]any{"product_slug": slug}
		if tier != "" {
			fields["tier_code"] = tier
		}
		return fields
	}
}
