package licensesdk

// Product is an immutable projection of a product returned by the service.
type Product struct {
	ID          int
	Name        string
	Slug        string
	Prefix      string
	Status      string
	Description *string
	CreatedAt   *string
	UpdatedAt   *string
}

var (
	productNameKeys        = keys{"name"}
	productSlugKeys        = keys{"slug"}
	productPrefixKeys      = keys{"prefix"}
	productDescriptionKeys = keys{"description"}
)

// DecodeProduct maps a loosely-typed object onto a Product. It never fails.
func DecodeProduct(obj map[string]any) Product {
	return Product{
		ID:          idKeys.integer(obj),
		Name:        productNameKeys.str(obj),
		Slug:        productSlugKeys.str(obj),
		Prefix:      productPrefixKeys.str(obj),
		Status:      licenseStatusKeys.str(obj),
		Description: productDescriptionKeys.optStr(obj),
		CreatedAt:   createdAtKeys.optStr(obj),
		UpdatedAt:   updatedAtKeys.optStr(obj),
	}
}

// Encode returns the snake_case wire shape of the product.
func (p Product) Encode() map[string]any {
	obj := map[string]any{
		"id":     p.ID,
		"name":   p.Name,
		"slug":   p.Slug,
		"prefix": p.Prefix,
		"status": p.Status,
	}
	putOptStr(obj, "description", p.Description)
	putOptStr(obj, "created_at", p.CreatedAt)
	putOptStr(obj, "updated_at", p.UpdatedAt)
	return obj
}
