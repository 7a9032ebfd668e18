package structs

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Cart maps "{product_id}" or "{product_id}:{variant_id}" to a positive quantity.
type Cart map[string]int

// CartKey identifies a product, or a product variant, inside a Cart.
type CartKey struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
}

func NewCartKey(productID uuid.UUID, variantID *uuid.UUID) CartKey {
	return CartKey{ProductID: productID, VariantID: variantID}
}

func (k CartKey) String() string {
	if k.VariantID == nil {
		return k.ProductID.String()
	}
	return k.ProductID.String() + ":" + k.VariantID.String()
}

func ParseCartKey(raw string) (CartKey, error) {
	productPart, variantPart, hasVariant := strings.Cut(raw, ":")

	productID, err := uuid.Parse(productPart)
	if err != nil {
		return CartKey{}, fmt.Errorf("invalid cart key %q: %w", raw, err)
	}
	if !hasVariant {
		return CartKey{ProductID: productID}, nil
	}

	variantID, err := uuid.Parse(variantPart)
	if err != nil {
		return CartKey{}, fmt.Errorf("invalid cart key %q: %w", raw, err)
	}
	return CartKey{ProductID: productID, VariantID: &variantID}, nil
}

// ItemCount is the sum of all quantities.
func (c Cart) ItemCount() int {
	total := 0
	for _, qty := range c {
		total += qty
	}
	return total
}

func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
