package drafts

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	pkgerrors "github.com/techhub-commerce/admin-gateway/pkg/errors"
)

// SpecPair is one free-form specification row as the user edits it. Duplicate
// keys are allowed here; they collapse last-write-wins when the draft is
// transformed into a submission payload.
type SpecPair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Draft holds the in-progress product form. Numeric fields stay as the raw
// form strings until submission; parsing and defaulting happen at assembly
// time so a half-typed value never corrupts the draft.
type Draft struct {
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	Brand            string     `json:"brand"`
	Tags             string     `json:"tags"`
	Price            string     `json:"price"`
	CompareAtPrice   string     `json:"compare_at_price"`
	CategoryID       string     `json:"category_id"`
	SKU              string     `json:"sku"`
	StockQuantity    string     `json:"stock_quantity"`
	IsActive         bool       `json:"is_active"`
	IsFeatured       bool       `json:"is_featured"`
	ShippingWeightKG string     `json:"shipping_weight_kg"`
	ShippingLengthCM string     `json:"shipping_length_cm"`
	ShippingWidthCM  string     `json:"shipping_width_cm"`
	ShippingHeightCM string     `json:"shipping_height_cm"`
	Specs            []SpecPair `json:"specifications"`

	onChange func()
}

func New() *Draft {
	return &Draft{IsActive: true}
}

// SetNotify registers a callback fired after every mutation.
func (d *Draft) SetNotify(fn func()) {
	d.onChange = fn
}

func (d *Draft) notify() {
	if d.onChange != nil {
		d.onChange()
	}
}

// Patch carries optional field updates; nil means leave unchanged.
type Patch struct {
	Name             *string `json:"name,omitempty"`
	Description      *string `json:"description,omitempty"`
	Brand            *string `json:"brand,omitempty"`
	Tags             *string `json:"tags,omitempty"`
	Price            *string `json:"price,omitempty"`
	CompareAtPrice   *string `json:"compare_at_price,omitempty"`
	CategoryID       *string `json:"category_id,omitempty"`
	SKU              *string `json:"sku,omitempty"`
	StockQuantity    *string `json:"stock_quantity,omitempty"`
	IsActive         *bool   `json:"is_active,omitempty"`
	IsFeatured       *bool   `json:"is_featured,omitempty"`
	ShippingWeightKG *string `json:"shipping_weight_kg,omitempty"`
	ShippingLengthCM *string `json:"shipping_length_cm,omitempty"`
	ShippingWidthCM  *string `json:"shipping_width_cm,omitempty"`
	ShippingHeightCM *string `json:"shipping_height_cm,omitempty"`
}

func (d *Draft) Apply(patch Patch) {
	if patch.Name != nil {
		d.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		d.Description = *patch.Description
	}
	if patch.Brand != nil {
		d.Brand = strings.TrimSpace(*patch.Brand)
	}
	if patch.Tags != nil {
		d.Tags = strings.TrimSpace(*patch.Tags)
	}
	if patch.Price != nil {
		d.Price = strings.TrimSpace(*patch.Price)
	}
	if patch.CompareAtPrice != nil {
		d.CompareAtPrice = strings.TrimSpace(*patch.CompareAtPrice)
	}
	if patch.CategoryID != nil {
		d.CategoryID = strings.TrimSpace(*patch.CategoryID)
	}
	if patch.SKU != nil {
		d.SKU = strings.TrimSpace(*patch.SKU)
	}
	if patch.StockQuantity != nil {
		d.StockQuantity = strings.TrimSpace(*patch.StockQuantity)
	}
	if patch.IsActive != nil {
		d.IsActive = *patch.IsActive
	}
	if patch.IsFeatured != nil {
		d.IsFeatured = *patch.IsFeatured
	}
	if patch.ShippingWeightKG != nil {
		d.ShippingWeightKG = strings.TrimSpace(*patch.ShippingWeightKG)
	}
	if patch.ShippingLengthCM != nil {
		d.ShippingLengthCM = strings.TrimSpace(*patch.ShippingLengthCM)
	}
	if patch.ShippingWidthCM != nil {
		d.ShippingWidthCM = strings.TrimSpace(*patch.ShippingWidthCM)
	}
	if patch.ShippingHeightCM != nil {
		d.ShippingHeightCM = strings.TrimSpace(*patch.ShippingHeightCM)
	}
	d.notify()
}

// AddSpec appends a specification row.
func (d *Draft) AddSpec(key, value string) {
	d.Specs = append(d.Specs, SpecPair{Key: key, Value: value})
	d.notify()
}

// UpdateSpec replaces the row at index; returns false when out of range.
func (d *Draft) UpdateSpec(index int, key, value string) bool {
	if index < 0 || index >= len(d.Specs) {
		return false
	}
	d.Specs[index] = SpecPair{Key: key, Value: value}
	d.notify()
	return true
}

// RemoveSpec drops the row at index, silently ignoring out-of-range values.
func (d *Draft) RemoveSpec(index int) {
	if index < 0 || index >= len(d.Specs) {
		return
	}
	d.Specs = append(d.Specs[:index], d.Specs[index+1:]...)
	d.notify()
}

// SpecificationsMap collapses the ordered rows into the submission mapping:
// keys are trimmed, empty-after-trim keys are dropped, last write wins.
func (d *Draft) SpecificationsMap() map[string]string {
	out := make(map[string]string, len(d.Specs))
	for _, pair := range d.Specs {
		key := strings.TrimSpace(pair.Key)
		if key == "" {
			continue
		}
		out[key] = pair.Value
	}
	return out
}

// Validate checks submission eligibility and aggregates every violation into
// one error so the user sees the complete picture per attempt.
func (d *Draft) Validate(stagedCount, minImages int) error {
	var violations []string

	if strings.TrimSpace(d.Name) == "" {
		violations = append(violations, "name is required")
	}

	price := strings.TrimSpace(d.Price)
	if price == "" {
		violations = append(violations, "price is required")
	} else if value, err := decimal.NewFromString(price); err != nil {
		violations = append(violations, "price must be a number")
	} else if value.IsNegative() {
		violations = append(violations, "price must be non-negative")
	}

	if strings.TrimSpace(d.CategoryID) == "" {
		violations = append(violations, "category is required")
	}

	if stagedCount < minImages {
		violations = append(violations, "at least "+strconv.Itoa(minImages)+" images are required")
	}

	if len(violations) == 0 {
		return nil
	}

	var combined error
	for _, v := range violations {
		combined = multierr.Append(combined, errors.New(v))
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, combined, "draft is not ready for submission").
		WithDetails(map[string]any{"violations": violations})
}

// PriceValue parses the required price field.
func (d *Draft) PriceValue() (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(d.Price))
	if err != nil {
		return decimal.Zero, err
	}
	if value.IsNegative() {
		return decimal.Zero, errors.New("price must be non-negative")
	}
	return value, nil
}

// CompareAtPriceValue parses the optional compare-at price, defaulting to 0.
func (d *Draft) CompareAtPriceValue() (decimal.Decimal, error) {
	return optionalDecimal(d.CompareAtPrice, "compare_at_price")
}

// ShippingWeightValue parses the optional shipping weight, defaulting to 0.
func (d *Draft) ShippingWeightValue() (decimal.Decimal, error) {
	return optionalDecimal(d.ShippingWeightKG, "shipping_weight_kg")
}

// StockQuantityValue parses the optional stock quantity, defaulting to 0.
func (d *Draft) StockQuantityValue() (int, error) {
	raw := strings.TrimSpace(d.StockQuantity)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("stock_quantity must be an integer")
	}
	if value < 0 {
		return 0, errors.New("stock_quantity must be non-negative")
	}
	return value, nil
}

// Status reports the submission status string derived from the active flag.
func (d *Draft) Status() string {
	if d.IsActive {
		return "active"
	}
	return "inactive"
}

func optionalDecimal(raw, field string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.New(field + " must be a number")
	}
	if value.IsNegative() {
		return decimal.Zero, errors.New(field + " must be non-negative")
	}
	return value, nil
}
