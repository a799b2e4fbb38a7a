package submission

import (
	"github.com/techhub-commerce/admin-gateway/internal/drafts"
	"github.com/techhub-commerce/admin-gateway/pkg/catalog"
	pkgerrors "github.com/techhub-commerce/admin-gateway/pkg/errors"
)

// buildPayload maps the draft and upload records onto the platform's create
// shape. Optional numerics default to zero when the form field is blank;
// parse failures surface as validation errors even though Validate ran first,
// since the optional fields are not part of eligibility.
func buildPayload(draft *drafts.Draft, media []UploadedMediaRecord) (catalog.CreateProductPayload, error) {
	price, err := draft.PriceValue()
	if err != nil {
		return catalog.CreateProductPayload{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse price")
	}
	compareAt, err := draft.CompareAtPriceValue()
	if err != nil {
		return catalog.CreateProductPayload{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse compare_at_price")
	}
	stock, err := draft.StockQuantityValue()
	if err != nil {
		return catalog.CreateProductPayload{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse stock_quantity")
	}
	weight, err := draft.ShippingWeightValue()
	if err != nil {
		return catalog.CreateProductPayload{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse shipping_weight_kg")
	}

	inputs := make([]catalog.MediaInput, 0, len(media))
	for _, record := range media {
		inputs = append(inputs, catalog.MediaInput{
			MediaURL:  record.URL,
			MediaType: record.MediaType,
			AltText:   record.AltText,
			SortOrder: record.SortOrder,
			IsPrimary: record.IsPrimary,
		})
	}

	return catalog.CreateProductPayload{
		Name:             draft.Name,
		Description:      draft.Description,
		Specifications:   draft.SpecificationsMap(),
		Brand:            draft.Brand,
		Tags:             draft.Tags,
		Price:            price.InexactFloat64(),
		CompareAtPrice:   compareAt.InexactFloat64(),
		CategoryID:       draft.CategoryID,
		SKU:              draft.SKU,
		StockQuantity:    stock,
		Status:           draft.Status(),
		IsFeatured:       draft.IsFeatured,
		ShippingWeightKG: weight.InexactFloat64(),
		ShippingLengthCM: draft.ShippingLengthCM,
		ShippingWidthCM:  draft.ShippingWidthCM,
		ShippingHeightCM: draft.ShippingHeightCM,
		Media:            inputs,
	}, nil
}
