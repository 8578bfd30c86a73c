package reconcile

import (
	"context"

	"github.com/xelth-com/insalessync/internal/insales"
	"github.com/xelth-com/insalessync/internal/models"
)

// AdditionalFieldsKey is the payload key additional field values are appended under
const AdditionalFieldsKey = "variant_field_values_attributes"

// ExtractQuantity reads the quantity a mapping points at.
// Additional fields missing on the variant count as 0, missing top-level keys are an error.
func ExtractQuantity(remote insales.Variant, field models.InSalesQuantityField) (int, error) {
	if field.IsAdditional {
		if field.RemoteFieldID == nil {
			return 0, nil
		}
		for _, fv := range remote.FieldValues() {
			if fv.VariantFieldID == *field.RemoteFieldID {
				return fv.Value.Int(), nil
			}
		}
		return 0, nil
	}

	value, ok := remote.Scalar(field.RemoteField)
	if !ok {
		return 0, &UnknownRemoteFieldError{Field: field.RemoteField}
	}
	return value.Int(), nil
}

// ResolveQuantityField fills in the remote id of an additional field mapping.
// Plain mappings are left untouched.
func ResolveQuantityField(ctx context.Context, api RemoteAPI, field *models.InSalesQuantityField) error {
	if !field.IsAdditional {
		field.RemoteFieldID = nil
		return nil
	}
	vf, err := api.GetVariantField(ctx, field.RemoteField)
	if err != nil {
		return &AdditionalFieldIDError{Field: field.RemoteField, Err: err}
	}
	id := vf.ID
	field.RemoteFieldID = &id
	return nil
}
