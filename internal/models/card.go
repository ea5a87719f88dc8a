package models

type CardBrand string

const (
	CardBrandVisa       CardBrand = "visa"
	CardBrandMastercard CardBrand = "mastercard"
	CardBrandUnknown    CardBrand = "unknown"
)

// Card is a saved payment instrument. Only the masked PAN is ever
// persisted; the full number exists transiently during AddCard.
type Card struct {
	ID           string    `json:"id"`
	MaskedNumber string    `json:"masked_number"`
	Expiry       string    `json:"expiry"` // MM/YY
	HolderName   string    `json:"holder_name"`
	Brand        CardBrand `json:"brand"`
	IsDefault    bool      `json:"is_default"`
}
