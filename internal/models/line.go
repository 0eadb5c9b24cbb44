package models

// Design is a caller-defined design descriptor. It is stored as JSON and passed
// through without interpretation.
type Design map[string]any

// LineDetails is the shape shared by cart lines and order lines. Neither side
// carries a live price here: a cart line has none and an order line adds its own
// frozen Price.
type LineDetails struct {
	VariantID       string  `json:"variant_id" gorm:"type:varchar(36);index;not null"`
	Quantity        int     `json:"quantity" gorm:"not null"`
	FrontDesign     Design  `json:"front_design,omitempty" gorm:"type:jsonb;serializer:json"`
	BackDesign      Design  `json:"back_design,omitempty" gorm:"type:jsonb;serializer:json"`
	FrontPreviewURL *string `json:"front_preview_url,omitempty" gorm:"type:text"`
	BackPreviewURL  *string `json:"back_preview_url,omitempty" gorm:"type:text"`
}
