package tgtg

import (
	"github.com/mkoopmans/tgtg-bridge/internal/model"
)

// ToModel converts an APIListing to model.Listing. Absent payload fields stay
// nil through the conversion.
func (l *APIListing) ToModel() model.Listing {
	return model.Listing{
		Item:           l.Item.toModel(),
		DisplayName:    l.DisplayName,
		PickupInterval: l.PickupInterval.toModel(),
		SoldOutAt:      l.SoldOutAt,
		ItemsAvailable: copyInt(l.ItemsAvailable),
	}
}

// ToModel converts an APIOrder to model.Order.
func (o *APIOrder) ToModel() model.Order {
	return model.Order{
		ItemID:              o.ItemID,
		Quantity:            o.Quantity,
		PickupWindowChanged: o.PickupWindowChanged,
		CancelUntil:         o.CancelUntil,
	}
}

func (i *APIItem) toModel() *model.Item {
	if i == nil {
		return nil
	}
	return &model.Item{
		ItemID:       i.ItemID,
		Price:        i.ItemPrice.toModel(),
		Value:        i.ItemValue.toModel(),
		LogoPicture:  i.LogoPicture.toModel(),
		CoverPicture: i.CoverPicture.toModel(),
	}
}

func (p *APIPrice) toModel() *model.Price {
	if p == nil {
		return nil
	}
	return &model.Price{
		MinorUnits: p.MinorUnits,
		Decimals:   p.Decimals,
		Code:       p.Code,
	}
}

func (p *APIPicture) toModel() *model.Picture {
	if p == nil {
		return nil
	}
	return &model.Picture{
		CurrentURL: p.CurrentURL,
	}
}

func (w *APIInterval) toModel() *model.PickupWindow {
	if w == nil {
		return nil
	}
	return &model.PickupWindow{
		Start: w.Start,
		End:   w.End,
	}
}

// copyInt detaches an optional int from the wire struct it was decoded into.
func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}
