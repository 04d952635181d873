// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package features

import (
	"math"

	"github.com/tomtom215/lodgerank/internal/recommend"
)

// slotFunc encodes one attribute of a (user, item, context) triple.
type slotFunc func(u *recommend.UserProfile, it *recommend.ItemProfile, c *recommend.EncodeContext) float64

// slotFuncs holds the encoding rule for every known slot.
var slotFuncs = map[string]slotFunc{
	SlotUserAge: func(u *recommend.UserProfile, _ *recommend.ItemProfile, _ *recommend.EncodeContext) float64 {
		return positiveRatio(float64(u.Age), maxAge)
	},
	SlotUserHomeLocation: func(u *recommend.UserProfile, _ *recommend.ItemProfile, _ *recommend.EncodeContext) float64 {
		return EncodeLocation(u.HomeLocation)
	},
	SlotUserPreferenceBreadth: func(u *recommend.UserProfile, _ *recommend.ItemProfile, _ *recommend.EncodeContext) float64 {
		n := len(u.PreferredCategories) + len(u.PreferredLocations) + len(u.PreferredAmenities)
		return Ratio(float64(n), maxPreferences)
	},
	SlotUserBudget: func(u *recommend.UserProfile, _ *recommend.ItemProfile, _ *recommend.EncodeContext) float64 {
		return EncodePriceTier(u.BudgetBracket)
	},
	SlotDayOfWeek: func(_ *recommend.UserProfile, _ *recommend.ItemProfile, c *recommend.EncodeContext) float64 {
		return Ratio(float64(c.DayOfWeek), 7)
	},
	SlotMonth: func(_ *recommend.UserProfile, _ *recommend.ItemProfile, c *recommend.EncodeContext) float64 {
		return positiveRatio(float64(c.Month), 12)
	},
	SlotAdvanceBooking: func(_ *recommend.UserProfile, _ *recommend.ItemProfile, c *recommend.EncodeContext) float64 {
		return Ratio(float64(c.AdvanceDays), maxAdvanceDays)
	},
	SlotItemCategory: func(_ *recommend.UserProfile, it *recommend.ItemProfile, _ *recommend.EncodeContext) float64 {
		return EncodeCategory(it.Category)
	},
	SlotItemPriceTier: func(_ *recommend.UserProfile, it *recommend.ItemProfile, _ *recommend.EncodeContext) float64 {
		return EncodePriceTier(it.PriceTier)
	},
	SlotItemLocation: func(_ *recommend.UserProfile, it *recommend.ItemProfile, _ *recommend.EncodeContext) float64 {
		return EncodeLocation(it.Location)
	},
	SlotItemAmenityRatio: func(_ *recommend.UserProfile, it *recommend.ItemProfile, _ *recommend.EncodeContext) float64 {
		return Ratio(float64(len(it.Amenities)), maxAmenities)
	},
	SlotItemRating: func(_ *recommend.UserProfile, it *recommend.ItemProfile, _ *recommend.EncodeContext) float64 {
		return Ratio(it.Rating, maxRating)
	},
	SlotItemPopularity: func(_ *recommend.UserProfile, it *recommend.ItemProfile, _ *recommend.EncodeContext) float64 {
		return Ratio(float64(it.RecentBookings), maxRecentBookings)
	},
	SlotItemNightlyPrice: func(_ *recommend.UserProfile, it *recommend.ItemProfile, _ *recommend.EncodeContext) float64 {
		return positiveRatio(it.AvgNightlyPrice, maxNightlyPrice)
	},
}

// Encoder turns profiles into feature vectors following a Layout.
// It is pure and safe for concurrent use.
type Encoder struct {
	layout Layout
	funcs  []slotFunc
}

// NewEncoder creates an encoder for the given layout. Slots without a
// known rule encode as Neutral.
//
//nolint:gocritic // hugeParam: Layout is configuration, copied once
func NewEncoder(layout Layout) *Encoder {
	funcs := make([]slotFunc, len(layout.Slots))
	for i, name := range layout.Slots {
		funcs[i] = slotFuncs[name]
	}
	return &Encoder{layout: layout, funcs: funcs}
}

// Layout returns the encoder's layout.
func (e *Encoder) Layout() Layout {
	return e.layout
}

// LayoutVersion returns the layout version stamped on every vector.
func (e *Encoder) LayoutVersion() string {
	return e.layout.Version
}

// Encode builds the feature vector for a (user, item, context) triple.
// Nil profiles encode as all-neutral slots. Every value is in [0,1].
func (e *Encoder) Encode(user *recommend.UserProfile, item *recommend.ItemProfile, ectx recommend.EncodeContext) recommend.FeatureVector {
	if user == nil {
		user = &recommend.UserProfile{}
	}
	if item == nil {
		item = &recommend.ItemProfile{}
	}

	values := make([]float64, len(e.funcs))
	for i, fn := range e.funcs {
		v := Neutral
		if fn != nil {
			v = fn(user, item, &ectx)
		}
		values[i] = clamp(v)
	}

	return recommend.FeatureVector{Layout: e.layout.Version, Values: values}
}

// EncodeExample encodes a training example at its interaction time.
func (e *Encoder) EncodeExample(ex *recommend.TrainingExample) recommend.FeatureVector {
	ectx := recommend.ContextAt(ex.Record.Timestamp, ex.Record.AdvanceDays)
	return e.Encode(&ex.User, &ex.Item, ectx)
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return Neutral
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

var _ recommend.Encoder = (*Encoder)(nil)
