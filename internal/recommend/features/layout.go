// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package features

// Slot names. User and context slots precede item slots.
const (
	SlotUserAge               = "user_age"
	SlotUserHomeLocation      = "user_home_location"
	SlotUserPreferenceBreadth = "user_preference_breadth"
	SlotUserBudget            = "user_budget"
	SlotDayOfWeek             = "ctx_day_of_week"
	SlotMonth                 = "ctx_month"
	SlotAdvanceBooking        = "ctx_advance_booking"
	SlotItemCategory          = "item_category"
	SlotItemPriceTier         = "item_price_tier"
	SlotItemLocation          = "item_location"
	SlotItemAmenityRatio      = "item_amenity_ratio"
	SlotItemRating            = "item_rating"
	SlotItemPopularity        = "item_popularity"
	SlotItemNightlyPrice      = "item_nightly_price"
)

// Layout binds a version identifier to an ordered list of slots. Changing
// the count or order of slots requires a new version.
type Layout struct {
	Version string
	Slots   []string
}

// Size returns the number of slots.
func (l Layout) Size() int {
	return len(l.Slots)
}

// LayoutV1 is the current feature layout.
var LayoutV1 = Layout{
	Version: "v1",
	Slots: []string{
		SlotUserAge,
		SlotUserHomeLocation,
		SlotUserPreferenceBreadth,
		SlotUserBudget,
		SlotDayOfWeek,
		SlotMonth,
		SlotAdvanceBooking,
		SlotItemCategory,
		SlotItemPriceTier,
		SlotItemLocation,
		SlotItemAmenityRatio,
		SlotItemRating,
		SlotItemPopularity,
		SlotItemNightlyPrice,
	},
}
