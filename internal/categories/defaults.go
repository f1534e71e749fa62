package categories

import "github.com/cleared-dev/spendmigrate/internal/model"

// DefaultCatalog returns the category catalog written by init.
func DefaultCatalog() []model.CategoryInfo {
	return []model.CategoryInfo{
		{Name: "groceries", Label: "Groceries", Group: model.GroupEveryday, Description: "Supermarkets and grocery delivery"},
		{Name: "dining", Label: "Dining", Group: model.GroupLifestyle, Description: "Restaurants, cafes and food delivery"},
		{Name: "fuel", Label: "Fuel", Group: model.GroupEveryday, Description: "Petrol stations"},
		{Name: "online", Label: "Online shopping", Group: model.GroupLifestyle, Description: "E-commerce purchases"},
		{Name: model.CategoryInternationalTravel, Label: "International travel", Group: model.GroupTravel, Description: "Flights, hotels and foreign-currency spending"},
		{Name: model.CategoryDomesticTransport, Label: "Local transport", Group: model.GroupTravel, Description: "Ride-hailing, public transit, parking and tolls"},
		{
			Name:        model.CategoryTravel,
			Label:       "Travel (legacy)",
			Group:       model.GroupTravel,
			Deprecated:  true,
			ReplacedBy:  model.CategoryInternationalTravel + ";" + model.CategoryDomesticTransport,
			Description: "Superseded by international_travel and domestic_transport",
		},
	}
}
