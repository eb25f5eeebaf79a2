package model

// ObjectCategory is a product category supported by the image search index.
type ObjectCategory string

const (
	CategoryTops           ObjectCategory = "TOPS"
	CategoryDresses        ObjectCategory = "DRESSES"
	CategoryBottoms        ObjectCategory = "BOTTOMS"
	CategoryBags           ObjectCategory = "BAGS"
	CategoryShoes          ObjectCategory = "SHOES"
	CategoryAccessories    ObjectCategory = "ACCESSORIES"
	CategorySnacks         ObjectCategory = "SNACKS"
	CategoryMakeup         ObjectCategory = "MAKEUP"
	CategoryBottleDrinks   ObjectCategory = "BOTTLE_DRINKS"
	CategoryFurniture      ObjectCategory = "FURNITURE"
	CategoryToys           ObjectCategory = "TOYS"
	CategoryUnderwears     ObjectCategory = "UNDERWEARS"
	CategoryDigitalDevices ObjectCategory = "DIGITAL_DEVICES"
	CategoryOthers         ObjectCategory = "OTHERS"
)

// categories keeps declaration order, the remote ids are not sorted.
var categories = []struct {
	category ObjectCategory
	id       string
}{
	{CategoryTops, "0"},
	{CategoryDresses, "1"},
	{CategoryBottoms, "2"},
	{CategoryBags, "3"},
	{CategoryShoes, "4"},
	{CategoryAccessories, "5"},
	{CategorySnacks, "6"},
	{CategoryMakeup, "7"},
	{CategoryBottleDrinks, "8"},
	{CategoryFurniture, "9"},
	{CategoryToys, "20"},
	{CategoryUnderwears, "21"},
	{CategoryDigitalDevices, "22"},
	{CategoryOthers, "88888888"},
}

// ID returns the category id understood by the image search API.
func (c ObjectCategory) ID() string {
	for _, entry := range categories {
		if entry.category == c {
			return entry.id
		}
	}
	return ""
}

// IsValid reports whether c is one of the known categories.
func (c ObjectCategory) IsValid() bool {
	return c.ID() != ""
}

// CategoryByID returns the category with the given remote id, or an empty
// category if none matches.
func CategoryByID(id string) ObjectCategory {
	for _, entry := range categories {
		if entry.id == id {
			return entry.category
		}
	}
	return ""
}

// CategoryNames lists all category names in declaration order.
func CategoryNames() []string {
	names := make([]string, 0, len(categories))
	for _, entry := range categories {
		names = append(names, string(entry.category))
	}
	return names
}
