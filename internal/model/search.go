package model

// ImageStoreType tells where the picture of a search hit is stored.
type ImageStoreType string

const (
	StoreTypeDatabase ImageStoreType = "DATABASE"
	StoreTypeOSS      ImageStoreType = "OSS"
)

// ImageRegion is a rectangle in pixels within a searched image.
type ImageRegion struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ImageSearchAuction is a single hit returned by a similarity search.
type ImageSearchAuction struct {
	ItemID          string            `json:"itemId"`
	CatID           string            `json:"catId"`
	PicName         string            `json:"picName"`
	StoreType       ImageStoreType    `json:"storeType"`
	SimilarityScore float64           `json:"similarityScore"`
	CustomContent   map[string]string `json:"customContent"`
}

// SearchResult is the outcome of a similarity search.
type SearchResult struct {
	Auctions        []ImageSearchAuction
	RawResponseJSON string
	ObjectRegion    *ImageRegion
}
