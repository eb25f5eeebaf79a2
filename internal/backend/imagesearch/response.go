package imagesearch

import (
	"fmt"
	"strconv"
	"strings"

	alisearch "github.com/aliyun/alibaba-cloud-sdk-go/services/imagesearch"
	"github.com/jo-hoe/goimagesearch/internal/model"
	"github.com/tidwall/gjson"
)

const primaryImageKey = "primaryImg"

// formatRegion renders a region as "x1,x2,y1,y2".
func formatRegion(region model.ImageRegion) string {
	return fmt.Sprintf("%d,%d,%d,%d", region.X, region.X+region.Width, region.Y, region.Y+region.Height)
}

// parseRegion reads a region in the "x1,x2,y1,y2" notation.
func parseRegion(value string) (*model.ImageRegion, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("invalid region %q: expected 4 values", value)
	}
	numbers := make([]int, 4)
	for i, part := range parts {
		number, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid region %q: %w", value, err)
		}
		numbers[i] = number
	}
	return &model.ImageRegion{
		X:      numbers[0],
		Y:      numbers[2],
		Width:  numbers[1] - numbers[0],
		Height: numbers[3] - numbers[2],
	}, nil
}

// parseSearchResponse maps the typed SDK response. raw is the response body
// as received, it is returned indented.
func parseSearchResponse(response *alisearch.SearchImageByPicResponse, raw string) (*model.SearchResult, error) {
	auctions := make([]model.ImageSearchAuction, 0, len(response.Auctions))
	for _, auction := range response.Auctions {
		auctions = append(auctions, parseAuction(auction))
	}

	result := &model.SearchResult{
		Auctions:        auctions,
		RawResponseJSON: raw,
	}
	if gjson.Valid(raw) {
		result.RawResponseJSON = gjson.Get(raw, "@pretty").Raw
	}
	if region := response.PicInfo.Region; region != "" {
		objectRegion, err := parseRegion(region)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRemoteCall, err)
		}
		result.ObjectRegion = objectRegion
	}
	return result, nil
}

func parseAuction(auction alisearch.Auction) model.ImageSearchAuction {
	customContent := parseCustomContent(auction.CustomContent)

	storeType := model.StoreTypeOSS
	if _, ok := customContent["dbStore"]; ok {
		storeType = model.StoreTypeDatabase
	}

	picName := auction.PicName
	if storeType == model.StoreTypeOSS {
		if primary := customContent[primaryImageKey]; primary != "" && !strings.EqualFold(primary, picName) {
			picName = primary
		}
	}

	return model.ImageSearchAuction{
		ItemID:          auction.ProductId,
		CatID:           strconv.Itoa(auction.CategoryId),
		PicName:         picName,
		StoreType:       storeType,
		SimilarityScore: parseScore(auction.SortExprValues),
		CustomContent:   customContent,
	}
}

// parseScore returns the first value of the "score;..." sort expression, 0 when absent.
func parseScore(sortExprValues string) float64 {
	first, _, _ := strings.Cut(sortExprValues, ";")
	score, err := strconv.ParseFloat(strings.TrimSpace(first), 64)
	if err != nil {
		return 0
	}
	return score
}

func parseCustomContent(raw string) map[string]string {
	content := make(map[string]string)
	if raw == "" || !gjson.Valid(raw) {
		return content
	}
	parsed := gjson.Parse(raw)
	if !parsed.IsObject() {
		return content
	}
	parsed.ForEach(func(key, value gjson.Result) bool {
		content[key.String()] = value.String()
		return true
	})
	return content
}
