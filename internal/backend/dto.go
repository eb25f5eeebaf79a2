package backend

import (
	"strings"

	"github.com/jo-hoe/goimagesearch/internal/model"
)

type ObjectDTO struct {
	UUID         string `json:"uuid" validate:"required,uuid4"`
	Name         string `json:"name" validate:"required,max=255,objectname"`
	Category     string `json:"category" validate:"required,category"`
	ImageType    string `json:"imageType,omitempty" validate:"required,imagetype"`
	ImageURL     string `json:"imageUrl,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

type ObjectWithScoreDTO struct {
	Object          ObjectDTO `json:"object"`
	SimilarityScore float64   `json:"similarityScore"`
}

type ObjectSearchResponseDTO struct {
	ObjectWithScores           []ObjectWithScoreDTO `json:"objectWithScores"`
	RawImageSearchResponseJSON string               `json:"rawImageSearchResponseJson"`
	ObjectRegion               *model.ImageRegion   `json:"objectRegion"`
}

func imageURL(uuid string) string {
	return "/objects/" + uuid + "/image"
}

func thumbnailURL(uuid string) string {
	return "/objects/" + uuid + "/thumbnail"
}

func toObjectDTO(object *model.RecognizableObject) ObjectDTO {
	return ObjectDTO{
		UUID:         object.UUID,
		Name:         object.Name,
		Category:     string(object.Category),
		ImageType:    string(object.ImageType),
		ImageURL:     imageURL(object.UUID),
		ThumbnailURL: thumbnailURL(object.UUID),
	}
}

func toObjectDTOs(objects []*model.RecognizableObject) []ObjectDTO {
	dtos := make([]ObjectDTO, 0, len(objects))
	for _, object := range objects {
		dtos = append(dtos, toObjectDTO(object))
	}
	return dtos
}

func (dto ObjectDTO) toModel() *model.RecognizableObject {
	return &model.RecognizableObject{
		UUID:      dto.UUID,
		Name:      dto.Name,
		Category:  model.ObjectCategory(dto.Category),
		ImageType: model.ImageType(dto.ImageType),
	}
}

// toSearchResponseDTO maps search hits to objects. Images stored in the
// database are served by this API, the other ones are read from baseURL.
func toSearchResponseDTO(result *model.SearchResult, objects map[string]*model.RecognizableObject, baseURL string) ObjectSearchResponseDTO {
	withScores := make([]ObjectWithScoreDTO, 0, len(result.Auctions))
	for _, auction := range result.Auctions {
		withScores = append(withScores, ObjectWithScoreDTO{
			Object:          auctionToObjectDTO(auction, objects[auction.ItemID], baseURL),
			SimilarityScore: auction.SimilarityScore,
		})
	}
	return ObjectSearchResponseDTO{
		ObjectWithScores:           withScores,
		RawImageSearchResponseJSON: result.RawResponseJSON,
		ObjectRegion:               result.ObjectRegion,
	}
}

func auctionToObjectDTO(auction model.ImageSearchAuction, stored *model.RecognizableObject, baseURL string) ObjectDTO {
	category := model.CategoryByID(auction.CatID)
	if auction.StoreType == model.StoreTypeDatabase {
		dto := ObjectDTO{
			UUID:         auction.ItemID,
			Category:     string(category),
			ImageURL:     imageURL(auction.ItemID),
			ThumbnailURL: thumbnailURL(auction.ItemID),
		}
		if stored != nil {
			dto.Name = stored.Name
			dto.Category = string(stored.Category)
			dto.ImageType = string(stored.ImageType)
		}
		return dto
	}

	pictureURL := strings.TrimSuffix(baseURL, "/") + "/" + auction.PicName
	return ObjectDTO{
		UUID:         auction.ItemID + "_" + auction.PicName,
		Name:         auction.PicName,
		Category:     string(category),
		ImageURL:     pictureURL,
		ThumbnailURL: pictureURL,
	}
}
