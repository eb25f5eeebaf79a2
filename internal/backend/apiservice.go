package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/jo-hoe/goimagesearch/internal/common"
	"github.com/jo-hoe/goimagesearch/internal/core"
	"github.com/jo-hoe/goimagesearch/internal/model"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	jsonPart         = "json"
	imageFilePart    = "imageFile"
	thumbnailPart    = "thumbnailFile"
	objectRegionPart = "objectRegion"
)

type APIService struct {
	coreService *core.CoreService
	config      *core.ServiceConfig
}

func NewAPIService(config *core.ServiceConfig, coreService *core.CoreService) *APIService {
	return &APIService{
		coreService: coreService,
		config:      config,
	}
}

func (service *APIService) SetRoutes(e *echo.Echo) {
	e.GET("/probe", service.readinessHandler)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.GET("/configuration", service.getConfigurationHandler)
	e.PUT("/configuration", service.saveConfigurationHandler)
	e.POST("/configuration/check", service.checkConfigurationHandler)

	e.GET("/objects", service.listObjectsHandler)
	e.POST("/objects", service.createObjectHandler)
	e.POST("/objects/findAllBySimilarImage", service.findAllBySimilarImageHandler)
	e.GET("/objects/:uuid", service.getObjectHandler)
	e.PUT("/objects/:uuid", service.updateObjectHandler)
	e.DELETE("/objects/:uuid", service.deleteObjectHandler)
	e.GET("/objects/:uuid/image", service.getImageHandler)
	e.GET("/objects/:uuid/thumbnail", service.getThumbnailHandler)
}

func (service *APIService) readinessHandler(ctx echo.Context) error {
	if !service.coreService.DatabaseAvailable() {
		slog.Warn("database is not reachable")
		return ctx.String(http.StatusServiceUnavailable, "database unavailable")
	}
	return ctx.String(http.StatusOK, "API Service is running")
}

func (service *APIService) getConfigurationHandler(ctx echo.Context) error {
	configuration, err := service.coreService.Configurations.Load(ctx.Request().Context())
	if err != nil {
		return err
	}
	if configuration == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no configuration saved")
	}

	response := *configuration
	response.Password = ""
	return ctx.JSON(http.StatusOK, response)
}

func (service *APIService) saveConfigurationHandler(ctx echo.Context) error {
	var configuration model.Configuration
	if err := ctx.Bind(&configuration); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("received invalid request body: %v", err))
	}
	if err := service.coreService.Configurations.Save(ctx.Request().Context(), &configuration); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusOK)
}

func (service *APIService) checkConfigurationHandler(ctx echo.Context) error {
	var configuration model.Configuration
	if err := ctx.Bind(&configuration); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("received invalid request body: %v", err))
	}
	if err := service.coreService.Configurations.Check(ctx.Request().Context(), &configuration); err != nil {
		return err
	}
	return ctx.String(http.StatusOK, "configuration is valid")
}

func (service *APIService) listObjectsHandler(ctx echo.Context) error {
	objects, err := service.coreService.Objects.FindAll(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, toObjectDTOs(objects))
}

func (service *APIService) createObjectHandler(ctx echo.Context) error {
	body, found, err := readPart(ctx, jsonPart)
	if err != nil {
		return err
	}
	if !found {
		return echo.NewHTTPError(http.StatusBadRequest, "missing multipart part: "+jsonPart)
	}
	var dto ObjectDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("received invalid %s part: %v", jsonPart, err))
	}
	if err := ctx.Validate(&dto); err != nil {
		return err
	}

	imageData, err := readFile(ctx, imageFilePart)
	if err != nil {
		return err
	}
	if imageData == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing multipart part: "+imageFilePart)
	}
	thumbnailData, err := readFile(ctx, thumbnailPart)
	if err != nil {
		return err
	}

	object := dto.toModel()
	object.ImageData = imageData
	object.ThumbnailData = thumbnailData

	created, err := service.coreService.Objects.Create(ctx.Request().Context(), object)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, toObjectDTO(created))
}

func (service *APIService) updateObjectHandler(ctx echo.Context) error {
	uuid := ctx.Param("uuid")
	if err := common.ValidateUUID(uuid); err != nil {
		return err
	}

	var dto ObjectDTO
	if err := ctx.Bind(&dto); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("received invalid request body: %v", err))
	}
	if err := ctx.Validate(&dto); err != nil {
		return err
	}
	if dto.UUID != uuid {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("the uuid in the path (%s) does not match the uuid in the body (%s)", uuid, dto.UUID))
	}

	updated, err := service.coreService.Objects.Update(ctx.Request().Context(), dto.toModel())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, toObjectDTO(updated))
}

func (service *APIService) deleteObjectHandler(ctx echo.Context) error {
	uuid := ctx.Param("uuid")
	if err := common.ValidateUUID(uuid); err != nil {
		return err
	}

	deleted, err := service.coreService.Objects.Delete(ctx.Request().Context(), uuid)
	if err != nil {
		return err
	}
	if !deleted {
		return echo.NewHTTPError(http.StatusNotFound, "no object exists with the uuid "+uuid)
	}
	return ctx.NoContent(http.StatusOK)
}

func (service *APIService) getObjectHandler(ctx echo.Context) error {
	object, err := service.findObject(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, toObjectDTO(object))
}

func (service *APIService) getImageHandler(ctx echo.Context) error {
	object, err := service.findObject(ctx)
	if err != nil {
		return err
	}
	if len(object.ImageData) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "image not available")
	}
	return ctx.Blob(http.StatusOK, object.ImageType.ContentType(), object.ImageData)
}

func (service *APIService) getThumbnailHandler(ctx echo.Context) error {
	object, err := service.findObject(ctx)
	if err != nil {
		return err
	}
	if len(object.ThumbnailData) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "thumbnail not available")
	}
	return ctx.Blob(http.StatusOK, object.ImageType.ContentType(), object.ThumbnailData)
}

func (service *APIService) findAllBySimilarImageHandler(ctx echo.Context) error {
	imageData, err := readFile(ctx, imageFilePart)
	if err != nil {
		return err
	}
	if imageData == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing multipart part: "+imageFilePart)
	}

	var region *model.ImageRegion
	regionJSON, found, err := readPart(ctx, objectRegionPart)
	if err != nil {
		return err
	}
	if found && len(regionJSON) > 0 && string(regionJSON) != "null" {
		region = &model.ImageRegion{}
		if err := json.Unmarshal(regionJSON, region); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("received invalid %s part: %v", objectRegionPart, err))
		}
	}

	requestCtx := ctx.Request().Context()
	result, err := service.coreService.Objects.FindAllBySimilarImage(requestCtx, imageData, region)
	if err != nil {
		return err
	}

	stored := make(map[string]*model.RecognizableObject)
	for _, auction := range result.Auctions {
		if auction.StoreType != model.StoreTypeDatabase {
			continue
		}
		object, err := service.coreService.Objects.FindByUUID(requestCtx, auction.ItemID)
		if err != nil {
			return err
		}
		if object == nil {
			slog.Warn("search hit refers to an unknown object", "uuid", auction.ItemID)
			continue
		}
		stored[auction.ItemID] = object
	}

	baseURL := ""
	if configuration, err := service.coreService.Configurations.Load(requestCtx); err != nil {
		return err
	} else if configuration != nil {
		baseURL = configuration.BaseURL
	}

	return ctx.JSON(http.StatusOK, toSearchResponseDTO(result, stored, baseURL))
}

// findObject loads the object named by the uuid path parameter, failing with 404 when unknown.
func (service *APIService) findObject(ctx echo.Context) (*model.RecognizableObject, error) {
	uuid := ctx.Param("uuid")
	if err := common.ValidateUUID(uuid); err != nil {
		return nil, err
	}
	object, err := service.coreService.Objects.FindByUUID(ctx.Request().Context(), uuid)
	if err != nil {
		return nil, err
	}
	if object == nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "no object exists with the uuid "+uuid)
	}
	return object, nil
}

// readPart returns a multipart part sent either as a plain field or as a file.
func readPart(ctx echo.Context, name string) ([]byte, bool, error) {
	if value := ctx.FormValue(name); value != "" {
		return []byte(value), true, nil
	}
	data, err := readFile(ctx, name)
	if err != nil {
		return nil, false, err
	}
	return data, data != nil, nil
}

// readFile returns the content of a multipart file part, or nil when the part is absent.
func readFile(ctx echo.Context, name string) ([]byte, error) {
	file, err := ctx.FormFile(name)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("failed to read multipart part %s: %v", name, err))
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file %s: %w", file.Filename, err)
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			slog.Error("failed to close uploaded file reader", "error", cerr, "filename", file.Filename)
		}
	}()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file %s: %w", file.Filename, err)
	}
	return data, nil
}
