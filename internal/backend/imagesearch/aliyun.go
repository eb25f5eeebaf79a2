package imagesearch

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aliyun/alibaba-cloud-sdk-go/sdk"
	"github.com/aliyun/alibaba-cloud-sdk-go/sdk/auth/credentials"
	sdkerrors "github.com/aliyun/alibaba-cloud-sdk-go/sdk/errors"
	"github.com/aliyun/alibaba-cloud-sdk-go/sdk/requests"
	alisearch "github.com/aliyun/alibaba-cloud-sdk-go/services/imagesearch"
	"github.com/jo-hoe/goimagesearch/internal/model"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	defaultMaxResults = 20
	defaultTimeout    = 30 * time.Second

	actionAddImage         = "AddImage"
	actionDeleteImage      = "DeleteImage"
	actionSearchImageByPic = "SearchImageByPic"

	// dbStoreContent marks registrations whose picture is served from the local database.
	dbStoreContent = `{"dbStore":true}`
)

// AliyunClient calls the Alibaba Cloud Image Search API through the vendor SDK.
// The endpoint is the domain of the configuration given to each call.
type AliyunClient struct {
	scheme     string
	timeout    time.Duration
	maxResults int
	metrics    *clientMetrics
}

type AliyunOption func(*AliyunClient)

// WithTimeout sets the connect and read timeout of every request.
func WithTimeout(timeout time.Duration) AliyunOption {
	return func(c *AliyunClient) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithScheme sets the URL scheme used to reach the configured domain, "https" by default.
func WithScheme(scheme string) AliyunOption {
	return func(c *AliyunClient) {
		c.scheme = scheme
	}
}

// WithMaxResults limits the number of hits returned by Search.
func WithMaxResults(maxResults int) AliyunOption {
	return func(c *AliyunClient) {
		if maxResults > 0 {
			c.maxResults = maxResults
		}
	}
}

// WithRegisterer registers the client metrics with the given registerer.
func WithRegisterer(registerer prometheus.Registerer) AliyunOption {
	return func(c *AliyunClient) {
		c.metrics = newClientMetrics(registerer)
	}
}

func NewAliyunClient(options ...AliyunOption) *AliyunClient {
	client := &AliyunClient{
		scheme:     "https",
		timeout:    defaultTimeout,
		maxResults: defaultMaxResults,
	}
	for _, option := range options {
		option(client)
	}
	if client.metrics == nil {
		client.metrics = newClientMetrics(nil)
	}
	return client
}

func (c *AliyunClient) Register(ctx context.Context, configuration *model.Configuration, imageData []byte,
	imageType model.ImageType, category model.ObjectCategory, uuid string) error {
	client, err := c.sdkClient(configuration)
	if err != nil {
		return fmt.Errorf("unable to add a new item to the image search API: %w", err)
	}

	request := alisearch.CreateAddImageRequest()
	c.prepare(request.RpcRequest, configuration)
	request.InstanceName = configuration.InstanceName
	request.ProductId = uuid
	request.PicName = uuid + "." + imageType.Extension()
	request.PicContent = base64.StdEncoding.EncodeToString(imageData)
	request.CategoryId = requests.Integer(category.ID())
	request.CustomContent = dbStoreContent
	if configuration.Namespace != "" {
		// lets several environments share one instance
		request.StrAttr = configuration.Namespace
	}

	response, err := invoke(ctx, c, actionAddImage, func() (*alisearch.AddImageResponse, error) {
		response, err := client.AddImage(request)
		if err == nil && !response.Success {
			err = rejected(actionAddImage, response.GetHttpStatus(), response.RequestId, response.Code, response.Message)
		}
		return response, err
	})
	if err != nil {
		return fmt.Errorf("unable to add a new item to the image search API: %w", err)
	}
	slog.Info("registered image", "uuid", uuid, "category", category, "image_type", imageType,
		"request_id", response.RequestId)
	return nil
}

func (c *AliyunClient) Unregister(ctx context.Context, configuration *model.Configuration, uuid string) error {
	client, err := c.sdkClient(configuration)
	if err != nil {
		return fmt.Errorf("unable to delete an item from the image search API: %w", err)
	}

	request := alisearch.CreateDeleteImageRequest()
	c.prepare(request.RpcRequest, configuration)
	request.InstanceName = configuration.InstanceName
	request.ProductId = uuid

	response, err := invoke(ctx, c, actionDeleteImage, func() (*alisearch.DeleteImageResponse, error) {
		response, err := client.DeleteImage(request)
		if err == nil && !response.Success {
			err = rejected(actionDeleteImage, response.GetHttpStatus(), response.RequestId, response.Code, response.Message)
		}
		return response, err
	})
	if err != nil {
		return fmt.Errorf("unable to delete an item from the image search API: %w", err)
	}
	slog.Info("unregistered image", "uuid", uuid, "request_id", response.RequestId)
	return nil
}

func (c *AliyunClient) Search(ctx context.Context, configuration *model.Configuration, imageData []byte,
	region *model.ImageRegion) (*model.SearchResult, error) {
	response, err := c.search(ctx, configuration, imageData, region, c.maxResults)
	if err != nil {
		return nil, fmt.Errorf("unable to search items from the image search API: %w", err)
	}
	return parseSearchResponse(response, response.GetHttpContentString())
}

func (c *AliyunClient) CheckConfiguration(ctx context.Context, configuration *model.Configuration) error {
	if _, err := c.search(ctx, configuration, sampleImage(), nil, 1); err != nil {
		return fmt.Errorf("unable to search items from the image search API: %w", err)
	}
	return nil
}

func (c *AliyunClient) search(ctx context.Context, configuration *model.Configuration, imageData []byte,
	region *model.ImageRegion, num int) (*alisearch.SearchImageByPicResponse, error) {
	client, err := c.sdkClient(configuration)
	if err != nil {
		return nil, err
	}

	request := alisearch.CreateSearchImageByPicRequest()
	c.prepare(request.RpcRequest, configuration)
	request.InstanceName = configuration.InstanceName
	request.PicContent = base64.StdEncoding.EncodeToString(imageData)
	request.Start = requests.NewInteger(0)
	request.Num = requests.NewInteger(num)
	if configuration.Namespace != "" {
		request.Filter = `str_attr="` + configuration.Namespace + `"`
	}
	if region != nil {
		request.Crop = requests.NewBoolean(true)
		request.Region = formatRegion(*region)
	}

	response, err := invoke(ctx, c, actionSearchImageByPic, func() (*alisearch.SearchImageByPicResponse, error) {
		response, err := client.SearchImageByPic(request)
		if err == nil && !response.Success {
			err = rejected(actionSearchImageByPic, response.GetHttpStatus(), response.RequestId, response.Code, response.Msg)
		}
		return response, err
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// sdkClient creates an SDK client for the credentials of the configuration.
// Retries are disabled, a failed call is reported as is.
func (c *AliyunClient) sdkClient(configuration *model.Configuration) (*alisearch.Client, error) {
	config := sdk.NewConfig().WithAutoRetry(false)
	credential := credentials.NewAccessKeyCredential(configuration.AccessKeyID, configuration.AccessKeySecret)
	client, err := alisearch.NewClientWithOptions(configuration.RegionID, config, credential)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to create the image search client: %v", ErrRemoteCall, err)
	}
	return client, nil
}

func (c *AliyunClient) prepare(request *requests.RpcRequest, configuration *model.Configuration) {
	request.Scheme = c.scheme
	request.Domain = configuration.Domain
	request.SetConnectTimeout(c.timeout)
	request.SetReadTimeout(c.timeout)
}

// invoke runs an SDK call, records its metrics and maps its failure to
// ErrRemoteCall. The SDK takes no context, so a cancelled context returns
// early and leaves the request to finish in the background.
func invoke[R any](ctx context.Context, c *AliyunClient, action string, send func() (R, error)) (response R, err error) {
	started := time.Now()
	defer func() {
		c.metrics.observe(action, started, err)
	}()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return response, fmt.Errorf("%w: %s: %w", ErrRemoteCall, action, ctxErr)
	}

	type outcome struct {
		response R
		err      error
	}
	done := make(chan outcome, 1)
	go func() {
		r, e := send()
		done <- outcome{response: r, err: e}
	}()

	slog.Debug("sending image search request", "action", action)
	select {
	case <-ctx.Done():
		return response, fmt.Errorf("%w: %s: %w", ErrRemoteCall, action, ctx.Err())
	case result := <-done:
		if result.err != nil {
			return response, sdkError(action, result.err)
		}
		return result.response, nil
	}
}

// sdkError turns a server rejection into an APIError and wraps everything else in ErrRemoteCall.
func sdkError(action string, err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return err
	}
	var serverError *sdkerrors.ServerError
	if errors.As(err, &serverError) {
		apiErr = &APIError{
			Action:     action,
			StatusCode: serverError.HttpStatus(),
			RequestID:  serverError.RequestId(),
			Code:       serverError.ErrorCode(),
			Message:    serverError.Message(),
		}
		slog.Warn("image search request rejected", "action", action, "status", apiErr.StatusCode,
			"request_id", apiErr.RequestID, "code", apiErr.Code, "message", apiErr.Message)
		return apiErr
	}
	return fmt.Errorf("%w: %s: %v", ErrRemoteCall, action, err)
}

// rejected reports a response that arrived with Success=false.
func rejected(action string, status int, requestID string, code int, message string) error {
	slog.Warn("image search request rejected", "action", action, "status", status,
		"request_id", requestID, "code", code, "message", message)
	return &APIError{
		Action:     action,
		StatusCode: status,
		RequestID:  requestID,
		Code:       strconv.Itoa(code),
		Message:    message,
	}
}
