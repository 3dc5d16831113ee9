package cloud

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rschick/cloud-slackbot/clients"
	"github.com/rschick/cloud-slackbot/models"
)

// CloudClient implements clients.CloudClient against the Serverless Cloud
// management API.
type CloudClient struct {
	httpClient *http.Client
	baseURL    string
	orgName    string
	accessKey  string
}

var _ clients.CloudClient = (*CloudClient)(nil)

// NewCloudClient creates a client bound to one organization and access key.
// The base endpoint is selected by the deployment stage; that selection
// lives here and nowhere else.
func NewCloudClient(stage, orgName, accessKey string) *CloudClient {
	return &CloudClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURLForStage(stage),
		orgName:    orgName,
		accessKey:  accessKey,
	}
}

func baseURLForStage(stage string) string {
	switch stage {
	case "", "prod":
		return "https://api.cloud.serverless.com"
	case "dev":
		return "https://api.cloud.serverless-dev.com"
	default:
		return fmt.Sprintf("https://%s.cloud.serverless-dev.com", stage)
	}
}

func (c *CloudClient) ListServices(ctx context.Context) ([]models.CloudService, error) {
	var services []models.CloudService
	path := fmt.Sprintf("/orgs/%s/services", url.PathEscape(c.orgName))
	if err := c.doRequest(ctx, http.MethodGet, path, &services); err != nil {
		return nil, err
	}
	return services, nil
}

func (c *CloudClient) ListInstances(ctx context.Context, serviceName string) ([]models.CloudInstance, error) {
	var instances []models.CloudInstance
	path := fmt.Sprintf("/orgs/%s/services/%s/instances",
		url.PathEscape(c.orgName), url.PathEscape(serviceName))
	if err := c.doRequest(ctx, http.MethodGet, path, &instances); err != nil {
		return nil, err
	}
	return instances, nil
}

// cloudErrorBody is the error shape the cloud API returns on failures.
type cloudErrorBody struct {
	Message    string `json:"message"`
	StatusCode *int   `json:"statusCode"`
	Name       string `json:"name"`
}

// doRequest is the single funnel for every remote call; the error
// normalization into clients.CloudAPIError exists only here.
func (c *CloudClient) doRequest(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return &clients.CloudAPIError{Message: fmt.Sprintf("failed to build request: %v", err)}
	}
	req.Header.Set("Authorization", "Bearer "+c.accessKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport-level failure: no status code or kind to report
		return &clients.CloudAPIError{Message: fmt.Sprintf("failed to reach cloud API: %v", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &clients.CloudAPIError{Message: fmt.Sprintf("failed to read cloud API response: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return normalizeError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &clients.CloudAPIError{Message: fmt.Sprintf("failed to parse cloud API response: %v", err)}
	}

	return nil
}

func normalizeError(httpStatus int, body []byte) *clients.CloudAPIError {
	apiErr := &clients.CloudAPIError{
		Message:    http.StatusText(httpStatus),
		StatusCode: &httpStatus,
	}

	var errBody cloudErrorBody
	if err := json.Unmarshal(body, &errBody); err == nil {
		if errBody.Message != "" {
			apiErr.Message = errBody.Message
		}
		if errBody.StatusCode != nil {
			apiErr.StatusCode = errBody.StatusCode
		}
		if errBody.Name != "" {
			apiErr.Kind = &errBody.Name
		}
	}

	return apiErr
}
