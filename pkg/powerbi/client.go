// Package powerbi pushes report rows into a Power BI dataset and looks up
// report embed URLs.
package powerbi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/grocerydesk/grocery-console/pkg/config"
	"github.com/grocerydesk/grocery-console/pkg/logging"
	"github.com/grocerydesk/grocery-console/pkg/reports"
)

// DefaultTimeout is the maximum time to wait for Power BI responses.
const DefaultTimeout = 30 * time.Second

// Scope is the OAuth scope for the Power BI REST API.
const Scope = "https://analysis.windows.net/powerbi/api/.default"

// APIError is a non-2xx response from the Power BI REST API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("power bi returned status %d: %s", e.StatusCode, e.Body)
}

// NewCredential builds the service principal credential for the client
// credentials exchange against the configured authority.
func NewCredential(cfg *config.PowerBIConfig) (azcore.TokenCredential, error) {
	opts := &azidentity.ClientSecretCredentialOptions{
		ClientOptions: azcore.ClientOptions{
			Cloud: cloud.Configuration{
				ActiveDirectoryAuthorityHost: cfg.AuthorityHost,
			},
		},
	}
	cred, err := azidentity.NewClientSecretCredential(cfg.TenantID, cfg.ClientID, cfg.ClientSecret, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create power bi credential: %w", err)
	}
	return cred, nil
}

// Client talks to one Power BI workspace.
type Client struct {
	httpClient *http.Client
	credential azcore.TokenCredential
	apiURL     string
	groupID    string
	datasetID  string
	logger     *zap.Logger
}

// NewClient creates a Power BI client for the configured workspace and dataset.
func NewClient(cfg *config.PowerBIConfig, credential azcore.TokenCredential, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		credential: credential,
		apiURL:     cfg.APIURL,
		groupID:    cfg.GroupID,
		datasetID:  cfg.DatasetID,
		logger:     logger.Named("powerbi"),
	}
}

// UploadCSV sends every data row of a report CSV to the dataset table.
// The first column stays text; numeric fields in the other columns are sent
// as JSON numbers.
func (c *Client) UploadCSV(ctx context.Context, csvPath, table string) (int, error) {
	header, records, err := reports.ReadCSV(csvPath)
	if err != nil {
		return 0, err
	}
	if len(header) == 0 {
		return 0, fmt.Errorf("%s is empty", csvPath)
	}

	rows := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		row := make(map[string]any, len(header))
		for i, name := range header {
			if i >= len(rec) {
				break
			}
			row[name] = rowValue(i, rec[i])
		}
		rows = append(rows, row)
	}

	if err := c.PutRows(ctx, table, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func rowValue(col int, field string) any {
	if col == 0 {
		return field
	}
	if d, err := decimal.NewFromString(field); err == nil {
		return json.Number(d.String())
	}
	return field
}

// PutRows replaces the rows of a dataset table.
func (c *Client) PutRows(ctx context.Context, table string, rows []map[string]any) error {
	endpoint, err := buildURL(c.apiURL, "groups", c.groupID, "datasets", c.datasetID, "tables", table, "rows")
	if err != nil {
		return fmt.Errorf("failed to build URL: %w", err)
	}

	payload, err := json.Marshal(map[string]any{"rows": rows})
	if err != nil {
		return fmt.Errorf("failed to encode rows: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Info("Uploading rows to Power BI",
		zap.String("url", endpoint),
		zap.String("table", table),
		zap.Int("rows", len(rows)))

	_, err = c.do(ctx, req)
	return err
}

// EmbedURL returns the embed URL of a report in the workspace.
func (c *Client) EmbedURL(ctx context.Context, reportID string) (string, error) {
	endpoint, err := buildURL(c.apiURL, "groups", c.groupID, "reports", reportID)
	if err != nil {
		return "", fmt.Errorf("failed to build URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	body, err := c.do(ctx, req)
	if err != nil {
		return "", err
	}

	var response struct {
		EmbedURL string `json:"embedUrl"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if response.EmbedURL == "" {
		return "", fmt.Errorf("report %s has no embed URL", reportID)
	}

	c.logger.Debug("Got embed URL from Power BI",
		zap.String("report_id", reportID),
		zap.String("embed_url", response.EmbedURL))

	return response.EmbedURL, nil
}

// do authorizes and executes req. Non-2xx responses become *APIError.
func (c *Client) do(ctx context.Context, req *http.Request) ([]byte, error) {
	token, err := c.credential.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{Scope}})
	if err != nil {
		return nil, fmt.Errorf("failed to get power bi token: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token.Token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("RequestId", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call power bi: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("Power BI returned error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", logging.TruncateString(string(body), logging.MaxBodyLogLength)))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

// buildURL constructs a URL by parsing the base and joining escaped path segments.
func buildURL(baseURL string, pathSegments ...string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	segments := []string{u.Path}
	for _, s := range pathSegments {
		if s == "" {
			return "", fmt.Errorf("empty path segment in %v", pathSegments)
		}
		segments = append(segments, url.PathEscape(s))
	}
	u.RawPath = path.Join(segments...)
	u.Path, err = url.PathUnescape(u.RawPath)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	return u.String(), nil
}
