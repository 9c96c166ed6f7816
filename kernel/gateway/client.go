package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mamameal/docgenctl/kernel/model"
	"github.com/michaelquigley/pfxlog"
	"github.com/pkg/errors"
)

const (
	DefaultBaseURL = "http://127.0.0.1:8000"
	DefaultTimeout = 5 * time.Minute

	fileField = "file"
)

// Client is the HTTP boundary to the document-generation backend.
type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Transfer sends src to the endpoint serving spec's kind.
func (c *Client) Transfer(ctx context.Context, spec *model.KindSpec, src model.Source) (model.TransferResult, error) {
	switch spec.Group {
	case model.GroupMaster:
		return c.UploadMaster(ctx, spec.WireType, src)
	case model.GroupTemplate:
		return c.UploadTemplate(ctx, spec.WireType, src)
	}
	switch spec.Kind {
	case model.OrderInvoice:
		return c.ConvertOrder(ctx, src)
	case model.SealLabels:
		return c.CreateSeal(ctx, src)
	}
	return model.TransferResult{}, errors.Errorf("no endpoint for kind '%s'", spec.Kind)
}

type messageResponse struct {
	Message string `json:"message"`
}

// UploadMaster replaces a master dataset. Any 2xx is success; a JSON message is picked up
// when the backend sends one.
func (c *Client) UploadMaster(ctx context.Context, wireType string, src model.Source) (model.TransferResult, error) {
	var resp messageResponse
	if err := c.upload(ctx, "/api/masters/upload", url.Values{"type": {wireType}}, src, lenient(&resp)); err != nil {
		return model.TransferResult{}, err
	}
	return model.TransferResult{Message: resp.Message}, nil
}

func (c *Client) UploadTemplate(ctx context.Context, wireType string, src model.Source) (model.TransferResult, error) {
	var resp messageResponse
	if err := c.upload(ctx, "/api/templates/upload", url.Values{"type": {wireType}}, src, &resp); err != nil {
		return model.TransferResult{}, err
	}
	return model.TransferResult{Message: resp.Message}, nil
}

type encodedFile struct {
	Data     string `json:"data"`
	Filename string `json:"filename"`
}

type orderInvoiceResponse struct {
	TemplateFile  encodedFile `json:"template_file"`
	NouhinsyoFile encodedFile `json:"nouhinsyo_file"`
}

// ConvertOrder turns an order PDF into a count sheet (macro workbook) and a delivery note.
func (c *Client) ConvertOrder(ctx context.Context, src model.Source) (model.TransferResult, error) {
	var resp orderInvoiceResponse
	if err := c.upload(ctx, "/api/order-invoice", nil, src, &resp); err != nil {
		return model.TransferResult{}, err
	}
	return model.TransferResult{
		Artifacts: []model.GeneratedArtifact{
			{Role: "count-sheet", Filename: resp.TemplateFile.Filename, EncodedPayload: resp.TemplateFile.Data, Media: model.MacroSpreadsheet},
			{Role: "delivery-note", Filename: resp.NouhinsyoFile.Filename, EncodedPayload: resp.NouhinsyoFile.Data, Media: model.Spreadsheet},
		},
	}, nil
}

type sealResponse struct {
	FileData string            `json:"file_data"`
	Filename string            `json:"filename"`
	Blocks   []json.RawMessage `json:"blocks"`
}

// CreateSeal reads a seal PDF and returns the label sheet plus the extracted blocks.
func (c *Client) CreateSeal(ctx context.Context, src model.Source) (model.TransferResult, error) {
	var resp sealResponse
	if err := c.upload(ctx, "/api/seal", nil, src, &resp); err != nil {
		return model.TransferResult{}, err
	}
	return model.TransferResult{
		Artifacts: []model.GeneratedArtifact{
			{Role: "seal-labels", Filename: resp.Filename, EncodedPayload: resp.FileData, Media: model.Spreadsheet},
		},
		Blocks: resp.Blocks,
	}, nil
}

func (c *Client) MasterInfo(ctx context.Context) (model.MasterInfo, error) {
	var info model.MasterInfo
	if err := c.getJSON(ctx, "/api/masters/info", &info); err != nil {
		return model.MasterInfo{}, err
	}
	return info, nil
}

// TemplateInfo returns descriptors keyed by template wire type.
func (c *Client) TemplateInfo(ctx context.Context) (map[string]model.TemplateDescriptor, error) {
	info := make(map[string]model.TemplateDescriptor)
	if err := c.getJSON(ctx, "/api/templates/info", &info); err != nil {
		return nil, err
	}
	return info, nil
}

func (c *Client) Health(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.getJSON(ctx, "/health", &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return errors.Errorf("backend reports status '%s'", resp.Status)
	}
	return nil
}

func (c *Client) upload(ctx context.Context, path string, query url.Values, src model.Source, out interface{}) error {
	body, contentType, err := multipartBody(src)
	if err != nil {
		return err
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", contentType)

	pfxlog.Logger().WithField("endpoint", path).WithField("file", src.Name()).Debug("uploading")
	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s failed", req.Method, req.URL.Path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "failed to read response of %s", req.URL.Path)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Detail: extractDetail(data)}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if l, ok := out.(lenientBody); ok {
		if err := json.Unmarshal(data, l.out); err != nil {
			pfxlog.Logger().WithField("endpoint", req.URL.Path).Debugf("ignoring non-JSON success body: %v", err)
		}
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "failed to parse response of %s", req.URL.Path)
	}
	return nil
}

// lenientBody marks a response target whose endpoint has no payload contract beyond the status.
type lenientBody struct {
	out interface{}
}

func lenient(out interface{}) lenientBody {
	return lenientBody{out: out}
}

func multipartBody(src model.Source) (io.Reader, string, error) {
	f, err := src.Open()
	if err != nil {
		return nil, "", errors.Wrapf(err, "failed to open '%s'", src.Name())
	}
	defer f.Close()

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	part, err := w.CreateFormFile(fileField, src.Name())
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to create form file")
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", errors.Wrapf(err, "failed to read '%s'", src.Name())
	}
	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "failed to finish multipart body")
	}
	return buf, w.FormDataContentType(), nil
}
