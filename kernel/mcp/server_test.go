package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/mamameal/docgenctl/kernel/codec"
	"github.com/mamameal/docgenctl/kernel/engine"
	"github.com/mamameal/docgenctl/kernel/gateway"
	"github.com/mamameal/docgenctl/kernel/sink"
	"github.com/mark3labs/mcp-go/mcp"
)

func newTestServer(t *testing.T, handler http.HandlerFunc, outDir string) *DocgenMCPServer {
	t.Helper()
	backend := httptest.NewServer(handler)
	t.Cleanup(backend.Close)

	console, err := engine.NewConsole(
		gateway.NewClient(backend.URL, gateway.WithHTTPClient(backend.Client())),
		engine.WithMaterializer(codec.New(sink.NewDirSink(outDir))),
	)
	if err != nil {
		t.Fatalf("failed to create console: %v", err)
	}
	return NewDocgenMCPServer(console)
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func toolRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func TestNewDocgenMCPServer(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {}, t.TempDir())

	if server == nil {
		t.Fatal("expected server to be created")
	}
	if server.console == nil {
		t.Error("expected console to be set")
	}
}

func TestGetMetadataHandler(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/masters/info":
			w.Write([]byte(`{"product":"p.csv","customer":"c.csv"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}, t.TempDir())

	result, err := server.getMetadataHandler(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var response map[string]metadataGroup
	json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &response)

	if response["master"].Stale {
		t.Error("expected master metadata to be fresh")
	}
	if !response["template"].Stale {
		t.Error("expected template metadata to be stale")
	}
	if len(response["master"].Entries) != 2 {
		t.Errorf("expected 2 master entries, got %d", len(response["master"].Entries))
	}
}

func TestUploadMasterHandler_ServerError(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"Filename must contain '商品マスタ一覧'"}`))
	}, t.TempDir())

	result, err := server.uploadHandler("master")(context.Background(), toolRequest(map[string]any{
		"type": "product",
		"path": writeTempFile(t, "products.csv", "code,name\n"),
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result")
	}
	if text := result.Content[0].(mcp.TextContent).Text; text != "Filename must contain '商品マスタ一覧'" {
		t.Errorf("unexpected message '%s'", text)
	}
}

func TestUploadTemplateHandler_UnknownType(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {}, t.TempDir())

	result, err := server.uploadHandler("template")(context.Background(), toolRequest(map[string]any{
		"type": "invoice",
		"path": "/tmp/x.xlsx",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("expected error result for unknown template type")
	}
}

func TestUploadTemplateHandler_Success(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/templates/upload":
			w.Write([]byte(`{"message":"template updated"}`))
		case "/api/templates/info":
			w.Write([]byte(`{"seal":{"filename":"seal.xlsx","exists":true,"modified":"2024-05-01 10:00"}}`))
		}
	}, t.TempDir())

	result, err := server.uploadHandler("template")(context.Background(), toolRequest(map[string]any{
		"type": "seal",
		"path": writeTempFile(t, "seal.xlsx", "x"),
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %v", result.Content)
	}
	text := result.Content[0].(mcp.TextContent).Text
	if text != "seal-template: template updated (now seal.xlsx (2024-05-01 10:00))" {
		t.Errorf("unexpected text '%s'", text)
	}
}

func TestConvertHandler_WritesArtifacts(t *testing.T) {
	outDir := t.TempDir()
	payload := base64.StdEncoding.EncodeToString([]byte("labels"))
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"file_data":"` + payload + `","filename":"seal_out.xlsx","blocks":[{},{},{}]}`))
	}, outDir)

	result, err := server.convertHandler("seal-labels")(context.Background(), toolRequest(map[string]any{
		"path": writeTempFile(t, "seal.pdf", "%PDF"),
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %v", result.Content)
	}

	var response struct {
		Downloads []downloadView `json:"downloads"`
		Blocks    int            `json:"blocks"`
	}
	json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &response)
	if response.Blocks != 3 {
		t.Errorf("expected 3 blocks, got %d", response.Blocks)
	}
	if len(response.Downloads) != 1 {
		t.Fatalf("expected 1 download, got %d", len(response.Downloads))
	}

	data, err := os.ReadFile(filepath.Join(outDir, "seal_out.xlsx"))
	if err != nil {
		t.Fatalf("expected artifact on disk: %v", err)
	}
	if string(data) != "labels" {
		t.Errorf("unexpected artifact content '%s'", data)
	}
}

func TestConvertHandler_PartialArtifacts(t *testing.T) {
	outDir := t.TempDir()
	payload := base64.StdEncoding.EncodeToString([]byte("delivery"))
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"template_file":{"data":"!!notb64","filename":"a.xlsm"},"nouhinsyo_file":{"data":"` + payload + `","filename":"b.xlsx"}}`))
	}, outDir)

	result, err := server.convertHandler("order-invoice")(context.Background(), toolRequest(map[string]any{
		"path": writeTempFile(t, "order.pdf", "%PDF"),
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected partial result, got error: %v", result.Content)
	}

	var response struct {
		Downloads []downloadView `json:"downloads"`
		Errors    []string       `json:"errors"`
	}
	json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &response)
	if len(response.Downloads) != 1 || response.Downloads[0].Filename != "b.xlsx" {
		t.Errorf("expected only the delivery note, got %+v", response.Downloads)
	}
	if len(response.Errors) != 1 {
		t.Errorf("expected 1 error, got %v", response.Errors)
	}
	if _, err := os.Stat(filepath.Join(outDir, "b.xlsx")); err != nil {
		t.Errorf("expected delivery note on disk: %v", err)
	}
}

func TestStatusHandler(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {}, t.TempDir())

	contents, err := server.statusHandler(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := contents[0].(mcp.TextResourceContents).Text

	var response map[string]interface{}
	json.Unmarshal([]byte(text), &response)
	if int(response["count"].(float64)) != 7 {
		t.Errorf("expected 7 slots, got %v", response["count"])
	}
}
