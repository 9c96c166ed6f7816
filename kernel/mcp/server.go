package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mamameal/docgenctl/kernel/engine"
	"github.com/mamameal/docgenctl/kernel/model"
	"github.com/mamameal/docgenctl/kernel/slot"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const statusURI = "docgen://status"

type DocgenMCPServer struct {
	server  *server.MCPServer
	console *engine.Console
}

func NewDocgenMCPServer(console *engine.Console) *DocgenMCPServer {
	srv := server.NewMCPServer(
		"Docgen Operator Console",
		"v1.0.0",
		server.WithResourceCapabilities(true, true),
		server.WithToolCapabilities(true),
	)

	ds := &DocgenMCPServer{
		server:  srv,
		console: console,
	}

	ds.registerTools()
	ds.registerResources()

	return ds
}

func (ds *DocgenMCPServer) ServeStdio() error {
	return server.ServeStdio(ds.server)
}

func (ds *DocgenMCPServer) registerTools() {
	ds.server.AddTool(mcp.NewTool("get_metadata",
		mcp.WithDescription("Show the master and template files currently active on the backend"),
	), ds.getMetadataHandler)

	ds.server.AddTool(mcp.NewTool("upload_master",
		mcp.WithDescription("Replace a master dataset (CSV) on the backend"),
		mcp.WithString("type",
			mcp.Description("Master type"),
			mcp.Enum("product", "customer"),
			mcp.Required(),
		),
		mcp.WithString("path",
			mcp.Description("Local path of the master file"),
			mcp.Required(),
		),
	), ds.uploadHandler(model.GroupMaster))

	ds.server.AddTool(mcp.NewTool("upload_template",
		mcp.WithDescription("Replace a document template on the backend"),
		mcp.WithString("type",
			mcp.Description("Template type"),
			mcp.Enum("seal", "suudashiyo", "nouhinsyo"),
			mcp.Required(),
		),
		mcp.WithString("path",
			mcp.Description("Local path of the template file"),
			mcp.Required(),
		),
	), ds.uploadHandler(model.GroupTemplate))

	ds.server.AddTool(mcp.NewTool("convert_order",
		mcp.WithDescription("Convert an order PDF into a count sheet and a delivery note"),
		mcp.WithString("path",
			mcp.Description("Local path of the order PDF"),
			mcp.Required(),
		),
	), ds.convertHandler(model.OrderInvoice))

	ds.server.AddTool(mcp.NewTool("create_seal",
		mcp.WithDescription("Read a seal PDF and produce the label sheet"),
		mcp.WithString("path",
			mcp.Description("Local path of the seal PDF"),
			mcp.Required(),
		),
	), ds.convertHandler(model.SealLabels))
}

func (ds *DocgenMCPServer) registerResources() {
	resource := mcp.NewResource(statusURI, "Slot Status",
		mcp.WithResourceDescription("Current state of every upload slot"),
		mcp.WithMIMEType("application/json"),
	)
	ds.server.AddResource(resource, ds.statusHandler)
}

type metadataEntry struct {
	Kind       string `json:"kind"`
	Label      string `json:"label"`
	Identifier string `json:"identifier"`
}

type metadataGroup struct {
	Stale   bool            `json:"stale"`
	Error   string          `json:"error,omitempty"`
	Entries []metadataEntry `json:"entries"`
}

func (ds *DocgenMCPServer) getMetadataHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ds.console.Mount(ctx)

	out := map[string]metadataGroup{}
	for _, g := range []model.Group{model.GroupMaster, model.GroupTemplate} {
		snap := ds.console.Metadata(g)
		mg := metadataGroup{Stale: snap.Stale, Error: snap.Err}
		for k, entry := range snap.Entries {
			mg.Entries = append(mg.Entries, metadataEntry{Kind: string(k), Label: entry.Label, Identifier: entry.Identifier.String()})
		}
		sort.Slice(mg.Entries, func(i, j int) bool { return mg.Entries[i].Kind < mg.Entries[j].Kind })
		out[string(g)] = mg
	}
	return jsonResult(out)
}

func (ds *DocgenMCPServer) uploadHandler(group model.Group) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		wireType, err := request.RequireString("type")
		if err != nil {
			return mcp.NewToolResultError("type argument is required"), nil
		}
		path, err := request.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError("path argument is required"), nil
		}
		kind, err := model.KindByWireType(group, wireType)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		status, err := ds.submit(ctx, kind, path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if status.State == slot.Failed {
			return mcp.NewToolResultError(status.Message), nil
		}

		snap := ds.console.Metadata(group)
		return mcp.NewToolResultText(fmt.Sprintf("%s: %s (now %s)", kind, messageOr(status.Message, "updated"), snap.Entries[kind].Identifier)), nil
	}
}

type downloadView struct {
	Role        string   `json:"role"`
	Filename    string   `json:"filename"`
	ContentType string   `json:"content_type"`
	Location    string   `json:"location"`
	Size        int      `json:"size"`
	Sheets      []string `json:"sheets,omitempty"`
}

func (ds *DocgenMCPServer) convertHandler(kind model.Kind) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := request.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError("path argument is required"), nil
		}

		status, err := ds.submit(ctx, kind, path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if status.State == slot.Failed {
			return mcp.NewToolResultError(status.Message), nil
		}

		downloads, err := ds.console.Materialize(ctx, kind)
		if err != nil && len(downloads) == 0 {
			return mcp.NewToolResultError(err.Error()), nil
		}
		out := struct {
			Downloads []downloadView `json:"downloads"`
			Blocks    int            `json:"blocks,omitempty"`
			Errors    []string       `json:"errors,omitempty"`
		}{}
		out.Errors = errorMessages(err)
		for _, dl := range downloads {
			out.Downloads = append(out.Downloads, downloadView{
				Role:        dl.Role,
				Filename:    dl.Filename,
				ContentType: dl.ContentType,
				Location:    dl.Location,
				Size:        dl.Size,
				Sheets:      dl.Sheets,
			})
		}
		s, _ := ds.console.Slot(kind)
		if result, ok := s.LastResult(); ok {
			out.Blocks = len(result.Blocks)
		}
		return jsonResult(out)
	}
}

func (ds *DocgenMCPServer) submit(ctx context.Context, kind model.Kind, path string) (slot.Status, error) {
	if err := ds.console.Select(kind, model.LocalFile(path)); err != nil {
		return slot.Status{}, err
	}
	return ds.console.Submit(ctx, kind)
}

func (ds *DocgenMCPServer) statusHandler(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	statuses := map[string]string{}
	for kind, status := range ds.console.Statuses() {
		statuses[string(kind)] = status.String()
	}
	data, err := json.Marshal(map[string]interface{}{"count": len(statuses), "slots": statuses})
	if err != nil {
		return nil, fmt.Errorf("failed to encode status: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      statusURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func messageOr(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}

func errorMessages(err error) []string {
	if err == nil {
		return nil
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return []string{err.Error()}
	}
	var msgs []string
	for _, e := range joined.Unwrap() {
		msgs = append(msgs, e.Error())
	}
	return msgs
}
