// ABOUTME: Template tools: listing, fetching, and updating message templates
// ABOUTME: Templates carry no subscriber data; only the update is write-gated

package tools

import (
	"context"
	"net/url"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/iterable-tools/iterable-mcp/internal/iterable"
)

func templateTools(client *iterable.Client) []Descriptor {
	return []Descriptor{
		{
			Tool: mcp.NewTool("get_templates",
				mcp.WithDescription("List message templates, optionally filtered by type."),
				mcp.WithString("templateType",
					mcp.Description("Filter by template type (Base, Blast, Triggered, Workflow)"),
				),
			),
			Handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				var args struct {
					TemplateType string `json:"templateType"`
				}
				if err := decodeArgs(request, &args); err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				query := url.Values{}
				if args.TemplateType != "" {
					query.Set("templateType", args.TemplateType)
				}
				return apiResult(client.Get(ctx, "/api/templates", query))
			},
		},
		{
			Tool: mcp.NewTool("get_email_template",
				mcp.WithDescription("Get an email template's subject, sender, and body HTML."),
				mcp.WithNumber("templateId",
					mcp.Required(),
					mcp.Description("The template id to fetch"),
				),
			),
			Handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				var args struct {
					TemplateID int `json:"templateId"`
				}
				if err := decodeArgs(request, &args); err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				query := url.Values{"templateId": {strconv.Itoa(args.TemplateID)}}
				return apiResult(client.Get(ctx, "/api/templates/email/get", query))
			},
		},
		{
			Tool: mcp.NewTool("update_email_template",
				mcp.WithDescription("Update an email template's subject and/or body HTML."),
				mcp.WithNumber("templateId",
					mcp.Required(),
					mcp.Description("The template id to update"),
				),
				mcp.WithString("subject",
					mcp.Description("New subject line"),
				),
				mcp.WithString("html",
					mcp.Description("New body HTML"),
				),
			),
			Handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				var args struct {
					TemplateID int    `json:"templateId"`
					Subject    string `json:"subject"`
					HTML       string `json:"html"`
				}
				if err := decodeArgs(request, &args); err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				body := map[string]any{"templateId": args.TemplateID}
				if args.Subject != "" {
					body["subject"] = args.Subject
				}
				if args.HTML != "" {
					body["html"] = args.HTML
				}
				return apiResult(client.Post(ctx, "/api/templates/email/update", body))
			},
		},
	}
}
