// ABOUTME: Campaign tools: listing, metrics, creation, triggering, aborting
// ABOUTME: trigger_campaign is send-capable and gated by the sends permission

package tools

import (
	"context"
	"net/url"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/iterable-tools/iterable-mcp/internal/iterable"
)

func campaignTools(client *iterable.Client) []Descriptor {
	return []Descriptor{
		{
			Tool: mcp.NewTool("list_campaigns",
				mcp.WithDescription("List all campaigns in the project with their state and channel."),
			),
			Handler: func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return apiResult(client.Get(ctx, "/api/campaigns", nil))
			},
		},
		{
			Tool: mcp.NewTool("get_campaign_metrics",
				mcp.WithDescription("Get aggregate performance metrics (sends, opens, clicks) for a campaign."),
				mcp.WithNumber("campaignId",
					mcp.Required(),
					mcp.Description("The campaign id to fetch metrics for"),
				),
			),
			Handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				var args struct {
					CampaignID int `json:"campaignId"`
				}
				if err := decodeArgs(request, &args); err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				query := url.Values{"campaignId": {strconv.Itoa(args.CampaignID)}}
				return apiResult(client.Get(ctx, "/api/campaigns/metrics", query))
			},
		},
		{
			Tool: mcp.NewTool("create_campaign",
				mcp.WithDescription("Create a new campaign from a template, targeting the given lists."),
				mcp.WithString("name",
					mcp.Required(),
					mcp.Description("Campaign name"),
				),
				mcp.WithNumber("templateId",
					mcp.Required(),
					mcp.Description("Template to base the campaign on"),
				),
				mcp.WithArray("listIds",
					mcp.Required(),
					mcp.Description("List ids the campaign targets"),
				),
			),
			Handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				var args struct {
					Name       string `json:"name"`
					TemplateID int    `json:"templateId"`
					ListIDs    []int  `json:"listIds"`
				}
				if err := decodeArgs(request, &args); err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				return apiResult(client.Post(ctx, "/api/campaigns/create", map[string]any{
					"name":       args.Name,
					"templateId": args.TemplateID,
					"listIds":    args.ListIDs,
				}))
			},
		},
		{
			Tool: mcp.NewTool("trigger_campaign",
				mcp.WithDescription("Trigger an existing campaign, sending its messages to the target lists."),
				mcp.WithNumber("campaignId",
					mcp.Required(),
					mcp.Description("The campaign id to trigger"),
				),
			),
			Handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				var args struct {
					CampaignID int `json:"campaignId"`
				}
				if err := decodeArgs(request, &args); err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				return apiResult(client.Post(ctx, "/api/campaigns/trigger", map[string]any{
					"campaignId": args.CampaignID,
				}))
			},
		},
		{
			Tool: mcp.NewTool("abort_campaign",
				mcp.WithDescription("Abort a scheduled or running campaign."),
				mcp.WithNumber("campaignId",
					mcp.Required(),
					mcp.Description("The campaign id to abort"),
				),
			),
			Handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				var args struct {
					CampaignID int `json:"campaignId"`
				}
				if err := decodeArgs(request, &args); err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				return apiResult(client.Post(ctx, "/api/campaigns/abort", map[string]any{
					"campaignId": args.CampaignID,
				}))
			},
		},
	}
}
