// ABOUTME: Direct message sending tools plus channel/message-type metadata reads
// ABOUTME: Every send_* tool here is named in the send blocklist

package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/iterable-tools/iterable-mcp/internal/iterable"
)

// targetArgs are the shared arguments for single-recipient sends.
type targetArgs struct {
	CampaignID int            `json:"campaignId"`
	Email      string         `json:"recipientEmail"`
	DataFields map[string]any `json:"dataFields"`
}

func (a targetArgs) body() map[string]any {
	body := map[string]any{
		"campaignId":     a.CampaignID,
		"recipientEmail": a.Email,
	}
	if a.DataFields != nil {
		body["dataFields"] = a.DataFields
	}
	return body
}

func sendTool(client *iterable.Client, name, description, path string) Descriptor {
	return Descriptor{
		Tool: mcp.NewTool(name,
			mcp.WithDescription(description),
			mcp.WithNumber("campaignId",
				mcp.Required(),
				mcp.Description("Campaign whose template and settings the message uses"),
			),
			mcp.WithString("recipientEmail",
				mcp.Required(),
				mcp.Description("Email address of the recipient"),
			),
			mcp.WithObject("dataFields",
				mcp.Description("Merge fields for the message template"),
			),
		),
		Handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var args targetArgs
			if err := decodeArgs(request, &args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return apiResult(client.Post(ctx, path, args.body()))
		},
	}
}

func messagingTools(client *iterable.Client) []Descriptor {
	return []Descriptor{
		sendTool(client, "send_email",
			"Send a single transactional email to a recipient.", "/api/email/target"),
		sendTool(client, "send_push",
			"Send a single push notification to a recipient.", "/api/push/target"),
		sendTool(client, "send_sms",
			"Send a single SMS message to a recipient.", "/api/sms/target"),
		sendTool(client, "send_in_app",
			"Send a single in-app message to a recipient.", "/api/inApp/target"),
		{
			Tool: mcp.NewTool("get_channels",
				mcp.WithDescription("List the project's message channels."),
			),
			Handler: func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return apiResult(client.Get(ctx, "/api/channels", nil))
			},
		},
		{
			Tool: mcp.NewTool("get_message_types",
				mcp.WithDescription("List the project's message types and their channel assignments."),
			),
			Handler: func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return apiResult(client.Get(ctx, "/api/messageTypes", nil))
			},
		},
	}
}
