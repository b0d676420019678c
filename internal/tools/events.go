// ABOUTME: Event tools: per-user event history and custom event tracking
// ABOUTME: Both operate on identified users and therefore touch PII

package tools

import (
	"context"
	"net/url"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/iterable-tools/iterable-mcp/internal/iterable"
)

func eventTools(client *iterable.Client) []Descriptor {
	return []Descriptor{
		{
			Tool: mcp.NewTool("get_user_events",
				mcp.WithDescription("Get a user's recent event history by email address."),
				mcp.WithString("email",
					mcp.Required(),
					mcp.Description("The user's email address"),
				),
			),
			Handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				var args struct {
					Email string `json:"email"`
				}
				if err := decodeArgs(request, &args); err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				return apiResult(client.Get(ctx, "/api/events/"+url.PathEscape(args.Email), nil))
			},
		},
		{
			Tool: mcp.NewTool("track_event",
				mcp.WithDescription("Record a custom event against a user profile."),
				mcp.WithString("email",
					mcp.Required(),
					mcp.Description("The user's email address"),
				),
				mcp.WithString("eventName",
					mcp.Required(),
					mcp.Description("Name of the event to record"),
				),
				mcp.WithObject("dataFields",
					mcp.Description("Event payload fields"),
				),
			),
			Handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				var args struct {
					Email      string         `json:"email"`
					EventName  string         `json:"eventName"`
					DataFields map[string]any `json:"dataFields"`
				}
				if err := decodeArgs(request, &args); err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				return apiResult(client.Post(ctx, "/api/events/track", map[string]any{
					"email":      args.Email,
					"eventName":  args.EventName,
					"dataFields": args.DataFields,
				}))
			},
		},
	}
}
