// ABOUTME: User profile tools: lookups, field metadata, updates, deletion
// ABOUTME: Everything here except get_user_fields touches subscriber PII

package tools

import (
	"context"
	"net/url"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/iterable-tools/iterable-mcp/internal/iterable"
)

func userTools(client *iterable.Client) []Descriptor {
	return []Descriptor{
		{
			Tool: mcp.NewTool("get_user_by_email",
				mcp.WithDescription("Look up a user profile by email address."),
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
				return apiResult(client.Get(ctx, "/api/users/getByEmail", url.Values{"email": {args.Email}}))
			},
		},
		{
			Tool: mcp.NewTool("get_user_by_user_id",
				mcp.WithDescription("Look up a user profile by userId."),
				mcp.WithString("userId",
					mcp.Required(),
					mcp.Description("The user's id"),
				),
			),
			Handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				var args struct {
					UserID string `json:"userId"`
				}
				if err := decodeArgs(request, &args); err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				return apiResult(client.Get(ctx, "/api/users/byUserId/"+url.PathEscape(args.UserID), nil))
			},
		},
		{
			Tool: mcp.NewTool("get_user_fields",
				mcp.WithDescription("List the user profile field names and types defined in the project."),
			),
			Handler: func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return apiResult(client.Get(ctx, "/api/users/getFields", nil))
			},
		},
		{
			Tool: mcp.NewTool("update_user",
				mcp.WithDescription("Create or update a user profile's data fields."),
				mcp.WithString("email",
					mcp.Required(),
					mcp.Description("The user's email address"),
				),
				mcp.WithObject("dataFields",
					mcp.Description("Profile fields to set"),
				),
			),
			Handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				var args struct {
					Email      string         `json:"email"`
					DataFields map[string]any `json:"dataFields"`
				}
				if err := decodeArgs(request, &args); err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				return apiResult(client.Post(ctx, "/api/users/update", map[string]any{
					"email":      args.Email,
					"dataFields": args.DataFields,
				}))
			},
		},
		{
			Tool: mcp.NewTool("delete_user",
				mcp.WithDescription("Permanently delete a user and their event history by email address."),
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
				return apiResult(client.Delete(ctx, "/api/users/"+url.PathEscape(args.Email), nil))
			},
		},
	}
}
