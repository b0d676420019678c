// ABOUTME: List tools: enumeration, membership reads, creation, subscription changes
// ABOUTME: get_list_users, subscribe, and unsubscribe handle subscriber PII

package tools

import (
	"context"
	"net/url"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/iterable-tools/iterable-mcp/internal/iterable"
)

func listTools(client *iterable.Client) []Descriptor {
	return []Descriptor{
		{
			Tool: mcp.NewTool("get_lists",
				mcp.WithDescription("List all contact lists in the project."),
			),
			Handler: func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return apiResult(client.Get(ctx, "/api/lists", nil))
			},
		},
		{
			Tool: mcp.NewTool("get_list_users",
				mcp.WithDescription("Get the email addresses of every user on a list."),
				mcp.WithNumber("listId",
					mcp.Required(),
					mcp.Description("The list id to read membership for"),
				),
			),
			Handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				var args struct {
					ListID int `json:"listId"`
				}
				if err := decodeArgs(request, &args); err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				query := url.Values{"listId": {strconv.Itoa(args.ListID)}}
				return apiResult(client.Get(ctx, "/api/lists/getUsers", query))
			},
		},
		{
			Tool: mcp.NewTool("create_list",
				mcp.WithDescription("Create a new static contact list."),
				mcp.WithString("name",
					mcp.Required(),
					mcp.Description("Name for the new list"),
				),
			),
			Handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				var args struct {
					Name string `json:"name"`
				}
				if err := decodeArgs(request, &args); err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				return apiResult(client.Post(ctx, "/api/lists", map[string]any{"name": args.Name}))
			},
		},
		{
			Tool: mcp.NewTool("delete_list",
				mcp.WithDescription("Delete a static contact list by id. Does not delete its users."),
				mcp.WithNumber("listId",
					mcp.Required(),
					mcp.Description("The list id to delete"),
				),
			),
			Handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				var args struct {
					ListID int `json:"listId"`
				}
				if err := decodeArgs(request, &args); err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				return apiResult(client.Delete(ctx, "/api/lists/"+strconv.Itoa(args.ListID), nil))
			},
		},
		{
			Tool: mcp.NewTool("subscribe_users",
				mcp.WithDescription("Subscribe users (by email) to a list."),
				mcp.WithNumber("listId",
					mcp.Required(),
					mcp.Description("Target list id"),
				),
				mcp.WithArray("emails",
					mcp.Required(),
					mcp.Description("Email addresses to subscribe"),
				),
			),
			Handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				var args struct {
					ListID int      `json:"listId"`
					Emails []string `json:"emails"`
				}
				if err := decodeArgs(request, &args); err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				subscribers := make([]map[string]string, len(args.Emails))
				for i, email := range args.Emails {
					subscribers[i] = map[string]string{"email": email}
				}
				return apiResult(client.Post(ctx, "/api/lists/subscribe", map[string]any{
					"listId":      args.ListID,
					"subscribers": subscribers,
				}))
			},
		},
		{
			Tool: mcp.NewTool("unsubscribe_users",
				mcp.WithDescription("Unsubscribe users (by email) from a list."),
				mcp.WithNumber("listId",
					mcp.Required(),
					mcp.Description("Target list id"),
				),
				mcp.WithArray("emails",
					mcp.Required(),
					mcp.Description("Email addresses to unsubscribe"),
				),
			),
			Handler: func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				var args struct {
					ListID int      `json:"listId"`
					Emails []string `json:"emails"`
				}
				if err := decodeArgs(request, &args); err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				subscribers := make([]map[string]string, len(args.Emails))
				for i, email := range args.Emails {
					subscribers[i] = map[string]string{"email": email}
				}
				return apiResult(client.Post(ctx, "/api/lists/unsubscribe", map[string]any{
					"listId":      args.ListID,
					"subscribers": subscribers,
				}))
			},
		},
	}
}
