package mcp

import (
	"encoding/json"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult[T any](value T) (*mcpsdk.CallToolResult, T, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		var zero T
		r, _, _ := errorResult[T](fmt.Errorf("encode result: %w", err))
		return r, zero, nil
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(data)}},
	}, value, nil
}

// errorResult builds a CallToolResult carrying only an error field,
// never partial data.
func errorResult[T any](err error) (*mcpsdk.CallToolResult, T, error) {
	var zero T
	text := err.Error()
	if data, mErr := json.Marshal(ErrorOutput{Error: text}); mErr == nil {
		text = string(data)
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: text}},
		IsError: true,
	}, zero, nil
}
