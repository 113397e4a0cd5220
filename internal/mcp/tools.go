package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolNameFixImports is the MCP tool name for the import fixer.
const ToolNameFixImports = "depfix_fix_imports"

// MaxCodeInputBytes is the maximum allowed size for inline code input (1 MB).
const MaxCodeInputBytes = 1 << 20

// Sentinel errors for fix_imports input validation.
var (
	// ErrEmptyCode indicates the code parameter is empty.
	ErrEmptyCode = errors.New("code parameter is required and must not be empty")
	// ErrEmptyDir indicates the dir parameter is empty.
	ErrEmptyDir = errors.New("dir parameter is required and must not be empty")
	// ErrCodeTooLarge indicates the code input exceeds the size limit.
	ErrCodeTooLarge = errors.New("code input exceeds maximum size")
)

// OverrideInput mirrors fixer.Override as an MCP-schema-friendly type.
type OverrideInput struct {
	Dependencies    map[string]string `json:"dependencies,omitempty"    jsonschema:"dependency name to version range, merged over package.json"`
	DevDependencies map[string]string `json:"dev_dependencies,omitempty" jsonschema:"devDependency name to version range, merged over package.json"`
}

// FixImportsInput is the input schema for the fix_imports tool.
type FixImportsInput struct {
	Code     string         `json:"code"               jsonschema:"source code to fix imports in"`
	Dir      string         `json:"dir"                jsonschema:"absolute path to the project directory (used to locate package.json and resolve dependencies)"`
	Filename string         `json:"filename,omitempty" jsonschema:"filename of the source, used to pick the parser grammar (default: index.js)"`
	Override *OverrideInput `json:"override,omitempty" jsonschema:"optional partial dependency manifest override merged over the project's package.json"`
}

// FixImportsOutput is the structured output of the fix_imports tool.
type FixImportsOutput struct {
	Code    string `json:"code"`
	Changed bool   `json:"changed"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

// validateFixImportsInput checks fix_imports's input constraints.
func validateFixImportsInput(input FixImportsInput) error {
	if input.Code == "" {
		return ErrEmptyCode
	}

	if input.Dir == "" {
		return ErrEmptyDir
	}

	if len(input.Code) > MaxCodeInputBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrCodeTooLarge, len(input.Code), MaxCodeInputBytes)
	}

	return nil
}

// defaultFilename is used when the caller doesn't name a specific file,
// picking the JavaScript grammar.
const defaultFilename = "index.js"
