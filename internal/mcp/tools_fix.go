package mcp

import (
	"context"
	"fmt"
	"path/filepath"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/depfix/depfix/pkg/fixer"
)

// handleFixImports implements the fix_imports tool: it runs the fixer on
// input.Code within input.Dir and returns the rewritten source.
func (s *Server) handleFixImports(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input FixImportsInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if err := validateFixImportsInput(input); err != nil {
		return errorResult(err)
	}

	filename := input.Filename
	if filename == "" {
		filename = defaultFilename
	}

	if !filepath.IsAbs(filename) {
		filename = filepath.Join(input.Dir, filename)
	}

	fixed, err := s.fixer.Run(ctx, input.Dir, filename, input.Code, toFixerOverride(input.Override))
	if err != nil {
		return errorResult(fmt.Errorf("fix imports: %w", err))
	}

	return jsonResult(FixImportsOutput{
		Code:    fixed,
		Changed: fixed != input.Code,
	})
}

func toFixerOverride(in *OverrideInput) *fixer.Override {
	if in == nil {
		return nil
	}

	return &fixer.Override{
		Dependencies:    in.Dependencies,
		DevDependencies: in.DevDependencies,
	}
}
