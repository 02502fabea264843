package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/khbuild/pkg/types"
)

// FakeRunner records packaging tool invocations instead of running a
// process. Handler, when set, produces the result of each call.
type FakeRunner struct {
	Calls   [][]string
	Handler func(args []string) ([]byte, error)
}

// Run records args and delegates to Handler
func (f *FakeRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	call := make([]string, len(args))
	copy(call, args)
	f.Calls = append(f.Calls, call)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.Handler == nil {
		return nil, nil
	}
	return f.Handler(call)
}

// PatchingTool simulates "hed patch": it writes a new pair for the data
// file's package into the output directory. The content of each file is
// PatchedContent of the package.
func PatchingTool(fs types.FS) func(args []string) ([]byte, error) {
	return func(args []string) ([]byte, error) {
		if len(args) != 6 || args[0] != "hed" || args[1] != "patch" {
			return nil, fmt.Errorf("unexpected arguments %v", args)
		}
		id := types.PackageID(strings.TrimSuffix(filepath.Base(args[2]), types.PackageDataExt))
		data, index := id.Pair(args[5])
		if err := fs.MkdirAll(args[5], 0755); err != nil {
			return nil, err
		}
		if err := fs.WriteFile(data, []byte(PatchedContent(id, types.PackageDataExt)), 0644); err != nil {
			return nil, err
		}
		if err := fs.WriteFile(index, []byte(PatchedContent(id, types.PackageIndexExt)), 0644); err != nil {
			return nil, err
		}
		return []byte("patched " + id.String()), nil
	}
}

// ExtractingTool simulates "hed extract": it writes tree under the output
// directory for every call
func ExtractingTool(fs types.FS, tree map[string]string) func(args []string) ([]byte, error) {
	return func(args []string) ([]byte, error) {
		if len(args) != 5 || args[0] != "hed" || args[1] != "extract" {
			return nil, fmt.Errorf("unexpected arguments %v", args)
		}
		out := args[4]
		for rel, content := range tree {
			path := filepath.Join(out, filepath.FromSlash(rel))
			if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return nil, err
			}
			if err := fs.WriteFile(path, []byte(content), 0644); err != nil {
				return nil, err
			}
		}
		return []byte("extracted " + filepath.Base(args[2])), nil
	}
}

// PatchedContent is the content PatchingTool writes for one file of a pair
func PatchedContent(id types.PackageID, ext string) string {
	return "patched " + string(id) + ext
}
