package probe

import (
	"context"
	"os"
)

type csvProber struct{}

func (csvProber) Test(_ context.Context, info ConnectionInfo) Result {
	if info.Path == "" {
		return failure("File path is required")
	}
	fi, err := os.Stat(info.Path)
	if err != nil || !fi.Mode().IsRegular() {
		return failure("Path does not exist or is not a file: %s", info.Path)
	}
	return success("Path exists: %s", info.Path)
}

// Metadata of a csv source is always empty, the file is the table.
func (csvProber) Metadata(context.Context, ConnectionInfo) ([]string, error) {
	return []string{}, nil
}
