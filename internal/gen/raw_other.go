//go:build !linux

package gen

import (
	"context"
	"errors"
)

func runRaw(ctx context.Context, cfg Config) error {
	return errors.New("gen: raw socket mode is only supported on linux")
}
