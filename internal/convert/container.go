// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/pdiddy/mdsite/internal/container"
)

// siteMount is where the site root appears inside the container.
const siteMount = "/data"

// ContainerConverter runs pandoc inside a container image. The site root is
// bind-mounted at /data so the relative source, output and template paths
// resolve exactly as they do for a local pandoc.
type ContainerConverter struct {
	runtime container.Runtime
	image   string
	root    string
}

// NewContainerConverter creates a converter that uses the given container
// runtime to run image. It verifies that the image exists locally before
// returning.
func NewContainerConverter(ctx context.Context, rt container.Runtime, image, root string) (*ContainerConverter, error) {
	if err := rt.ImageExists(ctx, image); err != nil {
		return nil, fmt.Errorf("pandoc image not available in %s: %w", rt.Name(), err)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving site root %s: %w", root, err)
	}
	return &ContainerConverter{runtime: rt, image: image, root: abs}, nil
}

func (c *ContainerConverter) Name() string { return "container/" + c.runtime.Name() }

func (c *ContainerConverter) Convert(ctx context.Context, src, dst string) error {
	var stderr bytes.Buffer
	err := c.runtime.Run(ctx, c.image, container.RunOptions{
		Mounts:  []container.Mount{{Source: c.root, Target: siteMount}},
		Workdir: siteMount,
		Args:    pandocArgs(src, dst),
		Stderr:  &stderr,
	})
	if err != nil {
		return conversionError(src, withStderr(err, stderr.String()))
	}
	return nil
}
