// Package portal bundles the portal's HTML templates and static files.
package portal

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
)

// Asset directories relative to the repository root.
const (
	TemplatesDir = "frontend/templates"
	StaticDir    = "frontend/static"
)

//go:embed all:frontend/static
var staticFS embed.FS

//go:embed all:frontend/templates
var templateFS embed.FS

// Templates returns the template tree. With fromDisk the files are read from
// TemplatesDir under the working directory on every open, so edits show up
// without a rebuild.
func Templates(fromDisk bool) (fs.FS, error) {
	return assetTree(templateFS, TemplatesDir, fromDisk)
}

// Static returns the static asset tree, rooted so that "css/styles.css"
// resolves directly.
func Static(fromDisk bool) (fs.FS, error) {
	return assetTree(staticFS, StaticDir, fromDisk)
}

func assetTree(embedded embed.FS, dir string, fromDisk bool) (fs.FS, error) {
	if fromDisk {
		return os.DirFS(dir), nil
	}
	sub, err := fs.Sub(embedded, dir)
	if err != nil {
		return nil, fmt.Errorf("open embedded %s: %w", dir, err)
	}
	return sub, nil
}
