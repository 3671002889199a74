// Package search locates raw datagram acquisitions under a URI, using the
// TileDB VFS bindings so the same walk works over a local filesystem or an
// object store.
package search

import (
	"path/filepath"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
)

// trawl recurses through uri via vfs, collecting basenames that match
// pattern (e.g. "0001_20240612_101500_RV_Investigator.all").
func trawl(vfs *tiledb.VFS, pattern string, uri string, items []string) []string {
	dirs, files, err := vfs.List(uri)
	if err != nil {
		panic(err)
	}

	for _, file := range files {
		match, err := filepath.Match(pattern, filepath.Base(file))
		if err != nil {
			panic(err)
		}
		if match {
			items = append(items, file)
		}
	}

	for _, dir := range dirs {
		items = trawl(vfs, pattern, dir, items)
	}

	return items
}

// FindDatagramFiles recursively searches uri for raw EM3-series acquisition
// files (the ".all"/".kmall" extensions Kongsberg-Simrad loggers write),
// using config_uri for object-store credentials when uri is not a local
// path.
func FindDatagramFiles(uri string, config_uri string) []string {
	var (
		config *tiledb.Config
		err    error
	)

	if config_uri == "" {
		config, err = tiledb.NewConfig()
		if err != nil {
			panic(err)
		}
	} else {
		config, err = tiledb.LoadConfig(config_uri)
		if err != nil {
			panic(err)
		}
	}
	defer config.Free()

	ctx, err := tiledb.NewContext(config)
	if err != nil {
		panic(err)
	}
	defer ctx.Free()

	vfs, err := tiledb.NewVFS(ctx, config)
	if err != nil {
		panic(err)
	}
	defer vfs.Free()

	items := make([]string, 0)
	for _, pattern := range []string{"*.all", "*.kmall"} {
		items = trawl(vfs, pattern, uri, items)
	}

	return items
}
