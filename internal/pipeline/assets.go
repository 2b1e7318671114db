package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bengal-ssg/bengal/internal/bpath"
	"github.com/bengal-ssg/bengal/internal/model"
)

// discoverAssets walks assetsDir for every static file, recording both its
// full source path (for fingerprinting and copying) and its output-relative
// path. Asset fingerprinting and minification are external collaborators
// (spec §1); this stage only decides which files are unchanged and copies
// the rest through verbatim.
func discoverAssets(assetsDir string) ([]*model.Asset, error) {
	if _, err := os.Stat(assetsDir); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat assets dir %s: %w", assetsDir, err)
	}

	var assets []*model.Asset
	err := filepath.WalkDir(assetsDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(assetsDir, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		assets = append(assets, &model.Asset{
			SourcePath: bpath.ToPosix(path),
			OutputPath: bpath.ToPosix(filepath.Join("assets", rel)),
			Size:       info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discovering assets: %w", err)
	}
	return assets, nil
}

// copyAsset copies one asset's bytes verbatim from assetsDir into
// outputDir, creating parent directories as needed.
func copyAsset(asset *model.Asset, assetsDir, outputDir string) error {
	src, err := os.Open(filepath.FromSlash(asset.SourcePath))
	if err != nil {
		return fmt.Errorf("opening asset %s: %w", asset.SourcePath, err)
	}
	defer src.Close()

	dest := filepath.Join(outputDir, filepath.FromSlash(asset.OutputPath))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating asset directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp asset file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("copying asset %s: %w", asset.SourcePath, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("syncing asset %s: %w", dest, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming asset into place: %w", err)
	}
	return nil
}
