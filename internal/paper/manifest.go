package paper

import (
	"encoding/json"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Catalog maps each standard to the subjects that have a manifest.
type Catalog map[string][]string

// ReadCatalog scans fsys for <standard>/<subject>/manifest.json.
func ReadCatalog(fsys fs.FS) (Catalog, error) {
	stds, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	out := Catalog{}
	for _, std := range stds {
		if !std.IsDir() {
			continue
		}
		subs, err := fs.ReadDir(fsys, std.Name())
		if err != nil {
			return nil, err
		}
		for _, sub := range subs {
			if !sub.IsDir() {
				continue
			}
			if _, err := fs.Stat(fsys, path.Join(std.Name(), sub.Name(), ManifestFile)); err != nil {
				continue
			}
			out[std.Name()] = append(out[std.Name()], sub.Name())
		}
	}
	for k := range out {
		sort.Strings(out[k])
	}
	return out, nil
}

// ManifestResult reports one manifest written by WriteManifests.
type ManifestResult struct {
	Dir      string
	Chapters int
}

// WriteManifests writes manifest.json into every <root>/<standard>/<subject>
// directory that holds chapter files. Chapters are the directory's *.json
// files except the manifest, sorted by name. Empty directories are skipped.
func WriteManifests(root string) ([]ManifestResult, error) {
	stds, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var res []ManifestResult
	for _, std := range stds {
		if !std.IsDir() {
			continue
		}
		stdDir := filepath.Join(root, std.Name())
		subs, err := os.ReadDir(stdDir)
		if err != nil {
			return res, err
		}
		for _, sub := range subs {
			if !sub.IsDir() {
				continue
			}
			dir := filepath.Join(stdDir, sub.Name())
			n, err := writeManifest(dir)
			if err != nil {
				return res, err
			}
			if n > 0 {
				rel, _ := filepath.Rel(root, dir)
				res = append(res, ManifestResult{Dir: filepath.ToSlash(rel), Chapters: n})
			}
		}
	}
	return res, nil
}

func writeManifest(dir string) (int, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	files := []string{}
	for _, e := range ents {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), ".json") && e.Name() != ManifestFile {
			files = append(files, e.Name())
		}
	}
	if len(files) == 0 {
		return 0, nil
	}
	sort.Strings(files)
	b, err := json.MarshalIndent(Manifest{Chapters: files}, "", "  ")
	if err != nil {
		return 0, err
	}
	return len(files), os.WriteFile(filepath.Join(dir, ManifestFile), b, 0o644)
}
