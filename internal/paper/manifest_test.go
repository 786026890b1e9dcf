package paper

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestWriteManifestsAndCatalog(t *testing.T) {
	root := t.TempDir()
	mk := func(rel, body string) {
		p := filepath.Join(root, rel)
		_ = os.MkdirAll(filepath.Dir(p), 0o755)
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	mk("10th/civics/ch2.json", "[]")
	mk("10th/civics/ch1.json", "[]")
	mk("10th/civics/notes.txt", "x")
	mk("10th/civics/manifest.json", `{"chapters":["stale.json"]}`)
	mk("12th/phy/ch1.json", "[]")
	_ = os.MkdirAll(filepath.Join(root, "12th", "empty"), 0o755)
	mk("readme.json", "{}")

	res, err := WriteManifests(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 2 {
		t.Fatalf("results = %+v", res)
	}

	b, err := os.ReadFile(filepath.Join(root, "10th", "civics", ManifestFile))
	if err != nil {
		t.Fatal(err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(m.Chapters, []string{"ch1.json", "ch2.json"}) {
		t.Fatalf("chapters = %v", m.Chapters)
	}
	if _, err := os.Stat(filepath.Join(root, "12th", "empty", ManifestFile)); !os.IsNotExist(err) {
		t.Fatalf("empty dir got a manifest: %v", err)
	}

	cat, err := ReadCatalog(os.DirFS(root))
	if err != nil {
		t.Fatal(err)
	}
	want := Catalog{"10th": {"civics"}, "12th": {"phy"}}
	if !reflect.DeepEqual(cat, want) {
		t.Fatalf("catalog = %v", cat)
	}
}
