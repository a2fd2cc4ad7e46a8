package loader

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/leapstack-labs/assetwrap/pkg/asset"
	"github.com/leapstack-labs/assetwrap/pkg/host"
)

// Written assets are served, so they are world-readable.
const (
	dirMode  = 0o755
	fileMode = 0o644
)

// Written describes one asset written to disk.
type Written struct {
	Name   string
	Bytes  int
	Mapped bool
}

// Write stores every asset of comp under dir. Mapped assets get a sibling
// map file and a trailing sourceMappingURL comment pointing at it. Assets
// left untouched keep their own map file, copied over when dir is not the
// input directory.
func (l *Loader) Write(comp *host.Compilation, dir string) ([]Written, error) {
	inPlace := samePath(l.dir, dir)
	written := make([]Written, 0, len(comp.Assets))
	for _, name := range comp.AssetNames() {
		src := comp.Assets[name]
		w, err := writeAsset(dir, name, src)
		if err != nil {
			return written, err
		}
		if !w.Mapped && !inPlace && asset.Rewritten(src) == nil {
			copied, err := l.copyMap(dir, name)
			if err != nil {
				return written, err
			}
			w.Mapped = copied
		}
		written = append(written, w)
	}
	return written, nil
}

func writeAsset(dir, name string, src asset.Source) (Written, error) {
	text, m := asset.Read(src, true)
	target := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(target), dirMode); err != nil {
		return Written{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	if m != nil {
		out := m.Clone()
		out.File = path.Base(name)
		b, err := out.Bytes()
		if err != nil {
			return Written{}, fmt.Errorf("%s: failed to encode source map: %w", name, err)
		}
		if err := os.WriteFile(target+MapSuffix, b, fileMode); err != nil {
			return Written{}, fmt.Errorf("failed to write %s%s: %w", name, MapSuffix, err)
		}
		text += "\n//# sourceMappingURL=" + path.Base(name) + MapSuffix
	}

	if err := os.WriteFile(target, []byte(text), fileMode); err != nil {
		return Written{}, fmt.Errorf("failed to write %s: %w", name, err)
	}
	return Written{Name: name, Bytes: len(text), Mapped: m != nil}, nil
}

// copyMap copies the input map of name, if any, next to the written asset.
func (l *Loader) copyMap(dir, name string) (bool, error) {
	rel := filepath.FromSlash(name) + MapSuffix
	b, err := os.ReadFile(filepath.Join(l.dir, rel))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s%s: %w", name, MapSuffix, err)
	}
	if err := os.WriteFile(filepath.Join(dir, rel), b, fileMode); err != nil {
		return false, fmt.Errorf("failed to write %s%s: %w", name, MapSuffix, err)
	}
	return true, nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
