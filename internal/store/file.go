package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// fileStore writes one <id>.json document per player under dir.
type fileStore struct {
	dir string
}

// NewFileStore returns a Store rooted at dir. The directory must exist.
func NewFileStore(dir string) (Store, error) {
	st, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("save dir %s: %w", dir, err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("save dir %s is not a directory", dir)
	}
	return &fileStore{dir: dir}, nil
}

func (f *fileStore) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("invalid player id %q", id)
	}
	return filepath.Join(f.dir, id+".json"), nil
}

func (f *fileStore) Load(ctx context.Context, id string) (*Player, error) {
	name, err := f.path(id)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	var p Player
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return fixup(&p), nil
}

// Save writes to a temp file and renames it over the old document.
func (f *fileStore) Save(ctx context.Context, p *Player) error {
	name, err := f.path(p.ID)
	if err != nil {
		return err
	}
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode player %s: %w", p.ID, err)
	}
	tmp := name + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, name); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}
