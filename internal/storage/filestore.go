// internal/storage/filestore.go
//
// 提供檔案型快照的序列化與反序列化實作。
// 採「原子寫入」策略：先寫入 .tmp 檔，再以 rename() 取代原檔，避免寫入中斷造成檔案損壞。
// 副檔名決定格式：.json、.yaml / .yml、.zst（zstd 壓縮的 JSON）。
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"
)

// LoadSnapshot 讀取指定路徑的快照；格式由副檔名判斷。
func LoadSnapshot(path string) (Snapshot, error) {
	var snap Snapshot
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		err = yaml.NewDecoder(f).Decode(&snap)
	case ".zst":
		zr, zerr := zstd.NewReader(f)
		if zerr != nil {
			return snap, fmt.Errorf("could not create zstd reader: %w", zerr)
		}
		defer zr.Close()
		err = json.NewDecoder(zr).Decode(&snap)
	default:
		err = json.NewDecoder(f).Decode(&snap)
	}
	return snap, err
}

// SaveSnapshot 將 Snapshot 寫入 path：
//  1. 補上 Meta.Storage、時間戳與（缺少時的）快照 ID。
//  2. 寫入 path+".tmp" 暫存檔。
//  3. 寫入完成後以 os.Rename() 取代正式檔案。
func SaveSnapshot(path string, snap Snapshot) error {
	snap.Meta.Storage = "file_snapshot"
	snap.Meta.Timestamp = time.Now().UTC()
	if snap.Meta.ID == "" {
		snap.Meta.ID = uuid.NewString()
	}
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := encodeSnapshot(f, filepath.Ext(path), snap); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func encodeSnapshot(w io.Writer, ext string, snap Snapshot) error {
	switch ext {
	case ".yaml", ".yml":
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(snap); err != nil {
			return err
		}
		return enc.Close()
	case ".zst":
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return fmt.Errorf("could not create zstd writer: %w", err)
		}
		if err := json.NewEncoder(zw).Encode(snap); err != nil {
			zw.Close()
			return err
		}
		return zw.Close()
	default:
		// 縮排輸出，方便人工檢視
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}
}

// FileStore 在目錄下以「轉義後的標籤 + 副檔名」保存每個登錄簿。
type FileStore struct {
	dir string
	ext string
}

// NewFileStore 建立（必要時新建）目錄 dir。format 為 json、yaml 或 zst。
func NewFileStore(dir, format string) (*FileStore, error) {
	ext, err := extFor(format)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create snapshot directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir, ext: ext}, nil
}

func extFor(format string) (string, error) {
	switch format {
	case "", "json":
		return ".json", nil
	case "yaml", "yml":
		return ".yaml", nil
	case "zst", "zstd":
		return ".zst", nil
	default:
		return "", fmt.Errorf("unsupported snapshot format %q", format)
	}
}

func (s *FileStore) path(label string) string {
	return filepath.Join(s.dir, url.PathEscape(label)+s.ext)
}

func (s *FileStore) Save(_ context.Context, snap Snapshot) error {
	return SaveSnapshot(s.path(snap.Label), snap)
}

func (s *FileStore) Load(_ context.Context, label string) (Snapshot, error) {
	snap, err := LoadSnapshot(s.path(label))
	if os.IsNotExist(err) {
		return snap, fmt.Errorf("%w: %s", ErrNotFound, label)
	}
	return snap, err
}

func (s *FileStore) Labels(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, s.ext) {
			continue
		}
		label, err := url.PathUnescape(strings.TrimSuffix(name, s.ext))
		if err != nil {
			continue
		}
		out = append(out, label)
	}
	slices.Sort(out)
	return out, nil
}

func (s *FileStore) Close() error { return nil }
