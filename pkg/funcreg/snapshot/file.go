package snapshot

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// FileName is the fixed name of the snapshot file inside a snapshot directory.
const FileName = "function_info.bin"

// Info describes a snapshot file.
type Info struct {
	Path      string
	Size      int64
	TakenAt   time.Time
	Functions int
	Packages  int
}

// Path returns the snapshot file path inside dir.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// Take writes state to dir atomically: the bytes go to a uniquely named
// temporary file that is synced and then renamed over FileName. A failure at
// any step leaves the previous snapshot file untouched.
func Take(dir string, state State) (Info, error) {
	takenAt := time.Now().UTC()
	data, err := Encode(state, takenAt)
	if err != nil {
		return Info{}, &IOError{Op: "encode", Path: Path(dir), Err: err}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Info{}, &IOError{Op: "create", Path: dir, Err: err}
	}
	removeStale(dir)

	final := Path(dir)
	tmp := filepath.Join(dir, FileName+"."+uuid.New().String()+".tmp")
	if err := writeFile(tmp, data); err != nil {
		_ = os.Remove(tmp)
		return Info{}, err
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return Info{}, &IOError{Op: "rename", Path: final, Err: err}
	}
	syncDir(dir)

	return Info{
		Path:      final,
		Size:      int64(len(data)),
		TakenAt:   takenAt,
		Functions: len(state.Functions),
		Packages:  len(state.Checksums),
	}, nil
}

// Load reads and verifies the snapshot in dir.
// Returns ErrNoSnapshot if the file does not exist, a *CorruptError if its
// content fails verification, or an *IOError for other read failures.
func Load(dir string) (State, Info, error) {
	path := Path(dir)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return State{}, Info{}, ErrNoSnapshot
	}
	if err != nil {
		return State{}, Info{}, &IOError{Op: "read", Path: path, Err: err}
	}

	state, takenAt, err := Decode(data)
	if err != nil {
		var ce *CorruptError
		if errors.As(err, &ce) {
			ce.Path = path
		}
		return State{}, Info{}, err
	}

	return state, Info{
		Path:      path,
		Size:      int64(len(data)),
		TakenAt:   takenAt,
		Functions: len(state.Functions),
		Packages:  len(state.Checksums),
	}, nil
}

func writeFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return &IOError{Op: "sync", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &IOError{Op: "close", Path: path, Err: err}
	}
	return nil
}

// syncDir flushes the directory entry for the rename. Not every platform
// supports syncing a directory, so failures are ignored.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}

// removeStale deletes temporary files left behind by an interrupted Take.
func removeStale(dir string) {
	matches, err := filepath.Glob(filepath.Join(dir, FileName+".*.tmp"))
	if err != nil {
		return
	}
	for _, m := range matches {
		_ = os.Remove(m)
	}
}
