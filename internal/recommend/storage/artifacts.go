// LodgeRank - Personalized Lodging Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lodgerank

package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/lodgerank/internal/recommend/model"
)

const artifactExt = ".gob.gz"

// FileInfo describes a persisted artifact file.
type FileInfo struct {
	// Name is the artifact family name (e.g., "scorer").
	Name string `json:"name"`

	// Version is the artifact version.
	Version int `json:"version"`

	// SavedAt is when the file was written.
	SavedAt time.Time `json:"saved_at"`

	// Checksum is the SHA-256 of the uncompressed payload.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed payload size.
	SizeBytes int64 `json:"size_bytes"`

	// Artifact is the artifact metadata.
	Artifact model.ArtifactMetadata `json:"artifact"`
}

// storedFile is the on-disk format.
type storedFile struct {
	Info           FileInfo
	CompressedData []byte
}

// Store persists model artifacts as {name}_v{version}.gob.gz files.
type Store struct {
	baseDir string
	name    string

	mu     sync.RWMutex
	latest int
	now    func() time.Time
}

// NewStore opens or creates an artifact store in baseDir.
func NewStore(baseDir, name string) (*Store, error) {
	if name == "" {
		return nil, errors.New("artifact name is required")
	}
	if strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("invalid artifact name %q", name)
	}
	if err := os.MkdirAll(baseDir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for model storage
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	s := &Store{baseDir: baseDir, name: name, now: time.Now}
	versions, err := s.versions()
	if err != nil {
		return nil, fmt.Errorf("scan existing artifacts: %w", err)
	}
	if len(versions) > 0 {
		s.latest = versions[0]
	}
	return s, nil
}

// NextVersion returns the version the next saved artifact should use.
func (s *Store) NextVersion() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest + 1
}

// LatestVersion returns the newest persisted version.
func (s *Store) LatestVersion() (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.latest > 0
}

// Save persists an artifact under its metadata version. The file is
// written to a temporary name and renamed so readers never see a partial
// artifact.
func (s *Store) Save(ctx context.Context, a *model.Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if a == nil {
		return errors.New("nil artifact")
	}
	if a.Meta.Version < 1 {
		return fmt.Errorf("artifact version must be positive, got %d", a.Meta.Version)
	}

	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(a); err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}
	hash := sha256.Sum256(raw.Bytes())

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw.Bytes()); err != nil {
		return fmt.Errorf("compress artifact: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return fmt.Errorf("finalize compression: %w", err)
	}

	sf := storedFile{
		Info: FileInfo{
			Name:      s.name,
			Version:   a.Meta.Version,
			SavedAt:   s.now().UTC(),
			Checksum:  hex.EncodeToString(hash[:]),
			SizeBytes: int64(compressed.Len()),
			Artifact:  a.Meta,
		},
		CompressedData: compressed.Bytes(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(a.Meta.Version)
	tmp, err := os.CreateTemp(s.baseDir, "."+s.name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }() //nolint:errcheck // no-op after a successful rename

	if err := gob.NewEncoder(tmp).Encode(sf); err != nil {
		_ = tmp.Close() //nolint:errcheck // write error already being returned
		return fmt.Errorf("write artifact file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close artifact file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("commit artifact file: %w", err)
	}

	if a.Meta.Version > s.latest {
		s.latest = a.Meta.Version
	}
	return nil
}

// Load reads a specific artifact version and verifies its checksum.
func (s *Store) Load(ctx context.Context, version int) (*model.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sf, err := s.readFile(version)
	if err != nil {
		return nil, err
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, fmt.Errorf("decompress artifact: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("read decompressed data: %w", err)
	}

	hash := sha256.Sum256(raw)
	if checksum := hex.EncodeToString(hash[:]); checksum != sf.Info.Checksum {
		return nil, fmt.Errorf("checksum mismatch: expected %s, got %s", sf.Info.Checksum, checksum)
	}

	var a model.Artifact
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&a); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("artifact v%d: %w", version, err)
	}
	return &a, nil
}

// LoadLatest reads the newest artifact. It returns model.ErrNoArtifact
// when nothing has been saved.
func (s *Store) LoadLatest(ctx context.Context) (*model.Artifact, error) {
	version, ok := s.LatestVersion()
	if !ok {
		return nil, model.ErrNoArtifact
	}
	return s.Load(ctx, version)
}

// List returns file info for every persisted version, newest first.
// Unreadable files are skipped.
func (s *Store) List(ctx context.Context) ([]FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	versions, err := s.versions()
	if err != nil {
		return nil, err
	}

	infos := make([]FileInfo, 0, len(versions))
	for _, v := range versions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sf, err := s.readFile(v)
		if err != nil {
			continue
		}
		infos = append(infos, sf.Info)
	}
	return infos, nil
}

// Prune keeps the newest keep versions and removes the rest. It returns
// the number of files removed.
func (s *Store) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 1 {
		keep = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	versions, err := s.versions()
	if err != nil {
		return 0, fmt.Errorf("read directory: %w", err)
	}

	removed := 0
	for _, v := range versions[min(keep, len(versions)):] {
		if err := os.Remove(s.path(v)); err == nil {
			removed++
		}
	}
	return removed, nil
}

// versions returns every persisted version, newest first.
func (s *Store) versions() ([]int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}

	var versions []int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, version := parseArtifactFilename(entry.Name())
		if name != s.name {
			continue
		}
		versions = append(versions, version)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(versions)))
	return versions, nil
}

func (s *Store) readFile(version int) (*storedFile, error) {
	f, err := os.Open(s.path(version)) //nolint:gosec // path is built from the store name and a version number
	if err != nil {
		return nil, fmt.Errorf("open artifact file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return nil, fmt.Errorf("read artifact file: %w", err)
	}
	return &sf, nil
}

func (s *Store) path(version int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s_v%d%s", s.name, version, artifactExt))
}

// parseArtifactFilename splits "scorer_v3.gob.gz" into ("scorer", 3).
// Anything else yields ("", 0).
func parseArtifactFilename(filename string) (name string, version int) {
	base, ok := strings.CutSuffix(filename, artifactExt)
	if !ok {
		return "", 0
	}
	idx := strings.LastIndex(base, "_v")
	if idx <= 0 {
		return "", 0
	}
	version, err := strconv.Atoi(base[idx+2:])
	if err != nil || version < 1 {
		return "", 0
	}
	return base[:idx], version
}

var _ model.Loader = (*Store)(nil)
