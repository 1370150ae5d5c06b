package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	units "github.com/docker/go-units"

	"github.com/zrax/moulars/internal/moulerr"
)

// Manager is the File channel's single entry point into the manifest
// engine (spec.md §4.G): it owns the build state and answers build-id
// checks, manifest requests, and download path resolution.
type Manager struct {
	dataRoot string
	buildID  uint32
	cache    *Cache
	builder  *Builder

	mu   sync.RWMutex
	byFlavor map[Flavor]map[Category]*Manifest
}

// NewManager opens the gzip blob cache under cacheDir and constructs an
// (initially empty) Manager; call Rebuild before serving requests.
func NewManager(dataRoot, cacheDir string, cacheEntries int, buildID uint32) (*Manager, error) {
	cache, err := NewCache(cacheDir, cacheEntries)
	if err != nil {
		return nil, err
	}
	return &Manager{
		dataRoot: dataRoot,
		buildID:  buildID,
		cache:    cache,
		builder:  NewBuilder(dataRoot, cache),
		byFlavor: make(map[Flavor]map[Category]*Manifest),
	}, nil
}

// Rebuild rescans the data root and rebuilds every flavor's manifests
// (spec.md §4.G "Build algorithm"). Safe to call periodically or on an
// operator-triggered refresh; it does not block ManifestBytes/Open
// callers for longer than the scan itself takes, since the previous
// built set stays live under the read lock until the new one is
// installed.
func (m *Manager) Rebuild() error {
	if err := m.builder.Scan(); err != nil {
		return err
	}
	built := make(map[Flavor]map[Category]*Manifest, len(AllFlavors))
	for _, flavor := range AllFlavors {
		built[flavor] = m.builder.Build(flavor)
	}
	m.mu.Lock()
	m.byFlavor = built
	m.mu.Unlock()

	log.Infow("manifest rebuild complete",
		"flavors", len(built), "total_download_size", units.BytesSize(float64(m.builder.TotalDownloadBytes())))
	return nil
}

// CheckBuildID reports whether clientBuildID matches the configured
// build id, or the server is configured to accept any build (buildID
// == 0, e.g. a development server) (spec.md §4.D "File (20): build id
// check").
func (m *Manager) CheckBuildID(clientBuildID uint32) bool {
	return m.buildID == 0 || m.buildID == clientBuildID
}

// BuildID returns the server's configured build id, as published in
// BuildIdReply/BuildIdUpdate.
func (m *Manager) BuildID() uint32 {
	return m.buildID
}

// ManifestBytes encodes the requested (flavor, manifestName) manifest
// (spec.md §4.D "manifest request (by manifest name + build id)").
// manifestName is one of "dat", "sdl", "avi", "sfx", or "All".
func (m *Manager) ManifestBytes(flavor Flavor, manifestName string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cats, ok := m.byFlavor[flavor]
	if !ok {
		return nil, moulerr.New(moulerr.NotFound, "manifest.ManifestBytes: unknown flavor", nil)
	}
	mf, ok := cats[Category(manifestName)]
	if !ok {
		return nil, moulerr.New(moulerr.NotFound, "manifest.ManifestBytes: unknown manifest", nil)
	}
	return mf.Encode(), nil
}

// OpenFileDownload resolves clientPath (as published in a manifest) to
// its on-disk location and opens it for chunked download (spec.md
// §4.G "Download").
func (m *Manager) OpenFileDownload(clientPath string, onTimeout func()) (*Download, error) {
	e, ok := m.builder.Entry(clientPath)
	if !ok || e.IsDeleted() {
		return nil, moulerr.New(moulerr.NotFound, "manifest.OpenFileDownload", nil)
	}

	var abs string
	if e.IsCompressed() {
		abs = m.cache.BlobPath(e.DownloadHash)
	} else {
		abs = filepath.Join(m.dataRoot, filepath.FromSlash(strings.ReplaceAll(e.DownloadPath, "\\", "/")))
	}
	return OpenDownload(abs, onTimeout)
}

// secureFileListDirs whitelists the (directory, extension) pairs the
// Auth channel's patcher secure file list/download may serve (SPEC_FULL.md
// §4.D "secure data send"), grounded on original_source/src/auth_srv/
// server.rs's check_file_request: only ("Python", "pak") and ("SDL",
// "sdl") are accepted, every other pair is a Protocol error.
var secureFileListDirs = map[string]string{
	"Python": "pak",
	"SDL":    "sdl",
}

// CheckSecureFileRequest reports whether (directory, ext) is one of the
// whitelisted secure file pairs.
func CheckSecureFileRequest(directory, ext string) bool {
	want, ok := secureFileListDirs[directory]
	return ok && strings.EqualFold(want, strings.TrimPrefix(ext, "."))
}

// SecureFileList renders the single-record manifest-format listing for
// a whitelisted secure (directory, ext) pair: the built SDL category
// manifest for ("SDL", "sdl"), or the compiled Python.pak's own record
// for ("Python", "pak"). flavor is arbitrary for SDL, since SDL sources
// never live under a flavor/arch-marked directory and so build
// identically for every flavor.
func (m *Manager) SecureFileList(directory, ext string) ([]byte, error) {
	if !CheckSecureFileRequest(directory, ext) {
		return nil, moulerr.New(moulerr.Protocol, "manifest.SecureFileList: not a secure directory/ext pair", nil)
	}
	if directory == "SDL" {
		return m.ManifestBytes(FlavorWindowsIA32Internal, string(CategorySDL))
	}
	return m.pythonPakListing()
}

func (m *Manager) pythonPakListing() ([]byte, error) {
	abs := filepath.Join(m.dataRoot, "Python.pak")
	info, err := os.Stat(abs)
	if err != nil {
		return nil, moulerr.New(moulerr.NotFound, "manifest.pythonPakListing: Python.pak not built", err)
	}
	hash, err := sha1File(abs)
	if err != nil {
		return nil, err
	}
	mf := &Manifest{Entries: []*Entry{{
		ClientPath:   "Python.pak",
		DownloadPath: "Python.pak",
		SourceHash:   hash,
		DownloadHash: hash,
		SourceSize:   uint32(info.Size()),
		DownloadSize: uint32(info.Size()),
	}}}
	return mf.Encode(), nil
}

// CompilePythonPak runs the optional .py -> .pak build step (spec.md
// §4.G, §9 design note). A no-op when interpreterPath is empty.
func (m *Manager) CompilePythonPak(interpreterPath string) error {
	return CompilePak(interpreterPath, m.dataRoot, filepath.Join(m.dataRoot, "Python.pak"))
}
