package artifacts

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gantry-org/gantry-cli/internal/domain"
	"github.com/gantry-org/gantry-cli/internal/domain/config"
	"github.com/gantry-org/gantry-cli/internal/domain/models"
	"github.com/gantry-org/gantry-cli/internal/usecase"
)

// Repository reads build artifacts from a forge-style output directory:
// one <File>.sol directory per source file, one <Name>.json per contract.
type Repository struct {
	projectRoot string
	root        string

	mu    sync.Mutex
	cache map[string]*models.Artifact
}

// NewRepository creates an artifact repository over the configured
// artifacts directory.
func NewRepository(cfg *config.RuntimeConfig) *Repository {
	root := cfg.Gantry.Artifacts
	if !filepath.IsAbs(root) {
		root = filepath.Join(cfg.ProjectRoot, root)
	}
	return &Repository{
		projectRoot: cfg.ProjectRoot,
		root:        root,
		cache:       make(map[string]*models.Artifact),
	}
}

// Get resolves an artifact reference. Accepted forms: a bare contract
// name, File.sol:Name, path/File.sol:Name, or a direct path to the
// artifact JSON.
func (r *Repository) Get(ctx context.Context, ref string) (*models.Artifact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if artifact, ok := r.cache[ref]; ok {
		return artifact, nil
	}

	path, name, err := r.locate(ref)
	if err != nil {
		return nil, err
	}

	artifact, err := r.load(path, name)
	if err != nil {
		return nil, err
	}

	if artifact.HasLinkReferences() {
		return nil, fmt.Errorf("artifact %s has unlinked library references; link libraries at build time", name)
	}

	r.cache[ref] = artifact
	return artifact, nil
}

// locate maps a reference onto an artifact file path.
func (r *Repository) locate(ref string) (path string, name string, err error) {
	// Direct path to the artifact JSON.
	if strings.HasSuffix(ref, ".json") {
		path = ref
		if !filepath.IsAbs(path) {
			path = filepath.Join(r.projectRoot, path)
		}
		name = strings.TrimSuffix(filepath.Base(ref), ".json")
		if _, err := os.Stat(path); err != nil {
			return "", "", fmt.Errorf("artifact %s: %w", ref, domain.ErrNotFound)
		}
		return path, name, nil
	}

	// File.sol:Name, with or without a leading source path.
	if file, contract, found := strings.Cut(ref, ":"); found {
		path = filepath.Join(r.root, filepath.Base(file), contract+".json")
		if _, err := os.Stat(path); err != nil {
			return "", "", fmt.Errorf("artifact %s: %w", ref, domain.ErrNotFound)
		}
		return path, contract, nil
	}

	// Bare name. The usual layout puts Name inside Name.sol; fall back
	// to searching every source directory.
	path = filepath.Join(r.root, ref+".sol", ref+".json")
	if _, err := os.Stat(path); err == nil {
		return path, ref, nil
	}

	matches, err := filepath.Glob(filepath.Join(r.root, "*.sol", ref+".json"))
	if err != nil {
		return "", "", err
	}
	switch len(matches) {
	case 0:
		return "", "", fmt.Errorf("artifact %s: %w", ref, domain.ErrNotFound)
	case 1:
		return matches[0], ref, nil
	default:
		sort.Strings(matches)
		var sources []string
		for _, m := range matches {
			sources = append(sources, filepath.Base(filepath.Dir(m)))
		}
		return "", "", fmt.Errorf("artifact %s is ambiguous, found in %s; use File.sol:%s",
			ref, strings.Join(sources, ", "), ref)
	}
}

// load reads and parses one artifact file.
func (r *Repository) load(path, name string) (*models.Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", path, err)
	}

	var artifact models.Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse artifact %s: %w", path, err)
	}
	artifact.Name = name
	artifact.Path = path

	if len(artifact.ABI) == 0 {
		return nil, fmt.Errorf("artifact %s has no ABI", name)
	}

	return &artifact, nil
}

// Ensure Repository implements ArtifactRepository
var _ usecase.ArtifactRepository = (*Repository)(nil)
