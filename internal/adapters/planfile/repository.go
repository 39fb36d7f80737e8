package planfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gantry-org/gantry-cli/internal/domain"
	"github.com/gantry-org/gantry-cli/internal/domain/config"
	"github.com/gantry-org/gantry-cli/internal/usecase"
)

// Repository loads deployment plans from YAML files. Parsing is strict:
// a field the plan schema does not know fails the load, because a typo
// in a plan silently dropping an argument is worse than an error.
type Repository struct {
	cfg *config.RuntimeConfig
}

// NewRepository creates a plan repository.
func NewRepository(cfg *config.RuntimeConfig) *Repository {
	return &Repository{cfg: cfg}
}

// Load reads and parses the plan at path. An empty path falls back to
// the configured default plan. Bare names resolve inside the plans
// directory, with .yaml/.yml appended as needed.
func (r *Repository) Load(ctx context.Context, path string) (*domain.Plan, error) {
	resolved, err := r.resolve(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to open plan %s: %w", resolved, err)
	}
	defer f.Close()

	var plan domain.Plan
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&plan); err != nil {
		return nil, fmt.Errorf("failed to parse plan %s: %w", resolved, err)
	}

	return &plan, nil
}

func (r *Repository) resolve(path string) (string, error) {
	if path == "" {
		path = r.cfg.Plan
	}
	if path == "" {
		return "", fmt.Errorf("no plan specified; pass a plan file or set one with 'gantry config set plan <path>'")
	}

	if filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("plan %s: %w", path, domain.ErrNotFound)
		}
		return path, nil
	}

	plansDir := r.cfg.Gantry.Plans
	if !filepath.IsAbs(plansDir) {
		plansDir = filepath.Join(r.cfg.ProjectRoot, plansDir)
	}

	candidates := []string{
		filepath.Join(r.cfg.ProjectRoot, path),
		filepath.Join(plansDir, path),
		filepath.Join(plansDir, path+".yaml"),
		filepath.Join(plansDir, path+".yml"),
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("plan %s: %w", path, domain.ErrNotFound)
}

// Ensure Repository implements PlanRepository
var _ usecase.PlanRepository = (*Repository)(nil)
