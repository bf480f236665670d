package config

import "fmt"

// LoadError reports a problem reading or parsing config.yaml, the optional
// runtime-defaults file (spec.md §4.H). Adapted from the teacher's
// ConfigurationError: kept as a struct error (so callers can inspect Path
// and unwrap Err) rather than a bare fmt.Errorf, but trimmed to the two
// fields this domain actually needs — there are no source/category
// dimensions here, since CFTI has exactly one config file, not a tree of
// serviceclass/workflow/capability YAML.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("config: %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// UnitLoadError reports a problem loading one unit file (jig, test,
// scenario, trigger, logger, interface), distinct from LoadError because it
// additionally carries which kind of unit and which id was being loaded —
// the detail every "Failed" Outcome in package units attaches, which
// testset.Load logs as a warning.
type UnitLoadError struct {
	Kind string
	ID   string
	Path string
	Err  error
}

func (e *UnitLoadError) Error() string {
	return fmt.Sprintf("%s %q (%s): %v", e.Kind, e.ID, e.Path, e.Err)
}

func (e *UnitLoadError) Unwrap() error { return e.Err }
