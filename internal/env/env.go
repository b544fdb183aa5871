package env

import (
	"os"
	"strings"

	"github.com/ekisa-team/scribe/internal/envvar"
)

// Environment identifies the runtime environment the process runs in.
type Environment string

const (
	// Development is the environment used on developer machines.
	Development Environment = "development"

	// Production is the environment used on deployed instances.
	Production Environment = "production"
)

// FromEnv resolves the runtime environment from SCRIBE_ENV.
// Anything that is not recognizably production resolves to development.
func FromEnv() Environment {
	switch strings.ToLower(os.Getenv(envvar.ScribeEnv)) {
	case "production", "prod":
		return Production
	default:
		return Development
	}
}

// IsProduction reports whether e is the production environment.
func (e Environment) IsProduction() bool {
	return e == Production
}
