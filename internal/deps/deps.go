package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement is an external executable ytanalyzer shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	// Optional requirements are reported but never block a run.
	Optional bool
}

// Status is the outcome of resolving one Requirement on PATH.
type Status struct {
	Requirement
	// Path is the resolved executable when Available.
	Path      string
	Available bool
	Detail    string
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// Check resolves req.Command.
func Check(req Requirement) Status {
	req.Command = strings.TrimSpace(req.Command)
	req.Description = strings.TrimSpace(req.Description)
	status := Status{Requirement: req}
	if req.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	path, err := lookPath(req.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", req.Command)
		return status
	}
	status.Path = path
	status.Available = true
	return status
}

// CheckBinaries resolves every requirement, preserving order.
func CheckBinaries(requirements []Requirement) []Status {
	statuses := make([]Status, len(requirements))
	for i, req := range requirements {
		statuses[i] = Check(req)
	}
	return statuses
}

// RequireAll returns an error naming every required dependency that is
// missing. Optional dependencies never fail.
func RequireAll(requirements []Requirement) error {
	var missing []string
	for _, req := range requirements {
		if req.Optional {
			continue
		}
		if s := Check(req); !s.Available {
			missing = append(missing, s.Name+" ("+s.Detail+")")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing dependencies: %s", strings.Join(missing, ", "))
	}
	return nil
}
