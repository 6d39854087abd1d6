package domain

import (
	"fmt"
	"strings"
)

// RiskLevel grades how dangerous a scenario is.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
	RiskCritical
)

var riskNames = []string{"Low", "Medium", "High", "Critical"}

func (r RiskLevel) String() string { return categoryName(riskNames, int(r)) }

func (r RiskLevel) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *RiskLevel) UnmarshalText(b []byte) error {
	v, err := parseCategory("risk level", riskNames, string(b))
	if err != nil {
		return err
	}
	*r = RiskLevel(v)
	return nil
}

// Priority orders questions within a scenario.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

var priorityNames = []string{"Low", "Medium", "High", "Critical"}

func (p Priority) String() string { return categoryName(priorityNames, int(p)) }

func (p Priority) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Priority) UnmarshalText(b []byte) error {
	v, err := parseCategory("priority", priorityNames, string(b))
	if err != nil {
		return err
	}
	*p = Priority(v)
	return nil
}

// IncidentStatus is the lifecycle state of an incident run.
type IncidentStatus int

const (
	StatusNotStarted IncidentStatus = iota
	StatusInProgress
	StatusCompleted
)

var statusNames = []string{"NotStarted", "InProgress", "Completed"}

func (s IncidentStatus) String() string { return categoryName(statusNames, int(s)) }

func (s IncidentStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *IncidentStatus) UnmarshalText(b []byte) error {
	v, err := parseCategory("incident status", statusNames, string(b))
	if err != nil {
		return err
	}
	*s = IncidentStatus(v)
	return nil
}

// ClearanceLevel is the security clearance attached to a role.
type ClearanceLevel int

const (
	ClearancePublic ClearanceLevel = iota
	ClearanceInternal
	ClearanceConfidential
	ClearanceSecret
)

var clearanceNames = []string{"Public", "Internal", "Confidential", "Secret"}

func (c ClearanceLevel) String() string { return categoryName(clearanceNames, int(c)) }

func (c ClearanceLevel) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *ClearanceLevel) UnmarshalText(b []byte) error {
	v, err := parseCategory("clearance level", clearanceNames, string(b))
	if err != nil {
		return err
	}
	*c = ClearanceLevel(v)
	return nil
}

func categoryName(names []string, v int) string {
	if v < 0 || v >= len(names) {
		return fmt.Sprintf("Unknown(%d)", v)
	}
	return names[v]
}

// parseCategory accepts a name (case-insensitive, spaces/underscores ignored)
// or the numeric ordinal.
func parseCategory(kind string, names []string, raw string) (int, error) {
	norm := strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.TrimSpace(raw))
	for i, name := range names {
		if strings.EqualFold(norm, name) {
			return i, nil
		}
	}
	var n int
	if _, err := fmt.Sscanf(norm, "%d", &n); err == nil && n >= 0 && n < len(names) && fmt.Sprint(n) == norm {
		return n, nil
	}
	return 0, fmt.Errorf("unknown %s %q", kind, raw)
}
