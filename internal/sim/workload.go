package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Step is one phase of a thread's scripted behavior: burn CPU for Run ticks,
// or sleep for Sleep ticks. Exactly one of the two must be positive.
type Step struct {
	Run   int64 `yaml:"run,omitempty"`
	Sleep int64 `yaml:"sleep,omitempty"`
}

// ThreadSpec describes one workload thread.
type ThreadSpec struct {
	ID       int    `yaml:"id"`
	Name     string `yaml:"name"`
	Priority int    `yaml:"priority"`
	Steps    []Step `yaml:"steps"`
}

// Workload is a reproducible scheduling scenario.
type Workload struct {
	Name string `yaml:"name"`
	// Quantum overrides the kernel's default time slice when positive.
	Quantum int64        `yaml:"quantum,omitempty"`
	Threads []ThreadSpec `yaml:"threads"`
}

// LoadWorkload reads and validates a workload YAML file.
func LoadWorkload(path string) (*Workload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workload: %w", err)
	}
	w, err := ParseWorkload(data)
	if err != nil {
		return nil, fmt.Errorf("workload %s: %w", path, err)
	}
	return w, nil
}

// ParseWorkload parses and validates workload YAML.
func ParseWorkload(data []byte) (*Workload, error) {
	var w Workload
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &w, nil
}

// Validate checks the workload for structural errors.
func (w *Workload) Validate() error {
	if len(w.Threads) == 0 {
		return fmt.Errorf("workload has no threads")
	}
	if w.Quantum < 0 {
		return fmt.Errorf("quantum must not be negative, got %d", w.Quantum)
	}

	seen := make(map[int]bool, len(w.Threads))
	for i, t := range w.Threads {
		if t.ID <= 0 {
			// ID 0 belongs to the boot thread.
			return fmt.Errorf("thread %d: id must be positive, got %d", i, t.ID)
		}
		if seen[t.ID] {
			return fmt.Errorf("thread %d: duplicate id %d", i, t.ID)
		}
		seen[t.ID] = true
		if t.Name == "" {
			return fmt.Errorf("thread %d: name is required", i)
		}
		if t.Priority < 0 {
			return fmt.Errorf("thread %q: priority must not be negative, got %d", t.Name, t.Priority)
		}
		if len(t.Steps) == 0 {
			return fmt.Errorf("thread %q: at least one step is required", t.Name)
		}
		for j, st := range t.Steps {
			runSet := st.Run > 0
			sleepSet := st.Sleep > 0
			if runSet == sleepSet {
				return fmt.Errorf("thread %q step %d: exactly one of run or sleep must be positive", t.Name, j)
			}
		}
	}
	return nil
}
