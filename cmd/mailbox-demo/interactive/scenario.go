package interactive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted demo session loaded from YAML:
//
//	name: title-updates
//	queue: true
//	steps:
//	  - run: new profile
//	  - run: sub profile title new|old
//	  - run: set profile title Hello
//	    expect: ["profile.title SETTING new=Hello"]
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	// Queue installs a serial delivery queue before the first step.
	Queue bool   `yaml:"queue,omitempty"`
	Steps []Step `yaml:"steps"`
}

// Step is one command and the output it must produce.
type Step struct {
	Run string `yaml:"run"`

	// Expect lists substrings that must appear in the step output,
	// including messages delivered by the queue.
	Expect []string `yaml:"expect,omitempty"`

	// Absent lists substrings that must not appear in the step output.
	Absent []string `yaml:"absent,omitempty"`

	// Error is a substring of the error the command must fail with.
	Error string `yaml:"error,omitempty"`
}

// ParseScenario decodes and validates a scenario.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, errors.New("scenario has no steps")
	}
	for i, step := range sc.Steps {
		if strings.TrimSpace(step.Run) == "" {
			return nil, fmt.Errorf("step %d: run is required", i+1)
		}
	}
	return &sc, nil
}

// LoadScenario reads a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(data)
}

// RunScenario executes sc against s and checks every step's expectations.
// It stops at the first failing step or at quit.
func RunScenario(ctx context.Context, s *Session, sc *Scenario) error {
	if sc.Queue {
		if _, err := s.Execute("queue on"); err != nil {
			return err
		}
	}
	s.out.take()

	for i, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}

		quit, cmdErr := s.Execute(step.Run)
		if err := s.Flush(ctx); err != nil {
			return fmt.Errorf("step %d (%s): flush: %w", i+1, step.Run, err)
		}
		got := s.out.take()

		if err := checkStep(step, got, cmdErr); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Run, err)
		}
		if quit {
			return nil
		}
	}
	return nil
}

func checkStep(step Step, got string, cmdErr error) error {
	switch {
	case step.Error == "" && cmdErr != nil:
		return cmdErr
	case step.Error != "" && cmdErr == nil:
		return fmt.Errorf("expected error containing %q", step.Error)
	case step.Error != "" && !strings.Contains(cmdErr.Error(), step.Error):
		return fmt.Errorf("expected error containing %q, got %q", step.Error, cmdErr)
	}

	for _, want := range step.Expect {
		if !strings.Contains(got, want) {
			return fmt.Errorf("expected output containing %q, got %q", want, got)
		}
	}
	for _, unwanted := range step.Absent {
		if strings.Contains(got, unwanted) {
			return fmt.Errorf("unexpected output %q in %q", unwanted, got)
		}
	}
	return nil
}
