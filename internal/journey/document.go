package journey

import (
	"fmt"
	"strings"

	internal "github.com/ussdlab/journey-console/internal"
	"gopkg.in/yaml.v3"
)

// SchemaVersion tags the document layout versions stored with.
const SchemaVersion = "1.0"

// Step types a journey document may contain.
const (
	StepMenu         = "menu"
	StepInput        = "input"
	StepDisplay      = "display"
	StepConfirmation = "confirmation"
	StepEnd          = "end"
)

var stepTypes = map[string]bool{
	StepMenu:         true,
	StepInput:        true,
	StepDisplay:      true,
	StepConfirmation: true,
	StepEnd:          true,
}

// Document is the YAML flow definition a journey version stores. The console
// validates and stores it; a runtime outside this system executes it.
type Document struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

type Step struct {
	ID         string       `yaml:"id"`
	Type       string       `yaml:"type"`
	Text       string       `yaml:"text,omitempty"`
	Next       string       `yaml:"next,omitempty"`
	Validation string       `yaml:"validation,omitempty"`
	Options    []StepOption `yaml:"options,omitempty"`
}

type StepOption struct {
	Text string `yaml:"text"`
	Next string `yaml:"next"`
}

// ParseDocument decodes and validates a journey document. All structural
// violations are reported together as field errors keyed by a step path.
func ParseDocument(content string) (*Document, error) {
	if strings.TrimSpace(content) == "" {
		return nil, internal.NewValidationFieldError("content", "journey document is required", internal.ErrCodeInvalidDocument)
	}

	var doc Document
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		return nil, internal.NewValidationFieldError("content", fmt.Sprintf("invalid YAML: %v", err), internal.ErrCodeInvalidDocument)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Encode renders the document back to canonical YAML.
func (d *Document) Encode() (string, error) {
	out, err := yaml.Marshal(d)
	if err != nil {
		return "", internal.NewInternalError("failed to encode journey document", err)
	}
	return string(out), nil
}

// Validate checks the document structure: required top-level keys, per-type
// step requirements, unique step ids, and that every next reference resolves
// to a declared step.
func (d *Document) Validate() error {
	var violations []internal.ValidationError

	addViolation := func(field, message string) {
		violations = append(violations, internal.ValidationError{
			Field:   field,
			Message: message,
			Code:    string(internal.ErrCodeInvalidDocument),
		})
	}

	if d.Name == "" {
		addViolation("name", "document name is required")
	}
	if d.Description == "" {
		addViolation("description", "document description is required")
	}
	if len(d.Steps) == 0 {
		addViolation("steps", "at least one step is required")
	}

	ids := make(map[string]bool, len(d.Steps))
	for i, step := range d.Steps {
		path := fmt.Sprintf("steps[%d]", i)
		if step.ID == "" {
			addViolation(path+".id", "step id is required")
		} else if ids[step.ID] {
			addViolation(path+".id", fmt.Sprintf("duplicate step id %q", step.ID))
		} else {
			ids[step.ID] = true
		}
		if !stepTypes[step.Type] {
			addViolation(path+".type", fmt.Sprintf("unknown step type %q", step.Type))
			continue
		}

		switch step.Type {
		case StepMenu:
			if len(step.Options) == 0 {
				addViolation(path+".options", "menu step requires options")
			}
			for j, opt := range step.Options {
				if opt.Text == "" {
					addViolation(fmt.Sprintf("%s.options[%d].text", path, j), "option text is required")
				}
				if opt.Next == "" {
					addViolation(fmt.Sprintf("%s.options[%d].next", path, j), "option next is required")
				}
			}
		case StepInput:
			if step.Next == "" {
				addViolation(path+".next", "input step requires next")
			}
		case StepDisplay, StepConfirmation:
			if step.Text == "" {
				addViolation(path+".text", "step text is required")
			}
			if step.Next == "" {
				addViolation(path+".next", "step requires next")
			}
		case StepEnd:
			if step.Text == "" {
				addViolation(path+".text", "end step requires text")
			}
			if step.Next != "" {
				addViolation(path+".next", "end step cannot have next")
			}
		}
	}

	// next references resolve only once every id is known
	for i, step := range d.Steps {
		path := fmt.Sprintf("steps[%d]", i)
		if step.Next != "" && !ids[step.Next] {
			addViolation(path+".next", fmt.Sprintf("next references unknown step %q", step.Next))
		}
		for j, opt := range step.Options {
			if opt.Next != "" && !ids[opt.Next] {
				addViolation(fmt.Sprintf("%s.options[%d].next", path, j), fmt.Sprintf("next references unknown step %q", opt.Next))
			}
		}
	}

	if len(violations) > 0 {
		return internal.NewValidationFieldErrors(violations)
	}
	return nil
}
