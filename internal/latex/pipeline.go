package latex

import (
	"fmt"
	"strings"
)

// Step names one text transform.
type Step string

const (
	StepFormat Step = "format"
	StepClean  Step = "clean"
	StepAlign  Step = "align"
)

// Steps lists the known steps in their canonical order.
func Steps() []Step {
	return []Step{StepFormat, StepClean, StepAlign}
}

// Pipeline is an ordered list of transforms chosen by the caller.
type Pipeline []Step

// DefaultPipeline formats only.
func DefaultPipeline() Pipeline {
	return Pipeline{StepFormat}
}

// ParseStep resolves a step name, case-insensitively.
func ParseStep(s string) (Step, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "format", "fmt":
		return StepFormat, nil
	case "clean", "whitespace":
		return StepClean, nil
	case "align":
		return StepAlign, nil
	default:
		return "", fmt.Errorf("unknown pipeline step %q (expected format, clean or align)", s)
	}
}

// ParsePipeline parses a comma separated list such as "format,clean,align".
func ParsePipeline(spec string) (Pipeline, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, fmt.Errorf("empty pipeline")
	}
	return NewPipeline(strings.Split(spec, ","))
}

// NewPipeline builds a pipeline from already split step names.
func NewPipeline(names []string) (Pipeline, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("empty pipeline")
	}
	p := make(Pipeline, 0, len(names))
	for _, name := range names {
		step, err := ParseStep(name)
		if err != nil {
			return nil, err
		}
		p = append(p, step)
	}
	return p, nil
}

// Apply runs the steps in order.
func (p Pipeline) Apply(text string, opts FormatOptions) string {
	for _, step := range p {
		text = Transform(step, text, opts)
	}
	return text
}

func (p Pipeline) String() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = string(s)
	}
	return strings.Join(parts, ",")
}

// Transform applies a single step. Unknown steps leave text untouched.
func Transform(step Step, text string, opts FormatOptions) string {
	switch step {
	case StepFormat:
		return FormatWith(text, opts)
	case StepClean:
		return CleanWhitespace(text)
	case StepAlign:
		return AlignEnvironments(text)
	default:
		return text
	}
}
