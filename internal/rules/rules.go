// Package rules holds the business judgments the planner treats as
// configuration rather than constants: which platforms are critical
// (preferred as dependency anchors) and which are complex (slower and
// riskier to migrate).
//
// Rules load from a CUE file validated against an embedded schema:
//
//	critical_platforms: ["google", "meta", "tiktok"]
//	complex_platforms:  ["segment", "tealium", "klaviyo"]
package rules

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// Rules is the injectable platform configuration.
type Rules struct {
	// CriticalPlatforms is a priority list; earlier entries win.
	CriticalPlatforms []string `json:"critical_platforms"`
	ComplexPlatforms  []string `json:"complex_platforms"`
}

const schema = `
#Rules: {
	critical_platforms: [...string] | *["google", "meta", "tiktok"]
	complex_platforms:  [...string] | *["segment", "tealium", "klaviyo"]
}
`

// Default returns the built-in rules.
func Default() Rules {
	return Rules{
		CriticalPlatforms: []string{"google", "meta", "tiktok"},
		ComplexPlatforms:  []string{"segment", "tealium", "klaviyo"},
	}
}

// IsCritical reports whether platform is in the critical list.
func (r Rules) IsCritical(platform string) bool {
	return platform != "" && slices.Contains(r.CriticalPlatforms, strings.ToLower(platform))
}

// IsComplex reports whether platform is in the complex list.
func (r Rules) IsComplex(platform string) bool {
	return platform != "" && slices.Contains(r.ComplexPlatforms, strings.ToLower(platform))
}

// LoadFile reads rules from a CUE file. Fields omitted in the file keep
// their defaults.
func LoadFile(path string) (Rules, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules %s: %w", path, err)
	}
	r, err := Parse(src, path)
	if err != nil {
		return Rules{}, err
	}
	return r, nil
}

// Parse compiles CUE source, unifies it with the rules schema and decodes
// the result. filename is only used in error messages.
func Parse(src []byte, filename string) (Rules, error) {
	ctx := cuecontext.New()

	def := ctx.CompileString(schema).LookupPath(cue.ParsePath("#Rules"))
	if err := def.Err(); err != nil {
		return Rules{}, fmt.Errorf("compile rules schema: %w", err)
	}

	data := ctx.CompileBytes(src, cue.Filename(filename))
	if err := data.Err(); err != nil {
		return Rules{}, fmt.Errorf("compile %s: %w", filename, err)
	}

	value := def.Unify(data)
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return Rules{}, fmt.Errorf("validate %s: %w", filename, err)
	}

	var r Rules
	if err := value.Decode(&r); err != nil {
		return Rules{}, fmt.Errorf("decode %s: %w", filename, err)
	}
	r.CriticalPlatforms = lowerAll(r.CriticalPlatforms)
	r.ComplexPlatforms = lowerAll(r.ComplexPlatforms)
	return r, nil
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
