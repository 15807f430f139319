// Package overrides selects machine specific variants of dotfiles.
//
// A file under the overrides directory is named after the condition that
// selects it:
//
//	hostname.<value>@<name>   selected on the host named <value>
//	host.<value>@<name>       alias of hostname
//	os.<value>@<name>         selected when the OS identifier is <value>
//	default@<name>            selected when nothing more specific matches
//	<name>                    same as default@<name>
//
// Variants sharing a directory and logical name compete; the most specific
// matching variant wins.
package overrides

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/arthur-debert/dotfiles/pkg/errors"
	"github.com/arthur-debert/dotfiles/pkg/machine"
)

// Condition is the tag of an Override. Higher values take precedence.
type Condition int

const (
	ConditionDefault Condition = iota
	ConditionOS
	ConditionHostname
)

func (c Condition) String() string {
	switch c {
	case ConditionDefault:
		return "default"
	case ConditionOS:
		return "os"
	case ConditionHostname:
		return "hostname"
	default:
		return fmt.Sprintf("condition(%d)", int(c))
	}
}

// Override is a parsed override filename
type Override struct {
	Condition Condition
	// Value is compared against the machine; empty for defaults
	Value string
	// Name is the logical file name the variant is linked as
	Name string
}

// Default builds the variant linked when nothing more specific matches
func Default(name string) Override {
	return Override{Condition: ConditionDefault, Name: name}
}

// Hostname builds a variant selected on the host named value
func Hostname(value, name string) Override {
	return Override{Condition: ConditionHostname, Value: value, Name: name}
}

// OS builds a variant selected on the OS identified by value
func OS(value, name string) Override {
	return Override{Condition: ConditionOS, Value: value, Name: name}
}

var (
	conditionalPattern = regexp.MustCompile(`^([A-Za-z]+)(\.[^@]*)?@(.+)$`)
	defaultPattern     = regexp.MustCompile(`(?i)^default@(.+)$`)
)

var conditionNames = map[string]Condition{
	"hostname": ConditionHostname,
	"host":     ConditionHostname,
	"os":       ConditionOS,
}

// Parse reads the condition encoded in a single filename (not a path)
func Parse(filename string) (Override, error) {
	if filename == "" {
		return Override{}, errors.New(errors.ErrInvalidOverride, "empty override filename")
	}

	if m := defaultPattern.FindStringSubmatch(filename); m != nil {
		return Default(m[1]), nil
	}

	if m := conditionalPattern.FindStringSubmatch(filename); m != nil {
		cond, known := conditionNames[strings.ToLower(m[1])]
		dotted := m[2] != ""
		switch {
		case !known && !dotted:
			return Default(filename), nil
		case !known:
			return Override{}, errors.Newf(errors.ErrInvalidOverride,
				"unknown override condition %q in %s", m[1], filename).
				WithDetail("file", filename)
		}

		// Values run up to the first @ so dotted hostnames like
		// MacBook-Pro.local parse whole.
		value := strings.TrimPrefix(m[2], ".")
		if value == "" || strings.ContainsAny(value, `/\`) {
			return Override{}, errors.Newf(errors.ErrInvalidOverride,
				"missing or malformed %s value in %s", m[1], filename).
				WithDetail("file", filename)
		}
		return Override{Condition: cond, Value: value, Name: m[3]}, nil
	}

	return Default(filename), nil
}

// Matches reports whether the variant applies to m. Defaults always match.
func (o Override) Matches(m machine.Machine) bool {
	switch o.Condition {
	case ConditionHostname:
		return m.MatchesHostname(o.Value)
	case ConditionOS:
		return m.MatchesOS(o.Value)
	default:
		return true
	}
}

// String renders the override back in filename form
func (o Override) String() string {
	if o.Condition == ConditionDefault {
		return o.Name
	}
	return fmt.Sprintf("%s.%s@%s", o.Condition, o.Value, o.Name)
}
