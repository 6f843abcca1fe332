package plugin

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/danielolaszy/rh-issue/internal/config"
)

var issueKeyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]+-\d+$`)

// ValidateIssueKey rejects anything that is not an upper-case project key
// followed by a number, e.g. "AAP-123".
func ValidateIssueKey(key string) error {
	if !issueKeyPattern.MatchString(key) {
		return config.Errorf("invalid issue key %q: expected something like PROJ-123", key)
	}
	return nil
}

func validateInt(v string) error {
	if _, err := strconv.Atoi(v); err != nil {
		return config.Errorf("%q is not a whole number", v)
	}
	return nil
}

type positional struct {
	name     string
	help     string
	optional bool
	variadic bool
	choices  []string
	validate func(string) error
}

type flagKind int

const (
	flagString flagKind = iota
	flagStrings
	flagBool
	flagInt
	flagEnum
)

type flagDef struct {
	name    string
	short   string
	help    string
	kind    flagKind
	def     string
	choices []string
}

// ArgSpec is the argument declaration a plugin fills in from Arguments.
type ArgSpec struct {
	command     string
	positionals []positional
	flags       []flagDef
}

func NewArgSpec(command string) *ArgSpec {
	return &ArgSpec{command: command}
}

// Key declares a required issue key positional.
func (s *ArgSpec) Key(name, help string) {
	s.positionals = append(s.positionals, positional{name: name, help: help, validate: ValidateIssueKey})
}

// String declares a required free-form positional.
func (s *ArgSpec) String(name, help string) {
	s.positionals = append(s.positionals, positional{name: name, help: help})
}

// Int declares a required whole-number positional.
func (s *ArgSpec) Int(name, help string) {
	s.positionals = append(s.positionals, positional{name: name, help: help, validate: validateInt})
}

// Enum declares a required positional restricted to choices. Matching is
// case-insensitive; the declared spelling is what the plugin sees.
func (s *ArgSpec) Enum(name, help string, choices ...string) {
	s.positionals = append(s.positionals, positional{name: name, help: help, choices: choices})
}

// Optional declares a trailing positional that may be omitted.
func (s *ArgSpec) Optional(name, help string) {
	s.positionals = append(s.positionals, positional{name: name, help: help, optional: true})
}

// OptionalKey declares a trailing issue key that may be omitted.
func (s *ArgSpec) OptionalKey(name, help string) {
	s.positionals = append(s.positionals, positional{name: name, help: help, optional: true, validate: ValidateIssueKey})
}

// Rest declares a variadic tail collecting the remaining positionals.
func (s *ArgSpec) Rest(name, help string, required bool) {
	s.positionals = append(s.positionals, positional{name: name, help: help, optional: !required, variadic: true})
}

// RestInts is Rest for whole numbers.
func (s *ArgSpec) RestInts(name, help string, required bool) {
	s.positionals = append(s.positionals, positional{
		name: name, help: help, optional: !required, variadic: true, validate: validateInt,
	})
}

func (s *ArgSpec) StringFlag(name, short, def, help string) {
	s.flags = append(s.flags, flagDef{name: name, short: short, help: help, kind: flagString, def: def})
}

// StringsFlag declares a repeatable, comma separated flag.
func (s *ArgSpec) StringsFlag(name, short, help string) {
	s.flags = append(s.flags, flagDef{name: name, short: short, help: help, kind: flagStrings})
}

func (s *ArgSpec) BoolFlag(name, short, help string) {
	s.flags = append(s.flags, flagDef{name: name, short: short, help: help, kind: flagBool, def: "false"})
}

func (s *ArgSpec) IntFlag(name, short string, def int, help string) {
	s.flags = append(s.flags, flagDef{name: name, short: short, help: help, kind: flagInt, def: strconv.Itoa(def)})
}

// EnumFlag declares a flag restricted to choices. An empty def means the
// flag has no value unless given.
func (s *ArgSpec) EnumFlag(name, def, help string, choices ...string) {
	s.flags = append(s.flags, flagDef{name: name, help: help, kind: flagEnum, def: def, choices: choices})
}

// Usage renders the positional part of the usage line, e.g.
// "<issue-key> <value> [user] <text>...".
func (s *ArgSpec) Usage() string {
	parts := []string{s.command}
	for _, p := range s.positionals {
		name := p.name
		if len(p.choices) > 0 {
			name = strings.Join(p.choices, "|")
		}
		if p.variadic {
			name += "..."
		}
		if p.optional {
			parts = append(parts, "["+name+"]")
		} else {
			parts = append(parts, "<"+name+">")
		}
	}
	return strings.Join(parts, " ")
}

// Bind registers the declared flags on fs.
func (s *ArgSpec) Bind(fs *pflag.FlagSet) {
	for _, f := range s.flags {
		switch f.kind {
		case flagString:
			fs.StringP(f.name, f.short, f.def, f.help)
		case flagStrings:
			fs.StringSliceP(f.name, f.short, nil, f.help)
		case flagBool:
			fs.BoolP(f.name, f.short, false, f.help)
		case flagInt:
			n, _ := strconv.Atoi(f.def)
			fs.IntP(f.name, f.short, n, f.help)
		case flagEnum:
			help := fmt.Sprintf("%s (%s)", f.help, strings.Join(f.choices, "|"))
			fs.VarP(&enumValue{value: f.def, choices: f.choices}, f.name, f.short, help)
		}
	}
}

// Resolve validates positionals against the declaration and pairs them with
// the already parsed flags in fs.
func (s *ArgSpec) Resolve(fs *pflag.FlagSet, positionals []string) (*Args, error) {
	args := &Args{
		values: make(map[string]string),
		rest:   make(map[string][]string),
		flags:  fs,
	}

	i := 0
	for _, p := range s.positionals {
		if p.variadic {
			tail := positionals[i:]
			if len(tail) == 0 && !p.optional {
				return nil, config.Errorf("%s: missing <%s>", s.command, p.name)
			}
			for _, v := range tail {
				if _, err := p.check(v); err != nil {
					return nil, err
				}
			}
			args.rest[p.name] = append([]string(nil), tail...)
			i = len(positionals)
			continue
		}

		if i >= len(positionals) {
			if p.optional {
				continue
			}
			return nil, config.Errorf("%s: missing <%s>", s.command, p.name)
		}

		v, err := p.check(positionals[i])
		if err != nil {
			return nil, err
		}
		args.values[p.name] = v
		i++
	}

	if i < len(positionals) {
		return nil, config.Errorf("%s: unexpected argument %q", s.command, positionals[i])
	}
	return args, nil
}

// Parse parses a full argument list, flags included. It is what the command
// line front end does, minus cobra.
func (s *ArgSpec) Parse(argv []string) (*Args, error) {
	fs := pflag.NewFlagSet(s.command, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	s.Bind(fs)
	if err := fs.Parse(argv); err != nil {
		return nil, &config.Error{Reason: s.command, Err: err}
	}
	return s.Resolve(fs, fs.Args())
}

// ParseFor declares p's arguments and parses argv against them.
func ParseFor(p Plugin, argv []string) (*Args, error) {
	spec := NewArgSpec(p.Name())
	p.Arguments(spec)
	return spec.Parse(argv)
}

func (p positional) check(v string) (string, error) {
	if len(p.choices) > 0 {
		c, ok := matchChoice(v, p.choices)
		if !ok {
			return "", config.Errorf("invalid %s %q: must be one of %s", p.name, v, strings.Join(p.choices, ", "))
		}
		v = c
	}
	if p.validate != nil {
		if err := p.validate(v); err != nil {
			return "", err
		}
	}
	return v, nil
}

func matchChoice(v string, choices []string) (string, bool) {
	for _, c := range choices {
		if strings.EqualFold(v, c) {
			return c, true
		}
	}
	return "", false
}

// enumValue is a pflag.Value accepting one of a fixed set of strings.
type enumValue struct {
	value   string
	choices []string
}

func (e *enumValue) String() string { return e.value }

func (e *enumValue) Set(v string) error {
	c, ok := matchChoice(v, e.choices)
	if !ok {
		return fmt.Errorf("must be one of %s", strings.Join(e.choices, ", "))
	}
	e.value = c
	return nil
}

func (e *enumValue) Type() string { return "choice" }

// Args is a parsed and validated command line.
type Args struct {
	values map[string]string
	rest   map[string][]string
	flags  *pflag.FlagSet
}

func (a *Args) lookup(name string) *pflag.Flag {
	if a.flags == nil {
		return nil
	}
	return a.flags.Lookup(name)
}

// String returns a positional or flag value, or "" when absent.
func (a *Args) String(name string) string {
	if v, ok := a.values[name]; ok {
		return v
	}
	if f := a.lookup(name); f != nil {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			return strings.Join(sv.GetSlice(), ",")
		}
		return f.Value.String()
	}
	return ""
}

// Strings returns a variadic positional or a repeatable flag.
func (a *Args) Strings(name string) []string {
	if v, ok := a.rest[name]; ok {
		return v
	}
	if f := a.lookup(name); f != nil {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			return sv.GetSlice()
		}
	}
	return nil
}

// Text joins a variadic positional with spaces.
func (a *Args) Text(name string) string {
	return strings.Join(a.Strings(name), " ")
}

func (a *Args) Bool(name string) bool {
	v, _ := strconv.ParseBool(a.String(name))
	return v
}

// Int returns a whole-number positional or flag; invalid values read as 0.
func (a *Args) Int(name string) int {
	n, _ := strconv.Atoi(a.String(name))
	return n
}

// Ints converts a variadic positional declared with RestInts.
func (a *Args) Ints(name string) []int {
	var out []int
	for _, v := range a.Strings(name) {
		n, err := strconv.Atoi(v)
		if err == nil {
			out = append(out, n)
		}
	}
	return out
}

// Changed reports whether name was given on the command line.
func (a *Args) Changed(name string) bool {
	if _, ok := a.values[name]; ok {
		return true
	}
	if v, ok := a.rest[name]; ok {
		return len(v) > 0
	}
	f := a.lookup(name)
	return f != nil && f.Changed
}
