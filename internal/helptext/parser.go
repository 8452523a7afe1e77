// Package helptext extracts command metadata from the CLI's human-readable
// help output. It is the fallback path when the machine-readable listing is
// unavailable, and is strictly best-effort: unfamiliar formatting degrades to
// partial results, never to a parse abort.
package helptext

import (
	"regexp"
	"strings"

	"github.com/forcemcp/forcemcp/internal/command"
)

// Help holds the content extracted from one command's help output.
type Help struct {
	Description string
	Examples    []string
	Flags       []command.Flag

	// Misses are lines that resembled flag definitions but matched no rule.
	Misses []string
}

// requiredMarkers flag a description as belonging to a mandatory flag.
// Matched case-insensitively and stripped from the stored description.
var requiredMarkers = []string{
	"(required)",
	"[required]",
	"required.",
}

var (
	// reSections splits help output on blank-line boundaries.
	reSections = regexp.MustCompile(`\n\s*\n`)

	// reEnumPrefix strips leading enumeration digits from example lines
	// ("1. $ sf ..." or "2) sf ...").
	reEnumPrefix = regexp.MustCompile(`^\d+[.)]\s*`)

	// Flag-line rules, in decreasing strictness. Each line tries the rules
	// in order and falls through to a recorded miss when none apply.

	// reFlagFull: optional short form, long form, optional placeholder,
	// inline description ("-o, --target-org <value>  Username...").
	reFlagFull = regexp.MustCompile(`^\s*(?:-(\w),\s*)?--([A-Za-z0-9][\w-]*)(?:[= ]<([^>]+)>)?\s{2,}(\S.*)$`)

	// reFlagBare: a flag definition alone on its line, description expected
	// on the following line.
	reFlagBare = regexp.MustCompile(`^\s*(?:-(\w),\s*)?--([A-Za-z0-9][\w-]*)(?:[= ]<([^>]+)>)?\s*$`)

	// reFlagShort: short form only, no long name ("-v  Verbose output.").
	reFlagShort = regexp.MustCompile(`^\s*-(\w)(?:\s<([^>]+)>)?\s{2,}(\S.*)$`)
)

// Parser turns help text into structured command metadata.
// The zero value is not usable; use NewParser.
type Parser struct {
	// tool is the CLI's own name, used to recognize example lines.
	tool string
}

// NewParser creates a parser that recognizes example invocations of the
// named tool.
func NewParser(tool string) *Parser {
	return &Parser{tool: strings.TrimSpace(tool)}
}

// Parse extracts description, examples, and flags from raw help output.
func (p *Parser) Parse(text string) Help {
	var h Help

	sections := reSections.Split(strings.ReplaceAll(text, "\r\n", "\n"), -1)
	if len(sections) == 0 {
		return h
	}

	h.Description = p.parseDescription(sections)

	for _, section := range sections {
		header := sectionHeader(section)
		switch {
		case isExamplesHeader(header):
			h.Examples = append(h.Examples, p.parseExamples(section)...)
		case isFlagsHeader(header):
			flags, misses := p.parseFlags(section)
			h.Flags = append(h.Flags, flags...)
			h.Misses = append(h.Misses, misses...)
		}
	}

	return h
}

// parseDescription treats the first section as the description, falling back
// to an explicit DESCRIPTION section when the first one is too short to be
// useful or is really a usage line.
func (p *Parser) parseDescription(sections []string) string {
	first := stripHeader(sections[0], "DESCRIPTION")

	if len(first) >= 10 && !looksLikeUsage(first) {
		return first
	}

	for _, section := range sections[1:] {
		if strings.HasPrefix(strings.ToUpper(sectionHeader(section)), "DESCRIPTION") {
			if desc := stripHeader(section, "DESCRIPTION"); desc != "" {
				return desc
			}
		}
	}

	return first
}

// parseExamples collects invocation lines: those starting with a shell
// prompt marker or the tool's own name, after stripping enumeration digits.
func (p *Parser) parseExamples(section string) []string {
	var examples []string

	for _, line := range strings.Split(section, "\n")[1:] {
		line = reEnumPrefix.ReplaceAllString(strings.TrimSpace(line), "")

		switch {
		case strings.HasPrefix(line, "$"):
			line = strings.TrimSpace(strings.TrimPrefix(line, "$"))
		case p.tool != "" && (line == p.tool || strings.HasPrefix(line, p.tool+" ")):
			// Keep as-is.
		default:
			continue
		}

		if line != "" {
			examples = append(examples, line)
		}
	}

	return examples
}

// parseFlags scans a flags section line-by-line (and line-pairs for wrapped
// descriptions) against the flag-line rules in decreasing strictness.
func (p *Parser) parseFlags(section string) ([]command.Flag, []string) {
	var flags []command.Flag
	var misses []string

	lines := strings.Split(section, "\n")
	for i := 1; i < len(lines); i++ {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			continue
		}

		if m := reFlagFull.FindStringSubmatch(line); m != nil {
			flags = append(flags, newFlag(m[2], m[1], m[3], m[4]))
			continue
		}

		if m := reFlagBare.FindStringSubmatch(line); m != nil {
			description := ""
			if i+1 < len(lines) && indented(lines[i+1], line) {
				description = strings.TrimSpace(lines[i+1])
				i++
			}
			flags = append(flags, newFlag(m[2], m[1], m[3], description))
			continue
		}

		if m := reFlagShort.FindStringSubmatch(line); m != nil {
			flags = append(flags, newFlag(m[1], m[1], m[2], m[3]))
			continue
		}

		if looksLikeFlag(line) {
			misses = append(misses, strings.TrimSpace(line))
		}
	}

	return flags, misses
}

// newFlag builds a flag descriptor from matched line parts, deriving the
// type from the value placeholder and required-ness from the description.
func newFlag(name, char, placeholder, description string) command.Flag {
	description = strings.TrimSpace(description)

	required := false
	for _, marker := range requiredMarkers {
		if idx := indexFold(description, marker); idx >= 0 {
			required = true
			description = strings.TrimSpace(description[:idx] + description[idx+len(marker):])
		}
	}

	flagType := "boolean"
	if placeholder != "" {
		flagType = strings.ToLower(strings.TrimSpace(placeholder))
		if flagType == "" || strings.ContainsAny(flagType, " \t") {
			flagType = "string"
		}
	}

	return command.Flag{
		Name:        name,
		Char:        char,
		Description: description,
		Required:    required,
		Type:        flagType,
	}
}

func sectionHeader(section string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(section), "\n")
	return strings.TrimSpace(line)
}

func isExamplesHeader(header string) bool {
	upper := strings.ToUpper(header)
	return strings.HasPrefix(upper, "EXAMPLES") || strings.HasPrefix(upper, "USAGE")
}

func isFlagsHeader(header string) bool {
	upper := strings.ToUpper(header)
	for _, keyword := range []string{"FLAGS", "OPTIONS", "PARAMETERS", "ARGUMENTS"} {
		if strings.Contains(upper, keyword) {
			return true
		}
	}
	return false
}

// stripHeader removes a literal header line from the start of a section and
// returns the remainder, trimmed.
func stripHeader(section, header string) string {
	section = strings.TrimSpace(section)
	first, rest, found := strings.Cut(section, "\n")
	if strings.EqualFold(strings.TrimSpace(first), header) {
		if !found {
			return ""
		}
		return strings.TrimSpace(rest)
	}
	return section
}

func looksLikeUsage(s string) bool {
	first, _, _ := strings.Cut(s, "\n")
	first = strings.TrimSpace(first)
	return strings.HasPrefix(strings.ToUpper(first), "USAGE") || strings.HasPrefix(first, "$")
}

// looksLikeFlag reports whether a line visually resembles a flag definition.
func looksLikeFlag(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.Contains(trimmed, "--") || strings.HasPrefix(trimmed, "-")
}

// indented reports whether next is indented further than the current line,
// marking it as a wrapped description.
func indented(next, current string) bool {
	if strings.TrimSpace(next) == "" {
		return false
	}
	return leadingSpaces(next) > leadingSpaces(current)
}

func leadingSpaces(s string) int {
	return len(s) - len(strings.TrimLeft(s, " \t"))
}

// indexFold is a case-insensitive strings.Index.
func indexFold(s, substr string) int {
	return strings.Index(strings.ToLower(s), strings.ToLower(substr))
}
