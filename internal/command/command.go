// Package command defines the descriptor model for commands discovered from
// the Salesforce CLI, along with helpers to derive invocation strings and
// filter command sets.
package command

import (
	"strings"
)

// Separator delimits topic segments in a command ID (e.g. "apex:log:get").
const Separator = ":"

// Flag describes a single parameter of a command as reported by the CLI's
// machine-readable listing.
type Flag struct {
	Name        string   `json:"name"`
	Char        string   `json:"char,omitempty"`
	Description string   `json:"description,omitempty"`
	Required    bool     `json:"required"`
	Type        string   `json:"type"`
	Options     []string `json:"options,omitempty"`
	Default     any      `json:"default,omitempty"`
}

// Descriptor is one leaf command of the CLI.
// ID is the unique key; Name and Topic are derived from it once at discovery
// time and immutable thereafter.
type Descriptor struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Topic       string   `json:"topic,omitempty"`
	Description string   `json:"description"`
	Flags       []Flag   `json:"flags,omitempty"`
	Examples    []string `json:"examples,omitempty"`
}

// SplitID splits a command ID into its topic (all segments before the last,
// rejoined) and name (the last segment). IDs without a separator have an
// empty topic.
func SplitID(id string) (topic string, name string) {
	idx := strings.LastIndex(id, Separator)
	if idx < 0 {
		return "", id
	}
	return id[:idx], id[idx+len(Separator):]
}

// FullCommand returns the literal invocation string for the command:
// the ID with every separator replaced by a single space.
func (d Descriptor) FullCommand() string {
	return strings.ReplaceAll(d.ID, Separator, " ")
}

// Nested reports whether the command sits under a topic that is itself
// nested (the topic spans two or more segments).
func (d Descriptor) Nested() bool {
	return strings.Contains(d.Topic, Separator)
}

// Filter returns the descriptors for which every predicate holds.
func Filter(in []Descriptor, predicate ...func(Descriptor) bool) []Descriptor {
	result := make([]Descriptor, 0, len(in))
next:
	for _, d := range in {
		for _, p := range predicate {
			if !p(d) {
				continue next
			}
		}
		result = append(result, d)
	}
	return result
}

// HasTopic is a predicate that requires the command's topic, or its first
// topic segment, to equal the given topic (case-insensitive).
func HasTopic(topic string) func(Descriptor) bool {
	want := strings.ToLower(topic)
	return func(d Descriptor) bool {
		got := strings.ToLower(d.Topic)
		if got == want {
			return true
		}
		first, _, found := strings.Cut(got, Separator)
		return found && first == want
	}
}

// IDContains is a predicate that requires the command ID to contain the
// given substring (case-insensitive).
func IDContains(s string) func(Descriptor) bool {
	want := strings.ToLower(s)
	return func(d Descriptor) bool {
		return strings.Contains(strings.ToLower(d.ID), want)
	}
}
