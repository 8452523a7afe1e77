package naming

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forcemcp/forcemcp/internal/command"
)

func TestCanonical(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		descriptor command.Descriptor
		expected   string
	}{
		{
			name:       "nested topic",
			descriptor: command.Descriptor{ID: "apex:log:get", Name: "get", Topic: "apex:log"},
			expected:   "sf_apex_log_get",
		},
		{
			name:       "single topic",
			descriptor: command.Descriptor{ID: "org:list", Name: "list", Topic: "org"},
			expected:   "sf_org_list",
		},
		{
			name:       "no topic",
			descriptor: command.Descriptor{ID: "login", Name: "login"},
			expected:   "sf_login",
		},
		{
			name:       "unsafe characters are replaced",
			descriptor: command.Descriptor{ID: "my topic:weird@name.x", Name: "weird@name.x", Topic: "my topic"},
			expected:   "sf_my_topic_weird_name_x",
		},
		{
			name:       "hyphens survive",
			descriptor: command.Descriptor{ID: "static-resource:generate", Name: "generate", Topic: "static-resource"},
			expected:   "sf_static-resource_generate",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.expected, Canonical(tc.descriptor))
		})
	}
}

func TestCanonical_TruncatesOnlyPastCeiling(t *testing.T) {
	t.Parallel()

	// len("sf_") + 61 = exactly the ceiling.
	exact := command.Descriptor{Name: strings.Repeat("a", 61)}
	require.Len(t, Canonical(exact), MaxNameLength)
	require.Equal(t, "sf_"+strings.Repeat("a", 61), Canonical(exact))

	over := command.Descriptor{Name: strings.Repeat("a", 62)}
	require.Len(t, Canonical(over), MaxNameLength)
	require.Equal(t, "sf_"+strings.Repeat("a", 61), Canonical(over))
}

func TestAlias(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		descriptor command.Descriptor
		expected   string
		ok         bool
	}{
		{
			name:       "deeply nested command",
			descriptor: command.Descriptor{ID: "apex:log:get", Name: "get", Topic: "apex:log"},
			expected:   "sf_get",
			ok:         true,
		},
		{
			name:       "leaf name is lowercased",
			descriptor: command.Descriptor{ID: "apex:log:Tail", Name: "Tail", Topic: "apex:log"},
			expected:   "sf_tail",
			ok:         true,
		},
		{
			name:       "single-level topic gets no alias",
			descriptor: command.Descriptor{ID: "org:list", Name: "list", Topic: "org"},
			ok:         false,
		},
		{
			name:       "top-level command gets no alias",
			descriptor: command.Descriptor{ID: "login", Name: "login"},
			ok:         false,
		},
		{
			name:       "short leaf name gets no alias",
			descriptor: command.Descriptor{ID: "org:user:ls", Name: "ls", Topic: "org:user"},
			ok:         false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			alias, ok := Alias(tc.descriptor)
			require.Equal(t, tc.ok, ok)
			if tc.ok {
				require.Equal(t, tc.expected, alias)
			}
		})
	}
}

func TestNewPlan_CanonicalAndAlias(t *testing.T) {
	t.Parallel()

	plan := NewPlan([]command.Descriptor{
		{ID: "apex:log:get", Name: "get", Topic: "apex:log"},
	}, nil)

	require.Len(t, plan.Bindings, 2)
	require.Empty(t, plan.Skipped)

	require.Equal(t, "sf_apex_log_get", plan.Bindings[0].ToolName)
	require.False(t, plan.Bindings[0].IsAlias)
	require.Equal(t, "sf_get", plan.Bindings[1].ToolName)
	require.True(t, plan.Bindings[1].IsAlias)
	require.Equal(t, "apex:log:get", plan.Bindings[1].Command.ID)
}

func TestNewPlan_CanonicalCollisionSkipsCommand(t *testing.T) {
	t.Parallel()

	// Same command listed twice: the duplicate is skipped entirely, so only
	// one alias attempt happens.
	d := command.Descriptor{ID: "apex:log:get", Name: "get", Topic: "apex:log"}

	plan := NewPlan([]command.Descriptor{d, d}, nil)

	require.Len(t, plan.Bindings, 2)
	require.Len(t, plan.Skipped, 1)
	require.Equal(t, "sf_apex_log_get", plan.Skipped[0].ToolName)
	require.False(t, plan.Skipped[0].IsAlias)
	require.Contains(t, plan.Skipped[0].Reason, "already taken")
}

func TestNewPlan_ReservedNames(t *testing.T) {
	t.Parallel()

	plan := NewPlan([]command.Descriptor{
		{ID: "cache:clear", Name: "clear", Topic: "cache"},
	}, []string{"sf_cache_clear"})

	require.Empty(t, plan.Bindings)
	require.Len(t, plan.Skipped, 1)
	require.Equal(t, "sf_cache_clear", plan.Skipped[0].ToolName)
	require.Equal(t, "cache:clear", plan.Skipped[0].CommandID)
}

func TestNewPlan_AliasNeverShadowsCanonical(t *testing.T) {
	t.Parallel()

	// The nested command would claim alias "sf_get", but a later top-level
	// command owns that name canonically. Canonical names always win.
	plan := NewPlan([]command.Descriptor{
		{ID: "apex:log:get", Name: "get", Topic: "apex:log"},
		{ID: "get", Name: "get"},
	}, nil)

	require.Len(t, plan.Bindings, 2)
	require.Equal(t, "sf_apex_log_get", plan.Bindings[0].ToolName)
	require.Equal(t, "sf_get", plan.Bindings[1].ToolName)
	require.False(t, plan.Bindings[1].IsAlias)
	require.Equal(t, "get", plan.Bindings[1].Command.ID)

	require.Len(t, plan.Skipped, 1)
	require.True(t, plan.Skipped[0].IsAlias)
	require.Equal(t, "apex:log:get", plan.Skipped[0].CommandID)
}

func TestNewPlan_FirstAliasWins(t *testing.T) {
	t.Parallel()

	plan := NewPlan([]command.Descriptor{
		{ID: "apex:log:get", Name: "get", Topic: "apex:log"},
		{ID: "org:snapshot:get", Name: "get", Topic: "org:snapshot"},
	}, nil)

	require.Len(t, plan.Bindings, 3)
	require.Equal(t, "sf_get", plan.Bindings[2].ToolName)
	require.Equal(t, "apex:log:get", plan.Bindings[2].Command.ID)

	require.Len(t, plan.Skipped, 1)
	require.True(t, plan.Skipped[0].IsAlias)
	require.Equal(t, "org:snapshot:get", plan.Skipped[0].CommandID)
}

func TestNewPlan_Deterministic(t *testing.T) {
	t.Parallel()

	commands := []command.Descriptor{
		{ID: "apex:log:get", Name: "get", Topic: "apex:log"},
		{ID: "org:list", Name: "list", Topic: "org"},
		{ID: "project:deploy:start", Name: "start", Topic: "project:deploy"},
	}
	reserved := []string{"sf_set_project_root"}

	first := NewPlan(commands, reserved)
	second := NewPlan(commands, reserved)

	require.Equal(t, first, second)
	require.Len(t, first.Bindings, 5)
}

func TestNewPlan_Empty(t *testing.T) {
	t.Parallel()

	plan := NewPlan(nil, []string{"sf_cache_clear"})
	require.Empty(t, plan.Bindings)
	require.Empty(t, plan.Skipped)
}
