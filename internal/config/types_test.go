package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSFConfigSection_BinaryOrDefault(t *testing.T) {
	t.Parallel()

	override := "  /opt/sf/bin/sf  "
	blank := "   "

	tests := []struct {
		name    string
		section *SFConfigSection
		want    string
	}{
		{name: "nil section", section: nil, want: "sf"},
		{name: "nil binary", section: &SFConfigSection{}, want: "sf"},
		{name: "blank binary", section: &SFConfigSection{Binary: &blank}, want: "sf"},
		{name: "override trimmed", section: &SFConfigSection{Binary: &override}, want: "/opt/sf/bin/sf"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.want, tc.section.BinaryOrDefault("sf"))
		})
	}
}

func TestCacheConfigSection_Accessors(t *testing.T) {
	t.Parallel()

	t.Run("nil section yields defaults", func(t *testing.T) {
		t.Parallel()

		var section *CacheConfigSection
		require.Equal(t, "/default", section.DirectoryOrDefault("/default"))
		require.Equal(t, time.Hour, section.MaxAgeOrDefault(time.Hour))
		require.False(t, section.DisabledOrDefault(false))
	})

	t.Run("configured values win", func(t *testing.T) {
		t.Parallel()

		dir := "/custom"
		age := Duration(30 * time.Minute)
		disabled := true
		section := &CacheConfigSection{Directory: &dir, MaxAge: &age, Disabled: &disabled}

		require.Equal(t, "/custom", section.DirectoryOrDefault("/default"))
		require.Equal(t, 30*time.Minute, section.MaxAgeOrDefault(time.Hour))
		require.True(t, section.DisabledOrDefault(false))
	})

	t.Run("non-positive max age falls back", func(t *testing.T) {
		t.Parallel()

		age := Duration(0)
		section := &CacheConfigSection{MaxAge: &age}

		require.Equal(t, time.Hour, section.MaxAgeOrDefault(time.Hour))
	})
}

func TestAPIConfigSection_AddrOrDefault(t *testing.T) {
	t.Parallel()

	addr := "0.0.0.0:9000"

	tests := []struct {
		name    string
		section *APIConfigSection
		want    string
	}{
		{name: "nil section", section: nil, want: ""},
		{name: "nil addr", section: &APIConfigSection{}, want: ""},
		{name: "configured addr", section: &APIConfigSection{Addr: &addr}, want: "0.0.0.0:9000"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.want, tc.section.AddrOrDefault(""))
		})
	}
}

func TestCORSConfigSection_EnableOrDefault(t *testing.T) {
	t.Parallel()

	enabled := true

	tests := []struct {
		name    string
		section *CORSConfigSection
		def     bool
		want    bool
	}{
		{name: "nil section", section: nil, def: false, want: false},
		{name: "nil enable uses default", section: &CORSConfigSection{}, def: true, want: true},
		{name: "explicit enable", section: &CORSConfigSection{Enable: &enabled}, def: false, want: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.want, tc.section.EnableOrDefault(tc.def))
		})
	}
}

func TestDuration_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		duration *Duration
		want     string
	}{
		{name: "nil", duration: nil, want: ""},
		{name: "hours", duration: ptr(Duration(168 * time.Hour)), want: "168h"},
		{name: "minutes", duration: ptr(Duration(90 * time.Minute)), want: "90m"},
		{name: "seconds", duration: ptr(Duration(45 * time.Second)), want: "45s"},
		{name: "milliseconds", duration: ptr(Duration(250 * time.Millisecond)), want: "250ms"},
		{name: "nanosecond fallback", duration: ptr(Duration(1500 * time.Microsecond)), want: "1500000ns"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.want, tc.duration.String())
		})
	}
}

func TestDuration_TextRoundTrip(t *testing.T) {
	t.Parallel()

	original := Duration(36 * time.Hour)

	text, err := original.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "36h", string(text))

	var decoded Duration
	require.NoError(t, decoded.UnmarshalText(text))
	require.Equal(t, original, decoded)
}

func TestDuration_UnmarshalText_Invalid(t *testing.T) {
	t.Parallel()

	var d Duration
	require.Error(t, d.UnmarshalText([]byte("not-a-duration")))
}

func ptr[T any](v T) *T {
	return &v
}
