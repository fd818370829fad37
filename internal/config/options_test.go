package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/retitle/internal/caseconv"
	"github.com/Veraticus/retitle/internal/common"
)

func TestLoadOptions_Defaults(t *testing.T) {
	opts, err := LoadOptions(viper.New())
	require.NoError(t, err)

	assert.Equal(t, caseconv.Kebab, opts.Case)
	assert.Equal(t, DefaultChars, opts.Chars)
	assert.Equal(t, DefaultLanguage, opts.Language)
	assert.Equal(t, DefaultFrames, opts.Frames)
	assert.Equal(t, 8000, opts.ContentLimit)
	assert.Equal(t, 12000, opts.PromptLimit)
	assert.Equal(t, 20000, opts.ClassifierScanLimit)
	assert.True(t, opts.UseMetadata)
	assert.False(t, opts.Force)
	assert.False(t, opts.PitchDeck)
	assert.Positive(t, opts.Concurrency)
	assert.NotContains(t, opts.DatabasePath, "$HOME")
}

func TestLoadOptions_Overrides(t *testing.T) {
	t.Setenv("RETITLE_TEST_DIR", "/tmp/retitle")

	v := viper.New()
	v.Set(KeyCase, "snake")
	v.Set(KeyChars, 40)
	v.Set(KeyLanguage, " German ")
	v.Set(KeyForce, true)
	v.Set(KeyPitchDeck, true)
	v.Set(KeyPitchDeckFocus, "investor")
	v.Set(KeyTags, true)
	v.Set(KeyDatabasePath, "$RETITLE_TEST_DIR/log.db")

	opts, err := LoadOptions(v)
	require.NoError(t, err)

	assert.Equal(t, caseconv.Snake, opts.Case)
	assert.Equal(t, 40, opts.Chars)
	assert.Equal(t, "German", opts.Language)
	assert.True(t, opts.Force)
	assert.True(t, opts.PitchDeck)
	assert.Equal(t, "investor", opts.PitchDeckFocus)
	assert.True(t, opts.AppendTags)
	assert.Equal(t, "/tmp/retitle/log.db", opts.DatabasePath)
}

func TestLoadOptions_UnknownCase(t *testing.T) {
	v := viper.New()
	v.Set(KeyCase, "wavyCase")

	_, err := LoadOptions(v)
	require.ErrorIs(t, err, common.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "kebabCase")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		mutate  func(*Options)
		want    error
		name    string
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Options) {}},
		{name: "zero chars", mutate: func(o *Options) { o.Chars = 0 }, wantErr: true, want: common.ErrInvalidConfig},
		{name: "negative frames", mutate: func(o *Options) { o.Frames = -1 }, wantErr: true, want: common.ErrInvalidConfig},
		{name: "zero concurrency", mutate: func(o *Options) { o.Concurrency = 0 }, wantErr: true, want: common.ErrInvalidConfig},
		{name: "content over prompt", mutate: func(o *Options) { o.ContentLimit = 13000 }, wantErr: true, want: common.ErrInvalidConfig},
		{name: "empty language", mutate: func(o *Options) { o.Language = "" }, wantErr: true, want: common.ErrInvalidConfig},
		{name: "focus without mode", mutate: func(o *Options) { o.PitchDeckFocus = "team" }, wantErr: true, want: common.ErrInvalidConfig},
		{name: "focus with mode", mutate: func(o *Options) { o.PitchDeck = true; o.PitchDeckFocus = "team" }},
		{name: "bad case", mutate: func(o *Options) { o.Case = "shouting" }, wantErr: true, want: common.ErrInvalidConfig},
		{name: "no database", mutate: func(o *Options) { o.DatabasePath = " " }, wantErr: true, want: common.ErrMissingConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Default()
			tt.mutate(&opts)

			err := opts.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, tt.want)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	t.Setenv("RETITLE_DATA", "/var/data")

	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "~", want: "/home/tester"},
		{in: "~/logs/retitle.db", want: "/home/tester/logs/retitle.db"},
		{in: "$RETITLE_DATA/retitle.db", want: "/var/data/retitle.db"},
		{in: "/abs/path.db", want: "/abs/path.db"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}
