package artifact

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		// Valid cases
		{"valid simple", "doc-1", false},
		{"valid uuid-like", "a3f1c2d4-9b8e-4f5a-b6c7-d8e9f0a1b2c3", false},
		{"valid with dots", "notes.draft.2", false},
		{"valid with underscore", "my_doc", false},
		{"valid unicode", "文件", false},

		// Invalid cases
		{"empty", "", true},
		{"space", "my doc", true},
		{"tab", "my\tdoc", true},
		{"newline", "my\ndoc", true},
		{"null byte", "doc\x00", true},
		{"delete char", "doc\x7f", true},
		{"too long", strings.Repeat("a", 129), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateID(tt.id)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidID)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateID_MaxLength(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateID(strings.Repeat("a", 128)))
	assert.ErrorIs(t, ValidateID(strings.Repeat("a", 129)), ErrInvalidID)
}

func TestKind_Valid(t *testing.T) {
	t.Parallel()

	for _, kind := range []Kind{KindText, KindCode, KindMarkdown, KindHTML, KindSheet} {
		assert.True(t, kind.Valid(), "kind %q should be valid", kind)
	}

	assert.False(t, Kind("").Valid())
	assert.False(t, Kind("pdf").Valid())
	assert.False(t, Kind("TEXT").Valid())
}

func FuzzValidateID(f *testing.F) {
	// Seed corpus
	f.Add("doc-1")
	f.Add("")
	f.Add("a b")
	f.Add("doc\x00")
	f.Add(strings.Repeat("a", 200))

	f.Fuzz(func(t *testing.T, id string) {
		// Should never panic
		err := ValidateID(id)

		// If valid, verify safety properties
		if err == nil {
			if id == "" {
				t.Error("empty id should be invalid")
			}
			if len(id) > 128 {
				t.Error("id exceeding 128 bytes should be invalid")
			}
			for _, c := range id {
				if c <= ' ' || c == 0x7f {
					t.Errorf("id with control character should be invalid: %q", id)
				}
			}
		}
	})
}
