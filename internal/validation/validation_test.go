package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"empty", "", true},
		{"short but present", "pw", false},
		{"typical", "correct horse battery staple", false},
		{"at bcrypt limit", strings.Repeat("a", 72), false},
		{"over bcrypt limit", strings.Repeat("a", 73), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"empty", "", true},
		{"simple", "testuser", false},
		{"short", "u1", false},
		{"max length", strings.Repeat("a", 30), false},
		{"too long", strings.Repeat("a", 31), true},
		{"whitespace", "test user", true},
		{"newline", "test\nuser", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateEmail("test@test.com"))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("a@b"))
	assert.Error(t, ValidateEmail(strings.Repeat("a", 250)+"@example.com"))
}

func TestValidateMessageText(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateMessageText("Hello"))
	assert.NoError(t, ValidateMessageText(strings.Repeat("é", 140)))
	assert.Error(t, ValidateMessageText(""))
	assert.Error(t, ValidateMessageText("   "))
	assert.Error(t, ValidateMessageText(strings.Repeat("x", 141)))
}
