package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRole(t *testing.T) {
	tests := []struct {
		raw  string
		want Role
	}{
		{"assistant", RoleAssistant},
		{"ASSISTANT", RoleAssistant},
		{" assistant ", RoleAssistant},
		{"learner", RoleLearner},
		{"user", RoleLearner},
		{"system", RoleLearner},
		{"", RoleLearner},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeRole(tt.raw), tt.raw)
	}
}

func TestIsBlank(t *testing.T) {
	assert.True(t, Message{Role: RoleLearner, Text: "  \n\t "}.IsBlank())
	assert.False(t, Message{Role: RoleLearner, Text: "hi"}.IsBlank())
}
