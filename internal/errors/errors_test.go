package errors

import (
	"fmt"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestPipelineError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *PipelineError
		want string
	}{
		{
			name: "without cause",
			err:  Validation("title is required"),
			want: "[VALIDATION_ERROR] title is required",
		},
		{
			name: "with cause",
			err:  Retrieval("search failed", fmt.Errorf("connection refused")),
			want: "[RETRIEVAL_ERROR] search failed: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestIsCode(t *testing.T) {
	err := Generation("bad completion", nil)
	assert.True(t, IsCode(err, ErrCodeGeneration))
	assert.False(t, IsCode(err, ErrCodeRetrieval))
	assert.False(t, IsCode(fmt.Errorf("plain"), ErrCodeGeneration))

	// Codes survive wrapping.
	wrapped := pkgerrors.Wrap(err, "stage failed")
	assert.True(t, IsCode(wrapped, ErrCodeGeneration))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCodePersistence, CodeOf(Persistence("write failed", nil), ErrCodeGeneration))
	assert.Equal(t, ErrCodeGeneration, CodeOf(fmt.Errorf("plain"), ErrCodeGeneration))
}

func TestMessageOf(t *testing.T) {
	err := Retrieval("context search failed", fmt.Errorf("connection refused"))

	// The caller-safe message carries neither the code tag nor the cause.
	msg := MessageOf(err, "internal error")
	assert.Equal(t, "context search failed", msg)
	assert.NotContains(t, msg, "RETRIEVAL_ERROR")
	assert.NotContains(t, msg, "connection refused")

	// Survives wrapping; falls back for plain errors.
	assert.Equal(t, "context search failed", MessageOf(pkgerrors.Wrap(err, "stage failed"), "internal error"))
	assert.Equal(t, "internal error", MessageOf(fmt.Errorf("plain"), "internal error"))
}
