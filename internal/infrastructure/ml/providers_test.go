package ml

import (
	"context"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/model"
)

func TestNullProvider(t *testing.T) {
	score, present, err := NullProvider{}.Predict(context.Background(), model.Profile{})
	require.NoError(t, err)
	assert.False(t, present)
	assert.Zero(t, score)
}

func TestConstantProvider(t *testing.T) {
	p := NewConstantProvider(slog.Default())

	for _, profile := range []model.Profile{{}, {SubjectID: "a", Financial: model.FinancialSection{BankBalance: 1}}} {
		score, present, err := p.Predict(context.Background(), profile)
		require.NoError(t, err)
		assert.True(t, present)
		assert.Equal(t, 0.5, score)
	}
}

func TestNewProvider(t *testing.T) {
	logger := slog.Default()

	p, closeFn, err := NewProvider(KindNone, "", logger)
	require.NoError(t, err)
	assert.IsType(t, NullProvider{}, p)
	assert.NoError(t, closeFn())

	p, closeFn, err = NewProvider(KindConstant, "", logger)
	require.NoError(t, err)
	assert.IsType(t, &ConstantProvider{}, p)
	assert.NoError(t, closeFn())

	_, closeFn, err = NewProvider("quantum", "", logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown score provider "quantum"`)
	assert.NotNil(t, closeFn)
}

func TestNewProvider_ONNXMissingModel(t *testing.T) {
	_, _, err := NewProvider(KindONNX, filepath.Join(t.TempDir(), "absent.onnx"), slog.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model file missing")
}

func TestLoadONNXProvider_EmptyPath(t *testing.T) {
	_, err := LoadONNXProvider("", ONNXOptions{}, slog.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model path is empty")
}

func TestResolveSharedLibraryPath(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "lib", "libonnxruntime.so")
	require.NoError(t, os.MkdirAll(filepath.Dir(lib), 0o755))
	require.NoError(t, os.WriteFile(lib, nil, 0o600))

	t.Setenv("ONNXRUNTIME_SHARED_LIBRARY_PATH", "")
	assert.Equal(t, lib, resolveSharedLibraryPath(dir))

	t.Setenv("ONNXRUNTIME_SHARED_LIBRARY_PATH", "/custom/libonnxruntime.so")
	assert.Equal(t, "/custom/libonnxruntime.so", resolveSharedLibraryPath(dir))
}

func TestClampUnit(t *testing.T) {
	assert.Equal(t, 0.0, clampUnit(-0.2))
	assert.Equal(t, 1.0, clampUnit(3))
	assert.Equal(t, 0.42, clampUnit(0.42))
	assert.Equal(t, 1.0, clampUnit(math.Inf(1)))
}
