package ml

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/model"
)

// ONNXOptions names the model's graph inputs and outputs.
type ONNXOptions struct {
	InputName         string
	OutputName        string
	SharedLibraryPath string
}

func (o *ONNXOptions) applyDefaults() {
	if o.InputName == "" {
		o.InputName = "features"
	}
	if o.OutputName == "" {
		o.OutputName = "risk"
	}
}

// ONNXProvider scores profiles with an ONNX model taking a [1, N] float32
// feature row (model.FeatureNames order) and producing a [1, 1] risk value.
type ONNXProvider struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	logger  *slog.Logger
	mu      sync.Mutex
}

// LoadONNXProvider initializes the runtime and opens a session over modelPath.
func LoadONNXProvider(modelPath string, opts ONNXOptions, logger *slog.Logger) (*ONNXProvider, error) {
	if modelPath == "" {
		return nil, errors.New("model path is empty")
	}
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file missing at %s: %w", modelPath, err)
	}
	opts.applyDefaults()

	libPath := opts.SharedLibraryPath
	if libPath == "" {
		libPath = resolveSharedLibraryPath(filepath.Dir(modelPath))
	}
	if libPath == "" {
		return nil, fmt.Errorf("onnxruntime shared library not found; set ONNXRUNTIME_SHARED_LIBRARY_PATH or install the runtime")
	}
	ort.SetSharedLibraryPath(libPath)
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(len(model.FeatureNames))))
	if err != nil {
		return nil, fmt.Errorf("allocate input tensor: %w", err)
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1))
	if err != nil {
		_ = input.Destroy()
		return nil, fmt.Errorf("allocate output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{opts.InputName},
		[]string{opts.OutputName},
		[]ort.Value{input},
		[]ort.Value{output},
		nil,
	)
	if err != nil {
		_ = input.Destroy()
		_ = output.Destroy()
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	logger.Info("onnx score provider loaded", "model", modelPath, "features", len(model.FeatureNames))

	return &ONNXProvider{
		session: session,
		input:   input,
		output:  output,
		logger:  logger,
	}, nil
}

// Predict runs the model on the profile's feature vector. The raw output is
// clamped to [0,1]; a non-finite output is an error.
func (p *ONNXProvider) Predict(ctx context.Context, profile model.Profile) (float64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}

	features := profile.Features()

	p.mu.Lock()
	defer p.mu.Unlock()

	copy(p.input.GetData(), features)
	if err := p.session.Run(); err != nil {
		return 0, false, fmt.Errorf("onnx run: %w", err)
	}

	raw := float64(p.output.GetData()[0])
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0, false, fmt.Errorf("onnx model produced non-finite score %v", raw)
	}
	return clampUnit(raw), true, nil
}

// Close releases the session and its tensors.
func (p *ONNXProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return errors.Join(p.session.Destroy(), p.input.Destroy(), p.output.Destroy())
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// resolveSharedLibraryPath locates a platform-specific onnxruntime shared library.
// ONNXRUNTIME_SHARED_LIBRARY_PATH wins over probing.
func resolveSharedLibraryPath(modelDir string) string {
	if env := strings.TrimSpace(os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH")); env != "" {
		return env
	}

	names := []string{
		"libonnxruntime.so",
		"onnxruntime.so",
		"libonnxruntime.dylib",
		"onnxruntime.dll",
	}
	dirs := []string{
		modelDir,
		filepath.Join(modelDir, "lib"),
		"/opt/homebrew/lib",
		"/usr/local/lib",
		"/usr/lib",
	}

	for _, dir := range dirs {
		for _, name := range names {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}
