// Package tabular implements the stage-1 movement classifier: a TensorFlow
// Lite model that labels each movement record as normal or poacher-like.
package tabular

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	tflite "github.com/tphakala/go-tflite"

	"github.com/ecoguard/ecoguard-go/internal/conf"
	"github.com/ecoguard/ecoguard-go/internal/datastore"
	"github.com/ecoguard/ecoguard-go/internal/errors"
	"github.com/ecoguard/ecoguard-go/internal/logging"
)

// Label values produced by the classifier.
const (
	LabelNormal  = 0
	LabelPoacher = 1
)

// Classifier wraps the movement model interpreter together with the
// preprocessing mappings. Loaded once at process start and immutable
// thereafter.
type Classifier struct {
	interpreter *tflite.Interpreter
	mappings    *Mappings
	threshold   float64
	logger      *slog.Logger
	mu          sync.Mutex
}

// New loads the movement model and its preprocessing mappings.
func New(settings *conf.MovementModelSettings) (*Classifier, error) {
	start := time.Now()

	mappings, err := LoadMappings(settings.MappingsPath)
	if err != nil {
		return nil, err
	}

	modelData, err := os.ReadFile(settings.ModelPath)
	if err != nil {
		return nil, errors.New(fmt.Errorf("reading movement model: %w", err)).
			Component("tabular").
			Category(errors.CategoryModelLoad).
			Context("path", settings.ModelPath).
			Build()
	}

	model := tflite.NewModel(modelData)
	if model == nil {
		return nil, errors.Newf("cannot load TensorFlow Lite movement model").
			Component("tabular").
			Category(errors.CategoryModelInit).
			Context("path", settings.ModelPath).
			Context("model_size_kb", len(modelData)/1024).
			Build()
	}

	threads := settings.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	options := tflite.NewInterpreterOptions()
	options.SetNumThread(threads)

	interpreter := tflite.NewInterpreter(model, options)
	if interpreter == nil {
		return nil, errors.Newf("cannot create movement model interpreter").
			Component("tabular").
			Category(errors.CategoryModelInit).
			Build()
	}
	if status := interpreter.AllocateTensors(); status != tflite.OK {
		return nil, errors.Newf("movement model tensor allocation failed").
			Component("tabular").
			Category(errors.CategoryModelInit).
			Build()
	}

	logger := logging.ForService("tabular")
	if logger == nil {
		logger = slog.Default().With("service", "tabular")
	}
	logger.Info("movement model initialized",
		"model", settings.ModelPath,
		"threads", threads,
		"threshold", settings.Threshold,
		"load_duration", time.Since(start))

	return &Classifier{
		interpreter: interpreter,
		mappings:    mappings,
		threshold:   settings.Threshold,
		logger:      logger,
	}, nil
}

// Mappings exposes the preprocessing mappings for feature preparation.
func (c *Classifier) Mappings() *Mappings {
	return c.mappings
}

// ClassifyBatch preprocesses and classifies a batch of movement records in
// one coherent call.
func (c *Classifier) ClassifyBatch(records []datastore.MovementRecord) ([]int, error) {
	features, err := c.mappings.Transform(records)
	if err != nil {
		return nil, err
	}
	return c.PredictBatch(features)
}

// PredictBatch classifies a batch of preprocessed feature rows and returns
// one binary label per row, in row order. The batch is a single coherent
// invocation of the classifier: all rows are scored against the same model
// state and a failure on any row fails the whole batch.
func (c *Classifier) PredictBatch(features [][]float32) ([]int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	labels := make([]int, len(features))
	for i, row := range features {
		if len(row) != NumFeatures {
			return nil, errors.Newf("feature row %d has %d columns, want %d", i, len(row), NumFeatures).
				Component("tabular").
				Category(errors.CategoryModelInference).
				Build()
		}

		inputTensor := c.interpreter.GetInputTensor(0)
		if inputTensor == nil {
			return nil, errors.Newf("cannot get movement model input tensor").
				Component("tabular").
				Category(errors.CategoryModelInference).
				Build()
		}
		copy(inputTensor.Float32s(), row)

		if status := c.interpreter.Invoke(); status != tflite.OK {
			return nil, errors.Newf("movement model invoke failed for row %d: %v", i, status).
				Component("tabular").
				Category(errors.CategoryModelInference).
				Build()
		}

		outputTensor := c.interpreter.GetOutputTensor(0)
		if outputTensor == nil {
			return nil, errors.Newf("cannot get movement model output tensor").
				Component("tabular").
				Category(errors.CategoryModelInference).
				Build()
		}
		score := outputTensor.Float32s()[0]

		if float64(score) >= c.threshold {
			labels[i] = LabelPoacher
		} else {
			labels[i] = LabelNormal
		}
	}

	return labels, nil
}
