// Package imageclass implements the stage-2 camera-trap image classifier: a
// TensorFlow Lite model that assigns a capture to one of the elephant,
// poacher or rhino classes.
package imageclass

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	tflite "github.com/tphakala/go-tflite"

	"github.com/ecoguard/ecoguard-go/internal/conf"
	"github.com/ecoguard/ecoguard-go/internal/errors"
	"github.com/ecoguard/ecoguard-go/internal/logging"
)

// ClassNames are the model output classes, in output tensor order.
var ClassNames = []string{"elephant", "poacher", "rhino"}

// Prediction is the argmax result of classifying one capture.
type Prediction struct {
	ClassName   string  // winning class
	Probability float64 // probability of the winning class
	ImagePath   string  // capture the prediction was made from
}

// Classifier wraps the camera model interpreter. Loaded once at process
// start and immutable thereafter.
type Classifier struct {
	interpreter *tflite.Interpreter
	inputSize   int
	imageRoot   string
	logger      *slog.Logger
	mu          sync.Mutex
}

// New loads the camera-trap image model.
func New(settings *conf.CameraModelSettings) (*Classifier, error) {
	start := time.Now()

	modelData, err := os.ReadFile(settings.ModelPath)
	if err != nil {
		return nil, errors.New(fmt.Errorf("reading camera model: %w", err)).
			Component("imageclass").
			Category(errors.CategoryModelLoad).
			Context("path", settings.ModelPath).
			Build()
	}

	model := tflite.NewModel(modelData)
	if model == nil {
		return nil, errors.Newf("cannot load TensorFlow Lite camera model").
			Component("imageclass").
			Category(errors.CategoryModelInit).
			Context("path", settings.ModelPath).
			Context("model_size_mb", len(modelData)/1024/1024).
			Build()
	}

	options := tflite.NewInterpreterOptions()
	options.SetNumThread(runtime.NumCPU())

	interpreter := tflite.NewInterpreter(model, options)
	if interpreter == nil {
		return nil, errors.Newf("cannot create camera model interpreter").
			Component("imageclass").
			Category(errors.CategoryModelInit).
			Build()
	}
	if status := interpreter.AllocateTensors(); status != tflite.OK {
		return nil, errors.Newf("camera model tensor allocation failed").
			Component("imageclass").
			Category(errors.CategoryModelInit).
			Build()
	}

	logger := logging.ForService("imageclass")
	if logger == nil {
		logger = slog.Default().With("service", "imageclass")
	}
	logger.Info("camera model initialized",
		"model", settings.ModelPath,
		"input_size", settings.InputSize,
		"load_duration", time.Since(start))

	return &Classifier{
		interpreter: interpreter,
		inputSize:   settings.InputSize,
		imageRoot:   settings.ImageRoot,
		logger:      logger,
	}, nil
}

// ClassifyZoneCapture resolves the expected capture for a zone and batch
// timestamp and classifies it. A missing capture surfaces as a not-found
// error that callers treat as "stage 2 skipped".
func (c *Classifier) ClassifyZoneCapture(zone string, ts time.Time) (Prediction, error) {
	path, err := LookupArtifact(c.imageRoot, zone, ts)
	if err != nil {
		return Prediction{}, err
	}
	return c.ClassifyFile(path)
}

// ClassifyFile classifies a single capture file and returns the argmax
// class with its probability.
func (c *Classifier) ClassifyFile(path string) (Prediction, error) {
	tensor, err := LoadImageTensor(path, c.inputSize)
	if err != nil {
		return Prediction{}, err
	}

	probabilities, err := c.invoke(tensor)
	if err != nil {
		return Prediction{}, err
	}

	best := argmax(probabilities)
	return Prediction{
		ClassName:   ClassNames[best],
		Probability: float64(probabilities[best]),
		ImagePath:   path,
	}, nil
}

func (c *Classifier) invoke(tensor []float32) ([]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	inputTensor := c.interpreter.GetInputTensor(0)
	if inputTensor == nil {
		return nil, errors.Newf("cannot get camera model input tensor").
			Component("imageclass").
			Category(errors.CategoryModelInference).
			Build()
	}
	copy(inputTensor.Float32s(), tensor)

	if status := c.interpreter.Invoke(); status != tflite.OK {
		return nil, errors.Newf("camera model invoke failed: %v", status).
			Component("imageclass").
			Category(errors.CategoryModelInference).
			Build()
	}

	outputTensor := c.interpreter.GetOutputTensor(0)
	if outputTensor == nil {
		return nil, errors.Newf("cannot get camera model output tensor").
			Component("imageclass").
			Category(errors.CategoryModelInference).
			Build()
	}

	predSize := outputTensor.Dim(outputTensor.NumDims() - 1)
	if predSize != len(ClassNames) {
		return nil, errors.Newf("camera model produced %d classes, want %d", predSize, len(ClassNames)).
			Component("imageclass").
			Category(errors.CategoryModelInference).
			Build()
	}
	probabilities := make([]float32, predSize)
	copy(probabilities, outputTensor.Float32s())
	return probabilities, nil
}

func argmax(values []float32) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
