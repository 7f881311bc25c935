// Package spammodel is the trained probabilistic spam classifier: a TF-IDF
// vectorizer paired with a multinomial naive Bayes model. Both halves are
// persisted as separate JSON artifacts and always loaded together.
package spammodel

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/meko-christian/mail-sweeper/internal/dataset"
	"github.com/meko-christian/mail-sweeper/internal/textnorm"
)

// Options control training.
type Options struct {
	// TestSize is the share of samples held out for evaluation.
	TestSize float64
	Seed     int64
	Alpha    float64
}

// DefaultOptions holds out 20% with a fixed seed.
var DefaultOptions = Options{TestSize: 0.2, Seed: 42, Alpha: 1.0}

// Detector scores normalized text.
type Detector struct {
	vectorizer *Vectorizer
	model      *NaiveBayes
}

// Probability returns the spam probability of already normalized text.
func (d *Detector) Probability(normalized string) float64 {
	return d.model.SpamProbability(d.vectorizer.Transform(normalized))
}

// Train normalizes samples, fits the vectorizer and model on the training
// split and evaluates on the held-out split.
func Train(samples []dataset.Sample, norm *textnorm.Normalizer, opts Options) (*Detector, *Evaluation, error) {
	if len(samples) == 0 {
		return nil, nil, errors.New("no training samples")
	}

	docs := make([]string, len(samples))
	for i, s := range samples {
		docs[i] = norm.Normalize(s.Text)
	}

	order := rand.New(rand.NewSource(opts.Seed)).Perm(len(samples))
	nTest := int(float64(len(samples)) * opts.TestSize)
	if nTest >= len(samples) {
		nTest = 0
	}
	testIdx, trainIdx := order[:nTest], order[nTest:]

	trainDocs := make([]string, len(trainIdx))
	trainLabels := make([]bool, len(trainIdx))
	for i, idx := range trainIdx {
		trainDocs[i] = docs[idx]
		trainLabels[i] = samples[idx].Spam
	}

	vec := FitVectorizer(trainDocs)
	X := make([]Vector, len(trainDocs))
	for i, doc := range trainDocs {
		X[i] = vec.Transform(doc)
	}

	nb, err := FitNaiveBayes(X, trainLabels, vec.Features(), opts.Alpha)
	if err != nil {
		return nil, nil, err
	}
	d := &Detector{vectorizer: vec, model: nb}

	eval := &Evaluation{}
	for _, idx := range testIdx {
		eval.Add(samples[idx].Spam, d.Probability(docs[idx]) >= 0.5)
	}

	slog.Info("Spam model trained",
		"samples", len(samples), "train", len(trainIdx), "test", len(testIdx),
		"features", vec.Features(), "accuracy", eval.Accuracy())

	return d, eval, nil
}

// Save writes the model and vectorizer artifacts.
func (d *Detector) Save(modelPath, vectorizerPath string) error {
	if err := writeJSON(modelPath, d.model); err != nil {
		return fmt.Errorf("failed to save model: %w", err)
	}
	if err := writeJSON(vectorizerPath, d.vectorizer); err != nil {
		return fmt.Errorf("failed to save vectorizer: %w", err)
	}
	return nil
}

// Load reads both artifacts. It returns an error wrapping fs.ErrNotExist if
// either is missing.
func Load(modelPath, vectorizerPath string) (*Detector, error) {
	var nb NaiveBayes
	if err := readJSON(modelPath, &nb); err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	var vec Vectorizer
	if err := readJSON(vectorizerPath, &vec); err != nil {
		return nil, fmt.Errorf("failed to load vectorizer: %w", err)
	}

	for c := range nb.FeatureLogProb {
		if len(nb.FeatureLogProb[c]) != vec.Features() {
			return nil, fmt.Errorf("model has %d features, vectorizer has %d",
				len(nb.FeatureLogProb[c]), vec.Features())
		}
	}

	for term, idx := range vec.Vocabulary {
		if idx < 0 || idx >= vec.Features() {
			return nil, fmt.Errorf("vectorizer term %q has index %d outside [0,%d)", term, idx, vec.Features())
		}
	}

	return &Detector{vectorizer: &vec, model: &nb}, nil
}

// LoadOrTrain loads persisted artifacts or, when the model file is absent,
// trains on the dataset at datasetPath and persists the result.
func LoadOrTrain(modelPath, vectorizerPath, datasetPath string, norm *textnorm.Normalizer) (*Detector, error) {
	d, err := Load(modelPath, vectorizerPath)
	if err == nil {
		slog.Info("Loaded spam model", "model", modelPath, "vectorizer", vectorizerPath)
		return d, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	slog.Warn("No trained model found, training a new one", "dataset", datasetPath)

	samples, err := dataset.ReadFile(datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	d, _, err = Train(samples, norm, DefaultOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to train model: %w", err)
	}

	if err := d.Save(modelPath, vectorizerPath); err != nil {
		return nil, err
	}
	return d, nil
}

func writeJSON(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := json.NewEncoder(tmp).Encode(v); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func readJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewDecoder(f).Decode(v)
}
