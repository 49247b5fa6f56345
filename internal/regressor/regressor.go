// Package regressor evaluates frozen per-trait regression artifacts exported
// from the training pipeline.
package regressor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// Artifact kinds understood by Decode.
const (
	KindLinear = "linear"
	KindForest = "forest"
	KindRemote = "remote"
)

// Regressor maps a feature vector to a scalar prediction.
type Regressor interface {
	Predict(ctx context.Context, features []float64) (float64, error)
}

// Linear is an ordinary least-squares style model.
type Linear struct {
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

func (l *Linear) Predict(_ context.Context, features []float64) (float64, error) {
	if len(features) != len(l.Coefficients) {
		return 0, fmt.Errorf("linear model expects %d features, got %d", len(l.Coefficients), len(features))
	}
	y := l.Intercept
	for i, x := range features {
		y += l.Coefficients[i] * x
	}
	return y, nil
}

// Node is a decision tree node. Leaves have Left == -1.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

// Tree is a flattened binary regression tree rooted at Nodes[0].
type Tree struct {
	Nodes []Node `json:"nodes"`
}

func (t *Tree) predict(features []float64) (float64, error) {
	if len(t.Nodes) == 0 {
		return 0, fmt.Errorf("empty tree")
	}
	idx := 0
	for steps := 0; steps <= len(t.Nodes); steps++ {
		n := t.Nodes[idx]
		if n.Left < 0 {
			return n.Value, nil
		}
		if n.Feature < 0 || n.Feature >= len(features) {
			return 0, fmt.Errorf("node %d uses feature %d of %d", idx, n.Feature, len(features))
		}
		next := n.Right
		if features[n.Feature] <= n.Threshold {
			next = n.Left
		}
		if next < 0 || next >= len(t.Nodes) {
			return 0, fmt.Errorf("node %d points to missing child %d", idx, next)
		}
		idx = next
	}
	return 0, fmt.Errorf("tree contains a cycle")
}

// Forest averages the output of its trees, as a random forest regressor does.
type Forest struct {
	Trees []Tree `json:"trees"`
}

func (f *Forest) Predict(_ context.Context, features []float64) (float64, error) {
	if len(f.Trees) == 0 {
		return 0, fmt.Errorf("forest has no trees")
	}
	var sum float64
	for i := range f.Trees {
		v, err := f.Trees[i].predict(features)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", i, err)
		}
		sum += v
	}
	return sum / float64(len(f.Trees)), nil
}

type artifactFile struct {
	Kind         string    `json:"kind"`
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
	Trees        []Tree    `json:"trees"`
	Endpoint     string    `json:"endpoint"`
}

// Decode reads one artifact file. Remote artifacts are bound to client and
// identified by model and trait.
func Decode(r io.Reader, model, trait string, client *Client) (Regressor, error) {
	var a artifactFile
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("failed to decode artifact: %w", err)
	}

	switch a.Kind {
	case KindLinear:
		if len(a.Coefficients) == 0 {
			return nil, fmt.Errorf("linear artifact has no coefficients")
		}
		return &Linear{Intercept: a.Intercept, Coefficients: a.Coefficients}, nil
	case KindForest:
		if len(a.Trees) == 0 {
			return nil, fmt.Errorf("forest artifact has no trees")
		}
		return &Forest{Trees: a.Trees}, nil
	case KindRemote:
		if a.Endpoint == "" {
			return nil, fmt.Errorf("remote artifact has no endpoint")
		}
		if client == nil {
			return nil, fmt.Errorf("remote artifact requires a scoring client")
		}
		return &Remote{client: client, endpoint: a.Endpoint, model: model, trait: trait}, nil
	default:
		return nil, fmt.Errorf("unknown artifact kind %q", a.Kind)
	}
}
