/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package evaluate measures CU sketch accuracy as the sketch is compressed.
package evaluate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/sketchlab/cusketch-go/count"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const cancelCheckInterval = 4096

// Config describes one evaluation. Every policy gets its own sketch built
// from the same parameters.
type Config struct {
	MemoryBytes int
	KeyLen      int
	Rows        int
	Seed        int64
	MaxRate     int
	Policies    []count.CompressPolicy
}

func (c Config) Validate() error {
	if len(c.Policies) == 0 {
		return errors.New("at least one compress policy is required")
	}
	if c.MaxRate < 0 {
		return fmt.Errorf("max rate must not be negative, got %d", c.MaxRate)
	}
	return nil
}

// Result is the accuracy of one sketch after step halvings.
type Result struct {
	Policy    count.CompressPolicy
	Name      string
	Step      int
	Width     int
	MemoryUse int
	// ARE is the average relative error over distinct keys.
	ARE float64
	// AAE is the average absolute error over distinct keys.
	AAE float64
}

type groundTruth struct {
	keys   [][]byte
	counts []uint32
}

func exactCounts(keys [][]byte) groundTruth {
	counts := make(map[string]uint32)
	for _, k := range keys {
		counts[string(k)]++
	}
	distinct := make([]string, 0, len(counts))
	for k := range counts {
		distinct = append(distinct, k)
	}
	sort.Strings(distinct)

	gt := groundTruth{
		keys:   make([][]byte, len(distinct)),
		counts: make([]uint32, len(distinct)),
	}
	for i, k := range distinct {
		gt.keys[i] = []byte(k)
		gt.counts[i] = counts[k]
	}
	return gt
}

// Run inserts keys into one sketch per policy, then compresses each sketch one
// halving at a time up to MaxRate, recording accuracy after every step.
// Hierarchical sketches stop early when they run out of levels.
func Run(ctx context.Context, cfg Config, keys [][]byte, logger *zap.Logger) ([]Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	truth := exactCounts(keys)
	logger.Info("evaluating",
		zap.Int("stream_length", len(keys)),
		zap.Int("distinct_keys", len(truth.keys)),
		zap.Int("memory_bytes", cfg.MemoryBytes),
		zap.Int("max_rate", cfg.MaxRate))

	perPolicy := make([][]Result, len(cfg.Policies))
	g, ctx := errgroup.WithContext(ctx)
	for i, policy := range cfg.Policies {
		g.Go(func() error {
			results, err := runPolicy(ctx, cfg, policy, keys, truth, logger.With(zap.Stringer("policy", policy)))
			if err != nil {
				return fmt.Errorf("%v: %w", policy, err)
			}
			perPolicy[i] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var results []Result
	for _, r := range perPolicy {
		results = append(results, r...)
	}
	return results, nil
}

func runPolicy(ctx context.Context, cfg Config, policy count.CompressPolicy, keys [][]byte, truth groundTruth, logger *zap.Logger) ([]Result, error) {
	opts := []count.CUSketchOption{count.WithSeed(cfg.Seed)}
	if cfg.Rows > 0 {
		opts = append(opts, count.WithRows(cfg.Rows))
	}
	sketch, err := count.NewCUSketch(cfg.MemoryBytes, cfg.KeyLen, policy, opts...)
	if err != nil {
		return nil, err
	}
	logger.Debug("sketch created", zap.String("name", sketch.Name()), zap.Int("width", sketch.Width()))

	for i, k := range keys {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if err := sketch.Insert(k); err != nil {
			return nil, err
		}
	}

	results := make([]Result, 0, cfg.MaxRate+1)
	for step := 0; ; step++ {
		r, err := measure(sketch, truth)
		if err != nil {
			return nil, err
		}
		r.Step = step
		results = append(results, r)
		logger.Debug("measured",
			zap.Int("step", step),
			zap.Int("width", r.Width),
			zap.Float64("are", r.ARE),
			zap.Float64("aae", r.AAE))

		if step == cfg.MaxRate {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := sketch.Compress(1); err != nil {
			logger.Info("stopping early", zap.Int("step", step), zap.Error(err))
			break
		}
	}
	return results, nil
}

func measure(sketch *count.CUSketch, truth groundTruth) (Result, error) {
	r := Result{
		Policy:    sketch.Policy(),
		Name:      sketch.Name(),
		Width:     sketch.Width(),
		MemoryUse: sketch.MemoryUse(),
	}
	if len(truth.keys) == 0 {
		return r, nil
	}
	var relative, absolute float64
	for i, k := range truth.keys {
		est, err := sketch.Query(k)
		if err != nil {
			return r, err
		}
		diff := math.Abs(float64(est) - float64(truth.counts[i]))
		absolute += diff
		relative += diff / float64(truth.counts[i])
	}
	n := float64(len(truth.keys))
	r.ARE = relative / n
	r.AAE = absolute / n
	return r, nil
}
