// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package service

import (
	"math"

	"github.com/go-arcade/agileboard/internal/engine/repo"
)

// completion weights
const (
	storyWeight  = 0.5
	taskWeight   = 0.3
	pointsWeight = 0.2
)

// CompletionStats is WorkStats plus the derived percentages.
type CompletionStats struct {
	repo.WorkStats
	StoryPercent  float64 `json:"storyPercent"`
	TaskPercent   float64 `json:"taskPercent"`
	PointsPercent float64 `json:"pointsPercent"`
	Completion    float64 `json:"completion"`
}

// ComputeCompletion weighs story, task and point progress into one
// percentage rounded to two decimals within [0, 100].
func ComputeCompletion(stats repo.WorkStats) CompletionStats {
	out := CompletionStats{
		WorkStats:     stats,
		StoryPercent:  percent(stats.CompletedStories, stats.TotalStories),
		TaskPercent:   percent(stats.CompletedTasks, stats.TotalTasks),
		PointsPercent: percent(stats.CompletedPoints, stats.TotalPoints),
	}
	value := storyWeight*out.StoryPercent + taskWeight*out.TaskPercent + pointsWeight*out.PointsPercent
	out.Completion = clamp(round2(value), 0, 100)
	return out
}

func percent(done, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(done) / float64(total) * 100
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
