package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/leowmjw/go-obs-query/pkg/engine"
	queryhcl "github.com/leowmjw/go-obs-query/pkg/hcl"
	"github.com/leowmjw/go-obs-query/pkg/observe"
)

// datasetFile is the JSON layout of a session data file: named continuous
// signals and named point processes.
type datasetFile struct {
	Continuous map[string]continuousEntry `json:"continuous"`
	Points     map[string]pointsEntry     `json:"points"`
}

type continuousEntry struct {
	Timestamps   []float64    `json:"timestamps"`
	Samples      [][]float64  `json:"samples,omitempty"`
	Values       []float64    `json:"values,omitempty"`
	ObsIntervals [][2]float64 `json:"obs_intervals,omitempty"`
}

type pointsEntry struct {
	EventTimes   []float64    `json:"event_times"`
	Marks        [][]float64  `json:"marks,omitempty"`
	ObsIntervals [][2]float64 `json:"obs_intervals"`
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	var (
		dataPath    string
		queryPath   string
		displayJSON bool
	)

	flag.StringVar(&dataPath, "data", "", "Path to JSON session data file (required)")
	flag.StringVar(&queryPath, "query", "", "Path to HCL query file or directory (required)")
	flag.BoolVar(&displayJSON, "json", false, "Display results as JSON")
	flag.Parse()

	if dataPath == "" || queryPath == "" {
		logger.Error("Both -data and -query are required")
		flag.Usage()
		os.Exit(1)
	}

	store, err := loadStore(dataPath)
	if err != nil {
		logger.Error("Failed to load session data", "error", err)
		os.Exit(1)
	}
	logger.Info("Loaded session data", "datasets", len(store.Datasets()))

	queryFiles, err := collectQueryFiles(queryPath)
	if err != nil {
		logger.Error("Failed to collect query files", "error", err)
		os.Exit(1)
	}

	exitCode := 0
	for _, file := range queryFiles {
		content, err := os.ReadFile(file)
		if err != nil {
			logger.Error("Failed to read query file", "file", file, "error", err)
			exitCode = 1
			continue
		}
		requests, err := queryhcl.ParseQueries(content, filepath.Base(file))
		if err != nil {
			logger.Error("Failed to parse query file", "file", file, "error", err)
			exitCode = 1
			continue
		}

		for _, req := range requests {
			result, err := store.Execute(req.Request)
			if err != nil {
				logger.Error("Query failed", "name", req.Name, "error", err)
				exitCode = 1
				continue
			}
			if displayJSON {
				encoded, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					logger.Error("Failed to encode result", "name", req.Name, "error", err)
					exitCode = 1
					continue
				}
				fmt.Printf("%s: %s\n", req.Name, encoded)
			} else {
				logger.Info("Query completed",
					"name", req.Name,
					"dataset", result.Dataset,
					"fingerprint", result.Fingerprint,
					"obs_intervals", len(result.ObsIntervals),
					"select_intervals", len(result.SelectIntervals),
					"events", len(result.EventTimes),
					"samples", len(result.Timestamps),
				)
			}
		}
	}

	os.Exit(exitCode)
}

// loadStore reads a JSON session data file and wraps its arrays into a
// dataset store.
func loadStore(path string) (*engine.Store, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file datasetFile
	if err := json.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("invalid session data file: %w", err)
	}

	store := engine.NewStore()
	for name, entry := range file.Continuous {
		samples := entry.Samples
		if samples == nil && entry.Values != nil {
			samples = observe.Column(entry.Values)
		}
		var data observe.ContinuousData
		if entry.ObsIntervals != nil {
			obs, err := observe.NewTimeIntervals(entry.ObsIntervals)
			if err != nil {
				return nil, fmt.Errorf("continuous dataset %q: %w", name, err)
			}
			data, err = observe.NewContinuousDataWithObs(samples, entry.Timestamps, obs)
			if err != nil {
				return nil, fmt.Errorf("continuous dataset %q: %w", name, err)
			}
		} else {
			data, err = observe.NewContinuousData(samples, entry.Timestamps)
			if err != nil {
				return nil, fmt.Errorf("continuous dataset %q: %w", name, err)
			}
		}
		store.PutContinuous(name, data)
	}
	for name, entry := range file.Points {
		obs, err := observe.NewTimeIntervals(entry.ObsIntervals)
		if err != nil {
			return nil, fmt.Errorf("point dataset %q: %w", name, err)
		}
		data, err := observe.NewMarkedPointData(entry.EventTimes, obs, entry.Marks)
		if err != nil {
			return nil, fmt.Errorf("point dataset %q: %w", name, err)
		}
		store.PutPoints(name, data)
	}
	return store, nil
}

// collectQueryFiles returns the HCL files under path, or path itself if it
// is a file.
func collectQueryFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.Walk(path, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fi.IsDir() && strings.HasSuffix(p, ".hcl") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl files found in %s", path)
	}
	return files, nil
}
