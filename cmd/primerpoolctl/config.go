package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/alokmishra/primerpool/internal/model"
	"github.com/alokmishra/primerpool/pkg/primerpool"
)

// jobFile is the on-disk fixture format for the "run" subcommand: a flat
// list of primers plus the optimize parameters, decoded field-by-field from
// a hand-rolled map[string]any rather than a config-file library.
type jobFile struct {
	Primers []model.Primer
	Params  primerpool.OptimizeParams
}

func loadJobFromConfig(path string) (jobFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return jobFile{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return jobFile{}, err
	}

	var job jobFile
	if primerList, ok := raw["primers"].([]any); ok {
		job.Primers = make([]model.Primer, 0, len(primerList))
		for _, p := range primerList {
			pm, ok := p.(map[string]any)
			if !ok {
				continue
			}
			primer := model.Primer{}
			if v, ok := asString(pm["id"]); ok {
				primer.ID = v
			}
			if v, ok := asString(pm["gene"]); ok {
				primer.Gene = v
			}
			if v, ok := asString(pm["forward"]); ok {
				primer.Forward = v
			}
			if v, ok := asString(pm["reverse"]); ok {
				primer.Reverse = v
			}
			job.Primers = append(job.Primers, primer)
		}
	}

	k := 2
	if v, ok := asInt(raw["k"]); ok {
		k = v
	}
	job.Params = primerpool.DefaultParams(k)
	if v, ok := asInt(raw["cap"]); ok {
		job.Params.Cap = v
	}
	if v, ok := asInt(raw["max_generations"]); ok {
		job.Params.MaxGenerations = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		job.Params.Seed = v
	}
	if v, ok := asInt(raw["workers"]); ok {
		job.Params.Workers = v
	}
	if v, ok := asBool(raw["seed_from_binner"]); ok {
		job.Params.SeedFromBinner = v
	}
	if weightsMap, ok := raw["weights"].(map[string]any); ok {
		w := job.Params.Weights
		if v, ok := asFloat64(weightsMap["dimer"]); ok {
			w.Dimer = v
		}
		if v, ok := asFloat64(weightsMap["tm"]); ok {
			w.Tm = v
		}
		if v, ok := asFloat64(weightsMap["balance"]); ok {
			w.Balance = v
		}
		job.Params.Weights = w
	}

	if len(job.Primers) == 0 {
		return jobFile{}, fmt.Errorf("config %s: no primers", path)
	}
	return job, nil
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}
