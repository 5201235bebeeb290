// Copyright (c) 2016-2019 Uber Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// loadtest fires concurrent /v1/execute calls against a running beebox
// instance, to observe the pool queue draining and recovering under load.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/alecthomas/kingpin"
)

type result struct {
	latency time.Duration
	status  int
	err     error
}

func fire(addr, sourceCode string) result {
	body, _ := json.Marshal(map[string]string{"source_code": sourceCode})

	start := time.Now()
	resp, err := http.Post(addr+"/v1/execute", "application/json", bytes.NewReader(body))
	latency := time.Since(start)
	if err != nil {
		return result{latency: latency, err: err}
	}
	defer resp.Body.Close()
	return result{latency: latency, status: resp.StatusCode}
}

func main() {
	app := kingpin.New("loadtest", "beebox execute-endpoint load testing tool")

	addr := app.Flag("addr", "beebox ingress address (e.g. http://localhost:7800)").Required().String()
	concurrency := app.Flag("concurrency", "number of concurrent workers").Short('c').Default("5").Int()
	requests := app.Flag("requests", "total number of requests to fire").Short('n').Default("100").Int()
	sourceCode := app.Flag("source-code", "source code body for every request").Default("print('loadtest')").String()

	kingpin.MustParse(app.Parse(os.Args[1:]))

	jobs := make(chan struct{}, *requests)
	for i := 0; i < *requests; i++ {
		jobs <- struct{}{}
	}
	close(jobs)

	results := make(chan result, *requests)
	var wg sync.WaitGroup
	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				results <- fire(*addr, *sourceCode)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var latencies []float64
	var failures int
	for r := range results {
		if r.err != nil {
			log.Printf("ERROR: %s", r.err)
			failures++
			continue
		}
		if r.status != http.StatusOK {
			log.Printf("non-200 status: %d", r.status)
			failures++
			continue
		}
		latencies = append(latencies, r.latency.Seconds())
	}

	sort.Float64s(latencies)
	fmt.Printf("requests=%d failures=%d\n", *requests, failures)
	if len(latencies) > 0 {
		fmt.Printf("min=%.3fs p50=%.3fs p99=%.3fs max=%.3fs\n",
			latencies[0],
			percentile(latencies, 50),
			percentile(latencies, 99),
			latencies[len(latencies)-1])
	}
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p / 100 * float64(len(sorted)-1))
	return sorted[idx]
}
