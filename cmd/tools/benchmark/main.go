package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// BenchmarkConfig holds benchmark configuration
type BenchmarkConfig struct {
	BaseURL         string
	SeriesLength    int
	Horizon         int
	Duration        time.Duration
	ForecastWorkers int
	MetaWorkers     int
	MetaInterval    time.Duration
	Models          []string
	HTTPClient      *http.Client // Shared HTTP client for connection pooling
}

// Metrics holds benchmark metrics
type Metrics struct {
	ForecastLatencies  []float64
	MetaLatencies      []float64
	ForecastErrors     int64
	MetaErrors         int64
	ForecastSuccess    int64
	MetaSuccess        int64
	FirstForecastError string
	FirstMetaError     string
	mu                 sync.Mutex
}

// Result represents benchmark results
type Result struct {
	Operation  string
	TotalOps   int64
	SuccessOps int64
	ErrorOps   int64
	Duration   time.Duration
	Throughput float64 // ops/sec
	AvgLatency float64 // ms
	MinLatency float64 // ms
	MaxLatency float64 // ms
	P50Latency float64 // ms
	P95Latency float64 // ms
	P99Latency float64 // ms
	ErrorMsg   string  // First error message
}

func main() {
	// Parse flags
	config := BenchmarkConfig{}
	flag.StringVar(&config.BaseURL, "url", "http://127.0.0.1:8000", "Base URL of the API")
	flag.IntVar(&config.SeriesLength, "series-length", 120, "Observations per generated series")
	flag.IntVar(&config.Horizon, "horizon", 14, "Forecast horizon")
	flag.DurationVar(&config.Duration, "duration", 60*time.Second, "Benchmark duration")
	flag.IntVar(&config.ForecastWorkers, "forecast-workers", 8, "Number of concurrent forecast workers")
	flag.IntVar(&config.MetaWorkers, "meta-workers", 2, "Number of concurrent metadata workers")
	flag.DurationVar(&config.MetaInterval, "meta-interval", 50*time.Millisecond, "Interval between metadata requests per worker")
	flag.Parse()

	// Fast statistical baselines keep the benchmark bound by transport, not models
	config.Models = []string{"naive", "seasonal_naive", "window_average", "random_walk_with_drift"}

	// Create shared HTTP client with connection pooling
	config.HTTPClient = &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	fmt.Printf("=== ForecastLab Benchmark Tool ===\n")
	fmt.Printf("Configuration:\n")
	fmt.Printf("  URL: %s\n", config.BaseURL)
	fmt.Printf("  Series Length: %d\n", config.SeriesLength)
	fmt.Printf("  Horizon: %d\n", config.Horizon)
	fmt.Printf("  Duration: %s\n", config.Duration)
	fmt.Printf("  Forecast Workers: %d\n", config.ForecastWorkers)
	fmt.Printf("  Metadata Workers: %d\n", config.MetaWorkers)
	fmt.Printf("  Metadata Interval: %s\n", config.MetaInterval)
	fmt.Printf("\n")

	if err := checkHealth(config); err != nil {
		fmt.Printf("Warning: health check failed: %v\n", err)
		fmt.Printf("Continuing anyway...\n")
	}

	// Run benchmark
	metrics := runBenchmark(config)

	// Calculate and display results
	forecastResult := calculateResult("Forecast", metrics.ForecastLatencies, metrics.ForecastSuccess, metrics.ForecastErrors, config.Duration, metrics.FirstForecastError)
	metaResult := calculateResult("Metadata", metrics.MetaLatencies, metrics.MetaSuccess, metrics.MetaErrors, config.Duration, metrics.FirstMetaError)

	fmt.Printf("\n=== Benchmark Results ===\n\n")
	displayResult(forecastResult)
	fmt.Println()
	displayResult(metaResult)

	// Save results to file
	saveResults(config, forecastResult, metaResult)
}

func checkHealth(config BenchmarkConfig) error {
	return makeRequest(config, "GET", config.BaseURL+"/health", nil)
}

func runBenchmark(config BenchmarkConfig) *Metrics {
	metrics := &Metrics{
		ForecastLatencies: make([]float64, 0, 10000),
		MetaLatencies:     make([]float64, 0, 1000),
	}

	var wg sync.WaitGroup
	stopCh := make(chan struct{})
	startTime := time.Now()

	// Start forecast workers
	for i := 0; i < config.ForecastWorkers; i++ {
		wg.Add(1)
		go forecastWorker(i, config, metrics, stopCh, &wg)
	}

	// Start metadata workers
	for i := 0; i < config.MetaWorkers; i++ {
		wg.Add(1)
		go metaWorker(i, config, metrics, stopCh, &wg)
	}

	// Progress reporter
	go progressReporter(metrics, config.Duration, startTime)

	// Wait for duration
	time.Sleep(config.Duration)
	close(stopCh)
	wg.Wait()

	return metrics
}

// generateRecords builds a noisy weekly-seasonal daily series
func generateRecords(rng *rand.Rand, n int) []map[string]interface{} {
	start := time.Now().UTC().AddDate(0, 0, -n)
	records := make([]map[string]interface{}, n)
	level := 100 + rng.Float64()*50
	for i := 0; i < n; i++ {
		seasonal := 10 * math.Sin(2*math.Pi*float64(i)/7)
		records[i] = map[string]interface{}{
			"ds": start.AddDate(0, 0, i).Format("2006-01-02"),
			"y":  level + 0.2*float64(i) + seasonal + rng.NormFloat64()*3,
		}
	}
	return records
}

func forecastWorker(id int, config BenchmarkConfig, metrics *Metrics, stopCh chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()

	rng := rand.New(rand.NewSource(int64(id) + 1))
	counter := 0

	for {
		select {
		case <-stopCh:
			return
		default:
			model := config.Models[counter%len(config.Models)]
			counter++

			payload := map[string]interface{}{
				"records":       generateRecords(rng, config.SeriesLength),
				"module_type":   "statistical",
				"model_type":    model,
				"freq":          "D",
				"season_length": 7,
				"horizon":       config.Horizon,
			}

			start := time.Now()
			err := makeRequest(config, "POST", config.BaseURL+"/forecast", payload)
			latency := time.Since(start).Seconds() * 1000 // ms

			metrics.mu.Lock()
			metrics.ForecastLatencies = append(metrics.ForecastLatencies, latency)
			metrics.mu.Unlock()

			if err != nil {
				atomic.AddInt64(&metrics.ForecastErrors, 1)
				metrics.mu.Lock()
				if metrics.FirstForecastError == "" {
					metrics.FirstForecastError = err.Error()
				}
				metrics.mu.Unlock()
			} else {
				atomic.AddInt64(&metrics.ForecastSuccess, 1)
			}
		}
	}
}

func metaWorker(id int, config BenchmarkConfig, metrics *Metrics, stopCh chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()

	ticker := time.NewTicker(config.MetaInterval)
	defer ticker.Stop()

	targets := []string{"/datasets", "/configs", "/health"}
	counter := id

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			url := config.BaseURL + targets[counter%len(targets)]
			counter++

			start := time.Now()
			err := makeRequest(config, "GET", url, nil)
			latency := time.Since(start).Seconds() * 1000 // ms

			metrics.mu.Lock()
			metrics.MetaLatencies = append(metrics.MetaLatencies, latency)
			metrics.mu.Unlock()

			if err != nil {
				atomic.AddInt64(&metrics.MetaErrors, 1)
				metrics.mu.Lock()
				if metrics.FirstMetaError == "" {
					metrics.FirstMetaError = err.Error()
				}
				metrics.mu.Unlock()
			} else {
				atomic.AddInt64(&metrics.MetaSuccess, 1)
			}
		}
	}
}

func progressReporter(metrics *Metrics, duration time.Duration, startTime time.Time) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		<-ticker.C
		elapsed := time.Since(startTime)
		if elapsed >= duration {
			return
		}

		forecasts := atomic.LoadInt64(&metrics.ForecastSuccess)
		meta := atomic.LoadInt64(&metrics.MetaSuccess)
		forecastErrors := atomic.LoadInt64(&metrics.ForecastErrors)
		metaErrors := atomic.LoadInt64(&metrics.MetaErrors)

		forecastThroughput := float64(forecasts) / elapsed.Seconds()
		metaThroughput := float64(meta) / elapsed.Seconds()

		remaining := duration - elapsed
		fmt.Printf("[%s remaining] Forecasts: %d (%.0f/s, %d errors) | Metadata: %d (%.0f/s, %d errors)\n",
			remaining.Round(time.Second), forecasts, forecastThroughput, forecastErrors,
			meta, metaThroughput, metaErrors)
	}
}

func makeRequest(config BenchmarkConfig, method, url string, data interface{}) error {
	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Connection", "keep-alive")

	resp, err := config.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	// Read and discard body to reuse connection
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	return nil
}

func calculateResult(operation string, latencies []float64, success, errors int64, duration time.Duration, errorMsg string) Result {
	if len(latencies) == 0 {
		return Result{
			Operation: operation,
			TotalOps:  success + errors,
			ErrorMsg:  errorMsg,
		}
	}

	// Sort for percentiles
	sort.Float64s(latencies)

	result := Result{
		Operation:  operation,
		TotalOps:   success + errors,
		SuccessOps: success,
		ErrorOps:   errors,
		Duration:   duration,
		Throughput: float64(success) / duration.Seconds(),
		MinLatency: latencies[0],
		MaxLatency: latencies[len(latencies)-1],
		P50Latency: percentile(latencies, 50),
		P95Latency: percentile(latencies, 95),
		P99Latency: percentile(latencies, 99),
		ErrorMsg:   errorMsg,
	}

	// Calculate average
	var sum float64
	for _, lat := range latencies {
		sum += lat
	}
	result.AvgLatency = sum / float64(len(latencies))

	return result
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	index := int(math.Ceil(float64(len(sorted)) * p / 100.0))
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}

func displayResult(r Result) {
	fmt.Printf("=== %s Operations ===\n", r.Operation)
	fmt.Printf("Total Operations: %d\n", r.TotalOps)
	if r.TotalOps > 0 {
		fmt.Printf("Success:          %d (%.2f%%)\n", r.SuccessOps, float64(r.SuccessOps)/float64(r.TotalOps)*100)
		fmt.Printf("Errors:           %d (%.2f%%)\n", r.ErrorOps, float64(r.ErrorOps)/float64(r.TotalOps)*100)
	}
	fmt.Printf("Duration:         %s\n", r.Duration)
	fmt.Printf("Throughput:       %.2f ops/sec\n", r.Throughput)
	if r.ErrorOps > 0 && len(r.ErrorMsg) > 0 {
		fmt.Printf("First Error:      %s\n", r.ErrorMsg)
	}
	fmt.Printf("\nLatency (ms):\n")
	fmt.Printf("  Min:  %.2f\n", r.MinLatency)
	fmt.Printf("  Avg:  %.2f\n", r.AvgLatency)
	fmt.Printf("  P50:  %.2f\n", r.P50Latency)
	fmt.Printf("  P95:  %.2f\n", r.P95Latency)
	fmt.Printf("  P99:  %.2f\n", r.P99Latency)
	fmt.Printf("  Max:  %.2f\n", r.MaxLatency)
}

func saveResults(config BenchmarkConfig, forecastResult, metaResult Result) {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("benchmark_results/api_benchmark_%s.txt", timestamp)

	if err := os.MkdirAll("benchmark_results", 0o755); err != nil {
		fmt.Printf("Failed to create result directory: %v\n", err)
		return
	}
	f, err := os.Create(filename)
	if err != nil {
		fmt.Printf("Failed to create result file: %v\n", err)
		return
	}
	defer func() { _ = f.Close() }()

	_, _ = fmt.Fprintf(f, "=== ForecastLab API Benchmark Results ===\n")
	_, _ = fmt.Fprintf(f, "Date: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))
	_, _ = fmt.Fprintf(f, "Configuration:\n")
	_, _ = fmt.Fprintf(f, "  URL: %s\n", config.BaseURL)
	_, _ = fmt.Fprintf(f, "  Series Length: %d\n", config.SeriesLength)
	_, _ = fmt.Fprintf(f, "  Horizon: %d\n", config.Horizon)
	_, _ = fmt.Fprintf(f, "  Duration: %s\n", config.Duration)
	_, _ = fmt.Fprintf(f, "  Forecast Workers: %d\n", config.ForecastWorkers)
	_, _ = fmt.Fprintf(f, "  Metadata Workers: %d\n", config.MetaWorkers)
	_, _ = fmt.Fprintf(f, "\n")

	writeResultToFile(f, forecastResult)
	_, _ = fmt.Fprintf(f, "\n")
	writeResultToFile(f, metaResult)

	fmt.Printf("\nResults saved to: %s\n", filename)
}

func writeResultToFile(f *os.File, r Result) {
	_, _ = fmt.Fprintf(f, "=== %s Operations ===\n", r.Operation)
	_, _ = fmt.Fprintf(f, "Total Operations: %d\n", r.TotalOps)
	if r.TotalOps > 0 {
		_, _ = fmt.Fprintf(f, "Success:          %d (%.2f%%)\n", r.SuccessOps, float64(r.SuccessOps)/float64(r.TotalOps)*100)
		_, _ = fmt.Fprintf(f, "Errors:           %d (%.2f%%)\n", r.ErrorOps, float64(r.ErrorOps)/float64(r.TotalOps)*100)
	}
	_, _ = fmt.Fprintf(f, "Duration:         %s\n", r.Duration)
	_, _ = fmt.Fprintf(f, "Throughput:       %.2f ops/sec\n", r.Throughput)
	_, _ = fmt.Fprintf(f, "\nLatency (ms):\n")
	_, _ = fmt.Fprintf(f, "  Min:  %.2f\n", r.MinLatency)
	_, _ = fmt.Fprintf(f, "  Avg:  %.2f\n", r.AvgLatency)
	_, _ = fmt.Fprintf(f, "  P50:  %.2f\n", r.P50Latency)
	_, _ = fmt.Fprintf(f, "  P95:  %.2f\n", r.P95Latency)
	_, _ = fmt.Fprintf(f, "  P99:  %.2f\n", r.P99Latency)
	_, _ = fmt.Fprintf(f, "  Max:  %.2f\n", r.MaxLatency)
}
