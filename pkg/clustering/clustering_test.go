package clustering

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gilchrisn/purchase-graph-clustering/pkg/bipartite"
	"github.com/gilchrisn/purchase-graph-clustering/pkg/coordinates"
	"github.com/gilchrisn/purchase-graph-clustering/pkg/greedy"
	"github.com/gilchrisn/purchase-graph-clustering/pkg/models"
)

// TestData holds the paths of a generated run
type TestData struct {
	InputFile    string
	ClustersFile string
	TempDir      string
}

var categoryLabels = []string{"Books", "Electronics", "Home", "Clothing"}

// setupTestData writes a synthetic transaction export
func setupTestData(t testing.TB, rows int, seed uint64) *TestData {
	t.Helper()
	tempDir := t.TempDir()

	rng := rand.New(rand.NewPCG(seed, seed))
	var sb strings.Builder
	sb.WriteString("Customer ID,Purchase Date,Product Category,Product Price,Quantity,Customer Name\n")
	for i := 0; i < rows; i++ {
		customer := rng.IntN(rows/4+1) + 1
		// customers lean towards one category
		category := categoryLabels[(customer+rng.IntN(2)*rng.IntN(4))%len(categoryLabels)]
		fmt.Fprintf(&sb, "%d,2023-01-%02d,%s,%d.99,%d,\"Name %d\"\n",
			customer, i%28+1, category, rng.IntN(400)+10, rng.IntN(5)+1, customer)
	}

	inputFile := filepath.Join(tempDir, "transactions.csv")
	if err := os.WriteFile(inputFile, []byte(sb.String()), 0644); err != nil {
		t.Fatalf("Failed to write test data: %v", err)
	}

	return &TestData{
		InputFile:    inputFile,
		ClustersFile: filepath.Join(tempDir, "out", "clusters.json"),
		TempDir:      tempDir,
	}
}

func testConfig(data *TestData, fraction float64) PurchaseClusteringConfig {
	config := DefaultPurchaseConfig()
	config.InputFile = data.InputFile
	config.ClustersFile = data.ClustersFile
	config.Load.Fraction = fraction
	return config
}

func TestDefaultConfiguration(t *testing.T) {
	config := DefaultPurchaseConfig()

	if config.Load.Fraction != 0.005 {
		t.Errorf("Expected default fraction 0.005, got %f", config.Load.Fraction)
	}
	if config.Load.Seed != 42 {
		t.Errorf("Expected default seed 42, got %d", config.Load.Seed)
	}
	if config.Resolution != 1.0 {
		t.Errorf("Expected resolution 1.0, got %f", config.Resolution)
	}
	if config.ClustersFile != "clusters.json" {
		t.Errorf("Expected clusters.json, got %s", config.ClustersFile)
	}
	if config.PlotFile != "" {
		t.Errorf("Expected rendering disabled by default, got %s", config.PlotFile)
	}
}

func TestRunPurchaseClustering(t *testing.T) {
	data := setupTestData(t, 800, 1)
	config := testConfig(data, 0.25)

	result, err := RunPurchaseClustering(context.Background(), config)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if err := VerifyClusteringResult(result); err != nil {
		t.Fatalf("Result verification failed: %v", err)
	}
	if err := VerifyClusterFile(result); err != nil {
		t.Fatalf("Cluster file verification failed: %v", err)
	}

	if result.TotalRows != 800 {
		t.Errorf("Expected 800 rows, got %d", result.TotalRows)
	}
	if result.SampledRows != 200 {
		t.Errorf("Expected 200 sampled rows, got %d", result.SampledRows)
	}
	if result.RunID == "" {
		t.Error("Expected a run id")
	}

	independent := greedy.Modularity(result.Graph, result.Partition, 1.0)
	if math.Abs(independent-result.Modularity) > 1e-9 {
		t.Errorf("Modularity %f differs from independent %f", result.Modularity, independent)
	}
	if result.Report.NumNodes != result.NumNodes {
		t.Errorf("Report covers %d nodes, graph has %d", result.Report.NumNodes, result.NumNodes)
	}

	t.Logf("Run: %d nodes, %d edges, %d communities, modularity %.4f",
		result.NumNodes, result.NumEdges, result.NumCommunities, result.Modularity)
}

func TestRunIsDeterministic(t *testing.T) {
	data := setupTestData(t, 600, 2)

	first := testConfig(data, 0.3)
	if _, err := RunPurchaseClustering(context.Background(), first); err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	firstBytes, err := os.ReadFile(data.ClustersFile)
	if err != nil {
		t.Fatalf("Failed to read first output: %v", err)
	}

	second := testConfig(data, 0.3)
	second.ClustersFile = filepath.Join(data.TempDir, "again", "clusters.json")
	if _, err := RunPurchaseClustering(context.Background(), second); err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	secondBytes, err := os.ReadFile(second.ClustersFile)
	if err != nil {
		t.Fatalf("Failed to read second output: %v", err)
	}

	if string(firstBytes) != string(secondBytes) {
		t.Errorf("Cluster files differ:\n%s\n%s", firstBytes, secondBytes)
	}
}

func TestRunUnknownCategoryWritesNothing(t *testing.T) {
	data := setupTestData(t, 40, 3)
	content, err := os.ReadFile(data.InputFile)
	if err != nil {
		t.Fatal(err)
	}
	content = append(content, []byte("1,2023-02-01,Garden,5.00,1,\"Name 1\"\n")...)
	if err := os.WriteFile(data.InputFile, content, 0644); err != nil {
		t.Fatal(err)
	}

	result, err := RunPurchaseClustering(context.Background(), testConfig(data, 1))
	if err == nil {
		t.Fatal("Expected unknown category error")
	}
	if !errors.Is(err, models.ErrUnknownCategory) {
		t.Errorf("Expected ErrUnknownCategory, got %v", err)
	}
	if !strings.Contains(err.Error(), "Garden") {
		t.Errorf("Expected error to name the label, got %v", err)
	}
	if result.Success {
		t.Error("Expected unsuccessful result")
	}
	if _, statErr := os.Stat(data.ClustersFile); !os.IsNotExist(statErr) {
		t.Errorf("Expected no cluster file, stat returned %v", statErr)
	}
}

func TestRunMissingInput(t *testing.T) {
	data := setupTestData(t, 10, 4)
	config := testConfig(data, 1)
	config.InputFile = filepath.Join(data.TempDir, "missing.csv")

	_, err := RunPurchaseClustering(context.Background(), config)
	if !models.IsKind(err, models.KindNotFound) {
		t.Errorf("Expected not_found error, got %v", err)
	}
	if _, statErr := os.Stat(data.ClustersFile); !os.IsNotExist(statErr) {
		t.Error("Expected no cluster file")
	}
}

func TestRunEmptySample(t *testing.T) {
	// 100 rows at 0.5% rounds to zero rows
	data := setupTestData(t, 100, 5)
	result, err := RunPurchaseClustering(context.Background(), testConfig(data, 0.005))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.NumNodes != 0 || result.NumCommunities != 0 {
		t.Errorf("Expected empty graph, got %d nodes %d communities", result.NumNodes, result.NumCommunities)
	}
	if result.Report.Diameter.String() != "Inf" {
		t.Errorf("Expected Inf diameter, got %s", result.Report.Diameter)
	}

	content, err := os.ReadFile(data.ClustersFile)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	if string(content) != "{}" {
		t.Errorf("Expected empty object, got %s", content)
	}
}

type recordingRenderer struct {
	calls     int
	positions int
}

func (r *recordingRenderer) Render(g *bipartite.Graph, p greedy.Partition, positions map[int]coordinates.Position) error {
	r.calls++
	r.positions = len(positions)
	return nil
}

type failingRenderer struct{}

func (failingRenderer) Render(*bipartite.Graph, greedy.Partition, map[int]coordinates.Position) error {
	return errors.New("no display")
}

func TestRunUsesRenderer(t *testing.T) {
	data := setupTestData(t, 200, 6)
	recorder := &recordingRenderer{}
	config := testConfig(data, 0.5)
	config.Renderer = recorder

	result, err := RunPurchaseClustering(context.Background(), config)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if recorder.calls != 1 {
		t.Errorf("Expected one render call, got %d", recorder.calls)
	}
	if recorder.positions != result.NumNodes {
		t.Errorf("Expected %d positions, got %d", result.NumNodes, recorder.positions)
	}
}

func TestRunRenderFailureIsNotFatal(t *testing.T) {
	data := setupTestData(t, 200, 7)
	config := testConfig(data, 0.5)
	config.Renderer = failingRenderer{}

	result, err := RunPurchaseClustering(context.Background(), config)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.OutputFiles.PlotFile != "" {
		t.Errorf("Expected no plot file, got %s", result.OutputFiles.PlotFile)
	}
	if err := VerifyClusterFile(result); err != nil {
		t.Errorf("Cluster file verification failed: %v", err)
	}
}

func TestRunWritesPlot(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping rendering in short mode")
	}
	data := setupTestData(t, 200, 8)
	config := testConfig(data, 0.5)
	config.PlotFile = filepath.Join(data.TempDir, "graph.png")

	result, err := RunPurchaseClustering(context.Background(), config)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.OutputFiles.PlotFile != config.PlotFile {
		t.Errorf("Expected plot %s, got %s", config.PlotFile, result.OutputFiles.PlotFile)
	}
	if info, err := os.Stat(config.PlotFile); err != nil || info.Size() == 0 {
		t.Errorf("Expected non-empty plot file, stat err %v", err)
	}
}

func TestRunCancelled(t *testing.T) {
	data := setupTestData(t, 100, 9)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunPurchaseClustering(ctx, testConfig(data, 1))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if _, statErr := os.Stat(data.ClustersFile); !os.IsNotExist(statErr) {
		t.Error("Expected no cluster file")
	}
}

func BenchmarkRunPurchaseClustering(b *testing.B) {
	data := setupTestData(b, 2000, 10)
	config := testConfig(data, 0.2)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := RunPurchaseClustering(context.Background(), config); err != nil {
			b.Fatalf("Run failed: %v", err)
		}
	}
}
