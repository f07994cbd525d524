// Package clustering runs the purchase graph pipeline end to end:
// load and aggregate transactions, build the customer-product graph, detect
// communities by greedy modularity, compute metrics, optionally render, and
// persist the partition.
package clustering

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gilchrisn/purchase-graph-clustering/pkg/bipartite"
	"github.com/gilchrisn/purchase-graph-clustering/pkg/config"
	"github.com/gilchrisn/purchase-graph-clustering/pkg/coordinates"
	"github.com/gilchrisn/purchase-graph-clustering/pkg/greedy"
	"github.com/gilchrisn/purchase-graph-clustering/pkg/metrics"
	"github.com/gilchrisn/purchase-graph-clustering/pkg/models"
	"github.com/gilchrisn/purchase-graph-clustering/pkg/output"
	"github.com/gilchrisn/purchase-graph-clustering/pkg/parser"
	"github.com/gilchrisn/purchase-graph-clustering/pkg/render"
	"github.com/gilchrisn/purchase-graph-clustering/pkg/validation"
)

// ===== CONFIGURATION STRUCTS =====

// PurchaseClusteringConfig contains all configuration for one run
type PurchaseClusteringConfig struct {
	// Input
	InputFile string             `json:"input_file"`
	Load      parser.LoadOptions `json:"-"`

	// Algorithm
	Resolution float64 `json:"resolution"`

	// Presentation
	Layout   coordinates.Config `json:"layout"`
	PlotFile string             `json:"plot_file"` // empty disables rendering
	Renderer render.Renderer    `json:"-"`         // overrides PlotFile when set

	// Output
	ClustersFile string `json:"clusters_file"`

	RunID  string         `json:"run_id"` // generated when empty
	Logger zerolog.Logger `json:"-"`
}

// ===== RESULT STRUCTS =====

// ClusteringResult contains the results of a run
type ClusteringResult struct {
	RunID   string        `json:"run_id"`
	Success bool          `json:"success"`
	Error   string        `json:"error,omitempty"`
	Runtime time.Duration `json:"runtime"`

	// Input
	TotalRows   int `json:"total_rows"`
	SampledRows int `json:"sampled_rows"`
	NumNodes    int `json:"num_nodes"`
	NumEdges    int `json:"num_edges"`

	// Clustering results
	Partition      greedy.Partition `json:"partition"`
	Modularity     float64          `json:"modularity"`
	NumCommunities int              `json:"num_communities"`
	NumMerges      int              `json:"num_merges"`
	Report         *metrics.Report  `json:"report"`

	// Output files generated
	OutputFiles OutputFiles `json:"output_files"`

	// Kept for callers that need node identities
	Graph *bipartite.Graph `json:"-"`
}

// OutputFiles contains paths to all generated output files
type OutputFiles struct {
	ClustersFile string `json:"clusters_file"`
	PlotFile     string `json:"plot_file,omitempty"`
}

// ===== DEFAULT CONFIGURATIONS =====

// DefaultPurchaseConfig returns the standard run configuration
func DefaultPurchaseConfig() PurchaseClusteringConfig {
	return PurchaseClusteringConfig{
		Load:         parser.DefaultLoadOptions(),
		Resolution:   1.0,
		Layout:       coordinates.DefaultConfig(),
		ClustersFile: "clusters.json",
		Logger:       zerolog.Nop(),
	}
}

// FromSettings converts decoded settings into a run configuration
func FromSettings(s *config.Settings, logger zerolog.Logger) (PurchaseClusteringConfig, error) {
	load, err := s.LoadOptions(logger)
	if err != nil {
		return PurchaseClusteringConfig{}, &models.OpError{Op: "clustering.FromSettings", Kind: models.KindInvalidConfig, Err: err}
	}
	return PurchaseClusteringConfig{
		InputFile:    s.Input.Path,
		Load:         load,
		Resolution:   s.Algorithm.Resolution,
		Layout:       s.LayoutConfig(),
		PlotFile:     s.Output.Plot,
		ClustersFile: s.Output.Clusters,
		Logger:       logger,
	}, nil
}

// ===== MAIN CLUSTERING FUNCTION =====

// RunPurchaseClustering executes the pipeline. The cluster file is written
// last, so any failure before that point leaves no artifact behind.
func RunPurchaseClustering(ctx context.Context, cfg PurchaseClusteringConfig) (*ClusteringResult, error) {
	startTime := time.Now()

	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	logger := cfg.Logger.With().Str("run_id", cfg.RunID).Logger()
	cfg.Load.Logger = logger

	result := &ClusteringResult{RunID: cfg.RunID}
	fail := func(err error) (*ClusteringResult, error) {
		result.Error = err.Error()
		result.Runtime = time.Since(startTime)
		logger.Error().Err(err).Msg("Run failed")
		return result, err
	}

	// Step 1: Validate outputs before doing any work
	if cfg.ClustersFile == "" {
		return fail(&models.OpError{Op: "clustering.Run", Kind: models.KindInvalidConfig, Err: fmt.Errorf("clusters file is required")})
	}
	if err := validation.ValidateOutputPath(cfg.ClustersFile); err != nil {
		return fail(err)
	}

	// Step 2: Load, sample and aggregate
	dataset, err := parser.Load(cfg.InputFile, cfg.Load)
	if err != nil {
		return fail(err)
	}
	result.TotalRows = dataset.TotalRows
	result.SampledRows = dataset.SampledRows

	// Step 3: Build the customer-product graph
	g, err := bipartite.Build(dataset.Records)
	if err != nil {
		return fail(&models.OpError{Op: "clustering.Build", Kind: models.KindGraph, Err: err})
	}
	if err := validation.ValidateGraph(g); err != nil {
		return fail(err)
	}
	result.Graph = g
	result.NumNodes = g.NumNodes()
	result.NumEdges = g.NumEdges()
	logger.Info().
		Int("nodes", g.NumNodes()).
		Int("edges", g.NumEdges()).
		Int("customers", len(g.NodesOfKind(models.Customer))).
		Int("products", len(g.NodesOfKind(models.Product))).
		Msg("Built purchase graph")

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	// Step 4: Detect communities
	greedyConfig := greedy.DefaultConfig()
	greedyConfig.Resolution = cfg.Resolution
	greedyConfig.Logger = logger
	detected, err := greedy.Run(g, greedyConfig)
	if err != nil {
		return fail(&models.OpError{Op: "clustering.Detect", Kind: models.KindInternal, Err: err})
	}
	result.Partition = detected.Partition
	result.Modularity = detected.Modularity
	result.NumCommunities = detected.NumCommunities()
	result.NumMerges = detected.Statistics.Merges

	// Step 5: Metrics
	report, err := metrics.Compute(ctx, g, detected.Partition, cfg.Resolution)
	if err != nil {
		return fail(&models.OpError{Op: "clustering.Metrics", Kind: models.KindInternal, Err: err})
	}
	result.Report = report

	// Step 6: Render. Presentation failures do not invalidate the partition.
	if plotFile, err := renderGraph(cfg, g, detected.Partition, logger); err != nil {
		logger.Warn().Err(err).Msg("Rendering failed, continuing without plot")
	} else {
		result.OutputFiles.PlotFile = plotFile
	}

	// Step 7: Persist the partition
	if err := output.NewClusterWriter().Write(cfg.ClustersFile, g, detected.Partition); err != nil {
		return fail(&models.OpError{Op: "clustering.Write", Kind: models.KindInternal, Path: cfg.ClustersFile, Err: err})
	}
	result.OutputFiles.ClustersFile = cfg.ClustersFile

	result.Success = true
	result.Runtime = time.Since(startTime)
	logger.Info().
		Int("communities", result.NumCommunities).
		Float64("modularity", result.Modularity).
		Str("clusters_file", cfg.ClustersFile).
		Dur("runtime", result.Runtime).
		Msg("Run completed")

	return result, nil
}

func renderGraph(cfg PurchaseClusteringConfig, g *bipartite.Graph, p greedy.Partition, logger zerolog.Logger) (string, error) {
	renderer := cfg.Renderer
	if renderer == nil {
		if cfg.PlotFile == "" {
			return "", nil
		}
		plotRenderer, err := render.NewPlotRenderer(cfg.PlotFile)
		if err != nil {
			return "", err
		}
		renderer = plotRenderer
	}

	layout, err := coordinates.New(cfg.Layout)
	if err != nil {
		return "", err
	}
	positions, err := layout.Compute(g)
	if err != nil {
		return "", fmt.Errorf("layout failed: %w", err)
	}
	if err := renderer.Render(g, p, positions); err != nil {
		return "", err
	}

	logger.Info().Str("kind", string(cfg.Layout.Kind)).Str("plot_file", cfg.PlotFile).Msg("Rendered graph")
	return cfg.PlotFile, nil
}

// ===== VERIFICATION =====

// VerifyClusteringResult checks internal consistency of a result
func VerifyClusteringResult(result *ClusteringResult) error {
	if result == nil {
		return fmt.Errorf("result is nil")
	}
	if !result.Success {
		return fmt.Errorf("clustering was not successful: %s", result.Error)
	}
	if err := result.Partition.Validate(result.NumNodes); err != nil {
		return fmt.Errorf("invalid partition: %w", err)
	}
	if result.NumCommunities != len(result.Partition) {
		return fmt.Errorf("community count %d does not match partition size %d", result.NumCommunities, len(result.Partition))
	}
	if result.Report == nil {
		return fmt.Errorf("metrics report is missing")
	}
	return nil
}

// VerifyClusterFile checks that the cluster file on disk matches the result
func VerifyClusterFile(result *ClusteringResult) error {
	if result.Graph == nil {
		return fmt.Errorf("result carries no graph")
	}
	clusters, err := output.ReadClusters(result.OutputFiles.ClustersFile)
	if err != nil {
		return err
	}
	if len(clusters) != len(result.Partition) {
		return fmt.Errorf("cluster file has %d clusters, expected %d", len(clusters), len(result.Partition))
	}
	for ci, community := range result.Partition {
		label := output.ClusterLabel(ci)
		ids, ok := clusters[label]
		if !ok {
			return fmt.Errorf("cluster file is missing %s", label)
		}
		if len(ids) != len(community) {
			return fmt.Errorf("%s has %d members, expected %d", label, len(ids), len(community))
		}
		for i, node := range community {
			if want := result.Graph.Key(node).Canonical(); ids[i] != want {
				return fmt.Errorf("%s member %d is %d, expected %d", label, i, ids[i], want)
			}
		}
	}
	return nil
}
