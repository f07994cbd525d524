package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"

	"github.com/gilchrisn/purchase-graph-clustering/pkg/bipartite"
	"github.com/gilchrisn/purchase-graph-clustering/pkg/greedy"
)

// ClusterLabel returns the label of the i-th community
func ClusterLabel(i int) string {
	return fmt.Sprintf("Cluster_%d", i)
}

// ClusterWriter persists a partition as a label -> member ids JSON object.
// Keys follow partition order, so the object is streamed rather than
// marshalled from a map.
type ClusterWriter struct {
	api jsoniter.API
}

// NewClusterWriter creates a cluster file writer
func NewClusterWriter() *ClusterWriter {
	return &ClusterWriter{api: jsoniter.ConfigCompatibleWithStandardLibrary}
}

// Encode writes the cluster object to w using ", " and ": " separators.
func (cw *ClusterWriter) Encode(w io.Writer, g *bipartite.Graph, p greedy.Partition) error {
	stream := jsoniter.NewStream(cw.api, w, 4096)

	stream.WriteObjectStart()
	for ci, community := range p {
		if ci > 0 {
			stream.WriteRaw(", ")
		}
		stream.WriteString(ClusterLabel(ci))
		stream.WriteRaw(": ")

		stream.WriteArrayStart()
		for i, node := range community {
			if i > 0 {
				stream.WriteRaw(", ")
			}
			stream.WriteInt64(g.Key(node).Canonical())
		}
		stream.WriteArrayEnd()
	}
	stream.WriteObjectEnd()

	if stream.Error != nil {
		return fmt.Errorf("failed to encode clusters: %w", stream.Error)
	}
	return stream.Flush()
}

// Write saves the cluster file at path. The content goes to a temporary
// file in the same directory that is renamed into place, so a failed write
// leaves no partial artifact.
func (cw *ClusterWriter) Write(path string, g *bipartite.Graph, p greedy.Partition) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".clusters-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temporary cluster file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = cw.Encode(tmp, g, p); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync cluster file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close cluster file: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to set cluster file mode: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move cluster file into place: %w", err)
	}
	return nil
}

// ReadClusters loads a cluster file back as label -> ids
func ReadClusters(path string) (map[string][]int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	clusters := make(map[string][]int64)
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &clusters); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return clusters, nil
}
