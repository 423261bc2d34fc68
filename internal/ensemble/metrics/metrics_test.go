package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tansive/conductor/internal/catalog"
	"github.com/tansive/conductor/internal/ensemble"
)

func TestCollector(t *testing.T) {
	c := New()

	c.EditStaged(catalog.KindCreateTable)
	c.EditStaged(catalog.KindCreateTable)
	c.EditStaged(catalog.KindAddColumn)
	c.ActionExecuted(ensemble.ActionCreateTable)
	c.CommitFailed()
	c.Committed()

	assert.Equal(t, 2.0, testutil.ToFloat64(c.EditsStaged.WithLabelValues("create_table")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.EditsStaged.WithLabelValues("add_column")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ActionsExecuted.WithLabelValues("create_table")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.CommitFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Commits))
	assert.Greater(t, testutil.ToFloat64(c.LastCommit), 0.0)
}

func TestCollectorsAreIndependent(t *testing.T) {
	a := New()
	b := New()
	a.CommitFailed()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.CommitFailures))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.CommitFailures))
}

func TestWriteTextfile(t *testing.T) {
	c := New()
	c.EditStaged(catalog.KindCreateNamespace)

	path := filepath.Join(t.TempDir(), "conductor.prom")
	require.NoError(t, c.WriteTextfile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `conductor_edits_staged_total{kind="create_namespace"} 1`)
}
