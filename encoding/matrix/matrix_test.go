package matrix_test

import (
	"bytes"
	"context"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/ipc"
	"github.com/grailbio/scexpr/encoding/matrix"
	"github.com/grailbio/scexpr/expression"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

func testCounts(ncells, ngenes int) *expression.Counts {
	cells := make([]string, ncells)
	for i := range cells {
		cells[i] = "cell" + string(rune('A'+i%26))
	}
	c := expression.NewCounts(cells, expression.GeneNames(ngenes))
	for i := 0; i < ncells; i++ {
		for g := 0; g < ngenes; g++ {
			c.Set(i, g, uint32(i*ngenes+g))
		}
	}
	return c
}

func TestWriteTSV(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, matrix.WriteTSV(&buf, testCounts(2, 3)))
	expect.EQ(t, buf.String(), "cell\tGene1\tGene2\tGene3\ncellA\t0\t1\t2\ncellB\t3\t4\t5\n")
}

func readArrow(t *testing.T, data []byte) (names []string, cells []string, rows [][]uint32) {
	reader, err := ipc.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer reader.Release()
	for _, f := range reader.Schema().Fields() {
		names = append(names, f.Name)
	}
	for reader.Next() {
		record := reader.Record()
		cellCol, ok := record.Column(0).(*array.String)
		require.True(t, ok, "cell column is not a string column")
		for r := 0; r < int(record.NumRows()); r++ {
			cells = append(cells, cellCol.Value(r))
			row := make([]uint32, record.NumCols()-1)
			for c := 1; c < int(record.NumCols()); c++ {
				col, ok := record.Column(c).(*array.Uint32)
				require.True(t, ok, "gene column is not a uint32 column")
				row[c-1] = col.Value(r)
			}
			rows = append(rows, row)
		}
	}
	require.NoError(t, reader.Err())
	return
}

func TestArrowWriteRead(t *testing.T) {
	counts := testCounts(23, 4)
	for _, chunkSize := range []int{1, 5, 23, 100} {
		var buf bytes.Buffer
		require.NoError(t, matrix.WriteArrow(&buf, counts, chunkSize))
		names, cells, rows := readArrow(t, buf.Bytes())
		require.Equal(t, []string{"cell", "Gene1", "Gene2", "Gene3", "Gene4"}, names)
		require.Equal(t, counts.Cells, cells)
		require.Len(t, rows, 23)
		for i, row := range rows {
			require.Equal(t, counts.Row(i), row, "chunk size %d row %d", chunkSize, i)
		}
	}
}

func TestArrowWriterMismatch(t *testing.T) {
	var buf bytes.Buffer
	aw, err := matrix.NewArrowWriter(&buf, []string{"Gene1", "Gene2"}, 10)
	require.NoError(t, err)
	require.Error(t, aw.Write("cellA", []uint32{1}))
	require.NoError(t, aw.Close())

	_, err = matrix.NewArrowWriter(&buf, []string{"Gene1"}, 0)
	require.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := context.Background()
	counts := testCounts(3, 2)

	tsvPath := filepath.Join(tmpdir, "a.counts.tsv")
	assert.NoError(t, matrix.Write(ctx, tsvPath, counts, matrix.FormatTSV))
	data, err := ioutil.ReadFile(tsvPath)
	assert.NoError(t, err)
	expect.EQ(t, string(data), "cell\tGene1\tGene2\ncellA\t0\t1\ncellB\t2\t3\ncellC\t4\t5\n")

	arrowPath := filepath.Join(tmpdir, "a.counts.arrows")
	assert.NoError(t, matrix.Write(ctx, arrowPath, counts, matrix.FormatArrow))
	data, err = ioutil.ReadFile(arrowPath)
	assert.NoError(t, err)
	_, cells, rows := readArrow(t, data)
	expect.EQ(t, cells, counts.Cells)
	expect.EQ(t, rows[2], []uint32{4, 5})

	expect.NotNil(t, matrix.Write(ctx, filepath.Join(tmpdir, "a.counts.csv"), counts, "csv"))
}

func TestExt(t *testing.T) {
	ext, err := matrix.Ext(matrix.FormatTSV)
	assert.NoError(t, err)
	expect.EQ(t, ext, ".counts.tsv")
	ext, err = matrix.Ext(matrix.FormatArrow)
	assert.NoError(t, err)
	expect.EQ(t, ext, ".counts.arrows")
	_, err = matrix.Ext("parquet")
	expect.NotNil(t, err)
}
