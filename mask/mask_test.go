package mask_test

import (
	"strings"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/scexpr/encoding/vcf"
	"github.com/grailbio/scexpr/expression"
	"github.com/grailbio/scexpr/mask"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func newTable(t *testing.T, samples []string, rows ...string) *vcf.Table {
	data := "##fileformat=VCFv4.2\n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\t" + strings.Join(samples, "\t") + "\n"
	for _, r := range rows {
		data += r + "\n"
	}
	tbl, err := vcf.Parse(strings.NewReader(data), vcf.DefaultReadOpts)
	assert.NoError(t, err)
	return tbl
}

func row(pos string, gts ...string) string {
	return "1\t" + pos + "\t.\tA\tC\t.\tPASS\t.\tGT:AD\t" + strings.Join(gts, "\t")
}

// newCounts returns a matrix with one row per cell; every entry is 1 except
// the listed zero genes.
func newCounts(ngenes int, zeros map[string][]int, cells ...string) *expression.Counts {
	c := expression.NewCounts(cells, expression.GeneNames(ngenes))
	for i, cell := range cells {
		for g := 0; g < ngenes; g++ {
			c.Set(i, g, 1)
		}
		for _, g := range zeros[cell] {
			c.Set(i, g, 0)
		}
	}
	return c
}

func TestMaskGenotype(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		masked bool
	}{
		{"0|1:20,5", ".|.:20,5", true},
		{"1|1:0,9", ".|.:0,9", true},
		{"0|0:", ".|.:", true},
		{"1|0:3,3:0|1", ".|.:3,3:0|1", true},
		{"0|1", "0|1", false},
		{"0/1:20,5", "0/1:20,5", false},
		{"2|1:4,4", "2|1:4,4", false},
		{".|.:4,4", ".|.:4,4", false},
		{"10|1:4", "10|1:4", false},
		{"x0|1:4", "x0|1:4", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := mask.MaskGenotype(tt.in)
		expect.EQ(t, got, tt.want, tt.in)
		expect.EQ(t, ok, tt.masked, tt.in)
	}
}

func TestMaskScenario(t *testing.T) {
	// Genome of 100 bases, 10 genes of width 10. cell1 has zero counts for
	// genes 0 and 2.
	tbl := newTable(t, []string{"cell1", "cell2"},
		row("5", "0|1:20,5", "0|1:20,5"),
		row("15", "0|1:7,7", "1|1:0,9"),
		row("25", "1|0:3,3", "0|0:8,0"),
	)
	counts := newCounts(10, map[string][]int{"cell1": {0, 2}}, "cell1", "cell2")
	stats, err := mask.Mask(tbl, counts, 100)
	assert.NoError(t, err)
	expect.EQ(t, stats.Masked, 2)
	expect.EQ(t, stats.Cells, 2)
	expect.EQ(t, stats.Unmapped, 0)
	expect.EQ(t, len(stats.SkippedCells), 0)

	expect.EQ(t, tbl.Records[0].Fields[9], ".|.:20,5")
	expect.EQ(t, tbl.Records[1].Fields[9], "0|1:7,7")
	expect.EQ(t, tbl.Records[2].Fields[9], ".|.:3,3")
	// cell2 has no zero genes.
	expect.EQ(t, tbl.Records[0].Fields[10], "0|1:20,5")
	expect.EQ(t, tbl.Records[1].Fields[10], "1|1:0,9")
	expect.EQ(t, tbl.Records[2].Fields[10], "0|0:8,0")
	// Fixed columns are never touched.
	expect.EQ(t, tbl.Records[0].Fields[:9], []string{"1", "5", ".", "A", "C", ".", "PASS", ".", "GT:AD"})
}

func TestMaskBoundary(t *testing.T) {
	tbl := newTable(t, []string{"cell1"},
		row("99", "0|1:1,1"),
		row("100", "0|1:1,1"),
		row("104", "0|1:1,1"),
	)
	// Width 10 over 105 bases: 99 is in gene 9, 100 and 104 are past the last
	// gene and stay unmasked even though every gene is zero.
	counts := newCounts(10, map[string][]int{"cell1": {0, 1, 2, 3, 4, 5, 6, 7, 8, 9}}, "cell1")
	stats, err := mask.Mask(tbl, counts, 105)
	assert.NoError(t, err)
	expect.EQ(t, stats.Masked, 1)
	expect.EQ(t, stats.Unmapped, 2)
	expect.EQ(t, tbl.Records[0].Fields[9], ".|.:1,1")
	expect.EQ(t, tbl.Records[1].Fields[9], "0|1:1,1")
	expect.EQ(t, tbl.Records[2].Fields[9], "0|1:1,1")
}

func TestMaskLastGene(t *testing.T) {
	tbl := newTable(t, []string{"cell1"}, row("99", "1|1:0,4"))
	counts := newCounts(10, map[string][]int{"cell1": {9}}, "cell1")
	stats, err := mask.Mask(tbl, counts, 100)
	assert.NoError(t, err)
	expect.EQ(t, stats.Masked, 1)
	expect.EQ(t, tbl.Records[0].Fields[9], ".|.:0,4")
}

func TestMaskSkippedCells(t *testing.T) {
	tbl := newTable(t, []string{"cell1", "vcfonly"},
		row("5", "0|1:1,1", "0|1:1,1"),
	)
	counts := newCounts(10, map[string][]int{"cell1": {0}, "countsonly": {0}}, "countsonly", "cell1")
	stats, err := mask.Mask(tbl, counts, 100)
	assert.NoError(t, err)
	expect.EQ(t, stats.Masked, 1)
	expect.EQ(t, stats.Cells, 1)
	expect.EQ(t, stats.SkippedCells, []string{"vcfonly", "countsonly"})
	expect.EQ(t, tbl.Records[0].Fields[9], ".|.:1,1")
	expect.EQ(t, tbl.Records[0].Fields[10], "0|1:1,1")
}

func TestMaskInvalidGeneCount(t *testing.T) {
	for _, tt := range []struct {
		name         string
		ngenes       int
		genomeLength int
	}{
		{"zero_genes", 0, 100},
		{"too_many_genes", 11, 10},
	} {
		tbl := newTable(t, []string{"cell1"}, row("5", "0|1:1,1"))
		counts := newCounts(tt.ngenes, nil, "cell1")
		_, err := mask.Mask(tbl, counts, tt.genomeLength)
		expect.True(t, errors.Is(errors.Invalid, err), tt.name)
		expect.EQ(t, tbl.Records[0].Fields[9], "0|1:1,1", tt.name)
	}
}
