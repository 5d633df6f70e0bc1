package interval_test

import (
	"bytes"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/scexpr/interval"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestNewGeneMap(t *testing.T) {
	tests := []struct {
		name         string
		genomeLength int
		ngenes       int
		wantErr      bool
		wantWidth    int
	}{
		{"even", 100, 10, false, 10},
		{"uneven", 105, 10, false, 10},
		{"one_gene", 7, 1, false, 7},
		{"one_base_genes", 7, 7, false, 1},
		{"zero_genes", 100, 0, true, 0},
		{"negative_genes", 100, -3, true, 0},
		{"too_many_genes", 10, 11, true, 0},
	}
	for _, tt := range tests {
		m, err := interval.NewGeneMap(tt.genomeLength, tt.ngenes)
		if tt.wantErr {
			expect.True(t, errors.Is(errors.Invalid, err), tt.name)
			continue
		}
		assert.NoError(t, err, tt.name)
		expect.EQ(t, m.Width, tt.wantWidth, tt.name)
	}
}

func TestGene(t *testing.T) {
	m, err := interval.NewGeneMap(100, 10)
	assert.NoError(t, err)
	tests := []struct {
		pos    int
		gene   int
		mapped bool
	}{
		{0, 0, true},
		{5, 0, true},
		{9, 0, true},
		{10, 1, true},
		{15, 1, true},
		{99, 9, true},
		{100, 10, false},
		{-1, -1, false},
	}
	for _, tt := range tests {
		g, ok := m.Gene(tt.pos)
		expect.EQ(t, ok, tt.mapped, "pos %d", tt.pos)
		expect.EQ(t, g, tt.gene, "pos %d", tt.pos)
	}
}

func TestGeneRemainder(t *testing.T) {
	// Width 10; positions 100..104 fall past the last gene.
	m, err := interval.NewGeneMap(105, 10)
	assert.NoError(t, err)
	expect.EQ(t, m.Unmapped(), 5)
	g, ok := m.Gene(99)
	expect.True(t, ok)
	expect.EQ(t, g, 9)
	_, ok = m.Gene(104)
	expect.False(t, ok)
	start, end := m.Interval(9)
	expect.EQ(t, start, 90)
	expect.EQ(t, end, 100)
}

func TestWriteBED(t *testing.T) {
	m, err := interval.NewGeneMap(10, 3)
	assert.NoError(t, err)
	var buf bytes.Buffer
	assert.NoError(t, m.WriteBED(&buf, "1"))
	expect.EQ(t, buf.String(), "1\t0\t3\tGene1\n1\t3\t6\tGene2\n1\t6\t9\tGene3\n")
}
