package pdfstruct_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rothskeller/pdfunmark/internal/pdftest"
	"github.com/rothskeller/pdfunmark/pdfstruct"
)

func TestReadXRefSimple(t *testing.T) {
	pdf, records := pdftest.Simple(3, "WM")
	buf := pdfstruct.NewBuffer(pdf)

	sections, err := buf.ReadXRef()
	require.NoError(t, err)
	require.Len(t, sections, 1)
	sec := sections[0]
	assert.EqualValues(t, bytes.Index(pdf, []byte("xref\n")), sec.Offset)
	assert.EqualValues(t, bytes.LastIndex(pdf, []byte("startxref")), sec.StartXRef)
	assert.Equal(t, 4, sec.Declared)
	assert.Nil(t, sec.Mismatch())
	assert.Empty(t, sec.Anomalies)
	require.Len(t, sec.Entries, 4)

	assert.Equal(t, pdfstruct.XRefEntry{
		Number: 0, Offset: 0, Generation: 65535, InUse: false, Record: records[0], Length: 20,
	}, sec.Entries[0])
	for n := 1; n <= 3; n++ {
		e := sec.Entries[n]
		assert.Equal(t, n, e.Number)
		assert.True(t, e.InUse)
		assert.EqualValues(t, bytes.Index(pdf, []byte(fmt.Sprintf("%d 0 obj", n))), e.Offset)
		assert.Equal(t, records[n], e.Record)
		assert.Equal(t, pdfstruct.RecordSize, e.Length)
	}
}

func TestReadXRefCRLFRecords(t *testing.T) {
	b := pdftest.New("1.7").EOL("\r\n")
	b.Object(1, "<< /Type /Catalog >>")
	x := b.XRef([]int{0, 1})
	b.Trailer(2, x, 0)

	sections, err := pdfstruct.NewBuffer(b.Bytes()).ReadXRef()
	require.NoError(t, err)
	require.Len(t, sections[0].Entries, 2)
	for _, e := range sections[0].Entries {
		assert.Equal(t, 20, e.Length)
	}
}

func TestReadXRefSkipsMalformedLines(t *testing.T) {
	b := pdftest.New("1.4")
	obj := b.Object(1, "<< /Type /Catalog >>")
	x := b.Len()
	b.Raw("xref\n0 2\n0000000000 65535 f \n")
	bogus := b.Len()
	b.Raw("bogus line\n")
	b.Raw("0000000001 00000 x \n")
	record := b.Len()
	b.Raw(fmt.Sprintf("%010d 00000 n \n", obj))
	b.Trailer(2, x, 0)

	sections, err := pdfstruct.NewBuffer(b.Bytes()).ReadXRef()
	require.NoError(t, err)
	sec := sections[0]
	require.Len(t, sec.Anomalies, 2)
	assert.Equal(t, bogus, sec.Anomalies[0].Offset)
	assert.Equal(t, "bogus line", sec.Anomalies[0].Line)
	assert.Contains(t, sec.Anomalies[1].Reason, "flag")

	require.Len(t, sec.Entries, 2)
	assert.Equal(t, 1, sec.Entries[1].Number, "skipped lines do not consume object numbers")
	assert.Equal(t, record, sec.Entries[1].Record)
	assert.Equal(t, obj, sec.Entries[1].Offset)
	assert.Nil(t, sec.Mismatch())
}

func TestReadXRefCountMismatch(t *testing.T) {
	b := pdftest.New("1.4")
	obj := b.Object(1, "<< /Type /Catalog >>")
	x := b.Len()
	b.Raw("xref\n0 3\n0000000000 65535 f \n")
	b.Raw(fmt.Sprintf("%010d 00000 n \n", obj))
	b.Trailer(2, x, 0)

	sections, err := pdfstruct.NewBuffer(b.Bytes()).ReadXRef()
	require.NoError(t, err)
	m := sections[0].Mismatch()
	require.NotNil(t, m)
	assert.Equal(t, 3, m.Declared)
	assert.Equal(t, 2, m.Parsed)
	assert.Equal(t, x, m.Offset)
}

func TestReadXRefSubsections(t *testing.T) {
	b := pdftest.New("1.4")
	b.Object(1, "<< /Type /Catalog >>")
	b.Object(3, "<< /A 3 >>")
	b.Object(4, "<< /A 4 >>")
	x := b.XRef([]int{0, 3, 4})
	b.Trailer(5, x, 0)

	sections, err := pdfstruct.NewBuffer(b.Bytes()).ReadXRef()
	require.NoError(t, err)
	sec := sections[0]
	assert.Empty(t, sec.Anomalies)
	assert.Equal(t, 3, sec.Declared)
	var numbers []int
	for _, e := range sec.Entries {
		numbers = append(numbers, e.Number)
	}
	assert.Equal(t, []int{0, 3, 4}, numbers)
}

func TestReadXRefTrailerOnSameLine(t *testing.T) {
	b := pdftest.New("1.4")
	obj := b.Object(1, "<< /Type /Catalog >>")
	x := b.Len()
	b.Raw("xref\n0 2\n0000000000 65535 f \n")
	b.Raw(fmt.Sprintf("%010d 00000 n \n", obj))
	b.Raw(fmt.Sprintf("trailer<< /Size 2 >>\nstartxref\n%d\n%%%%EOF\n", x))

	sections, err := pdfstruct.NewBuffer(b.Bytes()).ReadXRef()
	require.NoError(t, err)
	assert.Len(t, sections[0].Entries, 2)
}

func TestReadXRefChained(t *testing.T) {
	pdf := chained(t)

	sections, err := pdfstruct.NewBuffer(pdf).ReadXRef()
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Less(t, sections[0].Offset, sections[1].Offset)
	require.Len(t, sections[0].Entries, 3)
	require.Len(t, sections[1].Entries, 2)
	assert.Equal(t, 3, sections[1].Entries[1].Number)
}

func TestReadXRefFatal(t *testing.T) {
	tests := map[string]func(b *pdftest.Builder){
		"missing trailer": func(b *pdftest.Builder) {
			x := b.Len()
			b.Raw("xref\n0 1\n0000000000 65535 f \n")
			b.Raw(fmt.Sprintf("startxref\n%d\n%%%%EOF\n", x))
		},
		"xref stream": func(b *pdftest.Builder) {
			x := b.Object(5, "<< /Type /XRef /Size 6 /W [1 2 1] /Length 0 >>\nstream\n\nendstream")
			b.Raw(fmt.Sprintf("startxref\n%d\n%%%%EOF\n", x))
		},
		"unparsable offset": func(b *pdftest.Builder) {
			b.Raw("startxref\nabc\n%%EOF\n")
		},
		"offset out of range": func(b *pdftest.Builder) {
			b.Raw("startxref\n99999\n%%EOF\n")
		},
		"bad subsection header": func(b *pdftest.Builder) {
			x := b.Len()
			b.Raw("xref\nzero one\n0000000000 65535 f \n")
			b.Trailer(1, x, 0)
		},
	}
	for name, build := range tests {
		t.Run(name, func(t *testing.T) {
			b := pdftest.New("1.4")
			b.Object(1, "<< /Type /Catalog >>")
			build(b)
			_, err := pdfstruct.NewBuffer(b.Bytes()).ReadXRef()
			assert.ErrorIs(t, err, pdfstruct.ErrMalformed)
		})
	}
}

func TestParseEntry(t *testing.T) {
	e, err := pdfstruct.ParseEntry(7, []byte("0000001234 00002 n \r\n"))
	require.NoError(t, err)
	assert.Equal(t, pdfstruct.XRefEntry{Offset: 1234, Generation: 2, InUse: true, Record: 7}, e)

	for _, line := range []string{"", "0000001234 00002", "0000001234 00002 n extra", "abc 00000 n", "0000001234 -1 n"} {
		_, err = pdfstruct.ParseEntry(0, []byte(line))
		var anomaly *pdfstruct.LineAnomaly
		assert.ErrorAs(t, err, &anomaly, "line %q", line)
	}
}
