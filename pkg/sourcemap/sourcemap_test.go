package sourcemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		mappings string
		want     Table
	}{
		{
			name:     "empty",
			mappings: "",
			want:     nil,
		},
		{
			name:     "single record",
			mappings: "AAIE",
			want: Table{
				{GeneratedLine: 1, GeneratedColumn: 0, Source: 0, OriginalLine: 5, OriginalColumn: 2, Name: NoIndex},
			},
		},
		{
			name:     "leading empty line",
			mappings: ";AAIE",
			want: Table{
				{GeneratedLine: 2, GeneratedColumn: 0, Source: 0, OriginalLine: 5, OriginalColumn: 2, Name: NoIndex},
			},
		},
		{
			name:     "generated-only segment and name",
			mappings: "A,EAAAA;CCCCC",
			want: Table{
				{GeneratedLine: 1, GeneratedColumn: 0, Source: NoIndex, Name: NoIndex},
				{GeneratedLine: 1, GeneratedColumn: 2, Source: 0, OriginalLine: 1, OriginalColumn: 0, Name: 0},
				{GeneratedLine: 2, GeneratedColumn: 1, Source: 1, OriginalLine: 2, OriginalColumn: 1, Name: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.mappings)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name     string
		mappings string
	}{
		{name: "bad digit", mappings: "AA!A"},
		{name: "truncated value", mappings: "g"},
		{name: "two fields", mappings: "AA"},
		{name: "negative column", mappings: "D"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.mappings)
			require.Error(t, err)
			var decErr *DecodeError
			assert.ErrorAs(t, err, &decErr)
		})
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	for _, mappings := range []string{
		"AAIE",
		";AAIE",
		"A,EAAAA;CCCCC",
		"AAAA,IAAI,QAAQ;;AACA,gBAAgB",
	} {
		t.Run(mappings, func(t *testing.T) {
			table, err := Decode(mappings)
			require.NoError(t, err)
			got, err := Encode(table)
			require.NoError(t, err)
			assert.Equal(t, mappings, got)
		})
	}
}

func TestEncode_MultiDigitDeltas(t *testing.T) {
	table := Table{
		{GeneratedLine: 1, GeneratedColumn: 1000, Source: 0, OriginalLine: 123457, OriginalColumn: 15, Name: NoIndex},
		{GeneratedLine: 1, GeneratedColumn: 1016, Source: 0, OriginalLine: 2, OriginalColumn: 0, Name: NoIndex},
	}

	got, err := Encode(table)
	require.NoError(t, err)
	assert.Equal(t, "w+BAgkxHe,gBA/jxHf", got)

	back, err := Decode(got)
	require.NoError(t, err)
	assert.Equal(t, table, back)
}

func TestEncode_RejectsOutOfOrder(t *testing.T) {
	_, err := Encode(Table{
		{GeneratedLine: 2, Source: NoIndex, Name: NoIndex},
		{GeneratedLine: 1, Source: NoIndex, Name: NoIndex},
	})
	assert.Error(t, err)

	_, err = Encode(Table{{GeneratedLine: 0, Source: NoIndex, Name: NoIndex}})
	assert.Error(t, err)
}

func TestShift(t *testing.T) {
	input := Table{
		{GeneratedLine: 1, GeneratedColumn: 0, Source: 0, OriginalLine: 5, OriginalColumn: 2, Name: NoIndex},
		{GeneratedLine: 1, GeneratedColumn: 7, Source: NoIndex, Name: NoIndex},
		{GeneratedLine: 3, GeneratedColumn: 4, Source: 1, OriginalLine: 9, OriginalColumn: 0, Name: 2},
	}
	snapshot := append(Table(nil), input...)

	shifted := Shift(input, 1)

	require.Len(t, shifted, len(input))
	assert.Equal(t, snapshot, input, "input must not be modified")
	for i := range input {
		assert.Equal(t, input[i].GeneratedLine+1, shifted[i].GeneratedLine)
		assert.Equal(t, input[i].GeneratedColumn, shifted[i].GeneratedColumn)
		assert.Equal(t, input[i].Source, shifted[i].Source)
		assert.Equal(t, input[i].OriginalLine, shifted[i].OriginalLine)
		assert.Equal(t, input[i].OriginalColumn, shifted[i].OriginalColumn)
		assert.Equal(t, input[i].Name, shifted[i].Name)
	}
}

func TestShift_Composes(t *testing.T) {
	input, err := Decode("AAAA,IAAI;;AACA,gBAAgB;E")
	require.NoError(t, err)

	for _, d := range [][2]int{{0, 0}, {1, 1}, {1, 3}, {5, 2}} {
		twice := Shift(Shift(input, d[0]), d[1])
		for i := range input {
			assert.Equal(t, input[i].GeneratedLine+d[0]+d[1], twice[i].GeneratedLine)
			assert.Equal(t, input[i].GeneratedColumn, twice[i].GeneratedColumn)
			assert.Equal(t, input[i].OriginalLine, twice[i].OriginalLine)
			assert.Equal(t, input[i].OriginalColumn, twice[i].OriginalColumn)
		}
	}
}

func TestShift_OneLineIsLeadingSemicolon(t *testing.T) {
	table, err := Decode("AAIE,EAAC;AACA")
	require.NoError(t, err)

	got, err := Encode(Shift(table, 1))
	require.NoError(t, err)
	assert.Equal(t, ";AAIE,EAAC;AACA", got)
}

func TestMap_ParseAndBytes(t *testing.T) {
	raw := []byte(`{"version":3,"file":"main.js","sources":["a.js"],"names":[],"mappings":"AAIE"}`)

	m, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "main.js", m.File)
	assert.Equal(t, []string{"a.js"}, m.Sources)

	table, err := m.Table()
	require.NoError(t, err)
	require.Len(t, table, 1)
	assert.Equal(t, "a.js", m.SourceName(table[0]))

	shifted, err := m.WithTable(Shift(table, 1))
	require.NoError(t, err)
	assert.Equal(t, ";AAIE", shifted.Mappings)
	assert.Equal(t, "AAIE", m.Mappings, "original map must not change")

	out, err := shifted.Bytes()
	require.NoError(t, err)
	back, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, shifted, back)
}

func TestMap_ParseRejectsVersion(t *testing.T) {
	_, err := Parse([]byte(`{"version":2,"sources":[],"names":[],"mappings":""}`))
	assert.Error(t, err)

	_, err = Parse([]byte(`not json`))
	assert.Error(t, err)
}

func TestMap_TableRejectsUndeclaredSource(t *testing.T) {
	m := &Map{Version: Version, Sources: []string{"a.js"}, Mappings: "AAAA,ACAA"}
	_, err := m.Table()
	assert.Error(t, err)
}

func TestMap_Clone(t *testing.T) {
	content := "var a;"
	m := &Map{Version: Version, Sources: []string{"a.js"}, SourcesContent: []*string{&content}, Names: []string{"a"}}
	c := m.Clone()
	c.Sources[0] = "b.js"
	*c.SourcesContent[0] = "changed"

	assert.Equal(t, "a.js", m.Sources[0])
	assert.Equal(t, "var a;", *m.SourcesContent[0])
}
