package refdata_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raildelay/raildelay/internal/refdata"
)

const sampleYAML = `
trainTypes:
  - name: Nightjet
    company: NS Int
    numbers: [420, 402]
  - name: Intercity
    company: NS
    numbers: [1410, 1409]
stations:
  - code: UT
    name: Utrecht Centraal
  - code: AMS
    name: Amsterdam Centraal
platforms: ["1", "2", "5"]
`

func TestParse(t *testing.T) {
	d, err := refdata.Parse([]byte(sampleYAML))
	require.NoError(t, err)

	n, err := d.DefaultTrainNumber("Nightjet")
	require.NoError(t, err)
	assert.Equal(t, 420, n)

	types := d.TrainTypes()
	require.Len(t, types, 2)
	assert.Equal(t, "Nightjet", types[0].Name)
	assert.Equal(t, "Intercity", types[1].Name)

	st, ok := d.Station("AMS")
	require.True(t, ok)
	assert.Equal(t, "Amsterdam Centraal", st.Name)
	assert.True(t, d.HasPlatform("5"))
	assert.False(t, d.HasPlatform("3"))
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "empty numbers",
			yaml: `
trainTypes:
  - name: Nightjet
    company: NS Int
    numbers: []
stations: [{code: UT, name: Utrecht}]
platforms: ["1"]
`,
		},
		{
			name: "missing stations",
			yaml: `
trainTypes:
  - {name: Nightjet, company: NS Int, numbers: [420]}
platforms: ["1"]
`,
		},
		{
			name: "duplicate station code",
			yaml: `
trainTypes:
  - {name: Nightjet, company: NS Int, numbers: [420]}
stations: [{code: UT, name: Utrecht}, {code: UT, name: Utrecht 2}]
platforms: ["1"]
`,
		},
		{
			name: "negative number",
			yaml: `
trainTypes:
  - {name: Nightjet, company: NS Int, numbers: [-1]}
stations: [{code: UT, name: Utrecht}]
platforms: ["1"]
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := refdata.Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, refdata.ErrInvalidData)
		})
	}
}

func TestParse_MalformedYAML(t *testing.T) {
	_, err := refdata.Parse([]byte("trainTypes: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding reference data")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refdata.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	d, err := refdata.LoadFile(path)
	require.NoError(t, err)
	assert.True(t, d.ValidTrainNumber("Intercity", 1409))
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := refdata.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading reference data")
}
