package formatter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleDocument() Document {
	return Document{Source: "schedule.csv", Query: "101", Rows: sampleViews()}
}

func TestValidateOutput(t *testing.T) {
	for _, o := range Outputs {
		assert.NoError(t, ValidateOutput(o))
	}
	err := ValidateOutput("xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table|json|yaml|toml|csv")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, OutputJSON, sampleDocument(), TableOptions{}))

	var decoded struct {
		Query string `json:"query"`
		Rows  []struct {
			State struct {
				NextOrdinal int `json:"next_ordinal"`
			} `json:"state"`
			Cells []struct {
				Class   string `json:"class"`
				Current bool   `json:"current"`
			} `json:"cells"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "101", decoded.Query)
	require.Len(t, decoded.Rows, 2)
	assert.Equal(t, 3, decoded.Rows[0].State.NextOrdinal)
	assert.Equal(t, "PAST", decoded.Rows[0].Cells[0].Class)
	assert.True(t, decoded.Rows[0].Cells[1].Current)
	assert.Equal(t, "NEXT", decoded.Rows[0].Cells[2].Class)
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, OutputYAML, sampleDocument(), TableOptions{}))

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "schedule.csv", decoded["source"])
	assert.Contains(t, buf.String(), "class: NEXT")
}

func TestWriteTOML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, OutputTOML, sampleDocument(), TableOptions{}))

	var decoded map[string]interface{}
	require.NoError(t, toml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "101", decoded["query"])
	assert.Contains(t, buf.String(), "NEXT")
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, OutputCSV, sampleDocument(), TableOptions{}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "subject,pointer,slots,next,slot1,slot2,slot3,slot4", lines[0])
	assert.Equal(t, "Maths,2,4,3,101:PAST,102:NEUTRAL*,101:NEXT,104:NEUTRAL", lines[1])
	assert.Equal(t, "Art,0,2,1,101:NEXT,300:NEUTRAL,,", lines[2])
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, OutputTable, sampleDocument(), TableOptions{NoColor: true}))
	assert.Contains(t, buf.String(), "Maths   2/4")
}

func TestWriteUnknown(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, "xml", sampleDocument(), TableOptions{}))
}
