package cli

import (
	"bytes"
	"fmt"
	"testing"
	"text/tabwriter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Symbol string `json:"symbol" yaml:"symbol"`
	Units  int    `json:"units" yaml:"units"`
}

func TestParseOutputFormat(t *testing.T) {
	for _, value := range []string{"table", "JSON", " yaml "} {
		_, err := parseOutputFormat(value)
		assert.NoError(t, err, value)
	}
	format, err := parseOutputFormat("")
	require.NoError(t, err)
	assert.Equal(t, outputTable, format)

	_, err = parseOutputFormat("xml")
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	v := sample{Symbol: "IRON_ORE", Units: 12}
	table := func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "SYMBOL\tUNITS")
		fmt.Fprintf(tw, "%s\t%d\n", v.Symbol, v.Units)
	}

	var out bytes.Buffer
	require.NoError(t, render(&out, outputJSON, v, table))
	assert.JSONEq(t, `{"symbol":"IRON_ORE","units":12}`, out.String())

	out.Reset()
	require.NoError(t, render(&out, outputYAML, v, table))
	assert.Equal(t, "symbol: IRON_ORE\nunits: 12\n", out.String())

	out.Reset()
	require.NoError(t, render(&out, outputTable, v, table))
	assert.Equal(t, "SYMBOL    UNITS\nIRON_ORE  12\n", out.String())
}
