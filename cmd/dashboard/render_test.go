package main

import (
	"bytes"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCommand_WritesJSONAndPNG(t *testing.T) {
	out := new(bytes.Buffer)
	pngPath := filepath.Join(t.TempDir(), "trends.png")

	rootCmd.SetOut(out)
	rootCmd.SetArgs([]string{"render", "--view", "trends", "--seed", "9", "--png", pngPath})
	require.NoError(t, rootCmd.Execute())

	var res struct {
		View  string `json:"view"`
		Chart struct {
			Status string `json:"status"`
		} `json:"chart"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, "trends", res.View)
	assert.Equal(t, "ok", res.Chart.Status)

	f, err := os.Open(pngPath)
	require.NoError(t, err)
	defer f.Close()
	_, err = png.Decode(f)
	assert.NoError(t, err)
}

func TestRenderCommand_UnknownView(t *testing.T) {
	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"render", "--view", "weather", "--png", ""})
	assert.Error(t, rootCmd.Execute())
}
