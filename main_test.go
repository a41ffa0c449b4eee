package main

import (
	"testing"

	"stormscrape/internal/config"
	"stormscrape/internal/llm"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeaders(t *testing.T) {
	got := parseHeaders([]string{"Accept-Language: en-US", "bad header", " : empty key", "X-Trace:a:b"})
	assert.Equal(t, map[string]string{
		"Accept-Language": "en-US",
		"X-Trace":         "a:b",
	}, got)
}

func TestTargetURL(t *testing.T) {
	t.Cleanup(func() { fileCfg = config.File{} })

	fileCfg = config.File{}
	assert.Equal(t, defaultURL, targetURL(nil))

	fileCfg = config.File{URL: "en.wikipedia.org/wiki/1976_Atlantic_hurricane_season"}
	assert.Equal(t, "https://en.wikipedia.org/wiki/1976_Atlantic_hurricane_season", targetURL(nil))
	assert.Equal(t, "http://localhost:8080/page", targetURL([]string{"http://localhost:8080/page"}))
}

func TestApplyFileConfigKeepsExplicitFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	var out, prov string
	cmd.Flags().StringVar(&out, "output", "default.csv", "")
	cmd.Flags().StringVar(&prov, "provider", "replicate", "")
	require.NoError(t, cmd.Flags().Parse([]string{"--output", "flag.csv"}))

	savedOutput, savedProvider := outputFile, provider
	t.Cleanup(func() { outputFile, provider = savedOutput, savedProvider })
	outputFile, provider = out, prov

	applyFileConfig(cmd, config.File{Output: "file.csv", LLM: llm.Settings{Provider: "openai"}})
	assert.Equal(t, "flag.csv", outputFile)
	assert.Equal(t, "openai", provider)
}

func TestLLMSettingsReplyFileSelectsCanned(t *testing.T) {
	savedProvider, savedReply := provider, replyFile
	t.Cleanup(func() { provider, replyFile = savedProvider, savedReply })

	provider, replyFile = "replicate", "reply.txt"
	s := llmSettings()
	assert.Equal(t, "canned", s.Provider)
	assert.Equal(t, "reply.txt", s.ReplyFile)
}

func TestLLMSettingsKeyFromDotEnv(t *testing.T) {
	savedProvider, savedReply, savedEnv := provider, replyFile, dotEnv
	t.Cleanup(func() { provider, replyFile, dotEnv = savedProvider, savedReply, savedEnv })

	provider, replyFile = "openai", ""
	dotEnv = config.Env{"OPENAI_API_KEY": "sk_dotenv"}
	assert.Equal(t, "sk_dotenv", llmSettings().APIKey)
}

func TestValidateFlags(t *testing.T) {
	savedFormat, savedProvider, savedOutput := dataFormat, provider, outputFile
	t.Cleanup(func() { dataFormat, provider, outputFile = savedFormat, savedProvider, savedOutput })

	dataFormat, provider, outputFile = "text", "replicate", "out.csv"
	require.NoError(t, validateFlags())

	dataFormat = "yaml"
	assert.ErrorContains(t, validateFlags(), "invalid data format")

	dataFormat, provider = "markdown", "palm"
	assert.ErrorContains(t, validateFlags(), "invalid provider")
}
