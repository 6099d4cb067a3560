package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAsk_Greeting(t *testing.T) {
	out, err := runCLI(t, "ask", "hi")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "Hello! How can I help"))
}

func TestAsk_ExplainFAQ(t *testing.T) {
	out, err := runCLI(t, "ask", "--explain", "how", "often", "should", "I", "check", "my", "skin?")
	require.NoError(t, err)
	require.Contains(t, out, "source: faq")
	require.Contains(t, out, "matched: How often should I check my skin?")
}

func TestAsk_ExplainNavigation(t *testing.T) {
	out, err := runCLI(t, "ask", "--explain", "where is my history")
	require.NoError(t, err)
	require.Contains(t, out, "source: navigation")
	require.Contains(t, out, "intent: history")
}

func TestAsk_RequiresQuestion(t *testing.T) {
	_, err := runCLI(t, "ask")
	require.Error(t, err)
}

func TestCheckCatalog(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte(`{
		"faqs": [{"question": "What is UV?", "answer": "Ultraviolet light."}],
		"general_responses": ["Ask me about skin health."],
		"navigation_help": {"history": "Open History."}
	}`), 0o600))
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"faqs": [`), 0o600))

	out, err := runCLI(t, "check-catalog", good)
	require.NoError(t, err)
	require.Contains(t, out, "ok: 1 faqs, 1 general responses, 1 navigation topics")

	out, err = runCLI(t, "check-catalog", bad)
	require.Error(t, err)
	require.Contains(t, out, "built-in catalog would be used")

	_, err = runCLI(t, "check-catalog", filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}
