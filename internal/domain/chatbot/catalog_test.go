package chatbot

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleCatalog = `{
  "faqs": [
    {"question": "Zeta question?", "answer": "zeta"},
    {"question": "Alpha question?", "answer": "alpha"}
  ],
  "general_responses": ["only fallback"],
  "navigation_help": {"history": "history help"}
}`

func TestParseCatalogKeepsOrder(t *testing.T) {
	catalog, err := ParseCatalog([]byte(sampleCatalog))
	require.NoError(t, err)
	require.Len(t, catalog.FAQs, 2)
	require.Equal(t, "zeta", catalog.FAQs[0].Answer)
	require.Equal(t, "alpha", catalog.FAQs[1].Answer)
	require.Equal(t, "history help", catalog.NavigationHelp[IntentHistory])
}

func TestParseCatalogRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"invalid json":         `{"faqs": [`,
		"no general responses": `{"faqs": [], "general_responses": []}`,
		"blank answer":         `{"faqs": [{"question": "q", "answer": " "}], "general_responses": ["x"]}`,
	}
	for name, raw := range cases {
		_, err := ParseCatalog([]byte(raw))
		require.Error(t, err, name)
	}
}

func TestDefaultCatalogShape(t *testing.T) {
	catalog := DefaultCatalog()
	require.Len(t, catalog.FAQs, 5)
	require.Len(t, catalog.GeneralResponses, 3)
	for _, intent := range []Intent{IntentDetection, IntentPatientInfo, IntentHistory} {
		require.NotEmpty(t, catalog.NavigationHelp[intent])
	}
}

func TestCatalogLoaderFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	corrupt := filepath.Join(dir, "corrupt.json")
	require.NoError(t, os.WriteFile(corrupt, []byte("not json"), 0o600))

	for _, path := range []string{"", filepath.Join(dir, "missing.json"), corrupt} {
		loader := NewCatalogLoader(path, newTestLogger())
		require.Equal(t, DefaultCatalog(), loader.Catalog(), path)
	}
}

func TestCatalogLoaderReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faq_data.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0o600))

	loader := NewCatalogLoader(path, newTestLogger())
	catalog := loader.Catalog()
	require.Equal(t, "zeta", catalog.FAQs[0].Answer)

	// Later edits are not picked up; the first load is cached.
	require.NoError(t, os.WriteFile(path, []byte("broken"), 0o600))
	require.Same(t, catalog, loader.Catalog())
}

func TestCatalogLoaderConcurrentFirstAccess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faq_data.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0o600))
	loader := NewCatalogLoader(path, newTestLogger())

	const workers = 16
	results := make([]*Catalog, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = loader.Catalog()
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		require.Same(t, results[0], got)
	}
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}
