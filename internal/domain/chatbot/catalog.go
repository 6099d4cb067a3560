package chatbot

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Intent identifies an app area the assistant can point users to.
type Intent string

const (
	IntentDetection   Intent = "detection"
	IntentPatientInfo Intent = "patient_info"
	IntentHistory     Intent = "history"
)

// FAQEntry is a single stored question and its canned answer.
type FAQEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Catalog is the immutable knowledge the responder draws from.
type Catalog struct {
	FAQs             []FAQEntry        `json:"faqs"`
	GeneralResponses []string          `json:"general_responses"`
	NavigationHelp   map[Intent]string `json:"navigation_help"`
}

// DefaultCatalog returns the built-in catalog used when no usable source exists.
func DefaultCatalog() *Catalog {
	return &Catalog{
		FAQs: []FAQEntry{
			{
				Question: "What are the warning signs of melanoma?",
				Answer:   "Look for the ABCDE warning signs: Asymmetry, Border irregularity, Color variation, Diameter larger than 6mm, and Evolving size, shape, or color. If you notice any of these signs, consult a dermatologist promptly.",
			},
			{
				Question: "How often should I check my skin?",
				Answer:   "It's recommended to perform a self-examination once a month. Additionally, people with higher risk factors should have a professional skin examination by a dermatologist at least once a year.",
			},
			{
				Question: "What SPF sunscreen should I use?",
				Answer:   "Dermatologists recommend using a broad-spectrum sunscreen with an SPF of at least 30, which blocks 97% of UVB rays. Apply it generously and reapply every two hours, or more frequently if swimming or sweating.",
			},
			{
				Question: "How does the SkinScan app work?",
				Answer:   "SkinScan analyzes images of skin lesions. After you upload a photo, the model processes it and provides a prediction about the potential diagnosis, along with a confidence score and recommendations.",
			},
			{
				Question: "Can SkinScan diagnose my condition?",
				Answer:   "No, SkinScan cannot provide a medical diagnosis. It's designed as a supportive tool for healthcare professionals. All results should be reviewed by a qualified medical professional, and the app should not replace a consultation with a doctor.",
			},
		},
		GeneralResponses: []string{
			"I'm here to provide information about skin cancer and help you navigate the SkinScan app. For medical concerns, please consult a healthcare professional.",
			"That's an interesting question. While I can provide general information about skin health, I recommend discussing specific concerns with a dermatologist.",
			"I can help answer general questions about skin cancer and skin health, but remember that I'm not a replacement for professional medical advice.",
		},
		NavigationHelp: map[Intent]string{
			IntentDetection:   "To use the detection feature, go to the 'Skin Cancer Detection' page from the main menu. There you can upload an image of a skin lesion for analysis.",
			IntentPatientInfo: "You can manage patient information on the 'Patient Information' page. This allows you to add new patients or select existing ones before performing a detection.",
			IntentHistory:     "The 'Detection History' page shows all previous analyses for the current patient or all patients. You can filter and sort the history as needed.",
		},
	}
}

// ParseCatalog decodes a JSON catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := catalog.validate(); err != nil {
		return nil, err
	}
	return &catalog, nil
}

// ReadCatalog loads and parses the catalog file at path.
func ReadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

func (c *Catalog) validate() error {
	if len(c.GeneralResponses) == 0 {
		return errors.New("catalog has no general responses")
	}
	for i, entry := range c.FAQs {
		if strings.TrimSpace(entry.Question) == "" || strings.TrimSpace(entry.Answer) == "" {
			return fmt.Errorf("catalog faq %d is missing a question or answer", i)
		}
	}
	return nil
}

// CatalogLoader resolves the catalog at most once and caches it for the
// lifetime of the process.
type CatalogLoader struct {
	path   string
	logger *slog.Logger

	once    sync.Once
	catalog *Catalog
}

// NewCatalogLoader builds a loader for the given path. An empty path always
// resolves to the default catalog.
func NewCatalogLoader(path string, logger *slog.Logger) *CatalogLoader {
	return &CatalogLoader{
		path:   strings.TrimSpace(path),
		logger: logger.With("component", "chatbot.catalog"),
	}
}

// Catalog returns the cached catalog, loading it on first use.
func (l *CatalogLoader) Catalog() *Catalog {
	l.once.Do(func() {
		l.catalog = l.load()
	})
	return l.catalog
}

func (l *CatalogLoader) load() *Catalog {
	if l.path == "" {
		l.logger.Info("faq catalog path not set, using default catalog")
		return DefaultCatalog()
	}
	catalog, err := ReadCatalog(l.path)
	if err != nil {
		l.logger.Warn("faq catalog unavailable, using default catalog", "path", l.path, "error", err)
		return DefaultCatalog()
	}
	l.logger.Info("faq catalog loaded", "path", l.path, "faqs", len(catalog.FAQs))
	return catalog
}
