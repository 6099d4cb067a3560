package detection

import (
	"io"
	"time"
)

// Features are the lesion measurements shown alongside a prediction.
type Features struct {
	Area        int     `json:"area"`
	Perimeter   float64 `json:"perimeter"`
	Circularity float64 `json:"circularity"`
	Asymmetry   float64 `json:"asymmetry"`
}

// ClassProbability is one entry of the per-class distribution.
type ClassProbability struct {
	Class       string  `json:"class"`
	Probability float64 `json:"probability"`
}

// Prediction is the classifier output for one image.
type Prediction struct {
	Class        string             `json:"class"`
	Confidence   float64            `json:"confidence"`
	Distribution []ClassProbability `json:"distribution"`
	Features     Features           `json:"features"`
}

// Record is a persisted detection result.
type Record struct {
	ID             int64              `json:"id"`
	PatientID      int64              `json:"patientId"`
	PatientName    string             `json:"patientName,omitempty"`
	ImageKey       string             `json:"-"`
	ContentType    string             `json:"contentType"`
	Prediction     string             `json:"prediction"`
	Confidence     float64            `json:"confidence"`
	Distribution   []ClassProbability `json:"distribution"`
	Features       Features           `json:"features"`
	LesionLocation string             `json:"lesionLocation,omitempty"`
	Notes          string             `json:"notes,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
}

// Result joins a record with its class metadata.
type Result struct {
	Record
	Class ClassInfo `json:"class"`
}

// AnalyzeRequest carries one uploaded lesion image.
type AnalyzeRequest struct {
	PatientID      int64
	Filename       string
	MimeType       string
	Image          []byte
	LesionLocation string
	Notes          string
}

// HistoryFilter narrows history queries; zero values match everything.
type HistoryFilter struct {
	PatientID  int64
	RiskLevels []string
	Diagnoses  []string
}

// Image is an opened stored lesion image.
type Image struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// Config holds upload limits.
type Config struct {
	MaxImageBytes    int64
	AllowedMimeTypes []string
}
