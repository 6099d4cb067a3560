package detection

// ClassInfo describes one HAM10000 lesion class.
type ClassInfo struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	RiskLevel      string `json:"riskLevel"`
	Recommendation string `json:"recommendation"`
}

// Risk levels in ascending order of concern.
const (
	RiskVeryLow    = "Very Low"
	RiskLow        = "Low"
	RiskMedium     = "Medium"
	RiskMediumHigh = "Medium-High"
	RiskHigh       = "High"
)

var classes = []ClassInfo{
	{
		Code:           "akiec",
		Name:           "Actinic Keratoses and Intraepithelial Carcinoma",
		Description:    "Actinic keratoses and intraepithelial carcinoma (Bowen's disease) are common non-melanoma skin cancers or pre-cancers.",
		RiskLevel:      RiskMediumHigh,
		Recommendation: "Immediate dermatologist consultation. Early treatment is important to prevent progression.",
	},
	{
		Code:           "bcc",
		Name:           "Basal Cell Carcinoma",
		Description:    "Basal cell carcinoma is the most common type of skin cancer. It rarely metastasizes but can cause significant local damage if left untreated.",
		RiskLevel:      RiskMedium,
		Recommendation: "Needs dermatologist consultation. Several treatment options are available depending on size and location.",
	},
	{
		Code:           "bkl",
		Name:           "Benign Keratosis-like Lesions",
		Description:    "Benign keratosis-like lesions include seborrheic keratoses, solar lentigo and lichen-planus like keratosis. These are non-cancerous growths.",
		RiskLevel:      RiskLow,
		Recommendation: "Generally benign, but monitoring is recommended. Consult a dermatologist if changes occur.",
	},
	{
		Code:           "df",
		Name:           "Dermatofibroma",
		Description:    "Dermatofibroma is a common benign skin growth that often appears as a small, firm bump, usually on the legs.",
		RiskLevel:      RiskVeryLow,
		Recommendation: "Typically benign and requires no treatment unless causing discomfort.",
	},
	{
		Code:           "mel",
		Name:           "Melanoma",
		Description:    "Melanoma is the most dangerous form of skin cancer. It develops from the pigment-producing cells known as melanocytes.",
		RiskLevel:      RiskHigh,
		Recommendation: "Immediate medical attention required. Early detection and treatment are crucial for survival.",
	},
	{
		Code:           "nv",
		Name:           "Melanocytic Nevi",
		Description:    "Melanocytic nevi are benign moles. Most people have several and they are usually harmless.",
		RiskLevel:      RiskVeryLow,
		Recommendation: "Generally benign, but regular monitoring for changes in size, shape or color is recommended.",
	},
	{
		Code:           "vasc",
		Name:           "Vascular Lesions",
		Description:    "Vascular lesions include cherry angiomas, angiokeratomas and pyogenic granulomas. Most are benign.",
		RiskLevel:      RiskLow,
		Recommendation: "Usually benign, but consult a dermatologist if they bleed or change rapidly.",
	},
}

// Classes returns the seven lesion classes in model output order.
func Classes() []ClassInfo {
	out := make([]ClassInfo, len(classes))
	copy(out, classes)
	return out
}

// LookupClass finds class metadata by code.
func LookupClass(code string) (ClassInfo, bool) {
	for _, c := range classes {
		if c.Code == code {
			return c, true
		}
	}
	return ClassInfo{}, false
}

// Locations is the closed set of body sites a lesion can be tagged with.
var Locations = []string{
	"Face", "Scalp", "Ear", "Neck", "Chest", "Back", "Abdomen", "Trunk",
	"Upper Extremity", "Lower Extremity", "Hand", "Foot", "Other",
}
