package patient

// Gender values accepted by the model service.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

type Ethnicity string

const (
	EthnicityCaucasian Ethnicity = "Caucasian"
	EthnicityAfrican   Ethnicity = "African"
	EthnicityHispanic  Ethnicity = "Hispanic"
	EthnicityAsian     Ethnicity = "Asian"
	EthnicityOther     Ethnicity = "Other"
)

type Smoking string

const (
	SmokingNever   Smoking = "Never"
	SmokingFormer  Smoking = "Former"
	SmokingCurrent Smoking = "Current"
)

type Alcohol string

const (
	AlcoholNone     Alcohol = "None"
	AlcoholLight    Alcohol = "Light"
	AlcoholModerate Alcohol = "Moderate"
	AlcoholHeavy    Alcohol = "Heavy"
)

type Activity string

const (
	ActivitySedentary Activity = "Sedentary"
	ActivityLight     Activity = "Light"
	ActivityModerate  Activity = "Moderate"
	ActivityVigorous  Activity = "Vigorous"
)

// Quality is shared by DietQuality and SleepQuality.
type Quality string

const (
	QualityPoor      Quality = "Poor"
	QualityFair      Quality = "Fair"
	QualityGood      Quality = "Good"
	QualityExcellent Quality = "Excellent"
)

var (
	validGenders     = map[Gender]bool{GenderMale: true, GenderFemale: true, GenderOther: true}
	validEthnicities = map[Ethnicity]bool{
		EthnicityCaucasian: true, EthnicityAfrican: true, EthnicityHispanic: true,
		EthnicityAsian: true, EthnicityOther: true,
	}
	validSmoking    = map[Smoking]bool{SmokingNever: true, SmokingFormer: true, SmokingCurrent: true}
	validAlcohol    = map[Alcohol]bool{AlcoholNone: true, AlcoholLight: true, AlcoholModerate: true, AlcoholHeavy: true}
	validActivities = map[Activity]bool{
		ActivitySedentary: true, ActivityLight: true, ActivityModerate: true, ActivityVigorous: true,
	}
	validQualities = map[Quality]bool{QualityPoor: true, QualityFair: true, QualityGood: true, QualityExcellent: true}
)

// Record is the 32-field payload the model service scores. JSON keys are the
// field names verbatim.
type Record struct {
	PatientID string `json:"PatientID"`

	Age            int       `json:"Age"`
	Gender         Gender    `json:"Gender"`
	Ethnicity      Ethnicity `json:"Ethnicity"`
	EducationLevel int       `json:"EducationLevel"`
	BMI            float64   `json:"BMI"`

	Smoking            Smoking  `json:"Smoking"`
	AlcoholConsumption Alcohol  `json:"AlcoholConsumption"`
	PhysicalActivity   Activity `json:"PhysicalActivity"`
	DietQuality        Quality  `json:"DietQuality"`
	SleepQuality       Quality  `json:"SleepQuality"`

	FamilyHistoryAlzheimers bool `json:"FamilyHistoryAlzheimers"`
	CardiovascularDisease   bool `json:"CardiovascularDisease"`
	Diabetes                bool `json:"Diabetes"`
	Depression              bool `json:"Depression"`
	HeadInjury              bool `json:"HeadInjury"`
	Hypertension            bool `json:"Hypertension"`

	SystolicBP               float64 `json:"SystolicBP"`
	DiastolicBP              float64 `json:"DiastolicBP"`
	CholesterolTotal         float64 `json:"CholesterolTotal"`
	CholesterolLDL           float64 `json:"CholesterolLDL"`
	CholesterolHDL           float64 `json:"CholesterolHDL"`
	CholesterolTriglycerides float64 `json:"CholesterolTriglycerides"`

	MMSE                 int     `json:"MMSE"`
	FunctionalAssessment float64 `json:"FunctionalAssessment"`
	ADL                  int     `json:"ADL"`

	MemoryComplaints          bool `json:"MemoryComplaints"`
	BehavioralProblems        bool `json:"BehavioralProblems"`
	Confusion                 bool `json:"Confusion"`
	Disorientation            bool `json:"Disorientation"`
	PersonalityChanges        bool `json:"PersonalityChanges"`
	DifficultyCompletingTasks bool `json:"DifficultyCompletingTasks"`
	Forgetfulness             bool `json:"Forgetfulness"`
}

// FieldNames lists every key of the wire record in declaration order.
var FieldNames = []string{
	"PatientID",
	"Age", "Gender", "Ethnicity", "EducationLevel", "BMI",
	"Smoking", "AlcoholConsumption", "PhysicalActivity", "DietQuality", "SleepQuality",
	"FamilyHistoryAlzheimers", "CardiovascularDisease", "Diabetes", "Depression", "HeadInjury", "Hypertension",
	"SystolicBP", "DiastolicBP", "CholesterolTotal", "CholesterolLDL", "CholesterolHDL", "CholesterolTriglycerides",
	"MMSE", "FunctionalAssessment", "ADL",
	"MemoryComplaints", "BehavioralProblems", "Confusion", "Disorientation",
	"PersonalityChanges", "DifficultyCompletingTasks", "Forgetfulness",
}

// RiskFactors returns the names of the history and symptom flags that are set.
func (r *Record) RiskFactors() []string {
	flags := []struct {
		name string
		set  bool
	}{
		{"FamilyHistoryAlzheimers", r.FamilyHistoryAlzheimers},
		{"CardiovascularDisease", r.CardiovascularDisease},
		{"Diabetes", r.Diabetes},
		{"Depression", r.Depression},
		{"HeadInjury", r.HeadInjury},
		{"Hypertension", r.Hypertension},
		{"MemoryComplaints", r.MemoryComplaints},
		{"BehavioralProblems", r.BehavioralProblems},
		{"Confusion", r.Confusion},
		{"Disorientation", r.Disorientation},
		{"PersonalityChanges", r.PersonalityChanges},
		{"DifficultyCompletingTasks", r.DifficultyCompletingTasks},
		{"Forgetfulness", r.Forgetfulness},
	}
	out := []string{}
	for _, f := range flags {
		if f.set {
			out = append(out, f.name)
		}
	}
	return out
}
