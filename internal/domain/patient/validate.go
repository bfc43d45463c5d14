package patient

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
)

var patientIDPattern = regexp.MustCompile(`^PID\d{1,4}$`)

// NewID returns a client-side identifier of the form PID<0-9999>.
func NewID() string {
	return fmt.Sprintf("PID%d", rand.Intn(10000))
}

// ValidID reports whether id has the PID<0-9999> shape.
func ValidID(id string) bool {
	return patientIDPattern.MatchString(id)
}

type bound struct {
	field    string
	value    float64
	min, max float64
}

// Validate applies clinical range checks. The model service is the final
// authority; this only catches values no form could legitimately produce.
func (r *Record) Validate() error {
	var problems []string
	if !ValidID(r.PatientID) {
		problems = append(problems, fmt.Sprintf("PatientID %q must match PID<0-9999>", r.PatientID))
	}

	bounds := []bound{
		{"Age", float64(r.Age), 0, 120},
		{"EducationLevel", float64(r.EducationLevel), 0, 30},
		{"BMI", r.BMI, 10, 60},
		{"MMSE", float64(r.MMSE), 0, 30},
		{"FunctionalAssessment", r.FunctionalAssessment, 0, 100},
		{"ADL", float64(r.ADL), 0, 6},
		{"SystolicBP", r.SystolicBP, 0, 300},
		{"DiastolicBP", r.DiastolicBP, 0, 200},
		{"CholesterolTotal", r.CholesterolTotal, 0, 1000},
		{"CholesterolLDL", r.CholesterolLDL, 0, 1000},
		{"CholesterolHDL", r.CholesterolHDL, 0, 1000},
		{"CholesterolTriglycerides", r.CholesterolTriglycerides, 0, 2000},
	}
	for _, b := range bounds {
		if b.value < b.min || b.value > b.max {
			problems = append(problems, fmt.Sprintf("%s must be between %g and %g", b.field, b.min, b.max))
		}
	}

	if err := r.checkEnums(); err != nil {
		return err
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRecord, strings.Join(problems, "; "))
	}
	return nil
}
