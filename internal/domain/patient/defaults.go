package patient

// Template returns the record a blank intake form starts from, with a fresh
// PatientID.
func Template() *Record {
	return &Record{
		PatientID:                NewID(),
		Age:                      65,
		Gender:                   GenderMale,
		Ethnicity:                EthnicityCaucasian,
		EducationLevel:           12,
		BMI:                      25,
		Smoking:                  SmokingNever,
		AlcoholConsumption:       AlcoholModerate,
		PhysicalActivity:         ActivityModerate,
		DietQuality:              QualityGood,
		SleepQuality:             QualityGood,
		SystolicBP:               120,
		DiastolicBP:              80,
		CholesterolTotal:         200,
		CholesterolLDL:           100,
		CholesterolHDL:           50,
		CholesterolTriglycerides: 150,
		MMSE:                     28,
		FunctionalAssessment:     90,
		ADL:                      6,
	}
}
