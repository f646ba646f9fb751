package domain

// SampleRows returns the illustrative rows shown in a kind's sample
// template, aligned with Headers(). Training samples append two machine
// columns after the fixed headers; SampleHeaders reports the full row shape.
func (k RecordKind) SampleRows() [][]any {
	switch k {
	case KindPPM:
		return [][]any{
			{"Infusion Pump", "Volumat Agilia", "SN-10234", "Fresenius Kabi", "LOG-001", "ICU", "Critical",
				"2025-01-15", "A. Rahman", "2025-04-15", "A. Rahman", "2025-07-15", "S. Iyer", "2025-10-15", "S. Iyer"},
			{"Patient Monitor", "IntelliVue MX450", "SN-55821", "Philips", "LOG-002", "ER", "General",
				"2025-02-01", "J. Okafor", "2025-05-01", "J. Okafor", "", "", "", ""},
		}
	case KindOCM:
		return [][]any{
			{"Ventilator", "Hamilton C6", "SN-88010", "Hamilton Medical", "LOG-101", "ICU", "Critical",
				"2025-03-01", "2026-03-01", "M. Haddad"},
			{"Defibrillator", "LIFEPAK 15", "SN-31002", "Stryker", "LOG-102", "ER", "Critical",
				"2024-11-20", "2025-11-20", "L. Chen"},
		}
	case KindTraining:
		return [][]any{
			{"Sara Ali", "EMP-001", "Radiology", "Dr. Mansour", "Yes", "No"},
			{"Omar Nasser", "EMP-002", "ICU", "Dr. Mansour", "No", "Yes"},
		}
	default:
		return nil
	}
}

// SampleHeaders is the header row paired with SampleRows.
func (k RecordKind) SampleHeaders() []string {
	headers := k.Headers().Clone()
	if k == KindTraining {
		headers = append(headers, "Ultrasound", "Ventilator")
	}
	return headers
}
