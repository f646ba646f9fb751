package domain

import (
	"errors"
	"fmt"
	"strings"
)

// RecordKind identifies one of the three importable collections.
type RecordKind string

const (
	KindPPM      RecordKind = "ppm"
	KindOCM      RecordKind = "ocm"
	KindTraining RecordKind = "training"
)

// ErrUnknownKind is returned when a caller names a kind outside AllKinds.
var ErrUnknownKind = errors.New("unknown record kind")

// AllKinds lists every record kind in a stable order.
func AllKinds() []RecordKind {
	return []RecordKind{KindPPM, KindOCM, KindTraining}
}

// ParseKind resolves user input ("PPM", " ocm ", "Training") to a kind.
func ParseKind(raw string) (RecordKind, error) {
	switch RecordKind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindPPM:
		return KindPPM, nil
	case KindOCM:
		return KindOCM, nil
	case KindTraining, "trainings", "employee_training":
		return KindTraining, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, raw)
	}
}

// Label is the display form used in file names.
func (k RecordKind) Label() string {
	switch k {
	case KindPPM:
		return "PPM"
	case KindOCM:
		return "OCM"
	case KindTraining:
		return "Training"
	default:
		return string(k)
	}
}

// StoreKey is the fixed blob name holding the kind's full collection.
func (k RecordKind) StoreKey() string {
	switch k {
	case KindPPM:
		return "ppm_machines"
	case KindOCM:
		return "ocm_machines"
	case KindTraining:
		return "employee_trainings"
	default:
		return string(k) + "_records"
	}
}

// Headers returns the canonical header set for the kind.
func (k RecordKind) Headers() CanonicalHeaderSet {
	switch k {
	case KindPPM:
		return PPMHeaders
	case KindOCM:
		return OCMHeaders
	case KindTraining:
		return TrainingHeaders
	default:
		return nil
	}
}

// CanonicalHeaderSet is the ordered list of required headers for one kind.
// The order is the column order used by templates and exports.
type CanonicalHeaderSet []string

// Contains reports whether name is one of the required headers (case-insensitive).
func (s CanonicalHeaderSet) Contains(name string) bool {
	for _, h := range s {
		if strings.EqualFold(h, name) {
			return true
		}
	}
	return false
}

// Clone returns a copy safe for callers to mutate.
func (s CanonicalHeaderSet) Clone() []string {
	return append([]string(nil), s...)
}

// Canonical headers shared by the machine kinds.
const (
	HeaderEquipment    = "Equipment"
	HeaderModel        = "Model"
	HeaderSerialNumber = "Serial_Number"
	HeaderManufacturer = "Manufacturer"
	HeaderLogNo        = "Log_No"
	HeaderDepartment   = "Department"
	HeaderType         = "Type"

	HeaderLastMaintenance = "Last_Maintenance_Date"
	HeaderNextMaintenance = "Next_Maintenance_Date"
	HeaderEngineer        = "Engineer"

	HeaderName       = "Name"
	HeaderEmployeeID = "Employee_ID"
	HeaderTrainer    = "Trainer"
)

// QuarterHeaders returns the date and engineer headers for quarter q (1-4).
func QuarterHeaders(q int) (date, engineer string) {
	return fmt.Sprintf("Q%d_Date", q), fmt.Sprintf("Q%d_Engineer", q)
}

var (
	// PPMHeaders is the required header set for quarterly maintenance sheets.
	PPMHeaders = CanonicalHeaderSet{
		HeaderEquipment, HeaderModel, HeaderSerialNumber, HeaderManufacturer,
		HeaderLogNo, HeaderDepartment, HeaderType,
		"Q1_Date", "Q1_Engineer", "Q2_Date", "Q2_Engineer",
		"Q3_Date", "Q3_Engineer", "Q4_Date", "Q4_Engineer",
	}

	// OCMHeaders is the required header set for annual maintenance sheets.
	OCMHeaders = CanonicalHeaderSet{
		HeaderEquipment, HeaderModel, HeaderSerialNumber, HeaderManufacturer,
		HeaderLogNo, HeaderDepartment, HeaderType,
		HeaderLastMaintenance, HeaderNextMaintenance, HeaderEngineer,
	}

	// TrainingHeaders holds the fixed employee columns; any other column in a
	// training sheet is a machine name.
	TrainingHeaders = CanonicalHeaderSet{
		HeaderName, HeaderEmployeeID, HeaderDepartment, HeaderTrainer,
	}
)
